// Package scene translates decoded movie records into render-ready form:
// twips become pixels, quadratic edges become line segments, and placement
// records resolve against a depth-keyed display list. The translator never
// resolves external data such as bitmap pixels; bitmap fills carry a typed
// reference for the renderer to satisfy.
package scene

import (
	"fmt"

	"honnef.co/go/curve"

	"unswf/internal/swffmt"
	"unswf/internal/tags"
)

// Scene is the translation output: the ordered command list, the final
// display list snapshot sorted by depth, and the diagnostics raised while
// translating.
type Scene struct {
	Commands    []Command     `json:"commands"`
	DisplayList []Placement   `json:"displayList"`
	Diags       []swffmt.Diag `json:"diagnostics,omitempty"`
}

// Command is one ordered render instruction. Concrete types carry the
// arguments; Op names the instruction for listings.
type Command interface {
	isCommand()
	Op() string
}

// BeginShape announces a shape definition. The style and draw commands
// that follow, up to the next BeginShape, belong to it.
type BeginShape struct {
	CharacterID uint16 `json:"characterId"`
	Bounds      Bounds `json:"bounds"`
}

// SetFillStyles replaces the active fill style table. Draw commands index
// into it 1-based; 0 selects no fill.
type SetFillStyles struct {
	Styles []FillStyle `json:"styles"`
}

// SetLineStyles replaces the active line style table.
type SetLineStyles struct {
	Styles []LineStyle `json:"styles"`
}

// DrawPath draws one path segment under the styles current at emission.
// Path starts with a MoveTo element; every following element is a LineTo,
// curved edges having been flattened during translation.
type DrawPath struct {
	FillStyle0 int                 `json:"fillStyle0"`
	FillStyle1 int                 `json:"fillStyle1"`
	LineStyle  int                 `json:"lineStyle"`
	Path       []curve.PathElement `json:"path"`
	Bounds     Bounds              `json:"bounds"`
}

// Place mirrors a display list mutation: the placement now current at its
// depth, with all inherited fields resolved.
type Place struct {
	Placement Placement `json:"placement"`
}

// Remove mirrors a display list removal.
type Remove struct {
	Depth uint16 `json:"depth"`
}

func (BeginShape) isCommand()    {}
func (SetFillStyles) isCommand() {}
func (SetLineStyles) isCommand() {}
func (DrawPath) isCommand()      {}
func (Place) isCommand()         {}
func (Remove) isCommand()        {}

func (BeginShape) Op() string    { return "begin_shape" }
func (SetFillStyles) Op() string { return "set_fill_styles" }
func (SetLineStyles) Op() string { return "set_line_styles" }
func (DrawPath) Op() string      { return "draw_path" }
func (Place) Op() string         { return "place" }
func (Remove) Op() string        { return "remove" }

// Bounds is an axis-aligned box in pixels.
type Bounds struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Color is a normalized color, each channel in [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Matrix is the affine transform with translation in pixels.
type Matrix struct {
	ScaleX      float64 `json:"scaleX"`
	ScaleY      float64 `json:"scaleY"`
	RotateSkew0 float64 `json:"rotateSkew0"`
	RotateSkew1 float64 `json:"rotateSkew1"`
	TranslateX  float64 `json:"translateX"`
	TranslateY  float64 `json:"translateY"`
}

// FillKind discriminates the FillStyle variants.
type FillKind uint8

const (
	FillSolid FillKind = iota
	FillLinearGradient
	FillRadialGradient
	FillFocalGradient
	FillBitmap
)

var fillKindNames = [...]string{
	"solid", "linear_gradient", "radial_gradient", "focal_gradient", "bitmap",
}

func (k FillKind) String() string {
	if int(k) < len(fillKindNames) {
		return fillKindNames[k]
	}
	return fmt.Sprintf("fill(%d)", uint8(k))
}

// FillStyle is a translated fill. Kind selects the meaningful fields:
// Color for solid fills, Stops and Matrix for gradients, BitmapID and
// Matrix for bitmap fills. NeedsTexture marks fills whose pixel data lives
// elsewhere in the dictionary.
type FillStyle struct {
	Kind         FillKind       `json:"kind"`
	Color        Color          `json:"color"`
	Matrix       *Matrix        `json:"matrix,omitempty"`
	Stops        []GradientStop `json:"stops,omitempty"`
	FocalPoint   float64        `json:"focalPoint,omitempty"`
	BitmapID     uint16         `json:"bitmapId,omitempty"`
	Repeating    bool           `json:"repeating,omitempty"`
	Smoothed     bool           `json:"smoothed,omitempty"`
	NeedsTexture bool           `json:"needsTexture,omitempty"`
}

// GradientStop is one translated ramp entry. Ratio is normalized to
// [0, 1]; stop order is kept exactly as decoded, monotonic or not.
type GradientStop struct {
	Ratio float64 `json:"ratio"`
	Color Color   `json:"color"`
}

// LineStyle is a translated stroke: width in pixels and either a flat
// color or, for fill-painted strokes, a translated fill.
type LineStyle struct {
	Width float64    `json:"width"`
	Color Color      `json:"color"`
	Fill  *FillStyle `json:"fill,omitempty"`
}

// Placement is one display list entry. CharacterID references the
// dictionary; ClassName is set instead when a symbol is placed by class
// binding. Filters pass through as decoded, their fixed-point fields
// already widened to float64.
type Placement struct {
	Depth          uint16                      `json:"depth"`
	CharacterID    uint16                      `json:"characterId"`
	ClassName      string                      `json:"className,omitempty"`
	Matrix         Matrix                      `json:"matrix"`
	ColorTransform *swffmt.ColorTransformAlpha `json:"colorTransform,omitempty"`
	Ratio          uint16                      `json:"ratio,omitempty"`
	Name           string                      `json:"name,omitempty"`
	ClipDepth      uint16                      `json:"clipDepth,omitempty"`
	BlendMode      string                      `json:"blendMode,omitempty"`
	Visible        bool                        `json:"visible"`
	Filters        []tags.Filter               `json:"filters,omitempty"`
}
