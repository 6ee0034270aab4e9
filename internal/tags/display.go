package tags

import (
	"fmt"

	"unswf/internal/swffmt"
)

// PlaceObject is the v1 placement: it always creates at a depth, and the
// trailing color transform has no length prefix or flag, so its presence is
// inferred from bytes remaining after the matrix.
type PlaceObject struct {
	CharacterID    uint16                 `json:"characterId"`
	Depth          uint16                 `json:"depth"`
	Matrix         swffmt.Matrix          `json:"matrix"`
	ColorTransform *swffmt.ColorTransform `json:"colorTransform,omitempty"`
}

// PlaceObject2 is the flag-driven placement. Absent optional fields stay
// nil; a nil field on a move means the display list entry keeps its current
// value. ClipActions are kept raw: legacy action bytecode is out of scope.
type PlaceObject2 struct {
	Move           bool                        `json:"move"`
	Depth          uint16                      `json:"depth"`
	CharacterID    *uint16                     `json:"characterId,omitempty"`
	Matrix         *swffmt.Matrix              `json:"matrix,omitempty"`
	ColorTransform *swffmt.ColorTransformAlpha `json:"colorTransform,omitempty"`
	Ratio          *uint16                     `json:"ratio,omitempty"`
	Name           *string                     `json:"name,omitempty"`
	ClipDepth      *uint16                     `json:"clipDepth,omitempty"`
	ClipActions    []byte                      `json:"-"`
}

// PlaceObject3 extends the v2 placement with class binding, surface
// filters, blending, and caching hints.
type PlaceObject3 struct {
	PlaceObject2
	ClassName       *string       `json:"className,omitempty"`
	HasImage        bool          `json:"hasImage,omitempty"`
	Filters         []Filter      `json:"filters,omitempty"`
	BlendMode       *BlendMode    `json:"blendMode,omitempty"`
	BitmapCache     *bool         `json:"bitmapCache,omitempty"`
	Visible         *bool         `json:"visible,omitempty"`
	BackgroundColor *swffmt.Color `json:"backgroundColor,omitempty"`
}

// RemoveObject removes a specific character from a depth.
type RemoveObject struct {
	CharacterID uint16 `json:"characterId"`
	Depth       uint16 `json:"depth"`
}

// RemoveObject2 removes whatever occupies a depth.
type RemoveObject2 struct {
	Depth uint16 `json:"depth"`
}

func (PlaceObject) isTag()   {}
func (PlaceObject2) isTag()  {}
func (RemoveObject) isTag()  {}
func (RemoveObject2) isTag() {}

// BlendMode is the compositing mode carried by PlaceObject3.
type BlendMode uint8

var blendModeNames = [...]string{
	"normal", "normal", "layer", "multiply", "screen", "lighten", "darken",
	"difference", "add", "subtract", "invert", "alpha", "erase", "overlay",
	"hardlight",
}

func (m BlendMode) String() string {
	if int(m) < len(blendModeNames) {
		return blendModeNames[m]
	}
	return fmt.Sprintf("blend(%d)", uint8(m))
}

// PlaceObject2 flag bits, low to high.
const (
	placeMove uint8 = 1 << iota
	placeHasCharacter
	placeHasMatrix
	placeHasColorTransform
	placeHasRatio
	placeHasName
	placeHasClipDepth
	placeHasClipActions
)

// PlaceObject3 extension flag bits, low to high.
const (
	place3HasFilters uint8 = 1 << iota
	place3HasBlendMode
	place3HasCacheAsBitmap
	place3HasClassName
	place3HasImage
	place3HasVisible
	place3HasBackgroundColor
)

func decodePlaceObject(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	var p PlaceObject
	var err error
	if p.CharacterID, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("place: id: %w", err)
	}
	if p.Depth, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("place: depth: %w", err)
	}
	if p.Matrix, err = r.ReadMatrix(); err != nil {
		return p, fmt.Errorf("place: matrix: %w", err)
	}
	if r.Remaining() > 0 {
		cx, err := r.ReadColorTransform()
		if err != nil {
			return p, fmt.Errorf("place: color transform: %w", err)
		}
		p.ColorTransform = &cx
	}
	return p, nil
}

// readPlaceFields decodes the flag-gated field block shared by the v2 and
// v3 placements, from CharacterID through ClipDepth.
func readPlaceFields(r *swffmt.Reader, flags uint8, p *PlaceObject2) error {
	if flags&placeHasCharacter != 0 {
		id, err := r.ReadUint16()
		if err != nil {
			return fmt.Errorf("id: %w", err)
		}
		p.CharacterID = &id
	}
	if flags&placeHasMatrix != 0 {
		m, err := r.ReadMatrix()
		if err != nil {
			return fmt.Errorf("matrix: %w", err)
		}
		p.Matrix = &m
	}
	if flags&placeHasColorTransform != 0 {
		cx, err := r.ReadColorTransformAlpha()
		if err != nil {
			return fmt.Errorf("color transform: %w", err)
		}
		p.ColorTransform = &cx
	}
	if flags&placeHasRatio != 0 {
		ratio, err := r.ReadUint16()
		if err != nil {
			return fmt.Errorf("ratio: %w", err)
		}
		p.Ratio = &ratio
	}
	if flags&placeHasName != 0 {
		name, err := r.ReadString()
		if err != nil {
			return fmt.Errorf("name: %w", err)
		}
		p.Name = &name
	}
	if flags&placeHasClipDepth != 0 {
		cd, err := r.ReadUint16()
		if err != nil {
			return fmt.Errorf("clip depth: %w", err)
		}
		p.ClipDepth = &cd
	}
	return nil
}

func decodePlaceObject2(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	flags, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("place2: flags: %w", err)
	}
	p := PlaceObject2{Move: flags&placeMove != 0}
	if p.Depth, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("place2: depth: %w", err)
	}
	if err := readPlaceFields(r, flags, &p); err != nil {
		return p, fmt.Errorf("place2: %w", err)
	}
	if flags&placeHasClipActions != 0 {
		p.ClipActions, _ = r.ReadSpan(r.Remaining())
	}
	return p, nil
}

func decodePlaceObject3(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	flags, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("place3: flags: %w", err)
	}
	flags2, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("place3: extension flags: %w", err)
	}
	p := PlaceObject3{
		PlaceObject2: PlaceObject2{Move: flags&placeMove != 0},
		HasImage:     flags2&place3HasImage != 0,
	}
	if p.Depth, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("place3: depth: %w", err)
	}
	if flags2&place3HasClassName != 0 || (p.HasImage && flags&placeHasCharacter != 0) {
		cn, err := r.ReadString()
		if err != nil {
			return p, fmt.Errorf("place3: class name: %w", err)
		}
		p.ClassName = &cn
	}
	if err := readPlaceFields(r, flags, &p.PlaceObject2); err != nil {
		return p, fmt.Errorf("place3: %w", err)
	}
	if flags2&place3HasFilters != 0 {
		if p.Filters, err = readFilterList(w, r); err != nil {
			return p, fmt.Errorf("place3: %w", err)
		}
	}
	if flags2&place3HasBlendMode != 0 {
		b, err := r.ReadUint8()
		if err != nil {
			return p, fmt.Errorf("place3: blend mode: %w", err)
		}
		bm := BlendMode(b)
		p.BlendMode = &bm
	}
	if flags2&place3HasCacheAsBitmap != 0 {
		b, err := r.ReadUint8()
		if err != nil {
			return p, fmt.Errorf("place3: bitmap cache: %w", err)
		}
		v := b != 0
		p.BitmapCache = &v
	}
	if flags2&place3HasVisible != 0 {
		b, err := r.ReadUint8()
		if err != nil {
			return p, fmt.Errorf("place3: visible: %w", err)
		}
		v := b != 0
		p.Visible = &v
	}
	if flags2&place3HasBackgroundColor != 0 {
		c, err := r.ReadRGBA()
		if err != nil {
			return p, fmt.Errorf("place3: background color: %w", err)
		}
		p.BackgroundColor = &c
	}
	if flags&placeHasClipActions != 0 {
		p.ClipActions, _ = r.ReadSpan(r.Remaining())
	}
	return p, nil
}

func decodeRemoveObject(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	var rm RemoveObject
	var err error
	if rm.CharacterID, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("remove: id: %w", err)
	}
	if rm.Depth, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("remove: depth: %w", err)
	}
	return rm, nil
}

func decodeRemoveObject2(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	depth, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("remove2: depth: %w", err)
	}
	return RemoveObject2{Depth: depth}, nil
}
