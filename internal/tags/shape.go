package tags

import (
	"fmt"

	"unswf/internal/swffmt"
)

// Point is a twips coordinate pair.
type Point struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// FillStyle is one entry of a shape's fill style table.
type FillStyle interface {
	isFillStyle()
}

// SolidFill paints a flat color. Tag versions below DefineShape3 carry no
// alpha channel; those decode opaque.
type SolidFill struct {
	Color swffmt.Color `json:"color"`
}

// GradientStop is one color ramp entry. Ratios are kept exactly as decoded,
// including out-of-order sequences some writers emit.
type GradientStop struct {
	Ratio uint8        `json:"ratio"`
	Color swffmt.Color `json:"color"`
}

// Gradient is the shared ramp carried by the gradient fill kinds.
type Gradient struct {
	SpreadMode        uint8          `json:"spreadMode"`
	InterpolationMode uint8          `json:"interpolationMode"`
	Stops             []GradientStop `json:"stops"`
}

// LinearGradientFill shades along the gradient square's x axis under Matrix.
type LinearGradientFill struct {
	Matrix   swffmt.Matrix `json:"matrix"`
	Gradient Gradient      `json:"gradient"`
}

// RadialGradientFill shades outward from the gradient square's center.
type RadialGradientFill struct {
	Matrix   swffmt.Matrix `json:"matrix"`
	Gradient Gradient      `json:"gradient"`
}

// FocalGradientFill is the DefineShape4 radial variant with an off-center
// focal point in [-1, 1].
type FocalGradientFill struct {
	Matrix     swffmt.Matrix `json:"matrix"`
	Gradient   Gradient      `json:"gradient"`
	FocalPoint float64       `json:"focalPoint"`
}

// BitmapFill paints a dictionary bitmap under Matrix.
type BitmapFill struct {
	BitmapID  uint16        `json:"bitmapId"`
	Matrix    swffmt.Matrix `json:"matrix"`
	Repeating bool          `json:"repeating"`
	Smoothed  bool          `json:"smoothed"`
}

func (SolidFill) isFillStyle()          {}
func (LinearGradientFill) isFillStyle() {}
func (RadialGradientFill) isFillStyle() {}
func (FocalGradientFill) isFillStyle()  {}
func (BitmapFill) isFillStyle()         {}

// LineStyle is one entry of a shape's line style table.
type LineStyle interface {
	isLineStyle()
}

// BasicLineStyle is the pre-DefineShape4 stroke: width in twips plus color.
type BasicLineStyle struct {
	Width uint16       `json:"width"`
	Color swffmt.Color `json:"color"`
}

// Cap and join codes used by EnhancedLineStyle.
const (
	CapRound  = 0
	CapNone   = 1
	CapSquare = 2

	JoinRound = 0
	JoinBevel = 1
	JoinMiter = 2
)

// EnhancedLineStyle is the DefineShape4 stroke with caps, joins, scaling
// behavior, and an optional fill instead of a flat color. Fill is non-nil
// exactly when the stroke paints with a fill style; Color is valid
// otherwise. MiterLimit is meaningful only for JoinMiter.
type EnhancedLineStyle struct {
	Width        uint16       `json:"width"`
	StartCap     uint8        `json:"startCap"`
	EndCap       uint8        `json:"endCap"`
	Join         uint8        `json:"join"`
	NoHScale     bool         `json:"noHScale"`
	NoVScale     bool         `json:"noVScale"`
	PixelHinting bool         `json:"pixelHinting"`
	NoClose      bool         `json:"noClose"`
	MiterLimit   float64      `json:"miterLimit,omitempty"`
	Color        swffmt.Color `json:"color"`
	Fill         FillStyle    `json:"fill,omitempty"`
}

func (BasicLineStyle) isLineStyle()    {}
func (EnhancedLineStyle) isLineStyle() {}

// ShapeRecord is one entry of a shape's record list. The list ends at the
// all-zero end record, which is represented by the end of the slice.
type ShapeRecord interface {
	isShapeRecord()
}

// StyleTables is the replacement style set a style-change record can carry.
type StyleTables struct {
	FillStyles []FillStyle `json:"fillStyles"`
	LineStyles []LineStyle `json:"lineStyles"`
}

// StyleChange updates the pen position and the active style selections.
// Nil fields were absent on the wire and leave the corresponding state
// untouched. MoveTo is absolute twips, not a delta. Style indices are
// 1-based into the current tables; 0 selects no style.
type StyleChange struct {
	MoveTo     *Point       `json:"moveTo,omitempty"`
	FillStyle0 *uint32      `json:"fillStyle0,omitempty"`
	FillStyle1 *uint32      `json:"fillStyle1,omitempty"`
	LineStyle  *uint32      `json:"lineStyle,omitempty"`
	NewStyles  *StyleTables `json:"newStyles,omitempty"`
}

// StraightEdge extends the outline by a line segment, in relative twips.
type StraightEdge struct {
	DeltaX int32 `json:"dx"`
	DeltaY int32 `json:"dy"`
}

// CurvedEdge extends the outline by a quadratic curve: control point and
// anchor point deltas, each relative to the previous position.
type CurvedEdge struct {
	ControlDeltaX int32 `json:"cdx"`
	ControlDeltaY int32 `json:"cdy"`
	AnchorDeltaX  int32 `json:"adx"`
	AnchorDeltaY  int32 `json:"ady"`
}

func (StyleChange) isShapeRecord()  {}
func (StraightEdge) isShapeRecord() {}
func (CurvedEdge) isShapeRecord()   {}

// DefineShape is the decoded form of the DefineShape family (versions 1
// through 4). Version gates the color depth (RGBA from 3), the enhanced
// line styles and focal gradients (4), and the edge bounds block (4).
type DefineShape struct {
	Version               int          `json:"version"`
	CharacterID           uint16       `json:"characterId"`
	Bounds                swffmt.Rect  `json:"bounds"`
	EdgeBounds            *swffmt.Rect `json:"edgeBounds,omitempty"`
	UsesFillWindingRule   bool         `json:"usesFillWindingRule,omitempty"`
	UsesNonScalingStrokes bool         `json:"usesNonScalingStrokes,omitempty"`
	UsesScalingStrokes    bool         `json:"usesScalingStrokes,omitempty"`
	FillStyles            []FillStyle  `json:"fillStyles"`
	LineStyles            []LineStyle  `json:"lineStyles"`
	Records               []ShapeRecord `json:"records"`
}

func (DefineShape) isTag() {}

func shapeDecoder(version int) DecodeFunc {
	return func(w *Walker, body []byte) (Tag, error) {
		return decodeDefineShape(w, body, version)
	}
}

// decodeDefineShape decodes the shared shape layout:
//
//	id          UI16
//	bounds      RECT
//	edgeBounds  RECT      (v4)
//	flags       UI8       (v4)
//	fill styles FILLSTYLEARRAY
//	line styles LINESTYLEARRAY
//	fillBits:4 lineBits:4
//	records     until the all-zero end record
func decodeDefineShape(w *Walker, body []byte, version int) (Tag, error) {
	r := swffmt.NewReader(body)
	sh := DefineShape{Version: version}
	var err error
	if sh.CharacterID, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("shape: id: %w", err)
	}
	if sh.Bounds, err = r.ReadRect(); err != nil {
		return sh, fmt.Errorf("shape %d: bounds: %w", sh.CharacterID, err)
	}
	if version >= 4 {
		eb, err := r.ReadRect()
		if err != nil {
			return sh, fmt.Errorf("shape %d: edge bounds: %w", sh.CharacterID, err)
		}
		sh.EdgeBounds = &eb
		flags, err := r.ReadUint8()
		if err != nil {
			return sh, fmt.Errorf("shape %d: flags: %w", sh.CharacterID, err)
		}
		sh.UsesFillWindingRule = flags&4 != 0
		sh.UsesNonScalingStrokes = flags&2 != 0
		sh.UsesScalingStrokes = flags&1 != 0
	}
	if sh.FillStyles, err = readFillStyles(w, r, version); err != nil {
		return sh, fmt.Errorf("shape %d: fill styles: %w", sh.CharacterID, err)
	}
	if sh.LineStyles, err = readLineStyles(w, r, version); err != nil {
		return sh, fmt.Errorf("shape %d: line styles: %w", sh.CharacterID, err)
	}
	ctx := &shapeContext{w: w, version: version}
	if err := ctx.readBitWidths(r); err != nil {
		return sh, fmt.Errorf("shape %d: style bits: %w", sh.CharacterID, err)
	}
	if sh.Records, err = ctx.readRecords(r); err != nil {
		return sh, fmt.Errorf("shape %d: records: %w", sh.CharacterID, err)
	}
	return sh, nil
}

// readGlyphRecords decodes a glyph SHAPE: the style bit widths followed by
// records, with no style tables. Glyph fill indices use the implicit
// one-entry fill convention of font tags.
func readGlyphRecords(w *Walker, r *swffmt.Reader) ([]ShapeRecord, error) {
	ctx := &shapeContext{w: w, version: 1}
	if err := ctx.readBitWidths(r); err != nil {
		return nil, err
	}
	return ctx.readRecords(r)
}

// shapeContext carries the mutable bit widths the record loop needs. A
// style-change record with replacement tables rewrites them mid stream.
type shapeContext struct {
	w        *Walker
	version  int
	fillBits int
	lineBits int
}

func (ctx *shapeContext) readBitWidths(r *swffmt.Reader) error {
	fb, err := r.ReadUB(4)
	if err != nil {
		return err
	}
	lb, err := r.ReadUB(4)
	if err != nil {
		return err
	}
	ctx.fillBits, ctx.lineBits = int(fb), int(lb)
	return nil
}

func (ctx *shapeContext) readRecords(r *swffmt.Reader) ([]ShapeRecord, error) {
	var out []ShapeRecord
	for n := 0; ; n++ {
		if err := ctx.w.checkCount("shape record", n); err != nil {
			return out, err
		}
		rec, done, err := ctx.readRecord(r)
		if err != nil {
			return out, fmt.Errorf("record %d: %w", n, err)
		}
		if done {
			return out, nil
		}
		out = append(out, rec)
	}
}

func (ctx *shapeContext) readRecord(r *swffmt.Reader) (ShapeRecord, bool, error) {
	typeFlag, err := r.ReadUB(1)
	if err != nil {
		return nil, false, err
	}
	if typeFlag == 1 {
		rec, err := readEdgeRecord(r)
		return rec, false, err
	}
	flags, err := r.ReadUB(5)
	if err != nil {
		return nil, false, err
	}
	if flags == 0 {
		return nil, true, nil
	}
	var sc StyleChange
	if flags&1 != 0 {
		moveBits, err := r.ReadUB(5)
		if err != nil {
			return nil, false, err
		}
		x, err := r.ReadSB(int(moveBits))
		if err != nil {
			return nil, false, err
		}
		y, err := r.ReadSB(int(moveBits))
		if err != nil {
			return nil, false, err
		}
		sc.MoveTo = &Point{X: x, Y: y}
	}
	if flags&2 != 0 {
		v, err := r.ReadUB(ctx.fillBits)
		if err != nil {
			return nil, false, err
		}
		sc.FillStyle0 = &v
	}
	if flags&4 != 0 {
		v, err := r.ReadUB(ctx.fillBits)
		if err != nil {
			return nil, false, err
		}
		sc.FillStyle1 = &v
	}
	if flags&8 != 0 {
		v, err := r.ReadUB(ctx.lineBits)
		if err != nil {
			return nil, false, err
		}
		sc.LineStyle = &v
	}
	if flags&16 != 0 {
		if ctx.version < 2 {
			return nil, false, fmt.Errorf("style table replacement in a v%d shape", ctx.version)
		}
		var st StyleTables
		if st.FillStyles, err = readFillStyles(ctx.w, r, ctx.version); err != nil {
			return nil, false, fmt.Errorf("new fill styles: %w", err)
		}
		if st.LineStyles, err = readLineStyles(ctx.w, r, ctx.version); err != nil {
			return nil, false, fmt.Errorf("new line styles: %w", err)
		}
		if err := ctx.readBitWidths(r); err != nil {
			return nil, false, fmt.Errorf("new style bits: %w", err)
		}
		sc.NewStyles = &st
	}
	return sc, false, nil
}

// readEdgeRecord decodes one edge. Deltas use numBits+2 bit operands;
// straight edges additionally compress axis-parallel lines to one operand.
func readEdgeRecord(r *swffmt.Reader) (ShapeRecord, error) {
	straight, err := r.ReadUB(1)
	if err != nil {
		return nil, err
	}
	nb, err := r.ReadUB(4)
	if err != nil {
		return nil, err
	}
	numBits := int(nb) + 2
	if straight == 1 {
		general, err := r.ReadUB(1)
		if err != nil {
			return nil, err
		}
		var e StraightEdge
		if general == 1 {
			if e.DeltaX, err = r.ReadSB(numBits); err != nil {
				return nil, err
			}
			if e.DeltaY, err = r.ReadSB(numBits); err != nil {
				return nil, err
			}
			return e, nil
		}
		vert, err := r.ReadUB(1)
		if err != nil {
			return nil, err
		}
		d, err := r.ReadSB(numBits)
		if err != nil {
			return nil, err
		}
		if vert == 1 {
			e.DeltaY = d
		} else {
			e.DeltaX = d
		}
		return e, nil
	}
	var e CurvedEdge
	if e.ControlDeltaX, err = r.ReadSB(numBits); err != nil {
		return nil, err
	}
	if e.ControlDeltaY, err = r.ReadSB(numBits); err != nil {
		return nil, err
	}
	if e.AnchorDeltaX, err = r.ReadSB(numBits); err != nil {
		return nil, err
	}
	if e.AnchorDeltaY, err = r.ReadSB(numBits); err != nil {
		return nil, err
	}
	return e, nil
}

// readStyleCount decodes the shared style table count: one byte, with 0xff
// escaping to a 16-bit extended count.
func readStyleCount(r *swffmt.Reader) (int, error) {
	c, err := r.ReadUint8()
	if err != nil {
		return 0, err
	}
	if c != 0xff {
		return int(c), nil
	}
	ext, err := r.ReadUint16()
	if err != nil {
		return 0, err
	}
	return int(ext), nil
}

func readFillStyles(w *Walker, r *swffmt.Reader, version int) ([]FillStyle, error) {
	count, err := readStyleCount(r)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	if err := w.checkCount("fill style", count); err != nil {
		return nil, err
	}
	out := make([]FillStyle, 0, count)
	for i := 0; i < count; i++ {
		fs, err := readFillStyle(r, version)
		if err != nil {
			return out, fmt.Errorf("fill %d/%d: %w", i, count, err)
		}
		out = append(out, fs)
	}
	return out, nil
}

// Fill style type codes.
const (
	fillSolid          = 0x00
	fillLinearGradient = 0x10
	fillRadialGradient = 0x12
	fillFocalGradient  = 0x13
	fillBitmapBit      = 0x40
)

func readFillStyle(r *swffmt.Reader, version int) (FillStyle, error) {
	t, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	switch {
	case t == fillSolid:
		c, err := readShapeColor(r, version)
		if err != nil {
			return nil, err
		}
		return SolidFill{Color: c}, nil
	case t == fillLinearGradient || t == fillRadialGradient:
		m, err := r.ReadMatrix()
		if err != nil {
			return nil, err
		}
		g, _, err := readGradient(r, version, false)
		if err != nil {
			return nil, err
		}
		if t == fillLinearGradient {
			return LinearGradientFill{Matrix: m, Gradient: g}, nil
		}
		return RadialGradientFill{Matrix: m, Gradient: g}, nil
	case t == fillFocalGradient:
		if version < 4 {
			return nil, fmt.Errorf("focal gradient in a v%d shape", version)
		}
		m, err := r.ReadMatrix()
		if err != nil {
			return nil, err
		}
		g, focal, err := readGradient(r, version, true)
		if err != nil {
			return nil, err
		}
		return FocalGradientFill{Matrix: m, Gradient: g, FocalPoint: focal}, nil
	case t&fillBitmapBit != 0 && t <= 0x43:
		var bf BitmapFill
		if bf.BitmapID, err = r.ReadUint16(); err != nil {
			return nil, err
		}
		if bf.Matrix, err = r.ReadMatrix(); err != nil {
			return nil, err
		}
		bf.Repeating = t == 0x40 || t == 0x42
		bf.Smoothed = t < 0x42
		return bf, nil
	default:
		return nil, fmt.Errorf("unknown fill style type 0x%02x", t)
	}
}

func readShapeColor(r *swffmt.Reader, version int) (swffmt.Color, error) {
	if version >= 3 {
		return r.ReadRGBA()
	}
	return r.ReadRGB()
}

func readGradient(r *swffmt.Reader, version int, focal bool) (Gradient, float64, error) {
	var g Gradient
	spread, err := r.ReadUB(2)
	if err != nil {
		return g, 0, err
	}
	interp, err := r.ReadUB(2)
	if err != nil {
		return g, 0, err
	}
	count, err := r.ReadUB(4)
	if err != nil {
		return g, 0, err
	}
	g.SpreadMode = uint8(spread)
	g.InterpolationMode = uint8(interp)
	g.Stops = make([]GradientStop, 0, count)
	for i := uint32(0); i < count; i++ {
		var stop GradientStop
		if stop.Ratio, err = r.ReadUint8(); err != nil {
			return g, 0, err
		}
		if stop.Color, err = readShapeColor(r, version); err != nil {
			return g, 0, err
		}
		g.Stops = append(g.Stops, stop)
	}
	if !focal {
		return g, 0, nil
	}
	fp, err := r.ReadFixed8()
	if err != nil {
		return g, 0, err
	}
	return g, fp, nil
}

func readLineStyles(w *Walker, r *swffmt.Reader, version int) ([]LineStyle, error) {
	count, err := readStyleCount(r)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	if err := w.checkCount("line style", count); err != nil {
		return nil, err
	}
	out := make([]LineStyle, 0, count)
	for i := 0; i < count; i++ {
		var ls LineStyle
		if version >= 4 {
			ls, err = readEnhancedLineStyle(r, version)
		} else {
			ls, err = readBasicLineStyle(r, version)
		}
		if err != nil {
			return out, fmt.Errorf("line %d/%d: %w", i, count, err)
		}
		out = append(out, ls)
	}
	return out, nil
}

func readBasicLineStyle(r *swffmt.Reader, version int) (LineStyle, error) {
	var ls BasicLineStyle
	var err error
	if ls.Width, err = r.ReadUint16(); err != nil {
		return nil, err
	}
	if ls.Color, err = readShapeColor(r, version); err != nil {
		return nil, err
	}
	return ls, nil
}

// readEnhancedLineStyle decodes LINESTYLE2:
//
//	width       UI16
//	startCap:2 join:2 hasFill:1 noHScale:1 noVScale:1 pixelHinting:1
//	reserved:5 noClose:1 endCap:2
//	miterLimit  FIXED8    (join == miter)
//	color RGBA | fill FILLSTYLE
func readEnhancedLineStyle(r *swffmt.Reader, version int) (LineStyle, error) {
	var ls EnhancedLineStyle
	var err error
	if ls.Width, err = r.ReadUint16(); err != nil {
		return nil, err
	}
	startCap, err := r.ReadUB(2)
	if err != nil {
		return nil, err
	}
	join, err := r.ReadUB(2)
	if err != nil {
		return nil, err
	}
	flags1, err := r.ReadUB(4) // hasFill, noHScale, noVScale, pixelHinting
	if err != nil {
		return nil, err
	}
	if _, err := r.ReadUB(5); err != nil { // reserved
		return nil, err
	}
	noClose, err := r.ReadUB(1)
	if err != nil {
		return nil, err
	}
	endCap, err := r.ReadUB(2)
	if err != nil {
		return nil, err
	}
	ls.StartCap = uint8(startCap)
	ls.Join = uint8(join)
	hasFill := flags1&8 != 0
	ls.NoHScale = flags1&4 != 0
	ls.NoVScale = flags1&2 != 0
	ls.PixelHinting = flags1&1 != 0
	ls.NoClose = noClose != 0
	ls.EndCap = uint8(endCap)
	if ls.Join == JoinMiter {
		if ls.MiterLimit, err = r.ReadFixed8(); err != nil {
			return nil, err
		}
	}
	if hasFill {
		if ls.Fill, err = readFillStyle(r, version); err != nil {
			return nil, err
		}
		return ls, nil
	}
	if ls.Color, err = r.ReadRGBA(); err != nil {
		return nil, err
	}
	return ls, nil
}
