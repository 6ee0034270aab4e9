package scene

import (
	"honnef.co/go/curve"

	"unswf/internal/swffmt"
	"unswf/internal/tags"
)

// px converts twips to pixels. Unit conversion happens here and nowhere
// else: tag decoders hand over raw twips, so decoding and translation stay
// independently testable.
func px(v int32) float64 { return float64(v) / 20 }

// PixelBounds converts a twips rectangle to a pixel box.
func PixelBounds(rc swffmt.Rect) Bounds {
	return Bounds{MinX: px(rc.XMin), MinY: px(rc.YMin), MaxX: px(rc.XMax), MaxY: px(rc.YMax)}
}

// curveSteps is the fixed flattening resolution for quadratic edges.
const curveSteps = 10

// shape emits the command sequence for one shape definition: the shape
// header, its style tables, then one draw command per path segment. A
// segment closes on any style reassignment or pen move and inherits the
// style indices current when it was drawn.
func (t *translator) shape(off uint64, sh tags.DefineShape) {
	t.commands = append(t.commands, BeginShape{
		CharacterID: sh.CharacterID,
		Bounds:      PixelBounds(sh.Bounds),
	})
	t.commands = append(t.commands,
		SetFillStyles{Styles: t.fillStyles(off, sh.FillStyles)},
		SetLineStyles{Styles: t.lineStyles(off, sh.LineStyles)})

	b := &pathBuilder{}
	b.start()
	fills, lines := len(sh.FillStyles), len(sh.LineStyles)
	maxEls := t.opts.EffectiveMaxCount()
	for _, rec := range sh.Records {
		switch r := rec.(type) {
		case tags.StyleChange:
			t.flush(b)
			if r.NewStyles != nil {
				t.commands = append(t.commands,
					SetFillStyles{Styles: t.fillStyles(off, r.NewStyles.FillStyles)},
					SetLineStyles{Styles: t.lineStyles(off, r.NewStyles.LineStyles)})
				fills, lines = len(r.NewStyles.FillStyles), len(r.NewStyles.LineStyles)
			}
			if r.FillStyle0 != nil {
				b.fill0 = int(*r.FillStyle0)
				t.checkStyleIndex(off, "fill style 0", b.fill0, fills)
			}
			if r.FillStyle1 != nil {
				b.fill1 = int(*r.FillStyle1)
				t.checkStyleIndex(off, "fill style 1", b.fill1, fills)
			}
			if r.LineStyle != nil {
				b.line = int(*r.LineStyle)
				t.checkStyleIndex(off, "line style", b.line, lines)
			}
			if r.MoveTo != nil {
				b.pen = curve.Point{X: px(r.MoveTo.X), Y: px(r.MoveTo.Y)}
				b.start()
			}
		case tags.StraightEdge:
			b.lineTo(curve.Point{X: b.pen.X + px(r.DeltaX), Y: b.pen.Y + px(r.DeltaY)})
		case tags.CurvedEdge:
			ctrl := curve.Point{X: b.pen.X + px(r.ControlDeltaX), Y: b.pen.Y + px(r.ControlDeltaY)}
			anchor := curve.Point{X: ctrl.X + px(r.AnchorDeltaX), Y: ctrl.Y + px(r.AnchorDeltaY)}
			b.curveTo(ctrl, anchor)
		}
		if len(b.els) > maxEls {
			t.diags.Addf(off, swffmt.DiagOverflow,
				"shape %d: path element count %d exceeds cap %d, truncating",
				sh.CharacterID, len(b.els), maxEls)
			break
		}
	}
	t.flush(b)
}

// flush emits the builder's segment as a draw command if it has edges and
// resets the builder for the next segment at the current pen position.
func (t *translator) flush(b *pathBuilder) {
	if b.edges > 0 {
		els := make([]curve.PathElement, len(b.els))
		copy(els, b.els)
		t.commands = append(t.commands, DrawPath{
			FillStyle0: b.fill0,
			FillStyle1: b.fill1,
			LineStyle:  b.line,
			Path:       els,
			Bounds:     b.bounds.box,
		})
	}
	b.start()
}

// Style indices are kept even when they point past the table: the draw
// command records what the stream said, the diag records that it cannot
// resolve.
func (t *translator) checkStyleIndex(off uint64, what string, idx, n int) {
	if idx > n {
		t.diags.Addf(off, swffmt.DiagBadRef, "%s index %d exceeds table size %d", what, idx, n)
	}
}

// pathBuilder threads the pen position and active style indices through a
// shape's record list, collecting one segment at a time.
type pathBuilder struct {
	pen    curve.Point
	fill0  int
	fill1  int
	line   int
	els    []curve.PathElement
	bounds boundsAccum
	edges  int
}

// start opens a fresh segment at the current pen position.
func (b *pathBuilder) start() {
	b.els = append(b.els[:0], curve.PathElement{Kind: curve.MoveToKind, P0: b.pen})
	b.bounds = boundsAccum{}
	b.bounds.add(b.pen)
	b.edges = 0
}

func (b *pathBuilder) lineTo(end curve.Point) {
	b.els = append(b.els, curve.PathElement{Kind: curve.LineToKind, P0: end})
	b.bounds.add(end)
	b.pen = end
	b.edges++
}

// curveTo flattens the quadratic from pen through ctrl to anchor into
// line elements. The control point counts toward the segment bounds even
// though the flattened outline never touches it.
func (b *pathBuilder) curveTo(ctrl, anchor curve.Point) {
	b.bounds.add(ctrl)
	for _, pt := range flattenQuad(b.pen, ctrl, anchor, curveSteps) {
		b.els = append(b.els, curve.PathElement{Kind: curve.LineToKind, P0: pt})
		b.bounds.add(pt)
	}
	b.pen = anchor
	b.edges++
}

// flattenQuad evaluates B(t) = (1-t)^2*p0 + 2(1-t)t*c + t^2*p1 at
// t = i/steps for i = 1..steps. t = 1 lands exactly on p1.
func flattenQuad(p0, c, p1 curve.Point, steps int) []curve.Point {
	out := make([]curve.Point, steps)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		u := 1 - t
		out[i-1] = curve.Point{
			X: u*u*p0.X + 2*u*t*c.X + t*t*p1.X,
			Y: u*u*p0.Y + 2*u*t*c.Y + t*t*p1.Y,
		}
	}
	return out
}

// boundsAccum grows a box over every vertex and control point visited.
type boundsAccum struct {
	box Bounds
	any bool
}

func (a *boundsAccum) add(p curve.Point) {
	if !a.any {
		a.box = Bounds{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
		a.any = true
		return
	}
	a.box.MinX = min(a.box.MinX, p.X)
	a.box.MinY = min(a.box.MinY, p.Y)
	a.box.MaxX = max(a.box.MaxX, p.X)
	a.box.MaxY = max(a.box.MaxY, p.Y)
}
