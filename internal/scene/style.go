package scene

import (
	"golang.org/x/exp/constraints"

	"unswf/internal/swffmt"
	"unswf/internal/tags"
)

func (t *translator) fillStyles(off uint64, in []tags.FillStyle) []FillStyle {
	out := make([]FillStyle, len(in))
	for i, fs := range in {
		out[i] = t.fillStyle(off, fs)
	}
	return out
}

func (t *translator) fillStyle(off uint64, fs tags.FillStyle) FillStyle {
	switch f := fs.(type) {
	case tags.SolidFill:
		return FillStyle{Kind: FillSolid, Color: normColor(f.Color)}
	case tags.LinearGradientFill:
		return FillStyle{
			Kind:   FillLinearGradient,
			Matrix: matrixPtr(f.Matrix),
			Stops:  normStops(f.Gradient),
		}
	case tags.RadialGradientFill:
		return FillStyle{
			Kind:   FillRadialGradient,
			Matrix: matrixPtr(f.Matrix),
			Stops:  normStops(f.Gradient),
		}
	case tags.FocalGradientFill:
		focal := clamp(f.FocalPoint, -1, 1)
		if focal != f.FocalPoint {
			t.diags.Addf(off, swffmt.DiagClamped,
				"focal point %v outside [-1, 1]", f.FocalPoint)
		}
		return FillStyle{
			Kind:       FillFocalGradient,
			Matrix:     matrixPtr(f.Matrix),
			Stops:      normStops(f.Gradient),
			FocalPoint: focal,
		}
	case tags.BitmapFill:
		return FillStyle{
			Kind:         FillBitmap,
			Matrix:       matrixPtr(f.Matrix),
			BitmapID:     f.BitmapID,
			Repeating:    f.Repeating,
			Smoothed:     f.Smoothed,
			NeedsTexture: true,
		}
	}
	return FillStyle{}
}

func (t *translator) lineStyles(off uint64, in []tags.LineStyle) []LineStyle {
	out := make([]LineStyle, len(in))
	for i, ls := range in {
		switch l := ls.(type) {
		case tags.BasicLineStyle:
			out[i] = LineStyle{Width: px(int32(l.Width)), Color: normColor(l.Color)}
		case tags.EnhancedLineStyle:
			out[i] = LineStyle{Width: px(int32(l.Width)), Color: normColor(l.Color)}
			if l.Fill != nil {
				f := t.fillStyle(off, l.Fill)
				out[i].Fill = &f
			}
		}
	}
	return out
}

// normColor maps 0..255 channels onto [0, 1].
func normColor(c swffmt.Color) Color {
	return Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
		A: float64(c.A) / 255,
	}
}

// normStops normalizes ramp ratios onto [0, 1], keeping decoded order.
func normStops(g tags.Gradient) []GradientStop {
	out := make([]GradientStop, len(g.Stops))
	for i, s := range g.Stops {
		out[i] = GradientStop{Ratio: float64(s.Ratio) / 255, Color: normColor(s.Color)}
	}
	return out
}

func matrixPtr(m swffmt.Matrix) *Matrix {
	mm := matrixToPixels(m)
	return &mm
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}
