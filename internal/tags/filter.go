package tags

import (
	"fmt"

	"unswf/internal/swffmt"
)

// Filter is one surface filter from a PlaceObject3 filter list.
type Filter interface {
	isFilter()
}

// DropShadowFilter casts an offset shadow of the object's alpha.
type DropShadowFilter struct {
	Color           swffmt.Color `json:"color"`
	BlurX           float64      `json:"blurX"`
	BlurY           float64      `json:"blurY"`
	Angle           float64      `json:"angle"`
	Distance        float64      `json:"distance"`
	Strength        float64      `json:"strength"`
	InnerShadow     bool         `json:"innerShadow"`
	Knockout        bool         `json:"knockout"`
	CompositeSource bool         `json:"compositeSource"`
	Passes          uint8        `json:"passes"`
}

// BlurFilter is a box blur run Passes times.
type BlurFilter struct {
	BlurX  float64 `json:"blurX"`
	BlurY  float64 `json:"blurY"`
	Passes uint8   `json:"passes"`
}

// GlowFilter is a drop shadow without offset.
type GlowFilter struct {
	Color           swffmt.Color `json:"color"`
	BlurX           float64      `json:"blurX"`
	BlurY           float64      `json:"blurY"`
	Strength        float64      `json:"strength"`
	InnerGlow       bool         `json:"innerGlow"`
	Knockout        bool         `json:"knockout"`
	CompositeSource bool         `json:"compositeSource"`
	Passes          uint8        `json:"passes"`
}

// BevelFilter shades opposing edges with shadow and highlight colors.
type BevelFilter struct {
	ShadowColor     swffmt.Color `json:"shadowColor"`
	HighlightColor  swffmt.Color `json:"highlightColor"`
	BlurX           float64      `json:"blurX"`
	BlurY           float64      `json:"blurY"`
	Angle           float64      `json:"angle"`
	Distance        float64      `json:"distance"`
	Strength        float64      `json:"strength"`
	InnerShadow     bool         `json:"innerShadow"`
	Knockout        bool         `json:"knockout"`
	CompositeSource bool         `json:"compositeSource"`
	OnTop           bool         `json:"onTop"`
	Passes          uint8        `json:"passes"`
}

// GradientGlowFilter is a glow shaded through a gradient ramp.
type GradientGlowFilter struct {
	Colors          []swffmt.Color `json:"colors"`
	Ratios          []uint8        `json:"ratios"`
	BlurX           float64        `json:"blurX"`
	BlurY           float64        `json:"blurY"`
	Angle           float64        `json:"angle"`
	Distance        float64        `json:"distance"`
	Strength        float64        `json:"strength"`
	InnerGlow       bool           `json:"innerGlow"`
	Knockout        bool           `json:"knockout"`
	CompositeSource bool           `json:"compositeSource"`
	OnTop           bool           `json:"onTop"`
	Passes          uint8          `json:"passes"`
}

// GradientBevelFilter is a bevel shaded through a gradient ramp. Its wire
// layout matches GradientGlowFilter.
type GradientBevelFilter GradientGlowFilter

// ConvolutionFilter applies an arbitrary MatrixX by MatrixY kernel.
type ConvolutionFilter struct {
	MatrixX       uint8        `json:"matrixX"`
	MatrixY       uint8        `json:"matrixY"`
	Divisor       float32      `json:"divisor"`
	Bias          float32      `json:"bias"`
	Kernel        []float32    `json:"kernel"`
	DefaultColor  swffmt.Color `json:"defaultColor"`
	Clamp         bool         `json:"clamp"`
	PreserveAlpha bool         `json:"preserveAlpha"`
}

// ColorMatrixFilter multiplies each pixel by a 4x5 color matrix.
type ColorMatrixFilter struct {
	Matrix [20]float32 `json:"matrix"`
}

func (DropShadowFilter) isFilter()    {}
func (BlurFilter) isFilter()          {}
func (GlowFilter) isFilter()          {}
func (BevelFilter) isFilter()         {}
func (GradientGlowFilter) isFilter()  {}
func (GradientBevelFilter) isFilter() {}
func (ConvolutionFilter) isFilter()   {}
func (ColorMatrixFilter) isFilter()   {}

// Filter kind codes on the wire.
const (
	filterDropShadow = iota
	filterBlur
	filterGlow
	filterBevel
	filterGradientGlow
	filterConvolution
	filterColorMatrix
	filterGradientBevel
)

func readFilterList(w *Walker, r *swffmt.Reader) ([]Filter, error) {
	count, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("filter count: %w", err)
	}
	out := make([]Filter, 0, count)
	for i := 0; i < int(count); i++ {
		f, err := readFilter(w, r)
		if err != nil {
			return out, fmt.Errorf("filter %d/%d: %w", i, count, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func readFilter(w *Walker, r *swffmt.Reader) (Filter, error) {
	kind, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	switch int(kind) {
	case filterDropShadow:
		return readDropShadowFilter(r)
	case filterBlur:
		return readBlurFilter(r)
	case filterGlow:
		return readGlowFilter(r)
	case filterBevel:
		return readBevelFilter(r)
	case filterGradientGlow:
		return readGradientFilter(r, false)
	case filterConvolution:
		return readConvolutionFilter(w, r)
	case filterColorMatrix:
		return readColorMatrixFilter(r)
	case filterGradientBevel:
		return readGradientFilter(r, true)
	default:
		return nil, fmt.Errorf("unknown filter kind %d", kind)
	}
}

func readDropShadowFilter(r *swffmt.Reader) (Filter, error) {
	var f DropShadowFilter
	var err error
	if f.Color, err = r.ReadRGBA(); err != nil {
		return nil, err
	}
	if f.BlurX, err = r.ReadFixed16(); err != nil {
		return nil, err
	}
	if f.BlurY, err = r.ReadFixed16(); err != nil {
		return nil, err
	}
	if f.Angle, err = r.ReadFixed16(); err != nil {
		return nil, err
	}
	if f.Distance, err = r.ReadFixed16(); err != nil {
		return nil, err
	}
	if f.Strength, err = r.ReadFixed8(); err != nil {
		return nil, err
	}
	flags, err := r.ReadUB(3)
	if err != nil {
		return nil, err
	}
	f.InnerShadow = flags&4 != 0
	f.Knockout = flags&2 != 0
	f.CompositeSource = flags&1 != 0
	passes, err := r.ReadUB(5)
	if err != nil {
		return nil, err
	}
	f.Passes = uint8(passes)
	return f, nil
}

func readBlurFilter(r *swffmt.Reader) (Filter, error) {
	var f BlurFilter
	var err error
	if f.BlurX, err = r.ReadFixed16(); err != nil {
		return nil, err
	}
	if f.BlurY, err = r.ReadFixed16(); err != nil {
		return nil, err
	}
	passes, err := r.ReadUB(5)
	if err != nil {
		return nil, err
	}
	f.Passes = uint8(passes)
	if _, err := r.ReadUB(3); err != nil { // reserved
		return nil, err
	}
	return f, nil
}

func readGlowFilter(r *swffmt.Reader) (Filter, error) {
	var f GlowFilter
	var err error
	if f.Color, err = r.ReadRGBA(); err != nil {
		return nil, err
	}
	if f.BlurX, err = r.ReadFixed16(); err != nil {
		return nil, err
	}
	if f.BlurY, err = r.ReadFixed16(); err != nil {
		return nil, err
	}
	if f.Strength, err = r.ReadFixed8(); err != nil {
		return nil, err
	}
	flags, err := r.ReadUB(3)
	if err != nil {
		return nil, err
	}
	f.InnerGlow = flags&4 != 0
	f.Knockout = flags&2 != 0
	f.CompositeSource = flags&1 != 0
	passes, err := r.ReadUB(5)
	if err != nil {
		return nil, err
	}
	f.Passes = uint8(passes)
	return f, nil
}

func readBevelFilter(r *swffmt.Reader) (Filter, error) {
	var f BevelFilter
	var err error
	if f.ShadowColor, err = r.ReadRGBA(); err != nil {
		return nil, err
	}
	if f.HighlightColor, err = r.ReadRGBA(); err != nil {
		return nil, err
	}
	if f.BlurX, err = r.ReadFixed16(); err != nil {
		return nil, err
	}
	if f.BlurY, err = r.ReadFixed16(); err != nil {
		return nil, err
	}
	if f.Angle, err = r.ReadFixed16(); err != nil {
		return nil, err
	}
	if f.Distance, err = r.ReadFixed16(); err != nil {
		return nil, err
	}
	if f.Strength, err = r.ReadFixed8(); err != nil {
		return nil, err
	}
	flags, err := r.ReadUB(4)
	if err != nil {
		return nil, err
	}
	f.InnerShadow = flags&8 != 0
	f.Knockout = flags&4 != 0
	f.CompositeSource = flags&2 != 0
	f.OnTop = flags&1 != 0
	passes, err := r.ReadUB(4)
	if err != nil {
		return nil, err
	}
	f.Passes = uint8(passes)
	return f, nil
}

func readGradientFilter(r *swffmt.Reader, bevel bool) (Filter, error) {
	var f GradientGlowFilter
	count, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	f.Colors = make([]swffmt.Color, count)
	for i := range f.Colors {
		if f.Colors[i], err = r.ReadRGBA(); err != nil {
			return nil, err
		}
	}
	f.Ratios = make([]uint8, count)
	for i := range f.Ratios {
		if f.Ratios[i], err = r.ReadUint8(); err != nil {
			return nil, err
		}
	}
	if f.BlurX, err = r.ReadFixed16(); err != nil {
		return nil, err
	}
	if f.BlurY, err = r.ReadFixed16(); err != nil {
		return nil, err
	}
	if f.Angle, err = r.ReadFixed16(); err != nil {
		return nil, err
	}
	if f.Distance, err = r.ReadFixed16(); err != nil {
		return nil, err
	}
	if f.Strength, err = r.ReadFixed8(); err != nil {
		return nil, err
	}
	flags, err := r.ReadUB(4)
	if err != nil {
		return nil, err
	}
	f.InnerGlow = flags&8 != 0
	f.Knockout = flags&4 != 0
	f.CompositeSource = flags&2 != 0
	f.OnTop = flags&1 != 0
	passes, err := r.ReadUB(4)
	if err != nil {
		return nil, err
	}
	f.Passes = uint8(passes)
	if bevel {
		return GradientBevelFilter(f), nil
	}
	return f, nil
}

func readConvolutionFilter(w *Walker, r *swffmt.Reader) (Filter, error) {
	var f ConvolutionFilter
	var err error
	if f.MatrixX, err = r.ReadUint8(); err != nil {
		return nil, err
	}
	if f.MatrixY, err = r.ReadUint8(); err != nil {
		return nil, err
	}
	if f.Divisor, err = r.ReadFloat32(); err != nil {
		return nil, err
	}
	if f.Bias, err = r.ReadFloat32(); err != nil {
		return nil, err
	}
	n := int(f.MatrixX) * int(f.MatrixY)
	if err := w.checkCount("convolution kernel", n); err != nil {
		return nil, err
	}
	f.Kernel = make([]float32, n)
	for i := range f.Kernel {
		if f.Kernel[i], err = r.ReadFloat32(); err != nil {
			return nil, err
		}
	}
	if f.DefaultColor, err = r.ReadRGBA(); err != nil {
		return nil, err
	}
	if _, err := r.ReadUB(6); err != nil { // reserved
		return nil, err
	}
	flags, err := r.ReadUB(2)
	if err != nil {
		return nil, err
	}
	f.Clamp = flags&2 != 0
	f.PreserveAlpha = flags&1 != 0
	return f, nil
}

func readColorMatrixFilter(r *swffmt.Reader) (Filter, error) {
	var f ColorMatrixFilter
	for i := range f.Matrix {
		v, err := r.ReadFloat32()
		if err != nil {
			return nil, err
		}
		f.Matrix[i] = v
	}
	return f, nil
}
