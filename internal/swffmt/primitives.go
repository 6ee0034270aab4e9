package swffmt

// Rect is a bit-packed bounding box in twips. All four fields occupy the
// same bit width, given by a leading 5-bit field. Min is not guaranteed to
// be <= max; corrupt content inverts them and callers must tolerate that.
type Rect struct {
	XMin int32 `json:"xMin"`
	XMax int32 `json:"xMax"`
	YMin int32 `json:"yMin"`
	YMax int32 `json:"yMax"`
}

// Width returns XMax - XMin in twips.
func (rc Rect) Width() int32 { return rc.XMax - rc.XMin }

// Height returns YMax - YMin in twips.
func (rc Rect) Height() int32 { return rc.YMax - rc.YMin }

// Matrix is the affine transform record. An absent scale decodes as
// identity (1,1) and an absent rotation as (0,0), not zero. Translation is
// always present and stays in twips; unit conversion happens downstream.
type Matrix struct {
	ScaleX      float64 `json:"scaleX"`
	ScaleY      float64 `json:"scaleY"`
	RotateSkew0 float64 `json:"rotateSkew0"`
	RotateSkew1 float64 `json:"rotateSkew1"`
	TranslateX  int32   `json:"translateX"`
	TranslateY  int32   `json:"translateY"`
}

// IdentityMatrix returns the decode default for an absent matrix.
func IdentityMatrix() Matrix {
	return Matrix{ScaleX: 1, ScaleY: 1}
}

// ColorTransform holds 8.8 fixed-point multiply terms (256 = 1.0) and
// integer add terms per channel.
type ColorTransform struct {
	RedMult   int32 `json:"redMult"`
	GreenMult int32 `json:"greenMult"`
	BlueMult  int32 `json:"blueMult"`
	RedAdd    int32 `json:"redAdd"`
	GreenAdd  int32 `json:"greenAdd"`
	BlueAdd   int32 `json:"blueAdd"`
}

// ColorTransformAlpha is the alpha-bearing variant. It is a separate type,
// not an optional field: the alpha channel changes the decoded bit layout
// of every term group.
type ColorTransformAlpha struct {
	RedMult   int32 `json:"redMult"`
	GreenMult int32 `json:"greenMult"`
	BlueMult  int32 `json:"blueMult"`
	AlphaMult int32 `json:"alphaMult"`
	RedAdd    int32 `json:"redAdd"`
	GreenAdd  int32 `json:"greenAdd"`
	BlueAdd   int32 `json:"blueAdd"`
	AlphaAdd  int32 `json:"alphaAdd"`
}

// IdentityColorTransform returns the decode default: mult 256, add 0.
func IdentityColorTransform() ColorTransformAlpha {
	return ColorTransformAlpha{RedMult: 256, GreenMult: 256, BlueMult: 256, AlphaMult: 256}
}

// Color is an 8-bit-per-channel RGBA color. RGB reads leave A = 255.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// ReadRect reads a bit-packed rectangle: a 5-bit width w, then xMin, xMax,
// yMin, yMax as signed w-bit fields, then byte alignment.
func (r *Reader) ReadRect() (Rect, error) {
	w, err := r.ReadUB(5)
	if err != nil {
		return Rect{}, err
	}
	n := int(w)
	var rc Rect
	if rc.XMin, err = r.ReadSB(n); err != nil {
		return Rect{}, err
	}
	if rc.XMax, err = r.ReadSB(n); err != nil {
		return Rect{}, err
	}
	if rc.YMin, err = r.ReadSB(n); err != nil {
		return Rect{}, err
	}
	if rc.YMax, err = r.ReadSB(n); err != nil {
		return Rect{}, err
	}
	r.AlignByte()
	return rc, nil
}

// ReadMatrix reads an affine transform: optional 16.16 scale pair, optional
// 16.16 rotate/skew pair, then an always-present translate pair in twips.
func (r *Reader) ReadMatrix() (Matrix, error) {
	m := IdentityMatrix()
	hasScale, err := r.ReadUB(1)
	if err != nil {
		return m, err
	}
	if hasScale != 0 {
		w, err := r.ReadUB(5)
		if err != nil {
			return m, err
		}
		if m.ScaleX, err = r.ReadFB(int(w)); err != nil {
			return m, err
		}
		if m.ScaleY, err = r.ReadFB(int(w)); err != nil {
			return m, err
		}
	}
	hasRotate, err := r.ReadUB(1)
	if err != nil {
		return m, err
	}
	if hasRotate != 0 {
		w, err := r.ReadUB(5)
		if err != nil {
			return m, err
		}
		if m.RotateSkew0, err = r.ReadFB(int(w)); err != nil {
			return m, err
		}
		if m.RotateSkew1, err = r.ReadFB(int(w)); err != nil {
			return m, err
		}
	}
	w, err := r.ReadUB(5)
	if err != nil {
		return m, err
	}
	if m.TranslateX, err = r.ReadSB(int(w)); err != nil {
		return m, err
	}
	if m.TranslateY, err = r.ReadSB(int(w)); err != nil {
		return m, err
	}
	r.AlignByte()
	return m, nil
}

// readCXForm reads the shared color transform layout: hasAdd bit, hasMult
// bit, 4-bit term width, then mult terms before add terms regardless of
// flag order. terms is 3 (RGB) or 4 (RGBA); outputs hold mult then add.
func (r *Reader) readCXForm(terms int, mult, add []int32) error {
	for i := range mult {
		mult[i] = 256
	}
	hasAdd, err := r.ReadUB(1)
	if err != nil {
		return err
	}
	hasMult, err := r.ReadUB(1)
	if err != nil {
		return err
	}
	w, err := r.ReadUB(4)
	if err != nil {
		return err
	}
	n := int(w)
	if hasMult != 0 {
		for i := 0; i < terms; i++ {
			if mult[i], err = r.ReadSB(n); err != nil {
				return err
			}
		}
	}
	if hasAdd != 0 {
		for i := 0; i < terms; i++ {
			if add[i], err = r.ReadSB(n); err != nil {
				return err
			}
		}
	}
	r.AlignByte()
	return nil
}

// ReadColorTransform reads the alpha-less color transform record.
func (r *Reader) ReadColorTransform() (ColorTransform, error) {
	var mult, add [3]int32
	if err := r.readCXForm(3, mult[:], add[:]); err != nil {
		return ColorTransform{}, err
	}
	return ColorTransform{
		RedMult: mult[0], GreenMult: mult[1], BlueMult: mult[2],
		RedAdd: add[0], GreenAdd: add[1], BlueAdd: add[2],
	}, nil
}

// ReadColorTransformAlpha reads the alpha-bearing color transform record.
func (r *Reader) ReadColorTransformAlpha() (ColorTransformAlpha, error) {
	var mult, add [4]int32
	if err := r.readCXForm(4, mult[:], add[:]); err != nil {
		return ColorTransformAlpha{}, err
	}
	return ColorTransformAlpha{
		RedMult: mult[0], GreenMult: mult[1], BlueMult: mult[2], AlphaMult: mult[3],
		RedAdd: add[0], GreenAdd: add[1], BlueAdd: add[2], AlphaAdd: add[3],
	}, nil
}

// ReadRGB reads a 3-byte color with alpha forced opaque.
func (r *Reader) ReadRGB() (Color, error) {
	b, err := r.ReadBytes(3)
	if err != nil {
		return Color{}, err
	}
	return Color{R: b[0], G: b[1], B: b[2], A: 255}, nil
}

// ReadRGBA reads a 4-byte color.
func (r *Reader) ReadRGBA() (Color, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return Color{}, err
	}
	return Color{R: b[0], G: b[1], B: b[2], A: b[3]}, nil
}
