package tags

import (
	"fmt"

	"unswf/internal/swffmt"
)

// Image payloads are decoded structurally: headers and dimensions are
// pulled apart, pixel and codestream bytes stay opaque.

// JPEGTables is the shared JPEG encoding table block used by DefineBits
// characters.
type JPEGTables struct {
	Data []byte `json:"-"`
}

// DefineBits is a JPEG image whose encoding tables live in the file-level
// JPEGTables tag.
type DefineBits struct {
	CharacterID uint16 `json:"characterId"`
	Data        []byte `json:"-"`
}

// DefineBitsJPEG2 is a self-contained image codestream.
type DefineBitsJPEG2 struct {
	CharacterID uint16 `json:"characterId"`
	Data        []byte `json:"-"`
}

// DefineBitsJPEG3 adds a deflate-compressed alpha plane after the
// codestream. AlphaData is kept compressed.
type DefineBitsJPEG3 struct {
	CharacterID uint16 `json:"characterId"`
	Data        []byte `json:"-"`
	AlphaData   []byte `json:"-"`
}

// Lossless bitmap formats.
const (
	LosslessPalette8 = 3
	LosslessRGB15    = 4
	LosslessRGB32    = 5
)

// DefineBitsLossless is a deflate-compressed bitmap. HasAlpha marks the
// DefineBitsLossless2 form, whose pixel data carries an alpha channel.
// PaletteSize is the palette entry count for LosslessPalette8, zero
// otherwise. Data is the compressed color table plus pixel payload.
type DefineBitsLossless struct {
	CharacterID uint16 `json:"characterId"`
	HasAlpha    bool   `json:"hasAlpha"`
	Format      uint8  `json:"format"`
	Width       uint16 `json:"width"`
	Height      uint16 `json:"height"`
	PaletteSize int    `json:"paletteSize,omitempty"`
	Data        []byte `json:"-"`
}

func (JPEGTables) isTag()         {}
func (DefineBits) isTag()         {}
func (DefineBitsJPEG2) isTag()    {}
func (DefineBitsJPEG3) isTag()    {}
func (DefineBitsLossless) isTag() {}

func decodeJPEGTables(w *Walker, body []byte) (Tag, error) {
	return JPEGTables{Data: body}, nil
}

func decodeDefineBits(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	id, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("bits: id: %w", err)
	}
	data, _ := r.ReadSpan(r.Remaining())
	return DefineBits{CharacterID: id, Data: data}, nil
}

func decodeDefineBitsJPEG2(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	id, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("jpeg2: id: %w", err)
	}
	data, _ := r.ReadSpan(r.Remaining())
	return DefineBitsJPEG2{CharacterID: id, Data: data}, nil
}

func decodeDefineBitsJPEG3(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	var img DefineBitsJPEG3
	var err error
	if img.CharacterID, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("jpeg3: id: %w", err)
	}
	alphaOffset, err := r.ReadUint32()
	if err != nil {
		return img, fmt.Errorf("jpeg3 %d: alpha offset: %w", img.CharacterID, err)
	}
	if int(alphaOffset) > r.Remaining() {
		return img, fmt.Errorf("jpeg3 %d: alpha offset %d exceeds remaining %d bytes",
			img.CharacterID, alphaOffset, r.Remaining())
	}
	img.Data, _ = r.ReadSpan(int(alphaOffset))
	img.AlphaData, _ = r.ReadSpan(r.Remaining())
	return img, nil
}

func losslessDecoder(hasAlpha bool) DecodeFunc {
	return func(w *Walker, body []byte) (Tag, error) {
		return decodeDefineBitsLossless(w, body, hasAlpha)
	}
}

func decodeDefineBitsLossless(w *Walker, body []byte, hasAlpha bool) (Tag, error) {
	r := swffmt.NewReader(body)
	img := DefineBitsLossless{HasAlpha: hasAlpha}
	var err error
	if img.CharacterID, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("lossless: id: %w", err)
	}
	if img.Format, err = r.ReadUint8(); err != nil {
		return img, fmt.Errorf("lossless %d: format: %w", img.CharacterID, err)
	}
	if img.Width, err = r.ReadUint16(); err != nil {
		return img, fmt.Errorf("lossless %d: width: %w", img.CharacterID, err)
	}
	if img.Height, err = r.ReadUint16(); err != nil {
		return img, fmt.Errorf("lossless %d: height: %w", img.CharacterID, err)
	}
	switch img.Format {
	case LosslessPalette8:
		n, err := r.ReadUint8()
		if err != nil {
			return img, fmt.Errorf("lossless %d: palette size: %w", img.CharacterID, err)
		}
		img.PaletteSize = int(n) + 1
	case LosslessRGB15, LosslessRGB32:
	default:
		return img, fmt.Errorf("lossless %d: unknown format %d", img.CharacterID, img.Format)
	}
	img.Data, _ = r.ReadSpan(r.Remaining())
	return img, nil
}
