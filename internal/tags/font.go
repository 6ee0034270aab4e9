package tags

import (
	"bytes"
	"fmt"

	"unswf/internal/swffmt"
)

// Glyph is one font outline. Code is the character it maps to, zero for v1
// fonts, which carry no code table.
type Glyph struct {
	Code    uint16        `json:"code,omitempty"`
	Records []ShapeRecord `json:"records"`
}

// DefineFont is the v1 font: glyph outlines only, no name, codes, or
// metrics.
type DefineFont struct {
	FontID uint16  `json:"fontId"`
	Glyphs []Glyph `json:"glyphs"`
}

// KerningRecord adjusts the advance between a specific glyph pair.
type KerningRecord struct {
	Code1      uint16 `json:"code1"`
	Code2      uint16 `json:"code2"`
	Adjustment int16  `json:"adjustment"`
}

// FontLayout is the optional metrics block of a v2/v3 font. Advances and
// Bounds are indexed per glyph.
type FontLayout struct {
	Ascent   uint16          `json:"ascent"`
	Descent  uint16          `json:"descent"`
	Leading  int16           `json:"leading"`
	Advances []int16         `json:"advances"`
	Bounds   []swffmt.Rect   `json:"bounds"`
	Kerning  []KerningRecord `json:"kerning,omitempty"`
}

// DefineFont2 is the v2/v3 font. Version 3 stores glyph outlines at twenty
// times the em resolution; the outlines decode identically and consumers
// divide by 20 when scaling.
type DefineFont2 struct {
	Version   int         `json:"version"`
	FontID    uint16      `json:"fontId"`
	Name      string      `json:"name"`
	Italic    bool        `json:"italic"`
	Bold      bool        `json:"bold"`
	SmallText bool        `json:"smallText"`
	ShiftJIS  bool        `json:"shiftJIS"`
	ANSI      bool        `json:"ansi"`
	Language  uint8       `json:"language"`
	Glyphs    []Glyph     `json:"glyphs"`
	Layout    *FontLayout `json:"layout,omitempty"`
}

// DefineFontName attaches display name and copyright to a font.
type DefineFontName struct {
	FontID    uint16 `json:"fontId"`
	Name      string `json:"name"`
	Copyright string `json:"copyright"`
}

func (DefineFont) isTag()     {}
func (DefineFont2) isTag()    {}
func (DefineFontName) isTag() {}

// decodeDefineFont decodes the v1 layout. The glyph count is not stored:
// the first offset table entry divided by two is the entry count, since the
// table precedes the first glyph directly.
func decodeDefineFont(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	var f DefineFont
	var err error
	if f.FontID, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("font: id: %w", err)
	}
	tableStart := r.Position()
	if r.Remaining() == 0 {
		return f, nil
	}
	first, err := r.ReadUint16()
	if err != nil {
		return f, fmt.Errorf("font %d: offset table: %w", f.FontID, err)
	}
	n := int(first) / 2
	if err := w.checkCount("glyph", n); err != nil {
		return f, fmt.Errorf("font %d: %w", f.FontID, err)
	}
	offsets := make([]int, n)
	if n > 0 {
		offsets[0] = int(first)
	}
	for i := 1; i < n; i++ {
		o, err := r.ReadUint16()
		if err != nil {
			return f, fmt.Errorf("font %d: offset %d/%d: %w", f.FontID, i, n, err)
		}
		offsets[i] = int(o)
	}
	for i, off := range offsets {
		gr := swffmt.NewReaderAt(body, tableStart+off)
		recs, err := readGlyphRecords(w, gr)
		if err != nil {
			return f, fmt.Errorf("font %d: glyph %d/%d at offset %d: %w", f.FontID, i, n, off, err)
		}
		f.Glyphs = append(f.Glyphs, Glyph{Records: recs})
	}
	return f, nil
}

// DefineFont2 flag bits.
const (
	fontHasLayout   = 0x80
	fontShiftJIS    = 0x40
	fontSmallText   = 0x20
	fontANSI        = 0x10
	fontWideOffsets = 0x08
	fontWideCodes   = 0x04
	fontItalic      = 0x02
	fontBold        = 0x01
)

func font2Decoder(version int) DecodeFunc {
	return func(w *Walker, body []byte) (Tag, error) {
		return decodeDefineFont2(w, body, version)
	}
}

// decodeDefineFont2 decodes the v2/v3 layout:
//
//	id          UI16
//	flags       UI8
//	language    UI8
//	nameLen     UI8, name bytes
//	numGlyphs   UI16
//	offsets     UI16/UI32 per glyph, then code table offset,
//	            both relative to the first offset entry
//	glyph shapes, code table UI8/UI16 per glyph
//	layout      (flagged)
func decodeDefineFont2(w *Walker, body []byte, version int) (Tag, error) {
	r := swffmt.NewReader(body)
	f := DefineFont2{Version: version}
	var err error
	if f.FontID, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("font: id: %w", err)
	}
	flags, err := r.ReadUint8()
	if err != nil {
		return f, fmt.Errorf("font %d: flags: %w", f.FontID, err)
	}
	f.ShiftJIS = flags&fontShiftJIS != 0
	f.SmallText = flags&fontSmallText != 0
	f.ANSI = flags&fontANSI != 0
	f.Italic = flags&fontItalic != 0
	f.Bold = flags&fontBold != 0
	wideOffsets := flags&fontWideOffsets != 0
	wideCodes := flags&fontWideCodes != 0
	if f.Language, err = r.ReadUint8(); err != nil {
		return f, fmt.Errorf("font %d: language: %w", f.FontID, err)
	}
	nameLen, err := r.ReadUint8()
	if err != nil {
		return f, fmt.Errorf("font %d: name length: %w", f.FontID, err)
	}
	nameBytes, err := r.ReadBytes(int(nameLen))
	if err != nil {
		return f, fmt.Errorf("font %d: name: %w", f.FontID, err)
	}
	f.Name = string(bytes.TrimRight(nameBytes, "\x00"))
	numGlyphs, err := r.ReadUint16()
	if err != nil {
		return f, fmt.Errorf("font %d: glyph count: %w", f.FontID, err)
	}
	if err := w.checkCount("glyph", int(numGlyphs)); err != nil {
		return f, fmt.Errorf("font %d: %w", f.FontID, err)
	}
	if numGlyphs == 0 && r.Remaining() == 0 {
		// Device font stub: no offset table follows.
		return f, nil
	}
	tableStart := r.Position()
	readOffset := func() (int, error) {
		if wideOffsets {
			v, err := r.ReadUint32()
			return int(v), err
		}
		v, err := r.ReadUint16()
		return int(v), err
	}
	offsets := make([]int, numGlyphs)
	for i := range offsets {
		if offsets[i], err = readOffset(); err != nil {
			return f, fmt.Errorf("font %d: offset %d/%d: %w", f.FontID, i, numGlyphs, err)
		}
	}
	codeTableOffset, err := readOffset()
	if err != nil {
		return f, fmt.Errorf("font %d: code table offset: %w", f.FontID, err)
	}
	f.Glyphs = make([]Glyph, numGlyphs)
	for i, off := range offsets {
		gr := swffmt.NewReaderAt(body, tableStart+off)
		recs, err := readGlyphRecords(w, gr)
		if err != nil {
			return f, fmt.Errorf("font %d: glyph %d/%d at offset %d: %w", f.FontID, i, numGlyphs, off, err)
		}
		f.Glyphs[i].Records = recs
	}
	cr := swffmt.NewReaderAt(body, tableStart+codeTableOffset)
	readCode := func() (uint16, error) {
		if wideCodes {
			return cr.ReadUint16()
		}
		v, err := cr.ReadUint8()
		return uint16(v), err
	}
	for i := range f.Glyphs {
		if f.Glyphs[i].Code, err = readCode(); err != nil {
			return f, fmt.Errorf("font %d: code %d/%d: %w", f.FontID, i, numGlyphs, err)
		}
	}
	if flags&fontHasLayout == 0 {
		return f, nil
	}
	lo, err := readFontLayout(w, cr, int(numGlyphs), wideCodes)
	if err != nil {
		return f, fmt.Errorf("font %d: layout: %w", f.FontID, err)
	}
	f.Layout = lo
	return f, nil
}

func readFontLayout(w *Walker, r *swffmt.Reader, numGlyphs int, wideCodes bool) (*FontLayout, error) {
	var lo FontLayout
	var err error
	if lo.Ascent, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("ascent: %w", err)
	}
	if lo.Descent, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("descent: %w", err)
	}
	if lo.Leading, err = r.ReadInt16(); err != nil {
		return nil, fmt.Errorf("leading: %w", err)
	}
	lo.Advances = make([]int16, numGlyphs)
	for i := range lo.Advances {
		if lo.Advances[i], err = r.ReadInt16(); err != nil {
			return &lo, fmt.Errorf("advance %d/%d: %w", i, numGlyphs, err)
		}
	}
	lo.Bounds = make([]swffmt.Rect, numGlyphs)
	for i := range lo.Bounds {
		if lo.Bounds[i], err = r.ReadRect(); err != nil {
			return &lo, fmt.Errorf("bounds %d/%d: %w", i, numGlyphs, err)
		}
	}
	kerningCount, err := r.ReadUint16()
	if err != nil {
		return &lo, fmt.Errorf("kerning count: %w", err)
	}
	if err := w.checkCount("kerning", int(kerningCount)); err != nil {
		return &lo, err
	}
	readCode := func() (uint16, error) {
		if wideCodes {
			return r.ReadUint16()
		}
		v, err := r.ReadUint8()
		return uint16(v), err
	}
	for i := 0; i < int(kerningCount); i++ {
		var k KerningRecord
		if k.Code1, err = readCode(); err != nil {
			return &lo, fmt.Errorf("kerning %d/%d: %w", i, kerningCount, err)
		}
		if k.Code2, err = readCode(); err != nil {
			return &lo, fmt.Errorf("kerning %d/%d: %w", i, kerningCount, err)
		}
		if k.Adjustment, err = r.ReadInt16(); err != nil {
			return &lo, fmt.Errorf("kerning %d/%d: %w", i, kerningCount, err)
		}
		lo.Kerning = append(lo.Kerning, k)
	}
	return &lo, nil
}

func decodeDefineFontName(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	var fn DefineFontName
	var err error
	if fn.FontID, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("font name: id: %w", err)
	}
	if fn.Name, err = r.ReadString(); err != nil {
		return fn, fmt.Errorf("font name %d: name: %w", fn.FontID, err)
	}
	if fn.Copyright, err = r.ReadString(); err != nil {
		return fn, fmt.Errorf("font name %d: copyright: %w", fn.FontID, err)
	}
	return fn, nil
}
