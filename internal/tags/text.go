package tags

import (
	"fmt"

	"unswf/internal/swffmt"
)

// TextGlyph is one glyph reference in a text record: a glyph table index
// and a twips advance to the next glyph.
type TextGlyph struct {
	Index   uint32 `json:"index"`
	Advance int32  `json:"advance"`
}

// TextRecord is one styled glyph run. Nil fields were absent on the wire
// and inherit from the previous record.
type TextRecord struct {
	FontID  *uint16       `json:"fontId,omitempty"`
	Color   *swffmt.Color `json:"color,omitempty"`
	XOffset *int16        `json:"xOffset,omitempty"`
	YOffset *int16        `json:"yOffset,omitempty"`
	Height  *uint16       `json:"height,omitempty"`
	Glyphs  []TextGlyph   `json:"glyphs"`
}

// DefineText is a static glyph-indexed text block. Version 2 carries RGBA
// record colors, version 1 opaque RGB.
type DefineText struct {
	Version     int           `json:"version"`
	CharacterID uint16        `json:"characterId"`
	Bounds      swffmt.Rect   `json:"bounds"`
	Matrix      swffmt.Matrix `json:"matrix"`
	GlyphBits   uint8         `json:"glyphBits"`
	AdvanceBits uint8         `json:"advanceBits"`
	Records     []TextRecord  `json:"records"`
}

// Layout is the optional paragraph block of an edit text.
type Layout struct {
	Align       uint8  `json:"align"`
	LeftMargin  uint16 `json:"leftMargin"`
	RightMargin uint16 `json:"rightMargin"`
	Indent      uint16 `json:"indent"`
	Leading     int16  `json:"leading"`
}

// DefineEditText is a dynamic text field definition.
type DefineEditText struct {
	CharacterID  uint16        `json:"characterId"`
	Bounds       swffmt.Rect   `json:"bounds"`
	WordWrap     bool          `json:"wordWrap"`
	Multiline    bool          `json:"multiline"`
	Password     bool          `json:"password"`
	ReadOnly     bool          `json:"readOnly"`
	AutoSize     bool          `json:"autoSize"`
	NoSelect     bool          `json:"noSelect"`
	Border       bool          `json:"border"`
	WasStatic    bool          `json:"wasStatic"`
	HTML         bool          `json:"html"`
	UseOutlines  bool          `json:"useOutlines"`
	FontID       *uint16       `json:"fontId,omitempty"`
	FontClass    *string       `json:"fontClass,omitempty"`
	FontHeight   *uint16       `json:"fontHeight,omitempty"`
	TextColor    *swffmt.Color `json:"textColor,omitempty"`
	MaxLength    *uint16       `json:"maxLength,omitempty"`
	Layout       *Layout       `json:"layout,omitempty"`
	VariableName string        `json:"variableName"`
	InitialText  *string       `json:"initialText,omitempty"`
}

func (DefineText) isTag()     {}
func (DefineEditText) isTag() {}

func textDecoder(version int) DecodeFunc {
	return func(w *Walker, body []byte) (Tag, error) {
		return decodeDefineText(w, body, version)
	}
}

// decodeDefineText decodes the static text layout:
//
//	id          UI16
//	bounds      RECT
//	matrix      MATRIX
//	glyphBits   UI8
//	advanceBits UI8
//	records     until a zero flags byte
func decodeDefineText(w *Walker, body []byte, version int) (Tag, error) {
	r := swffmt.NewReader(body)
	dt := DefineText{Version: version}
	var err error
	if dt.CharacterID, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("text: id: %w", err)
	}
	if dt.Bounds, err = r.ReadRect(); err != nil {
		return dt, fmt.Errorf("text %d: bounds: %w", dt.CharacterID, err)
	}
	if dt.Matrix, err = r.ReadMatrix(); err != nil {
		return dt, fmt.Errorf("text %d: matrix: %w", dt.CharacterID, err)
	}
	if dt.GlyphBits, err = r.ReadUint8(); err != nil {
		return dt, fmt.Errorf("text %d: glyph bits: %w", dt.CharacterID, err)
	}
	if dt.AdvanceBits, err = r.ReadUint8(); err != nil {
		return dt, fmt.Errorf("text %d: advance bits: %w", dt.CharacterID, err)
	}
	for n := 0; ; n++ {
		if err := w.checkCount("text record", n); err != nil {
			return dt, fmt.Errorf("text %d: %w", dt.CharacterID, err)
		}
		rec, done, err := readTextRecord(r, version, int(dt.GlyphBits), int(dt.AdvanceBits))
		if err != nil {
			return dt, fmt.Errorf("text %d: record %d: %w", dt.CharacterID, n, err)
		}
		if done {
			break
		}
		dt.Records = append(dt.Records, rec)
	}
	return dt, nil
}

func readTextRecord(r *swffmt.Reader, version, glyphBits, advanceBits int) (TextRecord, bool, error) {
	var tr TextRecord
	flags, err := r.ReadUint8()
	if err != nil {
		return tr, false, err
	}
	if flags == 0 {
		return tr, true, nil
	}
	if flags&0x08 != 0 {
		id, err := r.ReadUint16()
		if err != nil {
			return tr, false, fmt.Errorf("font id: %w", err)
		}
		tr.FontID = &id
	}
	if flags&0x04 != 0 {
		var c swffmt.Color
		if version >= 2 {
			c, err = r.ReadRGBA()
		} else {
			c, err = r.ReadRGB()
		}
		if err != nil {
			return tr, false, fmt.Errorf("color: %w", err)
		}
		tr.Color = &c
	}
	if flags&0x01 != 0 {
		x, err := r.ReadInt16()
		if err != nil {
			return tr, false, fmt.Errorf("x offset: %w", err)
		}
		tr.XOffset = &x
	}
	if flags&0x02 != 0 {
		y, err := r.ReadInt16()
		if err != nil {
			return tr, false, fmt.Errorf("y offset: %w", err)
		}
		tr.YOffset = &y
	}
	if flags&0x08 != 0 {
		h, err := r.ReadUint16()
		if err != nil {
			return tr, false, fmt.Errorf("height: %w", err)
		}
		tr.Height = &h
	}
	count, err := r.ReadUint8()
	if err != nil {
		return tr, false, fmt.Errorf("glyph count: %w", err)
	}
	tr.Glyphs = make([]TextGlyph, 0, count)
	for i := 0; i < int(count); i++ {
		var g TextGlyph
		if g.Index, err = r.ReadUB(glyphBits); err != nil {
			return tr, false, fmt.Errorf("glyph %d/%d index: %w", i, count, err)
		}
		if g.Advance, err = r.ReadSB(advanceBits); err != nil {
			return tr, false, fmt.Errorf("glyph %d/%d advance: %w", i, count, err)
		}
		tr.Glyphs = append(tr.Glyphs, g)
	}
	r.AlignByte()
	return tr, false, nil
}

// Edit text flag bits, split across two bytes.
const (
	editHasText      = 0x80
	editWordWrap     = 0x40
	editMultiline    = 0x20
	editPassword     = 0x10
	editReadOnly     = 0x08
	editHasTextColor = 0x04
	editHasMaxLength = 0x02
	editHasFont      = 0x01

	editHasFontClass = 0x80
	editAutoSize     = 0x40
	editHasLayout    = 0x20
	editNoSelect     = 0x10
	editBorder       = 0x08
	editWasStatic    = 0x04
	editHTML         = 0x02
	editUseOutlines  = 0x01
)

func decodeDefineEditText(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	var et DefineEditText
	var err error
	if et.CharacterID, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("edit text: id: %w", err)
	}
	if et.Bounds, err = r.ReadRect(); err != nil {
		return et, fmt.Errorf("edit text %d: bounds: %w", et.CharacterID, err)
	}
	f1, err := r.ReadUint8()
	if err != nil {
		return et, fmt.Errorf("edit text %d: flags: %w", et.CharacterID, err)
	}
	f2, err := r.ReadUint8()
	if err != nil {
		return et, fmt.Errorf("edit text %d: flags: %w", et.CharacterID, err)
	}
	et.WordWrap = f1&editWordWrap != 0
	et.Multiline = f1&editMultiline != 0
	et.Password = f1&editPassword != 0
	et.ReadOnly = f1&editReadOnly != 0
	et.AutoSize = f2&editAutoSize != 0
	et.NoSelect = f2&editNoSelect != 0
	et.Border = f2&editBorder != 0
	et.WasStatic = f2&editWasStatic != 0
	et.HTML = f2&editHTML != 0
	et.UseOutlines = f2&editUseOutlines != 0
	if f1&editHasFont != 0 {
		id, err := r.ReadUint16()
		if err != nil {
			return et, fmt.Errorf("edit text %d: font id: %w", et.CharacterID, err)
		}
		et.FontID = &id
	}
	if f2&editHasFontClass != 0 {
		fc, err := r.ReadString()
		if err != nil {
			return et, fmt.Errorf("edit text %d: font class: %w", et.CharacterID, err)
		}
		et.FontClass = &fc
	}
	if f1&editHasFont != 0 || f2&editHasFontClass != 0 {
		h, err := r.ReadUint16()
		if err != nil {
			return et, fmt.Errorf("edit text %d: font height: %w", et.CharacterID, err)
		}
		et.FontHeight = &h
	}
	if f1&editHasTextColor != 0 {
		c, err := r.ReadRGBA()
		if err != nil {
			return et, fmt.Errorf("edit text %d: color: %w", et.CharacterID, err)
		}
		et.TextColor = &c
	}
	if f1&editHasMaxLength != 0 {
		ml, err := r.ReadUint16()
		if err != nil {
			return et, fmt.Errorf("edit text %d: max length: %w", et.CharacterID, err)
		}
		et.MaxLength = &ml
	}
	if f2&editHasLayout != 0 {
		var lo Layout
		if lo.Align, err = r.ReadUint8(); err != nil {
			return et, fmt.Errorf("edit text %d: layout: %w", et.CharacterID, err)
		}
		if lo.LeftMargin, err = r.ReadUint16(); err != nil {
			return et, fmt.Errorf("edit text %d: layout: %w", et.CharacterID, err)
		}
		if lo.RightMargin, err = r.ReadUint16(); err != nil {
			return et, fmt.Errorf("edit text %d: layout: %w", et.CharacterID, err)
		}
		if lo.Indent, err = r.ReadUint16(); err != nil {
			return et, fmt.Errorf("edit text %d: layout: %w", et.CharacterID, err)
		}
		if lo.Leading, err = r.ReadInt16(); err != nil {
			return et, fmt.Errorf("edit text %d: layout: %w", et.CharacterID, err)
		}
		et.Layout = &lo
	}
	if et.VariableName, err = r.ReadString(); err != nil {
		return et, fmt.Errorf("edit text %d: variable name: %w", et.CharacterID, err)
	}
	if f1&editHasText != 0 {
		text, err := r.ReadString()
		if err != nil {
			return et, fmt.Errorf("edit text %d: initial text: %w", et.CharacterID, err)
		}
		et.InitialText = &text
	}
	return et, nil
}
