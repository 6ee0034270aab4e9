package tags

import (
	"reflect"
	"testing"

	"unswf/internal/swffmt"
)

func TestDecodeDefineText(t *testing.T) {
	var bw bitWriter
	bw.u16(10)
	bw.rect(12, 0, 2000, 0, 400)
	bw.bytes(0x00) // identity matrix
	bw.bytes(4)    // glyph bits
	bw.bytes(12)   // advance bits
	// Styled record: font 2 at height 240, opaque color.
	bw.bytes(0x8c)
	bw.u16(2)
	bw.bytes(0, 128, 255)
	bw.u16(240)
	bw.bytes(2)
	bw.writeUB(4, 1)
	bw.writeSB(12, 192)
	bw.writeUB(4, 2)
	bw.writeSB(12, -8)
	bw.bytes(0x00) // end of records

	tag, err := decodeDefineText(newTestWalker(), bw.buf, 1)
	if err != nil {
		t.Fatalf("decodeDefineText: %v", err)
	}
	dt := tag.(DefineText)
	if dt.CharacterID != 10 || dt.Version != 1 {
		t.Fatalf("id/version = %d/%d, want 10/1", dt.CharacterID, dt.Version)
	}
	if dt.GlyphBits != 4 || dt.AdvanceBits != 12 {
		t.Errorf("bit widths = %d/%d, want 4/12", dt.GlyphBits, dt.AdvanceBits)
	}
	if len(dt.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(dt.Records))
	}
	rec := dt.Records[0]
	if rec.FontID == nil || *rec.FontID != 2 {
		t.Errorf("font = %v, want 2", rec.FontID)
	}
	if rec.Height == nil || *rec.Height != 240 {
		t.Errorf("height = %v, want 240", rec.Height)
	}
	wantColor := swffmt.Color{G: 128, B: 255, A: 255}
	if rec.Color == nil || *rec.Color != wantColor {
		t.Errorf("color = %v, want %+v", rec.Color, wantColor)
	}
	if rec.XOffset != nil || rec.YOffset != nil {
		t.Errorf("offsets leaked: %+v", rec)
	}
	wantGlyphs := []TextGlyph{{Index: 1, Advance: 192}, {Index: 2, Advance: -8}}
	if !reflect.DeepEqual(rec.Glyphs, wantGlyphs) {
		t.Errorf("glyphs = %+v, want %+v", rec.Glyphs, wantGlyphs)
	}
}

func TestDecodeDefineText2_OffsetsAndAlpha(t *testing.T) {
	var bw bitWriter
	bw.u16(11)
	bw.rect(4, 0, 5, 0, 5)
	bw.bytes(0x00)
	bw.bytes(3)
	bw.bytes(8)
	// Offsets only, then a second record restyling the color with alpha.
	bw.bytes(0x83)
	bw.u16(100)
	bw.u16(uint16(int16(-50)))
	bw.bytes(1)
	bw.writeUB(3, 5)
	bw.writeSB(8, 64)
	bw.bytes(0x84)
	bw.bytes(1, 2, 3, 4)
	bw.bytes(1)
	bw.writeUB(3, 6)
	bw.writeSB(8, 32)
	bw.bytes(0x00)

	tag, err := decodeDefineText(newTestWalker(), bw.buf, 2)
	if err != nil {
		t.Fatalf("decodeDefineText: %v", err)
	}
	dt := tag.(DefineText)
	if len(dt.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(dt.Records))
	}
	r0 := dt.Records[0]
	if r0.XOffset == nil || *r0.XOffset != 100 || r0.YOffset == nil || *r0.YOffset != -50 {
		t.Errorf("offsets = %v/%v, want 100/-50", r0.XOffset, r0.YOffset)
	}
	if r0.Color != nil || r0.FontID != nil {
		t.Errorf("style leaked into offset record: %+v", r0)
	}
	r1 := dt.Records[1]
	wantColor := swffmt.Color{R: 1, G: 2, B: 3, A: 4}
	if r1.Color == nil || *r1.Color != wantColor {
		t.Errorf("color = %v, want %+v", r1.Color, wantColor)
	}
	if len(r1.Glyphs) != 1 || r1.Glyphs[0] != (TextGlyph{Index: 6, Advance: 32}) {
		t.Errorf("glyphs = %+v", r1.Glyphs)
	}
}

func TestDecodeDefineText_RecordCap(t *testing.T) {
	var bw bitWriter
	bw.u16(12)
	bw.rect(1, 0, 0, 0, 0)
	bw.bytes(0x00)
	bw.bytes(1)
	bw.bytes(1)
	for i := 0; i < 8; i++ {
		bw.bytes(0x01) // x offset follows
		bw.u16(0)
		bw.bytes(0) // no glyphs
	}
	bw.bytes(0x00)

	w := NewWalker(swffmt.Options{MaxCount: 4})
	_, err := decodeDefineText(w, bw.buf, 1)
	if err == nil {
		t.Fatal("decodeDefineText accepted a stream past the record cap")
	}
}

func TestDecodeDefineEditText(t *testing.T) {
	var bw bitWriter
	bw.u16(15)
	bw.rect(12, 0, 2000, 0, 400)
	bw.bytes(editHasText | editHasTextColor | editHasMaxLength | editHasFont)
	bw.bytes(editHasLayout | editHTML)
	bw.u16(1)   // font id
	bw.u16(240) // font height
	bw.bytes(10, 20, 30, 40)
	bw.u16(32) // max length
	bw.bytes(1)
	bw.u16(10)
	bw.u16(20)
	bw.u16(0)
	bw.u16(uint16(int16(-2)))
	bw.bytes([]byte("userName\x00")...)
	bw.bytes([]byte("hello\x00")...)

	tag, err := decodeDefineEditText(newTestWalker(), bw.buf)
	if err != nil {
		t.Fatalf("decodeDefineEditText: %v", err)
	}
	et := tag.(DefineEditText)
	if et.CharacterID != 15 {
		t.Fatalf("id = %d, want 15", et.CharacterID)
	}
	if !et.HTML || et.WordWrap || et.ReadOnly || et.AutoSize {
		t.Errorf("flags = %+v", et)
	}
	if et.FontID == nil || *et.FontID != 1 || et.FontHeight == nil || *et.FontHeight != 240 {
		t.Errorf("font = %v height %v, want 1/240", et.FontID, et.FontHeight)
	}
	wantColor := swffmt.Color{R: 10, G: 20, B: 30, A: 40}
	if et.TextColor == nil || *et.TextColor != wantColor {
		t.Errorf("color = %v, want %+v", et.TextColor, wantColor)
	}
	if et.MaxLength == nil || *et.MaxLength != 32 {
		t.Errorf("max length = %v, want 32", et.MaxLength)
	}
	wantLayout := Layout{Align: 1, LeftMargin: 10, RightMargin: 20, Leading: -2}
	if et.Layout == nil || *et.Layout != wantLayout {
		t.Errorf("layout = %+v, want %+v", et.Layout, wantLayout)
	}
	if et.VariableName != "userName" {
		t.Errorf("variable = %q, want userName", et.VariableName)
	}
	if et.InitialText == nil || *et.InitialText != "hello" {
		t.Errorf("initial text = %v, want hello", et.InitialText)
	}
}

func TestDecodeDefineEditText_Minimal(t *testing.T) {
	var bw bitWriter
	bw.u16(16)
	bw.rect(1, 0, 0, 0, 0)
	bw.bytes(editReadOnly)
	bw.bytes(editAutoSize | editNoSelect)
	bw.bytes(0x00) // empty variable name

	tag, err := decodeDefineEditText(newTestWalker(), bw.buf)
	if err != nil {
		t.Fatalf("decodeDefineEditText: %v", err)
	}
	et := tag.(DefineEditText)
	if !et.ReadOnly || !et.AutoSize || !et.NoSelect {
		t.Errorf("flags = %+v", et)
	}
	if et.FontID != nil || et.FontHeight != nil || et.Layout != nil || et.InitialText != nil {
		t.Errorf("optional fields leaked: %+v", et)
	}
	if et.VariableName != "" {
		t.Errorf("variable = %q, want empty", et.VariableName)
	}
}

// A font class implies a height even when no numeric font id is present.
func TestDecodeDefineEditText_FontClass(t *testing.T) {
	var bw bitWriter
	bw.u16(17)
	bw.rect(1, 0, 0, 0, 0)
	bw.bytes(0)
	bw.bytes(editHasFontClass)
	bw.bytes([]byte("fonts.Body\x00")...)
	bw.u16(280)
	bw.bytes(0x00)

	tag, err := decodeDefineEditText(newTestWalker(), bw.buf)
	if err != nil {
		t.Fatalf("decodeDefineEditText: %v", err)
	}
	et := tag.(DefineEditText)
	if et.FontClass == nil || *et.FontClass != "fonts.Body" {
		t.Fatalf("font class = %v", et.FontClass)
	}
	if et.FontID != nil || et.FontHeight == nil || *et.FontHeight != 280 {
		t.Errorf("font id/height = %v/%v, want nil/280", et.FontID, et.FontHeight)
	}
}
