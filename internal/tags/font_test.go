package tags

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"unswf/internal/swffmt"
)

// glyphOutline packs a one-edge glyph shape: select fill 1, then a straight
// edge with the given deltas.
func glyphOutline(dx, dy int32) []byte {
	var bw bitWriter
	bw.writeUB(4, 1) // fill bits
	bw.writeUB(4, 0) // line bits
	bw.writeUB(1, 0) // style change selecting fill 1
	bw.writeUB(5, 4)
	bw.writeUB(1, 1)
	bw.writeUB(1, 1) // straight edge
	bw.writeUB(1, 1)
	bw.writeUB(4, 6)
	bw.writeUB(1, 1) // general line
	bw.writeSB(8, dx)
	bw.writeSB(8, dy)
	bw.endShapeRecord()
	return bw.buf
}

func wantGlyphRecords(dx, dy int32) []ShapeRecord {
	one := uint32(1)
	return []ShapeRecord{
		StyleChange{FillStyle1: &one},
		StraightEdge{DeltaX: dx, DeltaY: dy},
	}
}

func TestDecodeDefineFont(t *testing.T) {
	g1 := glyphOutline(7, -2)
	g2 := glyphOutline(0, 9)

	var bw bitWriter
	bw.u16(60)
	bw.u16(4) // offset table start to first glyph
	bw.u16(uint16(4 + len(g1)))
	bw.bytes(g1...)
	bw.bytes(g2...)

	tag, err := decodeDefineFont(newTestWalker(), bw.buf)
	if err != nil {
		t.Fatalf("decodeDefineFont: %v", err)
	}
	f := tag.(DefineFont)
	if f.FontID != 60 || len(f.Glyphs) != 2 {
		t.Fatalf("font = id %d, %d glyphs, want 60, 2", f.FontID, len(f.Glyphs))
	}
	if f.Glyphs[0].Code != 0 || f.Glyphs[1].Code != 0 {
		t.Errorf("v1 glyphs carry codes: %+v", f.Glyphs)
	}
	if !reflect.DeepEqual(f.Glyphs[0].Records, wantGlyphRecords(7, -2)) {
		t.Errorf("glyph 0 = %+v", f.Glyphs[0].Records)
	}
	if !reflect.DeepEqual(f.Glyphs[1].Records, wantGlyphRecords(0, 9)) {
		t.Errorf("glyph 1 = %+v", f.Glyphs[1].Records)
	}
}

func TestDecodeDefineFont_Empty(t *testing.T) {
	var bw bitWriter
	bw.u16(61)

	tag, err := decodeDefineFont(newTestWalker(), bw.buf)
	if err != nil {
		t.Fatalf("decodeDefineFont: %v", err)
	}
	if f := tag.(DefineFont); f.FontID != 61 || f.Glyphs != nil {
		t.Errorf("font = %+v, want bare id", f)
	}
}

func TestDecodeDefineFont2(t *testing.T) {
	g1 := glyphOutline(7, -2)

	var bw bitWriter
	bw.u16(70)
	bw.bytes(fontHasLayout | fontWideCodes)
	bw.bytes(1) // language
	bw.bytes(7)
	bw.bytes([]byte("Verdana")...)
	bw.u16(1) // glyph count
	bw.u16(4) // glyph offset
	bw.u16(uint16(4 + len(g1)))
	bw.bytes(g1...)
	bw.u16(65) // wide code table
	bw.u16(800)
	bw.u16(200)
	bw.u16(uint16(int16(-8)))
	bw.u16(500)    // advance
	bw.bytes(0x00) // zero-width bounds
	bw.u16(1)
	bw.u16(65)
	bw.u16(66)
	bw.u16(uint16(int16(-50)))

	tag, err := decodeDefineFont2(newTestWalker(), bw.buf, 2)
	if err != nil {
		t.Fatalf("decodeDefineFont2: %v", err)
	}
	f := tag.(DefineFont2)
	if f.Version != 2 || f.FontID != 70 || f.Name != "Verdana" {
		t.Fatalf("font = v%d id %d %q", f.Version, f.FontID, f.Name)
	}
	if f.Italic || f.Bold || f.ShiftJIS || f.Language != 1 {
		t.Errorf("style flags = %+v", f)
	}
	if len(f.Glyphs) != 1 || f.Glyphs[0].Code != 65 {
		t.Fatalf("glyphs = %+v", f.Glyphs)
	}
	if !reflect.DeepEqual(f.Glyphs[0].Records, wantGlyphRecords(7, -2)) {
		t.Errorf("glyph records = %+v", f.Glyphs[0].Records)
	}
	if f.Layout == nil {
		t.Fatal("layout missing")
	}
	want := FontLayout{
		Ascent:   800,
		Descent:  200,
		Leading:  -8,
		Advances: []int16{500},
		Bounds:   []swffmt.Rect{{}},
		Kerning:  []KerningRecord{{Code1: 65, Code2: 66, Adjustment: -50}},
	}
	if !reflect.DeepEqual(*f.Layout, want) {
		t.Errorf("layout = %+v, want %+v", *f.Layout, want)
	}
}

func TestDecodeDefineFont2_NameTrimsNUL(t *testing.T) {
	var bw bitWriter
	bw.u16(71)
	bw.bytes(0)
	bw.bytes(0)
	bw.bytes(5)
	bw.bytes([]byte("Font\x00")...)
	bw.u16(0)

	tag, err := decodeDefineFont2(newTestWalker(), bw.buf, 2)
	if err != nil {
		t.Fatalf("decodeDefineFont2: %v", err)
	}
	f := tag.(DefineFont2)
	if f.Name != "Font" {
		t.Errorf("name = %q, want Font", f.Name)
	}
	if len(f.Glyphs) != 0 || f.Layout != nil {
		t.Errorf("device stub = %+v, want no glyphs or layout", f)
	}
}

func TestDecodeDefineFont3_NarrowCodes(t *testing.T) {
	g1 := glyphOutline(3, 3)

	var bw bitWriter
	bw.u16(72)
	bw.bytes(fontBold)
	bw.bytes(0)
	bw.bytes(1)
	bw.bytes('S')
	bw.u16(1)
	bw.u16(4)
	bw.u16(uint16(4 + len(g1)))
	bw.bytes(g1...)
	bw.bytes(97) // narrow code table

	tag, err := decodeDefineFont2(newTestWalker(), bw.buf, 3)
	if err != nil {
		t.Fatalf("decodeDefineFont2: %v", err)
	}
	f := tag.(DefineFont2)
	if f.Version != 3 || !f.Bold {
		t.Fatalf("font = v%d bold %v, want v3 bold", f.Version, f.Bold)
	}
	if f.Glyphs[0].Code != 97 || f.Layout != nil {
		t.Errorf("code/layout = %d/%v, want 97/nil", f.Glyphs[0].Code, f.Layout)
	}
}

func TestDecodeDefineFont2_BadGlyphOffset(t *testing.T) {
	var bw bitWriter
	bw.u16(73)
	bw.bytes(0)
	bw.bytes(0)
	bw.bytes(0)
	bw.u16(1)
	bw.u16(200) // beyond the body
	bw.u16(201)

	_, err := decodeDefineFont2(newTestWalker(), bw.buf, 2)
	if !errors.Is(err, swffmt.ErrOutOfData) {
		t.Fatalf("err = %v, want out of data", err)
	}
	if !strings.Contains(err.Error(), "glyph 0/1 at offset 200") {
		t.Errorf("err = %v, want offset context", err)
	}
}

func TestDecodeDefineFontName(t *testing.T) {
	var bw bitWriter
	bw.u16(70)
	bw.bytes([]byte("Fancy Display\x00")...)
	bw.bytes([]byte("(c) 2009 Example Co\x00")...)

	tag, err := decodeDefineFontName(newTestWalker(), bw.buf)
	if err != nil {
		t.Fatalf("decodeDefineFontName: %v", err)
	}
	fn := tag.(DefineFontName)
	if fn.FontID != 70 || fn.Name != "Fancy Display" || fn.Copyright != "(c) 2009 Example Co" {
		t.Errorf("font name = %+v", fn)
	}
}
