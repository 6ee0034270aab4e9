package tags

import (
	"strings"
	"testing"

	"unswf/internal/swffmt"
)

// appendTag writes one tag header plus body onto stream, using the long
// length form when the body does not fit the 6-bit short form.
func appendTag(stream []byte, code uint16, body []byte) []byte {
	if len(body) < 0x3f {
		hdr := code<<6 | uint16(len(body))
		stream = append(stream, byte(hdr), byte(hdr>>8))
	} else {
		hdr := code<<6 | 0x3f
		stream = append(stream, byte(hdr), byte(hdr>>8))
		n := uint32(len(body))
		stream = append(stream, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
	}
	return append(stream, body...)
}

func endTag(stream []byte) []byte {
	return appendTag(stream, TagEnd, nil)
}

func TestWalk_Stream(t *testing.T) {
	var stream []byte
	stream = appendTag(stream, TagSetBackgroundColor, []byte{0x11, 0x22, 0x33})
	stream = appendTag(stream, TagShowFrame, nil)
	stream = endTag(stream)

	recs, diags := NewWalker(swffmt.Options{}).Walk(stream)
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	bg := recs[0].Payload.(SetBackgroundColor)
	if bg.Color != (swffmt.Color{R: 0x11, G: 0x22, B: 0x33, A: 255}) {
		t.Errorf("background = %+v", bg.Color)
	}
	if _, ok := recs[1].Payload.(ShowFrame); !ok {
		t.Errorf("record 1 = %T, want ShowFrame", recs[1].Payload)
	}
	if _, ok := recs[2].Payload.(End); !ok {
		t.Errorf("record 2 = %T, want End", recs[2].Payload)
	}
	if recs[1].Name != "ShowFrame" || recs[1].Offset != 5 {
		t.Errorf("record 1 = %+v", recs[1])
	}
}

// A corrupt tag body must cost exactly one record: the walker computes the
// next offset from the header before decoding, so the following tag is
// visited at header offset + header size + declared length.
func TestWalk_ResilienceAfterBadBody(t *testing.T) {
	var stream []byte
	stream = appendTag(stream, TagSetBackgroundColor, []byte{1, 2, 3})
	// Valid id, then a rect demanding far more bits than the body holds.
	bad := []byte{0x01, 0x00, 0xf8, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	stream = appendTag(stream, TagDefineShape, bad)
	stream = appendTag(stream, TagShowFrame, nil)
	stream = endTag(stream)

	recs, diags := NewWalker(swffmt.Options{}).Walk(stream)
	if len(recs) != 4 {
		t.Fatalf("got %d records, want 4", len(recs))
	}
	if recs[1].Err == "" {
		t.Fatalf("corrupt record has no error")
	}
	sh := recs[1].Payload.(DefineShape)
	if sh.CharacterID != 1 {
		t.Errorf("partial payload id = %d, want 1", sh.CharacterID)
	}
	wantOffset := recs[0].Offset + 2 + recs[0].Length + 2 + recs[1].Length
	if recs[2].Code != TagShowFrame || recs[2].Offset != wantOffset {
		t.Errorf("record 2 = code %d offset %d, want code %d offset %d",
			recs[2].Code, recs[2].Offset, TagShowFrame, wantOffset)
	}
	if recs[2].Err != "" || recs[3].Code != TagEnd {
		t.Errorf("stream did not recover: %+v", recs[2:])
	}
	found := false
	for _, d := range diags {
		if d.Kind == swffmt.DiagTruncated {
			found = true
		}
	}
	if !found {
		t.Errorf("diags = %v, want a truncated diag", diags)
	}
}

func TestWalk_LongFormLength(t *testing.T) {
	xml := strings.Repeat("m", 80) + "\x00"
	var stream []byte
	stream = appendTag(stream, TagMetadata, []byte(xml))
	stream = endTag(stream)

	recs, diags := NewWalker(swffmt.Options{}).Walk(stream)
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}
	if recs[0].Length != 81 {
		t.Fatalf("length = %d, want 81", recs[0].Length)
	}
	md := recs[0].Payload.(Metadata)
	if len(md.XML) != 80 {
		t.Errorf("xml length = %d, want 80", len(md.XML))
	}
	if recs[1].Offset != 2+4+81 {
		t.Errorf("end offset = %d, want %d", recs[1].Offset, 2+4+81)
	}
}

func TestWalk_UnknownTagPassthrough(t *testing.T) {
	var stream []byte
	stream = appendTag(stream, 250, []byte{1, 2, 3})
	stream = appendTag(stream, TagShowFrame, nil)
	stream = endTag(stream)

	recs, diags := NewWalker(swffmt.Options{}).Walk(stream)
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	u := recs[0].Payload.(Unknown)
	if u.TypeCode != 250 || len(u.Body) != 3 {
		t.Errorf("unknown = %+v", u)
	}
	if recs[0].Err != "" {
		t.Errorf("unknown tag is not an error, got %q", recs[0].Err)
	}
	if recs[0].Name != "Tag250" {
		t.Errorf("name = %q, want Tag250", recs[0].Name)
	}
	if len(diags) != 1 || diags[0].Kind != swffmt.DiagUnknownTag {
		t.Errorf("diags = %v, want one unknown_tag", diags)
	}
}

func TestWalk_StopsAtEnd(t *testing.T) {
	var stream []byte
	stream = appendTag(stream, TagShowFrame, nil)
	stream = endTag(stream)
	stream = append(stream, 0xff, 0xff, 0xff, 0xff)

	recs, _ := NewWalker(swffmt.Options{}).Walk(stream)
	if len(recs) != 2 || recs[1].Code != TagEnd {
		t.Fatalf("records = %+v, want stop at end tag", recs)
	}
}

func TestWalk_TruncatedBody(t *testing.T) {
	var stream []byte
	stream = appendTag(stream, TagShowFrame, nil)
	hdr := uint16(TagDefineShape)<<6 | 10
	stream = append(stream, byte(hdr), byte(hdr>>8), 1, 2, 3, 4)

	recs, diags := NewWalker(swffmt.Options{}).Walk(stream)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[1].Err == "" || recs[1].Length != 10 {
		t.Errorf("truncated record = %+v", recs[1])
	}
	if len(diags) == 0 || diags[len(diags)-1].Kind != swffmt.DiagTruncated {
		t.Errorf("diags = %v, want truncated", diags)
	}
}

func TestWalk_TagCap(t *testing.T) {
	var stream []byte
	for i := 0; i < 5; i++ {
		stream = appendTag(stream, TagShowFrame, nil)
	}
	stream = endTag(stream)

	recs, diags := NewWalker(swffmt.Options{MaxTags: 3}).Walk(stream)
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	if len(diags) != 1 || diags[0].Kind != swffmt.DiagOverflow {
		t.Errorf("diags = %v, want one overflow", diags)
	}
}

func TestWalk_TrailingByte(t *testing.T) {
	var stream []byte
	stream = appendTag(stream, TagShowFrame, nil)
	stream = append(stream, 0x40)

	recs, diags := NewWalker(swffmt.Options{}).Walk(stream)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if len(diags) != 1 || diags[0].Kind != swffmt.DiagTruncated {
		t.Errorf("diags = %v, want mid-header truncation", diags)
	}
}

func TestWalk_Sprite(t *testing.T) {
	var nested []byte
	nested = appendTag(nested, TagPlaceObject2, []byte{0x02, 0x01, 0x00, 0x09, 0x00})
	nested = appendTag(nested, TagShowFrame, nil)
	nested = endTag(nested)

	var body bitWriter
	body.u16(10) // sprite id
	body.u16(1)  // frame count
	body.bytes(nested...)

	var stream []byte
	stream = appendTag(stream, TagDefineSprite, body.buf)
	stream = endTag(stream)

	recs, diags := NewWalker(swffmt.Options{}).Walk(stream)
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}
	sp := recs[0].Payload.(DefineSprite)
	if sp.SpriteID != 10 || sp.FrameCount != 1 {
		t.Fatalf("sprite = %+v", sp)
	}
	if len(sp.Tags) != 3 {
		t.Fatalf("got %d nested records, want 3", len(sp.Tags))
	}
	if sp.Tags[0].Offset != 0 || sp.Tags[1].Offset != 7 {
		t.Errorf("nested offsets = %d, %d, want 0, 7", sp.Tags[0].Offset, sp.Tags[1].Offset)
	}
	po := sp.Tags[0].Payload.(PlaceObject2)
	if po.Depth != 1 || po.CharacterID == nil || *po.CharacterID != 9 {
		t.Errorf("nested placement = %+v", po)
	}
}

func TestWalk_SpriteRejectsDefinitions(t *testing.T) {
	var bin bitWriter
	bin.u16(5)
	bin.u32(0)
	bin.bytes('x')

	var nested []byte
	nested = appendTag(nested, TagDefineBinaryData, bin.buf)
	nested = endTag(nested)

	var body bitWriter
	body.u16(10)
	body.u16(0)
	body.bytes(nested...)

	var stream []byte
	stream = appendTag(stream, TagDefineSprite, body.buf)
	stream = endTag(stream)

	recs, diags := NewWalker(swffmt.Options{}).Walk(stream)
	sp := recs[0].Payload.(DefineSprite)
	if len(sp.Tags) != 2 || sp.Tags[0].Err != "" {
		t.Fatalf("nested decode rejected: %+v", sp.Tags)
	}
	found := false
	for _, d := range diags {
		if d.Kind == swffmt.DiagInvalid && strings.Contains(d.Msg, "definition tag") {
			found = true
		}
	}
	if !found {
		t.Errorf("diags = %v, want definition-inside-sprite diag", diags)
	}
}

func TestWalk_SpriteNestingCap(t *testing.T) {
	var inner bitWriter
	inner.u16(11)
	inner.u16(0)
	inner.bytes(endTag(nil)...)

	var nested []byte
	nested = appendTag(nested, TagDefineSprite, inner.buf)
	nested = endTag(nested)

	var outer bitWriter
	outer.u16(10)
	outer.u16(0)
	outer.bytes(nested...)

	var stream []byte
	stream = appendTag(stream, TagDefineSprite, outer.buf)
	stream = endTag(stream)

	recs, _ := NewWalker(swffmt.Options{MaxNesting: 1}).Walk(stream)
	sp := recs[0].Payload.(DefineSprite)
	if recs[0].Err != "" {
		t.Fatalf("outer sprite rejected: %q", recs[0].Err)
	}
	if len(sp.Tags) == 0 || !strings.Contains(sp.Tags[0].Err, "nesting depth") {
		t.Errorf("inner sprite = %+v, want nesting depth error", sp.Tags)
	}
}

// minimalABC is the smallest well-formed bytecode module: the known version
// pair and twelve zero counts (seven pool tables, then methods, metadata,
// classes, scripts, bodies).
func minimalABC() []byte {
	return append([]byte{16, 0, 46, 0}, make([]byte, 12)...)
}

func TestWalk_DoABC(t *testing.T) {
	var body bitWriter
	body.u32(1)
	body.bytes([]byte("frame1\x00")...)
	body.bytes(minimalABC()...)

	var stream []byte
	stream = appendTag(stream, TagDoABC2, body.buf)
	stream = endTag(stream)

	recs, diags := NewWalker(swffmt.Options{}).Walk(stream)
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}
	ab := recs[0].Payload.(DoABC)
	if ab.Flags != LazyInitialize || ab.Name != "frame1" {
		t.Fatalf("doabc = %+v", ab)
	}
	if ab.Module == nil || ab.Module.MajorVersion != 46 {
		t.Fatalf("module = %+v", ab.Module)
	}
}

func TestWalk_DoABCBareForm(t *testing.T) {
	var stream []byte
	stream = appendTag(stream, TagDoABC, minimalABC())
	stream = endTag(stream)

	recs, _ := NewWalker(swffmt.Options{}).Walk(stream)
	ab := recs[0].Payload.(DoABC)
	if ab.Flags != 0 || ab.Name != "" || ab.Module == nil {
		t.Fatalf("doabc = %+v", ab)
	}
}

func TestWalk_DoABCVersionPolicy(t *testing.T) {
	bad := minimalABC()
	bad[0] = 17 // minor 17

	var stream []byte
	stream = appendTag(stream, TagDoABC, bad)
	stream = endTag(stream)

	recs, _ := NewWalker(swffmt.Options{Mode: swffmt.ModeStrict}).Walk(stream)
	if !strings.Contains(recs[0].Err, "unsupported version") {
		t.Errorf("strict err = %q, want unsupported version", recs[0].Err)
	}

	recs, _ = NewWalker(swffmt.Options{Mode: swffmt.ModeBestEffort}).Walk(stream)
	if recs[0].Err != "" {
		t.Fatalf("best effort err = %q, want none", recs[0].Err)
	}
	ab := recs[0].Payload.(DoABC)
	if ab.Module == nil || len(ab.Module.Diags) == 0 || ab.Module.Diags[0].Kind != swffmt.DiagBadVersion {
		t.Errorf("module diags = %+v, want bad version diag", ab.Module)
	}
}

func FuzzWalk(f *testing.F) {
	var stream []byte
	stream = appendTag(stream, TagSetBackgroundColor, []byte{1, 2, 3})
	stream = appendTag(stream, 250, []byte{9})
	stream = endTag(stream)
	f.Add(stream)
	f.Add([]byte{0x3f})
	f.Add([]byte{0xbf, 0x14, 0xff, 0xff, 0xff, 0xff})

	f.Fuzz(func(t *testing.T, data []byte) {
		w := NewWalker(swffmt.Options{MaxTags: 256, MaxCount: 1024, MaxNesting: 4})
		recs, _ := w.Walk(data)
		for _, rec := range recs {
			_ = rec.Name
		}
	})
}
