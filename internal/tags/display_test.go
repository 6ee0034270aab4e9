package tags

import (
	"errors"
	"math"
	"testing"

	"unswf/internal/swffmt"
)

func (bw *bitWriter) f32(v float32) {
	bw.u32(math.Float32bits(v))
}

func TestDecodePlaceObject(t *testing.T) {
	var bw bitWriter
	bw.u16(5)
	bw.u16(1)
	bw.bytes(0x00) // identity matrix

	tag, err := decodePlaceObject(newTestWalker(), bw.buf)
	if err != nil {
		t.Fatalf("decodePlaceObject: %v", err)
	}
	p := tag.(PlaceObject)
	if p.CharacterID != 5 || p.Depth != 1 {
		t.Errorf("id/depth = %d/%d, want 5/1", p.CharacterID, p.Depth)
	}
	if p.Matrix != swffmt.IdentityMatrix() {
		t.Errorf("matrix = %+v, want identity", p.Matrix)
	}
	if p.ColorTransform != nil {
		t.Errorf("color transform = %+v, want nil for a matrix-final body", p.ColorTransform)
	}
}

// The v1 trailing color transform has no presence flag: bytes left after the
// matrix mean it is there.
func TestDecodePlaceObject_TrailingColorTransform(t *testing.T) {
	var bw bitWriter
	bw.u16(5)
	bw.u16(1)
	bw.bytes(0x00)
	bw.writeUB(1, 0) // no add terms
	bw.writeUB(1, 1) // mult terms
	bw.writeUB(4, 10)
	bw.writeSB(10, 256)
	bw.writeSB(10, 128)
	bw.writeSB(10, 64)
	bw.align()

	tag, err := decodePlaceObject(newTestWalker(), bw.buf)
	if err != nil {
		t.Fatalf("decodePlaceObject: %v", err)
	}
	p := tag.(PlaceObject)
	want := swffmt.ColorTransform{RedMult: 256, GreenMult: 128, BlueMult: 64}
	if p.ColorTransform == nil || *p.ColorTransform != want {
		t.Errorf("color transform = %+v, want %+v", p.ColorTransform, want)
	}
}

func TestDecodePlaceObject2(t *testing.T) {
	var bw bitWriter
	bw.bytes(placeHasCharacter | placeHasMatrix | placeHasName)
	bw.u16(1)
	bw.u16(7)
	bw.bytes(0x00)
	bw.bytes([]byte("hero\x00")...)

	tag, err := decodePlaceObject2(newTestWalker(), bw.buf)
	if err != nil {
		t.Fatalf("decodePlaceObject2: %v", err)
	}
	p := tag.(PlaceObject2)
	if p.Move || p.Depth != 1 {
		t.Errorf("move/depth = %v/%d, want false/1", p.Move, p.Depth)
	}
	if p.CharacterID == nil || *p.CharacterID != 7 {
		t.Errorf("character = %v, want 7", p.CharacterID)
	}
	if p.Matrix == nil || *p.Matrix != swffmt.IdentityMatrix() {
		t.Errorf("matrix = %+v, want identity", p.Matrix)
	}
	if p.Name == nil || *p.Name != "hero" {
		t.Errorf("name = %v, want hero", p.Name)
	}
	if p.Ratio != nil || p.ClipDepth != nil || p.ColorTransform != nil || p.ClipActions != nil {
		t.Errorf("unset fields leaked: %+v", p)
	}
}

func TestDecodePlaceObject2_MoveOnly(t *testing.T) {
	var bw bitWriter
	bw.bytes(placeMove | placeHasRatio)
	bw.u16(3)
	bw.u16(500)

	tag, err := decodePlaceObject2(newTestWalker(), bw.buf)
	if err != nil {
		t.Fatalf("decodePlaceObject2: %v", err)
	}
	p := tag.(PlaceObject2)
	if !p.Move || p.Depth != 3 {
		t.Errorf("move/depth = %v/%d, want true/3", p.Move, p.Depth)
	}
	if p.CharacterID != nil || p.Matrix != nil {
		t.Errorf("move-only placement carries fields: %+v", p)
	}
	if p.Ratio == nil || *p.Ratio != 500 {
		t.Errorf("ratio = %v, want 500", p.Ratio)
	}
}

func TestDecodePlaceObject2_ClipActionsKeptRaw(t *testing.T) {
	var bw bitWriter
	bw.bytes(placeHasCharacter | placeHasClipDepth | placeHasClipActions)
	bw.u16(1)
	bw.u16(2)
	bw.u16(4)
	bw.bytes(0xde, 0xad)

	tag, err := decodePlaceObject2(newTestWalker(), bw.buf)
	if err != nil {
		t.Fatalf("decodePlaceObject2: %v", err)
	}
	p := tag.(PlaceObject2)
	if p.ClipDepth == nil || *p.ClipDepth != 4 {
		t.Errorf("clip depth = %v, want 4", p.ClipDepth)
	}
	if len(p.ClipActions) != 2 || p.ClipActions[0] != 0xde {
		t.Errorf("clip actions = %x, want raw remainder", p.ClipActions)
	}
}

func TestDecodePlaceObject3(t *testing.T) {
	var bw bitWriter
	bw.bytes(placeHasCharacter)
	bw.bytes(place3HasFilters | place3HasBlendMode | place3HasVisible)
	bw.u16(1)
	bw.u16(4)
	bw.bytes(1, filterColorMatrix)
	for i := 0; i < 20; i++ {
		if i%6 == 0 {
			bw.f32(1)
		} else {
			bw.f32(0)
		}
	}
	bw.bytes(3) // multiply
	bw.bytes(1) // visible

	tag, err := decodePlaceObject3(newTestWalker(), bw.buf)
	if err != nil {
		t.Fatalf("decodePlaceObject3: %v", err)
	}
	p := tag.(PlaceObject3)
	if p.HasImage || p.Depth != 1 || p.CharacterID == nil || *p.CharacterID != 4 {
		t.Fatalf("placement = %+v", p)
	}
	if len(p.Filters) != 1 {
		t.Fatalf("got %d filters, want 1", len(p.Filters))
	}
	cm := p.Filters[0].(ColorMatrixFilter)
	for i, v := range cm.Matrix {
		want := float32(0)
		if i%6 == 0 {
			want = 1
		}
		if v != want {
			t.Errorf("matrix[%d] = %v, want %v", i, v, want)
		}
	}
	if p.BlendMode == nil || *p.BlendMode != 3 || p.BlendMode.String() != "multiply" {
		t.Errorf("blend mode = %v", p.BlendMode)
	}
	if p.Visible == nil || !*p.Visible {
		t.Errorf("visible = %v, want true", p.Visible)
	}
	if p.BitmapCache != nil || p.BackgroundColor != nil || p.ClassName != nil {
		t.Errorf("unset fields leaked: %+v", p)
	}
}

func TestDecodePlaceObject3_ClassName(t *testing.T) {
	var bw bitWriter
	bw.bytes(placeHasCharacter)
	bw.bytes(place3HasClassName)
	bw.u16(1)
	bw.bytes([]byte("com.Example\x00")...)
	bw.u16(9)

	tag, err := decodePlaceObject3(newTestWalker(), bw.buf)
	if err != nil {
		t.Fatalf("decodePlaceObject3: %v", err)
	}
	p := tag.(PlaceObject3)
	if p.ClassName == nil || *p.ClassName != "com.Example" {
		t.Fatalf("class name = %v", p.ClassName)
	}
	if p.CharacterID == nil || *p.CharacterID != 9 {
		t.Errorf("character = %v, want 9", p.CharacterID)
	}
}

// The image form implies a class name even without the class name flag.
func TestDecodePlaceObject3_ImageClassName(t *testing.T) {
	var bw bitWriter
	bw.bytes(placeHasCharacter)
	bw.bytes(place3HasImage)
	bw.u16(1)
	bw.bytes([]byte("img.Cls\x00")...)
	bw.u16(3)

	tag, err := decodePlaceObject3(newTestWalker(), bw.buf)
	if err != nil {
		t.Fatalf("decodePlaceObject3: %v", err)
	}
	p := tag.(PlaceObject3)
	if !p.HasImage || p.ClassName == nil || *p.ClassName != "img.Cls" {
		t.Errorf("image placement = %+v", p)
	}
}

func TestDecodePlaceObject3_DropShadowFilter(t *testing.T) {
	var bw bitWriter
	bw.bytes(0)
	bw.bytes(place3HasFilters)
	bw.u16(2)
	bw.bytes(1, filterDropShadow)
	bw.bytes(10, 20, 30, 40)  // shadow color
	bw.u32(2 << 16)           // blur x 2.0
	bw.u32(1 << 16)           // blur y 1.0
	bw.u32(1 << 15)           // angle 0.5
	bw.u32(3 << 16)           // distance 3.0
	bw.u16(256)               // strength 1.0
	bw.writeUB(1, 1)          // inner
	bw.writeUB(1, 0)          // knockout
	bw.writeUB(1, 1)          // composite source
	bw.writeUB(5, 1)          // passes

	tag, err := decodePlaceObject3(newTestWalker(), bw.buf)
	if err != nil {
		t.Fatalf("decodePlaceObject3: %v", err)
	}
	p := tag.(PlaceObject3)
	f := p.Filters[0].(DropShadowFilter)
	want := DropShadowFilter{
		Color:           swffmt.Color{R: 10, G: 20, B: 30, A: 40},
		BlurX:           2,
		BlurY:           1,
		Angle:           0.5,
		Distance:        3,
		Strength:        1,
		InnerShadow:     true,
		CompositeSource: true,
		Passes:          1,
	}
	if f != want {
		t.Errorf("filter = %+v, want %+v", f, want)
	}
}

func TestDecodePlaceObject3_ConvolutionKernelCap(t *testing.T) {
	var bw bitWriter
	bw.bytes(0)
	bw.bytes(place3HasFilters)
	bw.u16(2)
	bw.bytes(1, filterConvolution)
	bw.bytes(3, 3) // 9 kernel cells
	bw.f32(1)
	bw.f32(0)

	w := NewWalker(swffmt.Options{MaxCount: 4})
	_, err := decodePlaceObject3(w, bw.buf)
	if !errors.Is(err, errCountRange) {
		t.Fatalf("err = %v, want count range", err)
	}
}

func TestDecodeRemoveObject(t *testing.T) {
	var bw bitWriter
	bw.u16(7)
	bw.u16(2)
	tag, err := decodeRemoveObject(newTestWalker(), bw.buf)
	if err != nil {
		t.Fatalf("decodeRemoveObject: %v", err)
	}
	if rm := tag.(RemoveObject); rm.CharacterID != 7 || rm.Depth != 2 {
		t.Errorf("remove = %+v", rm)
	}

	bw = bitWriter{}
	bw.u16(3)
	tag, err = decodeRemoveObject2(newTestWalker(), bw.buf)
	if err != nil {
		t.Fatalf("decodeRemoveObject2: %v", err)
	}
	if rm := tag.(RemoveObject2); rm.Depth != 3 {
		t.Errorf("remove2 = %+v", rm)
	}
}

func TestBlendModeString(t *testing.T) {
	for _, tc := range []struct {
		mode BlendMode
		want string
	}{
		{0, "normal"},
		{3, "multiply"},
		{14, "hardlight"},
		{200, "blend(200)"},
	} {
		if got := tc.mode.String(); got != tc.want {
			t.Errorf("BlendMode(%d) = %q, want %q", tc.mode, got, tc.want)
		}
	}
}
