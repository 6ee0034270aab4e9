package swffmt

import (
	"errors"
	"testing"
)

// bitWriter builds MSB-first bit-packed buffers for tests.
type bitWriter struct {
	buf []byte
	cur byte
	n   int
}

func (w *bitWriter) writeUB(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		bit := byte(v>>uint(i)) & 1
		w.cur = w.cur<<1 | bit
		w.n++
		if w.n == 8 {
			w.buf = append(w.buf, w.cur)
			w.cur, w.n = 0, 0
		}
	}
}

func (w *bitWriter) writeSB(v int32, n int) {
	mask := uint32(1)<<uint(n) - 1
	w.writeUB(uint32(v)&mask, n)
}

func (w *bitWriter) align() {
	if w.n > 0 {
		w.cur <<= uint(8 - w.n)
		w.buf = append(w.buf, w.cur)
		w.cur, w.n = 0, 0
	}
}

func (w *bitWriter) bytes() []byte {
	w.align()
	return w.buf
}

func TestReadUB_RoundTrip(t *testing.T) {
	for n := 1; n <= 32; n++ {
		max := uint32(1)<<uint(n) - 1
		values := []uint32{0, 1 & max, max, 0xAAAAAAAA & max}
		for _, v := range values {
			var w bitWriter
			w.writeUB(v, n)
			r := NewReader(w.bytes())
			got, err := r.ReadUB(n)
			if err != nil {
				t.Fatalf("ReadUB(%d) of %d: %v", n, v, err)
			}
			if got != v {
				t.Errorf("ReadUB(%d) = %d, want %d", n, got, v)
			}
		}
	}
}

func TestReadSB_RoundTrip(t *testing.T) {
	for n := 1; n <= 32; n++ {
		min := int32(-1) << uint(n-1)
		max := -min - 1
		for _, v := range []int32{0, min, max, -1} {
			var w bitWriter
			w.writeSB(v, n)
			r := NewReader(w.bytes())
			got, err := r.ReadSB(n)
			if err != nil {
				t.Fatalf("ReadSB(%d) of %d: %v", n, v, err)
			}
			if got != v {
				t.Errorf("ReadSB(%d) = %d, want %d", n, got, v)
			}
		}
	}
}

func TestReadUB_ZeroBits(t *testing.T) {
	r := NewReader([]byte{0xFF})
	v, err := r.ReadUB(0)
	if err != nil || v != 0 {
		t.Fatalf("ReadUB(0) = %d, %v, want 0, nil", v, err)
	}
	if r.Position() != 0 {
		t.Errorf("ReadUB(0) consumed input, position = %d", r.Position())
	}
	// Full byte still available afterwards.
	got, err := r.ReadUB(8)
	if err != nil || got != 0xFF {
		t.Errorf("ReadUB(8) after zero-bit read = %d, %v, want 255, nil", got, err)
	}
}

func TestReadUB_OutOfData(t *testing.T) {
	r := NewReader(nil)
	if _, err := r.ReadUB(1); !errors.Is(err, ErrOutOfData) {
		t.Errorf("ReadUB(1) on empty = %v, want ErrOutOfData", err)
	}
	// 12 bits requested, 8 available.
	r = NewReader([]byte{0xFF})
	if _, err := r.ReadUB(12); !errors.Is(err, ErrOutOfData) {
		t.Errorf("ReadUB(12) of one byte = %v, want ErrOutOfData", err)
	}
}

func TestReadUB_BadWidth(t *testing.T) {
	r := NewReader([]byte{0, 0, 0, 0, 0})
	if _, err := r.ReadUB(33); !errors.Is(err, ErrBitWidth) {
		t.Errorf("ReadUB(33) = %v, want ErrBitWidth", err)
	}
}

func TestByteReadsAlign(t *testing.T) {
	// Three bits consumed, then a uint16 must start at the next byte.
	r := NewReader([]byte{0xE0, 0x34, 0x12})
	v, err := r.ReadUB(3)
	if err != nil || v != 7 {
		t.Fatalf("ReadUB(3) = %d, %v", v, err)
	}
	u, err := r.ReadUint16()
	if err != nil {
		t.Fatalf("ReadUint16: %v", err)
	}
	if u != 0x1234 {
		t.Errorf("ReadUint16 = 0x%x, want 0x1234", u)
	}
}

func TestReadEncodedU32_RoundTrip(t *testing.T) {
	encode := func(v uint32) []byte {
		var out []byte
		for {
			b := byte(v & 0x7F)
			v >>= 7
			if v != 0 {
				out = append(out, b|0x80)
				continue
			}
			return append(out, b)
		}
	}
	for _, v := range []uint32{0, 127, 128, 16384, 0xFFFFFFFF} {
		r := NewReader(encode(v))
		got, err := r.ReadEncodedU32()
		if err != nil {
			t.Fatalf("ReadEncodedU32(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("ReadEncodedU32 = %d, want %d", got, v)
		}
	}
}

func TestReadEncodedU32_GroupCap(t *testing.T) {
	// Six continuation bytes: decoding must stop after the 5th group
	// without consuming the 6th byte.
	r := NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x7F})
	v, err := r.ReadEncodedU32()
	if err != nil {
		t.Fatalf("ReadEncodedU32: %v", err)
	}
	if v != 0xFFFFFFFF {
		t.Errorf("ReadEncodedU32 = 0x%x, want 0xFFFFFFFF", v)
	}
	if r.Position() != 5 {
		t.Errorf("position = %d, want 5 (6th byte untouched)", r.Position())
	}
}

func TestReadEncodedU32_EOF(t *testing.T) {
	r := NewReader([]byte{0x80})
	if _, err := r.ReadEncodedU32(); !errors.Is(err, ErrOutOfData) {
		t.Errorf("unterminated chain = %v, want ErrOutOfData", err)
	}
}

func TestReadString(t *testing.T) {
	r := NewReader([]byte("hello\x00world\x00"))
	got, err := r.ReadString()
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if got != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
	got, err = r.ReadString()
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if got != "world" {
		t.Errorf("got %q, want %q", got, "world")
	}
}

func TestReadString_Unterminated(t *testing.T) {
	r := NewReader([]byte("nope"))
	if _, err := r.ReadString(); !errors.Is(err, ErrOutOfData) {
		t.Errorf("unterminated string = %v, want ErrOutOfData", err)
	}
}

func TestReadFixed(t *testing.T) {
	// 8.8: 0x0180 = 1.5. 16.16: 0x00018000 = 1.5.
	r := NewReader([]byte{0x80, 0x01, 0x00, 0x80, 0x01, 0x00})
	f8, err := r.ReadFixed8()
	if err != nil || f8 != 1.5 {
		t.Errorf("ReadFixed8 = %v, %v, want 1.5", f8, err)
	}
	f16, err := r.ReadFixed16()
	if err != nil || f16 != 1.5 {
		t.Errorf("ReadFixed16 = %v, %v, want 1.5", f16, err)
	}
}

func TestReadSpan_View(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	r := NewReader(data)
	span, err := r.ReadSpan(2)
	if err != nil {
		t.Fatal(err)
	}
	if &span[0] != &data[0] {
		t.Error("ReadSpan copied; want a view into the backing data")
	}
	if r.Position() != 2 {
		t.Errorf("position = %d, want 2", r.Position())
	}
}

func TestReaderAt(t *testing.T) {
	r := NewReaderAt([]byte{0, 0, 0, 5}, 3)
	if r.Position() != 3 {
		t.Errorf("position = %d, want 3", r.Position())
	}
	if r.Remaining() != 1 {
		t.Errorf("remaining = %d, want 1", r.Remaining())
	}
	b, err := r.ReadByte()
	if err != nil || b != 5 {
		t.Errorf("ReadByte = %d, %v, want 5", b, err)
	}
}
