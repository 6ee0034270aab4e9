// SWF data stream reader.
// Implements the bit-packed field encodings used by the container format.
package swffmt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	ErrOutOfData = errors.New("reader: unexpected end of data")
	ErrBitWidth  = errors.New("reader: bit width out of range")
)

// Reader reads SWF data using the format's encoding conventions: bit fields
// are packed MSB-first, multi-byte integers are little-endian, and every
// byte-oriented field starts on a byte boundary. Byte-level reads therefore
// discard any partially consumed byte before reading.
type Reader struct {
	data []byte
	pos  int
	end  int

	bitBuf byte // partially consumed byte
	bitCnt int  // unread bits remaining in bitBuf
}

// NewReader creates a reader over the given data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data, pos: 0, end: len(data)}
}

// NewReaderAt creates a reader starting at offset within data.
func NewReaderAt(data []byte, offset int) *Reader {
	if offset > len(data) {
		offset = len(data)
	}
	return &Reader{data: data, pos: offset, end: len(data)}
}

// Position returns the byte offset of the next unread byte. Mid-byte, the
// offset already points past the byte being consumed.
func (r *Reader) Position() int { return r.pos }

// Remaining returns whole bytes left to read, not counting buffered bits.
func (r *Reader) Remaining() int { return r.end - r.pos }

// AlignByte discards the rest of a partially consumed byte.
func (r *Reader) AlignByte() { r.bitCnt = 0 }

// ReadUB reads n bits (0 to 32) as an unsigned value, MSB first.
// Zero bits reads nothing and returns 0.
func (r *Reader) ReadUB(n int) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	if n < 0 || n > 32 {
		return 0, ErrBitWidth
	}
	var v uint32
	for i := 0; i < n; i++ {
		if r.bitCnt == 0 {
			if r.pos >= r.end {
				return 0, ErrOutOfData
			}
			r.bitBuf = r.data[r.pos]
			r.pos++
			r.bitCnt = 8
		}
		r.bitCnt--
		v = v<<1 | uint32(r.bitBuf>>uint(r.bitCnt)&1)
	}
	return v, nil
}

// ReadSB reads n bits as a two's-complement signed value, sign-extended
// from the top bit read.
func (r *Reader) ReadSB(n int) (int32, error) {
	v, err := r.ReadUB(n)
	if err != nil || n == 0 {
		return 0, err
	}
	shift := uint(32 - n)
	return int32(v<<shift) >> shift, nil
}

// ReadFB reads an n-bit signed 16.16 fixed-point value.
func (r *Reader) ReadFB(n int) (float64, error) {
	v, err := r.ReadSB(n)
	if err != nil {
		return 0, err
	}
	return float64(v) / 65536, nil
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	r.AlignByte()
	if r.pos >= r.end {
		return 0, ErrOutOfData
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadUint8 reads a uint8.
func (r *Reader) ReadUint8() (uint8, error) {
	return r.ReadByte()
}

// ReadUint16 reads a little-endian uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	r.AlignByte()
	if r.pos+2 > r.end {
		return 0, ErrOutOfData
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadUint32 reads a little-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	r.AlignByte()
	if r.pos+4 > r.end {
		return 0, ErrOutOfData
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadUint64 reads a little-endian uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	r.AlignByte()
	if r.pos+8 > r.end {
		return 0, ErrOutOfData
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadInt16 reads a little-endian int16.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadInt32 reads a little-endian int32.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadFixed8 reads a little-endian 8.8 fixed-point value.
func (r *Reader) ReadFixed8() (float64, error) {
	v, err := r.ReadInt16()
	if err != nil {
		return 0, err
	}
	return float64(v) / 256, nil
}

// ReadFixed16 reads a little-endian 16.16 fixed-point value.
func (r *Reader) ReadFixed16() (float64, error) {
	v, err := r.ReadInt32()
	if err != nil {
		return 0, err
	}
	return float64(v) / 65536, nil
}

// ReadFloat32 reads a little-endian IEEE 754 single.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64 reads a little-endian IEEE 754 double.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadBytes reads n bytes into a new slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	r.AlignByte()
	if n < 0 || r.pos+n > r.end {
		return nil, ErrOutOfData
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// ReadSpan reads n bytes as a view into the backing data, without copying.
// Callers must treat the result as immutable.
func (r *Reader) ReadSpan(n int) ([]byte, error) {
	r.AlignByte()
	if n < 0 || r.pos+n > r.end {
		return nil, ErrOutOfData
	}
	out := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return out, nil
}

// ReadString reads a null-terminated string.
func (r *Reader) ReadString() (string, error) {
	r.AlignByte()
	start := r.pos
	for r.pos < r.end {
		if r.data[r.pos] == 0 {
			str := string(r.data[start:r.pos])
			r.pos++ // skip null terminator
			return str, nil
		}
		r.pos++
	}
	return "", fmt.Errorf("reader: unterminated string at offset %d: %w", start, ErrOutOfData)
}

// Variable-length unsigned integer: little-endian base-128 groups, low 7
// bits payload, high bit continuation. Groups are capped at 5 (the 32-bit
// ceiling); a still-set continuation bit on the 5th group does not consume
// further input.
const (
	vluDataBits  = 7
	vluDataMask  = (1 << vluDataBits) - 1 // 0x7f
	vluContinue  = 0x80
	vluMaxGroups = 5
)

// ReadEncodedU32 reads a variable-length unsigned 32-bit integer.
func (r *Reader) ReadEncodedU32() (uint32, error) {
	r.AlignByte()
	var v uint32
	var shift uint
	for i := 0; i < vluMaxGroups; i++ {
		if r.pos >= r.end {
			return 0, ErrOutOfData
		}
		b := r.data[r.pos]
		r.pos++
		v |= uint32(b&vluDataMask) << shift
		if b&vluContinue == 0 {
			return v, nil
		}
		shift += vluDataBits
	}
	return v, nil
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int) error {
	r.AlignByte()
	if n < 0 || r.pos+n > r.end {
		return ErrOutOfData
	}
	r.pos += n
	return nil
}
