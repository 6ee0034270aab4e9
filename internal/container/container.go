// Package container decodes the movie container: signature, version, and
// declared length, then the optional compression envelope, the stage header
// fields, and the tag stream.
package container

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"

	"unswf/internal/swffmt"
	"unswf/internal/tags"
)

// Container signatures. The first byte selects the payload compression; the
// trailing "WS" is fixed.
const (
	SignatureUncompressed = "FWS"
	SignatureZlib         = "CWS"
	SignatureLZMA         = "ZWS"
)

// Movie is a fully decoded container.
type Movie struct {
	Signature   string        `json:"signature"`
	Version     uint8         `json:"version"`
	FileLength  uint32        `json:"fileLength"` // declared uncompressed size, prefix included
	StageBounds swffmt.Rect   `json:"stageBounds"`
	FrameRate   float64       `json:"frameRate"`
	FrameCount  uint16        `json:"frameCount"`
	Tags        []tags.Record `json:"tags"`
	Diags       []swffmt.Diag `json:"diagnostics,omitempty"`
}

// Decode parses a complete movie. Layout:
//
//	+0: signature  3 bytes, FWS raw, CWS zlib, ZWS lzma
//	+3: version    UI8
//	+4: fileLength UI32, total uncompressed size including this 8-byte prefix
//	+8: payload, compressed per the signature
//
// The payload resumes with the bit-packed stage rect, the LE16 8.8 frame
// rate, the LE16 frame count, and the tag stream. Envelope failures are
// terminal; a truncated tag stream is reported per record and keeps the
// prefix decoded so far.
func Decode(data []byte, opts swffmt.Options) (*Movie, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("container: %d bytes is too short for a header", len(data))
	}
	var diags swffmt.Diags
	m := &Movie{
		Signature:  string(data[:3]),
		Version:    data[3],
		FileLength: binary.LittleEndian.Uint32(data[4:8]),
	}
	declared := int(m.FileLength) - 8
	if declared < 0 {
		diags.Addf(4, swffmt.DiagInvalid, "declared length %d shorter than the 8-byte prefix", m.FileLength)
		declared = 0
	}

	var body []byte
	var err error
	switch m.Signature {
	case SignatureUncompressed:
		body = data[8:]
		if len(data) != int(m.FileLength) {
			diags.Addf(4, swffmt.DiagInvalid, "declared length %d, actual %d", m.FileLength, len(data))
		}
	case SignatureZlib:
		body, err = inflateZlib(data[8:], declared)
	case SignatureLZMA:
		if m.Version < 13 {
			diags.Addf(3, swffmt.DiagBadVersion, "lzma payload in a version %d file (first allowed in 13)", m.Version)
		}
		body, err = inflateLZMA(data[8:], declared)
	default:
		return nil, fmt.Errorf("container: unknown signature %q", m.Signature)
	}
	if err != nil {
		m.Diags = diags.Items()
		return m, fmt.Errorf("container: %s payload: %w", m.Signature, err)
	}
	if m.Signature != SignatureUncompressed && len(body) < declared {
		diags.Addf(8, swffmt.DiagTruncated, "uncompressed payload %d bytes, header declares %d", len(body), declared)
	}

	r := swffmt.NewReader(body)
	if m.StageBounds, err = r.ReadRect(); err != nil {
		m.Diags = diags.Items()
		return m, fmt.Errorf("container: stage bounds: %w", err)
	}
	if m.FrameRate, err = r.ReadFixed8(); err != nil {
		m.Diags = diags.Items()
		return m, fmt.Errorf("container: frame rate: %w", err)
	}
	if m.FrameCount, err = r.ReadUint16(); err != nil {
		m.Diags = diags.Items()
		return m, fmt.Errorf("container: frame count: %w", err)
	}

	stream, _ := r.ReadSpan(r.Remaining())
	var walkDiags []swffmt.Diag
	m.Tags, walkDiags = tags.NewWalker(opts).Walk(stream)
	m.Diags = append(diags.Items(), walkDiags...)
	return m, nil
}

// inflateZlib inflates at most want bytes. Capping before the stream end
// also skips the adler trailer, so a payload truncated past the cap still
// inflates.
func inflateZlib(payload []byte, want int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(io.LimitReader(zr, int64(want)))
}

// inflateLZMA inflates the ZWS envelope: LE32 compressed length, 5 header
// property bytes, then the raw stream. The classic lzma header the decoder
// expects carries an LE64 uncompressed size after the properties, which the
// container only stores as the total file length, so the header is rebuilt
// around the declared size.
func inflateLZMA(payload []byte, want int) ([]byte, error) {
	if len(payload) < 9 {
		return nil, fmt.Errorf("lzma envelope: %d bytes is too short", len(payload))
	}
	stream := payload[9:]
	if n := int(binary.LittleEndian.Uint32(payload[:4])); n < len(stream) {
		stream = stream[:n]
	}
	hdr := make([]byte, 0, 13+len(stream))
	hdr = append(hdr, payload[4:9]...)
	hdr = binary.LittleEndian.AppendUint64(hdr, uint64(want))
	hdr = append(hdr, stream...)
	zr, err := lzma.NewReader(bytes.NewReader(hdr))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(io.LimitReader(zr, int64(want)))
}
