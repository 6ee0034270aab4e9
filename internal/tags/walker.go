package tags

import (
	"errors"
	"fmt"
	"os"

	"unswf/internal/swffmt"
)

var debugTags = os.Getenv("UNSWF_DEBUG_TAGS") != ""

// errCountRange marks a decoded element count outside the configured bound.
var errCountRange = errors.New("tags: count out of range")

// DecodeFunc decodes one tag body. body is exactly the tag's declared span;
// decoders never see bytes outside it.
type DecodeFunc func(w *Walker, body []byte) (Tag, error)

// Walker dispatches tag records to family decoders. The registry is built
// per walker, so callers can run independent walks concurrently by giving
// each stream its own Walker. A single Walker is not safe for concurrent
// use: it carries the sprite nesting depth of the walk in flight.
type Walker struct {
	opts     swffmt.Options
	registry map[uint16]DecodeFunc
	diags    *swffmt.Diags
	depth    int
}

// NewWalker returns a walker honoring opts.
func NewWalker(opts swffmt.Options) *Walker {
	w := &Walker{opts: opts}
	w.registry = map[uint16]DecodeFunc{
		TagShowFrame:                    decodeShowFrame,
		TagSetBackgroundColor:           decodeSetBackgroundColor,
		TagFrameLabel:                   decodeFrameLabel,
		TagProtect:                      decodeProtect,
		TagScriptLimits:                 decodeScriptLimits,
		TagFileAttributes:               decodeFileAttributes,
		TagMetadata:                     decodeMetadata,
		TagExportAssets:                 decodeExportAssets,
		TagSymbolClass:                  decodeSymbolClass,
		TagDefineSceneAndFrameLabelData: decodeSceneAndFrameLabelData,
		TagPlaceObject:                  decodePlaceObject,
		TagPlaceObject2:                 decodePlaceObject2,
		TagPlaceObject3:                 decodePlaceObject3,
		TagRemoveObject:                 decodeRemoveObject,
		TagRemoveObject2:                decodeRemoveObject2,
		TagDefineShape:                  shapeDecoder(1),
		TagDefineShape2:                 shapeDecoder(2),
		TagDefineShape3:                 shapeDecoder(3),
		TagDefineShape4:                 shapeDecoder(4),
		TagDefineText:                   textDecoder(1),
		TagDefineText2:                  textDecoder(2),
		TagDefineEditText:               decodeDefineEditText,
		TagDefineFont:                   decodeDefineFont,
		TagDefineFont2:                  font2Decoder(2),
		TagDefineFont3:                  font2Decoder(3),
		TagDefineFontName:               decodeDefineFontName,
		TagDefineScalingGrid:            decodeDefineScalingGrid,
		TagDefineBits:                   decodeDefineBits,
		TagJPEGTables:                   decodeJPEGTables,
		TagDefineBitsJPEG2:              decodeDefineBitsJPEG2,
		TagDefineBitsJPEG3:              decodeDefineBitsJPEG3,
		TagDefineBitsLossless:           losslessDecoder(false),
		TagDefineBitsLossless2:          losslessDecoder(true),
		TagDefineSprite:                 decodeDefineSprite,
		TagDoABC:                        abcDecoder(false),
		TagDoABC2:                       abcDecoder(true),
		TagDefineBinaryData:             decodeDefineBinaryData,
	}
	return w
}

// Walk decodes records from data until the end tag, buffer exhaustion, or
// the iteration cap. One malformed body never desynchronizes the stream:
// the next tag's offset is computed from the header alone, before the body
// decoder runs, so decode failures cost exactly one record.
func (w *Walker) Walk(data []byte) ([]Record, []swffmt.Diag) {
	var diags swffmt.Diags
	w.diags = &diags
	w.depth = 0
	records := w.walk(data)
	w.diags = nil
	return records, diags.Items()
}

func (w *Walker) walk(data []byte) []Record {
	r := swffmt.NewReader(data)
	maxTags := w.opts.EffectiveMaxTags()
	var records []Record
	for n := 0; ; n++ {
		if r.Remaining() < 2 {
			if r.Remaining() > 0 {
				w.diags.Addf(uint64(r.Position()), swffmt.DiagTruncated,
					"stream ends mid tag header")
			}
			break
		}
		if n >= maxTags {
			w.diags.Addf(uint64(r.Position()), swffmt.DiagOverflow,
				"tag cap %d reached, stopping walk", maxTags)
			break
		}
		tagPos := r.Position()
		hdr, _ := r.ReadUint16()
		code := hdr >> 6
		length := int(hdr & 0x3f)
		if length == 0x3f {
			long, err := r.ReadUint32()
			if err != nil {
				w.diags.Addf(uint64(tagPos), swffmt.DiagTruncated,
					"tag %d (%s): stream ends mid long length", code, Name(code))
				break
			}
			length = int(long)
		}
		rec := Record{Code: code, Name: Name(code), Offset: tagPos, Length: length}
		if debugTags {
			fmt.Fprintf(os.Stderr, "TAG[%4d] code=%-3d %-24s pos=0x%06x len=%d depth=%d\n",
				n, code, rec.Name, tagPos, length, w.depth)
		}
		body, err := r.ReadSpan(length)
		if err != nil {
			rec.Err = fmt.Sprintf("declared length %d exceeds remaining %d bytes", length, r.Remaining())
			w.diags.Addf(uint64(tagPos), swffmt.DiagTruncated, "tag %d (%s): %s", code, rec.Name, rec.Err)
			records = append(records, rec)
			break
		}
		if code == TagEnd {
			rec.Payload = End{}
			records = append(records, rec)
			break
		}
		if fn, ok := w.registry[code]; ok {
			payload, derr := fn(w, body)
			rec.Payload = payload
			if derr != nil {
				rec.Err = derr.Error()
				w.diags.Addf(uint64(tagPos), diagKindFor(derr), "tag %d (%s): %v", code, rec.Name, derr)
			}
		} else {
			rec.Payload = Unknown{TypeCode: code, Body: body}
			w.diags.Addf(uint64(tagPos), swffmt.DiagUnknownTag,
				"unknown tag type %d (%d bytes), kept as raw body", code, length)
		}
		records = append(records, rec)
	}
	return records
}

func diagKindFor(err error) swffmt.DiagKind {
	switch {
	case errors.Is(err, errCountRange):
		return swffmt.DiagOverflow
	case errors.Is(err, swffmt.ErrOutOfData):
		return swffmt.DiagTruncated
	default:
		return swffmt.DiagInvalid
	}
}

// checkCount validates a decoded element count against the walker's bound
// before any allocation sized by it.
func (w *Walker) checkCount(what string, n int) error {
	if n < 0 || n > w.opts.EffectiveMaxCount() {
		return fmt.Errorf("%s count %d: %w", what, n, errCountRange)
	}
	return nil
}
