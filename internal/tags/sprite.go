package tags

import (
	"fmt"

	"unswf/internal/swffmt"
)

// DefineSprite embeds a nested timeline as its own tag stream, terminated
// by its own end tag. Control and placement tags are legal inside;
// definition tags are not, and decode with a diagnostic. Nested record
// offsets are relative to the first nested tag header.
type DefineSprite struct {
	SpriteID   uint16   `json:"spriteId"`
	FrameCount uint16   `json:"frameCount"`
	Tags       []Record `json:"tags"`
}

func (DefineSprite) isTag() {}

func decodeDefineSprite(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	var sp DefineSprite
	var err error
	if sp.SpriteID, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("sprite: id: %w", err)
	}
	if sp.FrameCount, err = r.ReadUint16(); err != nil {
		return sp, fmt.Errorf("sprite %d: frame count: %w", sp.SpriteID, err)
	}
	if w.depth >= w.opts.EffectiveMaxNesting() {
		return sp, fmt.Errorf("sprite %d: nesting depth %d exceeds cap", sp.SpriteID, w.depth+1)
	}
	rest, _ := r.ReadSpan(r.Remaining())
	w.depth++
	sp.Tags = w.walk(rest)
	w.depth--
	for _, rec := range sp.Tags {
		if isDefinition(rec.Code) {
			w.diags.Addf(uint64(rec.Offset), swffmt.DiagInvalid,
				"sprite %d: definition tag %d (%s) inside sprite body", sp.SpriteID, rec.Code, rec.Name)
		}
	}
	return sp, nil
}

// isDefinition reports whether a tag type populates the character
// dictionary.
func isDefinition(code uint16) bool {
	switch code {
	case TagDefineShape, TagDefineShape2, TagDefineShape3, TagDefineShape4,
		TagDefineBits, TagDefineBitsJPEG2, TagDefineBitsJPEG3,
		TagDefineBitsLossless, TagDefineBitsLossless2,
		TagDefineFont, TagDefineFont2, TagDefineFont3,
		TagDefineText, TagDefineText2, TagDefineEditText,
		TagDefineSprite, TagDefineBinaryData:
		return true
	}
	return false
}
