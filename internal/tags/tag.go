// Package tags decodes the container's flat tag stream into typed records:
// one Record per tag header, with family decoders for the control, display,
// shape, text, font, scaling, image, sprite, and bytecode families.
package tags

import "fmt"

// Tag type codes.
const (
	TagEnd                          = 0
	TagShowFrame                    = 1
	TagDefineShape                  = 2
	TagPlaceObject                  = 4
	TagRemoveObject                 = 5
	TagDefineBits                   = 6
	TagJPEGTables                   = 8
	TagSetBackgroundColor           = 9
	TagDefineFont                   = 10
	TagDefineText                   = 11
	TagDefineBitsLossless           = 20
	TagDefineBitsJPEG2              = 21
	TagDefineShape2                 = 22
	TagProtect                      = 24
	TagPlaceObject2                 = 26
	TagRemoveObject2                = 28
	TagDefineShape3                 = 32
	TagDefineText2                  = 33
	TagDefineBitsJPEG3              = 35
	TagDefineBitsLossless2          = 36
	TagDefineEditText               = 37
	TagDefineSprite                 = 39
	TagFrameLabel                   = 43
	TagDefineFont2                  = 48
	TagExportAssets                 = 56
	TagScriptLimits                 = 65
	TagFileAttributes               = 69
	TagPlaceObject3                 = 70
	TagDoABC                        = 72
	TagDefineFont3                  = 75
	TagSymbolClass                  = 76
	TagMetadata                     = 77
	TagDefineScalingGrid            = 78
	TagDoABC2                       = 82
	TagDefineShape4                 = 83
	TagDefineSceneAndFrameLabelData = 86
	TagDefineBinaryData             = 87
	TagDefineFontName               = 88
)

var tagNames = map[uint16]string{
	TagEnd:                          "End",
	TagShowFrame:                    "ShowFrame",
	TagDefineShape:                  "DefineShape",
	TagPlaceObject:                  "PlaceObject",
	TagRemoveObject:                 "RemoveObject",
	TagDefineBits:                   "DefineBits",
	TagJPEGTables:                   "JPEGTables",
	TagSetBackgroundColor:           "SetBackgroundColor",
	TagDefineFont:                   "DefineFont",
	TagDefineText:                   "DefineText",
	TagDefineBitsLossless:           "DefineBitsLossless",
	TagDefineBitsJPEG2:              "DefineBitsJPEG2",
	TagDefineShape2:                 "DefineShape2",
	TagProtect:                      "Protect",
	TagPlaceObject2:                 "PlaceObject2",
	TagRemoveObject2:                "RemoveObject2",
	TagDefineShape3:                 "DefineShape3",
	TagDefineText2:                  "DefineText2",
	TagDefineBitsJPEG3:              "DefineBitsJPEG3",
	TagDefineBitsLossless2:          "DefineBitsLossless2",
	TagDefineEditText:               "DefineEditText",
	TagDefineSprite:                 "DefineSprite",
	TagFrameLabel:                   "FrameLabel",
	TagDefineFont2:                  "DefineFont2",
	TagExportAssets:                 "ExportAssets",
	TagScriptLimits:                 "ScriptLimits",
	TagFileAttributes:               "FileAttributes",
	TagPlaceObject3:                 "PlaceObject3",
	TagDoABC:                        "DoABC",
	TagDefineFont3:                  "DefineFont3",
	TagSymbolClass:                  "SymbolClass",
	TagMetadata:                     "Metadata",
	TagDefineScalingGrid:            "DefineScalingGrid",
	TagDoABC2:                       "DoABC2",
	TagDefineShape4:                 "DefineShape4",
	TagDefineSceneAndFrameLabelData: "DefineSceneAndFrameLabelData",
	TagDefineBinaryData:             "DefineBinaryData",
	TagDefineFontName:               "DefineFontName",
}

// Name returns the tag type's name, or a numeric fallback.
func Name(code uint16) string {
	if n, ok := tagNames[code]; ok {
		return n
	}
	return fmt.Sprintf("Tag%d", code)
}

// Tag is one decoded tag body. Implementations are the per-family record
// types in this package.
type Tag interface {
	isTag()
}

// Record pairs one tag header with its decode outcome. The walker emits one
// Record per header regardless of body decode success: a failed body decode
// leaves Payload nil or partial and sets Err.
type Record struct {
	Code    uint16 `json:"code"`
	Name    string `json:"name"`
	Offset  int    `json:"offset"` // header offset within the walked stream
	Length  int    `json:"length"` // declared body length
	Payload Tag    `json:"payload,omitempty"`
	Err     string `json:"error,omitempty"`
}

// Unknown is the opaque pass-through record for unregistered tag types.
// It is not an error: the walker keeps the raw body and moves on.
type Unknown struct {
	TypeCode uint16 `json:"typeCode"`
	Body     []byte `json:"-"`
}

// End terminates the tag stream.
type End struct{}

func (Unknown) isTag() {}
func (End) isTag()     {}

// CharacterID returns the dictionary id a definition tag binds, and whether
// the payload defines one.
func (rec Record) CharacterID() (uint16, bool) {
	switch p := rec.Payload.(type) {
	case DefineShape:
		return p.CharacterID, true
	case DefineSprite:
		return p.SpriteID, true
	case DefineText:
		return p.CharacterID, true
	case DefineEditText:
		return p.CharacterID, true
	case DefineFont:
		return p.FontID, true
	case DefineFont2:
		return p.FontID, true
	case DefineBits:
		return p.CharacterID, true
	case DefineBitsJPEG2:
		return p.CharacterID, true
	case DefineBitsJPEG3:
		return p.CharacterID, true
	case DefineBitsLossless:
		return p.CharacterID, true
	case DefineBinaryData:
		return p.CharacterID, true
	default:
		return 0, false
	}
}
