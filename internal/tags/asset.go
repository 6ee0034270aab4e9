package tags

import (
	"fmt"

	"unswf/internal/abc"
	"unswf/internal/swffmt"
)

// DoABC carries one embedded bytecode module. Flags and Name exist only in
// the flagged form (type 82); the bare form (type 72) is data only. Module
// holds whatever the nested decoder produced, which on error is the partial
// module decoded before the failure.
type DoABC struct {
	Flags  uint32      `json:"flags,omitempty"`
	Name   string      `json:"name,omitempty"`
	Module *abc.Module `json:"module,omitempty"`
}

// LazyInitialize defers script execution until first reference.
const LazyInitialize = 0x00000001

// DefineBinaryData embeds an opaque byte blob as a character.
type DefineBinaryData struct {
	CharacterID uint16 `json:"characterId"`
	Data        []byte `json:"-"`
}

func (DoABC) isTag()            {}
func (DefineBinaryData) isTag() {}

func abcDecoder(flagged bool) DecodeFunc {
	return func(w *Walker, body []byte) (Tag, error) {
		return decodeDoABC(w, body, flagged)
	}
}

func decodeDoABC(w *Walker, body []byte, flagged bool) (Tag, error) {
	r := swffmt.NewReader(body)
	var t DoABC
	var err error
	if flagged {
		if t.Flags, err = r.ReadUint32(); err != nil {
			return nil, fmt.Errorf("abc: flags: %w", err)
		}
		if t.Name, err = r.ReadString(); err != nil {
			return nil, fmt.Errorf("abc: name: %w", err)
		}
	}
	data, _ := r.ReadSpan(r.Remaining())
	mod, err := abc.Decode(data, w.opts)
	t.Module = mod
	if err != nil {
		return t, fmt.Errorf("module %q: %w", t.Name, err)
	}
	return t, nil
}

func decodeDefineBinaryData(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	var bd DefineBinaryData
	var err error
	if bd.CharacterID, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("binary data: id: %w", err)
	}
	if err := r.Skip(4); err != nil { // reserved
		return bd, fmt.Errorf("binary data %d: reserved: %w", bd.CharacterID, err)
	}
	bd.Data, _ = r.ReadSpan(r.Remaining())
	return bd, nil
}
