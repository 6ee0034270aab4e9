package abc

import "fmt"

// TraitKind is the low nibble of a trait's kind byte.
type TraitKind uint8

const (
	TraitSlot     TraitKind = 0
	TraitMethod   TraitKind = 1
	TraitGetter   TraitKind = 2
	TraitSetter   TraitKind = 3
	TraitClass    TraitKind = 4
	TraitFunction TraitKind = 5
	TraitConst    TraitKind = 6
)

func (k TraitKind) String() string {
	switch k {
	case TraitSlot:
		return "slot"
	case TraitMethod:
		return "method"
	case TraitGetter:
		return "getter"
	case TraitSetter:
		return "setter"
	case TraitClass:
		return "class"
	case TraitFunction:
		return "function"
	case TraitConst:
		return "const"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Trait attribute bits (the high nibble of the kind byte).
const (
	TraitAttrFinal    = 0x1
	TraitAttrOverride = 0x2
	TraitAttrMetadata = 0x4
)

// Trait is one trait record. Which index fields are meaningful depends on
// Kind; the rest stay zero. Metadata indices are consumed but never
// interpreted.
type Trait struct {
	Name     uint32    `json:"name"` // multiname index
	Kind     TraitKind `json:"kind"`
	Attrs    uint8     `json:"attrs,omitempty"`
	SlotID   uint32    `json:"slotId,omitempty"`
	TypeName uint32    `json:"typeName,omitempty"` // multiname index (slot/const)
	VIndex   uint32    `json:"vindex,omitempty"`
	VKind    uint8     `json:"vkind,omitempty"`
	ClassIdx uint32    `json:"classIndex,omitempty"`
	Function uint32    `json:"function,omitempty"` // method index
	DispID   uint32    `json:"dispId,omitempty"`
	Method   uint32    `json:"method,omitempty"` // method index
	Metadata []uint32  `json:"metadata,omitempty"`
}

// readTraits reads a counted trait list. owner names the enclosing
// structure for error context.
func (d *decoder) readTraits(owner string) ([]Trait, error) {
	n, err := d.readCount(owner + " trait")
	if err != nil {
		return nil, err
	}
	traits := make([]Trait, 0, n)
	for i := 0; i < n; i++ {
		t, err := d.readTrait()
		if err != nil {
			traits = append(traits, t)
			return traits, fmt.Errorf("trait %d/%d: %w", i, n, err)
		}
		traits = append(traits, t)
	}
	return traits, nil
}

// readTrait decodes one trait record: a multiname, a packed kind/attrs
// byte, the kind-specific fields, and an optional metadata index list. An
// unknown kind is terminal for the enclosing record; its field shape is
// unknowable so the list cannot be decoded in sync.
func (d *decoder) readTrait() (Trait, error) {
	var t Trait
	var err error
	if t.Name, err = d.r.ReadEncodedU32(); err != nil {
		return t, fmt.Errorf("name: %w", err)
	}
	kindByte, err := d.r.ReadUint8()
	if err != nil {
		return t, fmt.Errorf("kind: %w", err)
	}
	t.Kind = TraitKind(kindByte & 0x0F)
	t.Attrs = kindByte >> 4

	switch t.Kind {
	case TraitSlot, TraitConst:
		if t.SlotID, err = d.r.ReadEncodedU32(); err != nil {
			return t, fmt.Errorf("%v slot id: %w", t.Kind, err)
		}
		if t.TypeName, err = d.r.ReadEncodedU32(); err != nil {
			return t, fmt.Errorf("%v type: %w", t.Kind, err)
		}
		if t.VIndex, err = d.r.ReadEncodedU32(); err != nil {
			return t, fmt.Errorf("%v vindex: %w", t.Kind, err)
		}
		if t.VIndex != 0 {
			if t.VKind, err = d.r.ReadUint8(); err != nil {
				return t, fmt.Errorf("%v vkind: %w", t.Kind, err)
			}
		}
	case TraitMethod, TraitGetter, TraitSetter:
		if t.DispID, err = d.r.ReadEncodedU32(); err != nil {
			return t, fmt.Errorf("%v disp id: %w", t.Kind, err)
		}
		if t.Method, err = d.r.ReadEncodedU32(); err != nil {
			return t, fmt.Errorf("%v method: %w", t.Kind, err)
		}
	case TraitClass:
		if t.SlotID, err = d.r.ReadEncodedU32(); err != nil {
			return t, fmt.Errorf("class slot id: %w", err)
		}
		if t.ClassIdx, err = d.r.ReadEncodedU32(); err != nil {
			return t, fmt.Errorf("class index: %w", err)
		}
	case TraitFunction:
		if t.SlotID, err = d.r.ReadEncodedU32(); err != nil {
			return t, fmt.Errorf("function slot id: %w", err)
		}
		if t.Function, err = d.r.ReadEncodedU32(); err != nil {
			return t, fmt.Errorf("function index: %w", err)
		}
	default:
		return t, fmt.Errorf("unknown trait kind %d", uint8(t.Kind))
	}

	if t.Attrs&TraitAttrMetadata != 0 {
		n, err := d.readCount("trait metadata")
		if err != nil {
			return t, err
		}
		t.Metadata = make([]uint32, n)
		for i := range t.Metadata {
			if t.Metadata[i], err = d.r.ReadEncodedU32(); err != nil {
				return t, fmt.Errorf("metadata index %d/%d: %w", i, n, err)
			}
		}
	}
	return t, nil
}
