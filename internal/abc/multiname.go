package abc

import (
	"fmt"

	"unswf/internal/swffmt"
)

// MultinameKind is the 8-bit kind byte selecting a multiname wire shape.
type MultinameKind uint8

const (
	KindQName       MultinameKind = 0x07
	KindQNameA      MultinameKind = 0x0D
	KindRTQName     MultinameKind = 0x0F
	KindRTQNameA    MultinameKind = 0x10
	KindRTQNameL    MultinameKind = 0x11
	KindRTQNameLA   MultinameKind = 0x12
	KindMultiname   MultinameKind = 0x09
	KindMultinameA  MultinameKind = 0x0E
	KindMultinameL  MultinameKind = 0x1B
	KindMultinameLA MultinameKind = 0x1C
	KindTypeName    MultinameKind = 0x1D
)

func (k MultinameKind) String() string {
	switch k {
	case KindQName:
		return "QName"
	case KindQNameA:
		return "QNameA"
	case KindRTQName:
		return "RTQName"
	case KindRTQNameA:
		return "RTQNameA"
	case KindRTQNameL:
		return "RTQNameL"
	case KindRTQNameLA:
		return "RTQNameLA"
	case KindMultiname:
		return "Multiname"
	case KindMultinameA:
		return "MultinameA"
	case KindMultinameL:
		return "MultinameL"
	case KindMultinameLA:
		return "MultinameLA"
	case KindTypeName:
		return "TypeName"
	default:
		return fmt.Sprintf("Unknown(0x%02x)", uint8(k))
	}
}

// Multiname is one multiname entry. Which index fields are meaningful
// depends on Kind; the rest stay zero.
type Multiname struct {
	Kind      MultinameKind `json:"kind"`
	Namespace uint32        `json:"namespace,omitempty"` // namespace index (QName)
	Name      uint32        `json:"name,omitempty"`      // string index
	NsSet     uint32        `json:"nsSet,omitempty"`     // namespace-set index
	TypeDef   uint32        `json:"typeDef,omitempty"`   // multiname index (TypeName)
	Params    []uint32      `json:"params,omitempty"`    // multiname indices (TypeName)
}

// readMultiname decodes one multiname entry. An unknown kind byte yields a
// placeholder carrying the raw kind and a terminal error: the entry's size
// is unknowable, so the rest of the table cannot be decoded in sync.
func (d *decoder) readMultiname() (Multiname, error) {
	kind, err := d.r.ReadUint8()
	if err != nil {
		return Multiname{}, fmt.Errorf("kind: %w", err)
	}
	mn := Multiname{Kind: MultinameKind(kind)}
	switch mn.Kind {
	case KindQName, KindQNameA:
		if mn.Namespace, err = d.r.ReadEncodedU32(); err != nil {
			return mn, fmt.Errorf("%v namespace: %w", mn.Kind, err)
		}
		if mn.Name, err = d.r.ReadEncodedU32(); err != nil {
			return mn, fmt.Errorf("%v name: %w", mn.Kind, err)
		}
	case KindRTQName, KindRTQNameA:
		if mn.Name, err = d.r.ReadEncodedU32(); err != nil {
			return mn, fmt.Errorf("%v name: %w", mn.Kind, err)
		}
	case KindRTQNameL, KindRTQNameLA:
		// No trailing fields; the name and namespace are runtime values.
	case KindMultiname, KindMultinameA:
		if mn.Name, err = d.r.ReadEncodedU32(); err != nil {
			return mn, fmt.Errorf("%v name: %w", mn.Kind, err)
		}
		if mn.NsSet, err = d.r.ReadEncodedU32(); err != nil {
			return mn, fmt.Errorf("%v ns set: %w", mn.Kind, err)
		}
	case KindMultinameL, KindMultinameLA:
		if mn.NsSet, err = d.r.ReadEncodedU32(); err != nil {
			return mn, fmt.Errorf("%v ns set: %w", mn.Kind, err)
		}
	case KindTypeName:
		if mn.TypeDef, err = d.r.ReadEncodedU32(); err != nil {
			return mn, fmt.Errorf("TypeName base: %w", err)
		}
		paramCount, err := d.readCount("type parameter")
		if err != nil {
			return mn, err
		}
		mn.Params = make([]uint32, paramCount)
		for i := range mn.Params {
			if mn.Params[i], err = d.r.ReadEncodedU32(); err != nil {
				return mn, fmt.Errorf("TypeName param %d/%d: %w", i, paramCount, err)
			}
		}
	default:
		d.diags.Addf(uint64(d.r.Position()), swffmt.DiagInvalid,
			"unknown multiname kind 0x%02x", kind)
		return mn, fmt.Errorf("unknown multiname kind 0x%02x", kind)
	}
	return mn, nil
}
