package abc

import (
	"fmt"
	"math"
)

// Namespace kind bytes.
const (
	NsPrivate         = 0x05
	NsNamespace       = 0x08
	NsPackage         = 0x16
	NsPackageInternal = 0x17
	NsProtected       = 0x18
	NsExplicit        = 0x19
	NsStaticProtected = 0x1A
)

// Namespace is one namespace entry: a kind byte and a string index.
type Namespace struct {
	Kind uint8  `json:"kind"`
	Name uint32 `json:"name"` // string index
}

// KindName returns the namespace kind as text.
func (ns Namespace) KindName() string {
	switch ns.Kind {
	case NsPrivate:
		return "private"
	case NsNamespace:
		return "namespace"
	case NsPackage:
		return "package"
	case NsPackageInternal:
		return "package_internal"
	case NsProtected:
		return "protected"
	case NsExplicit:
		return "explicit"
	case NsStaticProtected:
		return "static_protected"
	default:
		return fmt.Sprintf("unknown(0x%02x)", ns.Kind)
	}
}

// ConstantPool holds the module's seven constant tables. Index 0 of every
// table is the fixed sentinel (0, 0, NaN, "", zero value) rather than a
// stored entry; references with index 0 mean "no value".
type ConstantPool struct {
	Ints          []int32     `json:"ints"`
	UInts         []uint32    `json:"uints"`
	Doubles       []float64   `json:"doubles"`
	Strings       []string    `json:"strings"`
	Namespaces    []Namespace `json:"namespaces"`
	NamespaceSets [][]uint32  `json:"namespaceSets"`
	Multinames    []Multiname `json:"multinames"`
}

// readPool decodes the seven tables in wire order. A stored count of n
// means n-1 entries follow; counts 0 and 1 both mean an empty table.
func (d *decoder) readPool() error {
	n, err := d.readCount("integer")
	if err != nil {
		return err
	}
	p := &d.mod.Pool
	p.Ints = make([]int32, 1, max(n, 1))
	for i := 1; i < n; i++ {
		v, err := d.r.ReadEncodedU32()
		if err != nil {
			return fmt.Errorf("integer %d/%d: %w", i, n, err)
		}
		p.Ints = append(p.Ints, int32(v))
	}

	if n, err = d.readCount("uinteger"); err != nil {
		return err
	}
	p.UInts = make([]uint32, 1, max(n, 1))
	for i := 1; i < n; i++ {
		v, err := d.r.ReadEncodedU32()
		if err != nil {
			return fmt.Errorf("uinteger %d/%d: %w", i, n, err)
		}
		p.UInts = append(p.UInts, v)
	}

	if n, err = d.readCount("double"); err != nil {
		return err
	}
	p.Doubles = make([]float64, 1, max(n, 1))
	p.Doubles[0] = math.NaN()
	for i := 1; i < n; i++ {
		v, err := d.r.ReadFloat64()
		if err != nil {
			return fmt.Errorf("double %d/%d: %w", i, n, err)
		}
		p.Doubles = append(p.Doubles, v)
	}

	if n, err = d.readCount("string"); err != nil {
		return err
	}
	p.Strings = make([]string, 1, max(n, 1))
	for i := 1; i < n; i++ {
		size, err := d.r.ReadEncodedU32()
		if err != nil {
			return fmt.Errorf("string %d/%d size: %w", i, n, err)
		}
		b, err := d.readCapped("string", int(size))
		if err != nil {
			return fmt.Errorf("string %d/%d: %w", i, n, err)
		}
		p.Strings = append(p.Strings, string(b))
	}

	if n, err = d.readCount("namespace"); err != nil {
		return err
	}
	p.Namespaces = make([]Namespace, 1, max(n, 1))
	for i := 1; i < n; i++ {
		var ns Namespace
		if ns.Kind, err = d.r.ReadUint8(); err != nil {
			return fmt.Errorf("namespace %d/%d kind: %w", i, n, err)
		}
		if ns.Name, err = d.r.ReadEncodedU32(); err != nil {
			return fmt.Errorf("namespace %d/%d name: %w", i, n, err)
		}
		p.Namespaces = append(p.Namespaces, ns)
	}

	if n, err = d.readCount("namespace set"); err != nil {
		return err
	}
	p.NamespaceSets = make([][]uint32, 1, max(n, 1))
	for i := 1; i < n; i++ {
		m, err := d.readCount("namespace set entry")
		if err != nil {
			return fmt.Errorf("namespace set %d/%d: %w", i, n, err)
		}
		set := make([]uint32, m)
		for j := range set {
			if set[j], err = d.r.ReadEncodedU32(); err != nil {
				return fmt.Errorf("namespace set %d/%d entry %d: %w", i, n, j, err)
			}
		}
		p.NamespaceSets = append(p.NamespaceSets, set)
	}

	if n, err = d.readCount("multiname"); err != nil {
		return err
	}
	p.Multinames = make([]Multiname, 1, max(n, 1))
	for i := 1; i < n; i++ {
		mn, err := d.readMultiname()
		if err != nil {
			p.Multinames = append(p.Multinames, mn)
			return fmt.Errorf("multiname %d/%d: %w", i, n, err)
		}
		p.Multinames = append(p.Multinames, mn)
	}
	return nil
}

// StringAt resolves a string index, substituting a synthetic placeholder
// for out-of-range references.
func (p *ConstantPool) StringAt(i uint32) string {
	if int64(i) < int64(len(p.Strings)) {
		return p.Strings[i]
	}
	return fmt.Sprintf("<bad string ref %d>", i)
}

// NamespaceName resolves a namespace index to its name string.
func (p *ConstantPool) NamespaceName(i uint32) string {
	if int64(i) >= int64(len(p.Namespaces)) {
		return fmt.Sprintf("<bad namespace ref %d>", i)
	}
	return p.StringAt(p.Namespaces[i].Name)
}

// MultinameString renders a multiname index as a dotted display name.
// Out-of-range references resolve to a synthetic placeholder.
func (p *ConstantPool) MultinameString(i uint32) string {
	return p.multinameString(i, 0)
}

func (p *ConstantPool) multinameString(i uint32, depth int) string {
	if i == 0 {
		return "*"
	}
	if int64(i) >= int64(len(p.Multinames)) {
		return fmt.Sprintf("<bad multiname ref %d>", i)
	}
	if depth > 8 {
		// Self-referencing TypeName parameters would otherwise recurse forever.
		return fmt.Sprintf("<multiname %d: nesting too deep>", i)
	}
	mn := p.Multinames[i]
	switch mn.Kind {
	case KindQName, KindQNameA:
		ns := p.NamespaceName(mn.Namespace)
		name := p.StringAt(mn.Name)
		if ns == "" {
			return name
		}
		return ns + "." + name
	case KindRTQName, KindRTQNameA:
		return p.StringAt(mn.Name)
	case KindRTQNameL, KindRTQNameLA:
		return "*"
	case KindMultiname, KindMultinameA:
		return p.StringAt(mn.Name)
	case KindMultinameL, KindMultinameLA:
		return "*"
	case KindTypeName:
		base := p.multinameString(mn.TypeDef, depth+1)
		if len(mn.Params) == 0 {
			return base
		}
		out := base + ".<"
		for j, pi := range mn.Params {
			if j > 0 {
				out += ","
			}
			out += p.multinameString(pi, depth+1)
		}
		return out + ">"
	default:
		return fmt.Sprintf("<multiname kind 0x%02x>", uint8(mn.Kind))
	}
}
