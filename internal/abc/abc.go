// Package abc decodes the embedded ActionScript bytecode module carried by
// DoABC tags: constant pools, method signatures, metadata, class and trait
// tables, scripts, and method bodies. Bodies are captured structurally;
// instructions are never interpreted or executed.
package abc

import (
	"errors"
	"fmt"

	"unswf/internal/swffmt"
)

// The one module layout this decoder knows.
const (
	KnownMajor = 46
	KnownMinor = 16
)

var errCountRange = errors.New("abc: count out of range")

// UnsupportedVersionError reports a module version pair with no known
// layout. Strict mode rejects the module; best-effort decodes it as the
// known layout and records a diagnostic.
type UnsupportedVersionError struct {
	Major uint16
	Minor uint16
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("abc: unsupported version %d.%d (known layout is %d.%d)",
		e.Major, e.Minor, KnownMajor, KnownMinor)
}

// Module is a decoded bytecode module.
type Module struct {
	MinorVersion uint16        `json:"minorVersion"`
	MajorVersion uint16        `json:"majorVersion"`
	Pool         ConstantPool  `json:"constantPool"`
	Methods      []Method      `json:"methods"`
	Metadata     []Metadata    `json:"metadata,omitempty"`
	Instances    []Instance    `json:"instances,omitempty"`
	Classes      []Class       `json:"classes,omitempty"`
	Scripts      []Script      `json:"scripts,omitempty"`
	Bodies       []MethodBody  `json:"methodBodies,omitempty"`
	Diags        []swffmt.Diag `json:"diagnostics,omitempty"`
}

// Method flag bits.
const (
	MethodNeedArguments  = 0x01
	MethodNeedActivation = 0x02
	MethodNeedRest       = 0x04
	MethodHasOptional    = 0x08
	MethodSetDxns        = 0x40
	MethodHasParamNames  = 0x80
)

// Method is one method signature. All index fields reference pool tables.
type Method struct {
	ParamTypes []uint32      `json:"paramTypes"`
	ReturnType uint32        `json:"returnType"`
	Name       uint32        `json:"name"` // string index; 0 = unnamed
	Flags      uint8         `json:"flags"`
	Options    []OptionValue `json:"options,omitempty"`
	ParamNames []uint32      `json:"paramNames,omitempty"`
}

// OptionValue is one default parameter value (pool index plus value kind).
type OptionValue struct {
	Value uint32 `json:"value"`
	Kind  uint8  `json:"kind"`
}

// Metadata is one metadata entry with its key/value item pairs.
type Metadata struct {
	Name  uint32         `json:"name"`
	Items []MetadataItem `json:"items"`
}

// MetadataItem is one key/value pair of string indices.
type MetadataItem struct {
	Key   uint32 `json:"key"`
	Value uint32 `json:"value"`
}

// Instance flag bits.
const (
	InstanceSealed      = 0x01
	InstanceFinal       = 0x02
	InstanceInterface   = 0x04
	InstanceProtectedNs = 0x08
)

// Instance is the per-class instance shape: name, supertype, interfaces,
// constructor and instance traits.
type Instance struct {
	Name        uint32   `json:"name"` // multiname index
	SuperName   uint32   `json:"superName"`
	Flags       uint8    `json:"flags"`
	ProtectedNs uint32   `json:"protectedNs,omitempty"`
	Interfaces  []uint32 `json:"interfaces,omitempty"`
	Init        uint32   `json:"init"` // method index
	Traits      []Trait  `json:"traits,omitempty"`
}

// Class is the static half of a class: initializer and static traits.
type Class struct {
	Init   uint32  `json:"init"` // method index
	Traits []Trait `json:"traits,omitempty"`
}

// Script is one script entry: initializer method and traits.
type Script struct {
	Init   uint32  `json:"init"` // method index
	Traits []Trait `json:"traits,omitempty"`
}

// MethodBody is the structural shell of one method body. Code is the raw
// instruction stream, kept opaque.
type MethodBody struct {
	Method         uint32      `json:"method"`
	MaxStack       uint32      `json:"maxStack"`
	LocalCount     uint32      `json:"localCount"`
	InitScopeDepth uint32      `json:"initScopeDepth"`
	MaxScopeDepth  uint32      `json:"maxScopeDepth"`
	Code           []byte      `json:"-"`
	CodeLength     int         `json:"codeLength"`
	Exceptions     []Exception `json:"exceptions,omitempty"`
	Traits         []Trait     `json:"traits,omitempty"`
}

// Exception is one exception-table entry (all fields are offsets or pool
// indices, uninterpreted).
type Exception struct {
	From    uint32 `json:"from"`
	To      uint32 `json:"to"`
	Target  uint32 `json:"target"`
	ExcType uint32 `json:"excType"`
	VarName uint32 `json:"varName"`
}

type decoder struct {
	r        *swffmt.Reader
	maxCount int
	diags    swffmt.Diags
	mod      *Module
}

// Decode reads a bytecode module from data. On error the returned module
// still holds everything decoded before the failure; callers surface the
// error on the enclosing tag record rather than aborting the stream.
func Decode(data []byte, opts swffmt.Options) (*Module, error) {
	r := swffmt.NewReader(data)
	minor, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("abc: version: %w", err)
	}
	major, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("abc: version: %w", err)
	}

	d := &decoder{r: r, maxCount: opts.EffectiveMaxCount()}
	d.mod = &Module{MinorVersion: minor, MajorVersion: major}

	if major != KnownMajor || minor != KnownMinor {
		verr := &UnsupportedVersionError{Major: major, Minor: minor}
		if opts.Mode == swffmt.ModeStrict {
			return nil, verr
		}
		d.diags.Addf(0, swffmt.DiagBadVersion, "%v; decoding as %d.%d", verr, KnownMajor, KnownMinor)
	}

	steps := []struct {
		what string
		fn   func() error
	}{
		{"constant pool", d.readPool},
		{"methods", d.readMethods},
		{"metadata", d.readMetadata},
		{"classes", d.readClasses},
		{"scripts", d.readScripts},
		{"method bodies", d.readBodies},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			d.diags.Addf(uint64(r.Position()), diagKindFor(err), "%s: %v", step.what, err)
			d.mod.Diags = d.diags.Items()
			return d.mod, fmt.Errorf("abc: %s: %w", step.what, err)
		}
	}
	d.checkRefs()
	d.mod.Diags = d.diags.Items()
	return d.mod, nil
}

func diagKindFor(err error) swffmt.DiagKind {
	switch {
	case errors.Is(err, swffmt.ErrOutOfData):
		return swffmt.DiagTruncated
	case errors.Is(err, errCountRange):
		return swffmt.DiagOverflow
	default:
		return swffmt.DiagInvalid
	}
}

// readCount reads a variable-length count and enforces the configured cap.
func (d *decoder) readCount(what string) (int, error) {
	v, err := d.r.ReadEncodedU32()
	if err != nil {
		return 0, fmt.Errorf("%s count: %w", what, err)
	}
	if int64(v) > int64(d.maxCount) {
		return 0, fmt.Errorf("%s count %d: %w", what, v, errCountRange)
	}
	return int(v), nil
}

// readCapped reads an n-byte payload, clamping n to the configured cap: the
// prefix is kept, the rest is skipped so decoding stays in sync.
func (d *decoder) readCapped(what string, n int) ([]byte, error) {
	keep := n
	if keep > d.maxCount {
		keep = d.maxCount
		d.diags.Addf(uint64(d.r.Position()), swffmt.DiagClamped,
			"%s length %d clamped to %d", what, n, keep)
	}
	b, err := d.r.ReadSpan(keep)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	if keep < n {
		if err := d.r.Skip(n - keep); err != nil {
			return b, fmt.Errorf("%s tail: %w", what, err)
		}
	}
	return b, nil
}

func (d *decoder) readMethods() error {
	n, err := d.readCount("method")
	if err != nil {
		return err
	}
	d.mod.Methods = make([]Method, 0, n)
	for i := 0; i < n; i++ {
		m, err := d.readMethod()
		if err != nil {
			d.mod.Methods = append(d.mod.Methods, m)
			return fmt.Errorf("method %d/%d: %w", i, n, err)
		}
		d.mod.Methods = append(d.mod.Methods, m)
	}
	return nil
}

func (d *decoder) readMethod() (Method, error) {
	var m Method
	paramCount, err := d.readCount("param")
	if err != nil {
		return m, err
	}
	if m.ReturnType, err = d.r.ReadEncodedU32(); err != nil {
		return m, fmt.Errorf("return type: %w", err)
	}
	m.ParamTypes = make([]uint32, paramCount)
	for i := range m.ParamTypes {
		if m.ParamTypes[i], err = d.r.ReadEncodedU32(); err != nil {
			return m, fmt.Errorf("param type %d/%d: %w", i, paramCount, err)
		}
	}
	if m.Name, err = d.r.ReadEncodedU32(); err != nil {
		return m, fmt.Errorf("name: %w", err)
	}
	flags, err := d.r.ReadUint8()
	if err != nil {
		return m, fmt.Errorf("flags: %w", err)
	}
	m.Flags = flags
	if flags&MethodHasOptional != 0 {
		optCount, err := d.readCount("option")
		if err != nil {
			return m, err
		}
		m.Options = make([]OptionValue, optCount)
		for i := range m.Options {
			if m.Options[i].Value, err = d.r.ReadEncodedU32(); err != nil {
				return m, fmt.Errorf("option %d/%d value: %w", i, optCount, err)
			}
			if m.Options[i].Kind, err = d.r.ReadUint8(); err != nil {
				return m, fmt.Errorf("option %d/%d kind: %w", i, optCount, err)
			}
		}
	}
	if flags&MethodHasParamNames != 0 {
		m.ParamNames = make([]uint32, paramCount)
		for i := range m.ParamNames {
			if m.ParamNames[i], err = d.r.ReadEncodedU32(); err != nil {
				return m, fmt.Errorf("param name %d/%d: %w", i, paramCount, err)
			}
		}
	}
	return m, nil
}

func (d *decoder) readMetadata() error {
	n, err := d.readCount("metadata")
	if err != nil {
		return err
	}
	d.mod.Metadata = make([]Metadata, 0, n)
	for i := 0; i < n; i++ {
		var md Metadata
		if md.Name, err = d.r.ReadEncodedU32(); err != nil {
			return fmt.Errorf("metadata %d/%d name: %w", i, n, err)
		}
		itemCount, err := d.readCount("metadata item")
		if err != nil {
			return fmt.Errorf("metadata %d/%d: %w", i, n, err)
		}
		md.Items = make([]MetadataItem, itemCount)
		for j := range md.Items {
			if md.Items[j].Key, err = d.r.ReadEncodedU32(); err != nil {
				return fmt.Errorf("metadata %d/%d item %d key: %w", i, n, j, err)
			}
		}
		for j := range md.Items {
			if md.Items[j].Value, err = d.r.ReadEncodedU32(); err != nil {
				return fmt.Errorf("metadata %d/%d item %d value: %w", i, n, j, err)
			}
		}
		d.mod.Metadata = append(d.mod.Metadata, md)
	}
	return nil
}

func (d *decoder) readClasses() error {
	n, err := d.readCount("class")
	if err != nil {
		return err
	}
	d.mod.Instances = make([]Instance, 0, n)
	for i := 0; i < n; i++ {
		inst, err := d.readInstance()
		if err != nil {
			d.mod.Instances = append(d.mod.Instances, inst)
			return fmt.Errorf("instance %d/%d: %w", i, n, err)
		}
		d.mod.Instances = append(d.mod.Instances, inst)
	}
	d.mod.Classes = make([]Class, 0, n)
	for i := 0; i < n; i++ {
		var c Class
		if c.Init, err = d.r.ReadEncodedU32(); err != nil {
			return fmt.Errorf("class %d/%d init: %w", i, n, err)
		}
		if c.Traits, err = d.readTraits("class"); err != nil {
			d.mod.Classes = append(d.mod.Classes, c)
			return fmt.Errorf("class %d/%d: %w", i, n, err)
		}
		d.mod.Classes = append(d.mod.Classes, c)
	}
	return nil
}

func (d *decoder) readInstance() (Instance, error) {
	var inst Instance
	var err error
	if inst.Name, err = d.r.ReadEncodedU32(); err != nil {
		return inst, fmt.Errorf("name: %w", err)
	}
	if inst.SuperName, err = d.r.ReadEncodedU32(); err != nil {
		return inst, fmt.Errorf("super name: %w", err)
	}
	if inst.Flags, err = d.r.ReadUint8(); err != nil {
		return inst, fmt.Errorf("flags: %w", err)
	}
	if inst.Flags&InstanceProtectedNs != 0 {
		if inst.ProtectedNs, err = d.r.ReadEncodedU32(); err != nil {
			return inst, fmt.Errorf("protected ns: %w", err)
		}
	}
	ifaceCount, err := d.readCount("interface")
	if err != nil {
		return inst, err
	}
	inst.Interfaces = make([]uint32, ifaceCount)
	for i := range inst.Interfaces {
		if inst.Interfaces[i], err = d.r.ReadEncodedU32(); err != nil {
			return inst, fmt.Errorf("interface %d/%d: %w", i, ifaceCount, err)
		}
	}
	if inst.Init, err = d.r.ReadEncodedU32(); err != nil {
		return inst, fmt.Errorf("init: %w", err)
	}
	if inst.Traits, err = d.readTraits("instance"); err != nil {
		return inst, err
	}
	return inst, nil
}

func (d *decoder) readScripts() error {
	n, err := d.readCount("script")
	if err != nil {
		return err
	}
	d.mod.Scripts = make([]Script, 0, n)
	for i := 0; i < n; i++ {
		var sc Script
		if sc.Init, err = d.r.ReadEncodedU32(); err != nil {
			return fmt.Errorf("script %d/%d init: %w", i, n, err)
		}
		if sc.Traits, err = d.readTraits("script"); err != nil {
			d.mod.Scripts = append(d.mod.Scripts, sc)
			return fmt.Errorf("script %d/%d: %w", i, n, err)
		}
		d.mod.Scripts = append(d.mod.Scripts, sc)
	}
	return nil
}

func (d *decoder) readBodies() error {
	n, err := d.readCount("method body")
	if err != nil {
		return err
	}
	d.mod.Bodies = make([]MethodBody, 0, n)
	for i := 0; i < n; i++ {
		b, err := d.readBody()
		if err != nil {
			d.mod.Bodies = append(d.mod.Bodies, b)
			return fmt.Errorf("body %d/%d: %w", i, n, err)
		}
		d.mod.Bodies = append(d.mod.Bodies, b)
	}
	return nil
}

func (d *decoder) readBody() (MethodBody, error) {
	var b MethodBody
	var err error
	if b.Method, err = d.r.ReadEncodedU32(); err != nil {
		return b, fmt.Errorf("method index: %w", err)
	}
	if b.MaxStack, err = d.r.ReadEncodedU32(); err != nil {
		return b, fmt.Errorf("max stack: %w", err)
	}
	if b.LocalCount, err = d.r.ReadEncodedU32(); err != nil {
		return b, fmt.Errorf("local count: %w", err)
	}
	if b.InitScopeDepth, err = d.r.ReadEncodedU32(); err != nil {
		return b, fmt.Errorf("init scope depth: %w", err)
	}
	if b.MaxScopeDepth, err = d.r.ReadEncodedU32(); err != nil {
		return b, fmt.Errorf("max scope depth: %w", err)
	}
	codeLen, err := d.r.ReadEncodedU32()
	if err != nil {
		return b, fmt.Errorf("code length: %w", err)
	}
	b.CodeLength = int(codeLen)
	if b.Code, err = d.readCapped("code", int(codeLen)); err != nil {
		return b, err
	}
	excCount, err := d.readCount("exception")
	if err != nil {
		return b, err
	}
	b.Exceptions = make([]Exception, excCount)
	for i := range b.Exceptions {
		e := &b.Exceptions[i]
		for _, f := range []*uint32{&e.From, &e.To, &e.Target, &e.ExcType, &e.VarName} {
			if *f, err = d.r.ReadEncodedU32(); err != nil {
				return b, fmt.Errorf("exception %d/%d: %w", i, excCount, err)
			}
		}
	}
	if b.Traits, err = d.readTraits("body"); err != nil {
		return b, err
	}
	return b, nil
}

// checkRefs audits pool and section indices once the module is fully
// decoded. A dangling index never aborts anything; the pool accessors
// substitute placeholders when rendering, and the audit records where the
// bad references live.
func (d *decoder) checkRefs() {
	p := &d.mod.Pool
	bad := func(owner string, i int, table string, idx uint32, size int) {
		if int64(idx) >= int64(size) {
			d.diags.Addf(0, swffmt.DiagBadRef,
				"%s %d: %s index %d out of range (table holds %d)", owner, i, table, idx, size)
		}
	}
	traits := func(owner string, i int, ts []Trait) {
		for _, t := range ts {
			bad(owner, i, "multiname", t.Name, len(p.Multinames))
			switch t.Kind {
			case TraitSlot, TraitConst:
				bad(owner, i, "multiname", t.TypeName, len(p.Multinames))
			case TraitMethod, TraitGetter, TraitSetter:
				bad(owner, i, "method", t.Method, len(d.mod.Methods))
			case TraitClass:
				bad(owner, i, "class", t.ClassIdx, len(d.mod.Classes))
			case TraitFunction:
				bad(owner, i, "method", t.Function, len(d.mod.Methods))
			}
			for _, m := range t.Metadata {
				bad(owner, i, "metadata", m, len(d.mod.Metadata))
			}
		}
	}

	for i, m := range d.mod.Methods {
		bad("method", i, "multiname", m.ReturnType, len(p.Multinames))
		for _, pt := range m.ParamTypes {
			bad("method", i, "multiname", pt, len(p.Multinames))
		}
		bad("method", i, "string", m.Name, len(p.Strings))
	}
	for i, inst := range d.mod.Instances {
		bad("instance", i, "multiname", inst.Name, len(p.Multinames))
		bad("instance", i, "multiname", inst.SuperName, len(p.Multinames))
		for _, iface := range inst.Interfaces {
			bad("instance", i, "multiname", iface, len(p.Multinames))
		}
		bad("instance", i, "method", inst.Init, len(d.mod.Methods))
		traits("instance", i, inst.Traits)
	}
	for i, c := range d.mod.Classes {
		bad("class", i, "method", c.Init, len(d.mod.Methods))
		traits("class", i, c.Traits)
	}
	for i, s := range d.mod.Scripts {
		bad("script", i, "method", s.Init, len(d.mod.Methods))
		traits("script", i, s.Traits)
	}
	for i, b := range d.mod.Bodies {
		bad("body", i, "method", b.Method, len(d.mod.Methods))
		for _, e := range b.Exceptions {
			bad("body", i, "multiname", e.ExcType, len(p.Multinames))
			bad("body", i, "multiname", e.VarName, len(p.Multinames))
		}
		traits("body", i, b.Traits)
	}
}
