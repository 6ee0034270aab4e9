// Package swffmt provides the shared bit-level reader, primitive records,
// and diagnostics for SWF container decoding.
package swffmt

import "fmt"

// DiagKind classifies a diagnostic message.
type DiagKind string

const (
	DiagTruncated  DiagKind = "truncated"
	DiagInvalid    DiagKind = "invalid"
	DiagUnknownTag DiagKind = "unknown_tag"
	DiagOverflow   DiagKind = "overflow"
	DiagClamped    DiagKind = "clamped"
	DiagBadRef     DiagKind = "bad_reference"
	DiagBadVersion DiagKind = "unsupported_version"
)

// Diag records a non-fatal issue encountered during decoding.
type Diag struct {
	Offset uint64   `json:"offset"`
	Kind   DiagKind `json:"kind"`
	Msg    string   `json:"msg"`
}

func (d Diag) String() string {
	return fmt.Sprintf("[%s] 0x%x: %s", d.Kind, d.Offset, d.Msg)
}

// Diags accumulates diagnostics.
type Diags struct {
	items []Diag
}

func (d *Diags) Add(offset uint64, kind DiagKind, msg string) {
	d.items = append(d.items, Diag{Offset: offset, Kind: kind, Msg: msg})
}

func (d *Diags) Addf(offset uint64, kind DiagKind, format string, args ...any) {
	d.items = append(d.items, Diag{Offset: offset, Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

func (d *Diags) Items() []Diag { return d.items }
func (d *Diags) Len() int      { return len(d.items) }

// Mode controls how policy-level decisions handle irregular input. The tag
// walker continues past bad tags in both modes; Mode gates acceptance checks
// such as the bytecode module version pair.
type Mode int

const (
	ModeStrict     Mode = iota // reject irregular input with an error
	ModeBestEffort             // decode anyway, accumulate diags
)

// Options controls decoding behavior across packages.
type Options struct {
	Mode       Mode
	MaxTags    int // tag stream iteration cap; 0 = use default
	MaxCount   int // repeated-element cap per record; 0 = use default
	MaxNesting int // sprite recursion cap; 0 = use default
}

// Defaults sized for real content, not pathological input.
const (
	DefaultMaxTags    = 50_000
	DefaultMaxCount   = 65_536
	DefaultMaxNesting = 16
)

func (o Options) EffectiveMaxTags() int {
	if o.MaxTags > 0 {
		return o.MaxTags
	}
	return DefaultMaxTags
}

func (o Options) EffectiveMaxCount() int {
	if o.MaxCount > 0 {
		return o.MaxCount
	}
	return DefaultMaxCount
}

func (o Options) EffectiveMaxNesting() int {
	if o.MaxNesting > 0 {
		return o.MaxNesting
	}
	return DefaultMaxNesting
}
