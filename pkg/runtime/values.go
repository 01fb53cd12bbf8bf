package runtime

import (
	"fmt"
	"math"
	"sort"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNumber Kind = iota
	KindText
	KindAtom
	KindList
	KindRecord
	KindVariant
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindAtom:
		return "atom"
	case KindList:
		return "list"
	case KindRecord:
		return "record"
	case KindVariant:
		return "variant"
	case KindFunction:
		return "function"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values. Values are immutable
// once constructed.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NumberValue struct {
	Val float64
}

func (NumberValue) Kind() Kind { return KindNumber }

type TextValue struct {
	Val string
}

func (TextValue) Kind() Kind { return KindText }

type AtomValue struct {
	Name string
}

func (AtomValue) Kind() Kind { return KindAtom }

//-----------------------------------------------------------------------------
// Structures
//-----------------------------------------------------------------------------

type ListValue struct {
	Elements []Value
}

func (*ListValue) Kind() Kind { return KindList }

// NewList wraps elements without copying them.
func NewList(elements []Value) *ListValue {
	if elements == nil {
		elements = []Value{}
	}
	return &ListValue{Elements: elements}
}

type RecordEntry struct {
	Name  string
	Value Value
}

// RecordValue keeps its entries sorted by field name.
type RecordValue struct {
	Entries []RecordEntry
}

func (*RecordValue) Kind() Kind { return KindRecord }

// NewRecord sorts entries into canonical order.
func NewRecord(entries []RecordEntry) *RecordValue {
	sorted := append([]RecordEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &RecordValue{Entries: sorted}
}

// Get returns the named field.
func (r *RecordValue) Get(name string) (Value, bool) {
	idx := sort.Search(len(r.Entries), func(i int) bool { return r.Entries[i].Name >= name })
	if idx < len(r.Entries) && r.Entries[idx].Name == name {
		return r.Entries[idx].Value, true
	}
	return nil, false
}

// VariantValue is a constructed sum value. Payload is nil for payload-less
// variants.
type VariantValue struct {
	Tag     string
	Payload Value
}

func (VariantValue) Kind() Kind { return KindVariant }

// Function is any callable value. Calls always supply exactly Arity arguments.
type Function interface {
	Value
	Arity() int
}

//-----------------------------------------------------------------------------
// Built-in variants
//-----------------------------------------------------------------------------

var (
	True  = VariantValue{Tag: "True"}
	False = VariantValue{Tag: "False"}
	Null  = VariantValue{Tag: "Null"}
)

func Bool(b bool) VariantValue {
	if b {
		return True
	}
	return False
}

// IsTrue reports whether v is the True variant.
func IsTrue(v Value) bool {
	variant, ok := v.(VariantValue)
	return ok && variant.Tag == "True"
}

func Ok(v Value) VariantValue { return VariantValue{Tag: "Ok", Payload: v} }

func Err(message string) VariantValue {
	return VariantValue{Tag: "Error", Payload: TextValue{Val: message}}
}

func Some(v Value) VariantValue { return VariantValue{Tag: "Some", Payload: v} }

// Number is shorthand for NumberValue.
func Number(f float64) NumberValue { return NumberValue{Val: f} }

// Text is shorthand for TextValue.
func Text(s string) TextValue { return TextValue{Val: s} }

// Equal compares two values structurally. Functions are never equal.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case NumberValue:
		bv, ok := b.(NumberValue)
		return ok && (av.Val == bv.Val || (math.IsNaN(av.Val) && math.IsNaN(bv.Val)))
	case TextValue:
		bv, ok := b.(TextValue)
		return ok && av.Val == bv.Val
	case AtomValue:
		bv, ok := b.(AtomValue)
		return ok && av.Name == bv.Name
	case *ListValue:
		bv, ok := b.(*ListValue)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *RecordValue:
		bv, ok := b.(*RecordValue)
		if !ok || len(av.Entries) != len(bv.Entries) {
			return false
		}
		for i := range av.Entries {
			if av.Entries[i].Name != bv.Entries[i].Name || !Equal(av.Entries[i].Value, bv.Entries[i].Value) {
				return false
			}
		}
		return true
	case VariantValue:
		bv, ok := b.(VariantValue)
		if !ok || av.Tag != bv.Tag {
			return false
		}
		if av.Payload == nil || bv.Payload == nil {
			return av.Payload == nil && bv.Payload == nil
		}
		return Equal(av.Payload, bv.Payload)
	}
	return false
}
