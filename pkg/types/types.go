package types

import (
	"fmt"
	"sort"
	"strings"
)

// Type is a static type understood by the checker and the prelude table.
type Type interface {
	Name() string
}

type PrimitiveKind string

const (
	PrimitiveNumber PrimitiveKind = "Number"
	PrimitiveText   PrimitiveKind = "Text"
	PrimitiveAtom   PrimitiveKind = "Atom"
)

type PrimitiveType struct {
	Kind PrimitiveKind
}

func (p PrimitiveType) Name() string { return string(p.Kind) }

var (
	Number = PrimitiveType{Kind: PrimitiveNumber}
	Text   = PrimitiveType{Kind: PrimitiveText}
	Atom   = PrimitiveType{Kind: PrimitiveAtom}
)

type ListType struct {
	Element Type
}

func (l ListType) Name() string { return "List(" + l.Element.Name() + ")" }

type FieldType struct {
	Name string
	Type Type
}

// RecordType is a closed record. Fields are kept sorted by name.
type RecordType struct {
	Fields []FieldType
}

// NewRecord builds a record type with its fields in canonical order.
func NewRecord(fields []FieldType) RecordType {
	sorted := append([]FieldType(nil), fields...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return RecordType{Fields: sorted}
}

// Field returns the type of the named field.
func (r RecordType) Field(name string) (Type, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

func (r RecordType) Name() string {
	parts := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		parts = append(parts, f.Name+": "+f.Type.Name())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// FunctionType has a fixed arity; there is no partial application.
type FunctionType struct {
	Params []Type
	Return Type
}

func (f FunctionType) Name() string {
	parts := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		parts = append(parts, p.Name())
	}
	return "(" + strings.Join(parts, ", ") + ") -> " + f.Return.Name()
}

// Arity is the number of parameters a call must supply.
func (f FunctionType) Arity() int { return len(f.Params) }

// SumType is an instance of a registered sum. Args instantiate the sum's
// parameters, if any.
type SumType struct {
	SumName string
	Args    []Type
}

func (s SumType) Name() string {
	if len(s.Args) == 0 {
		return s.SumName
	}
	parts := make([]string, 0, len(s.Args))
	for _, a := range s.Args {
		parts = append(parts, a.Name())
	}
	return s.SumName + "(" + strings.Join(parts, ", ") + ")"
}

// TypeVariable is a unification variable. Instance is set once the variable
// is bound; Level drives let-generalization.
type TypeVariable struct {
	ID       int
	Level    int
	Instance Type
}

func (v *TypeVariable) Name() string {
	if v.Instance != nil {
		return v.Instance.Name()
	}
	return fmt.Sprintf("t%d", v.ID)
}

// TypeParameterType is a quantified parameter inside a scheme, a prelude
// signature or a sum definition.
type TypeParameterType struct {
	ParameterName string
}

func (t TypeParameterType) Name() string { return t.ParameterName }

// Scheme is a possibly polymorphic type. Params name the TypeParameterTypes
// that Instantiate replaces with fresh variables.
type Scheme struct {
	Params []string
	Body   Type
}

// Mono wraps a type as a scheme with no parameters.
func Mono(t Type) Scheme { return Scheme{Body: t} }

func (s Scheme) Name() string {
	if len(s.Params) == 0 {
		return s.Body.Name()
	}
	return "forall " + strings.Join(s.Params, " ") + ". " + s.Body.Name()
}

// Constructors for common shapes.

func List(elem Type) ListType { return ListType{Element: elem} }

func Func(ret Type, params ...Type) FunctionType {
	if params == nil {
		params = []Type{}
	}
	return FunctionType{Params: params, Return: ret}
}

func Param(name string) TypeParameterType { return TypeParameterType{ParameterName: name} }

func Boolean() SumType { return SumType{SumName: BooleanName} }

func Result(t Type) SumType { return SumType{SumName: ResultName, Args: []Type{t}} }

func Options(t Type) SumType { return SumType{SumName: OptionsName, Args: []Type{t}} }

// Prune follows bound type variables to the representative type.
func Prune(t Type) Type {
	for {
		v, ok := t.(*TypeVariable)
		if !ok || v.Instance == nil {
			return t
		}
		t = v.Instance
	}
}

// Resolve returns t with every bound variable replaced by its instance.
func Resolve(t Type) Type {
	return Map(Prune(t), func(inner Type) (Type, bool) {
		if v, ok := inner.(*TypeVariable); ok && v.Instance != nil {
			return Resolve(v.Instance), true
		}
		return nil, false
	})
}

// Map rebuilds t bottom-up. fn may replace a node by returning true; nodes it
// declines are rebuilt from their mapped children.
func Map(t Type, fn func(Type) (Type, bool)) Type {
	if replaced, ok := fn(t); ok {
		return replaced
	}
	switch tt := t.(type) {
	case ListType:
		return ListType{Element: Map(tt.Element, fn)}
	case RecordType:
		fields := make([]FieldType, len(tt.Fields))
		for i, f := range tt.Fields {
			fields[i] = FieldType{Name: f.Name, Type: Map(f.Type, fn)}
		}
		return RecordType{Fields: fields}
	case FunctionType:
		params := make([]Type, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = Map(p, fn)
		}
		return FunctionType{Params: params, Return: Map(tt.Return, fn)}
	case SumType:
		if len(tt.Args) == 0 {
			return tt
		}
		args := make([]Type, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = Map(a, fn)
		}
		return SumType{SumName: tt.SumName, Args: args}
	}
	return t
}

// Substitute replaces TypeParameterTypes named in bindings.
func Substitute(t Type, bindings map[string]Type) Type {
	if len(bindings) == 0 {
		return t
	}
	return Map(t, func(inner Type) (Type, bool) {
		if p, ok := inner.(TypeParameterType); ok {
			if repl, found := bindings[p.ParameterName]; found {
				return repl, true
			}
		}
		return nil, false
	})
}

// FreeVariables lists the unbound type variables in t, first occurrence first.
func FreeVariables(t Type) []*TypeVariable {
	var out []*TypeVariable
	seen := make(map[*TypeVariable]bool)
	var walk func(Type)
	walk = func(t Type) {
		switch tt := Prune(t).(type) {
		case *TypeVariable:
			if !seen[tt] {
				seen[tt] = true
				out = append(out, tt)
			}
		case ListType:
			walk(tt.Element)
		case RecordType:
			for _, f := range tt.Fields {
				walk(f.Type)
			}
		case FunctionType:
			for _, p := range tt.Params {
				walk(p)
			}
			walk(tt.Return)
		case SumType:
			for _, a := range tt.Args {
				walk(a)
			}
		}
	}
	walk(t)
	return out
}
