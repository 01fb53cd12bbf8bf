package types

import "fmt"

// Built-in sum names. They are registered before any user declaration, in
// this order.
const (
	BooleanName = "Boolean"
	ResultName  = "Result"
	OptionsName = "Options"

	// TagName is the open union collecting constructors that no declaration
	// introduced.
	TagName = "Tag"
)

// VariantDef is one constructor of a sum. Payload may mention the sum's
// parameters as TypeParameterTypes; it is nil when HasPayload is false.
type VariantDef struct {
	Name       string
	Payload    Type
	HasPayload bool
	Sum        *SumDef
	Index      int
}

// SumDef is a registered sum type. Variants keep registration order.
type SumDef struct {
	Name     string
	Params   []string
	Variants []*VariantDef
	Open     bool
	Builtin  bool
}

// Variant returns the named variant.
func (d *SumDef) Variant(name string) (*VariantDef, bool) {
	for _, v := range d.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// Registry tracks every sum type and constructor known to one script.
type Registry struct {
	sums  map[string]*SumDef
	order []*SumDef
	ctors map[string]*VariantDef
}

// DuplicateError reports a type or constructor name registered twice.
type DuplicateError struct {
	Kind string
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %s is already defined", e.Kind, e.Name)
}

// NewRegistry returns a registry holding the built-in sums and an empty Tag
// union.
func NewRegistry() *Registry {
	r := &Registry{
		sums:  make(map[string]*SumDef),
		ctors: make(map[string]*VariantDef),
	}
	boolean := r.mustReserve(BooleanName, nil)
	boolean.Builtin = true
	r.mustAdd(boolean, "True", nil)
	r.mustAdd(boolean, "False", nil)

	result := r.mustReserve(ResultName, []string{"T"})
	result.Builtin = true
	r.mustAdd(result, "Ok", Param("T"))
	r.mustAdd(result, "Error", Text)

	options := r.mustReserve(OptionsName, []string{"T"})
	options.Builtin = true
	r.mustAdd(options, "Some", Param("T"))
	r.mustAdd(options, "Null", nil)

	tag := r.mustReserve(TagName, nil)
	tag.Builtin = true
	tag.Open = true
	return r
}

func (r *Registry) mustReserve(name string, params []string) *SumDef {
	def, err := r.Reserve(name, params)
	if err != nil {
		panic(err)
	}
	return def
}

func (r *Registry) mustAdd(def *SumDef, name string, payload Type) {
	if _, err := r.AddVariant(def, name, payload); err != nil {
		panic(err)
	}
}

// Reserve registers an empty sum so declarations may refer to each other
// before their variants are filled in.
func (r *Registry) Reserve(name string, params []string) (*SumDef, error) {
	if _, exists := r.sums[name]; exists || isReservedTypeName(name) {
		return nil, &DuplicateError{Kind: "type", Name: name}
	}
	def := &SumDef{Name: name, Params: params}
	r.sums[name] = def
	r.order = append(r.order, def)
	return def, nil
}

func isReservedTypeName(name string) bool {
	switch name {
	case "Number", "Text", "Atom", "List", "Function":
		return true
	}
	return false
}

// AddVariant appends a constructor to def. Constructor names are global.
func (r *Registry) AddVariant(def *SumDef, name string, payload Type) (*VariantDef, error) {
	if _, exists := r.ctors[name]; exists {
		return nil, &DuplicateError{Kind: "constructor", Name: name}
	}
	variant := &VariantDef{
		Name:       name,
		Payload:    payload,
		HasPayload: payload != nil,
		Sum:        def,
		Index:      len(def.Variants),
	}
	def.Variants = append(def.Variants, variant)
	r.ctors[name] = variant
	return variant, nil
}

// RegisterAdHoc adds an undeclared constructor to the Tag union. A repeated
// registration returns the existing variant.
func (r *Registry) RegisterAdHoc(name string, payload Type) *VariantDef {
	if existing, ok := r.ctors[name]; ok {
		return existing
	}
	variant, _ := r.AddVariant(r.sums[TagName], name, payload)
	return variant
}

// Lookup returns the named sum.
func (r *Registry) Lookup(name string) (*SumDef, bool) {
	def, ok := r.sums[name]
	return def, ok
}

// Constructor returns the variant introduced by the named constructor.
func (r *Registry) Constructor(name string) (*VariantDef, bool) {
	v, ok := r.ctors[name]
	return v, ok
}

// Sums lists registered sums in registration order.
func (r *Registry) Sums() []*SumDef {
	return append([]*SumDef(nil), r.order...)
}

// Missing lists the variants of def not in covered, in registration order.
func (r *Registry) Missing(def *SumDef, covered map[string]bool) []string {
	var out []string
	for _, v := range def.Variants {
		if !covered[v.Name] {
			out = append(out, v.Name)
		}
	}
	return out
}

// PayloadType returns the payload of variant instantiated for the given sum
// arguments.
func PayloadType(variant *VariantDef, args []Type) Type {
	if !variant.HasPayload {
		return nil
	}
	bindings := make(map[string]Type, len(variant.Sum.Params))
	for i, name := range variant.Sum.Params {
		if i < len(args) {
			bindings[name] = args[i]
		}
	}
	return Substitute(variant.Payload, bindings)
}
