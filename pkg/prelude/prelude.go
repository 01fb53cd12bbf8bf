// Package prelude is the fixed table of pure, terminating library functions
// scripts reach through `$name` globals and `Namespace.name` references.
package prelude

import (
	"fmt"
	"sort"

	"github.com/Airsequel/AirScript/pkg/runtime"
	"github.com/Airsequel/AirScript/pkg/types"
)

// Version identifies the table. Any change to a signature or a cost bumps it.
const Version = "airscript-prelude/1"

// OperatorNamespace holds the functions operators desugar to. Scripts cannot
// name it directly.
const OperatorNamespace = "Op"

// Context is what an implementation may ask of the evaluator running it.
type Context interface {
	// Apply calls fn with exactly fn.Arity() arguments.
	Apply(fn runtime.Function, args ...runtime.Value) (runtime.Value, error)
	// Alloc charges bytes against the memory budget before allocating.
	Alloc(bytes int64) error
}

// Impl is a prelude function body. Errors from Context must be returned
// unchanged; a *Failure ends the invocation with Error(message).
type Impl func(ctx Context, args []runtime.Value) (runtime.Value, error)

// Failure is a language-level failure raised by a prelude function.
type Failure struct {
	Message string
}

func (f *Failure) Error() string { return f.Message }

func failf(format string, args ...any) error {
	return &Failure{Message: fmt.Sprintf(format, args...)}
}

// Entry is one prelude function.
type Entry struct {
	Namespace string
	Name      string
	Signature types.Scheme
	Cost      int64
	Impl      Impl
}

// Qualified renders the entry as `Namespace.name`.
func (e *Entry) Qualified() string { return e.Namespace + "." + e.Name }

// Arity is the fixed parameter count of the entry's signature.
func (e *Entry) Arity() int {
	if fn, ok := e.Signature.Body.(types.FunctionType); ok {
		return fn.Arity()
	}
	return 0
}

type key struct {
	namespace string
	name      string
}

var (
	table   = map[key]*Entry{}
	globals = map[string]*Entry{}
)

func register(namespace, name string, cost int64, sig types.Scheme, impl Impl) {
	k := key{namespace, name}
	if _, dup := table[k]; dup {
		panic("prelude: duplicate entry " + namespace + "." + name)
	}
	table[k] = &Entry{Namespace: namespace, Name: name, Signature: sig, Cost: cost, Impl: impl}
}

func alias(global, namespace, name string) {
	entry, ok := table[key{namespace, name}]
	if !ok {
		panic("prelude: alias to unknown entry " + namespace + "." + name)
	}
	globals[global] = entry
}

// scheme quantifies body over params.
func scheme(body types.Type, params ...string) types.Scheme {
	return types.Scheme{Params: params, Body: body}
}

func init() {
	registerList()
	registerText()
	registerNumber()
	registerResult()
	registerOptions()
	registerOperators()

	alias("map", "List", "map")
	alias("filter", "List", "filter")
	alias("fold", "List", "fold")
	alias("sum", "List", "sum")
	alias("length", "List", "length")
	alias("round", "Number", "round")
	alias("text", "Text", "fromNumber")
}

// Lookup finds a namespaced entry.
func Lookup(namespace, name string) (*Entry, bool) {
	entry, ok := table[key{namespace, name}]
	return entry, ok
}

// Global finds the entry behind a `$name` global.
func Global(name string) (*Entry, bool) {
	entry, ok := globals[name]
	return entry, ok
}

// IsNamespace reports whether name is a namespace scripts may reference.
func IsNamespace(name string) bool {
	if name == OperatorNamespace {
		return false
	}
	for k := range table {
		if k.namespace == name {
			return true
		}
	}
	return false
}

// Entries lists every entry ordered by namespace then name.
func Entries() []*Entry {
	out := make([]*Entry, 0, len(table))
	for _, entry := range table {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Namespace != out[j].Namespace {
			return out[i].Namespace < out[j].Namespace
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Globals lists the `$name` globals in sorted order.
func Globals() []string {
	out := make([]string, 0, len(globals))
	for name := range globals {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// argument helpers; the checker guarantees the shapes.

func num(v runtime.Value) float64 { return v.(runtime.NumberValue).Val }

func text(v runtime.Value) string { return v.(runtime.TextValue).Val }

func list(v runtime.Value) []runtime.Value { return v.(*runtime.ListValue).Elements }

func fn(v runtime.Value) runtime.Function { return v.(runtime.Function) }

func variant(v runtime.Value) runtime.VariantValue { return v.(runtime.VariantValue) }

func number(ctx Context, f float64) (runtime.Value, error) {
	if err := ctx.Alloc(runtime.NumberFootprint); err != nil {
		return nil, err
	}
	return runtime.Number(f), nil
}

func textValue(ctx Context, s string) (runtime.Value, error) {
	if err := ctx.Alloc(runtime.TextFootprint(s)); err != nil {
		return nil, err
	}
	return runtime.Text(s), nil
}

func wrap(ctx Context, v runtime.VariantValue) (runtime.Value, error) {
	if err := ctx.Alloc(runtime.VariantFootprint); err != nil {
		return nil, err
	}
	return v, nil
}

// boolean results reuse the shared True/False values.
func boolean(b bool) (runtime.Value, error) { return runtime.Bool(b), nil }
