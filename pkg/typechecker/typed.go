package typechecker

import (
	"github.com/Airsequel/AirScript/pkg/ast"
	"github.com/Airsequel/AirScript/pkg/prelude"
	"github.com/Airsequel/AirScript/pkg/types"
)

// InferenceMap tracks the resolved type of each AST node.
type InferenceMap map[ast.Node]types.Type

// set records a type for a node.
func (m InferenceMap) set(node ast.Node, typ types.Type) {
	if node == nil || typ == nil {
		return
	}
	m[node] = typ
}

// Reference is what a `$name` or `Namespace.name` reference resolved to.
// Entry is nil for host bindings.
type Reference struct {
	Entry *prelude.Entry
	Host  string
}

// IsHost reports whether the reference names a host binding.
func (r Reference) IsHost() bool { return r.Entry == nil }

// TypedScript is a checked script. Script is free of pipe and compose
// nodes; the maps are keyed by its nodes.
type TypedScript struct {
	Script   *ast.Script
	Types    InferenceMap
	Registry *types.Registry
	// Order lists each block's bindings in evaluation order.
	Order map[*ast.Block][]*ast.Binding
	Refs  map[*ast.PreludeRef]Reference
	// Schemes holds the generalized type of every binding.
	Schemes map[*ast.Binding]types.Scheme
	// Result is the type of the script's terminal expression.
	Result types.Type
}

// TypeOf returns the inferred type of node.
func (t *TypedScript) TypeOf(node ast.Node) (types.Type, bool) {
	typ, ok := t.Types[node]
	return typ, ok
}

// Rebase returns a TypedScript for script, a rewritten copy of t.Script.
// copies maps original nodes to their replacements as ast.Rewrite reports
// them. Nodes without a replacement of the same kind are dropped from the
// maps.
func (t *TypedScript) Rebase(script *ast.Script, copies map[ast.Node]ast.Node) *TypedScript {
	out := &TypedScript{
		Script:   script,
		Types:    make(InferenceMap, len(t.Types)),
		Registry: t.Registry,
		Order:    make(map[*ast.Block][]*ast.Binding, len(t.Order)),
		Refs:     make(map[*ast.PreludeRef]Reference, len(t.Refs)),
		Schemes:  make(map[*ast.Binding]types.Scheme, len(t.Schemes)),
		Result:   t.Result,
	}
	for node, typ := range t.Types {
		if repl, ok := copies[node]; ok {
			out.Types.set(repl, typ)
		}
	}
	for block, bindings := range t.Order {
		newBlock, ok := copies[block].(*ast.Block)
		if !ok {
			continue
		}
		ordered := make([]*ast.Binding, 0, len(bindings))
		for _, b := range bindings {
			if nb, ok := copies[b].(*ast.Binding); ok {
				ordered = append(ordered, nb)
			}
		}
		out.Order[newBlock] = ordered
	}
	for ref, target := range t.Refs {
		if nr, ok := copies[ref].(*ast.PreludeRef); ok {
			out.Refs[nr] = target
		}
	}
	for binding, scheme := range t.Schemes {
		if nb, ok := copies[binding].(*ast.Binding); ok {
			out.Schemes[nb] = scheme
		}
	}
	return out
}
