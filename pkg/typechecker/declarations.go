package typechecker

import (
	"fmt"

	"github.com/Airsequel/AirScript/pkg/ast"
	"github.com/Airsequel/AirScript/pkg/types"
)

// registerDeclarations adds the script's sum types to the registry. Every
// name is reserved first so declarations may mention each other in any
// order.
func (c *checker) registerDeclarations(decls []*ast.TypeDeclaration) {
	defs := make([]*types.SumDef, len(decls))
	for i, decl := range decls {
		def, err := c.registry.Reserve(decl.Name.Name, nil)
		if err != nil {
			c.fail(&TypeError{Message: err.Error(), Primary: decl.Name.Span()})
		}
		defs[i] = def
	}
	for i, decl := range decls {
		for _, variant := range decl.Variants {
			var payload types.Type
			if variant.Payload != nil {
				payload = c.typeFromRef(variant.Payload)
			}
			if _, err := c.registry.AddVariant(defs[i], variant.Name.Name, payload); err != nil {
				c.fail(&TypeError{Message: err.Error(), Primary: variant.Name.Span()})
			}
		}
	}
}

func (c *checker) typeFromRef(ref ast.TypeRef) types.Type {
	switch r := ref.(type) {
	case *ast.NamedTypeRef:
		return c.namedType(r)
	case *ast.RecordTypeRef:
		fields := make([]types.FieldType, 0, len(r.Fields))
		seen := make(map[string]bool, len(r.Fields))
		for _, f := range r.Fields {
			if seen[f.Name.Name] {
				c.failf(f.Name, "duplicate record field %s", f.Name.Name)
			}
			seen[f.Name.Name] = true
			fields = append(fields, types.FieldType{Name: f.Name.Name, Type: c.typeFromRef(f.Type)})
		}
		return types.NewRecord(fields)
	case *ast.FunctionTypeRef:
		params := make([]types.Type, len(r.Params))
		for i, p := range r.Params {
			params[i] = c.typeFromRef(p)
		}
		return types.Func(c.typeFromRef(r.Return), params...)
	}
	c.failf(ref, "unsupported type reference")
	return nil
}

func (c *checker) namedType(r *ast.NamedTypeRef) types.Type {
	arity := func(n int) {
		if len(r.Args) != n {
			c.fail(&TypeError{
				Message: fmt.Sprintf("type %s takes %d argument(s), found %d", r.Name, n, len(r.Args)),
				Primary: r.Span(),
			})
		}
	}
	switch r.Name {
	case "Number":
		arity(0)
		return types.Number
	case "Text":
		arity(0)
		return types.Text
	case "Atom":
		arity(0)
		return types.Atom
	case "List":
		arity(1)
		return types.List(c.typeFromRef(r.Args[0]))
	}
	def, ok := c.registry.Lookup(r.Name)
	if !ok {
		c.failf(r, "unknown type %s", r.Name)
	}
	arity(len(def.Params))
	args := make([]types.Type, len(r.Args))
	for i, a := range r.Args {
		args[i] = c.typeFromRef(a)
	}
	return types.SumType{SumName: def.Name, Args: args}
}
