package typechecker

import (
	"github.com/Airsequel/AirScript/pkg/ast"
)

// eliminateSugar returns a copy of script in which every pipe and every
// applied compose chain is a plain call.
//
//	x & f        f(x)
//	x & f(a, b)  f(x, a, b)
//	x & f@g      f(g(x))
//	f@g@h(x)     f(g(h(x)))
//	x & Ok       Ok(x)
func eliminateSugar(script *ast.Script) (*ast.Script, error) {
	var firstErr error
	out, _ := ast.Rewrite(script, func(node ast.Node) ast.Node {
		if firstErr != nil {
			return node
		}
		switch n := node.(type) {
		case *ast.Pipe:
			expr, err := pipeInto(n.Left, n.Right, n.Span())
			if err != nil {
				firstErr = err
				return node
			}
			return expr
		case *ast.Compose:
			if !n.Applied {
				// Only legal as a pipe target; the enclosing Pipe consumes it.
				return node
			}
			return composeCall(n.Functions, n.Arguments, n.Span())
		}
		return node
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out.(*ast.Script), nil
}

func pipeInto(left, right ast.Expression, span ast.Span) (ast.Expression, error) {
	switch r := right.(type) {
	case *ast.Call:
		args := make([]ast.Expression, 0, len(r.Arguments)+1)
		args = append(args, left)
		args = append(args, r.Arguments...)
		call := ast.NewCall(r.Callee, args)
		ast.SetSpan(call, span)
		return call, nil
	case *ast.Compose:
		return composeCall(r.Functions, []ast.Expression{left}, span), nil
	case *ast.TaggedConstructor:
		if r.Payload != nil {
			return nil, &TypeError{
				Message:   "cannot pipe into " + r.Name + "(...): the constructor already has a payload",
				Primary:   span,
				Secondary: r.Span(),
			}
		}
	}
	return apply(right, []ast.Expression{left}, span), nil
}

// composeCall applies the innermost function to args and feeds each result
// outward.
func composeCall(functions, args []ast.Expression, span ast.Span) ast.Expression {
	last := len(functions) - 1
	inner := apply(functions[last], args, span)
	for i := last - 1; i >= 0; i-- {
		inner = apply(functions[i], []ast.Expression{inner}, span)
	}
	return inner
}

// apply builds a call, or a constructor application when fn is a bare
// constructor given exactly one argument.
func apply(fn ast.Expression, args []ast.Expression, span ast.Span) ast.Expression {
	var out ast.Expression
	if ctor, ok := fn.(*ast.TaggedConstructor); ok && ctor.Payload == nil && len(args) == 1 {
		out = ast.NewTaggedConstructor(ctor.Name, args[0])
	} else {
		out = ast.NewCall(fn, args)
	}
	ast.SetSpan(out, span)
	return out
}
