// Package match turns `when ... is` expressions into ordered Match nodes and
// proves every one of them exhaustive against the registered sum types.
package match

import (
	"fmt"
	"strings"

	"github.com/Airsequel/AirScript/pkg/ast"
	"github.com/Airsequel/AirScript/pkg/typechecker"
	"github.com/Airsequel/AirScript/pkg/types"
)

// NonExhaustiveMatchError lists the shapes a `when` does not cover, in
// variant registration order. Nested gaps read like `Ok(Null)`; `_` stands
// for values no finite set of patterns can cover.
type NonExhaustiveMatchError struct {
	Missing []string
	Span    ast.Span
}

func (e *NonExhaustiveMatchError) Error() string {
	return fmt.Sprintf("non-exhaustive match at %s: missing %s", e.Span, strings.Join(e.Missing, ", "))
}

// Desugar checks every `when` in typed for exhaustiveness and returns a copy
// of the program in which each one is a Match. typed is not modified.
func Desugar(typed *typechecker.TypedScript) (*typechecker.TypedScript, error) {
	if typed == nil || typed.Script == nil {
		return nil, fmt.Errorf("match: typed script is nil")
	}
	if err := Check(typed); err != nil {
		return nil, err
	}
	out, copies := ast.Rewrite(typed.Script, func(node ast.Node) ast.Node {
		when, ok := node.(*ast.WhenIs)
		if !ok {
			return node
		}
		clauses := make([]*ast.MatchClause, len(when.Arms))
		for i, arm := range when.Arms {
			clause := ast.NewMatchClause(arm.Pattern, arm.Body)
			ast.SetSpan(clause, arm.Span())
			clauses[i] = clause
		}
		return ast.NewMatch(when.Subject, clauses)
	})
	return typed.Rebase(out.(*ast.Script), copies), nil
}

// Check reports the first non-exhaustive `when` in source order.
func Check(typed *typechecker.TypedScript) error {
	var firstErr error
	ast.Inspect(typed.Script, func(node ast.Node) bool {
		if firstErr != nil {
			return false
		}
		when, ok := node.(*ast.WhenIs)
		if !ok {
			return true
		}
		subject, _ := typed.TypeOf(when.Subject)
		patterns := make([]ast.Pattern, len(when.Arms))
		for i, arm := range when.Arms {
			patterns[i] = arm.Pattern
		}
		if missing := uncovered(typed.Registry, patterns, subject); len(missing) > 0 {
			firstErr = &NonExhaustiveMatchError{Missing: missing, Span: when.Span()}
			return false
		}
		return true
	})
	return firstErr
}

// uncovered returns the shapes of t that no pattern matches.
func uncovered(registry *types.Registry, patterns []ast.Pattern, t types.Type) []string {
	for _, p := range patterns {
		if ast.IsIrrefutable(p) {
			return nil
		}
	}
	sum, ok := types.Prune(t).(types.SumType)
	if !ok {
		return []string{"_"}
	}
	def, ok := registry.Lookup(sum.SumName)
	if !ok || def.Open {
		return []string{"_"}
	}
	covered := make(map[string]bool, len(def.Variants))
	payloads := make(map[string][]ast.Pattern)
	for _, p := range patterns {
		cp, ok := p.(*ast.ConstructorPattern)
		if !ok {
			continue
		}
		if cp.Payload == nil {
			covered[cp.Name] = true
			continue
		}
		payloads[cp.Name] = append(payloads[cp.Name], cp.Payload)
	}
	var out []string
	for _, name := range registry.Missing(def, covered) {
		variant, _ := def.Variant(name)
		sub, seen := payloads[name]
		if !seen {
			out = append(out, name)
			continue
		}
		for _, gap := range uncovered(registry, sub, types.PayloadType(variant, sum.Args)) {
			out = append(out, name+"("+gap+")")
		}
	}
	return out
}
