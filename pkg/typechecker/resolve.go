package typechecker

import (
	"fmt"

	"github.com/Airsequel/AirScript/pkg/ast"
	"github.com/Airsequel/AirScript/pkg/types"
)

type symbolKind int

const (
	symbolBinding symbolKind = iota
	symbolParam
	symbolPattern
)

// symbol is one user-introduced name. Bindings also carry the bindings their
// value refers to, which drives the recursion check and evaluation order.
type symbol struct {
	name    string
	kind    symbolKind
	decl    ast.Node
	index   int
	scheme  types.Scheme
	refs    []*symbol
	refSeen map[*symbol]bool
}

func (s *symbol) addRef(target *symbol) {
	if s.refSeen[target] {
		return
	}
	s.refSeen[target] = true
	s.refs = append(s.refs, target)
}

type scope struct {
	parent  *scope
	symbols map[string]*symbol
}

func (s *scope) lookup(name string) *symbol {
	for cur := s; cur != nil; cur = cur.parent {
		if sym, ok := cur.symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// resolver links every identifier to the symbol it names.
type resolver struct {
	uses     map[*ast.Identifier]*symbol
	binders  map[*ast.Identifier]*symbol
	bindings map[*ast.Binding]*symbol
	ordered  []*symbol
	// enclosing lists the bindings whose value is being walked, outermost
	// first. A reference counts for all of them.
	enclosing []*symbol
	blocks    []*ast.Block
	err       error
}

func newResolver() *resolver {
	return &resolver{
		uses:     make(map[*ast.Identifier]*symbol),
		binders:  make(map[*ast.Identifier]*symbol),
		bindings: make(map[*ast.Binding]*symbol),
	}
}

func (r *resolver) failf(node ast.Node, secondary ast.Node, format string, args ...any) {
	if r.err != nil {
		return
	}
	r.err = &TypeError{Message: fmt.Sprintf(format, args...), Primary: spanOf(node), Secondary: spanOf(secondary)}
}

func (r *resolver) expr(node ast.Node, sc *scope) {
	if r.err != nil || node == nil {
		return
	}
	switch n := node.(type) {
	case *ast.Identifier:
		sym := sc.lookup(n.Name)
		if sym == nil {
			r.failf(n, nil, "unknown name %s", n.Name)
			return
		}
		r.uses[n] = sym
		if sym.kind == symbolBinding {
			for _, outer := range r.enclosing {
				outer.addRef(sym)
			}
		}
	case *ast.Block:
		r.block(n, sc)
	case *ast.Lambda:
		inner := &scope{parent: sc, symbols: make(map[string]*symbol, len(n.Params))}
		for _, p := range n.Params {
			if prev, dup := inner.symbols[p.Name]; dup {
				r.failf(p, prev.decl, "duplicate parameter %s", p.Name)
				return
			}
			sym := &symbol{name: p.Name, kind: symbolParam, decl: p}
			inner.symbols[p.Name] = sym
			r.binders[p] = sym
		}
		r.expr(n.Body, inner)
	case *ast.WhenIs:
		r.expr(n.Subject, sc)
		for _, arm := range n.Arms {
			inner := &scope{parent: sc, symbols: make(map[string]*symbol)}
			r.pattern(arm.Pattern, inner)
			r.expr(arm.Body, inner)
		}
	case *ast.FieldAccess:
		r.expr(n.Target, sc)
	case *ast.RecordLiteral:
		for _, f := range n.Fields {
			r.expr(f.Value, sc)
		}
	default:
		for _, child := range ast.Children(node) {
			r.expr(child, sc)
		}
	}
}

func (r *resolver) pattern(p ast.Pattern, sc *scope) {
	switch p := p.(type) {
	case *ast.Identifier:
		sym := &symbol{name: p.Name, kind: symbolPattern, decl: p}
		sc.symbols[p.Name] = sym
		r.binders[p] = sym
	case *ast.ConstructorPattern:
		if p.Payload != nil {
			r.pattern(p.Payload, sc)
		}
	}
}

// block declares every binding before walking any value, so bindings in a
// block see each other regardless of source order.
func (r *resolver) block(b *ast.Block, parent *scope) {
	r.blocks = append(r.blocks, b)
	sc := &scope{parent: parent, symbols: make(map[string]*symbol, len(b.Bindings))}
	for _, binding := range b.Bindings {
		if prev, dup := sc.symbols[binding.Name.Name]; dup {
			r.failf(binding.Name, prev.decl, "%s is already bound in this block", binding.Name.Name)
			return
		}
		sym := &symbol{
			name:    binding.Name.Name,
			kind:    symbolBinding,
			decl:    binding,
			index:   len(r.ordered),
			refSeen: make(map[*symbol]bool),
		}
		sc.symbols[sym.name] = sym
		r.bindings[binding] = sym
		r.binders[binding.Name] = sym
		r.ordered = append(r.ordered, sym)
	}
	for _, binding := range b.Bindings {
		sym := r.bindings[binding]
		r.enclosing = append(r.enclosing, sym)
		r.expr(binding.Value, sc)
		r.enclosing = r.enclosing[:len(r.enclosing)-1]
	}
	r.expr(b.Result, sc)
}

// findCycle returns the first cycle reachable in declaration order, or nil.
func (r *resolver) findCycle() *RecursionError {
	const (
		white = iota
		grey
		black
	)
	color := make(map[*symbol]int, len(r.ordered))
	var stack []*symbol
	var found *RecursionError
	var visit func(sym *symbol)
	visit = func(sym *symbol) {
		color[sym] = grey
		stack = append(stack, sym)
		for _, next := range sym.refs {
			if found != nil {
				return
			}
			switch color[next] {
			case grey:
				start := len(stack) - 1
				for stack[start] != next {
					start--
				}
				cycle := make([]string, 0, len(stack)-start+1)
				for _, s := range stack[start:] {
					cycle = append(cycle, s.name)
				}
				cycle = append(cycle, next.name)
				found = &RecursionError{Cycle: cycle, Span: next.decl.(*ast.Binding).Name.Span()}
				return
			case white:
				visit(next)
			}
		}
		stack = stack[:len(stack)-1]
		color[sym] = black
	}
	for _, sym := range r.ordered {
		if found != nil {
			break
		}
		if color[sym] == white {
			visit(sym)
		}
	}
	return found
}

// order sorts a block's bindings so that each comes after every sibling it
// refers to. Ties keep source order. The graph must be acyclic.
func (r *resolver) order(b *ast.Block) []*ast.Binding {
	n := len(b.Bindings)
	position := make(map[*symbol]int, n)
	for i, binding := range b.Bindings {
		position[r.bindings[binding]] = i
	}
	pending := make([]int, n)
	dependents := make([][]int, n)
	for i, binding := range b.Bindings {
		for _, ref := range r.bindings[binding].refs {
			if j, sibling := position[ref]; sibling {
				pending[i]++
				dependents[j] = append(dependents[j], i)
			}
		}
	}
	out := make([]*ast.Binding, 0, n)
	done := make([]bool, n)
	for len(out) < n {
		next := -1
		for i := 0; i < n; i++ {
			if !done[i] && pending[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			// Unreachable after findCycle; keep what is left in source order.
			for i := 0; i < n; i++ {
				if !done[i] {
					out = append(out, b.Bindings[i])
				}
			}
			break
		}
		done[next] = true
		out = append(out, b.Bindings[next])
		for _, d := range dependents[next] {
			pending[d]--
		}
	}
	return out
}
