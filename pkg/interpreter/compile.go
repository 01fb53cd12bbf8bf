package interpreter

import (
	"sort"

	"github.com/Airsequel/AirScript/pkg/ast"
	"github.com/Airsequel/AirScript/pkg/runtime"
	"github.com/Airsequel/AirScript/pkg/typechecker"
)

// funcScope allocates the slots of one function body (or of the script
// body) and records what its closures capture from enclosing functions.
type funcScope struct {
	parent       *funcScope
	slots        int
	captures     []captureSource
	captureIndex map[*variable]int
}

func newFuncScope(parent *funcScope) *funcScope {
	return &funcScope{parent: parent, captureIndex: make(map[*variable]int)}
}

func (fs *funcScope) allocate() *variable {
	v := &variable{owner: fs, slot: fs.slots}
	fs.slots++
	return v
}

// captureOf returns the capture index of v in fs, threading it through every
// function between v's owner and fs.
func (fs *funcScope) captureOf(v *variable) int {
	if idx, ok := fs.captureIndex[v]; ok {
		return idx
	}
	var src captureSource
	if v.owner == fs.parent {
		src = captureSource{local: true, index: v.slot}
	} else {
		src = captureSource{local: false, index: fs.parent.captureOf(v)}
	}
	idx := len(fs.captures)
	fs.captures = append(fs.captures, src)
	fs.captureIndex[v] = idx
	return idx
}

type variable struct {
	owner *funcScope
	slot  int
}

type lexical struct {
	parent *lexical
	names  map[string]*variable
}

func (l *lexical) lookup(name string) *variable {
	for cur := l; cur != nil; cur = cur.parent {
		if v, ok := cur.names[name]; ok {
			return v
		}
	}
	return nil
}

type compiler struct {
	typed *typechecker.TypedScript
	env   *runtime.Environment
	fn    *funcScope
	scope *lexical
	err   error
}

func (c *compiler) failf(format string, args ...any) node {
	if c.err == nil {
		c.err = violation(format, args...)
	}
	return &constNode{value: runtime.Null}
}

func (c *compiler) push() {
	c.scope = &lexical{parent: c.scope, names: make(map[string]*variable)}
}

func (c *compiler) pop() {
	c.scope = c.scope.parent
}

func (c *compiler) compileAll(exprs []ast.Expression) []node {
	out := make([]node, len(exprs))
	for i, e := range exprs {
		out[i] = c.compile(e)
	}
	return out
}

func (c *compiler) compile(expr ast.Expression) node {
	switch n := expr.(type) {
	case *ast.NumberLiteral:
		return &constNode{value: runtime.Number(n.Value)}
	case *ast.TextLiteral:
		return &constNode{value: runtime.Text(n.Value)}
	case *ast.AtomLiteral:
		return &constNode{value: runtime.AtomValue{Name: n.Name}}
	case *ast.Identifier:
		return c.compileIdentifier(n)
	case *ast.PreludeRef:
		return c.compileReference(n)
	case *ast.Call:
		if ref, ok := n.Callee.(*ast.PreludeRef); ok {
			if target, found := c.typed.Refs[ref]; found && !target.IsHost() {
				return &preludeCallNode{entry: target.Entry, args: c.compileAll(n.Arguments)}
			}
		}
		return &callNode{callee: c.compile(n.Callee), args: c.compileAll(n.Arguments)}
	case *ast.Lambda:
		return c.compileLambda(n)
	case *ast.Block:
		return c.compileBlock(n)
	case *ast.TaggedConstructor:
		out := &constructorNode{tag: n.Name}
		if n.Payload != nil {
			out.payload = c.compile(n.Payload)
		}
		return out
	case *ast.ListLiteral:
		return &listNode{elements: c.compileAll(n.Elements)}
	case *ast.RecordLiteral:
		out := &recordNode{names: make([]string, len(n.Fields)), values: make([]node, len(n.Fields))}
		for i, f := range n.Fields {
			out.names[i] = f.Name.Name
			out.values[i] = c.compile(f.Value)
		}
		return out
	case *ast.FieldAccess:
		return &fieldNode{target: c.compile(n.Target), field: n.Field.Name}
	case *ast.Match:
		return c.compileMatch(n)
	case *ast.Propagate:
		return &propagateNode{value: c.compile(n.Value)}
	case *ast.Stop:
		return &stopNode{message: c.compile(n.Message)}
	}
	return c.failf("cannot compile %s; the script must be typed and desugared first", expr.NodeType())
}

func (c *compiler) compileIdentifier(id *ast.Identifier) node {
	v := c.scope.lookup(id.Name)
	if v == nil {
		return c.failf("unresolved name %s", id.Name)
	}
	if v.owner == c.fn {
		return &localNode{slot: v.slot}
	}
	return &captureNode{index: c.fn.captureOf(v)}
}

// compileReference binds host values and prelude functions now; the unit
// only ever runs against this environment.
func (c *compiler) compileReference(ref *ast.PreludeRef) node {
	target, ok := c.typed.Refs[ref]
	if !ok {
		return c.failf("unresolved reference %s", ref.Qualified())
	}
	if target.IsHost() {
		value, found := c.env.Lookup(target.Host)
		if !found {
			return c.failf("host binding $%s is missing from the environment", target.Host)
		}
		return &constNode{value: value}
	}
	return &constNode{value: &PreludeFunction{Entry: target.Entry}}
}

func (c *compiler) compileLambda(lam *ast.Lambda) node {
	outerFn, outerScope := c.fn, c.scope
	c.fn = newFuncScope(outerFn)
	c.push()
	for _, p := range lam.Params {
		c.scope.names[p.Name] = c.fn.allocate()
	}
	body := c.compile(lam.Body)
	code := &lambdaCode{arity: len(lam.Params), slots: c.fn.slots, captures: c.fn.captures, body: body}
	c.fn, c.scope = outerFn, outerScope
	return &lambdaNode{code: code}
}

func (c *compiler) compileBlock(block *ast.Block) node {
	c.push()
	defer c.pop()
	for _, b := range block.Bindings {
		c.scope.names[b.Name.Name] = c.fn.allocate()
	}
	order, ok := c.typed.Order[block]
	if !ok || len(order) != len(block.Bindings) {
		return c.failf("block at %s has no evaluation order", block.Span())
	}
	out := &blockNode{bindings: make([]assignment, len(order))}
	for i, b := range order {
		out.bindings[i] = assignment{slot: c.scope.names[b.Name.Name].slot, value: c.compile(b.Value)}
	}
	out.result = c.compile(block.Result)
	return out
}

func (c *compiler) compileMatch(match *ast.Match) node {
	out := &matchNode{subject: c.compile(match.Subject), clauses: make([]clause, len(match.Clauses))}
	for i, cl := range match.Clauses {
		c.push()
		pat := c.compilePattern(cl.Pattern)
		out.clauses[i] = clause{pattern: pat, body: c.compile(cl.Body)}
		c.pop()
	}
	return out
}

func (c *compiler) compilePattern(p ast.Pattern) pattern {
	switch p := p.(type) {
	case *ast.WildcardPattern:
		return wildcardPattern{}
	case *ast.Identifier:
		v := c.fn.allocate()
		c.scope.names[p.Name] = v
		return binderPattern{slot: v.slot}
	case *ast.LiteralPattern:
		switch lit := p.Literal.(type) {
		case *ast.NumberLiteral:
			return literalPattern{value: runtime.Number(lit.Value)}
		case *ast.TextLiteral:
			return literalPattern{value: runtime.Text(lit.Value)}
		case *ast.AtomLiteral:
			return literalPattern{value: runtime.AtomValue{Name: lit.Name}}
		}
	case *ast.ConstructorPattern:
		out := constructorPattern{tag: p.Name}
		if p.Payload != nil {
			out.payload = c.compilePattern(p.Payload)
		}
		return out
	}
	c.failf("cannot compile pattern %s", p.NodeType())
	return wildcardPattern{}
}

// hostNames lists the environment names the script reads, sorted.
func hostNames(typed *typechecker.TypedScript) []string {
	seen := make(map[string]bool)
	for _, ref := range typed.Refs {
		if ref.IsHost() {
			seen[ref.Host] = true
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
