package typechecker

import (
	"fmt"

	"github.com/Airsequel/AirScript/pkg/ast"
	"github.com/Airsequel/AirScript/pkg/prelude"
	"github.com/Airsequel/AirScript/pkg/types"
)

// HostTypes maps host binding names (reachable as `$name`) to their types.
type HostTypes map[string]types.Scheme

// Infer checks script against the host bindings and returns the typed,
// sugar-free program. The error is a *TypeError or a *RecursionError.
func Infer(script *ast.Script, host HostTypes) (typed *TypedScript, err error) {
	if script == nil || script.Body == nil {
		return nil, fmt.Errorf("typechecker: script is nil")
	}
	plain, err := eliminateSugar(script)
	if err != nil {
		return nil, err
	}
	c := newChecker(host)
	defer func() {
		if r := recover(); r != nil {
			a, ok := r.(abort)
			if !ok {
				panic(r)
			}
			typed, err = nil, a.err
		}
	}()
	c.registerDeclarations(plain.Types)

	res := newResolver()
	res.block(plain.Body, nil)
	if res.err != nil {
		return nil, res.err
	}
	if cycle := res.findCycle(); cycle != nil {
		return nil, cycle
	}
	c.uses, c.binders, c.bindings = res.uses, res.binders, res.bindings
	for _, block := range res.blocks {
		c.order[block] = res.order(block)
	}

	result := c.inferScript(plain)
	for node, typ := range c.types {
		c.types[node] = types.Resolve(typ)
	}
	return &TypedScript{
		Script:   plain,
		Types:    c.types,
		Registry: c.registry,
		Order:    c.order,
		Refs:     c.refs,
		Schemes:  c.schemes,
		Result:   types.Resolve(result),
	}, nil
}

type fieldConstraint struct {
	record types.Type
	field  string
	result types.Type
	node   *ast.FieldAccess
}

type checker struct {
	registry *types.Registry
	host     HostTypes
	level    int
	nextID   int

	types   InferenceMap
	refs    map[*ast.PreludeRef]Reference
	schemes map[*ast.Binding]types.Scheme
	order   map[*ast.Block][]*ast.Binding
	pending []fieldConstraint

	uses     map[*ast.Identifier]*symbol
	binders  map[*ast.Identifier]*symbol
	bindings map[*ast.Binding]*symbol
}

func newChecker(host HostTypes) *checker {
	return &checker{
		registry: types.NewRegistry(),
		host:     host,
		level:    1,
		types:    make(InferenceMap),
		refs:     make(map[*ast.PreludeRef]Reference),
		schemes:  make(map[*ast.Binding]types.Scheme),
		order:    make(map[*ast.Block][]*ast.Binding),
	}
}

func (c *checker) fresh() *types.TypeVariable {
	return c.freshAt(c.level)
}

func (c *checker) freshAt(level int) *types.TypeVariable {
	c.nextID++
	return &types.TypeVariable{ID: c.nextID, Level: level}
}

func (c *checker) instantiate(s types.Scheme) types.Type {
	if len(s.Params) == 0 {
		return s.Body
	}
	bindings := make(map[string]types.Type, len(s.Params))
	for _, p := range s.Params {
		bindings[p] = c.fresh()
	}
	return types.Substitute(s.Body, bindings)
}

// generalize quantifies the variables of t created at a deeper level. Those
// still waiting on a field constraint stay monomorphic.
func (c *checker) generalize(t types.Type) types.Scheme {
	blocked := c.pendingVariables()
	names := make(map[*types.TypeVariable]string)
	var params []string
	for _, v := range types.FreeVariables(t) {
		if v.Level <= c.level {
			continue
		}
		if blocked[v] {
			v.Level = c.level
			continue
		}
		name := fmt.Sprintf("t%d", v.ID)
		names[v] = name
		params = append(params, name)
	}
	if len(params) == 0 {
		return types.Mono(t)
	}
	body := types.Map(types.Resolve(t), func(inner types.Type) (types.Type, bool) {
		if v, ok := inner.(*types.TypeVariable); ok {
			if name, found := names[v]; found {
				return types.Param(name), true
			}
		}
		return nil, false
	})
	return types.Scheme{Params: params, Body: body}
}

func (c *checker) pendingVariables() map[*types.TypeVariable]bool {
	out := make(map[*types.TypeVariable]bool)
	for _, fc := range c.pending {
		for _, v := range types.FreeVariables(fc.record) {
			out[v] = true
		}
		for _, v := range types.FreeVariables(fc.result) {
			out[v] = true
		}
	}
	return out
}

// unifyAt unifies expected with found and fails with a located TypeError.
func (c *checker) unifyAt(expected, found types.Type, at, related ast.Node, context string) {
	err := unify(expected, found)
	if err == nil {
		return
	}
	exp, got := types.Resolve(expected), types.Resolve(found)
	msg := fmt.Sprintf("expected %s, found %s", exp.Name(), got.Name())
	if context != "" {
		msg = context + ": " + msg
	}
	if detail := err.message; detail != fmt.Sprintf("%s is not compatible with %s", exp.Name(), got.Name()) {
		msg += " (" + detail + ")"
	}
	c.fail(&TypeError{Message: msg, Expected: exp, Found: got, Primary: spanOf(at), Secondary: spanOf(related)})
}

// expect infers expr, letting a lambda borrow parameter types from
// expected, and unifies the result with expected.
func (c *checker) expect(expected types.Type, expr ast.Expression, context string) {
	found := c.inferExpr(expr, expected)
	c.unifyAt(expected, found, expr, nil, context)
}

func (c *checker) infer(expr ast.Expression) types.Type {
	return c.inferExpr(expr, nil)
}

func (c *checker) inferScript(script *ast.Script) types.Type {
	t := c.inferBlock(script.Body)
	c.unifyAt(types.Result(c.fresh()), t, script.Body.Result, nil,
		"a script must end with a Result value (Ok or Error)")
	c.solvePending()
	c.closePending()
	return t
}

// closePending settles the field accesses nothing else constrained, such as
// those in an arm whose subject type stayed open. Each record variable
// becomes the record holding exactly the fields read from it.
func (c *checker) closePending() {
	var order []*types.TypeVariable
	fields := make(map[*types.TypeVariable][]types.FieldType)
	first := make(map[*types.TypeVariable]*ast.FieldAccess)
	for _, fc := range c.pending {
		v, ok := types.Prune(fc.record).(*types.TypeVariable)
		if !ok {
			continue
		}
		if _, seen := first[v]; !seen {
			order = append(order, v)
			first[v] = fc.node
		}
		if _, dup := types.NewRecord(fields[v]).Field(fc.field); !dup {
			fields[v] = append(fields[v], types.FieldType{Name: fc.field, Type: fc.result})
		}
	}
	for _, v := range order {
		if _, still := types.Prune(v).(*types.TypeVariable); !still {
			continue
		}
		c.unifyAt(types.NewRecord(fields[v]), v, first[v], nil, "field access")
	}
	c.solvePending()
}

func (c *checker) inferExpr(expr ast.Expression, expected types.Type) types.Type {
	t := c.inferNode(expr, expected)
	c.types.set(expr, t)
	return t
}

func (c *checker) inferNode(expr ast.Expression, expected types.Type) types.Type {
	switch n := expr.(type) {
	case *ast.NumberLiteral:
		return types.Number
	case *ast.TextLiteral:
		return types.Text
	case *ast.AtomLiteral:
		return types.Atom
	case *ast.Identifier:
		return c.inferIdentifier(n)
	case *ast.PreludeRef:
		return c.inferReference(n)
	case *ast.Call:
		return c.inferCall(n)
	case *ast.Lambda:
		return c.inferLambda(n, expected)
	case *ast.Block:
		return c.inferBlock(n)
	case *ast.TaggedConstructor:
		return c.inferConstructor(n)
	case *ast.ListLiteral:
		elem := types.Type(c.fresh())
		for _, el := range n.Elements {
			c.expect(elem, el, "list elements must have the same type")
		}
		return types.List(elem)
	case *ast.RecordLiteral:
		fields := make([]types.FieldType, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = types.FieldType{Name: f.Name.Name, Type: c.infer(f.Value)}
		}
		return types.NewRecord(fields)
	case *ast.FieldAccess:
		target := c.infer(n.Target)
		result := c.fresh()
		c.pending = append(c.pending, fieldConstraint{record: target, field: n.Field.Name, result: result, node: n})
		c.solvePending()
		return result
	case *ast.WhenIs:
		return c.inferWhen(n)
	case *ast.Propagate:
		inner := c.fresh()
		found := c.infer(n.Value)
		c.unifyAt(types.Result(inner), found, n.Value, n, "? needs a Result value")
		return inner
	case *ast.Stop:
		c.expect(types.Text, n.Message, "stop needs a Text message")
		return c.fresh()
	case *ast.Pipe, *ast.Compose:
		c.failf(n, "a compose chain must be applied to an argument or used as a pipe target")
	}
	c.failf(expr, "unsupported expression %s", expr.NodeType())
	return nil
}

func (c *checker) inferIdentifier(id *ast.Identifier) types.Type {
	sym, ok := c.uses[id]
	if !ok {
		c.failf(id, "unknown name %s", id.Name)
	}
	if sym.scheme.Body == nil {
		c.failf(id, "%s is used before its definition could be typed", id.Name)
	}
	return c.instantiate(sym.scheme)
}

// inferReference resolves `$name` to a prelude global, then to a host
// binding, and `Namespace.name` to a prelude entry.
func (c *checker) inferReference(ref *ast.PreludeRef) types.Type {
	if ref.IsDollar() {
		if entry, ok := prelude.Global(ref.Name); ok {
			c.refs[ref] = Reference{Entry: entry}
			return c.instantiate(entry.Signature)
		}
		if scheme, ok := c.host[ref.Name]; ok {
			c.refs[ref] = Reference{Host: ref.Name}
			return c.instantiate(scheme)
		}
		c.failf(ref, "unknown name $%s: not a prelude global or host binding", ref.Name)
	}
	entry, ok := prelude.Lookup(ref.Namespace, ref.Name)
	if !ok {
		if !prelude.IsNamespace(ref.Namespace) && ref.Namespace != prelude.OperatorNamespace {
			c.failf(ref, "unknown namespace %s", ref.Namespace)
		}
		c.failf(ref, "%s has no function %s", ref.Namespace, ref.Name)
	}
	c.refs[ref] = Reference{Entry: entry}
	return c.instantiate(entry.Signature)
}

// inferCall checks that the call saturates the callee. Arguments that are
// not lambdas go first so lambdas see parameter types already pinned down
// by their siblings.
func (c *checker) inferCall(call *ast.Call) types.Type {
	calleeType := types.Prune(c.infer(call.Callee))
	if v, ok := calleeType.(*types.TypeVariable); ok {
		params := make([]types.Type, len(call.Arguments))
		for i, arg := range call.Arguments {
			params[i] = c.infer(arg)
		}
		ret := c.fresh()
		c.unifyAt(v, types.FunctionType{Params: params, Return: ret}, call, call.Callee, "")
		return ret
	}
	fn, ok := calleeType.(types.FunctionType)
	if !ok {
		c.fail(&TypeError{
			Message: fmt.Sprintf("cannot call a value of type %s", types.Resolve(calleeType).Name()),
			Found:   types.Resolve(calleeType),
			Primary: call.Callee.Span(),
		})
	}
	if fn.Arity() != len(call.Arguments) {
		c.fail(&TypeError{
			Message: fmt.Sprintf("arity mismatch: %s expects %d argument(s) but was called with %d",
				describeCallee(call.Callee), fn.Arity(), len(call.Arguments)),
			Expected:  types.Resolve(fn),
			Primary:   call.Span(),
			Secondary: call.Callee.Span(),
		})
	}
	for i, arg := range call.Arguments {
		if _, isLambda := arg.(*ast.Lambda); !isLambda {
			c.expect(fn.Params[i], arg, fmt.Sprintf("argument %d of %s", i+1, describeCallee(call.Callee)))
		}
	}
	for i, arg := range call.Arguments {
		if _, isLambda := arg.(*ast.Lambda); isLambda {
			c.expect(fn.Params[i], arg, fmt.Sprintf("argument %d of %s", i+1, describeCallee(call.Callee)))
		}
	}
	return fn.Return
}

func describeCallee(callee ast.Expression) string {
	switch n := callee.(type) {
	case *ast.Identifier:
		return n.Name
	case *ast.PreludeRef:
		if n.Namespace == prelude.OperatorNamespace {
			return "operator " + n.Name
		}
		return n.Qualified()
	}
	return "the function"
}

func (c *checker) inferLambda(lam *ast.Lambda, expected types.Type) types.Type {
	var hint []types.Type
	if fn, ok := types.Prune(expected).(types.FunctionType); ok && fn.Arity() == len(lam.Params) {
		hint = fn.Params
	}
	params := make([]types.Type, len(lam.Params))
	for i, p := range lam.Params {
		if hint != nil {
			params[i] = hint[i]
		} else {
			params[i] = c.fresh()
		}
		c.binders[p].scheme = types.Mono(params[i])
		c.types.set(p, params[i])
	}
	return types.FunctionType{Params: params, Return: c.infer(lam.Body)}
}

func (c *checker) inferBlock(block *ast.Block) types.Type {
	for _, b := range c.order[block] {
		c.level++
		t := c.infer(b.Value)
		c.level--
		c.solvePending()
		scheme := c.generalize(t)
		c.bindings[b].scheme = scheme
		c.schemes[b] = scheme
		c.types.set(b, t)
	}
	return c.infer(block.Result)
}

func (c *checker) solvePending() {
	for progress := true; progress; {
		progress = false
		var waiting []fieldConstraint
		for _, fc := range c.pending {
			switch target := types.Prune(fc.record).(type) {
			case *types.TypeVariable:
				waiting = append(waiting, fc)
			case types.RecordType:
				fieldType, ok := target.Field(fc.field)
				if !ok {
					c.fail(&TypeError{
						Message: fmt.Sprintf("record %s has no field %s", types.Resolve(target).Name(), fc.field),
						Found:   types.Resolve(target),
						Primary: fc.node.Field.Span(),
					})
				}
				c.unifyAt(fc.result, fieldType, fc.node, nil, "")
				progress = true
			default:
				c.fail(&TypeError{
					Message: fmt.Sprintf("cannot access field %s on a value of type %s", fc.field, types.Resolve(target).Name()),
					Found:   types.Resolve(target),
					Primary: fc.node.Span(),
				})
			}
		}
		c.pending = waiting
	}
}

// instantiateVariant returns a fresh instance of the variant's sum and the
// matching payload type (nil when the variant has none).
func (c *checker) instantiateVariant(variant *types.VariantDef) (types.SumType, types.Type) {
	args := make([]types.Type, len(variant.Sum.Params))
	for i := range args {
		args[i] = c.fresh()
	}
	if len(args) == 0 {
		args = nil
	}
	return types.SumType{SumName: variant.Sum.Name, Args: args}, types.PayloadType(variant, args)
}

// constructor finds a registered constructor or adds it to the ad-hoc union.
// Ad-hoc payload types are monomorphic across the script.
func (c *checker) constructor(name string, withPayload bool) *types.VariantDef {
	if variant, ok := c.registry.Constructor(name); ok {
		return variant
	}
	var payload types.Type
	if withPayload {
		payload = c.freshAt(0)
	}
	return c.registry.RegisterAdHoc(name, payload)
}

func (c *checker) inferConstructor(n *ast.TaggedConstructor) types.Type {
	variant := c.constructor(n.Name, n.Payload != nil)
	sum, payload := c.instantiateVariant(variant)
	switch {
	case variant.HasPayload && n.Payload == nil:
		c.failf(n, "constructor %s needs a payload", n.Name)
	case !variant.HasPayload && n.Payload != nil:
		c.failf(n, "constructor %s takes no payload", n.Name)
	}
	if n.Payload != nil {
		c.expect(payload, n.Payload, "payload of "+n.Name)
	}
	return sum
}

func (c *checker) inferWhen(w *ast.WhenIs) types.Type {
	subject := c.infer(w.Subject)
	result := types.Type(c.fresh())
	for i, arm := range w.Arms {
		c.checkPattern(arm.Pattern, subject)
		found := c.infer(arm.Body)
		var related ast.Node
		if i > 0 {
			related = w.Arms[0].Body
		}
		c.unifyAt(result, found, arm.Body, related, "when arms must have the same type")
	}
	return result
}

func (c *checker) checkPattern(p ast.Pattern, subject types.Type) {
	c.types.set(p, subject)
	switch p := p.(type) {
	case *ast.WildcardPattern:
	case *ast.Identifier:
		c.binders[p].scheme = types.Mono(subject)
	case *ast.LiteralPattern:
		var lit types.Type
		switch p.Literal.(type) {
		case *ast.NumberLiteral:
			lit = types.Number
		case *ast.TextLiteral:
			lit = types.Text
		default:
			lit = types.Atom
		}
		c.types.set(p.Literal, lit)
		c.unifyAt(subject, lit, p, nil, "pattern does not fit the matched value")
	case *ast.ConstructorPattern:
		variant := c.constructor(p.Name, p.Payload != nil)
		sum, payload := c.instantiateVariant(variant)
		c.unifyAt(subject, sum, p, nil, "pattern does not fit the matched value")
		if p.Payload != nil {
			if !variant.HasPayload {
				c.failf(p, "constructor %s takes no payload", p.Name)
			}
			c.checkPattern(p.Payload, payload)
		}
	}
}
