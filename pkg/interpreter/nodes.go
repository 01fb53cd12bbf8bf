package interpreter

import (
	"github.com/Airsequel/AirScript/pkg/prelude"
	"github.com/Airsequel/AirScript/pkg/runtime"
)

// node is a compiled expression. Every eval is one reduction step.
type node interface {
	eval(m *machine, fr *frame) (runtime.Value, error)
}

type constNode struct {
	value runtime.Value
}

func (n *constNode) eval(m *machine, _ *frame) (runtime.Value, error) {
	if err := m.step(); err != nil {
		return nil, err
	}
	return n.value, nil
}

type localNode struct {
	slot int
}

func (n *localNode) eval(m *machine, fr *frame) (runtime.Value, error) {
	if err := m.step(); err != nil {
		return nil, err
	}
	return fr.slots[n.slot], nil
}

type captureNode struct {
	index int
}

func (n *captureNode) eval(m *machine, fr *frame) (runtime.Value, error) {
	if err := m.step(); err != nil {
		return nil, err
	}
	return fr.captures[n.index], nil
}

// captureSource says where a new closure finds one captured value in the
// frame that creates it.
type captureSource struct {
	local bool
	index int
}

type lambdaCode struct {
	arity    int
	slots    int
	captures []captureSource
	body     node
}

type lambdaNode struct {
	code *lambdaCode
}

func (n *lambdaNode) eval(m *machine, fr *frame) (runtime.Value, error) {
	if err := m.step(); err != nil {
		return nil, err
	}
	if err := m.Alloc(runtime.ClosureFootprint(len(n.code.captures))); err != nil {
		return nil, err
	}
	captures := make([]runtime.Value, len(n.code.captures))
	for i, src := range n.code.captures {
		if src.local {
			captures[i] = fr.slots[src.index]
		} else {
			captures[i] = fr.captures[src.index]
		}
	}
	return &Closure{code: n.code, captures: captures}, nil
}

func evalAll(m *machine, fr *frame, nodes []node) ([]runtime.Value, error) {
	out := make([]runtime.Value, len(nodes))
	for i, n := range nodes {
		v, err := n.eval(m, fr)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

type callNode struct {
	callee node
	args   []node
}

func (n *callNode) eval(m *machine, fr *frame) (runtime.Value, error) {
	if err := m.step(); err != nil {
		return nil, err
	}
	callee, err := n.callee.eval(m, fr)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(runtime.Function)
	if !ok {
		return nil, violation("call of a %s value", callee.Kind())
	}
	args, err := evalAll(m, fr, n.args)
	if err != nil {
		return nil, err
	}
	return m.apply(fn, args)
}

// preludeCallNode calls a statically known prelude entry without building a
// function value first.
type preludeCallNode struct {
	entry *prelude.Entry
	args  []node
}

func (n *preludeCallNode) eval(m *machine, fr *frame) (runtime.Value, error) {
	if err := m.step(); err != nil {
		return nil, err
	}
	args, err := evalAll(m, fr, n.args)
	if err != nil {
		return nil, err
	}
	return m.callPrelude(n.entry, args)
}

type constructorNode struct {
	tag     string
	payload node
}

func (n *constructorNode) eval(m *machine, fr *frame) (runtime.Value, error) {
	if err := m.step(); err != nil {
		return nil, err
	}
	if n.payload == nil {
		return runtime.VariantValue{Tag: n.tag}, nil
	}
	payload, err := n.payload.eval(m, fr)
	if err != nil {
		return nil, err
	}
	if err := m.Alloc(runtime.VariantFootprint); err != nil {
		return nil, err
	}
	return runtime.VariantValue{Tag: n.tag, Payload: payload}, nil
}

type listNode struct {
	elements []node
}

func (n *listNode) eval(m *machine, fr *frame) (runtime.Value, error) {
	if err := m.step(); err != nil {
		return nil, err
	}
	if err := m.Alloc(runtime.ListFootprint(len(n.elements))); err != nil {
		return nil, err
	}
	elements, err := evalAll(m, fr, n.elements)
	if err != nil {
		return nil, err
	}
	return runtime.NewList(elements), nil
}

type recordNode struct {
	names  []string
	values []node
}

func (n *recordNode) eval(m *machine, fr *frame) (runtime.Value, error) {
	if err := m.step(); err != nil {
		return nil, err
	}
	if err := m.Alloc(runtime.RecordFootprint(len(n.names))); err != nil {
		return nil, err
	}
	values, err := evalAll(m, fr, n.values)
	if err != nil {
		return nil, err
	}
	entries := make([]runtime.RecordEntry, len(values))
	for i, v := range values {
		entries[i] = runtime.RecordEntry{Name: n.names[i], Value: v}
	}
	return runtime.NewRecord(entries), nil
}

type fieldNode struct {
	target node
	field  string
}

func (n *fieldNode) eval(m *machine, fr *frame) (runtime.Value, error) {
	if err := m.step(); err != nil {
		return nil, err
	}
	target, err := n.target.eval(m, fr)
	if err != nil {
		return nil, err
	}
	record, ok := target.(*runtime.RecordValue)
	if !ok {
		return nil, violation("field %s of a %s value", n.field, target.Kind())
	}
	v, ok := record.Get(n.field)
	if !ok {
		return nil, violation("record has no field %s", n.field)
	}
	return v, nil
}

type assignment struct {
	slot  int
	value node
}

// blockNode evaluates its bindings in dependency order, then the result.
type blockNode struct {
	bindings []assignment
	result   node
}

func (n *blockNode) eval(m *machine, fr *frame) (runtime.Value, error) {
	if err := m.step(); err != nil {
		return nil, err
	}
	for _, b := range n.bindings {
		v, err := b.value.eval(m, fr)
		if err != nil {
			return nil, err
		}
		fr.slots[b.slot] = v
	}
	return n.result.eval(m, fr)
}

type clause struct {
	pattern pattern
	body    node
}

// matchNode tries clauses top to bottom. Exhaustiveness was proven before
// compilation, so falling through is a contract violation.
type matchNode struct {
	subject node
	clauses []clause
}

func (n *matchNode) eval(m *machine, fr *frame) (runtime.Value, error) {
	if err := m.step(); err != nil {
		return nil, err
	}
	subject, err := n.subject.eval(m, fr)
	if err != nil {
		return nil, err
	}
	for _, c := range n.clauses {
		if c.pattern.bind(subject, fr) {
			return c.body.eval(m, fr)
		}
	}
	return nil, violation("no clause matched %s", runtime.Format(subject))
}

type propagateNode struct {
	value node
}

func (n *propagateNode) eval(m *machine, fr *frame) (runtime.Value, error) {
	if err := m.step(); err != nil {
		return nil, err
	}
	v, err := n.value.eval(m, fr)
	if err != nil {
		return nil, err
	}
	result, ok := v.(runtime.VariantValue)
	if !ok {
		return nil, violation("? applied to a %s value", v.Kind())
	}
	switch result.Tag {
	case "Ok":
		return result.Payload, nil
	case "Error":
		return nil, &stopSignal{message: textOf(result.Payload)}
	}
	return nil, violation("? applied to %s", result.Tag)
}

type stopNode struct {
	message node
}

func (n *stopNode) eval(m *machine, fr *frame) (runtime.Value, error) {
	if err := m.step(); err != nil {
		return nil, err
	}
	v, err := n.message.eval(m, fr)
	if err != nil {
		return nil, err
	}
	return nil, &stopSignal{message: textOf(v)}
}

func textOf(v runtime.Value) string {
	if t, ok := v.(runtime.TextValue); ok {
		return t.Val
	}
	return runtime.Format(v)
}

// Patterns

type pattern interface {
	bind(v runtime.Value, fr *frame) bool
}

type wildcardPattern struct{}

func (wildcardPattern) bind(runtime.Value, *frame) bool { return true }

type binderPattern struct {
	slot int
}

func (p binderPattern) bind(v runtime.Value, fr *frame) bool {
	fr.slots[p.slot] = v
	return true
}

type literalPattern struct {
	value runtime.Value
}

func (p literalPattern) bind(v runtime.Value, _ *frame) bool {
	return runtime.Equal(p.value, v)
}

type constructorPattern struct {
	tag     string
	payload pattern
}

func (p constructorPattern) bind(v runtime.Value, fr *frame) bool {
	variant, ok := v.(runtime.VariantValue)
	if !ok || variant.Tag != p.tag {
		return false
	}
	if p.payload == nil {
		return true
	}
	return p.payload.bind(variant.Payload, fr)
}
