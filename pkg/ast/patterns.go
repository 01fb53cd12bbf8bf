package ast

// Patterns

type Pattern interface {
	Node
	patternNode()
}

type patternMarker struct{}

func (patternMarker) patternNode() {}

type WildcardPattern struct {
	nodeImpl
	patternMarker
}

func NewWildcardPattern() *WildcardPattern {
	return &WildcardPattern{nodeImpl: newNodeImpl(NodeWildcardPattern)}
}

type LiteralPattern struct {
	nodeImpl
	patternMarker

	Literal Literal `json:"literal"`
}

func NewLiteralPattern(literal Literal) *LiteralPattern {
	return &LiteralPattern{nodeImpl: newNodeImpl(NodeLiteralPattern), Literal: literal}
}

// ConstructorPattern matches one variant of a sum type. Payload is nil for
// payload-less variants and for the `Ok` shorthand of `Ok(_)`.
type ConstructorPattern struct {
	nodeImpl
	patternMarker

	Name    string  `json:"name"`
	Payload Pattern `json:"payload,omitempty"`
}

func NewConstructorPattern(name string, payload Pattern) *ConstructorPattern {
	return &ConstructorPattern{nodeImpl: newNodeImpl(NodeConstructorPatt), Name: name, Payload: payload}
}

// IsIrrefutable reports whether the pattern matches every value of its type.
func IsIrrefutable(p Pattern) bool {
	switch p.(type) {
	case *WildcardPattern, *Identifier:
		return true
	default:
		return false
	}
}
