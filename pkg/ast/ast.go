package ast

type NodeType string

const (
	NodeScript            NodeType = "Script"
	NodeTypeDeclaration   NodeType = "TypeDeclaration"
	NodeVariantDecl       NodeType = "VariantDeclaration"
	NodeBinding           NodeType = "Binding"
	NodeBlock             NodeType = "Block"
	NodeNumberLiteral     NodeType = "NumberLiteral"
	NodeTextLiteral       NodeType = "TextLiteral"
	NodeAtomLiteral       NodeType = "AtomLiteral"
	NodeIdentifier        NodeType = "Identifier"
	NodePreludeRef        NodeType = "PreludeRef"
	NodeCall              NodeType = "Call"
	NodePipe              NodeType = "Pipe"
	NodeCompose           NodeType = "Compose"
	NodeWhenIs            NodeType = "WhenIs"
	NodeArm               NodeType = "Arm"
	NodeMatch             NodeType = "Match"
	NodeMatchClause       NodeType = "MatchClause"
	NodeTaggedConstructor NodeType = "TaggedConstructor"
	NodeLambda            NodeType = "Lambda"
	NodeListLiteral       NodeType = "ListLiteral"
	NodeRecordField       NodeType = "RecordField"
	NodeRecordLiteral     NodeType = "RecordLiteral"
	NodeFieldAccess       NodeType = "FieldAccess"
	NodePropagate         NodeType = "Propagate"
	NodeStop              NodeType = "Stop"
	NodeWildcardPattern   NodeType = "WildcardPattern"
	NodeLiteralPattern    NodeType = "LiteralPattern"
	NodeConstructorPatt   NodeType = "ConstructorPattern"
	NodeNamedTypeRef      NodeType = "NamedTypeRef"
	NodeRecordTypeRef     NodeType = "RecordTypeRef"
	NodeFieldTypeRef      NodeType = "FieldTypeRef"
	NodeFunctionTypeRef   NodeType = "FunctionTypeRef"
)

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

// Position is a 1-based line/column pair plus the 0-based rune offset.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (nodeImpl) isNode()              {}
func (n *nodeImpl) setSpan(span Span) { n.span = span }

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

type Literal interface {
	Expression
	literalNode()
}

type literalMarker struct{}

func (literalMarker) literalNode() {}

// Script is the root of one parsed source file. Types holds the sum-type
// registrations in source order; Body holds the bindings and the terminal
// expression.
type Script struct {
	nodeImpl

	Types []*TypeDeclaration `json:"types"`
	Body  *Block             `json:"body"`
}

func NewScript(types []*TypeDeclaration, body *Block) *Script {
	if types == nil {
		types = make([]*TypeDeclaration, 0)
	}
	return &Script{nodeImpl: newNodeImpl(NodeScript), Types: types, Body: body}
}

type TypeDeclaration struct {
	nodeImpl
	statementMarker

	Name     *Identifier           `json:"name"`
	Variants []*VariantDeclaration `json:"variants"`
}

func NewTypeDeclaration(name *Identifier, variants []*VariantDeclaration) *TypeDeclaration {
	return &TypeDeclaration{nodeImpl: newNodeImpl(NodeTypeDeclaration), Name: name, Variants: variants}
}

type VariantDeclaration struct {
	nodeImpl

	Name    *Identifier `json:"name"`
	Payload TypeRef     `json:"payload,omitempty"`
}

func NewVariantDeclaration(name *Identifier, payload TypeRef) *VariantDeclaration {
	return &VariantDeclaration{nodeImpl: newNodeImpl(NodeVariantDecl), Name: name, Payload: payload}
}

type Binding struct {
	nodeImpl
	statementMarker

	Name  *Identifier `json:"name"`
	Value Expression  `json:"value"`
}

func NewBinding(name *Identifier, value Expression) *Binding {
	return &Binding{nodeImpl: newNodeImpl(NodeBinding), Name: name, Value: value}
}

// Block is a group of mutually visible bindings followed by a result
// expression. Binding order in the source does not determine evaluation
// order; the checker orders them by their references.
type Block struct {
	nodeImpl
	expressionMarker

	Bindings []*Binding `json:"bindings"`
	Result   Expression `json:"result"`
}

func NewBlock(bindings []*Binding, result Expression) *Block {
	if bindings == nil {
		bindings = make([]*Binding, 0)
	}
	return &Block{nodeImpl: newNodeImpl(NodeBlock), Bindings: bindings, Result: result}
}

// Literals

type NumberLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value float64 `json:"value"`
	Raw   string  `json:"raw"`
}

func NewNumberLiteral(value float64, raw string) *NumberLiteral {
	return &NumberLiteral{nodeImpl: newNodeImpl(NodeNumberLiteral), Value: value, Raw: raw}
}

type TextLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value string `json:"value"`
}

func NewTextLiteral(value string) *TextLiteral {
	return &TextLiteral{nodeImpl: newNodeImpl(NodeTextLiteral), Value: value}
}

type AtomLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Name string `json:"name"`
}

func NewAtomLiteral(name string) *AtomLiteral {
	return &AtomLiteral{nodeImpl: newNodeImpl(NodeAtomLiteral), Name: name}
}

// Identifier names a user binding or lambda parameter. It doubles as the
// binder pattern inside when/is arms.
type Identifier struct {
	nodeImpl
	expressionMarker
	patternMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

// PreludeRef is a `$name` reference (Namespace empty) or a qualified
// `Namespace.name` reference. Resolution happens in the checker.
type PreludeRef struct {
	nodeImpl
	expressionMarker

	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name"`
}

func NewPreludeRef(namespace, name string) *PreludeRef {
	return &PreludeRef{nodeImpl: newNodeImpl(NodePreludeRef), Namespace: namespace, Name: name}
}

// IsDollar reports whether the reference was written as `$name`.
func (r *PreludeRef) IsDollar() bool { return r.Namespace == "" }

// Qualified renders the reference the way it appears in source.
func (r *PreludeRef) Qualified() string {
	if r.Namespace == "" {
		return "$" + r.Name
	}
	return r.Namespace + "." + r.Name
}

type Call struct {
	nodeImpl
	expressionMarker

	Callee    Expression   `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewCall(callee Expression, args []Expression) *Call {
	if args == nil {
		args = make([]Expression, 0)
	}
	return &Call{nodeImpl: newNodeImpl(NodeCall), Callee: callee, Arguments: args}
}

// Pipe is `Left & Right`.
type Pipe struct {
	nodeImpl
	expressionMarker

	Left  Expression `json:"left"`
	Right Expression `json:"right"`
}

func NewPipe(left, right Expression) *Pipe {
	return &Pipe{nodeImpl: newNodeImpl(NodePipe), Left: left, Right: right}
}

// Compose is `f@g@h` optionally applied to Arguments. Functions are stored
// outermost first.
type Compose struct {
	nodeImpl
	expressionMarker

	Functions []Expression `json:"functions"`
	Arguments []Expression `json:"arguments,omitempty"`
	Applied   bool         `json:"applied"`
}

func NewCompose(functions []Expression, args []Expression, applied bool) *Compose {
	return &Compose{nodeImpl: newNodeImpl(NodeCompose), Functions: functions, Arguments: args, Applied: applied}
}

type Arm struct {
	nodeImpl

	Pattern Pattern    `json:"pattern"`
	Body    Expression `json:"body"`
}

func NewArm(pattern Pattern, body Expression) *Arm {
	return &Arm{nodeImpl: newNodeImpl(NodeArm), Pattern: pattern, Body: body}
}

// WhenIs is the surface pattern match; it never reaches the evaluator.
type WhenIs struct {
	nodeImpl
	expressionMarker

	Subject Expression `json:"subject"`
	Arms    []*Arm     `json:"arms"`
}

func NewWhenIs(subject Expression, arms []*Arm) *WhenIs {
	return &WhenIs{nodeImpl: newNodeImpl(NodeWhenIs), Subject: subject, Arms: arms}
}

type MatchClause struct {
	nodeImpl

	Pattern Pattern    `json:"pattern"`
	Body    Expression `json:"body"`
}

func NewMatchClause(pattern Pattern, body Expression) *MatchClause {
	return &MatchClause{nodeImpl: newNodeImpl(NodeMatchClause), Pattern: pattern, Body: body}
}

// Match is the desugared, exhaustiveness-checked form of WhenIs. Clauses are
// tried top to bottom and the first match wins.
type Match struct {
	nodeImpl
	expressionMarker

	Subject Expression     `json:"subject"`
	Clauses []*MatchClause `json:"clauses"`
}

func NewMatch(subject Expression, clauses []*MatchClause) *Match {
	return &Match{nodeImpl: newNodeImpl(NodeMatch), Subject: subject, Clauses: clauses}
}

type TaggedConstructor struct {
	nodeImpl
	expressionMarker

	Name    string     `json:"name"`
	Payload Expression `json:"payload,omitempty"`
}

func NewTaggedConstructor(name string, payload Expression) *TaggedConstructor {
	return &TaggedConstructor{nodeImpl: newNodeImpl(NodeTaggedConstructor), Name: name, Payload: payload}
}

type Lambda struct {
	nodeImpl
	expressionMarker

	Params []*Identifier `json:"params"`
	Body   Expression    `json:"body"`
}

func NewLambda(params []*Identifier, body Expression) *Lambda {
	if params == nil {
		params = make([]*Identifier, 0)
	}
	return &Lambda{nodeImpl: newNodeImpl(NodeLambda), Params: params, Body: body}
}

type ListLiteral struct {
	nodeImpl
	expressionMarker

	Elements []Expression `json:"elements"`
}

func NewListLiteral(elements []Expression) *ListLiteral {
	if elements == nil {
		elements = make([]Expression, 0)
	}
	return &ListLiteral{nodeImpl: newNodeImpl(NodeListLiteral), Elements: elements}
}

type RecordField struct {
	nodeImpl

	Name  *Identifier `json:"name"`
	Value Expression  `json:"value"`
}

func NewRecordField(name *Identifier, value Expression) *RecordField {
	return &RecordField{nodeImpl: newNodeImpl(NodeRecordField), Name: name, Value: value}
}

type RecordLiteral struct {
	nodeImpl
	expressionMarker

	Fields []*RecordField `json:"fields"`
}

func NewRecordLiteral(fields []*RecordField) *RecordLiteral {
	if fields == nil {
		fields = make([]*RecordField, 0)
	}
	return &RecordLiteral{nodeImpl: newNodeImpl(NodeRecordLiteral), Fields: fields}
}

type FieldAccess struct {
	nodeImpl
	expressionMarker

	Target Expression  `json:"target"`
	Field  *Identifier `json:"field"`
}

func NewFieldAccess(target Expression, field *Identifier) *FieldAccess {
	return &FieldAccess{nodeImpl: newNodeImpl(NodeFieldAccess), Target: target, Field: field}
}

// Propagate is postfix `?` over a Result value.
type Propagate struct {
	nodeImpl
	expressionMarker

	Value Expression `json:"value"`
}

func NewPropagate(value Expression) *Propagate {
	return &Propagate{nodeImpl: newNodeImpl(NodePropagate), Value: value}
}

// Stop ends the invocation with Error(Message).
type Stop struct {
	nodeImpl
	expressionMarker

	Message Expression `json:"message"`
}

func NewStop(message Expression) *Stop {
	return &Stop{nodeImpl: newNodeImpl(NodeStop), Message: message}
}
