package ast

// TypeRef is the written form of a type inside a `type` declaration.
type TypeRef interface {
	Node
	typeRefNode()
}

type typeRefMarker struct{}

func (typeRefMarker) typeRefNode() {}

// NamedTypeRef covers primitives (`Number`), built-in constructors
// (`List(Text)`) and user sum types.
type NamedTypeRef struct {
	nodeImpl
	typeRefMarker

	Name string    `json:"name"`
	Args []TypeRef `json:"args,omitempty"`
}

func NewNamedTypeRef(name string, args []TypeRef) *NamedTypeRef {
	return &NamedTypeRef{nodeImpl: newNodeImpl(NodeNamedTypeRef), Name: name, Args: args}
}

type FieldTypeRef struct {
	nodeImpl

	Name *Identifier `json:"name"`
	Type TypeRef     `json:"type"`
}

func NewFieldTypeRef(name *Identifier, typ TypeRef) *FieldTypeRef {
	return &FieldTypeRef{nodeImpl: newNodeImpl(NodeFieldTypeRef), Name: name, Type: typ}
}

type RecordTypeRef struct {
	nodeImpl
	typeRefMarker

	Fields []*FieldTypeRef `json:"fields"`
}

func NewRecordTypeRef(fields []*FieldTypeRef) *RecordTypeRef {
	return &RecordTypeRef{nodeImpl: newNodeImpl(NodeRecordTypeRef), Fields: fields}
}

type FunctionTypeRef struct {
	nodeImpl
	typeRefMarker

	Params []TypeRef `json:"params"`
	Return TypeRef   `json:"return"`
}

func NewFunctionTypeRef(params []TypeRef, ret TypeRef) *FunctionTypeRef {
	if params == nil {
		params = make([]TypeRef, 0)
	}
	return &FunctionTypeRef{nodeImpl: newNodeImpl(NodeFunctionTypeRef), Params: params, Return: ret}
}
