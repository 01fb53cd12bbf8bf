package ast

import "strconv"

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Num(value float64) *NumberLiteral {
	return NewNumberLiteral(value, strconv.FormatFloat(value, 'g', -1, 64))
}

func Txt(value string) *TextLiteral {
	return NewTextLiteral(value)
}

func Atm(name string) *AtomLiteral {
	return NewAtomLiteral(name)
}

func Dollar(name string) *PreludeRef {
	return NewPreludeRef("", name)
}

func Ref(namespace, name string) *PreludeRef {
	return NewPreludeRef(namespace, name)
}

// Expression helpers.

func CallE(callee Expression, args ...Expression) *Call {
	return NewCall(callee, args)
}

func PipeE(left, right Expression) *Pipe {
	return NewPipe(left, right)
}

func ComposeE(functions []Expression, args ...Expression) *Compose {
	return NewCompose(functions, args, true)
}

func Lam(params []string, body Expression) *Lambda {
	ids := make([]*Identifier, 0, len(params))
	for _, p := range params {
		ids = append(ids, ID(p))
	}
	return NewLambda(ids, body)
}

func Ctor(name string, payload Expression) *TaggedConstructor {
	return NewTaggedConstructor(name, payload)
}

func Op(symbol string, args ...Expression) *Call {
	return NewCall(Ref("Op", symbol), args)
}

func ListE(elements ...Expression) *ListLiteral {
	return NewListLiteral(elements)
}

func Rec(fields ...*RecordField) *RecordLiteral {
	return NewRecordLiteral(fields)
}

func FieldE(name string, value Expression) *RecordField {
	return NewRecordField(ID(name), value)
}

func Dot(target Expression, field string) *FieldAccess {
	return NewFieldAccess(target, ID(field))
}

func When(subject Expression, arms ...*Arm) *WhenIs {
	return NewWhenIs(subject, arms)
}

func ArmE(pattern Pattern, body Expression) *Arm {
	return NewArm(pattern, body)
}

// Pattern helpers.

func Wc() *WildcardPattern {
	return NewWildcardPattern()
}

func PCtor(name string, payload Pattern) *ConstructorPattern {
	return NewConstructorPattern(name, payload)
}

func PLit(literal Literal) *LiteralPattern {
	return NewLiteralPattern(literal)
}

// Statement helpers.

func Bind(name string, value Expression) *Binding {
	return NewBinding(ID(name), value)
}

func Blk(result Expression, bindings ...*Binding) *Block {
	return NewBlock(bindings, result)
}

func Prog(result Expression, bindings ...*Binding) *Script {
	return NewScript(nil, NewBlock(bindings, result))
}

// Type reference helpers.

func Ty(name string, args ...TypeRef) *NamedTypeRef {
	return NewNamedTypeRef(name, args)
}

func Variant(name string, payload TypeRef) *VariantDeclaration {
	return NewVariantDeclaration(ID(name), payload)
}

func SumDecl(name string, variants ...*VariantDeclaration) *TypeDeclaration {
	return NewTypeDeclaration(ID(name), variants)
}
