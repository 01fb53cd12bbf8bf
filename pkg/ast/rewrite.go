package ast

// Rewrite copies the tree rooted at node bottom-up. fn receives each copy
// after its children have been rewritten and returns the node to use in its
// place (usually the copy itself). The returned map records, for every
// original node, the node that replaced it. The input tree is not modified.
//
// fn must return a node that fits the parent slot: an Expression where an
// expression was, a Pattern where a pattern was, and so on.
func Rewrite(node Node, fn func(Node) Node) (Node, map[Node]Node) {
	r := &rewriter{fn: fn, copies: make(map[Node]Node)}
	return r.node(node), r.copies
}

type rewriter struct {
	fn     func(Node) Node
	copies map[Node]Node
}

func (r *rewriter) node(n Node) Node {
	if n == nil || isNilNode(n) {
		return nil
	}
	copied := r.shallow(n)
	SetSpan(copied, n.Span())
	out := r.fn(copied)
	if out != copied && out != nil && out.Span() == (Span{}) {
		SetSpan(out, n.Span())
	}
	r.copies[n] = out
	return out
}

func (r *rewriter) expr(e Expression) Expression {
	if e == nil {
		return nil
	}
	out := r.node(e)
	if out == nil {
		return nil
	}
	return out.(Expression)
}

func (r *rewriter) exprs(list []Expression) []Expression {
	if list == nil {
		return nil
	}
	out := make([]Expression, len(list))
	for i, e := range list {
		out[i] = r.expr(e)
	}
	return out
}

func (r *rewriter) ident(id *Identifier) *Identifier {
	if id == nil {
		return nil
	}
	return r.node(id).(*Identifier)
}

func (r *rewriter) pattern(p Pattern) Pattern {
	if p == nil {
		return nil
	}
	out := r.node(p)
	if out == nil {
		return nil
	}
	return out.(Pattern)
}

func (r *rewriter) typeRef(t TypeRef) TypeRef {
	if t == nil {
		return nil
	}
	out := r.node(t)
	if out == nil {
		return nil
	}
	return out.(TypeRef)
}

func (r *rewriter) typeRefs(list []TypeRef) []TypeRef {
	if list == nil {
		return nil
	}
	out := make([]TypeRef, len(list))
	for i, t := range list {
		out[i] = r.typeRef(t)
	}
	return out
}

func (r *rewriter) block(b *Block) *Block {
	if b == nil {
		return nil
	}
	return r.node(b).(*Block)
}

func (r *rewriter) shallow(n Node) Node {
	switch n := n.(type) {
	case *Script:
		types := make([]*TypeDeclaration, len(n.Types))
		for i, decl := range n.Types {
			types[i] = r.node(decl).(*TypeDeclaration)
		}
		return NewScript(types, r.block(n.Body))
	case *TypeDeclaration:
		variants := make([]*VariantDeclaration, len(n.Variants))
		for i, v := range n.Variants {
			variants[i] = r.node(v).(*VariantDeclaration)
		}
		return NewTypeDeclaration(r.ident(n.Name), variants)
	case *VariantDeclaration:
		return NewVariantDeclaration(r.ident(n.Name), r.typeRef(n.Payload))
	case *Binding:
		return NewBinding(r.ident(n.Name), r.expr(n.Value))
	case *Block:
		bindings := make([]*Binding, len(n.Bindings))
		for i, b := range n.Bindings {
			bindings[i] = r.node(b).(*Binding)
		}
		return NewBlock(bindings, r.expr(n.Result))
	case *NumberLiteral:
		return NewNumberLiteral(n.Value, n.Raw)
	case *TextLiteral:
		return NewTextLiteral(n.Value)
	case *AtomLiteral:
		return NewAtomLiteral(n.Name)
	case *Identifier:
		return NewIdentifier(n.Name)
	case *PreludeRef:
		return NewPreludeRef(n.Namespace, n.Name)
	case *Call:
		callee := r.expr(n.Callee)
		return NewCall(callee, r.exprs(n.Arguments))
	case *Pipe:
		left := r.expr(n.Left)
		return NewPipe(left, r.expr(n.Right))
	case *Compose:
		fns := r.exprs(n.Functions)
		return NewCompose(fns, r.exprs(n.Arguments), n.Applied)
	case *WhenIs:
		subject := r.expr(n.Subject)
		arms := make([]*Arm, len(n.Arms))
		for i, arm := range n.Arms {
			arms[i] = r.node(arm).(*Arm)
		}
		return NewWhenIs(subject, arms)
	case *Arm:
		pattern := r.pattern(n.Pattern)
		return NewArm(pattern, r.expr(n.Body))
	case *Match:
		subject := r.expr(n.Subject)
		clauses := make([]*MatchClause, len(n.Clauses))
		for i, c := range n.Clauses {
			clauses[i] = r.node(c).(*MatchClause)
		}
		return NewMatch(subject, clauses)
	case *MatchClause:
		pattern := r.pattern(n.Pattern)
		return NewMatchClause(pattern, r.expr(n.Body))
	case *TaggedConstructor:
		return NewTaggedConstructor(n.Name, r.expr(n.Payload))
	case *Lambda:
		params := make([]*Identifier, len(n.Params))
		for i, p := range n.Params {
			params[i] = r.ident(p)
		}
		return NewLambda(params, r.expr(n.Body))
	case *ListLiteral:
		return NewListLiteral(r.exprs(n.Elements))
	case *RecordField:
		return NewRecordField(r.ident(n.Name), r.expr(n.Value))
	case *RecordLiteral:
		fields := make([]*RecordField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = r.node(f).(*RecordField)
		}
		return NewRecordLiteral(fields)
	case *FieldAccess:
		target := r.expr(n.Target)
		return NewFieldAccess(target, r.ident(n.Field))
	case *Propagate:
		return NewPropagate(r.expr(n.Value))
	case *Stop:
		return NewStop(r.expr(n.Message))
	case *WildcardPattern:
		return NewWildcardPattern()
	case *LiteralPattern:
		return NewLiteralPattern(r.node(n.Literal).(Literal))
	case *ConstructorPattern:
		return NewConstructorPattern(n.Name, r.pattern(n.Payload))
	case *NamedTypeRef:
		return NewNamedTypeRef(n.Name, r.typeRefs(n.Args))
	case *FieldTypeRef:
		return NewFieldTypeRef(r.ident(n.Name), r.typeRef(n.Type))
	case *RecordTypeRef:
		fields := make([]*FieldTypeRef, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = r.node(f).(*FieldTypeRef)
		}
		return NewRecordTypeRef(fields)
	case *FunctionTypeRef:
		params := r.typeRefs(n.Params)
		return NewFunctionTypeRef(params, r.typeRef(n.Return))
	}
	panic("ast: Rewrite does not know node type " + string(n.NodeType()))
}
