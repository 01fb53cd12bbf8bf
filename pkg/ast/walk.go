package ast

// Children returns the direct child nodes of node in source order.
func Children(node Node) []Node {
	var out []Node
	add := func(children ...Node) {
		for _, child := range children {
			if child == nil || isNilNode(child) {
				continue
			}
			out = append(out, child)
		}
	}
	switch n := node.(type) {
	case *Script:
		for _, decl := range n.Types {
			add(decl)
		}
		add(n.Body)
	case *TypeDeclaration:
		add(n.Name)
		for _, v := range n.Variants {
			add(v)
		}
	case *VariantDeclaration:
		add(n.Name, n.Payload)
	case *Binding:
		add(n.Name, n.Value)
	case *Block:
		for _, b := range n.Bindings {
			add(b)
		}
		add(n.Result)
	case *Call:
		add(n.Callee)
		for _, arg := range n.Arguments {
			add(arg)
		}
	case *Pipe:
		add(n.Left, n.Right)
	case *Compose:
		for _, fn := range n.Functions {
			add(fn)
		}
		for _, arg := range n.Arguments {
			add(arg)
		}
	case *WhenIs:
		add(n.Subject)
		for _, arm := range n.Arms {
			add(arm)
		}
	case *Arm:
		add(n.Pattern, n.Body)
	case *Match:
		add(n.Subject)
		for _, clause := range n.Clauses {
			add(clause)
		}
	case *MatchClause:
		add(n.Pattern, n.Body)
	case *TaggedConstructor:
		add(n.Payload)
	case *Lambda:
		for _, p := range n.Params {
			add(p)
		}
		add(n.Body)
	case *ListLiteral:
		for _, el := range n.Elements {
			add(el)
		}
	case *RecordLiteral:
		for _, f := range n.Fields {
			add(f)
		}
	case *RecordField:
		add(n.Name, n.Value)
	case *FieldAccess:
		add(n.Target, n.Field)
	case *Propagate:
		add(n.Value)
	case *Stop:
		add(n.Message)
	case *LiteralPattern:
		add(n.Literal)
	case *ConstructorPattern:
		add(n.Payload)
	case *NamedTypeRef:
		for _, arg := range n.Args {
			add(arg)
		}
	case *RecordTypeRef:
		for _, f := range n.Fields {
			add(f)
		}
	case *FieldTypeRef:
		add(n.Name, n.Type)
	case *FunctionTypeRef:
		for _, p := range n.Params {
			add(p)
		}
		add(n.Return)
	}
	return out
}

// Inspect traverses the tree depth-first. Children are skipped when visit
// returns false.
func Inspect(node Node, visit func(Node) bool) {
	if node == nil || isNilNode(node) {
		return
	}
	if !visit(node) {
		return
	}
	for _, child := range Children(node) {
		Inspect(child, visit)
	}
}

func isNilNode(node Node) bool {
	switch n := node.(type) {
	case *Identifier:
		return n == nil
	case *Block:
		return n == nil
	case *Lambda:
		return n == nil
	case *Call:
		return n == nil
	case *NamedTypeRef:
		return n == nil
	case *RecordTypeRef:
		return n == nil
	case *FunctionTypeRef:
		return n == nil
	}
	return false
}
