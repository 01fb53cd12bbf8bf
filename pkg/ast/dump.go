package ast

import (
	"strconv"

	"github.com/xlab/treeprint"
)

// Dump renders the tree rooted at node as an indented outline, one branch per
// node with its distinguishing attributes. The outline starts with treeprint's
// anonymous "." root.
func Dump(node Node) string {
	if node == nil {
		return ""
	}
	root := treeprint.New()
	dumpChildren(root.AddBranch(label(node)), node)
	return root.String()
}

func dumpChildren(tree treeprint.Tree, node Node) {
	for _, child := range Children(node) {
		children := Children(child)
		if len(children) == 0 {
			tree.AddNode(label(child))
			continue
		}
		dumpChildren(tree.AddBranch(label(child)), child)
	}
}

func label(node Node) string {
	name := string(node.NodeType())
	switch n := node.(type) {
	case *NumberLiteral:
		return name + " " + strconv.FormatFloat(n.Value, 'g', -1, 64)
	case *TextLiteral:
		return name + " " + strconv.Quote(n.Value)
	case *AtomLiteral:
		return name + " :" + n.Name
	case *Identifier:
		return name + " " + n.Name
	case *PreludeRef:
		return name + " " + n.Qualified()
	case *TaggedConstructor:
		return name + " " + n.Name
	case *ConstructorPattern:
		return name + " " + n.Name
	case *NamedTypeRef:
		return name + " " + n.Name
	case *Compose:
		if !n.Applied {
			return name + " (unapplied)"
		}
	}
	return name
}
