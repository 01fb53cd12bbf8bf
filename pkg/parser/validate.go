package parser

import "github.com/Airsequel/AirScript/pkg/ast"

// validate rejects a compose chain that is neither applied to arguments nor
// the direct target of a pipe.
func (p *Parser) validate(script *ast.Script) {
	var visit func(node, parent ast.Node)
	visit = func(node, parent ast.Node) {
		if compose, ok := node.(*ast.Compose); ok && !compose.Applied {
			pipe, isPipe := parent.(*ast.Pipe)
			if !isPipe || pipe.Right != ast.Expression(compose) {
				p.errorAt(compose.Span(), "a compose chain must be applied to an argument or used as a pipe target")
			}
		}
		for _, child := range ast.Children(node) {
			visit(child, node)
		}
	}
	visit(script, nil)
}
