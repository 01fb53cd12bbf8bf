package parser

import "github.com/Airsequel/AirScript/pkg/ast"

// parsePattern parses one `when` arm pattern.
func (p *Parser) parsePattern() ast.Pattern {
	tok := p.cur()
	switch tok.Type {
	case WILDCARD:
		p.advance()
		wc := ast.NewWildcardPattern()
		ast.SetSpan(wc, tok.Span)
		return wc
	case IDENT:
		return p.parseIdentifier()
	case NUMBER:
		p.advance()
		return literalPattern(numberLiteral(tok, false))
	case MINUS:
		p.advance()
		if p.cur().Type != NUMBER {
			p.fail(p.cur().Span, "expected a number after '-' in pattern")
		}
		lit := numberLiteral(p.advance(), true)
		ast.SetSpan(lit, p.spanFrom(tok))
		return literalPattern(lit)
	case TEXT:
		p.advance()
		lit := ast.NewTextLiteral(tok.Literal)
		ast.SetSpan(lit, tok.Span)
		return literalPattern(lit)
	case ATOM:
		p.advance()
		lit := ast.NewAtomLiteral(tok.Literal)
		ast.SetSpan(lit, tok.Span)
		return literalPattern(lit)
	case UPPER:
		p.advance()
		var payload ast.Pattern
		if p.cur().Type == LPAREN {
			p.advance()
			payload = p.parsePattern()
			p.expect(RPAREN, "after the payload pattern")
		}
		ctor := ast.NewConstructorPattern(tok.Literal, payload)
		ast.SetSpan(ctor, p.spanFrom(tok))
		return ctor
	}
	p.fail(tok.Span, "unexpected %s, expected a pattern", describe(tok))
	return nil
}

func literalPattern(lit ast.Literal) *ast.LiteralPattern {
	pat := ast.NewLiteralPattern(lit)
	ast.SetSpan(pat, lit.Span())
	return pat
}
