package parser

import "github.com/Airsequel/AirScript/pkg/ast"

// parseTypeDeclaration parses `type Name = Variant[(T)] { | Variant[(T)] }`.
func (p *Parser) parseTypeDeclaration() *ast.TypeDeclaration {
	start := p.advance()
	nameTok := p.expect(UPPER, "for the type name")
	name := ast.NewIdentifier(nameTok.Literal)
	ast.SetSpan(name, nameTok.Span)
	p.expect(ASSIGN, "after the type name")

	if p.cur().Type == BAR {
		p.advance()
	}
	variants := []*ast.VariantDeclaration{p.parseVariantDeclaration()}
	for p.cur().Type == BAR {
		p.advance()
		variants = append(variants, p.parseVariantDeclaration())
	}
	decl := ast.NewTypeDeclaration(name, variants)
	ast.SetSpan(decl, p.spanFrom(start))
	return decl
}

func (p *Parser) parseVariantDeclaration() *ast.VariantDeclaration {
	tok := p.expect(UPPER, "for the variant name")
	name := ast.NewIdentifier(tok.Literal)
	ast.SetSpan(name, tok.Span)
	var payload ast.TypeRef
	if p.cur().Type == LPAREN {
		p.advance()
		payload = p.parseTypeRef()
		if p.cur().Type == COMMA {
			p.fail(p.cur().Span, "variant %s takes exactly one payload type", tok.Literal)
		}
		p.expect(RPAREN, "after the payload type")
	}
	variant := ast.NewVariantDeclaration(name, payload)
	ast.SetSpan(variant, p.spanFrom(tok))
	return variant
}

func (p *Parser) parseTypeRef() ast.TypeRef {
	start := p.cur()
	switch start.Type {
	case UPPER:
		p.advance()
		var args []ast.TypeRef
		if p.cur().Type == LPAREN {
			p.advance()
			args = append(args, p.parseTypeRef())
			for p.cur().Type == COMMA {
				p.advance()
				args = append(args, p.parseTypeRef())
			}
			p.expect(RPAREN, "after type arguments")
		}
		ref := ast.NewNamedTypeRef(start.Literal, args)
		ast.SetSpan(ref, p.spanFrom(start))
		return ref
	case LBRACE:
		p.advance()
		var fields []*ast.FieldTypeRef
		for p.cur().Type != RBRACE {
			fieldStart := p.cur()
			name := p.parseIdentifier()
			p.expect(COLON, "after the field name")
			field := ast.NewFieldTypeRef(name, p.parseTypeRef())
			ast.SetSpan(field, p.spanFrom(fieldStart))
			fields = append(fields, field)
			if p.cur().Type != COMMA {
				break
			}
			p.advance()
		}
		p.expect(RBRACE, "to close the record type")
		ref := ast.NewRecordTypeRef(fields)
		ast.SetSpan(ref, p.spanFrom(start))
		return ref
	case LPAREN:
		p.advance()
		var params []ast.TypeRef
		for p.cur().Type != RPAREN {
			params = append(params, p.parseTypeRef())
			if p.cur().Type != COMMA {
				break
			}
			p.advance()
		}
		p.expect(RPAREN, "after parameter types")
		p.expect(ARROW, "in a function type")
		ref := ast.NewFunctionTypeRef(params, p.parseTypeRef())
		ast.SetSpan(ref, p.spanFrom(start))
		return ref
	}
	p.fail(start.Span, "unexpected %s, expected a type", describe(start))
	return nil
}
