package parser

import (
	"strconv"

	"github.com/Airsequel/AirScript/pkg/ast"
)

func (p *Parser) parseIdentifierOrLambda() ast.Expression {
	if p.peek(1).Type == ARROW {
		start := p.cur()
		param := p.parseIdentifier()
		return p.parseLambdaTail(start, []*ast.Identifier{param})
	}
	return p.parseIdentifier()
}

func (p *Parser) parseIdentifier() *ast.Identifier {
	tok := p.expect(IDENT, "for a name")
	id := ast.NewIdentifier(tok.Literal)
	ast.SetSpan(id, tok.Span)
	return id
}

func (p *Parser) parseDollar() ast.Expression {
	tok := p.advance()
	ref := ast.NewPreludeRef("", tok.Literal)
	ast.SetSpan(ref, tok.Span)
	return ref
}

// parseUpper handles `Namespace.name`, `Ctor(payload)` and bare `Ctor`.
func (p *Parser) parseUpper() ast.Expression {
	tok := p.advance()
	switch p.cur().Type {
	case DOT:
		if p.peek(1).Type != IDENT {
			p.fail(p.peek(1).Span, "expected a function name after '%s.'", tok.Literal)
		}
		p.advance()
		name := p.advance()
		ref := ast.NewPreludeRef(tok.Literal, name.Literal)
		ast.SetSpan(ref, p.spanFrom(tok))
		return ref
	case LPAREN:
		open := p.advance()
		if p.cur().Type == RPAREN {
			p.fail(p.spanFrom(open), "constructor %s needs a payload; write %s without parentheses", tok.Literal, tok.Literal)
		}
		payload := p.parseExpression(precedenceLowest)
		if p.cur().Type == COMMA {
			p.fail(p.cur().Span, "constructor %s takes exactly one payload", tok.Literal)
		}
		p.expect(RPAREN, "after constructor payload")
		ctor := ast.NewTaggedConstructor(tok.Literal, payload)
		ast.SetSpan(ctor, p.spanFrom(tok))
		return ctor
	}
	ctor := ast.NewTaggedConstructor(tok.Literal, nil)
	ast.SetSpan(ctor, tok.Span)
	return ctor
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	tok := p.advance()
	return numberLiteral(tok, false)
}

func numberLiteral(tok Token, negate bool) *ast.NumberLiteral {
	value, _ := strconv.ParseFloat(tok.Literal, 64)
	raw := tok.Literal
	if negate {
		value, raw = -value, "-"+raw
	}
	lit := ast.NewNumberLiteral(value, raw)
	ast.SetSpan(lit, tok.Span)
	return lit
}

func (p *Parser) parseTextLiteral() ast.Expression {
	tok := p.advance()
	lit := ast.NewTextLiteral(tok.Literal)
	ast.SetSpan(lit, tok.Span)
	return lit
}

func (p *Parser) parseAtomLiteral() ast.Expression {
	tok := p.advance()
	lit := ast.NewAtomLiteral(tok.Literal)
	ast.SetSpan(lit, tok.Span)
	return lit
}

// isLambdaHead reports whether the tokens at the cursor read `( [name {, name}] ) ->`.
func (p *Parser) isLambdaHead() bool {
	i := 1
	if p.peek(i).Type == RPAREN {
		return p.peek(i+1).Type == ARROW
	}
	for {
		if p.peek(i).Type != IDENT {
			return false
		}
		i++
		switch p.peek(i).Type {
		case COMMA:
			i++
		case RPAREN:
			return p.peek(i+1).Type == ARROW
		default:
			return false
		}
	}
}

func (p *Parser) parseGroupedOrLambda() ast.Expression {
	start := p.cur()
	if p.isLambdaHead() {
		p.advance()
		var params []*ast.Identifier
		for p.cur().Type != RPAREN {
			params = append(params, p.parseIdentifier())
			if p.cur().Type == COMMA {
				p.advance()
			}
		}
		p.advance()
		return p.parseLambdaTail(start, params)
	}
	p.advance()
	if p.cur().Type == RPAREN {
		p.fail(p.spanFrom(start), "empty parentheses are not an expression")
	}
	inner := p.parseExpression(precedenceLowest)
	p.expect(RPAREN, "to close the group")
	return inner
}

func (p *Parser) parseLambdaTail(start Token, params []*ast.Identifier) ast.Expression {
	seen := make(map[string]bool, len(params))
	for _, param := range params {
		if seen[param.Name] {
			p.fail(param.Span(), "duplicate parameter %q", param.Name)
		}
		seen[param.Name] = true
	}
	p.expect(ARROW, "after lambda parameters")
	body := p.parseBody()
	lambda := ast.NewLambda(params, body)
	ast.SetSpan(lambda, p.spanFrom(start))
	return lambda
}

func (p *Parser) parseListLiteral() ast.Expression {
	start := p.advance()
	var elements []ast.Expression
	for p.cur().Type != RBRACKET {
		elements = append(elements, p.parseExpression(precedenceLowest))
		if p.cur().Type != COMMA {
			break
		}
		p.advance()
	}
	p.expect(RBRACKET, "to close the list")
	list := ast.NewListLiteral(elements)
	ast.SetSpan(list, p.spanFrom(start))
	return list
}

func (p *Parser) parseRecordLiteral() ast.Expression {
	start := p.advance()
	var fields []*ast.RecordField
	seen := make(map[string]bool)
	for p.cur().Type != RBRACE {
		fieldStart := p.cur()
		name := p.parseIdentifier()
		if seen[name.Name] {
			p.fail(name.Span(), "duplicate record field %q", name.Name)
		}
		seen[name.Name] = true
		p.expect(COLON, "after record field name")
		value := p.parseExpression(precedenceLowest)
		field := ast.NewRecordField(name, value)
		ast.SetSpan(field, p.spanFrom(fieldStart))
		fields = append(fields, field)
		if p.cur().Type != COMMA {
			break
		}
		p.advance()
	}
	p.expect(RBRACE, "to close the record")
	record := ast.NewRecordLiteral(fields)
	ast.SetSpan(record, p.spanFrom(start))
	return record
}

// parseWhenIs parses `when subject is` followed by indented or inline arms.
func (p *Parser) parseWhenIs() ast.Expression {
	start := p.advance()
	subject := p.parseExpression(precedenceLowest)
	p.expect(IS, "after the when subject")

	var arms []*ast.Arm
	if p.cur().Type == NEWLINE && p.peek(1).Type == INDENT {
		p.advance()
		p.advance()
		for p.cur().Type != DEDENT && p.cur().Type != EOF {
			if p.cur().Type == NEWLINE {
				p.advance()
				continue
			}
			arms = append(arms, p.parseArm())
			p.endStatement()
		}
		p.expect(DEDENT, "to close the arms")
	} else {
		arms = append(arms, p.parseArm())
		for p.cur().Type == BAR {
			p.advance()
			arms = append(arms, p.parseArm())
		}
	}
	when := ast.NewWhenIs(subject, arms)
	ast.SetSpan(when, p.spanFrom(start))
	return when
}

func (p *Parser) parseArm() *ast.Arm {
	start := p.cur()
	pattern := p.parsePattern()
	p.expect(ARROW, "after the arm pattern")
	body := p.parseBody()
	arm := ast.NewArm(pattern, body)
	ast.SetSpan(arm, p.spanFrom(start))
	return arm
}

func (p *Parser) parseNegation() ast.Expression {
	start := p.advance()
	if p.cur().Type == NUMBER && p.peek(1).Type != COMPOSE {
		tok := p.advance()
		lit := numberLiteral(tok, true)
		ast.SetSpan(lit, p.spanFrom(start))
		return lit
	}
	operand := p.parseExpression(precedencePrefix)
	return p.opCall(start, "neg", operand)
}

func (p *Parser) parseNot() ast.Expression {
	start := p.advance()
	operand := p.parseExpression(precedenceNot)
	return p.opCall(start, "not", operand)
}

func (p *Parser) parseStop() ast.Expression {
	start := p.advance()
	message := p.parseExpression(precedencePrefix)
	stop := ast.NewStop(message)
	ast.SetSpan(stop, p.spanFrom(start))
	return stop
}

// opCall builds Call(Op.symbol, args...) spanning from start to the last
// consumed token.
func (p *Parser) opCall(start Token, symbol string, args ...ast.Expression) *ast.Call {
	ref := ast.NewPreludeRef("Op", symbol)
	ast.SetSpan(ref, start.Span)
	call := ast.NewCall(ref, args)
	span := p.spanFrom(start)
	if len(args) > 0 {
		span = ast.MergeSpans(args[0].Span(), span)
	}
	ast.SetSpan(call, span)
	return call
}

func (p *Parser) parseArithmetic(left ast.Expression) ast.Expression {
	opTok := p.cur()
	precedence := p.curPrecedence()
	p.advance()
	right := p.parseExpression(precedence)
	return p.opCall(opTok, opTok.Literal, left, right)
}

func (p *Parser) parseComparison(left ast.Expression) ast.Expression {
	opTok := p.advance()
	right := p.parseExpression(precedenceComparison)
	if precedences[p.cur().Type] == precedenceComparison {
		p.fail(p.cur().Span, "comparison operators cannot be chained; combine them with 'and'")
	}
	return p.opCall(opTok, opTok.Literal, left, right)
}

// parseAnd rewrites `a and b` to `when a is True -> b | _ -> False`.
func (p *Parser) parseAnd(left ast.Expression) ast.Expression {
	opTok := p.advance()
	right := p.parseExpression(precedenceAnd)
	falseCtor := ast.NewTaggedConstructor("False", nil)
	ast.SetSpan(falseCtor, opTok.Span)
	return p.shortCircuit(left, opTok, right, falseCtor, true)
}

// parseOr rewrites `a or b` to `when a is True -> True | _ -> b`.
func (p *Parser) parseOr(left ast.Expression) ast.Expression {
	opTok := p.advance()
	right := p.parseExpression(precedenceOr)
	trueCtor := ast.NewTaggedConstructor("True", nil)
	ast.SetSpan(trueCtor, opTok.Span)
	return p.shortCircuit(left, opTok, trueCtor, right, false)
}

func (p *Parser) shortCircuit(subject ast.Expression, opTok Token, onTrue, otherwise ast.Expression, rightOnTrue bool) ast.Expression {
	truePattern := ast.NewConstructorPattern("True", nil)
	ast.SetSpan(truePattern, opTok.Span)
	wildcard := ast.NewWildcardPattern()
	ast.SetSpan(wildcard, opTok.Span)

	trueArm := ast.NewArm(truePattern, onTrue)
	otherArm := ast.NewArm(wildcard, otherwise)
	if rightOnTrue {
		ast.SetSpan(trueArm, onTrue.Span())
		ast.SetSpan(otherArm, opTok.Span)
	} else {
		ast.SetSpan(trueArm, opTok.Span)
		ast.SetSpan(otherArm, otherwise.Span())
	}
	when := ast.NewWhenIs(subject, []*ast.Arm{trueArm, otherArm})
	ast.SetSpan(when, ast.MergeSpans(subject.Span(), p.spanFrom(opTok)))
	return when
}

func (p *Parser) parsePipe(left ast.Expression) ast.Expression {
	p.advance()
	right := p.parseExpression(precedencePipe)
	pipe := ast.NewPipe(left, right)
	ast.SetSpan(pipe, ast.MergeSpans(left.Span(), right.Span()))
	return pipe
}

func (p *Parser) parseArguments() []ast.Expression {
	p.expect(LPAREN, "to open the arguments")
	var args []ast.Expression
	for p.cur().Type != RPAREN {
		args = append(args, p.parseExpression(precedenceLowest))
		if p.cur().Type != COMMA {
			break
		}
		p.advance()
	}
	p.expect(RPAREN, "to close the arguments")
	return args
}

func (p *Parser) parseCall(callee ast.Expression) ast.Expression {
	args := p.parseArguments()
	call := ast.NewCall(callee, args)
	ast.SetSpan(call, ast.MergeSpans(callee.Span(), p.prev.Span))
	return call
}

func (p *Parser) parseFieldAccess(target ast.Expression) ast.Expression {
	p.advance()
	field := p.parseIdentifier()
	access := ast.NewFieldAccess(target, field)
	ast.SetSpan(access, ast.MergeSpans(target.Span(), field.Span()))
	return access
}

func (p *Parser) parsePropagate(value ast.Expression) ast.Expression {
	tok := p.advance()
	prop := ast.NewPropagate(value)
	ast.SetSpan(prop, ast.MergeSpans(value.Span(), tok.Span))
	return prop
}

func isComposable(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.WhenIs, *ast.Stop:
		return false
	}
	return true
}

// parseCompose collects `first@g@h` and an optional argument list.
func (p *Parser) parseCompose(start Token, first ast.Expression) ast.Expression {
	functions := []ast.Expression{first}
	for p.cur().Type == COMPOSE {
		p.advance()
		functions = append(functions, p.parseComposeOperand())
	}
	var args []ast.Expression
	applied := false
	if p.cur().Type == LPAREN {
		args = p.parseArguments()
		applied = true
	}
	compose := ast.NewCompose(functions, args, applied)
	ast.SetSpan(compose, p.spanFrom(start))
	return compose
}

func (p *Parser) parseComposeOperand() ast.Expression {
	switch p.cur().Type {
	case IDENT:
		return p.parseIdentifier()
	case DOLLAR:
		return p.parseDollar()
	case LPAREN:
		return p.parseGroupedOrLambda()
	case UPPER:
		if p.peek(1).Type == DOT {
			return p.parseUpper()
		}
	}
	p.fail(p.cur().Span, "expected a function after '@', found %s", describe(p.cur()))
	return nil
}
