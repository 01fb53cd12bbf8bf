package parser

import (
	"slices"

	"github.com/Airsequel/AirScript/pkg/ast"
)

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

const (
	precedenceLowest = iota
	precedencePipe
	precedenceOr
	precedenceAnd
	precedenceNot
	precedenceComparison
	precedenceSum
	precedenceProduct
	precedencePrefix
	precedencePostfix
)

var precedences = map[TokenType]int{
	PIPE:     precedencePipe,
	OR:       precedenceOr,
	AND:      precedenceAnd,
	EQ:       precedenceComparison,
	NOT_EQ:   precedenceComparison,
	LT:       precedenceComparison,
	LE:       precedenceComparison,
	GT:       precedenceComparison,
	GE:       precedenceComparison,
	PLUS:     precedenceSum,
	MINUS:    precedenceSum,
	CONCAT:   precedenceSum,
	ASTERISK: precedenceProduct,
	SLASH:    precedenceProduct,
	PERCENT:  precedenceProduct,
	LPAREN:   precedencePostfix,
	DOT:      precedencePostfix,
	QUESTION: precedencePostfix,
}

// Parser is a Pratt parser over the layout-resolved token stream.
//
// errors is append-only. A failing statement records its error and unwinds
// through a bailout panic; parsing resumes at the next top-level line so one
// mistake does not hide later ones.
type Parser struct {
	tokens []Token
	pos    int
	prev   Token

	errors []*SyntaxError

	prefixFns map[TokenType]prefixParseFn
	infixFns  map[TokenType]infixParseFn
}

// New returns a parser over the given source. Lexing errors are carried into
// the parser's error list.
func New(source string) *Parser {
	tokens, lexErrors := Tokenize(source)
	p := &Parser{
		tokens:    tokens,
		errors:    append([]*SyntaxError(nil), lexErrors...),
		prefixFns: make(map[TokenType]prefixParseFn),
		infixFns:  make(map[TokenType]infixParseFn),
	}

	p.registerPrefix(IDENT, p.parseIdentifierOrLambda)
	p.registerPrefix(UPPER, p.parseUpper)
	p.registerPrefix(DOLLAR, p.parseDollar)
	p.registerPrefix(NUMBER, p.parseNumberLiteral)
	p.registerPrefix(TEXT, p.parseTextLiteral)
	p.registerPrefix(ATOM, p.parseAtomLiteral)
	p.registerPrefix(LPAREN, p.parseGroupedOrLambda)
	p.registerPrefix(LBRACKET, p.parseListLiteral)
	p.registerPrefix(LBRACE, p.parseRecordLiteral)
	p.registerPrefix(WHEN, p.parseWhenIs)
	p.registerPrefix(MINUS, p.parseNegation)
	p.registerPrefix(NOT, p.parseNot)
	p.registerPrefix(STOP, p.parseStop)

	p.registerInfix(PIPE, p.parsePipe)
	p.registerInfix(AND, p.parseAnd)
	p.registerInfix(OR, p.parseOr)
	for _, tt := range []TokenType{EQ, NOT_EQ, LT, LE, GT, GE} {
		p.registerInfix(tt, p.parseComparison)
	}
	for _, tt := range []TokenType{PLUS, MINUS, CONCAT, ASTERISK, SLASH, PERCENT} {
		p.registerInfix(tt, p.parseArithmetic)
	}
	p.registerInfix(LPAREN, p.parseCall)
	p.registerInfix(DOT, p.parseFieldAccess)
	p.registerInfix(QUESTION, p.parsePropagate)

	return p
}

func (p *Parser) registerPrefix(tt TokenType, fn prefixParseFn) { p.prefixFns[tt] = fn }
func (p *Parser) registerInfix(tt TokenType, fn infixParseFn)   { p.infixFns[tt] = fn }

// Parse parses one script and returns the first syntax error, if any.
func Parse(source string) (*ast.Script, error) {
	p := New(source)
	script := p.ParseScript()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, errs[0]
	}
	return script, nil
}

// Errors returns every recorded syntax error ordered by source position.
func (p *Parser) Errors() []*SyntaxError {
	out := slices.Clone(p.errors)
	slices.SortStableFunc(out, func(a, b *SyntaxError) int {
		return a.Span.Start.Offset - b.Span.Start.Offset
	})
	return out
}

// ParseScript parses `{statement NEWLINE} expression`. The returned script is
// best-effort when Errors is non-empty.
func (p *Parser) ParseScript() *ast.Script {
	start := p.cur()
	var types []*ast.TypeDeclaration
	var bindings []*ast.Binding
	var result ast.Expression

	for p.cur().Type != EOF {
		if p.cur().Type == NEWLINE {
			p.advance()
			continue
		}
		p.topLevelStatement(func() {
			switch {
			case p.cur().Type == TYPE:
				types = append(types, p.parseTypeDeclaration())
			case p.cur().Type == IDENT && p.peek(1).Type == ASSIGN:
				bindings = append(bindings, p.parseBinding())
			default:
				expr := p.parseExpression(precedenceLowest)
				if result != nil {
					p.fail(expr.Span(), "only the last line of a script may be a bare expression")
				}
				result = expr
			}
			p.endStatement()
		})
	}

	if result == nil && len(p.errors) == 0 {
		p.errorAt(p.cur().Span, "a script must end with a result expression")
	}
	if result != nil && len(bindings) > 0 && result.Span().Start.Offset < bindings[len(bindings)-1].Span().Start.Offset {
		p.errorAt(result.Span(), "the result expression must be the last line of the script")
	}
	if result != nil {
		for _, decl := range types {
			if decl.Span().Start.Offset > result.Span().Start.Offset {
				p.errorAt(decl.Span(), "type declarations must come before the result expression")
			}
		}
	}

	body := ast.NewBlock(bindings, result)
	ast.SetSpan(body, p.spanFrom(start))
	script := ast.NewScript(types, body)
	ast.SetSpan(script, p.spanFrom(start))

	if len(p.errors) == 0 {
		p.validate(script)
	}
	return script
}

// topLevelStatement runs parse and, on bailout, skips to the next line at the
// outermost indentation level.
func (p *Parser) topLevelStatement(parse func()) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			p.synchronize()
		}
	}()
	parse()
}

func (p *Parser) synchronize() {
	depth := 0
	for p.cur().Type != EOF {
		switch p.cur().Type {
		case INDENT:
			depth++
		case DEDENT:
			if depth > 0 {
				depth--
			}
		case NEWLINE:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

// endStatement consumes the line terminator. A statement that closed an
// indented block has already consumed its DEDENT.
func (p *Parser) endStatement() {
	switch {
	case p.cur().Type == NEWLINE:
		p.advance()
	case p.cur().Type == EOF, p.cur().Type == DEDENT:
	case p.prev.Type == DEDENT:
	default:
		p.fail(p.cur().Span, "unexpected %s", describe(p.cur()))
	}
}

func (p *Parser) cur() Token { return p.peek(0) }

func (p *Parser) peek(n int) Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) advance() Token {
	tok := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.prev = tok
	return tok
}

// expect consumes a token of type tt or fails.
func (p *Parser) expect(tt TokenType, context string) Token {
	if p.cur().Type != tt {
		p.fail(p.cur().Span, "expected '%s' %s, found %s", tt, context, describe(p.cur()))
	}
	return p.advance()
}

func (p *Parser) spanFrom(start Token) ast.Span {
	end := p.prev.Span.End
	if end.Offset < start.Span.Start.Offset {
		end = start.Span.End
	}
	return ast.Span{Start: start.Span.Start, End: end}
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.cur().Type]; ok {
		return prec
	}
	return precedenceLowest
}

func (p *Parser) parseBinding() *ast.Binding {
	nameTok := p.advance()
	name := ast.NewIdentifier(nameTok.Literal)
	ast.SetSpan(name, nameTok.Span)
	p.expect(ASSIGN, "after binding name")
	value := p.parseBody()
	binding := ast.NewBinding(name, value)
	ast.SetSpan(binding, p.spanFrom(nameTok))
	return binding
}

// parseBody parses either an inline expression or an indented block that
// starts on the next line.
func (p *Parser) parseBody() ast.Expression {
	if p.cur().Type == NEWLINE && p.peek(1).Type == INDENT {
		p.advance()
		return p.parseIndentedBlock()
	}
	return p.parseExpression(precedenceLowest)
}

// parseIndentedBlock parses `INDENT {binding NEWLINE} expression DEDENT`.
func (p *Parser) parseIndentedBlock() ast.Expression {
	start := p.expect(INDENT, "to open a block")
	var bindings []*ast.Binding
	var result ast.Expression
	for p.cur().Type != DEDENT && p.cur().Type != EOF {
		if p.cur().Type == NEWLINE {
			p.advance()
			continue
		}
		if result != nil {
			p.fail(p.cur().Span, "only the last line of a block may be a bare expression")
		}
		if p.cur().Type == IDENT && p.peek(1).Type == ASSIGN {
			bindings = append(bindings, p.parseBinding())
		} else {
			result = p.parseExpression(precedenceLowest)
		}
		p.endStatement()
	}
	p.expect(DEDENT, "to close the block")
	if result == nil {
		p.fail(p.spanFrom(start), "a block must end with a result expression")
	}
	if len(bindings) == 0 {
		return result
	}
	block := ast.NewBlock(bindings, result)
	ast.SetSpan(block, p.spanFrom(start))
	return block
}

// parseExpression is the Pratt loop.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	tok := p.cur()
	prefix := p.prefixFns[tok.Type]
	if prefix == nil {
		p.fail(tok.Span, "unexpected %s, expected an expression", describe(tok))
	}
	left := prefix()
	if p.cur().Type == COMPOSE && isComposable(left) {
		left = p.parseCompose(tok, left)
	}

	for precedence < p.curPrecedence() {
		infix := p.infixFns[p.cur().Type]
		if infix == nil {
			return left
		}
		left = infix(left)
	}
	return left
}
