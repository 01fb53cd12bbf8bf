package parser

import (
	"fmt"

	"github.com/Airsequel/AirScript/pkg/ast"
)

// SyntaxError is a located lexing or parsing failure.
type SyntaxError struct {
	Span    ast.Span
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %s: %s", e.Span, e.Message)
}

// bailout unwinds the current statement after an error has been recorded.
type bailout struct{}

func (p *Parser) errorAt(span ast.Span, format string, args ...any) {
	p.errors = append(p.errors, &SyntaxError{Span: span, Message: fmt.Sprintf(format, args...)})
}

// fail records an error at span and abandons the current statement.
func (p *Parser) fail(span ast.Span, format string, args ...any) {
	p.errorAt(span, format, args...)
	panic(bailout{})
}

func describe(tok Token) string {
	switch tok.Type {
	case EOF:
		return "end of input"
	case NEWLINE:
		return "end of line"
	case INDENT:
		return "indentation"
	case DEDENT:
		return "end of block"
	case IDENT, UPPER, NUMBER:
		return fmt.Sprintf("%q", tok.Literal)
	case DOLLAR:
		return fmt.Sprintf("%q", "$"+tok.Literal)
	case TEXT:
		return "text literal"
	case ATOM:
		return fmt.Sprintf("%q", ":"+tok.Literal)
	}
	if tok.Literal != "" {
		return fmt.Sprintf("'%s'", tok.Literal)
	}
	return fmt.Sprintf("'%s'", tok.Type)
}
