package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/Airsequel/AirScript/pkg/ast"
)

// Lexer turns source text into a token slice. Layout is resolved here:
// NEWLINE ends a logical line, INDENT/DEDENT bracket deeper lines, and all
// three are suppressed inside (), [] and {}.
type Lexer struct {
	input  []rune
	pos    int
	line   int
	column int

	depth       int
	indents     []int
	atLineStart bool
	tokens      []Token

	Errors []*SyntaxError
}

// NewLexer creates a lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:       []rune(input),
		line:        1,
		column:      1,
		indents:     []int{0},
		atLineStart: true,
	}
}

// Tokenize lexes the complete input. The final token is always EOF.
func Tokenize(input string) ([]Token, []*SyntaxError) {
	lx := NewLexer(input)
	return lx.Run(), lx.Errors
}

// Run lexes the remaining input.
func (l *Lexer) Run() []Token {
	for {
		if l.atLineStart && l.depth == 0 {
			if done := l.beginLine(); done {
				break
			}
		}
		l.skipInlineSpace()
		if l.eof() {
			break
		}
		ch := l.cur()
		switch {
		case ch == '#':
			l.skipComment()
		case ch == '\n':
			l.advance()
			if l.depth == 0 {
				l.atLineStart = true
			}
		default:
			l.lexToken()
		}
	}
	l.finish()
	return l.tokens
}

func (l *Lexer) eof() bool { return l.pos >= len(l.input) }

func (l *Lexer) cur() rune {
	if l.eof() {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekRune(offset int) rune {
	idx := l.pos + offset
	if idx < 0 || idx >= len(l.input) {
		return 0
	}
	return l.input[idx]
}

func (l *Lexer) advance() {
	if l.eof() {
		return
	}
	if l.input[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
}

func (l *Lexer) position() ast.Position {
	return ast.Position{Line: l.line, Column: l.column, Offset: l.pos}
}

func (l *Lexer) errorf(span ast.Span, format string, args ...any) {
	l.Errors = append(l.Errors, &SyntaxError{Span: span, Message: fmt.Sprintf(format, args...)})
}

func (l *Lexer) emit(typ TokenType, literal string, start ast.Position) {
	l.tokens = append(l.tokens, Token{Type: typ, Literal: literal, Span: ast.Span{Start: start, End: l.position()}})
}

func (l *Lexer) emitLayout(typ TokenType) {
	pos := l.position()
	l.tokens = append(l.tokens, Token{Type: typ, Span: ast.Span{Start: pos, End: pos}})
}

func (l *Lexer) lastType() TokenType {
	if len(l.tokens) == 0 {
		return ""
	}
	return l.tokens[len(l.tokens)-1].Type
}

// beginLine measures the indentation of the next non-blank line and emits
// the layout tokens it implies. It reports true at end of input.
func (l *Lexer) beginLine() bool {
	for {
		width := 0
		start := l.position()
		for !l.eof() && (l.cur() == ' ' || l.cur() == '\t') {
			if l.cur() == '\t' {
				l.errorf(ast.Span{Start: l.position(), End: l.position()}, "tabs are not allowed in indentation")
			}
			width++
			l.advance()
		}
		if l.eof() {
			return true
		}
		switch l.cur() {
		case '\n':
			l.advance()
			continue
		case '#':
			l.skipComment()
			continue
		}
		l.atLineStart = false
		if len(l.tokens) == 0 {
			if width > 0 {
				l.errorf(ast.Span{Start: start, End: l.position()}, "unexpected indentation")
			}
			return false
		}
		if leadsContinuation[l.cur()] || continuesLine[l.lastType()] {
			return false
		}
		if t := l.lastType(); t != NEWLINE && t != INDENT && t != DEDENT {
			l.emitLayout(NEWLINE)
		}
		top := l.indents[len(l.indents)-1]
		switch {
		case width > top:
			l.indents = append(l.indents, width)
			l.emitLayout(INDENT)
		case width < top:
			for width < l.indents[len(l.indents)-1] {
				l.indents = l.indents[:len(l.indents)-1]
				l.emitLayout(DEDENT)
			}
			if width != l.indents[len(l.indents)-1] {
				l.errorf(ast.Span{Start: start, End: l.position()}, "inconsistent dedent")
			}
		}
		return false
	}
}

func (l *Lexer) finish() {
	if t := l.lastType(); t != "" && t != NEWLINE && t != DEDENT {
		l.emitLayout(NEWLINE)
	}
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.emitLayout(DEDENT)
	}
	l.emitLayout(EOF)
}

func (l *Lexer) skipInlineSpace() {
	for !l.eof() {
		ch := l.cur()
		if ch == ' ' || ch == '\t' || ch == '\r' || (ch == '\n' && l.depth > 0) {
			l.advance()
			continue
		}
		return
	}
}

func (l *Lexer) skipComment() {
	for !l.eof() && l.cur() != '\n' {
		l.advance()
	}
}

func (l *Lexer) lexToken() {
	start := l.position()
	ch := l.cur()
	switch {
	case ch == '$':
		l.advance()
		name := l.readWord()
		if name == "" {
			l.errorf(ast.Span{Start: start, End: l.position()}, "expected a name after '$'")
			l.emit(ILLEGAL, "$", start)
			return
		}
		l.emit(DOLLAR, name, start)
	case ch == ':' && isWordStart(l.peekRune(1)) && !isWordChar(l.peekRune(-1)):
		l.advance()
		l.emit(ATOM, l.readWord(), start)
	case unicode.IsDigit(ch):
		l.lexNumber(start)
	case ch == '"':
		l.lexText(start)
	case isWordStart(ch):
		word := l.readWord()
		switch {
		case word == "_":
			l.emit(WILDCARD, word, start)
		case keywords[word] != "":
			l.emit(keywords[word], word, start)
		case unicode.IsUpper([]rune(word)[0]):
			l.emit(UPPER, word, start)
		default:
			l.emit(IDENT, word, start)
		}
	default:
		l.lexSymbol(start)
	}
}

func isWordStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isWordChar(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func (l *Lexer) readWord() string {
	var b strings.Builder
	for !l.eof() && isWordChar(l.cur()) {
		b.WriteRune(l.cur())
		l.advance()
	}
	return b.String()
}

func (l *Lexer) lexNumber(start ast.Position) {
	var b strings.Builder
	digits := func() {
		for !l.eof() && (unicode.IsDigit(l.cur()) || l.cur() == '_') {
			if l.cur() != '_' {
				b.WriteRune(l.cur())
			}
			l.advance()
		}
	}
	digits()
	if l.cur() == '.' && unicode.IsDigit(l.peekRune(1)) {
		b.WriteRune('.')
		l.advance()
		digits()
	}
	if l.cur() == 'e' || l.cur() == 'E' {
		next := l.peekRune(1)
		if unicode.IsDigit(next) || ((next == '+' || next == '-') && unicode.IsDigit(l.peekRune(2))) {
			b.WriteRune('e')
			l.advance()
			if l.cur() == '+' || l.cur() == '-' {
				b.WriteRune(l.cur())
				l.advance()
			}
			digits()
		}
	}
	raw := b.String()
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		l.errorf(ast.Span{Start: start, End: l.position()}, "invalid number literal %q", raw)
	}
	l.emit(NUMBER, raw, start)
}

func (l *Lexer) lexText(start ast.Position) {
	l.advance() // opening quote
	var b strings.Builder
	for {
		if l.eof() || l.cur() == '\n' {
			l.errorf(ast.Span{Start: start, End: l.position()}, "unterminated text literal")
			l.emit(TEXT, b.String(), start)
			return
		}
		ch := l.cur()
		if ch == '"' {
			l.advance()
			l.emit(TEXT, b.String(), start)
			return
		}
		if ch != '\\' {
			b.WriteRune(ch)
			l.advance()
			continue
		}
		escStart := l.position()
		l.advance()
		switch l.cur() {
		case 'n':
			b.WriteRune('\n')
		case 't':
			b.WriteRune('\t')
		case 'r':
			b.WriteRune('\r')
		case '"':
			b.WriteRune('"')
		case '\\':
			b.WriteRune('\\')
		case 'u':
			if r, ok := l.readUnicodeEscape(); ok {
				b.WriteRune(r)
				continue
			}
			l.errorf(ast.Span{Start: escStart, End: l.position()}, "invalid unicode escape")
			continue
		default:
			l.errorf(ast.Span{Start: escStart, End: l.position()}, "unknown escape sequence \\%c", l.cur())
		}
		l.advance()
	}
}

// readUnicodeEscape consumes `u{XXXX}` with the cursor on 'u'.
func (l *Lexer) readUnicodeEscape() (rune, bool) {
	if l.peekRune(1) != '{' {
		return 0, false
	}
	l.advance()
	l.advance()
	var hex strings.Builder
	for !l.eof() && l.cur() != '}' && l.cur() != '"' && l.cur() != '\n' {
		hex.WriteRune(l.cur())
		l.advance()
	}
	if l.cur() != '}' {
		return 0, false
	}
	l.advance()
	code, err := strconv.ParseUint(hex.String(), 16, 32)
	if err != nil || code > unicode.MaxRune {
		return 0, false
	}
	return rune(code), true
}

var twoCharSymbols = map[string]TokenType{
	"->": ARROW,
	"++": CONCAT,
	"==": EQ,
	"!=": NOT_EQ,
	"<=": LE,
	">=": GE,
}

var oneCharSymbols = map[rune]TokenType{
	'=': ASSIGN, '&': PIPE, '@': COMPOSE, '|': BAR, '?': QUESTION,
	'+': PLUS, '-': MINUS, '*': ASTERISK, '/': SLASH, '%': PERCENT,
	'<': LT, '>': GT, ',': COMMA, '.': DOT, ':': COLON,
	'(': LPAREN, ')': RPAREN, '[': LBRACKET, ']': RBRACKET, '{': LBRACE, '}': RBRACE,
}

func (l *Lexer) lexSymbol(start ast.Position) {
	pair := string([]rune{l.cur(), l.peekRune(1)})
	if typ, ok := twoCharSymbols[pair]; ok {
		l.advance()
		l.advance()
		l.emit(typ, pair, start)
		return
	}
	ch := l.cur()
	typ, ok := oneCharSymbols[ch]
	l.advance()
	if !ok {
		l.errorf(ast.Span{Start: start, End: l.position()}, "illegal character %q", ch)
		l.emit(ILLEGAL, string(ch), start)
		return
	}
	switch typ {
	case LPAREN, LBRACKET, LBRACE:
		l.depth++
	case RPAREN, RBRACKET, RBRACE:
		if l.depth > 0 {
			l.depth--
		}
	}
	l.emit(typ, string(ch), start)
}
