package parser

import "github.com/Airsequel/AirScript/pkg/ast"

// TokenType represents the kind of a lexical token.
type TokenType string

// Token is one lexical token with its source span.
type Token struct {
	Type    TokenType
	Literal string
	Span    ast.Span
}

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Layout
	NEWLINE TokenType = "NEWLINE"
	INDENT  TokenType = "INDENT"
	DEDENT  TokenType = "DEDENT"

	// Identifiers and literals
	IDENT    TokenType = "IDENT"  // price, total_sum
	UPPER    TokenType = "UPPER"  // Ok, List, Circle
	DOLLAR   TokenType = "DOLLAR" // $input, $map
	NUMBER   TokenType = "NUMBER"
	TEXT     TokenType = "TEXT"
	ATOM     TokenType = "ATOM" // :pending
	WILDCARD TokenType = "_"

	// Operators
	ASSIGN   TokenType = "="
	ARROW    TokenType = "->"
	PIPE     TokenType = "&"
	COMPOSE  TokenType = "@"
	BAR      TokenType = "|"
	QUESTION TokenType = "?"
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	PERCENT  TokenType = "%"
	CONCAT   TokenType = "++"
	EQ       TokenType = "=="
	NOT_EQ   TokenType = "!="
	LT       TokenType = "<"
	LE       TokenType = "<="
	GT       TokenType = ">"
	GE       TokenType = ">="

	// Delimiters
	COMMA    TokenType = ","
	DOT      TokenType = "."
	COLON    TokenType = ":"
	LPAREN   TokenType = "("
	RPAREN   TokenType = ")"
	LBRACKET TokenType = "["
	RBRACKET TokenType = "]"
	LBRACE   TokenType = "{"
	RBRACE   TokenType = "}"

	// Keywords
	WHEN TokenType = "WHEN"
	IS   TokenType = "IS"
	AND  TokenType = "AND"
	OR   TokenType = "OR"
	NOT  TokenType = "NOT"
	TYPE TokenType = "TYPE"
	STOP TokenType = "STOP"
)

var keywords = map[string]TokenType{
	"when": WHEN,
	"is":   IS,
	"and":  AND,
	"or":   OR,
	"not":  NOT,
	"type": TYPE,
	"stop": STOP,
}

// continuesLine lists tokens that, when ending a line, join it with the next.
var continuesLine = map[TokenType]bool{
	PIPE: true, COMPOSE: true, ASSIGN: true, BAR: true, COMMA: true,
	PLUS: true, MINUS: true, ASTERISK: true, SLASH: true, PERCENT: true, CONCAT: true,
	EQ: true, NOT_EQ: true, LT: true, LE: true, GT: true, GE: true,
	AND: true, OR: true,
}

// leadsContinuation lists tokens that, when starting a line, join it with the
// previous one.
var leadsContinuation = map[rune]bool{
	'&': true,
	'@': true,
	'|': true,
}
