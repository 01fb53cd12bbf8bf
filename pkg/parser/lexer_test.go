package parser

import (
	"strings"
	"testing"
)

func tokenTypes(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		parts = append(parts, string(tok.Type))
	}
	return strings.Join(parts, " ")
}

func TestTokenizeLayout(t *testing.T) {
	source := `f = x ->
  y = x # trailing comment

  y
Ok(f(1))
`
	tokens, errs := Tokenize(source)
	if len(errs) != 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}
	want := "IDENT = IDENT -> NEWLINE INDENT IDENT = IDENT NEWLINE IDENT NEWLINE DEDENT UPPER ( IDENT ( NUMBER ) ) NEWLINE EOF"
	if got := tokenTypes(tokens); got != want {
		t.Fatalf("token mismatch\nwant: %s\n got: %s", want, got)
	}
}

func TestTokenizeIgnoresLayoutInsideBrackets(t *testing.T) {
	source := "Ok([\n    1,\n  2\n])\n"
	tokens, errs := Tokenize(source)
	if len(errs) != 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}
	want := "UPPER ( [ NUMBER , NUMBER ] ) NEWLINE EOF"
	if got := tokenTypes(tokens); got != want {
		t.Fatalf("token mismatch\nwant: %s\n got: %s", want, got)
	}
}

func TestTokenizeAtomsAndColons(t *testing.T) {
	tokens, _ := Tokenize(`{state: :open, "a\tb"}`)
	want := "{ IDENT : ATOM , TEXT } NEWLINE EOF"
	if got := tokenTypes(tokens); got != want {
		t.Fatalf("token mismatch\nwant: %s\n got: %s", want, got)
	}
	if tokens[3].Literal != "open" {
		t.Fatalf("expected atom literal open, got %q", tokens[3].Literal)
	}
	if tokens[5].Literal != "a\tb" {
		t.Fatalf("expected decoded escape, got %q", tokens[5].Literal)
	}
}

func TestTokenizeMarksPreludeReferences(t *testing.T) {
	tokens, _ := Tokenize("$input & List.map")
	want := "DOLLAR & UPPER . IDENT NEWLINE EOF"
	if got := tokenTypes(tokens); got != want {
		t.Fatalf("token mismatch\nwant: %s\n got: %s", want, got)
	}
	if tokens[0].Literal != "input" {
		t.Fatalf("expected dollar literal without sigil, got %q", tokens[0].Literal)
	}
}

func TestTokenizeNumbers(t *testing.T) {
	tokens, errs := Tokenize("1_000 3.25 1e3 2.5E-2")
	if len(errs) != 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}
	want := []string{"1000", "3.25", "1e3", "2.5e-2"}
	for i, lit := range want {
		if tokens[i].Literal != lit {
			t.Fatalf("token %d: want %q, got %q", i, lit, tokens[i].Literal)
		}
	}
}

func TestTokenizeInconsistentDedent(t *testing.T) {
	source := "f = x ->\n    x\n  x\nOk(1)\n"
	_, errs := Tokenize(source)
	if len(errs) == 0 || !strings.Contains(errs[0].Message, "inconsistent dedent") {
		t.Fatalf("expected inconsistent dedent error, got %v", errs)
	}
}

func TestTokenizeSpans(t *testing.T) {
	tokens, _ := Tokenize("ab = 1\n  & f")
	if tokens[0].Span.Start.Line != 1 || tokens[0].Span.Start.Column != 1 || tokens[0].Span.End.Column != 3 {
		t.Fatalf("unexpected span for first token: %+v", tokens[0].Span)
	}
	amp := tokens[3]
	if amp.Type != PIPE || amp.Span.Start.Line != 2 || amp.Span.Start.Column != 3 {
		t.Fatalf("unexpected continuation token: %+v", amp)
	}
}
