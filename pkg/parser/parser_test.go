package parser

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/Airsequel/AirScript/pkg/ast"
)

func assertScriptsEqual(t testing.TB, expected, actual *ast.Script) {
	t.Helper()
	wantJSON, _ := json.MarshalIndent(expected, "", "  ")
	gotJSON, _ := json.MarshalIndent(actual, "", "  ")
	if string(wantJSON) != string(gotJSON) {
		t.Fatalf("script mismatch\nexpected: %s\n   actual: %s", wantJSON, gotJSON)
	}
}

func mustParse(t testing.TB, source string) *ast.Script {
	t.Helper()
	script, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return script
}

func expectSyntaxError(t testing.TB, source, fragment string) *SyntaxError {
	t.Helper()
	_, err := Parse(source)
	if err == nil {
		t.Fatalf("expected syntax error containing %q", fragment)
	}
	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
	if !strings.Contains(syntaxErr.Message, fragment) {
		t.Fatalf("expected message containing %q, got %q", fragment, syntaxErr.Message)
	}
	return syntaxErr
}

func TestParseBindingsAndResult(t *testing.T) {
	source := `total = 1 + 2 * 3
label = "sum"
Ok({label: label, total: total})
`
	expected := ast.Prog(
		ast.Ctor("Ok", ast.Rec(
			ast.FieldE("label", ast.ID("label")),
			ast.FieldE("total", ast.ID("total")),
		)),
		ast.Bind("total", ast.Op("+", ast.Num(1), ast.Op("*", ast.Num(2), ast.Num(3)))),
		ast.Bind("label", ast.Txt("sum")),
	)
	assertScriptsEqual(t, expected, mustParse(t, source))
}

func TestParsePipeInsertsFirstArgument(t *testing.T) {
	script := mustParse(t, "$input & $map(x -> x * 2) & Ok\n")
	pipe, ok := script.Body.Result.(*ast.Pipe)
	if !ok {
		t.Fatalf("expected outer pipe, got %T", script.Body.Result)
	}
	if ctor, ok := pipe.Right.(*ast.TaggedConstructor); !ok || ctor.Name != "Ok" {
		t.Fatalf("expected Ok on the right of the outer pipe, got %#v", pipe.Right)
	}
	inner, ok := pipe.Left.(*ast.Pipe)
	if !ok {
		t.Fatalf("expected left-associative pipes, got %T", pipe.Left)
	}
	call, ok := inner.Right.(*ast.Call)
	if !ok || len(call.Arguments) != 1 {
		t.Fatalf("expected $map call with one written argument, got %#v", inner.Right)
	}
	if _, ok := call.Arguments[0].(*ast.Lambda); !ok {
		t.Fatalf("expected lambda argument, got %T", call.Arguments[0])
	}
}

func TestParseComposeApplied(t *testing.T) {
	script := mustParse(t, "Ok(f@g@h(1))\n")
	ctor := script.Body.Result.(*ast.TaggedConstructor)
	compose, ok := ctor.Payload.(*ast.Compose)
	if !ok {
		t.Fatalf("expected compose, got %T", ctor.Payload)
	}
	if !compose.Applied || len(compose.Functions) != 3 || len(compose.Arguments) != 1 {
		t.Fatalf("unexpected compose shape: %#v", compose)
	}
	if name := compose.Functions[0].(*ast.Identifier).Name; name != "f" {
		t.Fatalf("expected outermost function f, got %s", name)
	}
}

func TestParseComposeAsPipeTarget(t *testing.T) {
	script := mustParse(t, "1 & f@g & Ok\n")
	outer := script.Body.Result.(*ast.Pipe)
	inner := outer.Left.(*ast.Pipe)
	compose, ok := inner.Right.(*ast.Compose)
	if !ok || compose.Applied {
		t.Fatalf("expected unapplied compose as pipe target, got %#v", inner.Right)
	}
}

func TestParseRejectsDanglingCompose(t *testing.T) {
	expectSyntaxError(t, "h = f@g\nOk(1)\n", "compose chain must be applied")
}

func TestParseWhenBlockArms(t *testing.T) {
	source := `when $input is
  Null -> Error("Provide an Array and not Null")
  Some(items) -> Ok(items)
`
	expected := ast.Prog(ast.When(ast.Dollar("input"),
		ast.ArmE(ast.PCtor("Null", nil), ast.Ctor("Error", ast.Txt("Provide an Array and not Null"))),
		ast.ArmE(ast.PCtor("Some", ast.ID("items")), ast.Ctor("Ok", ast.ID("items"))),
	))
	assertScriptsEqual(t, expected, mustParse(t, source))
}

func TestParseWhenInlineArms(t *testing.T) {
	source := "when n is 0 -> Ok(:zero) | -1 -> Ok(:minus) | _ -> Error(\"other\")\n"
	expected := ast.Prog(ast.When(ast.ID("n"),
		ast.ArmE(ast.PLit(ast.Num(0)), ast.Ctor("Ok", ast.Atm("zero"))),
		ast.ArmE(ast.PLit(ast.Num(-1)), ast.Ctor("Ok", ast.Atm("minus"))),
		ast.ArmE(ast.Wc(), ast.Ctor("Error", ast.Txt("other"))),
	))
	assertScriptsEqual(t, expected, mustParse(t, source))
}

func TestParseWhenBindingFollowedByStatement(t *testing.T) {
	source := `kind = when flag is
  True -> :yes
  False -> :no
Ok(kind)
`
	script := mustParse(t, source)
	if len(script.Body.Bindings) != 1 {
		t.Fatalf("expected one binding, got %d", len(script.Body.Bindings))
	}
	if _, ok := script.Body.Result.(*ast.TaggedConstructor); !ok {
		t.Fatalf("expected Ok result, got %T", script.Body.Result)
	}
}

func TestParseAndOrDesugar(t *testing.T) {
	script := mustParse(t, "Ok(a and b or c)\n")
	orWhen := script.Body.Result.(*ast.TaggedConstructor).Payload.(*ast.WhenIs)
	if len(orWhen.Arms) != 2 {
		t.Fatalf("expected two arms, got %d", len(orWhen.Arms))
	}
	andWhen, ok := orWhen.Subject.(*ast.WhenIs)
	if !ok {
		t.Fatalf("expected 'and' to bind tighter than 'or', got %T", orWhen.Subject)
	}
	if pat := andWhen.Arms[0].Pattern.(*ast.ConstructorPattern); pat.Name != "True" {
		t.Fatalf("expected True arm first, got %s", pat.Name)
	}
	if body := andWhen.Arms[1].Body.(*ast.TaggedConstructor); body.Name != "False" {
		t.Fatalf("expected False fallback for 'and', got %s", body.Name)
	}
	if body := orWhen.Arms[0].Body.(*ast.TaggedConstructor); body.Name != "True" {
		t.Fatalf("expected True short-circuit for 'or', got %s", body.Name)
	}
}

func TestParseLambdaForms(t *testing.T) {
	source := `add = (a, b) -> a + b
konst = () -> 1
scale = x ->
  factor = 2
  x * factor
Ok(add(konst(), scale(3)))
`
	expected := ast.Prog(
		ast.Ctor("Ok", ast.CallE(ast.ID("add"), ast.CallE(ast.ID("konst")), ast.CallE(ast.ID("scale"), ast.Num(3)))),
		ast.Bind("add", ast.Lam([]string{"a", "b"}, ast.Op("+", ast.ID("a"), ast.ID("b")))),
		ast.Bind("konst", ast.Lam(nil, ast.Num(1))),
		ast.Bind("scale", ast.Lam([]string{"x"}, ast.Blk(
			ast.Op("*", ast.ID("x"), ast.ID("factor")),
			ast.Bind("factor", ast.Num(2)),
		))),
	)
	assertScriptsEqual(t, expected, mustParse(t, source))
}

func TestParseTypeDeclaration(t *testing.T) {
	source := `type Shape = Circle(Number) | Square({side: Number}) | Empty
Ok(Circle(1))
`
	script := mustParse(t, source)
	if len(script.Types) != 1 {
		t.Fatalf("expected one type declaration, got %d", len(script.Types))
	}
	decl := script.Types[0]
	if decl.Name.Name != "Shape" || len(decl.Variants) != 3 {
		t.Fatalf("unexpected declaration: %#v", decl)
	}
	if _, ok := decl.Variants[1].Payload.(*ast.RecordTypeRef); !ok {
		t.Fatalf("expected record payload, got %T", decl.Variants[1].Payload)
	}
	if decl.Variants[2].Payload != nil {
		t.Fatalf("expected Empty without payload")
	}
}

func TestParseLineContinuation(t *testing.T) {
	source := `prices = $input
  & $map(item -> item.price)
total = prices
  & $sum
Ok(total)
`
	script := mustParse(t, source)
	if len(script.Body.Bindings) != 2 {
		t.Fatalf("expected two bindings, got %d", len(script.Body.Bindings))
	}
	if _, ok := script.Body.Bindings[0].Value.(*ast.Pipe); !ok {
		t.Fatalf("expected continued pipe, got %T", script.Body.Bindings[0].Value)
	}
}

func TestParsePostfixAndStop(t *testing.T) {
	script := mustParse(t, "value = Text.toNumber(raw)?\nwhen value > 0 is True -> Ok(value) | False -> stop \"negative\"\n")
	if _, ok := script.Body.Bindings[0].Value.(*ast.Propagate); !ok {
		t.Fatalf("expected propagate, got %T", script.Body.Bindings[0].Value)
	}
	when := script.Body.Result.(*ast.WhenIs)
	if _, ok := when.Arms[1].Body.(*ast.Stop); !ok {
		t.Fatalf("expected stop, got %T", when.Arms[1].Body)
	}
}

func TestParseSpans(t *testing.T) {
	script := mustParse(t, "x = 1\nOk(x)\n")
	binding := script.Body.Bindings[0]
	checkSpan(t, "binding", binding.Span(), 1, 1, 1, 6)
	checkSpan(t, "result", script.Body.Result.Span(), 2, 1, 2, 6)
}

func checkSpan(t testing.TB, label string, span ast.Span, startLine, startCol, endLine, endCol int) {
	t.Helper()
	if span.Start.Line != startLine || span.Start.Column != startCol {
		t.Fatalf("%s start span mismatch: got (%d,%d), want (%d,%d)", label, span.Start.Line, span.Start.Column, startLine, startCol)
	}
	if span.End.Line != endLine || span.End.Column != endCol {
		t.Fatalf("%s end span mismatch: got (%d,%d), want (%d,%d)", label, span.End.Line, span.End.Column, endLine, endCol)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	source := `type Status = Active | Archived(Text)
rows = $input & $filter(r -> r.active and r.score >= 10)
Ok(rows & $map(r -> {name: r.name, score: Number.round(r.score)}))
`
	first := mustParse(t, source)
	second := mustParse(t, source)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("parsing the same source twice produced different trees")
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name     string
		source   string
		fragment string
	}{
		{"missing result", "x = 1\n", "must end with a result expression"},
		{"chained comparison", "Ok(1 < 2 < 3)\n", "cannot be chained"},
		{"constructor arity", "Ok(1, 2)\n", "exactly one payload"},
		{"unterminated text", "Ok(\"abc)\n", "unterminated text literal"},
		{"tab indentation", "f = x ->\n\tx\nOk(f(1))\n", "tabs are not allowed"},
		{"duplicate field", "Ok({a: 1, a: 2})\n", "duplicate record field"},
		{"duplicate parameter", "f = (a, a) -> a\nOk(f(1, 2))\n", "duplicate parameter"},
		{"two results", "Ok(1)\nOk(2)\n", "bare expression"},
		{"type after result", "Ok(1)\ntype Flag = On | Off\n", "type declarations must come before"},
		{"bad pattern", "when x is + -> Ok(1)\n", "expected a pattern"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectSyntaxError(t, tc.source, tc.fragment)
		})
	}
}

func TestParserCollectsErrorsAcrossStatements(t *testing.T) {
	p := New("a = 1 2\nb = )\nOk(1 < 2 < 3)\n")
	p.ParseScript()
	if len(p.Errors()) != 3 {
		t.Fatalf("expected several errors, got %v", p.Errors())
	}
	errs := p.Errors()
	for i := 1; i < len(errs); i++ {
		if errs[i].Span.Start.Offset < errs[i-1].Span.Start.Offset {
			t.Fatalf("errors not in source order: %v", errs)
		}
	}
}
