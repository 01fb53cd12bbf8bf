package match

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Airsequel/AirScript/pkg/ast"
	"github.com/Airsequel/AirScript/pkg/parser"
	"github.com/Airsequel/AirScript/pkg/runtime"
	"github.com/Airsequel/AirScript/pkg/typechecker"
)

func mustType(t testing.TB, source string, input runtime.Value) *typechecker.TypedScript {
	t.Helper()
	script, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var host typechecker.HostTypes
	if input != nil {
		scheme, err := typechecker.TypeOfValue(input)
		if err != nil {
			t.Fatalf("TypeOfValue: %v", err)
		}
		host = typechecker.HostTypes{"input": scheme}
	}
	typed, err := typechecker.Infer(script, host)
	if err != nil {
		t.Fatalf("type error: %v", err)
	}
	return typed
}

func expectMissing(t *testing.T, source string, input runtime.Value, want ...string) {
	t.Helper()
	_, err := Desugar(mustType(t, source, input))
	var nonExhaustive *NonExhaustiveMatchError
	if !errors.As(err, &nonExhaustive) {
		t.Fatalf("expected NonExhaustiveMatchError, got %v", err)
	}
	if !reflect.DeepEqual(nonExhaustive.Missing, want) {
		t.Fatalf("missing = %v, want %v", nonExhaustive.Missing, want)
	}
}

func TestMissingNullVariant(t *testing.T) {
	expectMissing(t, `when $input is
  Some(items) -> Ok(items)
`, runtime.Null, "Null")
}

func TestMissingBooleanVariant(t *testing.T) {
	expectMissing(t, "Ok(when 1 > 2 is True -> 1)\n", nil, "False")
}

func TestMissingNestedVariant(t *testing.T) {
	expectMissing(t, `r = Ok(Some(1))
when r is
  Ok(Some(n)) -> Ok(n)
  Error(message) -> Error(message)
`, nil, "Ok(Null)")
}

func TestMissingDeclaredVariantsInRegistrationOrder(t *testing.T) {
	expectMissing(t, `type Shape = Circle(Number) | Square(Number) | Empty
s = Square(2)
Ok(when s is Square(x) -> x)
`, nil, "Circle", "Empty")
}

func TestOpenUnionNeedsWildcard(t *testing.T) {
	expectMissing(t, `tag = Pending(1)
Ok(when tag is Pending(n) -> n)
`, nil, "_")
}

func TestLiteralPatternsNeedWildcard(t *testing.T) {
	expectMissing(t, "Ok(when 3 is 0 -> :zero | 1 -> :one)\n", nil, "_")
}

func TestShorthandCoversEveryPayload(t *testing.T) {
	typed := mustType(t, `r = Ok(Some(1))
when r is
  Ok -> Ok(1)
  Error -> Ok(0)
`, nil)
	if _, err := Desugar(typed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDesugarRewritesWhenIntoMatch(t *testing.T) {
	typed := mustType(t, `when $input is
  Null -> Error("Provide an Array and not Null")
  Some(items) -> Ok(items & $sum)
`, runtime.Null)
	out, err := Desugar(typed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	match, ok := out.Script.Body.Result.(*ast.Match)
	if !ok {
		t.Fatalf("expected Match, got %T", out.Script.Body.Result)
	}
	if len(match.Clauses) != 2 {
		t.Fatalf("expected two clauses, got %d", len(match.Clauses))
	}
	if first := match.Clauses[0].Pattern.(*ast.ConstructorPattern); first.Name != "Null" {
		t.Fatalf("clauses must keep source order, got %s first", first.Name)
	}
	if _, ok := out.TypeOf(match); !ok {
		t.Fatalf("types were not carried over to the Match node")
	}
	if _, ok := out.TypeOf(match.Subject); !ok {
		t.Fatalf("types were not carried over to the subject")
	}
	if _, ok := typed.Script.Body.Result.(*ast.WhenIs); !ok {
		t.Fatalf("input script was modified")
	}
	ast.Inspect(out.Script, func(n ast.Node) bool {
		if _, ok := n.(*ast.WhenIs); ok {
			t.Fatalf("WhenIs survived desugaring")
		}
		return true
	})
}

func TestDesugarCarriesEvaluationOrder(t *testing.T) {
	typed := mustType(t, "b = a + 1\na = 2\nOk(when b is 3 -> :three | _ -> :other)\n", nil)
	out, err := Desugar(typed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	order := out.Order[out.Script.Body]
	if len(order) != 2 || order[0] != out.Script.Body.Bindings[1] {
		t.Fatalf("evaluation order does not point at the rewritten bindings")
	}
}
