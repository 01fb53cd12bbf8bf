package interpreter

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap/zaptest"

	"github.com/Airsequel/AirScript/pkg/ast"
	"github.com/Airsequel/AirScript/pkg/match"
	"github.com/Airsequel/AirScript/pkg/parser"
	"github.com/Airsequel/AirScript/pkg/runtime"
	"github.com/Airsequel/AirScript/pkg/typechecker"
)

var generous = runtime.Budget{MaxCycles: 1_000_000, MaxMemoryBytes: 1 << 30, MaxWallTime: time.Minute}

func prepare(t testing.TB, source string, env *runtime.Environment) *typechecker.TypedScript {
	t.Helper()
	script, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	host, err := typechecker.HostTypesOf(env)
	if err != nil {
		t.Fatalf("host types: %v", err)
	}
	typed, err := typechecker.Infer(script, host)
	if err != nil {
		t.Fatalf("type error: %v", err)
	}
	desugared, err := match.Desugar(typed)
	if err != nil {
		t.Fatalf("match error: %v", err)
	}
	return desugared
}

func run(t testing.TB, source string, env *runtime.Environment, budget runtime.Budget, opts ...Option) runtime.ExecutionResult {
	t.Helper()
	result, err := CompileAndRun(prepare(t, source, env), env, budget, opts...)
	if err != nil {
		t.Fatalf("unexpected evaluator error: %v", err)
	}
	return result
}

func expectResult(t *testing.T, got runtime.ExecutionResult, want string) {
	t.Helper()
	if got.String() != want {
		t.Fatalf("result = %s, want %s", got, want)
	}
}

func inputEnv(v runtime.Value) *runtime.Environment {
	return runtime.NewEnvironment(map[string]runtime.Value{"input": v})
}

func TestNormalizesValues(t *testing.T) {
	result := run(t, `values = [1, 3]
total = values & $sum
Ok(values & $map(v -> v / total))
`, nil, generous, WithLogger(zaptest.NewLogger(t)))
	expectResult(t, result, "Ok([0.25, 0.75])")
	if result.Usage.Cycles == 0 || result.Usage.MemoryBytes == 0 {
		t.Fatalf("expected usage to be recorded, got %+v", result.Usage)
	}
}

const nullGuard = `when $input is
  Null -> Error("Provide an Array and not Null")
  Some(items) -> Ok(items & $sum)
`

func TestNullInputEndsWithError(t *testing.T) {
	expectResult(t, run(t, nullGuard, inputEnv(runtime.Null), generous), `Error("Provide an Array and not Null")`)
}

func TestHostValuesAreBound(t *testing.T) {
	record := runtime.NewRecord([]runtime.RecordEntry{{Name: "total", Value: runtime.Number(20)}})
	expectResult(t, run(t, "Ok($input.total * 2)\n", inputEnv(record), generous), "Ok(40)")
}

func TestCycleBudgetAborts(t *testing.T) {
	budget := generous
	budget.MaxCycles = 1000
	result := run(t, "Ok(List.range(0, 100000) & $map(x -> x * 2) & $sum)\n", nil, budget)
	expectResult(t, result, "Aborted(Cycles)")
	if result.Value != nil {
		t.Fatalf("an aborted result must not carry a value")
	}
}

func TestMemoryBudgetAborts(t *testing.T) {
	budget := generous
	budget.MaxMemoryBytes = 1024
	expectResult(t, run(t, "Ok(List.range(0, 1000000) & $length)\n", nil, budget), "Aborted(Memory)")
}

func TestAllocDoesNotOverflow(t *testing.T) {
	budget := generous
	budget.MaxMemoryBytes = math.MaxInt64
	m := newMachine(budget, clock.NewMock())
	if err := m.Alloc(math.MaxInt64 / 2); err != nil {
		t.Fatalf("first charge: %v", err)
	}
	var exceeded *budgetExceeded
	if err := m.Alloc(math.MaxInt64/2 + 2); !errors.As(err, &exceeded) || exceeded.kind != runtime.BudgetMemory {
		t.Fatalf("expected a memory abort, got %v", err)
	}
	if m.memory != math.MaxInt64 {
		t.Fatalf("usage = %d, want the limit", m.memory)
	}
}

// advancingClock moves forward every time it is read.
type advancingClock struct {
	*clock.Mock
	tick time.Duration
}

func (c *advancingClock) Now() time.Time {
	c.Mock.Add(c.tick)
	return c.Mock.Now()
}

func TestWallTimeBudgetAborts(t *testing.T) {
	budget := generous
	budget.MaxWallTime = 10 * time.Millisecond
	clk := &advancingClock{Mock: clock.NewMock(), tick: time.Millisecond}
	result := run(t, "Ok(List.range(0, 1000) & $map(x -> x + 1) & $sum)\n", nil, budget, WithClock(clk))
	expectResult(t, result, "Aborted(Time)")
}

func TestStopInsideCallbackEndsInvocation(t *testing.T) {
	result := run(t, `checked = [1, 2, 3] & $map(x -> when x > 1 is True -> stop "too big" | False -> x)
Ok(checked)
`, nil, generous)
	expectResult(t, result, `Error("too big")`)
}

func TestPropagateStopsWithTheError(t *testing.T) {
	expectResult(t, run(t, "n = Text.toNumber(\"abc\")?\nOk(n + 1)\n", nil, generous), `Error("not a number: \"abc\"")`)
	expectResult(t, run(t, "n = Text.toNumber(\"41\")?\nOk(n + 1)\n", nil, generous), "Ok(42)")
}

func TestPreludeFailureEndsWithError(t *testing.T) {
	expectResult(t, run(t, "Ok(1 / 0)\n", nil, generous), `Error("division by zero")`)
}

func TestComposeMatchesNestedCalls(t *testing.T) {
	source := `double = x -> x * 2
inc = x -> x + 1
Ok([double@inc(3), double(inc(3)), 3 & double@inc])
`
	expectResult(t, run(t, source, nil, generous), "Ok([8, 8, 8])")
}

func TestClosuresCaptureThroughNestedFunctions(t *testing.T) {
	source := `outer = a -> (b -> (c -> a * 100 + b * 10 + c))
make = n -> (x -> x + n)
add2 = make(2)
Ok([outer(1)(2)(3), add2(3)])
`
	expectResult(t, run(t, source, nil, generous), "Ok([123, 5])")
}

func TestDeclaredSumsAndRecords(t *testing.T) {
	source := `type Shape = Circle(Number) | Square(Number) | Empty
area = s -> when s is
  Circle(r) -> r * r * 3
  Square(side) -> side * side
  Empty -> 0
shapes = [Circle(1), Square(2), Empty]
Ok({total: shapes & $map(area) & $sum, label: :area})
`
	expectResult(t, run(t, source, nil, generous), "Ok({label: :area, total: 7})")
}

func TestBindingsRunInDependencyOrder(t *testing.T) {
	expectResult(t, run(t, "b = a * 2\na = 20\nOk(b)\n", nil, generous), "Ok(40)")
}

func TestExecutionIsDeterministic(t *testing.T) {
	source := `rows = List.range(0, 50) & $map(i -> {id: i, even: i % 2 == 0})
Ok(rows & $filter(r -> r.even) & $map(r -> r.id) & $sum)
`
	first := run(t, source, nil, generous)
	second := run(t, source, nil, generous)
	if !first.Same(second) {
		t.Fatalf("results differ: %s vs %s", first, second)
	}
	if first.Usage.Cycles != second.Usage.Cycles || first.Usage.MemoryBytes != second.Usage.MemoryBytes {
		t.Fatalf("usage differs: %+v vs %+v", first.Usage, second.Usage)
	}
}

func TestUnitRunsOnce(t *testing.T) {
	unit, err := Compile(prepare(t, "Ok(1)\n", nil), nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := unit.Run(generous); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := unit.Run(generous); !errors.Is(err, ErrContractViolation) {
		t.Fatalf("expected a contract violation on reuse, got %v", err)
	}
}

func TestRejectsInvalidBudget(t *testing.T) {
	unit, err := Compile(prepare(t, "Ok(1)\n", nil), nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := unit.Run(runtime.Budget{MaxCycles: 10}); err == nil {
		t.Fatalf("expected an error for a budget with zero limits")
	}
}

func TestNonResultTerminalIsAContractViolation(t *testing.T) {
	script := ast.Prog(ast.Num(1))
	typed := &typechecker.TypedScript{
		Script: script,
		Order:  map[*ast.Block][]*ast.Binding{script.Body: {}},
	}
	_, err := CompileAndRun(typed, nil, generous)
	if !errors.Is(err, ErrContractViolation) {
		t.Fatalf("expected a contract violation, got %v", err)
	}
}

func TestCompileRejectsUndesugaredWhen(t *testing.T) {
	script, err := parser.Parse("Ok(when 1 is _ -> 2)\n")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	typed, err := typechecker.Infer(script, nil)
	if err != nil {
		t.Fatalf("type error: %v", err)
	}
	if _, err := Compile(typed, nil); !errors.Is(err, ErrContractViolation) {
		t.Fatalf("expected a contract violation, got %v", err)
	}
}
