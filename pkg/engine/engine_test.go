package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"

	"github.com/Airsequel/AirScript/pkg/interpreter"
	"github.com/Airsequel/AirScript/pkg/parser"
	"github.com/Airsequel/AirScript/pkg/runtime"
)

var budget = runtime.Budget{MaxCycles: 100_000, MaxMemoryBytes: 1 << 24, MaxWallTime: time.Minute}

func TestRunPipeline(t *testing.T) {
	e := New(zaptest.NewLogger(t))
	env := runtime.NewEnvironment(map[string]runtime.Value{
		"input": runtime.Some(runtime.NewList([]runtime.Value{runtime.Number(1), runtime.Number(2)})),
	})
	result, err := e.Run(`when $input is
  Null -> Error("Provide an Array and not Null")
  Some(items) -> Ok(items & $sum)
`, env, budget)
	require.NoError(t, err)
	require.Equal(t, "Ok(3)", result.String())
}

func TestRunFieldAccessForEitherInput(t *testing.T) {
	const source = `shares = rows ->
  total = rows & $map(row -> row.price) & $sum
  rows & $map(row -> row.price / total)
when $input is
  Null -> Error("Provide an Array and not Null")
  Some(rows) -> Ok(shares(rows))
`
	row := func(price float64) runtime.Value {
		return runtime.NewRecord([]runtime.RecordEntry{{Name: "price", Value: runtime.Number(price)}})
	}
	e := New(zaptest.NewLogger(t))

	rows := runtime.NewList([]runtime.Value{row(10), row(30)})
	result, err := e.Run(source, runtime.NewEnvironment(map[string]runtime.Value{"input": runtime.Some(rows)}), budget)
	require.NoError(t, err)
	require.Equal(t, "Ok([0.25, 0.75])", result.String())

	result, err = e.Run(source, runtime.NewEnvironment(map[string]runtime.Value{"input": runtime.Null}), budget)
	require.NoError(t, err)
	require.Equal(t, `Error("Provide an Array and not Null")`, result.String())
}

func TestParseCombinesSyntaxErrors(t *testing.T) {
	_, err := Parse("a = 1 2\nb = )\nOk(1 < 2 < 3)\n")
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 3)
	var syntaxErr *parser.SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	require.Equal(t, 1, syntaxErr.Span.Start.Line)
}

func TestStageOf(t *testing.T) {
	cases := map[string]Stage{
		"a = \n":                        StageParse,
		"Ok(1 + \"x\")\n":               StageType,
		"f = x -> f(x)\nOk(1)\n":        StageType,
		"Ok(when 1 > 2 is True -> 1)\n": StageMatch,
	}
	for source, want := range cases {
		_, err := Check(source, nil)
		require.Error(t, err, source)
		require.Equal(t, want, StageOf(err), source)
	}
	require.Equal(t, StageInternal, StageOf(interpreter.ErrContractViolation))
}

func TestRunReportsAbortsAsResults(t *testing.T) {
	tight := budget
	tight.MaxCycles = 50
	result, err := New(nil).Run("Ok(List.range(0, 1000) & $map(x -> x + 1))\n", nil, tight)
	require.NoError(t, err)
	require.Equal(t, runtime.StatusAborted, result.Status)
	require.Equal(t, runtime.BudgetCycles, result.Abort)
}

func TestRunRejectsUntypeableHostValues(t *testing.T) {
	env := runtime.NewEnvironment(map[string]runtime.Value{
		"rows": runtime.NewList([]runtime.Value{runtime.Number(1), runtime.Text("a")}),
	})
	_, err := New(nil).Run("Ok(1)\n", env, budget)
	require.ErrorIs(t, err, ErrHostBinding)
	require.Equal(t, StageHost, StageOf(err))
}

func TestRunRejectsHostBindingsNamedLikePreludeGlobals(t *testing.T) {
	env := runtime.NewEnvironment(map[string]runtime.Value{
		"map": runtime.Number(1),
	})
	_, err := New(nil).Run("Ok($map)\n", env, budget)
	require.ErrorIs(t, err, ErrHostBinding)
	require.Contains(t, err.Error(), "List.map")
}
