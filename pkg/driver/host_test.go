package driver

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Airsequel/AirScript/pkg/engine"
	"github.com/Airsequel/AirScript/pkg/runtime"
)

const priceShares = `---
description: Share of the total per row
tags: [pricing]
---
shares = rows ->
  total = rows & $map(row -> row.price) & $sum
  rows & $map(row -> row.price / total)
when $input is
  Null -> Error("Provide an Array and not Null")
  Some(rows) -> Ok(shares(rows))
`

func newTestHost(t *testing.T, config Config) (*Host, *Metrics) {
	t.Helper()
	if config.Clock == nil {
		config.Clock = clock.NewMock()
	}
	metrics := NewMetrics()
	return NewHost(config, zaptest.NewLogger(t), metrics), metrics
}

func render(o Outcome) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Render(o, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestInvokeRendersOkToStdout(t *testing.T) {
	host, metrics := newTestHost(t, Config{})
	out := host.Invoke(context.Background(), Request{
		Name:   "shares.air",
		Source: priceShares,
		Input:  []byte(`[{"price": 10}, {"price": 30}]`),
	})
	require.NoError(t, out.Err)
	require.Equal(t, "Ok([0.25, 0.75])", out.Result.String())
	require.Equal(t, "Share of the total per row", out.Frontmatter.Description)

	code, stdout, stderr := render(out)
	require.Equal(t, ExitOk, code)
	require.Equal(t, "[0.25,0.75]\n", stdout)
	require.Empty(t, stderr)

	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Invocations.WithLabelValues(LabelOk)))
}

func TestInvokeRoutesErrorToStderr(t *testing.T) {
	host, metrics := newTestHost(t, Config{})
	out := host.Invoke(context.Background(), Request{Name: "shares.air", Source: priceShares})
	require.NoError(t, out.Err)

	code, stdout, stderr := render(out)
	require.Equal(t, ExitError, code)
	require.Empty(t, stdout)
	require.Equal(t, "Error: Provide an Array and not Null\n", stderr)
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Invocations.WithLabelValues(LabelError)))
}

func TestInvokeBindsFilesAndConstants(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data/a.json", `{"price": 10}`)
	writeFile(t, dir, "data/b.json", `{"price": 30}`)
	writeFile(t, dir, "report.air", `---
files:
  rows: data/*.json
constants:
  factor: 2
---
Ok(($rows & $map(row -> row.price) & $sum) * $factor)
`)
	req, err := LoadRequest(filepath.Join(dir, "report.air"), nil)
	require.NoError(t, err)

	host, _ := newTestHost(t, Config{})
	out := host.Invoke(context.Background(), req)
	require.NoError(t, out.Err)
	require.Equal(t, "Ok(80)", out.Result.String())
}

func TestInvokeBudgetPrecedence(t *testing.T) {
	source := "---\nbudget:\n  cycles: 1000000000\n  memory: 1KiB\n---\nOk(1)\n"
	host, _ := newTestHost(t, Config{
		Budget:    runtime.Budget{MaxCycles: 10, MaxMemoryBytes: 10, MaxWallTime: time.Second},
		MaxBudget: runtime.Budget{MaxCycles: 500},
	})
	out := host.Invoke(context.Background(), Request{Source: source, Budget: runtime.Budget{MaxWallTime: time.Minute}})
	require.NoError(t, out.Err)
	require.Equal(t, runtime.Budget{MaxCycles: 500, MaxMemoryBytes: 1024, MaxWallTime: time.Minute}, out.Budget)
}

func TestInvokeAbortsOnFrontmatterBudget(t *testing.T) {
	source := "---\nbudget:\n  cycles: 200\n---\nOk(List.range(0, 10000) & $map(x -> x * 2) & $sum)\n"
	host, metrics := newTestHost(t, Config{})
	out := host.Invoke(context.Background(), Request{Source: source})
	require.NoError(t, out.Err)

	code, stdout, stderr := render(out)
	require.Equal(t, ExitAborted, code)
	require.Empty(t, stdout)
	require.Equal(t, "Aborted: Cycles budget exceeded\n", stderr)
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Invocations.WithLabelValues(LabelAborted)))
}

func TestInvokeRejections(t *testing.T) {
	cases := []struct {
		name   string
		source string
		stage  engine.Stage
		code   int
	}{
		{"syntax", "a = 1 2\nb = )\nOk(a)\n", engine.StageParse, ExitRejected},
		{"type", "Ok(1 + \"x\")\n", engine.StageType, ExitRejected},
		{"recursion", "f = x -> f(x)\nOk(f(1))\n", engine.StageType, ExitRejected},
		{"match", "Ok(when 1 > 2 is True -> 1)\n", engine.StageMatch, ExitRejected},
		{"missing file", "---\nfiles:\n  rows: none/*.json\n---\nOk(1)\n", StageHost, ExitHost},
		{"bad input", "Ok(1)\n", StageHost, ExitHost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			host, _ := newTestHost(t, Config{})
			req := Request{Source: tc.source, Dir: t.TempDir()}
			if tc.name == "bad input" {
				req.Input = []byte("{not json")
			}
			out := host.Invoke(context.Background(), req)
			require.Error(t, out.Err)
			require.Equal(t, tc.stage, out.Stage)

			code, stdout, stderr := render(out)
			require.Equal(t, tc.code, code)
			require.Empty(t, stdout)
			require.NotEmpty(t, stderr)
		})
	}
}

func TestRenderListsEverySyntaxError(t *testing.T) {
	host, _ := newTestHost(t, Config{})
	out := host.Invoke(context.Background(), Request{Source: "a = 1 2\nb = )\nOk(1 < 2 < 3)\n"})
	_, _, stderr := render(out)
	require.Equal(t, 3, bytes.Count([]byte(stderr), []byte("syntax error at")))
}

func TestInvokeSkipsCancelledRequests(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	host, _ := newTestHost(t, Config{})
	out := host.Invoke(ctx, Request{Source: "Ok(1)\n"})
	require.ErrorIs(t, out.Err, context.Canceled)
	require.Equal(t, LabelHost, out.Label())
}

func TestInvokeBatchKeepsOrder(t *testing.T) {
	host, metrics := newTestHost(t, Config{Concurrency: 2})
	reqs := make([]Request, 8)
	for i := range reqs {
		reqs[i] = Request{
			Name:   fmt.Sprintf("job-%d", i),
			Source: "when $input is\n  Null -> Error(\"none\")\n  Some(n) -> Ok(n * 10)\n",
			Input:  []byte(fmt.Sprint(i)),
		}
	}
	outcomes := host.InvokeBatch(context.Background(), reqs)
	require.Len(t, outcomes, len(reqs))
	for i, out := range outcomes {
		require.NoError(t, out.Err)
		require.Equal(t, reqs[i].Name, out.Name)
		require.Equal(t, fmt.Sprintf("Ok(%d)", i*10), out.Result.String())
		require.Equal(t, runtime.VariantFootprint+runtime.NumberFootprint, out.InputBytes)
	}
	require.Equal(t, float64(len(reqs)), testutil.ToFloat64(metrics.Invocations.WithLabelValues(LabelOk)))
}

func TestWriteJSONReplacesNonFiniteNumbers(t *testing.T) {
	var buf bytes.Buffer
	value := runtime.NewRecord([]runtime.RecordEntry{
		{Name: "ratio", Value: runtime.Number(math.Inf(1))},
		{Name: "rows", Value: runtime.NewList([]runtime.Value{runtime.Number(math.NaN()), runtime.Number(1)})},
		{Name: "tag", Value: runtime.Some(runtime.Text("<a>"))},
	})
	require.NoError(t, WriteJSON(&buf, value))
	require.Equal(t, `{"ratio":null,"rows":[null,1],"tag":"<a>"}`+"\n", buf.String())
}

func TestMetricsCollectors(t *testing.T) {
	metrics := NewMetrics()
	require.Len(t, metrics.PrometheusCollectors(), 4)
}

func TestCheckDoesNotRun(t *testing.T) {
	host, metrics := newTestHost(t, Config{})
	out := host.Check(Request{Source: "Ok(List.range(0, 100000000) & $sum)\n"})
	require.NoError(t, out.Err)
	require.Equal(t, runtime.ExecutionResult{}, out.Result)
	require.Equal(t, 0.0, testutil.ToFloat64(metrics.Invocations.WithLabelValues(LabelOk)))

	out = host.Check(Request{Source: "Ok(1 + \"x\")\n"})
	require.Equal(t, engine.StageType, out.Stage)
}

func TestInvokeRejectsMixedFileValues(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data/a.json", `1`)
	writeFile(t, dir, "data/b.json", `"two"`)
	host, _ := newTestHost(t, Config{})
	out := host.Invoke(context.Background(), Request{
		Source: "---\nfiles:\n  rows: data/*.json\n---\nOk(1)\n",
		Dir:    dir,
	})
	require.Equal(t, StageHost, out.Stage)
	require.Equal(t, ExitHost, ExitCode(out))
}
