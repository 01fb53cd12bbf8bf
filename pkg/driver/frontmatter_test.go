package driver

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Airsequel/AirScript/pkg/engine"
	"github.com/Airsequel/AirScript/pkg/runtime"
	"github.com/Airsequel/AirScript/pkg/typechecker"
)

func TestSplitFrontmatter(t *testing.T) {
	source := `---
description: Sum of prices
tags: [pricing, demo]
files:
  prices: data/*.json
constants:
  factor: 2
budget:
  cycles: 5000
  memory: 1MiB
  time: 250ms
---
Ok($prices & $sum)
`
	fm, body, err := SplitFrontmatter(source)
	require.NoError(t, err)
	require.Equal(t, "Sum of prices", fm.Description)
	require.Equal(t, []string{"pricing", "demo"}, fm.Tags)
	require.Equal(t, map[string]string{"prices": "data/*.json"}, fm.Files)
	require.Equal(t, 2, fm.Constants["factor"])
	require.Equal(t, BudgetSpec{Cycles: 5000, Memory: "1MiB", Time: "250ms"}, fm.Budget)

	lines := strings.Split(body, "\n")
	require.Equal(t, "Ok($prices & $sum)", lines[12], "the body keeps its line number")
	for _, line := range lines[:12] {
		require.Empty(t, line)
	}
}

func TestFrontmatterBodyReportsSourceLines(t *testing.T) {
	_, body, err := SplitFrontmatter("---\ndescription: broken\ntags: [demo]\n---\nx = 1\nOk(x + \"a\")\n")
	require.NoError(t, err)

	_, err = engine.Check(body, nil)
	var typeErr *typechecker.TypeError
	require.True(t, errors.As(err, &typeErr), "got %v", err)
	require.Equal(t, 6, typeErr.Primary.Start.Line)
}

func TestSplitFrontmatterWithoutHeader(t *testing.T) {
	fm, body, err := SplitFrontmatter("Ok(1)\n")
	require.NoError(t, err)
	require.Equal(t, "Ok(1)\n", body)
	require.Empty(t, fm.Files)
}

func TestSplitFrontmatterErrors(t *testing.T) {
	cases := map[string]string{
		"unclosed":       "---\ndescription: x\nOk(1)\n",
		"unknown field":  "---\nauthor: me\n---\nOk(1)\n",
		"reserved input": "---\nfiles:\n  input: a.json\n---\nOk(1)\n",
		"prelude global": "---\nconstants:\n  map: 1\n---\nOk(1)\n",
		"uppercase name": "---\nconstants:\n  Factor: 1\n---\nOk(1)\n",
		"file and const": "---\nfiles:\n  a: a.json\nconstants:\n  a: 1\n---\nOk(1)\n",
	}
	for name, source := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := SplitFrontmatter(source)
			require.Error(t, err)
		})
	}
}

func TestBudgetSpecApply(t *testing.T) {
	base := runtime.Budget{MaxCycles: 10, MaxMemoryBytes: 20, MaxWallTime: time.Second}

	got, err := BudgetSpec{}.Apply(base)
	require.NoError(t, err)
	require.Equal(t, base, got)

	got, err = BudgetSpec{Cycles: 99, Memory: "64MB", Time: "1m"}.Apply(base)
	require.NoError(t, err)
	require.Equal(t, runtime.Budget{MaxCycles: 99, MaxMemoryBytes: 64_000_000, MaxWallTime: time.Minute}, got)

	_, err = BudgetSpec{Memory: "lots"}.Apply(base)
	require.Error(t, err)
	_, err = BudgetSpec{Time: "-1s"}.Apply(base)
	require.Error(t, err)
	_, err = BudgetSpec{Cycles: -1}.Apply(base)
	require.Error(t, err)
}
