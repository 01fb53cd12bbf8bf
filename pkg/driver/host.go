// Package driver is the host side of AirScript: it reads frontmatter, binds
// files, constants and stdin into an environment, picks the budget, runs the
// engine and renders the outcome.
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Airsequel/AirScript/pkg/engine"
	"github.com/Airsequel/AirScript/pkg/interpreter"
	"github.com/Airsequel/AirScript/pkg/runtime"
	"github.com/Airsequel/AirScript/pkg/typechecker"
)

// StageHost marks failures in preparing the invocation: unreadable files,
// bad frontmatter, malformed input or untypeable bindings.
const StageHost = engine.StageHost

// DefaultBudget is used when neither the config nor the script sets one.
var DefaultBudget = runtime.Budget{
	MaxCycles:      10_000_000,
	MaxMemoryBytes: 256 << 20,
	MaxWallTime:    10 * time.Second,
}

type Config struct {
	// Budget is the starting budget; frontmatter and requests override it.
	Budget runtime.Budget
	// MaxBudget caps whatever the script asks for. Zero fields do not cap.
	MaxBudget runtime.Budget
	// Concurrency bounds InvokeBatch. Zero or less means unbounded.
	Concurrency int
	Clock       clock.Clock
}

// Request is one invocation.
type Request struct {
	Name   string
	Source string
	// Dir anchors frontmatter globs.
	Dir string
	// Input is the raw stdin payload bound to $input.
	Input []byte
	// Budget overrides individual limits. Zero fields are ignored.
	Budget runtime.Budget
}

// Outcome is what Invoke produced. Err is set when the script was rejected
// or could not be prepared; Result is meaningful only when Err is nil.
type Outcome struct {
	Name        string
	Hash        uint64
	Frontmatter *Frontmatter
	Budget      runtime.Budget
	Result      runtime.ExecutionResult
	Err         error
	Stage       engine.Stage
	Elapsed     time.Duration
	// InputBytes is the footprint of the host bindings. It is reported, not
	// charged to the budget.
	InputBytes int64
}

// Label names the outcome for metrics and logs.
func (o Outcome) Label() string {
	if o.Err != nil {
		switch o.Stage {
		case StageHost:
			return LabelHost
		case engine.StageInternal:
			return LabelInternal
		}
		return LabelRejected
	}
	switch o.Result.Status {
	case runtime.StatusOk:
		return LabelOk
	case runtime.StatusError:
		return LabelError
	}
	return LabelAborted
}

type Host struct {
	engine  *engine.Engine
	logger  *zap.Logger
	metrics *Metrics
	config  Config
	clock   clock.Clock
}

// NewHost builds a host. A nil logger logs nothing and nil metrics are
// created unregistered.
func NewHost(config Config, logger *zap.Logger, metrics *Metrics) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	if config.Budget == (runtime.Budget{}) {
		config.Budget = DefaultBudget
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Host{
		engine:  engine.New(logger, interpreter.WithClock(clk)),
		logger:  logger,
		metrics: metrics,
		config:  config,
		clock:   clk,
	}
}

// LoadRequest reads a script file. Its directory anchors the frontmatter globs.
func LoadRequest(path string, input []byte) (Request, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return Request{}, errors.Wrapf(err, "read script %s", path)
	}
	return Request{Name: path, Source: string(source), Dir: filepath.Dir(path), Input: input}, nil
}

// Invoke runs one request to completion. ctx is only consulted before the
// script starts; a running script is bounded by its budget alone.
func (h *Host) Invoke(ctx context.Context, req Request) Outcome {
	start := h.clock.Now()
	out := Outcome{Name: req.Name, Hash: xxhash.Sum64String(req.Source)}
	if err := ctx.Err(); err != nil {
		return h.finish(out.failed(StageHost, err), start)
	}

	fm, body, err := SplitFrontmatter(req.Source)
	if err != nil {
		return h.finish(out.failed(StageHost, err), start)
	}
	out.Frontmatter = fm

	budget, err := h.budget(fm, req)
	if err != nil {
		return h.finish(out.failed(StageHost, err), start)
	}
	out.Budget = budget

	env, inputBytes, err := h.environment(fm, req)
	if err != nil {
		return h.finish(out.failed(StageHost, err), start)
	}
	out.InputBytes = inputBytes

	result, err := h.engine.Run(body, env, budget)
	if err != nil {
		return h.finish(out.failed(engine.StageOf(err), err), start)
	}
	out.Result = result
	return h.finish(out, start)
}

// Check prepares req and runs the static phases without executing it. The
// returned outcome has no Result.
func (h *Host) Check(req Request) Outcome {
	start := h.clock.Now()
	out := Outcome{Name: req.Name, Hash: xxhash.Sum64String(req.Source)}
	fm, body, err := SplitFrontmatter(req.Source)
	if err != nil {
		return h.report(out.failed(StageHost, err), start)
	}
	out.Frontmatter = fm
	env, _, err := h.environment(fm, req)
	if err != nil {
		return h.report(out.failed(StageHost, err), start)
	}
	host, err := typechecker.HostTypesOf(env)
	if err != nil {
		return h.report(out.failed(StageHost, err), start)
	}
	if _, err := engine.Check(body, host); err != nil {
		return h.report(out.failed(engine.StageOf(err), err), start)
	}
	return h.report(out, start)
}

// InvokeBatch runs independent requests concurrently. Outcomes keep the
// order of reqs.
func (h *Host) InvokeBatch(ctx context.Context, reqs []Request) []Outcome {
	outcomes := make([]Outcome, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	if h.config.Concurrency > 0 {
		g.SetLimit(h.config.Concurrency)
	}
	for i := range reqs {
		g.Go(func() error {
			outcomes[i] = h.Invoke(ctx, reqs[i])
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (h *Host) budget(fm *Frontmatter, req Request) (runtime.Budget, error) {
	budget, err := fm.Budget.Apply(h.config.Budget)
	if err != nil {
		return budget, err
	}
	budget = override(budget, req.Budget).Cap(h.config.MaxBudget)
	if err := budget.Validate(); err != nil {
		return budget, errors.Wrap(err, "budget")
	}
	return budget, nil
}

func override(base, b runtime.Budget) runtime.Budget {
	if b.MaxCycles > 0 {
		base.MaxCycles = b.MaxCycles
	}
	if b.MaxMemoryBytes > 0 {
		base.MaxMemoryBytes = b.MaxMemoryBytes
	}
	if b.MaxWallTime > 0 {
		base.MaxWallTime = b.MaxWallTime
	}
	return base
}

// environment binds files, constants and $input. It also returns their
// combined footprint.
func (h *Host) environment(fm *Frontmatter, req Request) (*runtime.Environment, int64, error) {
	bindings, err := LoadFiles(req.Dir, fm.Files)
	if err != nil {
		return nil, 0, err
	}
	constants, err := ConvertConstants(fm.Constants)
	if err != nil {
		return nil, 0, err
	}
	for name, v := range constants {
		bindings[name] = v
	}
	input, err := DecodeInput(req.Input)
	if err != nil {
		return nil, 0, err
	}
	bindings[InputBinding] = input

	var size int64
	for _, v := range bindings {
		size += runtime.DeepFootprint(v)
	}
	return runtime.NewEnvironment(bindings), size, nil
}

func (o Outcome) failed(stage engine.Stage, err error) Outcome {
	o.Err = err
	o.Stage = stage
	return o
}

// report logs a check without counting it as an invocation.
func (h *Host) report(o Outcome, start time.Time) Outcome {
	o.Elapsed = h.clock.Now().Sub(start)
	if o.Err != nil {
		h.logger.Debug("check failed", zap.String("script", o.Name), zap.String("stage", string(o.Stage)), zap.Error(o.Err))
	}
	return o
}

func (h *Host) finish(o Outcome, start time.Time) Outcome {
	o.Elapsed = h.clock.Now().Sub(start)
	h.metrics.observe(o)

	fields := []zap.Field{
		zap.String("script", o.Name),
		zap.String("hash", fmt.Sprintf("%016x", o.Hash)),
		zap.String("outcome", o.Label()),
		zap.Duration("elapsed", o.Elapsed),
	}
	if o.Err != nil {
		h.logger.Info("invocation rejected", append(fields, zap.String("stage", string(o.Stage)), zap.Error(o.Err))...)
		return o
	}
	h.logger.Info("invocation finished", append(fields,
		zap.Int64("cycles", o.Result.Usage.Cycles),
		zap.String("memory", humanize.Bytes(uint64(o.Result.Usage.MemoryBytes))),
		zap.String("inputs", humanize.Bytes(uint64(o.InputBytes))),
	)...)
	return o
}
