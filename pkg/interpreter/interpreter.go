// Package interpreter is the resource-bounded evaluator. It compiles a typed,
// desugared script into a single-use Unit bound to one environment and runs
// it under cycle, memory and wall-time budgets.
package interpreter

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/Airsequel/AirScript/pkg/runtime"
	"github.com/Airsequel/AirScript/pkg/typechecker"
)

type options struct {
	clock  clock.Clock
	logger *zap.Logger
}

// Option configures compilation and execution.
type Option func(*options)

// WithClock sets the clock the wall-time budget is measured against.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger for execution summaries.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{clock: clock.New(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// Unit is a compiled script bound to one environment. It runs once.
type Unit struct {
	root  node
	slots int
	host  []string
	used  atomic.Bool
	opts  options
}

// Compile lowers typed into a Unit. typed must have been through
// match.Desugar: every `when` is a Match.
func Compile(typed *typechecker.TypedScript, env *runtime.Environment, opts ...Option) (*Unit, error) {
	if typed == nil || typed.Script == nil || typed.Script.Body == nil {
		return nil, violation("nothing to compile")
	}
	c := &compiler{typed: typed, env: env, fn: newFuncScope(nil)}
	root := c.compileBlock(typed.Script.Body)
	if c.err != nil {
		return nil, c.err
	}
	return &Unit{root: root, slots: c.fn.slots, host: hostNames(typed), opts: buildOptions(opts)}, nil
}

// Run executes the unit under budget. The error is non-nil only for a
// contract violation; stops and aborts are results.
func (u *Unit) Run(budget runtime.Budget) (result runtime.ExecutionResult, err error) {
	if err := budget.Validate(); err != nil {
		return runtime.ExecutionResult{}, err
	}
	if !u.used.CompareAndSwap(false, true) {
		return runtime.ExecutionResult{}, violation("a compiled unit runs only once")
	}
	m := newMachine(budget, u.opts.clock)
	defer func() {
		if r := recover(); r != nil {
			result, err = runtime.ExecutionResult{}, violation("panic during evaluation: %v", r)
		}
		if err != nil {
			u.opts.logger.Error("script violated an evaluator contract", zap.Error(err))
		}
	}()

	value, evalErr := u.root.eval(m, &frame{slots: make([]runtime.Value, u.slots)})
	result, err = u.finish(value, evalErr)
	if err != nil {
		return runtime.ExecutionResult{}, err
	}
	result.Usage = m.usage()
	u.opts.logger.Debug("script finished",
		zap.Stringer("status", result.Status),
		zap.Int64("cycles", result.Usage.Cycles),
		zap.Int64("memory_bytes", result.Usage.MemoryBytes),
		zap.Duration("wall_time", result.Usage.WallTime),
		zap.Strings("host_bindings", u.host),
	)
	return result, nil
}

func (u *Unit) finish(value runtime.Value, evalErr error) (runtime.ExecutionResult, error) {
	if evalErr != nil {
		var stop *stopSignal
		if errors.As(evalErr, &stop) {
			return runtime.ErrorResult(stop.message), nil
		}
		var exceeded *budgetExceeded
		if errors.As(evalErr, &exceeded) {
			return runtime.AbortedResult(exceeded.kind), nil
		}
		if errors.Is(evalErr, ErrContractViolation) {
			return runtime.ExecutionResult{}, evalErr
		}
		return runtime.ExecutionResult{}, fmt.Errorf("%w: %v", ErrContractViolation, evalErr)
	}
	terminal, ok := value.(runtime.VariantValue)
	if ok {
		switch terminal.Tag {
		case "Ok":
			return runtime.OkResult(terminal.Payload), nil
		case "Error":
			return runtime.ErrorResult(textOf(terminal.Payload)), nil
		}
	}
	return runtime.ExecutionResult{}, violation("terminal value %s is not a Result", runtime.Format(value))
}

// CompileAndRun compiles typed against env and runs it once.
func CompileAndRun(typed *typechecker.TypedScript, env *runtime.Environment, budget runtime.Budget, opts ...Option) (runtime.ExecutionResult, error) {
	unit, err := Compile(typed, env, opts...)
	if err != nil {
		return runtime.ExecutionResult{}, err
	}
	return unit.Run(budget)
}
