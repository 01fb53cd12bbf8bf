// Package engine chains the language phases for one invocation: parse,
// infer, desugar matches, then compile and run under a budget.
package engine

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Airsequel/AirScript/pkg/ast"
	"github.com/Airsequel/AirScript/pkg/interpreter"
	"github.com/Airsequel/AirScript/pkg/match"
	"github.com/Airsequel/AirScript/pkg/parser"
	"github.com/Airsequel/AirScript/pkg/runtime"
	"github.com/Airsequel/AirScript/pkg/typechecker"
)

// Stage names the phase that produced an error.
type Stage string

const (
	StageParse    Stage = "parse"
	StageType     Stage = "type"
	StageMatch    Stage = "match"
	StageHost     Stage = "host"
	StageInternal Stage = "internal"
)

// ErrHostBinding marks an environment value that has no static type, such as
// a list mixing numbers and text.
var ErrHostBinding = errors.New("invalid host binding")

// StageOf classifies an error returned by this package.
func StageOf(err error) Stage {
	var (
		syntaxErr    *parser.SyntaxError
		typeErr      *typechecker.TypeError
		recursionErr *typechecker.RecursionError
		matchErr     *match.NonExhaustiveMatchError
	)
	switch {
	case errors.As(err, &syntaxErr):
		return StageParse
	case errors.As(err, &typeErr), errors.As(err, &recursionErr):
		return StageType
	case errors.As(err, &matchErr):
		return StageMatch
	case errors.Is(err, ErrHostBinding):
		return StageHost
	}
	return StageInternal
}

// Parse returns the script or every syntax error, combined in source order.
func Parse(source string) (*ast.Script, error) {
	p := parser.New(source)
	script := p.ParseScript()
	var combined error
	for _, err := range p.Errors() {
		combined = multierr.Append(combined, err)
	}
	if combined != nil {
		return nil, combined
	}
	return script, nil
}

// Check runs the static phases and returns the program ready to compile.
func Check(source string, host typechecker.HostTypes) (*typechecker.TypedScript, error) {
	script, err := Parse(source)
	if err != nil {
		return nil, err
	}
	typed, err := typechecker.Infer(script, host)
	if err != nil {
		return nil, err
	}
	return match.Desugar(typed)
}

// Engine runs scripts. It holds no per-invocation state and is safe for
// concurrent use.
type Engine struct {
	logger *zap.Logger
	opts   []interpreter.Option
}

// New builds an engine. opts are passed to every compiled unit.
func New(logger *zap.Logger, opts ...interpreter.Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger, opts: append([]interpreter.Option{interpreter.WithLogger(logger)}, opts...)}
}

// Run performs one invocation. A non-nil error means the script was
// rejected before it ran, or the evaluator hit a contract violation.
func (e *Engine) Run(source string, env *runtime.Environment, budget runtime.Budget) (runtime.ExecutionResult, error) {
	host, err := typechecker.HostTypesOf(env)
	if err != nil {
		return runtime.ExecutionResult{}, fmt.Errorf("%w: %v", ErrHostBinding, err)
	}
	typed, err := Check(source, host)
	if err != nil {
		e.logger.Debug("script rejected", zap.String("stage", string(StageOf(err))), zap.Error(err))
		return runtime.ExecutionResult{}, err
	}
	return interpreter.CompileAndRun(typed, env, budget, e.opts...)
}
