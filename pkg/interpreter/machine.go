package interpreter

import (
	"errors"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/Airsequel/AirScript/pkg/prelude"
	"github.com/Airsequel/AirScript/pkg/runtime"
)

// timeCheckInterval is how many reduction steps pass between wall-clock
// samples. Prelude calls always sample.
const timeCheckInterval = 256

// machine meters one execution. It is the prelude.Context handed to prelude
// implementations.
type machine struct {
	budget runtime.Budget
	clock  clock.Clock
	start  time.Time

	cycles int64
	memory int64
	steps  int64
}

var _ prelude.Context = (*machine)(nil)

func newMachine(budget runtime.Budget, clk clock.Clock) *machine {
	return &machine{budget: budget, clock: clk, start: clk.Now()}
}

// step charges one reduction step.
func (m *machine) step() error {
	m.cycles++
	if m.cycles > m.budget.MaxCycles {
		return &budgetExceeded{kind: runtime.BudgetCycles}
	}
	m.steps++
	if m.steps%timeCheckInterval == 0 {
		return m.checkTime()
	}
	return nil
}

func (m *machine) charge(cycles int64) error {
	m.cycles += cycles
	if m.cycles > m.budget.MaxCycles {
		return &budgetExceeded{kind: runtime.BudgetCycles}
	}
	return m.checkTime()
}

func (m *machine) checkTime() error {
	if m.elapsed() > m.budget.MaxWallTime {
		return &budgetExceeded{kind: runtime.BudgetTime}
	}
	return nil
}

func (m *machine) elapsed() time.Duration {
	return m.clock.Now().Sub(m.start)
}

// Alloc charges bytes against the memory budget. A charge past the budget
// pins the recorded usage at the limit.
func (m *machine) Alloc(bytes int64) error {
	if bytes > m.budget.MaxMemoryBytes-m.memory {
		m.memory = m.budget.MaxMemoryBytes
		return &budgetExceeded{kind: runtime.BudgetMemory}
	}
	m.memory += bytes
	return nil
}

// Apply calls fn with exactly its arity worth of arguments.
func (m *machine) Apply(fn runtime.Function, args ...runtime.Value) (runtime.Value, error) {
	return m.apply(fn, args)
}

func (m *machine) apply(fn runtime.Function, args []runtime.Value) (runtime.Value, error) {
	if fn.Arity() != len(args) {
		return nil, violation("function of arity %d applied to %d argument(s)", fn.Arity(), len(args))
	}
	switch f := fn.(type) {
	case *Closure:
		fr := &frame{slots: make([]runtime.Value, f.code.slots), captures: f.captures}
		copy(fr.slots, args)
		return f.code.body.eval(m, fr)
	case *PreludeFunction:
		return m.callPrelude(f.Entry, args)
	}
	return nil, violation("cannot apply %T", fn)
}

// callPrelude charges the entry's fixed cost and runs it. A prelude failure
// ends the invocation like `stop`.
func (m *machine) callPrelude(entry *prelude.Entry, args []runtime.Value) (runtime.Value, error) {
	if err := m.charge(entry.Cost); err != nil {
		return nil, err
	}
	v, err := entry.Impl(m, args)
	if err != nil {
		var failure *prelude.Failure
		if errors.As(err, &failure) {
			return nil, &stopSignal{message: failure.Message}
		}
		return nil, err
	}
	return v, nil
}

func (m *machine) usage() runtime.Usage {
	return runtime.Usage{Cycles: m.cycles, MemoryBytes: m.memory, WallTime: m.elapsed()}
}

// frame holds the slots of one function activation and the captures of the
// closure being run.
type frame struct {
	slots    []runtime.Value
	captures []runtime.Value
}
