package interpreter

import (
	"errors"
	"fmt"

	"github.com/Airsequel/AirScript/pkg/runtime"
)

// ErrContractViolation marks a failure of an invariant the earlier phases
// guarantee: a non-Result terminal value, an unmatched clause, a reused
// unit, a panic inside a prelude body.
var ErrContractViolation = errors.New("interpreter: contract violation")

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrContractViolation, fmt.Sprintf(format, args...))
}

// budgetExceeded unwinds evaluation when a limit is crossed.
type budgetExceeded struct {
	kind runtime.BudgetKind
}

func (e *budgetExceeded) Error() string {
	return "budget exceeded: " + e.kind.String()
}

// stopSignal unwinds evaluation for `stop`, a failed `?` and prelude
// failures. The invocation ends with Error(message).
type stopSignal struct {
	message string
}

func (s *stopSignal) Error() string {
	return "stopped: " + s.message
}
