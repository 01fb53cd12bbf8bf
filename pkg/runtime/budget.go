package runtime

import (
	"errors"
	"fmt"
	"time"
)

// BudgetKind names the resource whose limit aborted an execution.
type BudgetKind int

const (
	BudgetCycles BudgetKind = iota
	BudgetMemory
	BudgetTime
)

func (k BudgetKind) String() string {
	switch k {
	case BudgetCycles:
		return "Cycles"
	case BudgetMemory:
		return "Memory"
	case BudgetTime:
		return "Time"
	default:
		return fmt.Sprintf("BudgetKind(%d)", int(k))
	}
}

// Budget bounds one execution. All limits must be positive.
type Budget struct {
	MaxCycles      int64
	MaxMemoryBytes int64
	MaxWallTime    time.Duration
}

var errNonPositiveBudget = errors.New("budget limits must be positive")

// Validate reports a budget with a non-positive limit.
func (b Budget) Validate() error {
	if b.MaxCycles <= 0 || b.MaxMemoryBytes <= 0 || b.MaxWallTime <= 0 {
		return fmt.Errorf("%w: cycles=%d memory=%d time=%s", errNonPositiveBudget, b.MaxCycles, b.MaxMemoryBytes, b.MaxWallTime)
	}
	return nil
}

// Cap returns b with every limit lowered to at most the matching limit in max.
// Zero limits in max leave b unchanged.
func (b Budget) Cap(max Budget) Budget {
	if max.MaxCycles > 0 && (b.MaxCycles <= 0 || b.MaxCycles > max.MaxCycles) {
		b.MaxCycles = max.MaxCycles
	}
	if max.MaxMemoryBytes > 0 && (b.MaxMemoryBytes <= 0 || b.MaxMemoryBytes > max.MaxMemoryBytes) {
		b.MaxMemoryBytes = max.MaxMemoryBytes
	}
	if max.MaxWallTime > 0 && (b.MaxWallTime <= 0 || b.MaxWallTime > max.MaxWallTime) {
		b.MaxWallTime = max.MaxWallTime
	}
	return b
}

// Usage is what one execution consumed.
type Usage struct {
	Cycles      int64
	MemoryBytes int64
	WallTime    time.Duration
}
