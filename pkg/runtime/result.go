package runtime

import "fmt"

// Status is the outcome category of an execution.
type Status int

const (
	StatusOk Status = iota
	StatusError
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "Ok"
	case StatusError:
		return "Error"
	case StatusAborted:
		return "Aborted"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ExecutionResult is Ok(Value), Error(Text) or Aborted(BudgetKind). An
// aborted result never carries a value.
type ExecutionResult struct {
	Status  Status
	Value   Value
	Message string
	Abort   BudgetKind
	Usage   Usage
}

func OkResult(v Value) ExecutionResult { return ExecutionResult{Status: StatusOk, Value: v} }

func ErrorResult(message string) ExecutionResult {
	return ExecutionResult{Status: StatusError, Message: message}
}

func AbortedResult(kind BudgetKind) ExecutionResult {
	return ExecutionResult{Status: StatusAborted, Abort: kind}
}

// Succeeded reports whether the result belongs on the success channel.
func (r ExecutionResult) Succeeded() bool { return r.Status == StatusOk }

func (r ExecutionResult) String() string {
	switch r.Status {
	case StatusOk:
		return "Ok(" + Format(r.Value) + ")"
	case StatusError:
		return "Error(" + Format(Text(r.Message)) + ")"
	default:
		return "Aborted(" + r.Abort.String() + ")"
	}
}

// Same reports whether two results are observably identical, ignoring usage.
func (r ExecutionResult) Same(other ExecutionResult) bool {
	if r.Status != other.Status {
		return false
	}
	switch r.Status {
	case StatusOk:
		return Equal(r.Value, other.Value)
	case StatusError:
		return r.Message == other.Message
	default:
		return r.Abort == other.Abort
	}
}
