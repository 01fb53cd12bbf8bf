package driver

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"go.uber.org/multierr"

	"github.com/Airsequel/AirScript/pkg/engine"
	"github.com/Airsequel/AirScript/pkg/runtime"
)

// Exit statuses of the CLI.
const (
	ExitOk       = 0
	ExitError    = 1
	ExitAborted  = 2
	ExitRejected = 3
	ExitHost     = 4
	ExitInternal = 70
)

// ExitCode maps an outcome to a process exit status.
func ExitCode(o Outcome) int {
	switch o.Label() {
	case LabelOk:
		return ExitOk
	case LabelError:
		return ExitError
	case LabelAborted:
		return ExitAborted
	case LabelRejected:
		return ExitRejected
	case LabelHost:
		return ExitHost
	}
	return ExitInternal
}

// Render writes Ok values as JSON to stdout and everything else to stderr.
// It returns the exit status.
func Render(o Outcome, stdout, stderr io.Writer) int {
	code := ExitCode(o)
	switch {
	case o.Err != nil:
		for _, err := range multierr.Errors(o.Err) {
			switch o.Stage {
			case StageHost:
				fmt.Fprintf(stderr, "input error: %v\n", err)
			case engine.StageInternal:
				fmt.Fprintf(stderr, "internal error: %v\n", err)
			default:
				fmt.Fprintln(stderr, err)
			}
		}
	case o.Result.Status == runtime.StatusOk:
		if err := WriteJSON(stdout, o.Result.Value); err != nil {
			fmt.Fprintf(stderr, "render: %v\n", err)
			return ExitInternal
		}
	case o.Result.Status == runtime.StatusError:
		fmt.Fprintf(stderr, "Error: %s\n", o.Result.Message)
	default:
		fmt.Fprintf(stderr, "Aborted: %s budget exceeded\n", o.Result.Abort)
	}
	return code
}

// WriteJSON encodes v followed by a newline. NaN and infinities become null.
func WriteJSON(w io.Writer, v runtime.Value) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(finite(runtime.ToNative(v)))
}

func finite(v any) any {
	switch tv := v.(type) {
	case float64:
		if math.IsNaN(tv) || math.IsInf(tv, 0) {
			return nil
		}
	case []any:
		for i, el := range tv {
			tv[i] = finite(el)
		}
	case map[string]any:
		for k, el := range tv {
			tv[k] = finite(el)
		}
	}
	return v
}
