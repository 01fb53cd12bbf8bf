package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/Airsequel/AirScript/pkg/driver"
	"github.com/Airsequel/AirScript/pkg/engine"
	"github.com/Airsequel/AirScript/pkg/prelude"
	"github.com/Airsequel/AirScript/pkg/runtime"
)

const (
	historyFile = ".airscript_history"
	promptMain  = "air> "
	promptCont  = "...> "

	// replValue is the binding each evaluated expression is stored in.
	replValue = "it"
)

var definitionPattern = regexp.MustCompile(`^(type\s|[a-z][A-Za-z0-9_]*\s*=[^=])`)

func (c *cli) replCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Evaluate expressions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			host, err := c.newHost(1)
			if err != nil {
				return err
			}
			c.runREPL(cmd.Context(), &session{host: host})
			return nil
		},
	}
}

func (c *cli) runREPL(ctx context.Context, s *session) {
	fmt.Fprintln(c.stdout, "AirScript REPL. :help for commands, Ctrl+D to quit.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		code, ok := readEntry(ln)
		if !ok {
			fmt.Fprintln(c.stdout)
			break
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		if strings.HasPrefix(strings.TrimSpace(code), ":") {
			if s.command(c.stdout, code) {
				break
			}
			continue
		}
		if text := s.eval(ctx, code); text != "" {
			fmt.Fprintln(c.stdout, text)
		}
	}

	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
}

// readEntry reads one line, or several when the first one leaves a
// construct open. A blank line ends a multi-line entry.
func readEntry(ln *liner.State) (string, bool) {
	line, err := ln.Prompt(promptMain)
	if errors.Is(err, io.EOF) {
		return "", false
	}
	if err != nil {
		return "", true
	}
	if !opensContinuation(line) {
		return line, true
	}
	var b strings.Builder
	b.WriteString(line)
	for {
		next, err := ln.Prompt(promptCont)
		if err != nil || strings.TrimSpace(next) == "" {
			return b.String(), true
		}
		b.WriteByte('\n')
		b.WriteString(next)
	}
}

func opensContinuation(line string) bool {
	trimmed := strings.TrimRight(line, " \t")
	for _, suffix := range []string{"->", " is", "=", "&", "@", "(", "[", "{", ","} {
		if strings.HasSuffix(trimmed, suffix) {
			return true
		}
	}
	return false
}

// session accumulates definitions; every entry is checked or run as a
// complete script built from them.
type session struct {
	host        *driver.Host
	definitions []string
}

func (s *session) program(lines ...string) string {
	var b strings.Builder
	for _, def := range s.definitions {
		b.WriteString(def)
		b.WriteByte('\n')
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// eval runs one entry and returns what to print.
func (s *session) eval(ctx context.Context, code string) string {
	if definitionPattern.MatchString(strings.TrimSpace(code)) {
		out := s.host.Check(driver.Request{Name: "repl", Source: s.program(code, "Ok(0)")})
		if out.Err != nil {
			return describe(out.Err)
		}
		s.definitions = append(s.definitions, code)
		return ""
	}

	out := s.host.Invoke(ctx, driver.Request{
		Name:   "repl",
		Source: s.program(replValue+" = "+code, "Ok("+replValue+")"),
	})
	if out.Err != nil {
		return describe(out.Err)
	}
	switch out.Result.Status {
	case runtime.StatusOk:
		return runtime.Format(out.Result.Value)
	case runtime.StatusError:
		return "Error: " + out.Result.Message
	}
	return fmt.Sprintf("Aborted: %s budget exceeded", out.Result.Abort)
}

func describe(err error) string {
	errs := multierr.Errors(err)
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// command handles the colon commands. It reports whether the REPL should
// exit.
func (s *session) command(w io.Writer, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":reset":
		s.definitions = nil
		fmt.Fprintln(w, "definitions cleared")
	case ":defs":
		for _, def := range s.definitions {
			fmt.Fprintln(w, def)
		}
	case ":types":
		s.listTypes(w)
	case ":prelude":
		namespace := ""
		if len(fields) > 1 {
			namespace = fields[1]
		}
		listPrelude(w, namespace)
	case ":help":
		fmt.Fprintln(w, `Enter an expression to evaluate it, or a binding / type declaration to keep it.
Lines ending in ->, is, =, & or an open bracket continue until a blank line.
:defs          list kept definitions
:types         list declared types
:prelude [ns]  list prelude functions, optionally one namespace
:reset         forget all definitions
:quit          leave`)
	default:
		fmt.Fprintf(w, "unknown command %s\n", line)
	}
	return false
}

// listTypes prints the sum types the kept definitions declare.
func (s *session) listTypes(w io.Writer) {
	typed, err := engine.Check(s.program("Ok(0)"), nil)
	if err != nil {
		fmt.Fprintln(w, describe(err))
		return
	}
	for _, def := range typed.Registry.Sums() {
		if def.Builtin || def.Open {
			continue
		}
		name := def.Name
		if len(def.Params) > 0 {
			name += "(" + strings.Join(def.Params, ", ") + ")"
		}
		variants := make([]string, len(def.Variants))
		for i, v := range def.Variants {
			variants[i] = v.Name
			if v.HasPayload {
				variants[i] += "(" + v.Payload.Name() + ")"
			}
		}
		fmt.Fprintf(w, "type %s = %s\n", name, strings.Join(variants, " | "))
	}
}

// listPrelude prints prelude signatures, then the `$name` globals when no
// namespace is given.
func listPrelude(w io.Writer, namespace string) {
	for _, entry := range prelude.Entries() {
		if entry.Namespace == prelude.OperatorNamespace {
			continue
		}
		if namespace != "" && entry.Namespace != namespace {
			continue
		}
		fmt.Fprintf(w, "%s : %s\n", entry.Qualified(), entry.Signature.Name())
	}
	if namespace != "" {
		return
	}
	for _, name := range prelude.Globals() {
		entry, _ := prelude.Global(name)
		fmt.Fprintf(w, "$%s = %s\n", name, entry.Qualified())
	}
}
