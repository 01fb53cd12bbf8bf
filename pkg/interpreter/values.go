package interpreter

import (
	"github.com/Airsequel/AirScript/pkg/prelude"
	"github.com/Airsequel/AirScript/pkg/runtime"
)

// Closure is a lambda value. Captures are copied when the closure is
// created; the program has no mutation, so copies never go stale.
type Closure struct {
	code     *lambdaCode
	captures []runtime.Value
}

func (*Closure) Kind() runtime.Kind { return runtime.KindFunction }

func (c *Closure) Arity() int { return c.code.arity }

// PreludeFunction is a prelude entry used as a first-class value.
type PreludeFunction struct {
	Entry *prelude.Entry
}

func (*PreludeFunction) Kind() runtime.Kind { return runtime.KindFunction }

func (f *PreludeFunction) Arity() int { return f.Entry.Arity() }
