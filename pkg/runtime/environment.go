package runtime

import "sort"

// Environment is the immutable set of host bindings for one invocation. It
// is built once and shared by reference; nothing mutates it afterwards.
type Environment struct {
	values map[string]Value
	names  []string
}

// NewEnvironment copies bindings into a frozen environment.
func NewEnvironment(bindings map[string]Value) *Environment {
	env := &Environment{values: make(map[string]Value, len(bindings))}
	for name, value := range bindings {
		env.values[name] = value
		env.names = append(env.names, name)
	}
	sort.Strings(env.names)
	return env
}

// EmptyEnvironment has no bindings.
func EmptyEnvironment() *Environment {
	return NewEnvironment(nil)
}

// Lookup returns the value bound to name.
func (e *Environment) Lookup(name string) (Value, bool) {
	if e == nil {
		return nil, false
	}
	v, ok := e.values[name]
	return v, ok
}

// Names lists the bound names in sorted order.
func (e *Environment) Names() []string {
	if e == nil {
		return nil
	}
	return append([]string(nil), e.names...)
}

// Len reports the number of bindings.
func (e *Environment) Len() int {
	if e == nil {
		return 0
	}
	return len(e.names)
}
