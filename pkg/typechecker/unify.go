package typechecker

import (
	"fmt"

	"github.com/Airsequel/AirScript/pkg/types"
)

// unifyError explains why two types could not be made equal. The message
// names the innermost conflicting pair.
type unifyError struct {
	message string
}

func mismatch(a, b types.Type) *unifyError {
	return &unifyError{message: fmt.Sprintf("%s is not compatible with %s", types.Resolve(a).Name(), types.Resolve(b).Name())}
}

// unify makes a and b equal by binding type variables. Bindings made before
// a failure are kept; the caller aborts inference on error.
func unify(a, b types.Type) *unifyError {
	a = types.Prune(a)
	b = types.Prune(b)
	if va, ok := a.(*types.TypeVariable); ok {
		return bindVariable(va, b)
	}
	if vb, ok := b.(*types.TypeVariable); ok {
		return bindVariable(vb, a)
	}
	switch ta := a.(type) {
	case types.PrimitiveType:
		if tb, ok := b.(types.PrimitiveType); ok && ta.Kind == tb.Kind {
			return nil
		}
	case types.ListType:
		if tb, ok := b.(types.ListType); ok {
			return unify(ta.Element, tb.Element)
		}
	case types.RecordType:
		tb, ok := b.(types.RecordType)
		if !ok || len(ta.Fields) != len(tb.Fields) {
			break
		}
		for i := range ta.Fields {
			if ta.Fields[i].Name != tb.Fields[i].Name {
				return mismatch(a, b)
			}
		}
		for i := range ta.Fields {
			if err := unify(ta.Fields[i].Type, tb.Fields[i].Type); err != nil {
				return err
			}
		}
		return nil
	case types.FunctionType:
		tb, ok := b.(types.FunctionType)
		if !ok {
			break
		}
		if ta.Arity() != tb.Arity() {
			return &unifyError{message: fmt.Sprintf("arity mismatch: a function of %d parameter(s) is not compatible with one of %d", ta.Arity(), tb.Arity())}
		}
		for i := range ta.Params {
			if err := unify(ta.Params[i], tb.Params[i]); err != nil {
				return err
			}
		}
		return unify(ta.Return, tb.Return)
	case types.SumType:
		tb, ok := b.(types.SumType)
		if !ok || ta.SumName != tb.SumName || len(ta.Args) != len(tb.Args) {
			break
		}
		for i := range ta.Args {
			if err := unify(ta.Args[i], tb.Args[i]); err != nil {
				return err
			}
		}
		return nil
	}
	return mismatch(a, b)
}

func bindVariable(v *types.TypeVariable, t types.Type) *unifyError {
	if other, ok := t.(*types.TypeVariable); ok {
		if other == v {
			return nil
		}
		if other.Level > v.Level {
			other.Level = v.Level
		}
		v.Instance = other
		return nil
	}
	if occurs(v, t) {
		return &unifyError{message: fmt.Sprintf("infinite type: %s occurs in %s", v.Name(), types.Resolve(t).Name())}
	}
	adjustLevels(t, v.Level)
	v.Instance = t
	return nil
}

func occurs(v *types.TypeVariable, t types.Type) bool {
	for _, free := range types.FreeVariables(t) {
		if free == v {
			return true
		}
	}
	return false
}

// adjustLevels lowers every free variable in t to at most level so that
// generalization never quantifies a variable reachable from an outer scope.
func adjustLevels(t types.Type, level int) {
	for _, free := range types.FreeVariables(t) {
		if free.Level > level {
			free.Level = level
		}
	}
}
