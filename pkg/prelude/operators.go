package prelude

import (
	"math"

	"github.com/Airsequel/AirScript/pkg/runtime"
	"github.com/Airsequel/AirScript/pkg/types"
)

func registerOperators() {
	arithmetic := scheme(types.Func(types.Number, types.Number, types.Number))
	ordering := scheme(types.Func(types.Boolean(), types.Number, types.Number))
	equality := scheme(types.Func(types.Boolean(), elemT, elemT), "a")

	register(OperatorNamespace, "+", 1, arithmetic, arith(func(x, y float64) float64 { return x + y }))
	register(OperatorNamespace, "-", 1, arithmetic, arith(func(x, y float64) float64 { return x - y }))
	register(OperatorNamespace, "*", 1, arithmetic, arith(func(x, y float64) float64 { return x * y }))
	register(OperatorNamespace, "/", 1, arithmetic, opDivide)
	register(OperatorNamespace, "%", 1, arithmetic, opModulo)
	register(OperatorNamespace, "++", 2, scheme(types.Func(types.Text, types.Text, types.Text)), textConcat)
	register(OperatorNamespace, "==", 1, equality, opEqual(true))
	register(OperatorNamespace, "!=", 1, equality, opEqual(false))
	register(OperatorNamespace, "<", 1, ordering, compare(func(x, y float64) bool { return x < y }))
	register(OperatorNamespace, "<=", 1, ordering, compare(func(x, y float64) bool { return x <= y }))
	register(OperatorNamespace, ">", 1, ordering, compare(func(x, y float64) bool { return x > y }))
	register(OperatorNamespace, ">=", 1, ordering, compare(func(x, y float64) bool { return x >= y }))
	register(OperatorNamespace, "not", 1, scheme(types.Func(types.Boolean(), types.Boolean())), opNot)
	register(OperatorNamespace, "neg", 1, scheme(types.Func(types.Number, types.Number)), numberMapper(func(x float64) float64 { return -x }))
}

func arith(f func(x, y float64) float64) Impl {
	return func(ctx Context, args []runtime.Value) (runtime.Value, error) {
		return number(ctx, f(num(args[0]), num(args[1])))
	}
}

func opDivide(ctx Context, args []runtime.Value) (runtime.Value, error) {
	divisor := num(args[1])
	if divisor == 0 {
		return nil, failf("division by zero")
	}
	return number(ctx, num(args[0])/divisor)
}

func opModulo(ctx Context, args []runtime.Value) (runtime.Value, error) {
	divisor := num(args[1])
	if divisor == 0 {
		return nil, failf("modulo by zero")
	}
	return number(ctx, math.Mod(num(args[0]), divisor))
}

func opEqual(want bool) Impl {
	return func(_ Context, args []runtime.Value) (runtime.Value, error) {
		return boolean(runtime.Equal(args[0], args[1]) == want)
	}
}

func compare(f func(x, y float64) bool) Impl {
	return func(_ Context, args []runtime.Value) (runtime.Value, error) {
		return boolean(f(num(args[0]), num(args[1])))
	}
}

func opNot(_ Context, args []runtime.Value) (runtime.Value, error) {
	return boolean(!runtime.IsTrue(args[0]))
}
