package prelude

import (
	"math"

	"github.com/Airsequel/AirScript/pkg/runtime"
	"github.com/Airsequel/AirScript/pkg/types"
)

func registerNumber() {
	unary := scheme(types.Func(types.Number, types.Number))
	binary := scheme(types.Func(types.Number, types.Number, types.Number))

	register("Number", "round", 1, unary, numberMapper(math.Round))
	register("Number", "floor", 1, unary, numberMapper(math.Floor))
	register("Number", "ceil", 1, unary, numberMapper(math.Ceil))
	register("Number", "abs", 1, unary, numberMapper(math.Abs))
	register("Number", "min", 1, binary, numberCombiner(math.Min))
	register("Number", "max", 1, binary, numberCombiner(math.Max))
}

func numberMapper(f func(float64) float64) Impl {
	return func(ctx Context, args []runtime.Value) (runtime.Value, error) {
		return number(ctx, f(num(args[0])))
	}
}

func numberCombiner(f func(float64, float64) float64) Impl {
	return func(ctx Context, args []runtime.Value) (runtime.Value, error) {
		return number(ctx, f(num(args[0]), num(args[1])))
	}
}
