package prelude

import (
	"github.com/Airsequel/AirScript/pkg/runtime"
	"github.com/Airsequel/AirScript/pkg/types"
)

func registerResult() {
	resultA := types.Result(elemT)
	register("Result", "map", 3, scheme(types.Func(types.Result(resultT), resultA, types.Func(resultT, elemT)), "a", "b"), resultMap)
	register("Result", "withDefault", 1, scheme(types.Func(elemT, resultA, elemT), "a"), withDefault("Ok"))
	register("Result", "isOk", 1, scheme(types.Func(types.Boolean(), resultA), "a"), resultIsOk)
}

func registerOptions() {
	optionsA := types.Options(elemT)
	register("Options", "map", 3, scheme(types.Func(types.Options(resultT), optionsA, types.Func(resultT, elemT)), "a", "b"), optionsMap)
	register("Options", "withDefault", 1, scheme(types.Func(elemT, optionsA, elemT), "a"), withDefault("Some"))
}

func resultMap(ctx Context, args []runtime.Value) (runtime.Value, error) {
	v := variant(args[0])
	if v.Tag != "Ok" {
		return v, nil
	}
	mapped, err := ctx.Apply(fn(args[1]), v.Payload)
	if err != nil {
		return nil, err
	}
	return wrap(ctx, runtime.Ok(mapped))
}

func optionsMap(ctx Context, args []runtime.Value) (runtime.Value, error) {
	v := variant(args[0])
	if v.Tag != "Some" {
		return v, nil
	}
	mapped, err := ctx.Apply(fn(args[1]), v.Payload)
	if err != nil {
		return nil, err
	}
	return wrap(ctx, runtime.Some(mapped))
}

// withDefault unwraps the payload of the present variant or returns the
// fallback argument.
func withDefault(present string) Impl {
	return func(_ Context, args []runtime.Value) (runtime.Value, error) {
		v := variant(args[0])
		if v.Tag == present {
			return v.Payload, nil
		}
		return args[1], nil
	}
}

func resultIsOk(_ Context, args []runtime.Value) (runtime.Value, error) {
	return boolean(variant(args[0]).Tag == "Ok")
}
