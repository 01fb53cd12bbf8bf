package prelude

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Airsequel/AirScript/pkg/runtime"
	"github.com/Airsequel/AirScript/pkg/types"
)

func registerText() {
	textToText := scheme(types.Func(types.Text, types.Text))

	register("Text", "length", 1, scheme(types.Func(types.Number, types.Text)), textLength)
	register("Text", "upper", 2, textToText, textMapper(strings.ToUpper))
	register("Text", "lower", 2, textToText, textMapper(strings.ToLower))
	register("Text", "trim", 2, textToText, textMapper(strings.TrimSpace))
	register("Text", "concat", 2, scheme(types.Func(types.Text, types.Text, types.Text)), textConcat)
	register("Text", "split", 3, scheme(types.Func(types.List(types.Text), types.Text, types.Text)), textSplit)
	register("Text", "join", 3, scheme(types.Func(types.Text, types.List(types.Text), types.Text)), textJoin)
	register("Text", "contains", 2, scheme(types.Func(types.Boolean(), types.Text, types.Text)), textContains)
	register("Text", "fromNumber", 2, scheme(types.Func(types.Text, types.Number)), textFromNumber)
	register("Text", "toNumber", 2, scheme(types.Func(types.Result(types.Number), types.Text)), textToNumber)
}

func textLength(ctx Context, args []runtime.Value) (runtime.Value, error) {
	return number(ctx, float64(utf8.RuneCountInString(text(args[0]))))
}

func textMapper(f func(string) string) Impl {
	return func(ctx Context, args []runtime.Value) (runtime.Value, error) {
		return textValue(ctx, f(text(args[0])))
	}
}

func textConcat(ctx Context, args []runtime.Value) (runtime.Value, error) {
	return textValue(ctx, text(args[0])+text(args[1]))
}

func textSplit(ctx Context, args []runtime.Value) (runtime.Value, error) {
	parts := strings.Split(text(args[0]), text(args[1]))
	var bytes int64
	for _, part := range parts {
		bytes += runtime.TextFootprint(part)
	}
	if err := ctx.Alloc(bytes); err != nil {
		return nil, err
	}
	out := make([]runtime.Value, len(parts))
	for i, part := range parts {
		out[i] = runtime.Text(part)
	}
	return newList(ctx, out)
}

func textJoin(ctx Context, args []runtime.Value) (runtime.Value, error) {
	items := list(args[0])
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = text(item)
	}
	return textValue(ctx, strings.Join(parts, text(args[1])))
}

func textContains(_ Context, args []runtime.Value) (runtime.Value, error) {
	return boolean(strings.Contains(text(args[0]), text(args[1])))
}

func textFromNumber(ctx Context, args []runtime.Value) (runtime.Value, error) {
	return textValue(ctx, runtime.FormatNumber(num(args[0])))
}

func textToNumber(ctx Context, args []runtime.Value) (runtime.Value, error) {
	raw := strings.TrimSpace(text(args[0]))
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		msg := "not a number: " + strconv.Quote(raw)
		if allocErr := ctx.Alloc(runtime.VariantFootprint + runtime.TextFootprint(msg)); allocErr != nil {
			return nil, allocErr
		}
		return runtime.Err(msg), nil
	}
	if err := ctx.Alloc(runtime.VariantFootprint + runtime.NumberFootprint); err != nil {
		return nil, err
	}
	return runtime.Ok(runtime.Number(f)), nil
}
