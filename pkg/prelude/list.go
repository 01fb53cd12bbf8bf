package prelude

import (
	"math"
	"sort"

	"github.com/Airsequel/AirScript/pkg/runtime"
	"github.com/Airsequel/AirScript/pkg/types"
)

var (
	elemT   = types.Param("a")
	resultT = types.Param("b")
)

func registerList() {
	listA := types.List(elemT)
	predicate := types.Func(types.Boolean(), elemT)

	register("List", "map", 4, scheme(types.Func(types.List(resultT), listA, types.Func(resultT, elemT)), "a", "b"), listMap)
	register("List", "filter", 4, scheme(types.Func(listA, listA, predicate), "a"), listFilter)
	register("List", "fold", 4, scheme(types.Func(resultT, listA, resultT, types.Func(resultT, resultT, elemT)), "a", "b"), listFold)
	register("List", "sum", 2, scheme(types.Func(types.Number, types.List(types.Number))), listSum)
	register("List", "length", 1, scheme(types.Func(types.Number, listA), "a"), listLength)
	register("List", "first", 1, scheme(types.Func(types.Options(elemT), listA), "a"), listFirst)
	register("List", "last", 1, scheme(types.Func(types.Options(elemT), listA), "a"), listLast)
	register("List", "at", 1, scheme(types.Func(types.Options(elemT), listA, types.Number), "a"), listAt)
	register("List", "reverse", 2, scheme(types.Func(listA, listA), "a"), listReverse)
	register("List", "sort", 6, scheme(types.Func(types.List(types.Number), types.List(types.Number))), listSort)
	register("List", "sortBy", 6, scheme(types.Func(listA, listA, types.Func(types.Number, elemT)), "a"), listSortBy)
	register("List", "range", 2, scheme(types.Func(types.List(types.Number), types.Number, types.Number)), listRange)
	register("List", "concat", 2, scheme(types.Func(listA, listA, listA), "a"), listConcat)
	register("List", "any", 3, scheme(types.Func(types.Boolean(), listA, predicate), "a"), listAny)
	register("List", "all", 3, scheme(types.Func(types.Boolean(), listA, predicate), "a"), listAll)
	register("List", "find", 3, scheme(types.Func(types.Options(elemT), listA, predicate), "a"), listFind)
}

func newList(ctx Context, elements []runtime.Value) (runtime.Value, error) {
	if err := ctx.Alloc(runtime.ListFootprint(len(elements))); err != nil {
		return nil, err
	}
	return runtime.NewList(elements), nil
}

func listMap(ctx Context, args []runtime.Value) (runtime.Value, error) {
	items, f := list(args[0]), fn(args[1])
	if err := ctx.Alloc(runtime.ListFootprint(len(items))); err != nil {
		return nil, err
	}
	out := make([]runtime.Value, len(items))
	for i, item := range items {
		v, err := ctx.Apply(f, item)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return runtime.NewList(out), nil
}

func listFilter(ctx Context, args []runtime.Value) (runtime.Value, error) {
	items, f := list(args[0]), fn(args[1])
	var out []runtime.Value
	for _, item := range items {
		keep, err := ctx.Apply(f, item)
		if err != nil {
			return nil, err
		}
		if runtime.IsTrue(keep) {
			out = append(out, item)
		}
	}
	return newList(ctx, out)
}

func listFold(ctx Context, args []runtime.Value) (runtime.Value, error) {
	acc, f := args[1], fn(args[2])
	for _, item := range list(args[0]) {
		next, err := ctx.Apply(f, acc, item)
		if err != nil {
			return nil, err
		}
		acc = next
	}
	return acc, nil
}

func listSum(ctx Context, args []runtime.Value) (runtime.Value, error) {
	total := 0.0
	for _, item := range list(args[0]) {
		total += num(item)
	}
	return number(ctx, total)
}

func listLength(ctx Context, args []runtime.Value) (runtime.Value, error) {
	return number(ctx, float64(len(list(args[0]))))
}

func listFirst(ctx Context, args []runtime.Value) (runtime.Value, error) {
	items := list(args[0])
	if len(items) == 0 {
		return runtime.Null, nil
	}
	return wrap(ctx, runtime.Some(items[0]))
}

func listLast(ctx Context, args []runtime.Value) (runtime.Value, error) {
	items := list(args[0])
	if len(items) == 0 {
		return runtime.Null, nil
	}
	return wrap(ctx, runtime.Some(items[len(items)-1]))
}

// listAt indexes from zero; negative indexes count from the end.
func listAt(ctx Context, args []runtime.Value) (runtime.Value, error) {
	items := list(args[0])
	idx := num(args[1])
	if idx != math.Trunc(idx) {
		return runtime.Null, nil
	}
	i := int(idx)
	if i < 0 {
		i += len(items)
	}
	if i < 0 || i >= len(items) {
		return runtime.Null, nil
	}
	return wrap(ctx, runtime.Some(items[i]))
}

func listReverse(ctx Context, args []runtime.Value) (runtime.Value, error) {
	items := list(args[0])
	out := make([]runtime.Value, len(items))
	for i, item := range items {
		out[len(items)-1-i] = item
	}
	return newList(ctx, out)
}

func listSort(ctx Context, args []runtime.Value) (runtime.Value, error) {
	out := append([]runtime.Value(nil), list(args[0])...)
	sort.SliceStable(out, func(i, j int) bool { return num(out[i]) < num(out[j]) })
	return newList(ctx, out)
}

func listSortBy(ctx Context, args []runtime.Value) (runtime.Value, error) {
	items, f := list(args[0]), fn(args[1])
	keys := make([]float64, len(items))
	for i, item := range items {
		k, err := ctx.Apply(f, item)
		if err != nil {
			return nil, err
		}
		keys[i] = num(k)
	}
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return keys[order[i]] < keys[order[j]] })
	out := make([]runtime.Value, len(items))
	for i, idx := range order {
		out[i] = items[idx]
	}
	return newList(ctx, out)
}

// listRange yields start, start+1, ... up to but excluding end.
func listRange(ctx Context, args []runtime.Value) (runtime.Value, error) {
	start, end := math.Ceil(num(args[0])), num(args[1])
	if math.IsNaN(start) || math.IsNaN(end) || math.IsInf(start, 0) || math.IsInf(end, 0) {
		return nil, failf("List.range needs finite bounds")
	}
	count := 0.0
	if end > start {
		count = math.Ceil(end - start)
	}
	// Charge before building so an oversized range aborts without allocating.
	perItem := float64(runtime.ListElementFootprint + runtime.NumberFootprint)
	if count*perItem > float64(math.MaxInt64/2) {
		if err := ctx.Alloc(math.MaxInt64 / 2); err != nil {
			return nil, err
		}
		return nil, failf("List.range is too large")
	}
	n := int(count)
	if err := ctx.Alloc(runtime.ListFootprint(n) + runtime.NumberFootprint*int64(n)); err != nil {
		return nil, err
	}
	out := make([]runtime.Value, n)
	for i := range out {
		out[i] = runtime.Number(start + float64(i))
	}
	return runtime.NewList(out), nil
}

func listConcat(ctx Context, args []runtime.Value) (runtime.Value, error) {
	left, right := list(args[0]), list(args[1])
	out := make([]runtime.Value, 0, len(left)+len(right))
	out = append(out, left...)
	out = append(out, right...)
	return newList(ctx, out)
}

func listAny(ctx Context, args []runtime.Value) (runtime.Value, error) {
	found, _, err := findFirst(ctx, list(args[0]), fn(args[1]))
	if err != nil {
		return nil, err
	}
	return boolean(found)
}

func listAll(ctx Context, args []runtime.Value) (runtime.Value, error) {
	f := fn(args[1])
	for _, item := range list(args[0]) {
		ok, err := ctx.Apply(f, item)
		if err != nil {
			return nil, err
		}
		if !runtime.IsTrue(ok) {
			return boolean(false)
		}
	}
	return boolean(true)
}

func listFind(ctx Context, args []runtime.Value) (runtime.Value, error) {
	found, item, err := findFirst(ctx, list(args[0]), fn(args[1]))
	if err != nil {
		return nil, err
	}
	if !found {
		return runtime.Null, nil
	}
	return wrap(ctx, runtime.Some(item))
}

func findFirst(ctx Context, items []runtime.Value, f runtime.Function) (bool, runtime.Value, error) {
	for _, item := range items {
		ok, err := ctx.Apply(f, item)
		if err != nil {
			return false, nil, err
		}
		if runtime.IsTrue(ok) {
			return true, item, nil
		}
	}
	return false, nil, nil
}
