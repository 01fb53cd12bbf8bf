package typechecker

import (
	"fmt"

	"github.com/Airsequel/AirScript/pkg/prelude"
	"github.com/Airsequel/AirScript/pkg/runtime"
	"github.com/Airsequel/AirScript/pkg/types"
)

// HostTypesOf types every binding of env. Values whose type leaves parts
// open (Null, an empty list) become polymorphic schemes. A binding named
// like a prelude global is rejected since `$name` would never reach it.
func HostTypesOf(env *runtime.Environment) (HostTypes, error) {
	out := make(HostTypes, env.Len())
	for _, name := range env.Names() {
		if entry, ok := prelude.Global(name); ok {
			return nil, fmt.Errorf("host binding $%s: the name is taken by %s", name, entry.Qualified())
		}
		value, _ := env.Lookup(name)
		scheme, err := TypeOfValue(value)
		if err != nil {
			return nil, fmt.Errorf("host binding $%s: %w", name, err)
		}
		out[name] = scheme
	}
	return out, nil
}

// TypeOfValue returns the generalized static type of a host value. Only the
// built-in sums may appear as variants.
func TypeOfValue(v runtime.Value) (types.Scheme, error) {
	next := 0
	fresh := func() *types.TypeVariable {
		next++
		return &types.TypeVariable{ID: next, Level: 1}
	}
	t, err := typeOfValue(v, fresh)
	if err != nil {
		return types.Scheme{}, err
	}
	names := make(map[*types.TypeVariable]string)
	var params []string
	for _, fv := range types.FreeVariables(t) {
		name := fmt.Sprintf("h%d", fv.ID)
		names[fv] = name
		params = append(params, name)
	}
	body := types.Map(types.Resolve(t), func(inner types.Type) (types.Type, bool) {
		if tv, ok := inner.(*types.TypeVariable); ok {
			return types.Param(names[tv]), true
		}
		return nil, false
	})
	return types.Scheme{Params: params, Body: body}, nil
}

func typeOfValue(v runtime.Value, fresh func() *types.TypeVariable) (types.Type, error) {
	switch val := v.(type) {
	case runtime.NumberValue:
		return types.Number, nil
	case runtime.TextValue:
		return types.Text, nil
	case runtime.AtomValue:
		return types.Atom, nil
	case *runtime.ListValue:
		elem := types.Type(fresh())
		for i, el := range val.Elements {
			t, err := typeOfValue(el, fresh)
			if err != nil {
				return nil, err
			}
			if uerr := unify(elem, t); uerr != nil {
				return nil, fmt.Errorf("list element %d: %s", i, uerr.message)
			}
		}
		return types.List(elem), nil
	case *runtime.RecordValue:
		fields := make([]types.FieldType, len(val.Entries))
		for i, entry := range val.Entries {
			t, err := typeOfValue(entry.Value, fresh)
			if err != nil {
				return nil, err
			}
			fields[i] = types.FieldType{Name: entry.Name, Type: t}
		}
		return types.NewRecord(fields), nil
	case runtime.VariantValue:
		return typeOfVariant(val, fresh)
	}
	return nil, fmt.Errorf("unsupported host value of kind %s", v.Kind())
}

func typeOfVariant(v runtime.VariantValue, fresh func() *types.TypeVariable) (types.Type, error) {
	payload := func() (types.Type, error) {
		if v.Payload == nil {
			return nil, fmt.Errorf("%s needs a payload", v.Tag)
		}
		return typeOfValue(v.Payload, fresh)
	}
	switch v.Tag {
	case "True", "False":
		return types.Boolean(), nil
	case "Null":
		return types.Options(fresh()), nil
	case "Some":
		t, err := payload()
		if err != nil {
			return nil, err
		}
		return types.Options(t), nil
	case "Ok":
		t, err := payload()
		if err != nil {
			return nil, err
		}
		return types.Result(t), nil
	case "Error":
		t, err := payload()
		if err != nil {
			return nil, err
		}
		if uerr := unify(types.Text, t); uerr != nil {
			return nil, fmt.Errorf("Error payload: %s", uerr.message)
		}
		return types.Result(fresh()), nil
	}
	return nil, fmt.Errorf("unsupported host constructor %s", v.Tag)
}
