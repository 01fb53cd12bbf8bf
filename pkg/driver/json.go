package driver

import (
	"bytes"
	"slices"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"

	"github.com/Airsequel/AirScript/pkg/runtime"
)

// DecodeJSON converts one JSON document into a runtime value. Objects become
// records, true/false become Boolean variants and null becomes Null. A list
// holding a null is decoded as a list of options: its other elements are
// wrapped in Some.
func DecodeJSON(data []byte) (runtime.Value, error) {
	value, dataType, end, err := jsonparser.Get(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode json")
	}
	if rest := bytes.TrimSpace(data[end:]); len(rest) > 0 {
		return nil, errors.Errorf("decode json: unexpected %q after the value", truncate(rest, 16))
	}
	return decodeJSONValue(value, dataType)
}

func decodeJSONValue(value []byte, dataType jsonparser.ValueType) (runtime.Value, error) {
	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return nil, errors.Wrap(err, "decode json string")
		}
		return runtime.Text(s), nil
	case jsonparser.Number:
		f, err := jsonparser.ParseFloat(value)
		if err != nil {
			return nil, errors.Wrapf(err, "decode json number %s", value)
		}
		return runtime.Number(f), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(value)
		if err != nil {
			return nil, errors.Wrap(err, "decode json boolean")
		}
		return runtime.Bool(b), nil
	case jsonparser.Null:
		return runtime.Null, nil
	case jsonparser.Array:
		return decodeJSONArray(value)
	case jsonparser.Object:
		return decodeJSONObject(value)
	}
	return nil, errors.Errorf("decode json: unsupported value %s", dataType)
}

func decodeJSONArray(value []byte) (runtime.Value, error) {
	var (
		elements []runtime.Value
		failure  error
	)
	_, err := jsonparser.ArrayEach(value, func(item []byte, dataType jsonparser.ValueType, _ int, err error) {
		if failure != nil {
			return
		}
		if err != nil {
			failure = err
			return
		}
		el, err := decodeJSONValue(item, dataType)
		if err != nil {
			failure = err
			return
		}
		elements = append(elements, el)
	})
	if err == nil {
		err = failure
	}
	if err != nil {
		return nil, errors.Wrap(err, "decode json array")
	}
	return runtime.NewList(optionalElements(elements)), nil
}

// optionalElements wraps every non-null element in Some when the list holds
// a null, so the list types as a list of options.
func optionalElements(elements []runtime.Value) []runtime.Value {
	if !slices.ContainsFunc(elements, isNull) {
		return elements
	}
	for i, el := range elements {
		if !isNull(el) {
			elements[i] = runtime.Some(el)
		}
	}
	return elements
}

func isNull(v runtime.Value) bool {
	variant, ok := v.(runtime.VariantValue)
	return ok && variant.Tag == runtime.Null.Tag
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

func decodeJSONObject(value []byte) (runtime.Value, error) {
	var entries []runtime.RecordEntry
	seen := make(map[string]bool)
	err := jsonparser.ObjectEach(value, func(key, item []byte, dataType jsonparser.ValueType, _ int) error {
		name, err := jsonparser.ParseString(key)
		if err != nil {
			return err
		}
		if seen[name] {
			return errors.Errorf("duplicate key %q", name)
		}
		seen[name] = true
		el, err := decodeJSONValue(item, dataType)
		if err != nil {
			return errors.Wrapf(err, "key %q", name)
		}
		entries = append(entries, runtime.RecordEntry{Name: name, Value: el})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode json object")
	}
	return runtime.NewRecord(entries), nil
}
