package driver

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/Airsequel/AirScript/pkg/runtime"
)

// InputBinding is the host name stdin is bound to.
const InputBinding = "input"

// LoadFiles resolves every glob relative to dir. One match binds the file's
// value, several bind a List in lexical path order. A glob that matches
// nothing is an error.
func LoadFiles(dir string, files map[string]string) (map[string]runtime.Value, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]runtime.Value, len(files))
	for _, name := range names {
		pattern := files[name]
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(dir, pattern)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "files.%s", name)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("files.%s: %q matched no files", name, files[name])
		}
		sort.Strings(matches)

		values := make([]runtime.Value, len(matches))
		for i, path := range matches {
			v, err := loadFile(path)
			if err != nil {
				return nil, errors.Wrapf(err, "files.%s", name)
			}
			values[i] = v
		}
		if len(values) == 1 {
			out[name] = values[0]
		} else {
			out[name] = runtime.NewList(values)
		}
	}
	return out, nil
}

func loadFile(path string) (runtime.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		v, err := DecodeJSON(data)
		if err != nil {
			return nil, errors.Wrap(err, path)
		}
		return v, nil
	}
	return runtime.Text(string(data)), nil
}

// DecodeInput binds stdin: empty input is Null, anything else must be JSON
// and is wrapped in Some.
func DecodeInput(data []byte) (runtime.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return runtime.Null, nil
	}
	v, err := DecodeJSON(data)
	if err != nil {
		return nil, errors.Wrap(err, "input")
	}
	return runtime.Some(v), nil
}

// ConvertConstants turns decoded YAML constants into runtime values.
func ConvertConstants(constants map[string]any) (map[string]runtime.Value, error) {
	out := make(map[string]runtime.Value, len(constants))
	for name, raw := range constants {
		v, err := constantValue(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "constants.%s", name)
		}
		out[name] = v
	}
	return out, nil
}

func constantValue(raw any) (runtime.Value, error) {
	switch v := raw.(type) {
	case nil:
		return runtime.Null, nil
	case bool:
		return runtime.Bool(v), nil
	case string:
		return runtime.Text(v), nil
	case int, int64, uint64, float64:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, err
		}
		return runtime.Number(f), nil
	case []any:
		elements := make([]runtime.Value, len(v))
		for i, item := range v {
			el, err := constantValue(item)
			if err != nil {
				return nil, errors.Wrapf(err, "[%d]", i)
			}
			elements[i] = el
		}
		return runtime.NewList(optionalElements(elements)), nil
	}
	fields, err := cast.ToStringMapE(raw)
	if err != nil {
		return nil, errors.Errorf("unsupported constant %T", raw)
	}
	entries := make([]runtime.RecordEntry, 0, len(fields))
	for name, item := range fields {
		el, err := constantValue(item)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", name)
		}
		entries = append(entries, runtime.RecordEntry{Name: name, Value: el})
	}
	return runtime.NewRecord(entries), nil
}
