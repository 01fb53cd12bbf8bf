package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Airsequel/AirScript/pkg/runtime"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDecodeJSON(t *testing.T) {
	v, err := DecodeJSON([]byte(`[{"price": 10, "name": "a\"b"}, {"price": 30, "name": "c", "tags": [true, false]}]`))
	require.NoError(t, err)
	require.Equal(t, `[{name: "a\"b", price: 10}, {name: "c", price: 30, tags: [True, False]}]`, runtime.Format(v))
}

func TestDecodeJSONNullsInLists(t *testing.T) {
	v, err := DecodeJSON([]byte(`[1, null, 3]`))
	require.NoError(t, err)
	require.True(t, runtime.Equal(v, runtime.NewList([]runtime.Value{
		runtime.Some(runtime.Number(1)), runtime.Null, runtime.Some(runtime.Number(3)),
	})))

	v, err = DecodeJSON([]byte(`{"a": null}`))
	require.NoError(t, err)
	field, _ := v.(*runtime.RecordValue).Get("a")
	require.True(t, runtime.Equal(field, runtime.Null))
}

func TestDecodeJSONErrors(t *testing.T) {
	for _, doc := range []string{``, `[1,`, `{"a": 1, "a": 2}`, `[1] junk`, `{"a": 1} {"b": 2}`} {
		_, err := DecodeJSON([]byte(doc))
		require.Error(t, err, doc)
	}
}

func TestDecodeInput(t *testing.T) {
	v, err := DecodeInput([]byte("  \n"))
	require.NoError(t, err)
	require.True(t, runtime.Equal(v, runtime.Null))

	v, err = DecodeInput([]byte(" [1]\n\n"))
	require.NoError(t, err)
	require.Equal(t, "Some([1])", runtime.Format(v))
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data/b.json", `20`)
	writeFile(t, dir, "data/a.json", `10`)
	writeFile(t, dir, "notes.txt", "hello")

	values, err := LoadFiles(dir, map[string]string{"prices": "data/*.json", "notes": "notes.txt"})
	require.NoError(t, err)
	require.Equal(t, "[10, 20]", runtime.Format(values["prices"]))
	require.Equal(t, `"hello"`, runtime.Format(values["notes"]))

	_, err = LoadFiles(dir, map[string]string{"missing": "nothing/*.csv"})
	require.ErrorContains(t, err, "matched no files")
}

func TestConvertConstants(t *testing.T) {
	var raw map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(`
rate: 0.5
count: 3
label: hi
enabled: true
limits: [1, 2]
gaps: [1, null]
owner: {name: ada, age: 36}
missing: null
`), &raw))

	values, err := ConvertConstants(raw)
	require.NoError(t, err)
	require.Equal(t, "0.5", runtime.Format(values["rate"]))
	require.Equal(t, "3", runtime.Format(values["count"]))
	require.Equal(t, `"hi"`, runtime.Format(values["label"]))
	require.Equal(t, "True", runtime.Format(values["enabled"]))
	require.Equal(t, "[1, 2]", runtime.Format(values["limits"]))
	require.Equal(t, "[Some(1), Null]", runtime.Format(values["gaps"]))
	require.Equal(t, `{age: 36, name: "ada"}`, runtime.Format(values["owner"]))
	require.Equal(t, "Null", runtime.Format(values["missing"]))
}
