package types

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegistryBuiltinOrder(t *testing.T) {
	r := NewRegistry()
	var names []string
	for _, def := range r.Sums() {
		names = append(names, def.Name)
	}
	want := []string{BooleanName, ResultName, OptionsName, TagName}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("registration order mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryMissingKeepsRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	shape, err := r.Reserve("Shape", nil)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	for _, name := range []string{"Circle", "Square", "Triangle", "Empty"} {
		if _, err := r.AddVariant(shape, name, nil); err != nil {
			t.Fatalf("AddVariant(%s): %v", name, err)
		}
	}
	got := r.Missing(shape, map[string]bool{"Square": true})
	if diff := cmp.Diff([]string{"Circle", "Triangle", "Empty"}, got); diff != "" {
		t.Fatalf("missing mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	var dup *DuplicateError
	if _, err := r.Reserve("Result", nil); !errors.As(err, &dup) || dup.Kind != "type" {
		t.Fatalf("expected duplicate type error, got %v", err)
	}
	if _, err := r.Reserve("Number", nil); err == nil {
		t.Fatalf("expected primitive name to be reserved")
	}
	def, _ := r.Reserve("Answer", nil)
	if _, err := r.AddVariant(def, "Ok", nil); !errors.As(err, &dup) || dup.Kind != "constructor" {
		t.Fatalf("expected duplicate constructor error, got %v", err)
	}
}

func TestRegisterAdHocJoinsTag(t *testing.T) {
	r := NewRegistry()
	first := r.RegisterAdHoc("Pending", nil)
	again := r.RegisterAdHoc("Pending", Number)
	if first != again {
		t.Fatalf("expected repeated registration to return the same variant")
	}
	tag, _ := r.Lookup(TagName)
	if !tag.Open || len(tag.Variants) != 1 || tag.Variants[0].Name != "Pending" {
		t.Fatalf("unexpected Tag union: %+v", tag)
	}
	ok, _ := r.Constructor("Ok")
	if ok.Sum.Name != ResultName {
		t.Fatalf("expected Ok to belong to Result, got %s", ok.Sum.Name)
	}
}

func TestPayloadTypeInstantiatesParameters(t *testing.T) {
	r := NewRegistry()
	some, _ := r.Constructor("Some")
	payload := PayloadType(some, []Type{List(Text)})
	if payload.Name() != "List(Text)" {
		t.Fatalf("expected List(Text), got %s", payload.Name())
	}
	null, _ := r.Constructor("Null")
	if PayloadType(null, []Type{Number}) != nil {
		t.Fatalf("expected no payload for Null")
	}
}

func TestTypeNames(t *testing.T) {
	v := &TypeVariable{ID: 7}
	cases := []struct {
		typ  Type
		want string
	}{
		{Number, "Number"},
		{Result(List(Number)), "Result(List(Number))"},
		{NewRecord([]FieldType{{Name: "price", Type: Number}, {Name: "name", Type: Text}}), "{name: Text, price: Number}"},
		{Func(Boolean(), Number, Text), "(Number, Text) -> Boolean"},
		{v, "t7"},
	}
	for _, tc := range cases {
		if got := tc.typ.Name(); got != tc.want {
			t.Fatalf("Name() = %q, want %q", got, tc.want)
		}
	}
	v.Instance = Atom
	if Prune(v) != Type(Atom) {
		t.Fatalf("expected prune to follow the bound variable")
	}
	if got := Resolve(Options(v)).Name(); got != "Options(Atom)" {
		t.Fatalf("Resolve = %q", got)
	}
}
