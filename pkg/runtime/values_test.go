package runtime

import (
	"testing"
	"time"
)

func TestFormatValues(t *testing.T) {
	cases := []struct {
		value Value
		want  string
	}{
		{Ok(NewList([]Value{Number(0.25), Number(0.75)})), "Ok([0.25, 0.75])"},
		{Err("Provide an Array and not Null"), `Error("Provide an Array and not Null")`},
		{NewRecord([]RecordEntry{{Name: "total", Value: Number(40)}, {Name: "label", Value: AtomValue{Name: "sum"}}}), "{label: :sum, total: 40}"},
		{Null, "Null"},
	}
	for _, tc := range cases {
		if got := Format(tc.value); got != tc.want {
			t.Fatalf("Format = %s, want %s", got, tc.want)
		}
	}
}

func TestEqualIsStructural(t *testing.T) {
	a := NewRecord([]RecordEntry{{Name: "x", Value: Some(Text("a"))}, {Name: "y", Value: NewList(nil)}})
	b := NewRecord([]RecordEntry{{Name: "y", Value: NewList(nil)}, {Name: "x", Value: Some(Text("a"))}})
	if !Equal(a, b) {
		t.Fatalf("expected records with the same fields to be equal")
	}
	if Equal(Some(Text("a")), Some(Text("b"))) {
		t.Fatalf("expected different payloads to differ")
	}
	if Equal(Null, Some(Text("a"))) {
		t.Fatalf("expected Null to differ from Some")
	}
}

func TestRecordGet(t *testing.T) {
	r := NewRecord([]RecordEntry{{Name: "b", Value: Number(2)}, {Name: "a", Value: Number(1)}})
	if v, ok := r.Get("b"); !ok || !Equal(v, Number(2)) {
		t.Fatalf("Get(b) = %v, %v", v, ok)
	}
	if _, ok := r.Get("c"); ok {
		t.Fatalf("expected missing field")
	}
}

func TestBudgetValidateAndCap(t *testing.T) {
	if err := (Budget{MaxCycles: 1, MaxMemoryBytes: 1}).Validate(); err == nil {
		t.Fatalf("expected zero wall time to be rejected")
	}
	b := Budget{MaxCycles: 500, MaxMemoryBytes: 10, MaxWallTime: time.Minute}
	capped := b.Cap(Budget{MaxCycles: 100, MaxWallTime: time.Second})
	if capped.MaxCycles != 100 || capped.MaxMemoryBytes != 10 || capped.MaxWallTime != time.Second {
		t.Fatalf("unexpected capped budget: %+v", capped)
	}
}

func TestDeepFootprint(t *testing.T) {
	list := NewList([]Value{Number(1), Text("ab")})
	want := ListFootprint(2) + NumberFootprint + TextFootprint("ab")
	if got := DeepFootprint(list); got != want {
		t.Fatalf("DeepFootprint = %d, want %d", got, want)
	}
}

func TestEnvironmentIsACopy(t *testing.T) {
	bindings := map[string]Value{"input": Null}
	env := NewEnvironment(bindings)
	bindings["input"] = True
	if v, _ := env.Lookup("input"); !Equal(v, Null) {
		t.Fatalf("environment changed after construction: %v", v)
	}
}
