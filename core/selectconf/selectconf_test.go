package selectconf

import (
	"errors"
	"reflect"
	"testing"
)

func TestResolve_MissingWithNilOptions(t *testing.T) {
	r := NewRegistry()

	got, err := r.Resolve("missing", nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != nil {
		t.Errorf("Resolve(missing, nil) = %v, want nil", got)
	}
}

func TestResolve_MissingWithOptions(t *testing.T) {
	r := NewRegistry()

	got, err := r.Resolve("missing", map[string]any{"width": 10})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := map[string]any{"width": 10}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
}

func TestResolve_EmptyOptionsEqualsRegistered(t *testing.T) {
	r := NewRegistry()
	cfg := map[string]any{"a": map[string]any{"x": 0, "y": 2}, "b": "keep"}
	r.Register("picker", cfg)

	got, err := r.Resolve("picker", map[string]any{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("Resolve(picker, {}) = %v, want deep-equal to registered %v", got, cfg)
	}
	if reflect.ValueOf(got).Pointer() == reflect.ValueOf(cfg).Pointer() {
		t.Error("Resolve() returned the stored map itself, want a copy")
	}
}

func TestResolve_NestedKeysMerge(t *testing.T) {
	r := NewRegistry()
	r.Register("picker", map[string]any{"a": map[string]any{"x": 0, "y": 2}})

	got, err := r.Resolve("picker", map[string]any{"a": map[string]any{"x": 1}})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := map[string]any{"a": map[string]any{"x": 1, "y": 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
}

func TestResolve_SliceReplacesMap(t *testing.T) {
	r := NewRegistry()
	r.Register("picker", map[string]any{"a": map[string]any{"x": 1}})

	got, err := r.Resolve("picker", map[string]any{"a": []int{1, 2}})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := map[string]any{"a": []int{1, 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	r := NewRegistry()
	r.Register("picker", map[string]any{"a": map[string]any{"x": 0, "y": 2}, "b": true})
	opts := map[string]any{"a": map[string]any{"x": 1}}

	first, err := r.Resolve("picker", opts)
	if err != nil {
		t.Fatalf("first Resolve() error = %v", err)
	}
	second, err := r.Resolve("picker", opts)
	if err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Resolve() differed: %v vs %v", first, second)
	}
}

func TestResolve_DoesNotMutateInputs(t *testing.T) {
	r := NewRegistry()
	stored := map[string]any{"a": map[string]any{"x": 0, "y": 2}}
	r.Register("picker", stored)
	opts := map[string]any{"a": map[string]any{"x": 1}}

	if _, err := r.Resolve("picker", opts); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if !reflect.DeepEqual(stored, map[string]any{"a": map[string]any{"x": 0, "y": 2}}) {
		t.Errorf("stored config mutated: %v", stored)
	}
	if !reflect.DeepEqual(opts, map[string]any{"a": map[string]any{"x": 1}}) {
		t.Errorf("options mutated: %v", opts)
	}
}

func TestResolve_UntouchedBranchesAlias(t *testing.T) {
	// Branches the options do not touch are shared by reference; this is
	// a documented contract, not an accident.
	r := NewRegistry()
	nested := map[string]any{"x": 1}
	r.Register("picker", map[string]any{"shared": nested})

	got, err := r.Resolve("picker", map[string]any{"other": true})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if reflect.ValueOf(got["shared"]).Pointer() != reflect.ValueOf(nested).Pointer() {
		t.Error("untouched nested branch should alias the stored config")
	}
}

func TestRegister_ReplacesWholesale(t *testing.T) {
	r := NewRegistry()
	r.Register("picker", map[string]any{"a": 1, "b": 2})
	r.Register("picker", map[string]any{"c": 3})

	got, err := r.Resolve("picker", nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := map[string]any{"c": 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() after re-register = %v, want %v", got, want)
	}
}

func TestResolve_CyclicConfig(t *testing.T) {
	r := NewRegistry()
	cyclic := map[string]any{}
	cyclic["self"] = cyclic
	r.Register("bad", cyclic)

	cyclicOpts := map[string]any{}
	cyclicOpts["self"] = cyclicOpts

	_, err := r.Resolve("bad", cyclicOpts)
	if !errors.Is(err, ErrInvalidConfigShape) {
		t.Errorf("Resolve() error = %v, want ErrInvalidConfigShape", err)
	}
}

func TestNames(t *testing.T) {
	r := NewRegistry()
	r.Register("b", map[string]any{})
	r.Register("a", map[string]any{})

	got := r.Names()
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}
