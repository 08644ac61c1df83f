package registry

import "testing"

import "github.com/myopic/ecosim/scenario"

func TestBuildIndexIsStable(t *testing.T) {
	s, err := scenario.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r := Build(s)
	for i, name := range r.Names {
		if r.Index[name] != i {
			t.Fatalf("Index[%q] = %d, want %d", name, r.Index[name], i)
		}
	}
}

func TestBuildDeterministicAcrossCalls(t *testing.T) {
	s, err := scenario.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r1 := Build(s)
	r2 := Build(s)
	if r1.Len() != r2.Len() {
		t.Fatalf("registry length differs across builds: %d != %d", r1.Len(), r2.Len())
	}
	for i := range r1.Names {
		if r1.Names[i] != r2.Names[i] || r1.Derived[i] != r2.Derived[i] || r1.Bounds[i] != r2.Bounds[i] {
			t.Fatalf("registry field %d differs across builds", i)
		}
	}
}

func TestClampRestrictsToBounds(t *testing.T) {
	s, err := scenario.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r := Build(s)
	idx, ok := r.Index["temperature"]
	if !ok {
		t.Fatalf("expected temperature field in default registry")
	}
	if got := r.Clamp(idx, -5.0); got != 0.0 {
		t.Fatalf("Clamp below lower bound = %v, want 0.0", got)
	}
	if got := r.Clamp(idx, 5.0); got != 1.0 {
		t.Fatalf("Clamp above upper bound = %v, want 1.0", got)
	}
	if got := r.Clamp(idx, 0.5); got != 0.5 {
		t.Fatalf("Clamp within bounds changed value: got %v, want 0.5", got)
	}
}

func TestDerivedFieldFlag(t *testing.T) {
	s, err := scenario.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r := Build(s)
	idx, ok := r.Index["movement_cost"]
	if !ok {
		t.Fatalf("expected movement_cost field in default registry")
	}
	if !r.Derived[idx] {
		t.Fatalf("expected movement_cost to be marked derived")
	}
}
