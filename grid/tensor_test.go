package grid

import (
	"math"
	"testing"

	"github.com/myopic/ecosim/registry"
	"github.com/myopic/ecosim/scenario"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	s, err := scenario.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return registry.Build(s)
}

func TestSetAtRoundTrip(t *testing.T) {
	tn := NewTensor(4, 4, 2)
	tn.Set(1, 2, 0, 3.5)
	if got := tn.At(1, 2, 0); got != 3.5 {
		t.Fatalf("At = %v, want 3.5", got)
	}
	if got := tn.At(1, 2, 1); got != 0 {
		t.Fatalf("unset cell At = %v, want 0", got)
	}
}

func TestChannelRoundTrip(t *testing.T) {
	tn := NewTensor(3, 3, 2)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			tn.Set(x, y, 0, float32(x+y))
		}
	}
	ch := tn.Channel(0)
	ch.Set(0, 0, 100)
	if tn.At(0, 0, 0) != 0 {
		t.Fatalf("mutating Channel() copy affected source tensor")
	}

	tn.SetChannel(1, ch)
	if tn.At(0, 0, 1) != 100 {
		t.Fatalf("SetChannel did not propagate values back into tensor")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	tn := NewTensor(2, 2, 1)
	tn.Set(0, 0, 0, 1)
	clone := tn.Clone()
	clone.Set(0, 0, 0, 99)
	if tn.At(0, 0, 0) != 1 {
		t.Fatalf("Clone is not independent of source")
	}
}

func TestClampAllRestrictsToBounds(t *testing.T) {
	reg := testRegistry(t)
	tn := NewTensor(2, 2, reg.Len())
	tempIdx := reg.Index["temperature"]
	tn.Set(0, 0, tempIdx, 5.0)
	tn.Set(1, 1, tempIdx, -5.0)
	tn.ClampAll(reg)
	if got := tn.At(0, 0, tempIdx); got != 1.0 {
		t.Fatalf("ClampAll upper = %v, want 1.0", got)
	}
	if got := tn.At(1, 1, tempIdx); got != 0.0 {
		t.Fatalf("ClampAll lower = %v, want 0.0", got)
	}
}

func TestCheckFiniteDetectsNaN(t *testing.T) {
	tn := NewTensor(2, 2, 1)
	if err := tn.CheckFinite("test"); err != nil {
		t.Fatalf("expected finite zeroed tensor to pass, got %v", err)
	}
	tn.Set(0, 0, 0, float32(math.NaN()))
	if err := tn.CheckFinite("test"); err == nil {
		t.Fatalf("expected error for NaN cell")
	}
}

func TestDiff(t *testing.T) {
	a := NewTensor(2, 2, 1)
	b := NewTensor(2, 2, 1)
	a.Set(0, 0, 0, 1)
	b.Set(0, 0, 0, 3)
	d := Diff(a, b)
	if got := d.At(0, 0, 0); got != 2 {
		t.Fatalf("Diff = %v, want 2", got)
	}
}

func TestWrapXY(t *testing.T) {
	cases := []struct {
		v, bound, want int
	}{
		{0, 10, 0},
		{9, 10, 9},
		{10, 10, 0},
		{-1, 10, 9},
		{-11, 10, 9},
	}
	for _, c := range cases {
		if got := WrapX(c.v, c.bound); got != c.want {
			t.Fatalf("WrapX(%d,%d) = %d, want %d", c.v, c.bound, got, c.want)
		}
		if got := WrapY(c.v, c.bound); got != c.want {
			t.Fatalf("WrapY(%d,%d) = %d, want %d", c.v, c.bound, got, c.want)
		}
	}
}
