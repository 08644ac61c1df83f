// Package registry builds the stable field index from a scenario's
// ordered field list. A field's position in this ordering is its field_id,
// used by delta records and by every tensor/kernel operation.
package registry

import "github.com/myopic/ecosim/scenario"

// Bounds is an inclusive [lo, hi] clamp range for one field.
type Bounds struct {
	Lo float64
	Hi float64
}

// Registry is the pure, total projection of a scenario's field list.
// Identical scenarios (by field list content) yield identical registries.
type Registry struct {
	Names   []string
	Index   map[string]int
	Bounds  []Bounds
	Coeffs  []scenario.Coeffs
	Derived []bool
}

// Build constructs a Registry from a scenario's field list, in declaration
// order.
func Build(s *scenario.Scenario) *Registry {
	n := len(s.Fields)
	r := &Registry{
		Names:   make([]string, n),
		Index:   make(map[string]int, n),
		Bounds:  make([]Bounds, n),
		Coeffs:  make([]scenario.Coeffs, n),
		Derived: make([]bool, n),
	}
	for i, f := range s.Fields {
		r.Names[i] = f.Name
		r.Index[f.Name] = i
		r.Bounds[i] = Bounds{Lo: f.Bounds[0], Hi: f.Bounds[1]}
		r.Coeffs[i] = f.Coeffs
		r.Derived[i] = f.Derived
	}
	return r
}

// Len returns the number of registered fields.
func (r *Registry) Len() int { return len(r.Names) }

// Clamp restricts v to field i's bounds.
func (r *Registry) Clamp(i int, v float32) float32 {
	lo, hi := float32(r.Bounds[i].Lo), float32(r.Bounds[i].Hi)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
