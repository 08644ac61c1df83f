// Package predators implements the population of pursuit predators: a
// per-unit hunt radius and speed, toroidal nearest-agent pursuit or
// random patrol, threat-field stamping, and the predation check. Grounded
// on original_source's `predators.py` `PredatorSystem`.
package predators

import (
	"math"
	"math/rand"

	"github.com/myopic/ecosim/grid"
)

// Predator is one pursuit unit.
type Predator struct {
	ID         int
	X, Y       int
	HuntRadius int
	Speed      int
	Active     bool
}

// System owns the predator population and the shared threat field.
type System struct {
	width, height int
	Predators     []*Predator
	Threat        *grid.Raster
	rng           *rand.Rand
}

// New builds a population of n predators at random positions, with
// hunt_radius uniform in [5,15) and speed uniform in [1,3), matching the
// reference's parameter ranges exactly.
func New(width, height, n int, r *rand.Rand) *System {
	s := &System{width: width, height: height, Threat: grid.NewRaster(height, width), rng: r}
	for i := 0; i < n; i++ {
		s.Predators = append(s.Predators, &Predator{
			ID:         i,
			X:          r.Intn(width),
			Y:          r.Intn(height),
			HuntRadius: 5 + r.Intn(10),
			Speed:      1 + r.Intn(2),
			Active:     true,
		})
	}
	return s
}

// Update advances every active predator one step and rebuilds the threat
// field from scratch.
func (s *System) Update(agentPositions [][2]int) {
	for i := range s.Threat.Data {
		s.Threat.Data[i] = 0
	}
	for _, p := range s.Predators {
		if !p.Active {
			continue
		}
		if tx, ty, ok := s.findClosestAgent(p, agentPositions); ok {
			s.moveToward(p, tx, ty)
		} else {
			s.randomPatrol(p)
		}
		s.stampThreat(p)
	}
}

func (s *System) toroidalDelta(a, b, bound int) int {
	d := a - b
	ad := d
	if ad < 0 {
		ad = -ad
	}
	if ad > bound-ad {
		if d > 0 {
			return -(bound - ad)
		}
		return bound - ad
	}
	return d
}

func (s *System) findClosestAgent(p *Predator, positions [][2]int) (int, int, bool) {
	minDist := math.Inf(1)
	found := false
	var bx, by int
	for _, pos := range positions {
		ax, ay := pos[0], pos[1]
		dx := float64(s.toroidalDelta(ax, p.X, s.width))
		dy := float64(s.toroidalDelta(ay, p.Y, s.height))
		dist := math.Hypot(dx, dy)
		if dist < minDist && dist <= float64(p.HuntRadius) {
			minDist = dist
			bx, by = ax, ay
			found = true
		}
	}
	return bx, by, found
}

func sign(v int) int {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (s *System) moveToward(p *Predator, tx, ty int) {
	dx := s.toroidalDelta(tx, p.X, s.width)
	dy := s.toroidalDelta(ty, p.Y, s.height)

	var stepX, stepY int
	if absInt(dx) > absInt(dy) {
		stepX = sign(dx) * minInt(p.Speed, absInt(dx))
	} else {
		stepY = sign(dy) * minInt(p.Speed, absInt(dy))
	}

	p.X = grid.WrapX(p.X+stepX, s.width)
	p.Y = grid.WrapY(p.Y+stepY, s.height)
}

func (s *System) randomPatrol(p *Predator) {
	dx := s.rng.Intn(3) - 1
	dy := s.rng.Intn(3) - 1
	p.X = grid.WrapX(p.X+dx, s.width)
	p.Y = grid.WrapY(p.Y+dy, s.height)
}

func (s *System) stampThreat(p *Predator) {
	radius := p.HuntRadius + 5
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			dist := math.Hypot(float64(dx), float64(dy))
			if dist > float64(radius) {
				continue
			}
			x := grid.WrapX(p.X+dx, s.width)
			y := grid.WrapY(p.Y+dy, s.height)
			threat := float32(math.Max(0, 1.0-dist/float64(radius)))
			if threat > s.Threat.At(x, y) {
				s.Threat.Set(x, y, threat)
			}
		}
	}
}

// ThreatAt returns the threat field value at (x,y).
func (s *System) ThreatAt(x, y int) float32 { return s.Threat.At(x, y) }

// LocalThreat returns a copy of the threat field clipped to a square
// neighborhood of the given radius around (x,y), clamped at the world
// edges (not wrapped), matching the reference's slice semantics.
func (s *System) LocalThreat(x, y, radius int) *grid.Raster {
	yMin := maxInt(0, y-radius)
	yMax := minInt(s.height, y+radius+1)
	xMin := maxInt(0, x-radius)
	xMax := minInt(s.width, x+radius+1)

	out := grid.NewRaster(yMax-yMin, xMax-xMin)
	for yy := yMin; yy < yMax; yy++ {
		for xx := xMin; xx < xMax; xx++ {
			out.Set(xx-xMin, yy-yMin, s.Threat.At(xx, yy))
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// CheckPredation returns the indices into agentPositions whose toroidal
// distance to any active predator is <= 1.
func (s *System) CheckPredation(agentPositions [][2]int) []int {
	var caught []int
	for i, pos := range agentPositions {
		ax, ay := pos[0], pos[1]
		for _, p := range s.Predators {
			if !p.Active {
				continue
			}
			dx := float64(s.toroidalDelta(ax, p.X, s.width))
			dy := float64(s.toroidalDelta(ay, p.Y, s.height))
			if math.Hypot(dx, dy) <= 1.0 {
				caught = append(caught, i)
				break
			}
		}
	}
	return caught
}

// State summarizes the predator population for telemetry.
type State struct {
	NumActive  int
	Positions  [][2]int
	ThreatMean float64
	ThreatMax  float64
}

// GetState reports the current predator population summary.
func (s *System) GetState() State {
	st := State{}
	for _, p := range s.Predators {
		if p.Active {
			st.NumActive++
			st.Positions = append(st.Positions, [2]int{p.X, p.Y})
		}
	}
	st.ThreatMean = s.Threat.Mean()
	max := float32(0)
	for _, v := range s.Threat.Data {
		if v > max {
			max = v
		}
	}
	st.ThreatMax = float64(max)
	return st
}
