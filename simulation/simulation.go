// Package simulation wires the environment view, predator population,
// and banded agents together into the per-tick agent simulation loop:
// hydrate the environment, move predators toward living agents, step
// every living agent's band/arbiter decision, check for predation, and
// summarize the resulting population. Grounded on original_source's
// `banded_agent.py`/`predators.py` simulation driver pattern (the
// per-step orchestration their UI runner performs headlessly).
package simulation

import (
	"math/rand"

	"github.com/myopic/ecosim/agent"
	"github.com/myopic/ecosim/arbiter"
	"github.com/myopic/ecosim/band"
	"github.com/myopic/ecosim/envview"
	"github.com/myopic/ecosim/grid"
	"github.com/myopic/ecosim/metrics"
	"github.com/myopic/ecosim/predators"
)

// Config parameterizes a simulation run over an already-produced
// environment run directory.
type Config struct {
	Root             string
	NumPredators     int
	NumAgents        int
	Seed             int64
	PerceptionRadius int
}

// Simulation owns the environment view, predator system, and agent
// population for one agent-simulation run.
type Simulation struct {
	grid      *envview.Grid
	predators *predators.System
	agents    []*agent.BandedAgent

	width, height int
	radius        int
	rng           *rand.Rand
}

// New opens the environment run at cfg.Root, loads tick 0, and seeds a
// predator population and an agent population at random positions.
func New(cfg Config) (*Simulation, error) {
	g, err := envview.New(cfg.Root)
	if err != nil {
		return nil, err
	}
	if err := g.LoadTick(0); err != nil {
		return nil, err
	}
	h, w, _ := g.Shape()
	rng := rand.New(rand.NewSource(cfg.Seed))

	pred := predators.New(w, h, cfg.NumPredators, rng)

	agents := make([]*agent.BandedAgent, cfg.NumAgents)
	for i := range agents {
		x, y := rng.Intn(w), rng.Intn(h)
		bands := []band.Band{band.NewPhysiologicalBand(rng)}
		agents[i] = agent.New(i, x, y, bands, arbiter.New(rng))
	}

	radius := cfg.PerceptionRadius
	if radius <= 0 {
		radius = 3
	}
	return &Simulation{
		grid:      g,
		predators: pred,
		agents:    agents,
		width:     w,
		height:    h,
		radius:    radius,
		rng:       rng,
	}, nil
}

// Step advances the simulation to the environment's given tick and runs
// one full agent-simulation step: predator pursuit, every living agent's
// perceive/decide/act/learn cycle, and predation resolution, returning a
// population summary.
func (s *Simulation) Step(tick int) (metrics.PopulationSnapshot, error) {
	if err := s.grid.LoadTick(tick); err != nil {
		return metrics.PopulationSnapshot{}, err
	}

	s.predators.Update(s.livingPositions())

	for _, a := range s.agents {
		st := a.GetStateSummary()
		if !st.Alive {
			continue
		}
		env, err := s.buildEnvState(st.X, st.Y)
		if err != nil {
			return metrics.PopulationSnapshot{}, err
		}
		a.Step(env, s.width, s.height)
	}

	s.resolvePredation()

	return metrics.Population(tick, s.agentSamples()), nil
}

func (s *Simulation) livingPositions() [][2]int {
	var positions [][2]int
	for _, a := range s.agents {
		st := a.GetStateSummary()
		if st.Alive {
			positions = append(positions, [2]int{st.X, st.Y})
		}
	}
	return positions
}

// resolvePredation re-gathers living-agent positions after the step and
// applies a catch to every caught index, mapping the predation system's
// positional indices back to agent indices via the same live ordering.
func (s *Simulation) resolvePredation() {
	var positions [][2]int
	var liveIdx []int
	for i, a := range s.agents {
		st := a.GetStateSummary()
		if st.Alive {
			positions = append(positions, [2]int{st.X, st.Y})
			liveIdx = append(liveIdx, i)
		}
	}
	for _, ci := range s.predators.CheckPredation(positions) {
		s.agents[liveIdx[ci]].HandlePredation()
	}
}

func (s *Simulation) agentSamples() []metrics.AgentSample {
	samples := make([]metrics.AgentSample, len(s.agents))
	for i, a := range s.agents {
		st := a.GetStateSummary()
		dominant := 0
		if traj := a.GetTrajectory(); len(traj) > 0 {
			dominant = traj[len(traj)-1].BandID
		}
		samples[i] = metrics.AgentSample{Alive: st.Alive, Energy: st.Energy, DominantBand: dominant}
	}
	return samples
}

// buildEnvState samples the loaded environment tick and the predator
// threat field at and around (x, y), wrapping toroidally so every band
// reads a full, meaningful neighborhood regardless of world-edge
// proximity.
func (s *Simulation) buildEnvState(x, y int) (band.EnvState, error) {
	temp, err := s.grid.GetCell(x, y, "temperature")
	if err != nil {
		return band.EnvState{}, err
	}
	hyd, err := s.grid.GetCell(x, y, "hydration")
	if err != nil {
		return band.EnvState{}, err
	}
	veg, err := s.grid.GetCell(x, y, "vegetation")
	if err != nil {
		return band.EnvState{}, err
	}
	mc, err := s.grid.GetCell(x, y, "movement_cost")
	if err != nil {
		return band.EnvState{}, err
	}

	nbVeg, err := s.neighborhoodRaster(x, y, "vegetation")
	if err != nil {
		return band.EnvState{}, err
	}
	nbHyd, err := s.neighborhoodRaster(x, y, "hydration")
	if err != nil {
		return band.EnvState{}, err
	}

	return band.EnvState{
		Temperature:            float64(temp),
		Hydration:               float64(hyd),
		Vegetation:              float64(veg),
		Threat:                  float64(s.predators.ThreatAt(x, y)),
		MovementCost:            float64(mc),
		NeighborhoodVegetation: nbVeg,
		NeighborhoodHydration:  nbHyd,
		NeighborhoodThreat:     s.threatNeighborhood(x, y),
	}, nil
}

func (s *Simulation) neighborhoodRaster(x, y int, field string) (*grid.Raster, error) {
	size := 2*s.radius + 1
	r := grid.NewRaster(size, size)
	for dy := -s.radius; dy <= s.radius; dy++ {
		for dx := -s.radius; dx <= s.radius; dx++ {
			xx := grid.WrapX(x+dx, s.width)
			yy := grid.WrapY(y+dy, s.height)
			v, err := s.grid.GetCell(xx, yy, field)
			if err != nil {
				return nil, err
			}
			r.Set(dx+s.radius, dy+s.radius, v)
		}
	}
	return r, nil
}

func (s *Simulation) threatNeighborhood(x, y int) *grid.Raster {
	size := 2*s.radius + 1
	r := grid.NewRaster(size, size)
	for dy := -s.radius; dy <= s.radius; dy++ {
		for dx := -s.radius; dx <= s.radius; dx++ {
			xx := grid.WrapX(x+dx, s.width)
			yy := grid.WrapY(y+dy, s.height)
			r.Set(dx+s.radius, dy+s.radius, s.predators.ThreatAt(xx, yy))
		}
	}
	return r
}

// Agents exposes the agent population for telemetry and trace output.
func (s *Simulation) Agents() []*agent.BandedAgent { return s.agents }

// Predators exposes the predator system for telemetry.
func (s *Simulation) Predators() *predators.System { return s.predators }

// Shape returns the loaded environment's (height, width).
func (s *Simulation) Shape() (int, int) { return s.height, s.width }
