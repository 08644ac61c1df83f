package telemetry

// LifetimeStats tracks one agent's statistics across its whole run,
// mirroring the teacher's per-entity LifetimeStats/LifetimeTracker
// pattern with the reproduction/clade fields dropped (this module's
// agents neither reproduce nor belong to clades).
type LifetimeStats struct {
	AgentID      int
	BirthTick    int
	TicksAlive   int
	TimesCaught  int
	PeakEnergy   float64
	ForageCount  int
	CauseOfDeath string
	Alive        bool
}

// LifetimeTracker manages per-agent lifetime statistics.
type LifetimeTracker struct {
	stats map[int]*LifetimeStats
}

// NewLifetimeTracker creates an empty tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{stats: make(map[int]*LifetimeStats)}
}

// Register starts tracking a newly created agent.
func (lt *LifetimeTracker) Register(agentID, birthTick int) {
	lt.stats[agentID] = &LifetimeStats{AgentID: agentID, BirthTick: birthTick, Alive: true}
}

// Get returns an agent's lifetime stats, or nil if untracked.
func (lt *LifetimeTracker) Get(agentID int) *LifetimeStats {
	return lt.stats[agentID]
}

// RecordForage increments an agent's successful forage count.
func (lt *LifetimeTracker) RecordForage(agentID int) {
	if s := lt.stats[agentID]; s != nil {
		s.ForageCount++
	}
}

// Update refreshes survival ticks, peak energy, catch count, and
// liveness from the agent's current tick state.
func (lt *LifetimeTracker) Update(agentID, tick int, energy float64, timesCaught int, alive bool, causeOfDeath string) {
	s := lt.stats[agentID]
	if s == nil {
		return
	}
	s.TicksAlive = tick - s.BirthTick
	s.TimesCaught = timesCaught
	if energy > s.PeakEnergy {
		s.PeakEnergy = energy
	}
	s.Alive = alive
	if !alive {
		s.CauseOfDeath = causeOfDeath
	}
}

// All returns every tracked agent's lifetime stats.
func (lt *LifetimeTracker) All() map[int]*LifetimeStats {
	return lt.stats
}

// Count returns the number of tracked agents.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
