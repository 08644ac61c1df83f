// Package rng derives independent, deterministic random streams for each
// named generation partition from a single base seed.
package rng

import "math/rand"

// Standard partition names used by scenario configuration and initgen.
const (
	TerrainElevation = "terrain_elevation"
	Precipitation    = "precipitation"
	RiverRouting     = "river_routing"
	VegetationSeed   = "vegetation_seed"
	KernelNoise      = "kernel_noise"
)

// Partitioner hands out a *rand.Rand per named partition, seeded as
// base_seed + offset. Two partitioners built from the same base seed and
// offsets produce bit-identical streams regardless of call order, since
// each partition's source is independent of the others.
type Partitioner struct {
	baseSeed int64
	offsets  map[string]int64
}

// New builds a Partitioner from a base seed and a partition name -> offset
// table. Offsets are typically small integers defined by scenario config.
func New(baseSeed int64, offsets map[string]int64) *Partitioner {
	owned := make(map[string]int64, len(offsets))
	for k, v := range offsets {
		owned[k] = v
	}
	return &Partitioner{baseSeed: baseSeed, offsets: owned}
}

// Stream returns a fresh *rand.Rand for the named partition. Callers that
// need the stream again later should retain the returned generator rather
// than calling Stream twice, since each call reseeds from scratch.
func (p *Partitioner) Stream(partition string) *rand.Rand {
	off, ok := p.offsets[partition]
	if !ok {
		off = 0
	}
	return rand.New(rand.NewSource(p.baseSeed + off))
}

// Seed returns the raw int64 seed used for the named partition, for callers
// that need to pass a seed to a third-party generator (e.g. opensimplex)
// instead of a *rand.Rand.
func (p *Partitioner) Seed(partition string) int64 {
	off, ok := p.offsets[partition]
	if !ok {
		off = 0
	}
	return p.baseSeed + off
}

// Offsets returns a copy of the partition name -> offset table, for
// recording into a run manifest.
func (p *Partitioner) Offsets() map[string]int64 {
	out := make(map[string]int64, len(p.offsets))
	for k, v := range p.offsets {
		out[k] = v
	}
	return out
}
