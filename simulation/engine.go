package simulation

import (
	"math/rand/v2"

	vm "batch_renderer/vector_math"
)

// fallback separation direction for objects that share a position
var separationFallback = vm.Vec3{X: 1}

// Engine holds the per-object transform state, indexed by object id. The slices are allocated once and
// never resized.
type Engine struct {
	Positions    []vm.Vec3
	Velocities   []vm.Vec3
	Orientations []vm.Vec3 // euler angles in degrees
	Rotations    []vm.Vec3 // angular velocity in degrees

	params      Params
	arrangement Arrangement
	rng         *rand.Rand
}

// New creates an engine for n objects, randomizes the motion and places every object on its grid cell.
func New(n int, params Params, rng *rand.Rand) *Engine {
	e := &Engine{
		Positions:    make([]vm.Vec3, n),
		Velocities:   make([]vm.Vec3, n),
		Orientations: make([]vm.Vec3, n),
		Rotations:    make([]vm.Vec3, n),
		params:       params,
		rng:          rng,
	}
	e.Rearrange()
	return e
}

func (e *Engine) Count() int {
	return len(e.Positions)
}

func (e *Engine) Params() Params {
	return e.params
}

func (e *Engine) Arrangement() *Arrangement {
	return &e.arrangement
}

func (e *Engine) uniform(limit float32) float32 {
	return (e.rng.Float32()*2 - 1) * limit
}

func (e *Engine) uniformVec3(limit float32) vm.Vec3 {
	return vm.Vec3{X: e.uniform(limit), Y: e.uniform(limit), Z: e.uniform(limit)}
}

// Randomize zeroes every orientation and draws fresh linear and angular velocities.
func (e *Engine) Randomize() {
	for i := range e.Velocities {
		e.Velocities[i] = e.uniformVec3(e.params.InitialSpeed)
		e.Rotations[i] = e.uniformVec3(e.params.InitialSpin)
		e.Orientations[i] = vm.Vec3{}
	}
}

// ApplyArrangement moves every object back onto its grid cell.
func (e *Engine) ApplyArrangement() {
	copy(e.Positions, e.arrangement.Arrange(e.Count(), e.params.GridSpacing))
}

// Rearrange restores the grid and restarts the motion from fresh random velocities.
func (e *Engine) Rearrange() {
	e.ApplyArrangement()
	e.Randomize()
}

// Tick advances the simulation by dt milliseconds: integrate, steer objects outside the boundary back
// towards the origin, then push apart every pair closer than the minimum separation. The pair pass is
// O(n^2) and limits practical object counts.
func (e *Engine) Tick(dt float32) {
	p := e.params
	for i := range e.Positions {
		e.Positions[i] = e.Positions[i].Add(e.Velocities[i].ScalarMul(dt * p.PositionScale))
		e.Orientations[i] = e.Orientations[i].Add(e.Rotations[i].ScalarMul(dt * p.AngleScale))
	}

	for i, pos := range e.Positions {
		if pos.Len() > p.BoundaryRadius {
			e.Velocities[i] = pos.Norm().ScalarMul(-p.CorrectionSpeed)
		}
	}

	for i := range e.Positions {
		for j := range e.Positions {
			if i == j {
				continue
			}
			d := e.Positions[i].Sub(e.Positions[j])
			if d.Len() >= p.MinSeparation {
				continue
			}
			dir := separationFallback
			if d.Len() > 0 {
				dir = d.Norm()
			}
			e.Velocities[i] = dir.ScalarMul(p.CorrectionSpeed)
			e.Velocities[j] = dir.ScalarMul(-p.CorrectionSpeed)
		}
	}
}
