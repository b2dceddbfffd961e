package simulation

import (
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vm "batch_renderer/vector_math"
)

func newRng() *rand.Rand {
	return rand.New(rand.NewPCG(42, 7))
}

func TestArrangeIsDeterministicAndCentred(t *testing.T) {
	for _, n := range []int{1, 2, 4, 7, 16, 64} {
		var a, b Arrangement
		ta := a.Arrange(n, 2.5)
		tb := b.Arrange(n, 2.5)
		require.Len(t, ta, n)
		assert.Equal(t, ta, tb, "n=%d", n)

		var sum vm.Vec3
		for _, tr := range ta {
			sum = sum.Add(tr)
		}
		mean := sum.ScalarMul(1 / float32(n))
		assert.InDelta(t, 0, mean.Len(), 1e-5, "n=%d mean %v", n, mean)
	}
}

func TestArrangeKeepsStoredLayout(t *testing.T) {
	var a Arrangement
	first := append([]vm.Vec3(nil), a.Arrange(4, 2.5)...)
	again := a.Arrange(9, 10)
	assert.Equal(t, first, again)
	assert.True(t, a.Arranged)
}

func TestArrangeGrid(t *testing.T) {
	var a Arrangement
	tr := a.Arrange(4, 2)
	assert.Equal(t, vm.Vec3{X: 1, Z: 1}, a.Centre)
	assert.Equal(t, []vm.Vec3{
		{X: -1, Z: -1}, {X: 1, Z: -1},
		{X: -1, Z: 1}, {X: 1, Z: 1},
	}, tr)
}

func TestNewEngine(t *testing.T) {
	p := DefaultParams()
	e := New(9, p, newRng())
	assert.Equal(t, 9, e.Count())
	assert.Equal(t, e.Arrangement().Translations, e.Positions)
	for i := 0; i < e.Count(); i++ {
		assert.Equal(t, vm.Vec3{}, e.Orientations[i])
		for _, c := range []float32{e.Velocities[i].X, e.Velocities[i].Y, e.Velocities[i].Z} {
			assert.LessOrEqual(t, c, p.InitialSpeed)
			assert.GreaterOrEqual(t, c, -p.InitialSpeed)
		}
		for _, c := range []float32{e.Rotations[i].X, e.Rotations[i].Y, e.Rotations[i].Z} {
			assert.LessOrEqual(t, c, p.InitialSpin)
			assert.GreaterOrEqual(t, c, -p.InitialSpin)
		}
	}
}

func TestTickIntegrates(t *testing.T) {
	p := DefaultParams()
	p.MinSeparation = 0
	e := New(1, p, newRng())
	e.Positions[0] = vm.Vec3{}
	e.Velocities[0] = vm.Vec3{X: 1}
	e.Rotations[0] = vm.Vec3{Z: 2}

	e.Tick(10)
	assert.InDelta(t, 10*p.PositionScale, e.Positions[0].X, 1e-6)
	assert.InDelta(t, 2*10*p.AngleScale, e.Orientations[0].Z, 1e-6)
}

func TestBoundaryCorrectionPointsInward(t *testing.T) {
	p := DefaultParams()
	e := New(3, p, newRng())
	e.Positions[0] = vm.Vec3{X: 20}
	e.Velocities[0] = vm.Vec3{X: 5}
	e.Positions[1] = vm.Vec3{Y: -13, Z: 4}
	e.Velocities[1] = vm.Vec3{Y: -1}
	e.Positions[2] = vm.Vec3{}

	e.Tick(1)
	for i := 0; i < 2; i++ {
		inward := e.Velocities[i].Dot(e.Positions[i])
		assert.Less(t, inward, float32(0), "object %d velocity %v does not point to the origin", i, e.Velocities[i])
		assert.InDelta(t, p.CorrectionSpeed, e.Velocities[i].Len(), 1e-6)
	}
}

func TestNoObjectDiverges(t *testing.T) {
	p := DefaultParams()
	e := New(16, p, newRng())
	for i := range e.Velocities {
		// far faster than the correction speed, every object leaves the boundary quickly
		e.Velocities[i] = e.Positions[i].Norm().ScalarMul(0.5)
	}

	for step := 0; step < 2000; step++ {
		e.Tick(16)
		for i, pos := range e.Positions {
			if pos.Len() <= p.BoundaryRadius || hasNeighbour(e, i) {
				continue
			}
			if e.Velocities[i].Dot(pos) >= 0 {
				t.Fatalf("step %d: object %d at %v outside the boundary moves outward with %v", step, i, pos, e.Velocities[i])
			}
		}
	}
	limit := p.BoundaryRadius + 2*p.MinSeparation + 5
	for i, pos := range e.Positions {
		assert.Less(t, pos.Len(), limit, "object %d diverged to %v", i, pos)
	}
}

func hasNeighbour(e *Engine, i int) bool {
	for j := range e.Positions {
		if i != j && e.Positions[i].Dist(e.Positions[j]) < e.params.MinSeparation {
			return true
		}
	}
	return false
}

func TestPairSeparation(t *testing.T) {
	p := DefaultParams()
	e := New(2, p, newRng())
	e.Positions[0] = vm.Vec3{X: -0.5}
	e.Positions[1] = vm.Vec3{X: 0.5}
	e.Velocities[0] = vm.Vec3{X: 1}
	e.Velocities[1] = vm.Vec3{X: -1}

	e.Tick(0)
	assert.InDelta(t, -p.CorrectionSpeed, e.Velocities[0].X, 1e-6)
	assert.InDelta(t, p.CorrectionSpeed, e.Velocities[1].X, 1e-6)
}

func TestCoincidentObjectsSeparate(t *testing.T) {
	e := New(2, DefaultParams(), newRng())
	e.Positions[0] = vm.Vec3{}
	e.Positions[1] = vm.Vec3{}
	e.Tick(0)
	for i, v := range e.Velocities {
		assert.False(t, math.IsNaN(float64(v.X)), "object %d velocity is NaN", i)
		assert.InDelta(t, DefaultParams().CorrectionSpeed, v.Len(), 1e-6)
	}
}

func TestRearrangeRestoresGrid(t *testing.T) {
	e := New(5, DefaultParams(), newRng())
	grid := append([]vm.Vec3(nil), e.Positions...)
	for i := 0; i < 500; i++ {
		e.Tick(16)
	}
	assert.NotEqual(t, grid, e.Positions)

	e.Rearrange()
	assert.Equal(t, grid, e.Positions)
	for _, o := range e.Orientations {
		assert.Equal(t, vm.Vec3{}, o)
	}
}

func TestResetModeCycles(t *testing.T) {
	r := ResetIdle
	r = r.Next()
	assert.Equal(t, ResetRunning, r)
	r = r.Next()
	assert.Equal(t, ResetRearrange, r)
	r = r.Next()
	assert.Equal(t, ResetIdle, r)
	assert.Equal(t, "rearrange", ResetRearrange.String())
}

func TestClock(t *testing.T) {
	start := time.Unix(100, 0)
	c := NewClock(start, 0)

	c.Update(start.Add(20 * time.Millisecond))
	assert.Equal(t, uint64(1), c.Frame)
	assert.Equal(t, 20.0, c.DeltaMS)
	assert.Equal(t, uint32(50), c.FPS)

	c.Advance()
	assert.InDelta(t, 0.2, c.Animation, 1e-9)

	c.Update(start.Add(60 * time.Millisecond))
	assert.Equal(t, uint32(25), c.FPS)
	assert.Equal(t, uint32(33), c.AverageFPS())

	c.Reset()
	assert.Equal(t, 0.0, c.Animation)
	assert.False(t, c.Done())
}

func TestClockBenchmark(t *testing.T) {
	start := time.Unix(0, 0)
	c := NewClock(start, 3)
	now := start
	for i := 0; i < 3; i++ {
		now = now.Add(10 * time.Millisecond)
		c.Update(now)
		assert.False(t, c.Done())
	}
	now = now.Add(10 * time.Millisecond)
	c.Update(now)
	assert.True(t, c.Done())

	dir := t.TempDir()
	path, err := c.AppendBenchmark(dir, 7)
	require.NoError(t, err)
	_, err = c.AppendBenchmark(dir, 7)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "log_7.txt"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "100\n100\n", string(b))
}
