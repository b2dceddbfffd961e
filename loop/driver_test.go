package loop

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"batch_renderer/config"
	"batch_renderer/input"
	"batch_renderer/model"
	"batch_renderer/renderer"
	"batch_renderer/simulation"
	vm "batch_renderer/vector_math"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeEvents applies one scripted change per poll and advances time by a fixed frame length.
type fakeEvents struct {
	script []func(*input.State)
	polls  int
	now    time.Time
	frame  time.Duration
}

func (f *fakeEvents) Poll(s *input.State) {
	if f.polls < len(f.script) && f.script[f.polls] != nil {
		f.script[f.polls](s)
	}
	f.polls++
}

func (f *fakeEvents) Now() time.Time {
	f.now = f.now.Add(f.frame)
	return f.now
}

type fakePresenter struct {
	presented []*model.UniformBlock
	lights    []vm.Vec3
	errs      []error
	stats     int
}

func (p *fakePresenter) Present(b *model.UniformBlock) error {
	i := len(p.presented)
	p.presented = append(p.presented, b)
	p.lights = append(p.lights, b.Light)
	if i < len(p.errs) {
		return p.errs[i]
	}
	return nil
}

func (p *fakePresenter) Stats(fps uint32) renderer.Stats {
	p.stats++
	return renderer.Stats{FPS: fps}
}

func closeAt(n int) []func(*input.State) {
	script := make([]func(*input.State), n+1)
	script[n] = func(s *input.State) { s.Apply(input.ActionClose, true) }
	return script
}

func newDriver(t *testing.T, cfg *config.Config, events *fakeEvents, p *fakePresenter) *Driver {
	t.Helper()
	n := cfg.Scene.Objects
	rng := rand.New(rand.NewPCG(1, 2))
	block, err := model.NewUniformBlock(n, cfg.Scene.MaxObjects)
	require.NoError(t, err)
	var frames uint64
	if cfg.Benchmark.Enabled {
		frames = cfg.Benchmark.Frames
	}
	d, err := New(Deps{
		Config:    cfg,
		Events:    events,
		Presenter: p,
		Engine:    simulation.New(n, cfg.Simulation, rng),
		Clock:     simulation.NewClock(start, frames),
		Camera:    model.NewCamera(n, 16.0/9.0, cfg.Camera.Speed),
		Block:     block,
		Rand:      rng,
	})
	require.NoError(t, err)
	return d
}

func TestNewRejectsMissingDeps(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)
	_, err = New(Deps{Config: config.Default(), Events: &fakeEvents{}})
	assert.Error(t, err)
}

func TestCloseStopsLoop(t *testing.T) {
	events := &fakeEvents{script: closeAt(3), now: start, frame: 16 * time.Millisecond}
	p := &fakePresenter{}
	d := newDriver(t, config.Default(), events, p)

	require.NoError(t, d.Run(context.Background()))
	assert.Len(t, p.presented, 3)
	assert.Equal(t, uint64(3), d.Clock.Frame)
}

func TestCancelledContextStopsLoop(t *testing.T) {
	events := &fakeEvents{now: start, frame: time.Millisecond}
	p := &fakePresenter{}
	d := newDriver(t, config.Default(), events, p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Run(ctx))
	assert.Empty(t, p.presented)
}

func TestSkippedFrameIsNotFatal(t *testing.T) {
	events := &fakeEvents{script: closeAt(3), now: start, frame: 16 * time.Millisecond}
	p := &fakePresenter{errs: []error{nil, fmt.Errorf("%w: acquire", renderer.ErrFrameSkipped)}}
	d := newDriver(t, config.Default(), events, p)

	require.NoError(t, d.Run(context.Background()))
	assert.Len(t, p.presented, 3)
	assert.Equal(t, uint64(1), d.Skipped())
}

func TestPresentErrorEndsLoop(t *testing.T) {
	boom := errors.New("device lost")
	events := &fakeEvents{now: start, frame: 16 * time.Millisecond}
	p := &fakePresenter{errs: []error{boom}}
	d := newDriver(t, config.Default(), events, p)

	err := d.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestIdleKeepsObjectsStill(t *testing.T) {
	events := &fakeEvents{now: start, frame: 16 * time.Millisecond}
	d := newDriver(t, config.Default(), events, &fakePresenter{})
	before := append([]vm.Vec3(nil), d.Engine.Positions...)

	for range 5 {
		_, err := d.Step()
		require.NoError(t, err)
	}
	assert.Equal(t, before, d.Engine.Positions)
}

func TestRunningMovesObjects(t *testing.T) {
	events := &fakeEvents{
		script: []func(*input.State){func(s *input.State) { s.Apply(input.ActionCycleReset, true) }},
		now:    start,
		frame:  16 * time.Millisecond,
	}
	d := newDriver(t, config.Default(), events, &fakePresenter{})
	before := append([]vm.Vec3(nil), d.Engine.Positions...)

	_, err := d.Step()
	require.NoError(t, err)
	assert.Equal(t, simulation.ResetRunning, d.State().Reset)
	assert.NotEqual(t, before, d.Engine.Positions)
}

func TestRearrangeRestoresGridAndClock(t *testing.T) {
	cycle := func(s *input.State) { s.Apply(input.ActionCycleReset, true) }
	events := &fakeEvents{
		script: []func(*input.State){
			func(s *input.State) { s.Apply(input.ActionToggleLight, true); cycle(s) },
			nil,
			cycle,
		},
		now:   start,
		frame: 16 * time.Millisecond,
	}
	d := newDriver(t, config.Default(), events, &fakePresenter{})
	grid := append([]vm.Vec3(nil), d.Engine.Positions...)

	for range 2 {
		_, err := d.Step()
		require.NoError(t, err)
	}
	assert.NotEqual(t, grid, d.Engine.Positions)
	assert.Positive(t, d.Clock.Animation)

	_, err := d.Step()
	require.NoError(t, err)
	assert.Equal(t, grid, d.Engine.Positions)
	assert.Equal(t, float64(0), d.Clock.Animation)
	assert.Equal(t, simulation.ResetIdle, d.State().Reset)
}

func TestLightAnimatesOnlyWhenToggled(t *testing.T) {
	events := &fakeEvents{
		script: []func(*input.State){nil, func(s *input.State) { s.Apply(input.ActionToggleLight, true) }},
		now:    start,
		frame:  100 * time.Millisecond,
	}
	p := &fakePresenter{}
	d := newDriver(t, config.Default(), events, p)

	for range 3 {
		_, err := d.Step()
		require.NoError(t, err)
	}
	assert.Equal(t, model.LightBase, p.lights[0])
	// animation time is 0.01 per ms: 1 after the second frame, 2 after the third
	assert.Equal(t, model.AnimateLight(model.LightBase, 1), p.lights[1])
	assert.Equal(t, model.AnimateLight(model.LightBase, 2), p.lights[2])
}

func TestRegenerateMaterials(t *testing.T) {
	events := &fakeEvents{
		script: []func(*input.State){func(s *input.State) { s.Apply(input.ActionRegenerateMaterials, true) }},
		now:    start,
		frame:  16 * time.Millisecond,
	}
	d := newDriver(t, config.Default(), events, &fakePresenter{})

	_, err := d.Step()
	require.NoError(t, err)
	for _, m := range d.Block.Materials {
		for _, c := range []float32{m.X, m.Y, m.Z, m.W} {
			assert.GreaterOrEqual(t, c, float32(0.2))
			assert.Less(t, c, float32(1))
		}
	}
	assert.False(t, d.State().RegenerateMaterials)
}

func TestCameraFollowsInput(t *testing.T) {
	events := &fakeEvents{
		script: []func(*input.State){func(s *input.State) { s.Apply(input.ActionForward, true) }},
		now:    start,
		frame:  16 * time.Millisecond,
	}
	cfg := config.Default()
	d := newDriver(t, cfg, events, &fakePresenter{})
	eye := d.Camera.Eye

	for range 2 {
		_, err := d.Step()
		require.NoError(t, err)
	}
	assert.InDelta(t, eye.Y-2*cfg.Camera.Speed, d.Camera.Eye.Y, 1e-5)
	assert.Equal(t, d.Camera.Eye, d.Block.Eye)
}

func TestReportInterval(t *testing.T) {
	cfg := config.Default()
	cfg.Report.Interval = 2
	events := &fakeEvents{script: closeAt(5), now: start, frame: 16 * time.Millisecond}
	p := &fakePresenter{}
	d := newDriver(t, cfg, events, p)

	require.NoError(t, d.Run(context.Background()))
	assert.Equal(t, 2, p.stats)
}

func TestBenchmarkWritesResult(t *testing.T) {
	cfg := config.Default()
	cfg.Benchmark.Enabled = true
	cfg.Benchmark.Frames = 4
	cfg.Benchmark.RunID = 7
	cfg.Benchmark.ResultDir = t.TempDir()
	events := &fakeEvents{now: start, frame: 10 * time.Millisecond}
	p := &fakePresenter{}
	d := newDriver(t, cfg, events, p)

	require.NoError(t, d.Run(context.Background()))
	assert.Len(t, p.presented, 5)

	data, err := os.ReadFile(filepath.Join(cfg.Benchmark.ResultDir, "log_7.txt"))
	require.NoError(t, err)
	assert.Equal(t, "100", strings.TrimSpace(string(data)))
}
