// Package loop drives one frame per iteration: input, clock, simulation, camera, uniform block, present.
package loop

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"batch_renderer/config"
	"batch_renderer/input"
	"batch_renderer/logger"
	"batch_renderer/model"
	"batch_renderer/renderer"
	"batch_renderer/simulation"

	"go.uber.org/zap"
)

// Bounds of the material colours drawn when the user asks for new ones.
const (
	regenerateLo = 0.2
	regenerateHi = 1.0
)

// EventSource feeds window events into the input state and tells the time.
type EventSource interface {
	Poll(state *input.State)
	Now() time.Time
}

// FramePresenter shows one frame built from the given uniform block.
type FramePresenter interface {
	Present(block *model.UniformBlock) error
	Stats(fps uint32) renderer.Stats
}

type Deps struct {
	Config    *config.Config
	Events    EventSource
	Presenter FramePresenter
	Engine    *simulation.Engine
	Clock     *simulation.Clock
	Camera    *model.Camera
	Block     *model.UniformBlock
	Rand      *rand.Rand
}

// Driver owns the input state and advances every per-frame collaborator in a fixed order.
type Driver struct {
	Deps
	state   input.State
	skipped uint64
	log     *zap.Logger
}

func New(deps Deps) (*Driver, error) {
	switch {
	case deps.Config == nil:
		return nil, errors.New("loop: no config")
	case deps.Events == nil:
		return nil, errors.New("loop: no event source")
	case deps.Presenter == nil:
		return nil, errors.New("loop: no presenter")
	case deps.Engine == nil || deps.Clock == nil || deps.Camera == nil || deps.Block == nil || deps.Rand == nil:
		return nil, errors.New("loop: missing frame state")
	}
	if len(deps.Block.Models) != deps.Engine.Count() {
		return nil, fmt.Errorf("loop: uniform block holds %d objects, simulation %d", len(deps.Block.Models), deps.Engine.Count())
	}
	return &Driver{Deps: deps, log: logger.Named("loop")}, nil
}

// State exposes the input state, mainly for inspection.
func (d *Driver) State() *input.State {
	return &d.state
}

// Skipped is the number of frames the presenter could not show.
func (d *Driver) Skipped() uint64 {
	return d.skipped
}

// Run steps frames until the window is closed, ctx is cancelled or a benchmark has measured all frames.
func (d *Driver) Run(ctx context.Context) error {
	d.log.Info("Frame loop started", zap.Int("objects", d.Engine.Count()))
	for {
		if err := ctx.Err(); err != nil {
			d.log.Info("Frame loop cancelled", zap.Error(err))
			return nil
		}
		more, err := d.Step()
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	if d.Clock.Done() {
		return d.finishBenchmark()
	}
	d.log.Info("Frame loop stopped", zap.Uint64("frames", d.Clock.Frame), zap.Uint64("skipped", d.skipped))
	return nil
}

// Step runs one frame and reports whether the loop should continue.
func (d *Driver) Step() (bool, error) {
	d.Events.Poll(&d.state)
	if d.state.Close {
		return false, nil
	}

	d.Clock.Update(d.Events.Now())
	if d.state.AnimateLight {
		d.Clock.Advance()
	}
	if d.state.TakeRegenerate() {
		if err := d.Block.SetMaterials(model.RandomMaterials(d.Rand, d.Engine.Count(), regenerateLo, regenerateHi)); err != nil {
			return false, err
		}
	}
	d.applyReset()
	d.Camera.Move(d.state.Movement())

	if err := d.rebuildBlock(); err != nil {
		return false, err
	}
	if err := d.Presenter.Present(d.Block); err != nil {
		if !errors.Is(err, renderer.ErrFrameSkipped) {
			return false, err
		}
		d.skipped++
	}
	d.report()
	return !d.Clock.Done(), nil
}

func (d *Driver) applyReset() {
	switch d.state.Reset {
	case simulation.ResetRunning:
		d.Engine.Tick(float32(d.Clock.DeltaMS))
	case simulation.ResetRearrange:
		d.Engine.Rearrange()
		d.Clock.Reset()
		d.state.Reset = simulation.ResetIdle
		d.log.Debug("Objects rearranged")
	}
}

func (d *Driver) rebuildBlock() error {
	if err := d.Block.SetObjects(d.Engine.Positions, d.Engine.Orientations); err != nil {
		return err
	}
	d.Block.View = d.Camera.GetView()
	d.Block.Projection = d.Camera.GetProjection()
	d.Block.Eye = d.Camera.Eye
	if d.state.AnimateLight {
		d.Block.Light = model.AnimateLight(d.Block.Light, d.Clock.Animation)
	}
	return nil
}

func (d *Driver) report() {
	r := d.Config.Report
	if !r.Enabled || r.Interval == 0 || d.Clock.Frame%r.Interval != 0 {
		return
	}
	d.log.Info("Frame report", d.Presenter.Stats(d.Clock.FPS).Fields()...)
}

func (d *Driver) finishBenchmark() error {
	b := d.Config.Benchmark
	avg := d.Clock.AverageFPS()
	if !b.Enabled {
		return nil
	}
	path, err := d.Clock.AppendBenchmark(b.ResultDir, b.RunID)
	if err != nil {
		return fmt.Errorf("benchmark result: %w", err)
	}
	d.log.Info("Benchmark finished",
		zap.Uint64("frames", d.Clock.Frame),
		zap.Uint32("averageFps", avg),
		zap.String("result", path),
	)
	return nil
}
