package simulation

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Clock measures frame times and drives the animation time used for the light motion.
type Clock struct {
	Frame     uint64
	DeltaMS   float64
	FPS       uint32
	Animation float64 // advances by Step per millisecond while animating

	Step float64

	// BenchmarkFrames > 0 stops the run once that many frames have been measured.
	BenchmarkFrames uint64

	last     time.Time
	totalMS  float64
	measured uint64
}

func NewClock(start time.Time, benchmarkFrames uint64) *Clock {
	return &Clock{
		Step:            0.01,
		BenchmarkFrames: benchmarkFrames,
		last:            start,
	}
}

// Update closes the current frame at now.
func (c *Clock) Update(now time.Time) {
	c.DeltaMS = float64(now.Sub(c.last).Milliseconds())
	c.last = now
	c.Frame++
	if c.DeltaMS > 0 {
		c.FPS = uint32(1000 / c.DeltaMS)
	}
	c.totalMS += c.DeltaMS
	c.measured++
}

// Advance moves the animation time forward by the last frame delta.
func (c *Clock) Advance() {
	c.Animation += c.Step * c.DeltaMS
}

// Reset puts the animation time back to exactly zero.
func (c *Clock) Reset() {
	c.Animation = 0
}

// AverageFPS over every measured frame.
func (c *Clock) AverageFPS() uint32 {
	if c.measured == 0 || c.totalMS == 0 {
		return 0
	}
	return uint32(1000 / (c.totalMS / float64(c.measured)))
}

func (c *Clock) Done() bool {
	return c.BenchmarkFrames > 0 && c.Frame > c.BenchmarkFrames
}

// AppendBenchmark appends the average frame rate as one line to log_<runID>.txt in dir.
func (c *Clock) AppendBenchmark(dir string, runID uint32) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("log_%d.txt", runID))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open benchmark log: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%d\n", c.AverageFPS()); err != nil {
		f.Close()
		return "", fmt.Errorf("write benchmark log: %w", err)
	}
	return path, f.Close()
}
