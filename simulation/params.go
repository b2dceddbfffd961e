// Package simulation arranges the objects on a grid and moves them with a small velocity based
// integrator. Collisions are a velocity reflection heuristic, not rigid body dynamics.
package simulation

// Params tunes the integrator. Speeds are per millisecond of frame time before scaling.
type Params struct {
	GridSpacing     float32 `yaml:"grid_spacing"`
	InitialSpeed    float32 `yaml:"initial_speed"`
	InitialSpin     float32 `yaml:"initial_spin"`
	MinSeparation   float32 `yaml:"min_separation"`
	BoundaryRadius  float32 `yaml:"boundary_radius"`
	CorrectionSpeed float32 `yaml:"correction_speed"`
	PositionScale   float32 `yaml:"position_scale"`
	AngleScale      float32 `yaml:"angle_scale"`
}

func DefaultParams() Params {
	return Params{
		GridSpacing:     2.5,
		InitialSpeed:    0.01,
		InitialSpin:     10,
		MinSeparation:   2.0,
		BoundaryRadius:  12,
		CorrectionSpeed: 0.01,
		PositionScale:   0.05,
		AngleScale:      0.005,
	}
}
