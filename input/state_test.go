package input

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"batch_renderer/simulation"
	vm "batch_renderer/vector_math"
)

func TestMovementFollowsHeldKeys(t *testing.T) {
	var s State
	s.Apply(ActionForward, true)
	s.Apply(ActionLeft, true)
	s.Apply(ActionUp, true)
	assert.Equal(t, vm.Vec3{X: 1, Y: -1, Z: 1}, s.Movement())

	s.Apply(ActionForward, false)
	s.Apply(ActionBackward, true)
	s.Apply(ActionRight, true)
	s.Apply(ActionDown, true)
	// opposite keys cancel out
	assert.Equal(t, vm.Vec3{X: 0, Y: 1, Z: 0}, s.Movement())
}

func TestTriggersReactToPressOnly(t *testing.T) {
	var s State
	s.Apply(ActionToggleLight, true)
	s.Apply(ActionToggleLight, false)
	assert.True(t, s.AnimateLight)
	s.Apply(ActionToggleLight, true)
	assert.False(t, s.AnimateLight)

	s.Apply(ActionRegenerateMaterials, false)
	assert.False(t, s.TakeRegenerate())
	s.Apply(ActionRegenerateMaterials, true)
	assert.True(t, s.TakeRegenerate())
	assert.False(t, s.TakeRegenerate())
}

func TestResetCycle(t *testing.T) {
	var s State
	want := []simulation.ResetMode{simulation.ResetRunning, simulation.ResetRearrange, simulation.ResetIdle}
	for _, w := range want {
		s.Apply(ActionCycleReset, true)
		s.Apply(ActionCycleReset, false)
		assert.Equal(t, w, s.Reset)
	}
}

func TestClose(t *testing.T) {
	var s State
	s.Apply(ActionNone, true)
	assert.False(t, s.Close)
	s.Apply(ActionClose, true)
	assert.True(t, s.Close)
	assert.Equal(t, "close", ActionClose.String())
	assert.Equal(t, "unknown", Action(99).String())
}
