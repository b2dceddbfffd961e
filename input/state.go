// Package input holds the user input state consumed once per frame. Event sources translate their native
// events into Actions and feed them into a State.
package input

import (
	"batch_renderer/simulation"
	vm "batch_renderer/vector_math"
)

type Action int

const (
	ActionNone Action = iota
	ActionForward
	ActionBackward
	ActionLeft
	ActionRight
	ActionUp
	ActionDown
	ActionRegenerateMaterials
	ActionToggleLight
	ActionCycleReset
	ActionClose
)

var actionNames = map[Action]string{
	ActionNone:                "none",
	ActionForward:             "forward",
	ActionBackward:            "backward",
	ActionLeft:                "left",
	ActionRight:               "right",
	ActionUp:                  "up",
	ActionDown:                "down",
	ActionRegenerateMaterials: "regenerate_materials",
	ActionToggleLight:         "toggle_light",
	ActionCycleReset:          "cycle_reset",
	ActionClose:               "close",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "unknown"
}

// State is owned by the frame loop. Movement flags follow key press and release, the remaining
// actions react to presses only.
type State struct {
	Forward, Backward bool
	Left, Right       bool
	Up, Down          bool

	RegenerateMaterials bool
	AnimateLight        bool
	Reset               simulation.ResetMode
	Close               bool
}

// Apply folds one press or release into the state.
func (s *State) Apply(a Action, pressed bool) {
	switch a {
	case ActionForward:
		s.Forward = pressed
	case ActionBackward:
		s.Backward = pressed
	case ActionLeft:
		s.Left = pressed
	case ActionRight:
		s.Right = pressed
	case ActionUp:
		s.Up = pressed
	case ActionDown:
		s.Down = pressed
	}
	if !pressed {
		return
	}
	switch a {
	case ActionRegenerateMaterials:
		s.RegenerateMaterials = true
	case ActionToggleLight:
		s.AnimateLight = !s.AnimateLight
	case ActionCycleReset:
		s.Reset = s.Reset.Next()
	case ActionClose:
		s.Close = true
	}
}

// Movement is the eye direction requested by the held keys, one unit per axis. Forward moves the eye
// down -Y towards the objects, left is +X as seen from above.
func (s *State) Movement() vm.Vec3 {
	var d vm.Vec3
	if s.Forward {
		d.Y -= 1
	}
	if s.Backward {
		d.Y += 1
	}
	if s.Up {
		d.Z += 1
	}
	if s.Down {
		d.Z -= 1
	}
	if s.Left {
		d.X += 1
	}
	if s.Right {
		d.X -= 1
	}
	return d
}

// TakeRegenerate reports and clears a pending material regeneration.
func (s *State) TakeRegenerate() bool {
	r := s.RegenerateMaterials
	s.RegenerateMaterials = false
	return r
}
