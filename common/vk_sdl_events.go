package common

import (
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"batch_renderer/input"
)

// EventSource feeds SDL window and keyboard events into an input.State and provides the frame clock from
// SDL's millisecond tick counter.
type EventSource struct {
	w     *Window
	start time.Time
}

func NewEventSource(w *Window) *EventSource {
	return &EventSource{w: w, start: time.Now()}
}

// KeyAction maps a key to the action it triggers.
func KeyAction(key sdl.Keycode) input.Action {
	switch key {
	case sdl.K_w:
		return input.ActionForward
	case sdl.K_s:
		return input.ActionBackward
	case sdl.K_a:
		return input.ActionLeft
	case sdl.K_d:
		return input.ActionRight
	case sdl.K_q:
		return input.ActionUp
	case sdl.K_e:
		return input.ActionDown
	case sdl.K_f:
		return input.ActionRegenerateMaterials
	case sdl.K_SPACE:
		return input.ActionToggleLight
	case sdl.K_r:
		return input.ActionCycleReset
	case sdl.K_ESCAPE:
		return input.ActionClose
	default:
		return input.ActionNone
	}
}

// Poll drains all pending events into state. While the window is minimized it blocks on the next event
// instead of returning, so nothing is drawn to a hidden surface.
func (e *EventSource) Poll(state *input.State) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		e.handle(event, state)
	}
	for e.w.Minimized && !state.Close {
		e.handle(sdl.WaitEvent(), state)
	}
}

func (e *EventSource) handle(event sdl.Event, state *input.State) {
	switch ev := event.(type) {
	case *sdl.QuitEvent:
		state.Apply(input.ActionClose, true)
	case *sdl.WindowEvent:
		switch ev.Event {
		case sdl.WINDOWEVENT_RESIZED:
			e.w.noteResize(ev.Data1, ev.Data2)
		case sdl.WINDOWEVENT_MINIMIZED:
			e.w.Minimized = true
		case sdl.WINDOWEVENT_RESTORED:
			e.w.Minimized = false
		}
	case *sdl.KeyboardEvent:
		if ev.Repeat != 0 {
			return
		}
		state.Apply(KeyAction(ev.Keysym.Sym), ev.State == sdl.PRESSED)
	}
}

// Now is the time since SDL was initialized, anchored at the creation of the source.
func (e *EventSource) Now() time.Time {
	return e.start.Add(time.Duration(sdl.GetTicks64()) * time.Millisecond)
}
