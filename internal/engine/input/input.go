// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType is the kind of a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
}

// Input collects events once per frame and tracks which keys are held.
type Input struct {
	events []Event
	held   map[sdl.Scancode]bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
		held:   make(map[sdl.Scancode]bool),
	}
}

// Update polls SDL events and converts them to input events.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.Apply(Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.Apply(Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Repeat != 0 {
				continue
			}
			if e.Type == sdl.KEYDOWN {
				i.Apply(Event{Type: EventKeyDown, Key: e.Keysym.Scancode})
			} else if e.Type == sdl.KEYUP {
				i.Apply(Event{Type: EventKeyUp, Key: e.Keysym.Scancode})
			}
		}
	}

	return false
}

// Apply records one event for this frame and updates the held-key state.
func (i *Input) Apply(e Event) {
	switch e.Type {
	case EventKeyDown:
		i.held[e.Key] = true
	case EventKeyUp:
		delete(i.held, e.Key)
	}
	i.events = append(i.events, e)
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}

// IsKeyDown reports whether a key is currently held.
func (i *Input) IsKeyDown(scancode sdl.Scancode) bool {
	return i.held[scancode]
}

// Axis returns -1, 0 or 1 from a pair of held keys.
func (i *Input) Axis(negative, positive sdl.Scancode) float32 {
	var v float32
	if i.held[negative] {
		v--
	}
	if i.held[positive] {
		v++
	}
	return v
}

// Movement returns the WASD/QE camera axes as forward, right and up.
func (i *Input) Movement() (forward, right, up float32) {
	return i.Axis(sdl.SCANCODE_S, sdl.SCANCODE_W),
		i.Axis(sdl.SCANCODE_A, sdl.SCANCODE_D),
		i.Axis(sdl.SCANCODE_Q, sdl.SCANCODE_E)
}
