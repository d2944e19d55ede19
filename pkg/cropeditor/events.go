package cropeditor

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/menta2k/passport-photo/pkg/geom"
)

// EventType is the kind of a pointer or touch event
type EventType string

const (
	PointerDown   EventType = "down"
	PointerMove   EventType = "move"
	PointerUp     EventType = "up"
	PointerLeave  EventType = "leave"
	PointerCancel EventType = "cancel"
)

// Event is a pointer or touch event in display coordinates
type Event struct {
	Type EventType `json:"type"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
}

// Point returns the event position
func (ev Event) Point() geom.DisplayPoint {
	return geom.DisplayPoint{X: ev.X, Y: ev.Y}
}

// Handle dispatches one event and reports whether the region changed. Up,
// leave and cancel all end the gesture.
func (e *Editor) Handle(ev Event) bool {
	switch ev.Type {
	case PointerDown:
		e.Begin(ev.Point())
	case PointerMove:
		_, changed := e.Update(ev.Point())
		return changed
	case PointerUp, PointerLeave, PointerCancel:
		e.End()
	}
	return false
}

// Replay feeds events in order and returns how many changed the region
func (e *Editor) Replay(events []Event) int {
	changes := 0
	for _, ev := range events {
		if e.Handle(ev) {
			changes++
		}
	}
	return changes
}

// ReadEvents decodes a JSON array of events
func ReadEvents(r io.Reader) ([]Event, error) {
	var events []Event
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	for i, ev := range events {
		switch ev.Type {
		case PointerDown, PointerMove, PointerUp, PointerLeave, PointerCancel:
		default:
			return nil, fmt.Errorf("event %d: unknown type %q", i, ev.Type)
		}
	}
	return events, nil
}
