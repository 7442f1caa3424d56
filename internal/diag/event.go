// Package diag records interaction and load events: to the log, to
// prometheus metrics and to websocket subscribers.
package diag

import (
	"fmt"
	"sync"
	"time"
)

// EventType identifies a diagnostic record
type EventType string

// Event types
const (
	EventClick      EventType = "click"
	EventHoverEnter EventType = "hover_enter"
	EventHoverExit  EventType = "hover_exit"
	EventLoad       EventType = "load"
)

// Event is one diagnostic record. Lat and Lon are set for clicks.
type Event struct {
	Type       EventType `json:"type"`
	Time       time.Time `json:"time"`
	Session    string    `json:"session,omitempty"`
	Feature    string    `json:"feature,omitempty"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	State      string    `json:"state,omitempty"`
	Message    string    `json:"message,omitempty"`
	Features   int       `json:"features,omitempty"`
	DurationMS float64   `json:"duration_ms,omitempty"`
}

// String formats the event for a terminal line
func (e Event) String() string {
	ts := e.Time.Format("15:04:05")
	switch e.Type {
	case EventClick:
		return fmt.Sprintf("%s click    %-24s lat=%.5f lon=%.5f", ts, e.Feature, e.Lat, e.Lon)
	case EventHoverEnter:
		return fmt.Sprintf("%s hover    %s", ts, e.Feature)
	case EventHoverExit:
		return fmt.Sprintf("%s leave    %s", ts, e.Feature)
	case EventLoad:
		line := fmt.Sprintf("%s load     %s", ts, e.State)
		if e.Features > 0 {
			line += fmt.Sprintf(" features=%d", e.Features)
		}
		if e.DurationMS > 0 {
			line += fmt.Sprintf(" took=%.0fms", e.DurationMS)
		}
		if e.Message != "" {
			line += " " + e.Message
		}
		return line
	}
	return fmt.Sprintf("%s %s", ts, e.Type)
}

// Sink receives diagnostic events
type Sink interface {
	Emit(e Event)
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(e Event)

// Emit calls fn(e)
func (fn SinkFunc) Emit(e Event) {
	fn(e)
}

// Discard drops every event
var Discard Sink = SinkFunc(func(Event) {})

// Buffer keeps every event in memory
type Buffer struct {
	mu     sync.Mutex
	events []Event
}

// Emit appends e
func (b *Buffer) Emit(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

// Events returns a copy of the recorded events
func (b *Buffer) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

// OfType returns the recorded events of type t
func (b *Buffer) OfType(t EventType) []Event {
	var out []Event
	for _, e := range b.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Multi fans events out to several sinks
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(e Event) {
		for _, s := range sinks {
			if s != nil {
				s.Emit(e)
			}
		}
	})
}
