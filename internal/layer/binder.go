package layer

import (
	"fmt"
	"time"

	"github.com/borderview/borderview-go/internal/diag"
	"github.com/borderview/borderview-go/internal/style"
	"github.com/paulmach/orb"
)

// Map is the part of the map surface the binder drives
type Map interface {
	Zoom() int
	FlyTo(center orb.Point, zoom int)
	OpenPopup(at orb.Point, lines []string)
}

// ZoomMode selects how a click picks the new zoom level
type ZoomMode string

// Zoom modes
const (
	ZoomIncrement ZoomMode = "increment"
	ZoomFixed     ZoomMode = "fixed"
)

// ZoomPolicy decides the zoom used when flying to a clicked point
type ZoomPolicy struct {
	Mode  ZoomMode `json:"mode"`
	Level int      `json:"level"`
}

// Target returns the zoom to fly to from the current zoom
func (p ZoomPolicy) Target(current int) int {
	if p.Mode == ZoomFixed {
		return p.Level
	}
	return current + 1
}

// PopupLines returns the popup text for a feature name
func PopupLines(name string) []string {
	return []string{
		"Country: " + name,
		fmt.Sprintf("This is the official boundary of %s loaded via GeoJSON.", name),
	}
}

// Binder applies the hover and click protocol to a layer
type Binder struct {
	layer     *Layer
	highlight style.Style
	m         Map
	zoom      ZoomPolicy
	sink      diag.Sink
	hovered   *Shape
	now       func() time.Time
}

// NewBinder binds the interaction protocol to every shape of l
func NewBinder(l *Layer, highlight style.Style, m Map, zoom ZoomPolicy, sink diag.Sink) *Binder {
	if sink == nil {
		sink = diag.Discard
	}
	return &Binder{
		layer:     l,
		highlight: highlight,
		m:         m,
		zoom:      zoom,
		sink:      sink,
		now:       time.Now,
	}
}

// Layer returns the bound layer
func (b *Binder) Layer() *Layer {
	return b.layer
}

// Hovered returns the shape under the pointer, or nil
func (b *Binder) Hovered() *Shape {
	return b.hovered
}

// HoverEnter highlights s and brings it to the front. A previously hovered
// shape is exited first so at most one shape is highlighted.
func (b *Binder) HoverEnter(s *Shape) {
	if s == nil {
		return
	}
	if b.hovered != nil && b.hovered != s {
		b.HoverExit(b.hovered)
	}

	b.layer.SetStyle(s, b.highlight)
	b.layer.BringToFront(s)
	s.highlighted = true

	if b.hovered != s {
		b.hovered = s
		b.sink.Emit(diag.Event{Type: diag.EventHoverEnter, Time: b.now(), Feature: s.Label()})
	}
}

// HoverExit restores the resolver style of s
func (b *Binder) HoverExit(s *Shape) {
	if s == nil {
		return
	}
	b.layer.ResetStyle(s)
	if b.hovered == s {
		b.hovered = nil
		b.sink.Emit(diag.Event{Type: diag.EventHoverExit, Time: b.now(), Feature: s.Label()})
	}
}

// PointerMove derives enter and exit transitions from the shape now under the
// pointer (nil when none). It reports whether the hovered shape changed.
func (b *Binder) PointerMove(s *Shape) bool {
	if s == b.hovered {
		return false
	}
	if s == nil {
		b.HoverExit(b.hovered)
	} else {
		b.HoverEnter(s)
	}
	return true
}

// Click flies the map to the clicked point, records the coordinate and opens
// the feature popup.
func (b *Binder) Click(s *Shape, at orb.Point) {
	if s == nil {
		return
	}
	if b.m != nil {
		b.m.FlyTo(at, b.zoom.Target(b.m.Zoom()))
	}
	b.sink.Emit(diag.Event{
		Type:    diag.EventClick,
		Time:    b.now(),
		Feature: s.Label(),
		Lat:     at.Lat(),
		Lon:     at.Lon(),
	})
	if b.m != nil {
		b.m.OpenPopup(at, PopupLines(s.Label()))
	}
}
