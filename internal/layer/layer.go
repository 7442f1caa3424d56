// Package layer holds the rendered boundary overlay and the interaction
// protocol bound to it.
package layer

import (
	"github.com/borderview/borderview-go/internal/geo"
	"github.com/borderview/borderview-go/internal/style"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Layer is the set of shapes drawn for the selected features. Shapes keep the
// collection order; DrawOrder changes as shapes are brought to the front.
type Layer struct {
	shapes   []*Shape
	order    []*Shape
	resolver style.Resolver
	revision uint64
}

// New builds a layer for features, asking resolver for each base style
func New(features []*geojson.Feature, resolver style.Resolver, nameProperty string) *Layer {
	if resolver == nil {
		resolver = style.Constant{Style: style.Default}
	}

	l := &Layer{
		shapes:   make([]*Shape, 0, len(features)),
		resolver: resolver,
	}
	for i, f := range features {
		name, _ := geo.FeatureName(f, nameProperty)
		base := resolver.Resolve(f)
		l.shapes = append(l.shapes, &Shape{
			ID:      i,
			Feature: f,
			Name:    name,
			base:    base,
			current: base,
		})
	}
	l.order = make([]*Shape, len(l.shapes))
	copy(l.order, l.shapes)
	return l
}

// Len returns the number of shapes
func (l *Layer) Len() int {
	return len(l.shapes)
}

// Shapes returns the shapes in collection order
func (l *Layer) Shapes() []*Shape {
	return l.shapes
}

// DrawOrder returns the shapes bottom to top
func (l *Layer) DrawOrder() []*Shape {
	return l.order
}

// Features returns the underlying features in collection order
func (l *Layer) Features() []*geojson.Feature {
	out := make([]*geojson.Feature, len(l.shapes))
	for i, s := range l.shapes {
		out[i] = s.Feature
	}
	return out
}

// Find returns the first shape with the given name
func (l *Layer) Find(name string) *Shape {
	for _, s := range l.shapes {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Revision changes whenever a style or the draw order changes
func (l *Layer) Revision() uint64 {
	return l.revision
}

// SetStyle overrides the live style of s
func (l *Layer) SetStyle(s *Shape, st style.Style) {
	if s == nil {
		return
	}
	if s.current != st {
		s.current = st
		l.revision++
	}
}

// ResetStyle restores the resolver's style for s and clears its highlight
func (l *Layer) ResetStyle(s *Shape) {
	if s == nil {
		return
	}
	s.base = l.resolver.Resolve(s.Feature)
	s.highlighted = false
	l.SetStyle(s, s.base)
}

// BringToFront moves s to the top of the draw order
func (l *Layer) BringToFront(s *Shape) {
	n := len(l.order)
	if s == nil || n == 0 || l.order[n-1] == s {
		return
	}
	for i, o := range l.order {
		if o == s {
			copy(l.order[i:], l.order[i+1:])
			l.order[n-1] = s
			l.revision++
			return
		}
	}
}

// Bounds returns the geographic bound of all shapes
func (l *Layer) Bounds() (orb.Bound, bool) {
	return geo.Bounds(l.Features())
}

// ShapeAt returns the topmost shape containing the world pixel px at zoom z
func (l *Layer) ShapeAt(px orb.Point, z int) *Shape {
	for i := len(l.order) - 1; i >= 0; i-- {
		if l.order[i].Contains(px, z) {
			return l.order[i]
		}
	}
	return nil
}
