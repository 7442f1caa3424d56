package layer

import (
	"github.com/borderview/borderview-go/internal/geo"
	"github.com/borderview/borderview-go/internal/style"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// UnnamedLabel is shown for features without a usable name property
const UnnamedLabel = "Unnamed"

// Shape is one rendered feature with its live style
type Shape struct {
	ID      int
	Feature *geojson.Feature
	Name    string

	base        style.Style
	current     style.Style
	highlighted bool

	projZoom  int
	projected orb.Geometry
	projBound orb.Bound
	hasProj   bool
}

// Style returns the style the shape is currently drawn with
func (s *Shape) Style() style.Style {
	return s.current
}

// BaseStyle returns the style assigned by the resolver
func (s *Shape) BaseStyle() style.Style {
	return s.base
}

// Highlighted reports whether the hover style is applied
func (s *Shape) Highlighted() bool {
	return s.highlighted
}

// Label returns the display name
func (s *Shape) Label() string {
	if s.Name == "" {
		return UnnamedLabel
	}
	return s.Name
}

// Projected returns the shape geometry in world pixels at zoom z and its
// pixel bound. The result is cached until the zoom changes.
func (s *Shape) Projected(z int) (orb.Geometry, orb.Bound, bool) {
	if s.Feature == nil || s.Feature.Geometry == nil {
		return nil, orb.Bound{}, false
	}
	if !s.hasProj || s.projZoom != z {
		s.projected = geo.ProjectGeometry(s.Feature.Geometry, z)
		if s.projected != nil {
			s.projBound = s.projected.Bound()
		}
		s.projZoom = z
		s.hasProj = true
	}
	return s.projected, s.projBound, s.projected != nil
}

// Contains reports whether the world pixel px at zoom z falls inside the shape.
// Only polygonal geometry can be hit.
func (s *Shape) Contains(px orb.Point, z int) bool {
	g, b, ok := s.Projected(z)
	if !ok || !b.Contains(px) {
		return false
	}
	return containsPoint(g, px)
}

func containsPoint(g orb.Geometry, p orb.Point) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	case orb.Collection:
		for _, sub := range g {
			if containsPoint(sub, p) {
				return true
			}
		}
	}
	return false
}
