// Package mapview is the terminal map surface: a Web Mercator viewport, base
// layers, boundary overlays and the zoom and layer controls.
package mapview

import (
	"github.com/borderview/borderview-go/internal/layer"
	"github.com/borderview/borderview-go/internal/theme"
	"github.com/paulmach/orb"
)

// Overlay is a named boundary layer that can be toggled in the layer control
type Overlay struct {
	Name    string
	Layer   *layer.Layer
	Visible bool
}

// LayerControl lists selectable base layers and toggleable overlays
type LayerControl struct {
	Bases    []string
	Overlays []string
	Expanded bool
}

// Popup is an info box anchored at a geographic point
type Popup struct {
	At    orb.Point
	Lines []string
}

// Options configures a new Map
type Options struct {
	Center          orb.Point
	Zoom            int
	MinZoom         int
	MaxZoom         int
	BaseLayers      []BaseLayer
	ShowZoomControl bool
	Theme           *theme.Theme
}

// Map is the map surface. It is not safe for concurrent use; the TUI drives it
// from its update loop.
type Map struct {
	view Viewport

	baseLayers []BaseLayer
	activeBase int
	overlays   []*Overlay

	showZoomControl bool
	control         *LayerControl
	popup           *Popup
	theme           *theme.Theme

	fitted     *orb.Bound
	pendingFit bool
	userMoved  bool

	cache renderCache
}

// New creates a map surface
func New(opts Options) *Map {
	bases := opts.BaseLayers
	if len(bases) == 0 {
		bases = DefaultBaseLayers()
	}
	minZoom, maxZoom := opts.MinZoom, opts.MaxZoom
	if minZoom == 0 && maxZoom == 0 {
		minZoom, maxZoom = DefaultMinZoom, DefaultMaxZoom
	}
	th := opts.Theme
	if th == nil {
		th = theme.Get(theme.DefaultName)
	}
	return &Map{
		view:            NewViewport(opts.Center, opts.Zoom, minZoom, maxZoom),
		baseLayers:      bases,
		showZoomControl: opts.ShowZoomControl,
		theme:           th,
	}
}

// Viewport returns a copy of the current viewport
func (m *Map) Viewport() Viewport {
	return m.view
}

// Zoom returns the current zoom level
func (m *Map) Zoom() int {
	return m.view.Zoom
}

// Center returns the current center
func (m *Map) Center() orb.Point {
	return m.view.Center
}

// SetTheme changes the chrome colors
func (m *Map) SetTheme(t *theme.Theme) {
	if t != nil {
		m.theme = t
		m.cache.invalidate()
	}
}

// Resize sets the map size in cells. A fit requested before the size was known
// is applied now, and reapplied on later resizes until the user moves the map.
func (m *Map) Resize(width, height int) {
	m.view.SetSize(width, height)
	if m.fitted != nil && (m.pendingFit || !m.userMoved) {
		m.pendingFit = !m.view.FitBounds(*m.fitted)
	}
}

// FlyTo recenters the map at zoom z
func (m *Map) FlyTo(center orb.Point, z int) {
	m.view.FlyTo(center, z)
	m.userMoved = true
}

// ZoomIn zooms in one level
func (m *Map) ZoomIn() bool {
	m.userMoved = true
	return m.view.ZoomBy(1)
}

// ZoomOut zooms out one level
func (m *Map) ZoomOut() bool {
	m.userMoved = true
	return m.view.ZoomBy(-1)
}

// Pan moves the map by dx, dy cells
func (m *Map) Pan(dx, dy int) {
	m.userMoved = true
	m.view.Pan(dx, dy)
}

// FitBounds fits the viewport to b
func (m *Map) FitBounds(b orb.Bound) {
	m.fitted = &b
	m.userMoved = false
	m.pendingFit = !m.view.FitBounds(b)
}

// FittedBounds returns the last bound passed to FitBounds
func (m *Map) FittedBounds() (orb.Bound, bool) {
	if m.fitted == nil {
		return orb.Bound{}, false
	}
	return *m.fitted, true
}

// OpenPopup shows lines anchored at the geographic point at
func (m *Map) OpenPopup(at orb.Point, lines []string) {
	m.popup = &Popup{At: at, Lines: append([]string(nil), lines...)}
}

// ClosePopup removes the popup
func (m *Map) ClosePopup() bool {
	open := m.popup != nil
	m.popup = nil
	return open
}

// Popup returns the open popup or nil
func (m *Map) Popup() *Popup {
	return m.popup
}

// AddOverlay adds a visible boundary layer on top of existing overlays
func (m *Map) AddOverlay(name string, l *layer.Layer) {
	m.overlays = append(m.overlays, &Overlay{Name: name, Layer: l, Visible: true})
	m.cache.invalidate()
}

// Overlays returns the overlays bottom to top
func (m *Map) Overlays() []*Overlay {
	return m.overlays
}

// ToggleOverlay flips the visibility of the overlay at index i
func (m *Map) ToggleOverlay(i int) bool {
	if i < 0 || i >= len(m.overlays) {
		return false
	}
	m.overlays[i].Visible = !m.overlays[i].Visible
	m.cache.invalidate()
	return true
}

// BaseLayerNames lists the base layer names in order
func (m *Map) BaseLayerNames() []string {
	names := make([]string, len(m.baseLayers))
	for i, b := range m.baseLayers {
		names[i] = b.Name
	}
	return names
}

// ActiveBaseLayer returns the base layer being drawn
func (m *Map) ActiveBaseLayer() BaseLayer {
	return m.baseLayers[m.activeBase]
}

// SetBaseLayer selects the base layer at index i
func (m *Map) SetBaseLayer(i int) bool {
	if i < 0 || i >= len(m.baseLayers) || i == m.activeBase {
		return false
	}
	m.activeBase = i
	return true
}

// AddLayerControl registers the layer-switcher control, shown expanded
func (m *Map) AddLayerControl(bases, overlays []string) {
	m.control = &LayerControl{
		Bases:    append([]string(nil), bases...),
		Overlays: append([]string(nil), overlays...),
		Expanded: true,
	}
}

// LayerControl returns the registered layer control or nil
func (m *Map) LayerControl() *LayerControl {
	return m.control
}

// ToggleLayerControl expands or collapses the layer control
func (m *Map) ToggleLayerControl() bool {
	if m.control == nil {
		return false
	}
	m.control.Expanded = !m.control.Expanded
	return true
}

// ShapeAt returns the topmost visible shape under cell (col, row)
func (m *Map) ShapeAt(col, row int) *layer.Shape {
	px := m.view.CellToPixel(col, row)
	for i := len(m.overlays) - 1; i >= 0; i-- {
		ov := m.overlays[i]
		if !ov.Visible || ov.Layer == nil {
			continue
		}
		if s := ov.Layer.ShapeAt(px, m.view.Zoom); s != nil {
			return s
		}
	}
	return nil
}

// LatLngAt returns the geographic point under cell (col, row)
func (m *Map) LatLngAt(col, row int) orb.Point {
	return m.view.CellToLatLng(col, row)
}
