package mapview

import (
	"strings"
	"testing"

	"github.com/borderview/borderview-go/internal/geo"
	"github.com/borderview/borderview-go/internal/layer"
	"github.com/borderview/borderview-go/internal/style"
	"github.com/borderview/borderview-go/internal/testutil"
	"github.com/paulmach/orb"
)

func newTestMap() *Map {
	m := New(Options{
		Center:          orb.Point{0, 20},
		Zoom:            2,
		ShowZoomControl: true,
	})
	m.Resize(80, 24)
	return m
}

func indiaLayer() *layer.Layer {
	features := geo.Select(testutil.WorldCollection(), geo.SelectName("India"), "name")
	return layer.New(features, style.Constant{Style: style.Default}, "name")
}

func TestNewDefaults(t *testing.T) {
	m := New(Options{Center: orb.Point{0, 20}, Zoom: 2})

	names := m.BaseLayerNames()
	if len(names) != 3 || names[0] != "Street" || names[1] != "Satellite" || names[2] != "Terrain" {
		t.Errorf("Expected default base layers, got %v", names)
	}
	if m.ActiveBaseLayer().Name != "Street" {
		t.Errorf("Expected Street active, got %s", m.ActiveBaseLayer().Name)
	}
	v := m.Viewport()
	if v.MinZoom != DefaultMinZoom || v.MaxZoom != DefaultMaxZoom {
		t.Errorf("Expected default zoom range, got %d..%d", v.MinZoom, v.MaxZoom)
	}
	if m.Zoom() != 2 || m.Center() != (orb.Point{0, 20}) {
		t.Errorf("Expected initial view [20,0] zoom 2, got %v zoom %d", m.Center(), m.Zoom())
	}
}

func TestFitBoundsBeforeResize(t *testing.T) {
	m := New(Options{Center: orb.Point{0, 20}, Zoom: 2})
	m.FitBounds(testutil.IndiaBound)

	if m.Zoom() != 2 {
		t.Errorf("Expected zoom unchanged until size is known, got %d", m.Zoom())
	}
	b, ok := m.FittedBounds()
	if !ok || b != testutil.IndiaBound {
		t.Errorf("Expected fitted bounds to be recorded, got %v", b)
	}

	m.Resize(80, 24)
	if m.Zoom() != 4 {
		t.Errorf("Expected zoom 4 after resize, got %d", m.Zoom())
	}

	m.ZoomOut()
	m.Resize(100, 30)
	if m.Zoom() != 3 {
		t.Errorf("Expected user zoom to survive resize, got %d", m.Zoom())
	}
}

func TestSetBaseLayer(t *testing.T) {
	m := newTestMap()

	if !m.SetBaseLayer(2) || m.ActiveBaseLayer().Kind != KindTerrain {
		t.Error("Expected terrain to become active")
	}
	if m.SetBaseLayer(2) {
		t.Error("Expected no change when selecting the active layer")
	}
	if m.SetBaseLayer(7) {
		t.Error("Expected out of range selection to fail")
	}
	if !m.SelectBaseLayerByName("Satellite") || m.ActiveBaseLayer().Name != "Satellite" {
		t.Error("Expected selection by name")
	}
}

func TestShapeAt(t *testing.T) {
	m := newTestMap()
	m.AddOverlay("Countries", indiaLayer())
	m.FitBounds(testutil.IndiaBound)

	col, row := m.Viewport().LatLngToCell(orb.Point{80, 20})
	s := m.ShapeAt(col, row)
	if s == nil || s.Name != "India" {
		t.Fatalf("Expected India under the pointer, got %v", s)
	}

	m.ToggleOverlay(0)
	if m.ShapeAt(col, row) != nil {
		t.Error("Expected hidden overlay not to be hit")
	}

	if m.ToggleOverlay(3) {
		t.Error("Expected toggling an unknown overlay to fail")
	}
}

func TestDrawFillsAndBorders(t *testing.T) {
	m := newTestMap()
	m.AddOverlay("Countries", indiaLayer())
	m.FitBounds(testutil.IndiaBound)

	bare := newTestMap()
	bare.FitBounds(testutil.IndiaBound)

	c := m.Draw()
	base := bare.Draw()

	col, row := m.Viewport().LatLngToCell(orb.Point{82, 21})
	if c.At(col, row).BG == base.At(col, row).BG {
		t.Error("Expected India interior to be filled")
	}

	glyph := style.Default.BorderGlyph()
	if !strings.ContainsRune(c.Plain(), glyph) {
		t.Errorf("Expected border glyph %q on the canvas", glyph)
	}

	farCol, farRow := 2, m.Viewport().Height-1
	if c.At(farCol, farRow).BG != base.At(farCol, farRow).BG {
		t.Error("Expected cells outside India to keep the backdrop")
	}
}

func TestDrawZeroOpacityKeepsBackdrop(t *testing.T) {
	features := geo.Select(testutil.WorldCollection(), geo.SelectName("India"), "name")
	invisible := style.Default
	invisible.FillOpacity = 0
	invisible.BorderWeight = 0

	m := newTestMap()
	m.AddOverlay("Countries", layer.New(features, style.Constant{Style: invisible}, "name"))
	m.FitBounds(testutil.IndiaBound)

	bare := newTestMap()
	bare.FitBounds(testutil.IndiaBound)

	if m.Draw().Plain() != bare.Draw().Plain() {
		t.Error("Expected invisible style to leave the canvas unchanged")
	}
}

func TestPopup(t *testing.T) {
	m := newTestMap()
	at := orb.Point{0, 20}
	m.OpenPopup(at, layer.PopupLines("India"))

	if m.Popup() == nil {
		t.Fatal("Expected popup to be open")
	}
	if !strings.Contains(m.Draw().Plain(), "Country: India") {
		t.Error("Expected popup text on the canvas")
	}

	r, _ := m.popupRect()
	if hit := m.HitTest(r.x+1, r.y+1); hit.Kind != HitPopup {
		t.Errorf("Expected popup hit, got %v", hit.Kind)
	}
	if hit := m.HitTest(r.x+r.w-2, r.y); hit.Kind != HitPopupClose {
		t.Errorf("Expected close hit, got %v", hit.Kind)
	}

	if !m.ClosePopup() || m.Popup() != nil {
		t.Error("Expected popup to close")
	}
	if m.ClosePopup() {
		t.Error("Expected closing twice to report false")
	}
}

func TestZoomControlHit(t *testing.T) {
	m := newTestMap()
	w := m.Viewport().Width

	if hit := m.HitTest(w-2, 0); hit.Kind != HitZoomIn {
		t.Errorf("Expected zoom in hit, got %v", hit.Kind)
	}
	if hit := m.HitTest(w-2, 1); hit.Kind != HitZoomOut {
		t.Errorf("Expected zoom out hit, got %v", hit.Kind)
	}
	if hit := m.HitTest(10, 10); hit.Kind != HitMap {
		t.Errorf("Expected map hit, got %v", hit.Kind)
	}
	if !strings.Contains(m.Draw().Plain(), "[+]") {
		t.Error("Expected zoom control to be drawn")
	}

	hidden := New(Options{Center: orb.Point{0, 20}, Zoom: 2})
	hidden.Resize(80, 24)
	if hit := hidden.HitTest(78, 0); hit.Kind != HitMap {
		t.Errorf("Expected no zoom control when disabled, got %v", hit.Kind)
	}
}

func TestLayerControl(t *testing.T) {
	m := newTestMap()
	m.AddOverlay("Countries", indiaLayer())

	if m.LayerControl() != nil {
		t.Fatal("Expected no layer control before registration")
	}
	if m.ToggleLayerControl() {
		t.Error("Expected toggle to fail without a control")
	}

	m.AddLayerControl(m.BaseLayerNames(), []string{"Countries"})
	ctrl := m.LayerControl()
	if ctrl == nil || !ctrl.Expanded {
		t.Fatal("Expected expanded layer control")
	}

	plain := m.Draw().Plain()
	for _, want := range []string{"Layers", "◉ Street", "○ Satellite", "○ Terrain", "☑ Countries"} {
		if !strings.Contains(plain, want) {
			t.Errorf("Expected layer control to show %q", want)
		}
	}

	r, _ := m.layerControlRect()
	if hit := m.HitTest(r.x+3, r.y+2); hit.Kind != HitBaseLayer || hit.Index != 1 {
		t.Errorf("Expected Satellite row hit, got %+v", hit)
	}
	if hit := m.HitTest(r.x+3, r.y+5); hit.Kind != HitOverlay || hit.Index != 0 {
		t.Errorf("Expected overlay row hit, got %+v", hit)
	}

	m.ToggleOverlay(0)
	if !strings.Contains(m.Draw().Plain(), "☐ Countries") {
		t.Error("Expected unchecked overlay after toggle")
	}

	m.ToggleLayerControl()
	if !strings.Contains(m.Draw().Plain(), "[Layers]") {
		t.Error("Expected collapsed control")
	}
	r, _ = m.layerControlRect()
	if hit := m.HitTest(r.x, r.y); hit.Kind != HitLayerControl {
		t.Errorf("Expected collapsed control hit, got %v", hit.Kind)
	}
}

func TestRenderCache(t *testing.T) {
	m := newTestMap()
	l := indiaLayer()
	m.AddOverlay("Countries", l)

	first := m.Render()
	key := m.cache.key
	if m.Render() != first || m.cache.key != key {
		t.Error("Expected cached render to be reused")
	}

	l.SetStyle(l.Shapes()[0], style.Highlight)
	m.Render()
	if m.cache.key == key {
		t.Error("Expected style change to invalidate the cache")
	}

	key = m.cache.key
	m.Pan(1, 0)
	m.Render()
	if m.cache.key == key {
		t.Error("Expected pan to invalidate the cache")
	}
}

func TestGraticule(t *testing.T) {
	if GraticuleStep(2) != 30 || GraticuleStep(4) != 10 || GraticuleStep(6) != 5 || GraticuleStep(9) != 1 {
		t.Error("Unexpected graticule steps")
	}
	if !crosses(-1, 1, 30) {
		t.Error("Expected span across 0 to cross")
	}
	if crosses(1, 2, 30) {
		t.Error("Expected span inside a cell not to cross")
	}
	if !ValidKind(KindSatellite) || ValidKind("ocean") {
		t.Error("Unexpected kind validation")
	}
}
