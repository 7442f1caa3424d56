package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/borderview/borderview-go/internal/boundary"
	"github.com/borderview/borderview-go/internal/config"
	"github.com/borderview/borderview-go/internal/diag"
	"github.com/borderview/borderview-go/internal/geo"
	"github.com/borderview/borderview-go/internal/layer"
	"github.com/borderview/borderview-go/internal/mapview"
	"github.com/borderview/borderview-go/internal/style"
	"github.com/borderview/borderview-go/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func worldFetcher() geo.Fetcher {
	return geo.FetcherFunc(func(ctx context.Context) (*geojson.FeatureCollection, error) {
		return testutil.WorldCollection(), nil
	})
}

func newTestModel(cfg *config.Config, fetcher geo.Fetcher) (*Model, *diag.Buffer) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	events := &diag.Buffer{}
	m := NewModel(Options{Config: cfg, Fetcher: fetcher, Sink: events})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 26})
	return m, events
}

// load runs Init and delivers the fetch result synchronously
func load(m *Model) {
	m.Init()
	m.Update(m.fetchCmd()())
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// mouseAt builds a mouse event for map cell (col, row); the title bar takes
// the first terminal row.
func mouseAt(col, row int, action tea.MouseAction, button tea.MouseButton) tea.MouseMsg {
	return tea.MouseMsg{X: col, Y: row + 1, Action: action, Button: button}
}

func cellOf(m *Model, lon, lat float64) (int, int) {
	return m.Map().Viewport().LatLngToCell(orb.Point{lon, lat})
}

func TestInitShowsLoading(t *testing.T) {
	m, events := newTestModel(nil, worldFetcher())

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Expected Init to return commands")
	}
	if m.Loader().State() != boundary.Fetching {
		t.Errorf("Expected Fetching, got %s", m.Loader().State())
	}
	if !m.Status().Visible() || m.Status().Message() != boundary.MsgLoading {
		t.Errorf("Expected loading message, got %q", m.Status().Message())
	}
	if !strings.Contains(m.View(), "Loading boundaries...") {
		t.Error("Expected loading message in view")
	}
	if len(events.OfType(diag.EventLoad)) != 1 {
		t.Error("Expected a load event")
	}

	if m.Init() != nil {
		t.Error("Expected second Init to do nothing")
	}
}

func TestLoadIndia(t *testing.T) {
	m, _ := newTestModel(nil, worldFetcher())
	load(m)

	if m.Loader().State() != boundary.Rendered {
		t.Fatalf("Expected Rendered, got %s", m.Loader().State())
	}
	if m.Status().Visible() {
		t.Error("Expected status hidden after render")
	}
	b, ok := m.Map().FittedBounds()
	if !ok || b != testutil.IndiaBound {
		t.Errorf("Expected fitted India bounds, got %v", b)
	}
	if m.Map().Zoom() != 4 {
		t.Errorf("Expected zoom 4, got %d", m.Map().Zoom())
	}
	if len(m.Map().Overlays()) != 1 || m.Map().Overlays()[0].Name != "Country Boundary" {
		t.Errorf("Expected one Country Boundary overlay")
	}
	c := m.Map().LayerControl()
	if c == nil || !c.Expanded {
		t.Error("Expected expanded layer control")
	}
	if got := m.Config().RecentCountries; len(got) == 0 || got[0] != "India" {
		t.Errorf("Expected India in recent countries, got %v", got)
	}

	view := m.View()
	if !strings.Contains(view, "India (single)") {
		t.Error("Expected session in title bar")
	}
	if !strings.Contains(view, "z4") {
		t.Error("Expected zoom in status bar")
	}
	if strings.Contains(view, "Loading boundaries...") {
		t.Error("Expected loading message gone")
	}
}

func TestLoadCollapsedLayerControl(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Display.ShowLayerControl = false
	m, _ := newTestModel(cfg, worldFetcher())
	load(m)

	c := m.Map().LayerControl()
	if c == nil || c.Expanded {
		t.Error("Expected collapsed layer control")
	}
}

func TestLoadNotFound(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Target.Country = "Atlantis"
	m, _ := newTestModel(cfg, worldFetcher())
	load(m)

	if m.Loader().State() != boundary.NotFound {
		t.Fatalf("Expected NotFound, got %s", m.Loader().State())
	}
	if m.Status().Message() != "Country not found." {
		t.Errorf("Expected not found message, got %q", m.Status().Message())
	}
	if len(m.Map().Overlays()) != 0 {
		t.Error("Expected no overlay")
	}
	if !strings.Contains(m.View(), "Country not found.") {
		t.Error("Expected message in view")
	}
	if len(m.Config().RecentCountries) != 0 {
		t.Error("Expected no recent country for a failed load")
	}
}

func TestLoadFetchFailed(t *testing.T) {
	failing := geo.FetcherFunc(func(ctx context.Context) (*geojson.FeatureCollection, error) {
		return nil, errors.New("connection refused")
	})
	m, _ := newTestModel(nil, failing)
	load(m)

	if m.Loader().State() != boundary.FetchFailed {
		t.Fatalf("Expected FetchFailed, got %s", m.Loader().State())
	}
	if !strings.Contains(m.View(), "Error loading map data.") {
		t.Error("Expected error message in view")
	}
}

func TestLoadFromMockServer(t *testing.T) {
	srv := testutil.NewWorldServer()
	defer srv.Close()

	fetcher, err := geo.NewFetcher(srv.URL())
	if err != nil {
		t.Fatal(err)
	}
	m, _ := newTestModel(nil, fetcher)
	load(m)

	if m.Loader().State() != boundary.Rendered {
		t.Errorf("Expected Rendered, got %s", m.Loader().State())
	}
	if srv.Requests() != 1 {
		t.Errorf("Expected exactly one dataset request, got %d", srv.Requests())
	}
}

func TestHoverHighlightsAndRestores(t *testing.T) {
	m, events := newTestModel(nil, worldFetcher())
	load(m)

	col, row := cellOf(m, 80, 20)
	m.Update(mouseAt(col, row, tea.MouseActionMotion, tea.MouseButtonNone))

	india := m.Loader().Layer().Find("India")
	if m.Loader().Binder().Hovered() != india {
		t.Fatal("Expected India hovered")
	}
	if india.Style() != style.Highlight {
		t.Errorf("Expected highlight style, got %+v", india.Style())
	}
	if !strings.Contains(m.View(), "India") {
		t.Error("Expected hovered name in status bar")
	}

	m.Update(mouseAt(0, 10, tea.MouseActionMotion, tea.MouseButtonNone))
	if m.Loader().Binder().Hovered() != nil {
		t.Error("Expected nothing hovered")
	}
	if india.Style() != style.Default {
		t.Errorf("Expected default style restored, got %+v", india.Style())
	}

	if len(events.OfType(diag.EventHoverEnter)) != 1 || len(events.OfType(diag.EventHoverExit)) != 1 {
		t.Errorf("Expected one enter and one exit event, got %v", events.Events())
	}
}

func TestHoverIgnoresControls(t *testing.T) {
	m, _ := newTestModel(nil, worldFetcher())
	load(m)

	// The zoom control covers the top-right corner
	m.Update(mouseAt(77, 0, tea.MouseActionMotion, tea.MouseButtonNone))
	if m.Loader().Binder().Hovered() != nil {
		t.Error("Expected no hover over the zoom control")
	}
}

func TestClickZoomsAndOpensPopup(t *testing.T) {
	m, events := newTestModel(nil, worldFetcher())
	load(m)

	col, row := cellOf(m, 80, 20)
	want := m.Map().LatLngAt(col, row)
	m.Update(mouseAt(col, row, tea.MouseActionPress, tea.MouseButtonLeft))

	if m.Map().Zoom() != 5 {
		t.Errorf("Expected zoom 5 after click, got %d", m.Map().Zoom())
	}
	p := m.Map().Popup()
	if p == nil || len(p.Lines) != 2 || p.Lines[0] != "Country: India" {
		t.Fatalf("Expected India popup, got %+v", p)
	}

	clicks := events.OfType(diag.EventClick)
	if len(clicks) != 1 {
		t.Fatalf("Expected one click event, got %d", len(clicks))
	}
	if clicks[0].Lat != want.Lat() || clicks[0].Lon != want.Lon() {
		t.Errorf("Expected click at %v, got %v,%v", want, clicks[0].Lat, clicks[0].Lon)
	}
	if !m.Map().Viewport().Contains(orb.Point{80, 20}) {
		t.Error("Expected clicked point in view")
	}
}

// underPointer is the shape a fresh pointer motion at (col, row) would hover
func underPointer(m *Model, col, row int) *layer.Shape {
	if m.Map().HitTest(col, row).Kind != mapview.HitMap {
		return nil
	}
	return m.Map().ShapeAt(col, row)
}

func TestHoverFollowsViewChanges(t *testing.T) {
	m, _ := newTestModel(nil, worldFetcher())
	load(m)

	india := m.Loader().Layer().Find("India")
	col, row := cellOf(m, 80, 20)
	m.Update(mouseAt(col, row, tea.MouseActionMotion, tea.MouseButtonNone))
	if m.Loader().Binder().Hovered() != india {
		t.Fatal("Expected India hovered before the click")
	}

	check := func(step string) {
		t.Helper()
		got := m.Loader().Binder().Hovered()
		if want := underPointer(m, col, row); got != want {
			t.Errorf("%s: hovered %v, shape under pointer %v", step, got, want)
		}
		if got != india && india.Style() == style.Highlight {
			t.Errorf("%s: India left highlighted", step)
		}
	}

	m.Update(mouseAt(col, row, tea.MouseActionPress, tea.MouseButtonLeft))
	check("click")

	for i := 0; i < 3; i++ {
		m.Update(keyPress("-"))
	}
	check("zoom out")

	m.Update(keyPress("left"))
	check("pan")

	m.Update(mouseAt(col, row, tea.MouseActionPress, tea.MouseButtonWheelUp))
	check("wheel")

	m.Update(keyPress("f"))
	check("fit")
}

func TestClickFixedZoom(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Map.ClickZoom.Mode = "fixed"
	cfg.Map.ClickZoom.Level = 7
	m, _ := newTestModel(cfg, worldFetcher())
	load(m)

	col, row := cellOf(m, 80, 20)
	m.Update(mouseAt(col, row, tea.MouseActionPress, tea.MouseButtonLeft))

	if m.Map().Zoom() != 7 {
		t.Errorf("Expected fixed zoom 7, got %d", m.Map().Zoom())
	}
}

func TestClickOutsideClosesPopup(t *testing.T) {
	m, events := newTestModel(nil, worldFetcher())
	load(m)

	m.Map().OpenPopup(orb.Point{80, 20}, []string{"x"})
	m.Update(mouseAt(0, 10, tea.MouseActionPress, tea.MouseButtonLeft))

	if m.Map().Popup() != nil {
		t.Error("Expected popup closed")
	}
	if len(events.OfType(diag.EventClick)) != 0 {
		t.Error("Expected no click event outside shapes")
	}
}

func TestClickZoomControl(t *testing.T) {
	m, _ := newTestModel(nil, worldFetcher())
	load(m)

	m.Update(mouseAt(77, 0, tea.MouseActionPress, tea.MouseButtonLeft))
	if m.Map().Zoom() != 5 {
		t.Errorf("Expected zoom in from control, got %d", m.Map().Zoom())
	}
	m.Update(mouseAt(77, 1, tea.MouseActionPress, tea.MouseButtonLeft))
	m.Update(mouseAt(77, 1, tea.MouseActionPress, tea.MouseButtonLeft))
	if m.Map().Zoom() != 3 {
		t.Errorf("Expected zoom out from control, got %d", m.Map().Zoom())
	}
}

func TestMouseWheel(t *testing.T) {
	m, _ := newTestModel(nil, worldFetcher())
	load(m)

	m.Update(mouseAt(10, 10, tea.MouseActionPress, tea.MouseButtonWheelUp))
	if m.Map().Zoom() != 5 {
		t.Errorf("Expected wheel up to zoom in, got %d", m.Map().Zoom())
	}
	m.Update(mouseAt(10, 10, tea.MouseActionPress, tea.MouseButtonWheelDown))
	if m.Map().Zoom() != 4 {
		t.Errorf("Expected wheel down to zoom out, got %d", m.Map().Zoom())
	}
}

func TestKeys(t *testing.T) {
	m, _ := newTestModel(nil, worldFetcher())
	load(m)

	m.Update(keyPress("+"))
	if m.Map().Zoom() != 5 {
		t.Errorf("Expected zoom 5, got %d", m.Map().Zoom())
	}
	m.Update(keyPress("-"))
	if m.Map().Zoom() != 4 {
		t.Errorf("Expected zoom 4, got %d", m.Map().Zoom())
	}

	before := m.Map().Center()
	m.Update(keyPress("left"))
	if m.Map().Center().Lon() >= before.Lon() {
		t.Error("Expected pan west")
	}
	m.Update(keyPress("up"))
	if m.Map().Center().Lat() <= before.Lat() {
		t.Error("Expected pan north")
	}

	m.Update(keyPress("f"))
	if m.Map().Zoom() != 4 || !m.Map().Viewport().Contains(orb.Point{80, 20}) {
		t.Error("Expected refit to India")
	}

	m.Update(keyPress("2"))
	if m.Map().ActiveBaseLayer().Name != "Satellite" {
		t.Errorf("Expected Satellite, got %s", m.Map().ActiveBaseLayer().Name)
	}
	if !strings.Contains(m.Notification(), "Satellite") {
		t.Errorf("Expected base layer notification, got %q", m.Notification())
	}
	m.Update(keyPress("9"))
	if m.Map().ActiveBaseLayer().Name != "Satellite" {
		t.Error("Expected unknown base layer key to be ignored")
	}

	m.Update(keyPress("o"))
	if m.Map().Overlays()[0].Visible {
		t.Error("Expected overlay hidden")
	}
	m.Update(keyPress("o"))

	m.Update(keyPress("L"))
	if m.Map().LayerControl().Expanded {
		t.Error("Expected layer control collapsed")
	}

	m.Map().OpenPopup(orb.Point{80, 20}, []string{"x"})
	m.Update(keyPress("esc"))
	if m.Map().Popup() != nil {
		t.Error("Expected esc to close the popup")
	}
}

func TestHiddenOverlayNotHovered(t *testing.T) {
	m, _ := newTestModel(nil, worldFetcher())
	load(m)

	col, row := cellOf(m, 80, 20)
	m.Update(mouseAt(col, row, tea.MouseActionMotion, tea.MouseButtonNone))
	m.Update(keyPress("o"))

	if m.Loader().Binder().Hovered() != nil {
		t.Error("Expected hover cleared when the overlay is hidden")
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(nil, worldFetcher())
	load(m)

	m.Update(keyPress("?"))
	view := m.View()
	if !strings.Contains(view, "BORDERVIEW HELP") || !strings.Contains(view, "zoom in") {
		t.Error("Expected help panel")
	}

	m.Update(keyPress("+"))
	if m.Map().Zoom() != 4 {
		t.Error("Expected the closing key not to reach the map")
	}
	if strings.Contains(m.View(), "BORDERVIEW HELP") {
		t.Error("Expected help closed")
	}
}

func TestThemeCycle(t *testing.T) {
	m, _ := newTestModel(nil, worldFetcher())

	first := m.Config().Display.Theme
	m.Update(keyPress("t"))
	if m.Config().Display.Theme == first {
		t.Error("Expected theme to change")
	}
	if !strings.HasPrefix(m.Notification(), "Theme: ") {
		t.Errorf("Expected theme notification, got %q", m.Notification())
	}
}

func TestNotificationExpires(t *testing.T) {
	m, _ := newTestModel(nil, worldFetcher())
	now := time.Now()
	m.now = func() time.Time { return now }

	m.notify("hello")
	if m.Notification() != "hello" {
		t.Error("Expected active notification")
	}
	now = now.Add(notifyDuration + time.Second)
	if m.Notification() != "" {
		t.Error("Expected notification to expire")
	}
}

func TestExportGeoJSON(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Export.Directory = t.TempDir()
	m, _ := newTestModel(cfg, worldFetcher())

	m.Update(keyPress("e"))
	if m.Notification() != "No boundaries to export" {
		t.Errorf("Expected nothing to export before load, got %q", m.Notification())
	}

	load(m)
	m.Update(keyPress("e"))
	if !strings.HasPrefix(m.Notification(), "GeoJSON: ") {
		t.Fatalf("Expected export notification, got %q", m.Notification())
	}

	files, _ := filepath.Glob(filepath.Join(cfg.Export.Directory, "*.geojson"))
	if len(files) != 1 {
		t.Fatalf("Expected one GeoJSON file, got %v", files)
	}
	data, _ := os.ReadFile(files[0])
	fc, err := geo.Decode(data)
	if err != nil || len(fc.Features) != 1 {
		t.Errorf("Expected one exported feature, err %v", err)
	}
}

func TestExportScreenshot(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Export.Directory = t.TempDir()
	m, _ := newTestModel(cfg, worldFetcher())
	load(m)

	m.Update(keyPress("p"))
	if !strings.HasPrefix(m.Notification(), "Screenshot: ") {
		t.Fatalf("Expected screenshot notification, got %q", m.Notification())
	}
	files, _ := filepath.Glob(filepath.Join(cfg.Export.Directory, "*.html"))
	if len(files) != 1 {
		t.Errorf("Expected one HTML file, got %v", files)
	}
}

func TestExportImage(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Export.Directory = t.TempDir()
	m, _ := newTestModel(cfg, worldFetcher())
	load(m)

	m.Update(keyPress("i"))
	if !strings.HasPrefix(m.Notification(), "Image: ") {
		t.Fatalf("Expected image notification, got %q", m.Notification())
	}
	files, _ := filepath.Glob(filepath.Join(cfg.Export.Directory, "*.png"))
	if len(files) != 1 {
		t.Errorf("Expected one PNG file, got %v", files)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(nil, worldFetcher())

	_, cmd := m.Update(keyPress("q"))
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}

func TestQuitPersistsConfig(t *testing.T) {
	origDir, origFile := config.ConfigDir, config.ConfigFile
	defer func() {
		config.ConfigDir, config.ConfigFile = origDir, origFile
	}()
	config.ConfigDir = t.TempDir()
	config.ConfigFile = filepath.Join(config.ConfigDir, "settings.json")

	m := NewModel(Options{Config: config.DefaultConfig(), Fetcher: worldFetcher(), Persist: true})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 26})
	load(m)
	m.Update(keyPress("ctrl+c"))

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.RecentCountries) == 0 || cfg.RecentCountries[0] != "India" {
		t.Errorf("Expected saved recent countries, got %v", cfg.RecentCountries)
	}
}

func TestViewBeforeSize(t *testing.T) {
	m := NewModel(Options{Fetcher: worldFetcher()})
	m.Init()
	if !strings.Contains(m.View(), "Loading boundaries...") {
		t.Error("Expected loading message before the first size")
	}
}

func TestStatusSpinner(t *testing.T) {
	s := NewStatus(nil)

	if s.View() != "" {
		t.Error("Expected empty view when hidden")
	}

	s.Show(boundary.MsgLoading)
	if !s.Busy() {
		t.Error("Expected busy while loading")
	}
	if cmd := s.Update(s.Tick()); cmd == nil {
		t.Error("Expected spinner to keep ticking while busy")
	}

	s.Show(boundary.MsgNotFound)
	if s.Busy() {
		t.Error("Expected not busy for a failure message")
	}
	if cmd := s.Update(s.Tick()); cmd != nil {
		t.Error("Expected spinner to stop")
	}
	if !strings.Contains(s.View(), "Country not found.") {
		t.Error("Expected failure message in view")
	}

	s.Hide()
	if s.Visible() {
		t.Error("Expected hidden")
	}
}
