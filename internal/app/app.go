// Package app provides the Bubble Tea application model for borderview
package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/borderview/borderview-go/internal/boundary"
	"github.com/borderview/borderview-go/internal/config"
	"github.com/borderview/borderview-go/internal/diag"
	"github.com/borderview/borderview-go/internal/export"
	"github.com/borderview/borderview-go/internal/geo"
	"github.com/borderview/borderview-go/internal/layer"
	"github.com/borderview/borderview-go/internal/mapview"
	"github.com/borderview/borderview-go/internal/theme"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Rows taken by the title bar and the status bar
const chromeRows = 2

// Pan step in cells
const (
	panCols = 8
	panRows = 4
)

const notifyDuration = 3 * time.Second

// Options configures a new Model
type Options struct {
	Config  *config.Config
	Fetcher geo.Fetcher
	Sink    diag.Sink
	Logger  *slog.Logger
	// Context bounds the dataset request
	Context context.Context
	// Persist saves the configuration on quit
	Persist bool
}

// Model is the main application model
type Model struct {
	config *config.Config
	theme  *theme.Theme
	mapv   *mapview.Map
	loader *boundary.Loader
	status *Status
	keys   keyMap
	help   help.Model
	ctx    context.Context
	log    *slog.Logger

	width, height    int
	mouseCol         int
	mouseRow         int
	hasPointer       bool
	showHelp         bool
	persist          bool
	collapseControl  bool
	notification     string
	notificationTill time.Time
	now              func() time.Time
}

// fetchedMsg carries the dataset fetch result back to the update loop
type fetchedMsg boundary.FetchResult

// NewModel creates a new application model
func NewModel(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	t := theme.Get(cfg.Display.Theme)
	mapv := mapview.New(cfg.MapOptions(t))
	status := NewStatus(t)

	loader := boundary.NewLoader(cfg.Session(), opts.Fetcher, mapv, status, opts.Sink)
	loader.SetLogger(log.With("component", "boundary"))

	h := help.New()
	h.ShowAll = true

	return &Model{
		config:          cfg,
		theme:           t,
		mapv:            mapv,
		loader:          loader,
		status:          status,
		keys:            defaultKeyMap(),
		help:            h,
		ctx:             ctx,
		log:             log.With("component", "app"),
		persist:         opts.Persist,
		collapseControl: !cfg.Display.ShowLayerControl,
		now:             time.Now,
	}
}

// Init starts the boundary load
func (m *Model) Init() tea.Cmd {
	if err := m.loader.Start(); err != nil {
		m.log.Warn("loader not started", "error", err)
		return nil
	}
	return tea.Batch(m.status.Tick, m.fetchCmd())
}

func (m *Model) fetchCmd() tea.Cmd {
	loader, ctx := m.loader, m.ctx
	return func() tea.Msg {
		return fetchedMsg(loader.Fetch(ctx))
	}
}

// Update handles messages and updates state
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.mapv.Resize(msg.Width, max(0, msg.Height-chromeRows))
		return m, nil

	case fetchedMsg:
		m.handleFetched(boundary.FetchResult(msg))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	}

	return m, m.status.Update(msg)
}

func (m *Model) handleFetched(res boundary.FetchResult) {
	if m.loader.Complete(res) != boundary.Rendered {
		return
	}
	if m.collapseControl {
		if c := m.mapv.LayerControl(); c != nil && c.Expanded {
			m.mapv.ToggleLayerControl()
		}
	}
	if country := m.loader.Session().Country; country != "" {
		m.config.AddRecentCountry(country)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if m.persist {
			if err := config.Save(m.config); err != nil {
				m.log.Warn("saving config failed", "error", err)
			}
		}
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.ZoomIn):
		m.mapv.ZoomIn()
		m.pointerChanged()
	case key.Matches(msg, m.keys.ZoomOut):
		m.mapv.ZoomOut()
		m.pointerChanged()
	case key.Matches(msg, m.keys.Up):
		m.mapv.Pan(0, -panRows)
		m.pointerChanged()
	case key.Matches(msg, m.keys.Down):
		m.mapv.Pan(0, panRows)
		m.pointerChanged()
	case key.Matches(msg, m.keys.Left):
		m.mapv.Pan(-panCols, 0)
		m.pointerChanged()
	case key.Matches(msg, m.keys.Right):
		m.mapv.Pan(panCols, 0)
		m.pointerChanged()
	case key.Matches(msg, m.keys.Fit):
		m.fitBoundaries()
		m.pointerChanged()
	case key.Matches(msg, m.keys.BaseLayer):
		i := int(msg.String()[0] - '1')
		if m.mapv.SetBaseLayer(i) {
			m.notify("Base layer: " + m.mapv.ActiveBaseLayer().Name)
		}
	case key.Matches(msg, m.keys.Overlay):
		if m.mapv.ToggleOverlay(0) {
			m.pointerChanged()
		}
	case key.Matches(msg, m.keys.Layers):
		m.mapv.ToggleLayerControl()
	case key.Matches(msg, m.keys.Theme):
		m.nextTheme()
	case key.Matches(msg, m.keys.Screenshot):
		m.exportScreenshot()
	case key.Matches(msg, m.keys.Image):
		m.exportImage()
	case key.Matches(msg, m.keys.Export):
		m.exportBoundaries()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Close):
		m.mapv.ClosePopup()
		m.pointerChanged()
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	col, row := msg.X, msg.Y-1
	inMap := row >= 0 && row < m.mapv.Viewport().Height && col >= 0 && col < m.mapv.Viewport().Width

	m.mouseCol, m.mouseRow = col, row
	m.hasPointer = inMap

	switch {
	case msg.Button == tea.MouseButtonWheelUp && msg.Action == tea.MouseActionPress:
		m.mapv.ZoomIn()
		m.pointerChanged()
		return
	case msg.Button == tea.MouseButtonWheelDown && msg.Action == tea.MouseActionPress:
		m.mapv.ZoomOut()
		m.pointerChanged()
		return
	}

	switch msg.Action {
	case tea.MouseActionMotion:
		m.pointerChanged()
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft && inMap {
			m.click(col, row)
			m.pointerChanged()
		}
	}
}

// pointerChanged re-derives the hovered shape from the pointer cell
func (m *Model) pointerChanged() {
	b := m.loader.Binder()
	if b == nil {
		return
	}
	b.PointerMove(m.shapeUnderPointer())
}

func (m *Model) shapeUnderPointer() *layer.Shape {
	if !m.hasPointer || m.showHelp {
		return nil
	}
	if m.mapv.HitTest(m.mouseCol, m.mouseRow).Kind != mapview.HitMap {
		return nil
	}
	return m.mapv.ShapeAt(m.mouseCol, m.mouseRow)
}

func (m *Model) click(col, row int) {
	hit := m.mapv.HitTest(col, row)
	switch hit.Kind {
	case mapview.HitZoomIn:
		m.mapv.ZoomIn()
	case mapview.HitZoomOut:
		m.mapv.ZoomOut()
	case mapview.HitBaseLayer:
		m.mapv.SetBaseLayer(hit.Index)
	case mapview.HitOverlay:
		m.mapv.ToggleOverlay(hit.Index)
	case mapview.HitLayerControl:
		m.mapv.ToggleLayerControl()
	case mapview.HitPopupClose:
		m.mapv.ClosePopup()
	case mapview.HitPopup:
	case mapview.HitMap:
		s := m.mapv.ShapeAt(col, row)
		b := m.loader.Binder()
		if s == nil || b == nil {
			m.mapv.ClosePopup()
			return
		}
		b.Click(s, m.mapv.LatLngAt(col, row))
	}
}

func (m *Model) fitBoundaries() {
	l := m.loader.Layer()
	if l == nil {
		return
	}
	if b, ok := l.Bounds(); ok {
		m.mapv.FitBounds(b)
	}
}

func (m *Model) nextTheme() {
	names := theme.List()
	next := names[0]
	for i, n := range names {
		if n == m.config.Display.Theme && i+1 < len(names) {
			next = names[i+1]
		}
	}
	m.setTheme(next)
}

func (m *Model) setTheme(name string) {
	m.theme = theme.Get(name)
	m.config.Display.Theme = name
	m.mapv.SetTheme(m.theme)
	m.status.SetTheme(m.theme)
	m.notify("Theme: " + m.theme.Name)
}

func (m *Model) notify(message string) {
	m.notification = message
	m.notificationTill = m.now().Add(notifyDuration)
}

// Notification returns the active notification, empty once it expired
func (m *Model) Notification() string {
	if m.notification == "" || m.now().After(m.notificationTill) {
		return ""
	}
	return m.notification
}

// GetExportDirectory returns the configured export directory or current directory
func (m *Model) GetExportDirectory() string {
	return m.config.Export.Directory
}

// exportScreenshot saves the current view as HTML
func (m *Model) exportScreenshot() {
	if m.width == 0 {
		m.notify("No view to export")
		return
	}

	filename, err := export.CaptureScreen(m.mapv.Draw(), "borderview: "+m.loader.Session().Describe(), m.GetExportDirectory())
	if err != nil {
		m.log.Error("screenshot failed", "error", err)
		m.notify("Export failed: " + err.Error())
		return
	}

	m.log.Info("screenshot saved", "file", filename)
	m.notify("Screenshot: " + filepath.Base(filename))
}

// exportImage saves the current map as PNG
func (m *Model) exportImage() {
	if m.width == 0 {
		m.notify("No view to export")
		return
	}

	filename, err := export.CaptureImage(m.mapv.Draw(), m.GetExportDirectory())
	if err != nil {
		m.log.Error("image export failed", "error", err)
		m.notify("Export failed: " + err.Error())
		return
	}

	m.log.Info("image saved", "file", filename)
	m.notify("Image: " + filepath.Base(filename))
}

// exportBoundaries writes the rendered boundaries as GeoJSON
func (m *Model) exportBoundaries() {
	l := m.loader.Layer()
	if l == nil {
		m.notify("No boundaries to export")
		return
	}

	filename, err := export.ExportLayerGeoJSON(l, m.GetExportDirectory())
	if err != nil {
		m.log.Error("geojson export failed", "error", err)
		m.notify("Export failed: " + err.Error())
		return
	}

	m.log.Info("boundaries exported", "file", filename, "features", l.Len())
	m.notify("GeoJSON: " + filepath.Base(filename))
}

// Loader returns the boundary loader
func (m *Model) Loader() *boundary.Loader {
	return m.loader
}

// Map returns the map surface
func (m *Model) Map() *mapview.Map {
	return m.mapv
}

// Status returns the loading indicator
func (m *Model) Status() *Status {
	return m.status
}

// Config returns the live configuration
func (m *Model) Config() *config.Config {
	return m.config
}
