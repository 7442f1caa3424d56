// Package main provides the entry point for the borderview CLI application
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/borderview/borderview-go/internal/app"
	"github.com/borderview/borderview-go/internal/boundary"
	"github.com/borderview/borderview-go/internal/config"
	"github.com/borderview/borderview-go/internal/diag"
	"github.com/borderview/borderview-go/internal/geo"
	"github.com/borderview/borderview-go/internal/layer"
	"github.com/borderview/borderview-go/internal/logging"
	"github.com/borderview/borderview-go/internal/theme"
	"github.com/borderview/borderview-go/internal/ws"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	country      string
	mode         string
	datasetURL   string
	nameProperty string
	themeName    string
	listThemes   bool
	exportDir    string
	clickZoom    int
	diagListen   string
	logLevel     string
	logFile      string
	baseLayer    string
)

var rootCmd = &cobra.Command{
	Use:   "borderview",
	Short: "borderview - Country Boundary Map",
	Long: `borderview - Country Boundary Map

Draws country boundaries from a public GeoJSON dataset on an interactive
terminal map. Hover a country to highlight it, click it to zoom in.
Settings saved to ~/.config/borderview/settings.json

Modes:
  single      Only the named country
  highlight   Every country, the named one emphasised
  all         Every country in the same style

Export:
  [P] Screenshot (HTML)           Export view as styled HTML
  [I] Screenshot (PNG)            Export view as an image
  [E] Export boundaries           Export rendered boundaries as GeoJSON

Diagnostics:
  --diag-listen 127.0.0.1:9180    Serve /events, /metrics and /status
  borderview tail                 Follow events of a running instance

Examples:
  borderview --country Nepal
  borderview --country France --mode highlight --theme paper
  borderview --mode all --click-zoom 6
  borderview --dataset ./countries.geojson --name-property ADMIN`,
	RunE: run,
}

func init() {
	// Dataset and target flags are shared with check
	rootCmd.PersistentFlags().StringVarP(&country, "country", "c", "", "Country to display")
	rootCmd.PersistentFlags().StringVarP(&mode, "mode", "m", "", "Display mode: single, highlight or all")
	rootCmd.PersistentFlags().StringVar(&datasetURL, "dataset", "", "GeoJSON dataset URL or file path")
	rootCmd.PersistentFlags().StringVar(&nameProperty, "name-property", "", "Feature property holding the country name")

	rootCmd.Flags().StringVar(&themeName, "theme", "", "Color theme")
	rootCmd.Flags().BoolVar(&listThemes, "list-themes", false, "List available themes")
	rootCmd.Flags().StringVar(&exportDir, "export-dir", "", "Directory for export files (default: current directory)")
	rootCmd.Flags().IntVar(&clickZoom, "click-zoom", -1, "Fly to this zoom on click instead of zooming in one level")
	rootCmd.Flags().StringVar(&baseLayer, "base-layer", "", "Initial base layer name")
	rootCmd.Flags().StringVar(&diagListen, "diag-listen", "", "Address for the diagnostics server")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Log file path")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(tailCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads settings, .env files and BORDERVIEW_* variables, then
// applies command line overrides
func loadConfig() (*config.Config, error) {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyFlags(cfg *config.Config) {
	if country != "" {
		cfg.Target.Country = country
	}
	if mode != "" {
		cfg.Target.Mode = strings.ToLower(mode)
	}
	if datasetURL != "" {
		cfg.Dataset.URL = datasetURL
	}
	if nameProperty != "" {
		cfg.Dataset.NameProperty = nameProperty
	}
	if themeName != "" {
		cfg.Display.Theme = themeName
	}
	if clickZoom >= 0 {
		cfg.Map.ClickZoom = layer.ZoomPolicy{Mode: layer.ZoomFixed, Level: clickZoom}
	}
	if diagListen != "" {
		cfg.Diagnostics.Listen = diagListen
	}
	if logLevel != "" {
		cfg.Diagnostics.LogLevel = logLevel
	}
	if logFile != "" {
		cfg.Diagnostics.LogFile = logFile
	}
	if exportDir != "" {
		absPath, err := filepath.Abs(exportDir)
		if err == nil {
			cfg.Export.Directory = absPath
		} else {
			cfg.Export.Directory = exportDir
		}
	}
}

func printThemes(w io.Writer) {
	fmt.Fprintln(w, "\nAvailable Themes:")
	for _, t := range theme.GetInfo() {
		fmt.Fprintf(w, "  %-15s %-15s - %s\n", t.Key, t.Name, t.Description)
	}
	fmt.Fprintln(w)
}

// diagnostics bundles the event recorder and the optional HTTP server
type diagnostics struct {
	sink   *diag.Recorder
	hub    *ws.Hub
	server *diag.Server
	reg    *prometheus.Registry
}

func newDiagnostics(log *slog.Logger, listen string) *diagnostics {
	d := &diagnostics{reg: prometheus.NewRegistry()}
	metrics := diag.NewMetrics(d.reg)

	var pub diag.Publisher
	if listen != "" {
		d.hub = ws.NewHub()
		pub = d.hub
	}
	d.sink = diag.NewRecorder(log, metrics, pub)
	return d
}

func (d *diagnostics) start(listen string, status diag.StatusFunc) error {
	if d.hub == nil {
		return nil
	}
	d.server = diag.NewServer(d.hub, d.reg, status)
	return d.server.Start(listen)
}

func (d *diagnostics) stop() {
	if d.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = d.server.Shutdown(ctx)
	}
	if d.hub != nil {
		d.hub.Close()
	}
}

func run(cmd *cobra.Command, args []string) error {
	if listThemes {
		printThemes(cmd.OutOrStdout())
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, closer, err := logging.Setup(cfg.Diagnostics.LogFile, cfg.Diagnostics.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	fetcher, err := geo.NewFetcher(cfg.Dataset.URL)
	if err != nil {
		return err
	}

	d := newDiagnostics(log, cfg.Diagnostics.Listen)
	defer d.stop()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	model := app.NewModel(app.Options{
		Config:  cfg,
		Fetcher: fetcher,
		Sink:    d.sink,
		Logger:  log,
		Context: ctx,
		Persist: true,
	})
	if baseLayer != "" && !model.Map().SelectBaseLayerByName(baseLayer) {
		return fmt.Errorf("unknown base layer %q", baseLayer)
	}

	loader := model.Loader()
	session := d.sink.Session()
	status := func() any {
		return struct {
			Session string `json:"session"`
			boundary.Snapshot
		}{session, loader.Snapshot()}
	}
	if err := d.start(cfg.Diagnostics.Listen, status); err != nil {
		return fmt.Errorf("diagnostics server: %w", err)
	}

	t := theme.Get(cfg.Display.Theme)
	fmt.Fprintf(cmd.OutOrStdout(), "  borderview: %s\n", cfg.Session().Describe())
	fmt.Fprintf(cmd.OutOrStdout(), "  Theme: %s\n", t.Name)
	if d.server != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "  Diagnostics: http://%s/status\n", d.server.Addr())
	}
	log.Info("starting", "target", cfg.Session().Describe(), "dataset", cfg.Dataset.URL)

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n  Settings saved.\n\n")
	return nil
}
