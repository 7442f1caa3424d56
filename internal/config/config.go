// Package config handles configuration loading, saving, and defaults for borderview
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/borderview/borderview-go/internal/boundary"
	"github.com/borderview/borderview-go/internal/geo"
	"github.com/borderview/borderview-go/internal/layer"
	"github.com/borderview/borderview-go/internal/logging"
	"github.com/borderview/borderview-go/internal/mapview"
	"github.com/borderview/borderview-go/internal/style"
	"github.com/borderview/borderview-go/internal/theme"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/paulmach/orb"
)

// Config directories and files
var (
	ConfigDir  string
	ConfigFile string
	LogFile    string
)

func init() {
	homeDir, _ := os.UserHomeDir()
	ConfigDir = filepath.Join(homeDir, ".config", "borderview")
	ConfigFile = filepath.Join(ConfigDir, "settings.json")
	LogFile = filepath.Join(ConfigDir, "borderview.log")
}

// Environment variables read by ApplyEnv
const (
	EnvDatasetURL   = "BORDERVIEW_DATASET_URL"
	EnvNameProperty = "BORDERVIEW_NAME_PROPERTY"
	EnvCountry      = "BORDERVIEW_COUNTRY"
	EnvMode         = "BORDERVIEW_MODE"
	EnvTheme        = "BORDERVIEW_THEME"
	EnvDiagListen   = "BORDERVIEW_DIAG_LISTEN"
	EnvLogLevel     = "BORDERVIEW_LOG_LEVEL"
)

const maxRecentCountries = 10

// DatasetSettings locates the boundary dataset
type DatasetSettings struct {
	URL          string `json:"url"`
	NameProperty string `json:"name_property"`
}

// TargetSettings names the country and how it is shown
type TargetSettings struct {
	Country string `json:"country"`
	Mode    string `json:"mode"`
}

// StyleSettings holds the four boundary styles
type StyleSettings struct {
	Default    style.Style `json:"default"`
	Highlight  style.Style `json:"highlight"`
	Emphasis   style.Style `json:"emphasis"`
	Background style.Style `json:"background"`
}

// MapSettings contains the initial view and zoom behaviour
type MapSettings struct {
	CenterLat       float64          `json:"center_lat"`
	CenterLon       float64          `json:"center_lon"`
	Zoom            int              `json:"zoom"`
	MinZoom         int              `json:"min_zoom"`
	MaxZoom         int              `json:"max_zoom"`
	ClickZoom       layer.ZoomPolicy `json:"click_zoom"`
	OverlayName     string           `json:"overlay_name"`
	ShowZoomControl bool             `json:"show_zoom_control"`
}

// DisplaySettings contains UI display options
type DisplaySettings struct {
	Theme            string `json:"theme"`
	ShowLayerControl bool   `json:"show_layer_control"`
	ShowCoordinates  bool   `json:"show_coordinates"`
}

// DiagnosticsSettings configures the log file and the diagnostics server
type DiagnosticsSettings struct {
	Listen   string `json:"listen"`
	LogFile  string `json:"log_file"`
	LogLevel string `json:"log_level"`
}

// ExportSettings contains export options
type ExportSettings struct {
	Directory string `json:"directory"`
}

// Config is the main configuration container
type Config struct {
	Dataset         DatasetSettings     `json:"dataset"`
	Target          TargetSettings      `json:"target"`
	Styles          StyleSettings       `json:"styles"`
	Map             MapSettings         `json:"map"`
	BaseLayers      []mapview.BaseLayer `json:"base_layers"`
	Display         DisplaySettings     `json:"display"`
	Diagnostics     DiagnosticsSettings `json:"diagnostics"`
	Export          ExportSettings      `json:"export"`
	RecentCountries []string            `json:"recent_countries"`
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		Dataset: DatasetSettings{
			URL:          geo.DefaultDatasetURL,
			NameProperty: geo.DefaultNameProperty,
		},
		Target: TargetSettings{
			Country: "India",
			Mode:    string(boundary.ModeSingle),
		},
		Styles: StyleSettings{
			Default:    style.Default,
			Highlight:  style.Highlight,
			Emphasis:   style.Emphasis,
			Background: style.Background,
		},
		Map: MapSettings{
			CenterLat:       20,
			CenterLon:       0,
			Zoom:            2,
			MinZoom:         mapview.DefaultMinZoom,
			MaxZoom:         mapview.DefaultMaxZoom,
			ClickZoom:       layer.ZoomPolicy{Mode: layer.ZoomIncrement},
			OverlayName:     boundary.DefaultOverlayName,
			ShowZoomControl: true,
		},
		BaseLayers: mapview.DefaultBaseLayers(),
		Display: DisplaySettings{
			Theme:            theme.DefaultName,
			ShowLayerControl: true,
			ShowCoordinates:  true,
		},
		Diagnostics: DiagnosticsSettings{
			Listen:   "",
			LogFile:  LogFile,
			LogLevel: "info",
		},
		Export: ExportSettings{
			Directory: "",
		},
		RecentCountries: []string{},
	}
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	return os.MkdirAll(ConfigDir, 0755)
}

// Load loads configuration from file or returns defaults
func Load() (*Config, error) {
	if _, err := os.Stat(ConfigFile); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(ConfigFile)
	if err != nil {
		return DefaultConfig(), nil
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return DefaultConfig(), nil
	}

	return config, nil
}

// LoadEnvFiles reads .env files from the working directory and the config
// directory into the process environment. Variables already set win, and
// missing files are skipped.
func LoadEnvFiles() {
	for _, path := range []string{".env", filepath.Join(ConfigDir, ".env")} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
		}
	}
}

// ApplyEnv overrides settings from BORDERVIEW_* environment variables
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDatasetURL); v != "" {
		c.Dataset.URL = v
	}
	if v := os.Getenv(EnvNameProperty); v != "" {
		c.Dataset.NameProperty = v
	}
	if v := os.Getenv(EnvCountry); v != "" {
		c.Target.Country = v
	}
	if v := os.Getenv(EnvMode); v != "" {
		c.Target.Mode = strings.ToLower(v)
	}
	if v := os.Getenv(EnvTheme); v != "" {
		c.Display.Theme = v
	}
	if v := os.Getenv(EnvDiagListen); v != "" {
		c.Diagnostics.Listen = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Diagnostics.LogLevel = v
	}
}

// Validate reports every problem with the configuration at once
func (c *Config) Validate() error {
	var result *multierror.Error

	if strings.TrimSpace(c.Dataset.URL) == "" {
		result = multierror.Append(result, fmt.Errorf("dataset url is empty"))
	}

	mode, err := boundary.ParseMode(c.Target.Mode)
	if err != nil {
		result = multierror.Append(result, err)
	} else if mode != boundary.ModeAll && strings.TrimSpace(c.Target.Country) == "" {
		result = multierror.Append(result, fmt.Errorf("target country is required in %s mode", mode))
	}

	styles := []struct {
		name string
		s    style.Style
	}{
		{"styles.default", c.Styles.Default},
		{"styles.highlight", c.Styles.Highlight},
		{"styles.emphasis", c.Styles.Emphasis},
		{"styles.background", c.Styles.Background},
	}
	for _, st := range styles {
		if err := st.s.Validate(); err != nil {
			result = multierror.Append(result, multierror.Prefix(err, st.name+":"))
		}
	}

	m := c.Map
	if m.MinZoom < 0 || m.MinZoom > m.MaxZoom {
		result = multierror.Append(result, fmt.Errorf("zoom range %d..%d is invalid", m.MinZoom, m.MaxZoom))
	}
	if m.CenterLat < -90 || m.CenterLat > 90 {
		result = multierror.Append(result, fmt.Errorf("center latitude %v is out of range", m.CenterLat))
	}
	switch m.ClickZoom.Mode {
	case layer.ZoomIncrement:
	case layer.ZoomFixed:
		if m.ClickZoom.Level < m.MinZoom || m.ClickZoom.Level > m.MaxZoom {
			result = multierror.Append(result, fmt.Errorf("click zoom level %d is outside %d..%d", m.ClickZoom.Level, m.MinZoom, m.MaxZoom))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unknown click zoom mode %q", m.ClickZoom.Mode))
	}

	if len(c.BaseLayers) == 0 {
		result = multierror.Append(result, fmt.Errorf("no base layers configured"))
	}
	for i, b := range c.BaseLayers {
		if !mapview.ValidKind(b.Kind) {
			result = multierror.Append(result, fmt.Errorf("base layer %d (%s): unknown kind %q", i, b.Name, b.Kind))
		}
	}

	if !theme.Exists(c.Display.Theme) {
		result = multierror.Append(result, fmt.Errorf("unknown theme %q", c.Display.Theme))
	}
	if _, err := logging.ParseLevel(c.Diagnostics.LogLevel); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

// Session builds the boundary session described by the configuration
func (c *Config) Session() boundary.Session {
	return boundary.Session{
		Country:      c.Target.Country,
		Mode:         boundary.Mode(c.Target.Mode),
		NameProperty: c.Dataset.NameProperty,
		OverlayName:  c.Map.OverlayName,
		Styles: boundary.Styles{
			Default:    c.Styles.Default,
			Highlight:  c.Styles.Highlight,
			Emphasis:   c.Styles.Emphasis,
			Background: c.Styles.Background,
		},
		ZoomPolicy: c.Map.ClickZoom,
	}
}

// MapOptions returns the map construction options for the configuration
func (c *Config) MapOptions(t *theme.Theme) mapview.Options {
	return mapview.Options{
		Center:          orb.Point{c.Map.CenterLon, c.Map.CenterLat},
		Zoom:            c.Map.Zoom,
		MinZoom:         c.Map.MinZoom,
		MaxZoom:         c.Map.MaxZoom,
		BaseLayers:      c.BaseLayers,
		ShowZoomControl: c.Map.ShowZoomControl,
		Theme:           t,
	}
}

// AddRecentCountry moves name to the front of the recent list
func (c *Config) AddRecentCountry(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	recent := []string{name}
	for _, r := range c.RecentCountries {
		if r != name && len(recent) < maxRecentCountries {
			recent = append(recent, r)
		}
	}
	c.RecentCountries = recent
}

// Save saves configuration to file
func Save(config *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(ConfigFile, data, 0644)
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	return ConfigFile
}
