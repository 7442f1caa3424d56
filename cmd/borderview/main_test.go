package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/borderview/borderview-go/internal/boundary"
	"github.com/borderview/borderview-go/internal/config"
	"github.com/borderview/borderview-go/internal/layer"
	"github.com/borderview/borderview-go/internal/testutil"
	"github.com/spf13/cobra"
)

// executeCommand runs a cobra command with the given arguments and returns the output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err = root.Execute()
	return buf.String(), err
}

// resetFlags restores flag variables; cobra keeps values between Execute calls
func resetFlags() {
	country, mode, datasetURL, nameProperty = "", "", "", ""
	themeName, exportDir, baseLayer = "", "", ""
	diagListen, logLevel, logFile = "", "", ""
	listThemes = false
	clickZoom = -1
	checkOutput = "text"
	checkTimeout = 0
	tailAddr, tailTopics, tailRaw, tailRetry = "127.0.0.1:9180", nil, false, 2*time.Second
	tailFeatures = nil
}

// isolateConfig points the config package at a temp directory
func isolateConfig(t *testing.T) {
	t.Helper()
	origDir, origFile := config.ConfigDir, config.ConfigFile
	t.Cleanup(func() {
		config.ConfigDir, config.ConfigFile = origDir, origFile
	})
	config.ConfigDir = t.TempDir()
	config.ConfigFile = filepath.Join(config.ConfigDir, "settings.json")
}

func TestListThemes(t *testing.T) {
	resetFlags()
	defer resetFlags()

	output, err := executeCommand(rootCmd, "--list-themes")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(output, "Available Themes:") {
		t.Errorf("Expected header, got %q", output)
	}
	if !strings.Contains(output, "midnight") {
		t.Errorf("Expected default theme listed, got %q", output)
	}
}

func TestApplyFlags(t *testing.T) {
	resetFlags()
	defer resetFlags()

	country = "Nepal"
	mode = "HIGHLIGHT"
	datasetURL = "https://example.com/world.geojson"
	nameProperty = "ADMIN"
	themeName = "paper"
	clickZoom = 6
	diagListen = "127.0.0.1:0"
	logLevel = "debug"
	logFile = "/tmp/bv.log"
	exportDir = "exports"

	cfg := config.DefaultConfig()
	applyFlags(cfg)

	if cfg.Target.Country != "Nepal" {
		t.Errorf("Expected country Nepal, got %q", cfg.Target.Country)
	}
	if cfg.Target.Mode != "highlight" {
		t.Errorf("Expected mode lowercased, got %q", cfg.Target.Mode)
	}
	if cfg.Dataset.URL != datasetURL || cfg.Dataset.NameProperty != "ADMIN" {
		t.Errorf("Unexpected dataset %+v", cfg.Dataset)
	}
	if cfg.Display.Theme != "paper" {
		t.Errorf("Expected theme paper, got %q", cfg.Display.Theme)
	}
	want := layer.ZoomPolicy{Mode: layer.ZoomFixed, Level: 6}
	if cfg.Map.ClickZoom != want {
		t.Errorf("Expected %+v, got %+v", want, cfg.Map.ClickZoom)
	}
	if cfg.Diagnostics.Listen != "127.0.0.1:0" || cfg.Diagnostics.LogLevel != "debug" || cfg.Diagnostics.LogFile != "/tmp/bv.log" {
		t.Errorf("Unexpected diagnostics %+v", cfg.Diagnostics)
	}
	if !filepath.IsAbs(cfg.Export.Directory) {
		t.Errorf("Expected absolute export dir, got %q", cfg.Export.Directory)
	}
}

func TestApplyFlags_NoOverrides(t *testing.T) {
	resetFlags()

	cfg := config.DefaultConfig()
	applyFlags(cfg)

	def := config.DefaultConfig()
	if cfg.Target != def.Target || cfg.Dataset != def.Dataset || cfg.Map.ClickZoom != def.Map.ClickZoom {
		t.Error("Expected unset flags to leave the config alone")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	isolateConfig(t)
	resetFlags()
	defer resetFlags()

	mode = "sideways"
	if _, err := loadConfig(); err == nil {
		t.Fatal("Expected error for unknown mode")
	} else if !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestCheck_Rendered(t *testing.T) {
	isolateConfig(t)
	resetFlags()
	defer resetFlags()

	srv := testutil.NewWorldServer()
	defer srv.Close()

	output, err := executeCommand(rootCmd, "check", "--country", "India", "--dataset", srv.URL())
	if err != nil {
		t.Fatalf("Expected no error, got %v\n%s", err, output)
	}
	for _, want := range []string{"State:    rendered", "Features: 1", "India (single)", "Extent:   "} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output:\n%s", want, output)
		}
	}
	if srv.Requests() != 1 {
		t.Errorf("Expected 1 request, got %d", srv.Requests())
	}
}

func TestCheck_NotFound(t *testing.T) {
	isolateConfig(t)
	resetFlags()
	defer resetFlags()

	srv := testutil.NewWorldServer()
	defer srv.Close()

	output, err := executeCommand(rootCmd, "check", "--country", "Atlantis", "--dataset", srv.URL())
	if err == nil {
		t.Fatal("Expected error for missing country")
	}
	if !strings.Contains(output, "State:    not_found") {
		t.Errorf("Expected not_found state in output:\n%s", output)
	}
}

func TestCheck_FetchFailed(t *testing.T) {
	isolateConfig(t)
	resetFlags()
	defer resetFlags()

	srv := testutil.NewWorldServer()
	defer srv.Close()
	srv.SetMode(testutil.DatasetError)

	output, err := executeCommand(rootCmd, "check", "--dataset", srv.URL())
	if err == nil {
		t.Fatal("Expected error for failed fetch")
	}
	if !strings.Contains(output, "fetch_failed") {
		t.Errorf("Expected fetch_failed in output:\n%s", output)
	}
}

func TestCheck_NoDefaultTimeout(t *testing.T) {
	isolateConfig(t)
	resetFlags()
	defer resetFlags()

	if def := checkCmd.Flags().Lookup("timeout").DefValue; def != "0s" {
		t.Errorf("Expected no default timeout, got %s", def)
	}

	srv := testutil.NewWorldServer()
	defer srv.Close()
	srv.SetDelay(200 * time.Millisecond)

	output, err := executeCommand(rootCmd, "check", "--country", "India", "--dataset", srv.URL())
	if err != nil {
		t.Fatalf("Expected slow dataset to load, got %v\n%s", err, output)
	}
	if !strings.Contains(output, "State:    rendered") {
		t.Errorf("Expected rendered state in output:\n%s", output)
	}
}

func TestCheck_Timeout(t *testing.T) {
	isolateConfig(t)
	resetFlags()
	defer resetFlags()

	srv := testutil.NewWorldServer()
	defer srv.Close()
	srv.SetDelay(2 * time.Second)

	output, err := executeCommand(rootCmd, "check", "--timeout", "50ms", "--dataset", srv.URL())
	if err == nil {
		t.Fatal("Expected error when the timeout expires")
	}
	if !strings.Contains(output, "fetch_failed") {
		t.Errorf("Expected fetch_failed in output:\n%s", output)
	}
}

func TestCheck_JSON(t *testing.T) {
	isolateConfig(t)
	resetFlags()
	defer resetFlags()

	srv := testutil.NewWorldServer()
	defer srv.Close()

	output, err := executeCommand(rootCmd, "check", "-o", "json", "--mode", "all", "--dataset", srv.URL())
	if err != nil {
		t.Fatalf("Expected no error, got %v\n%s", err, output)
	}

	var snap boundary.Snapshot
	if err := json.Unmarshal([]byte(output), &snap); err != nil {
		t.Fatalf("Output is not a snapshot: %v\n%s", err, output)
	}
	if snap.State != "rendered" || snap.Mode != "all" {
		t.Errorf("Unexpected snapshot %+v", snap)
	}
	if snap.Features != len(testutil.WorldCollection().Features) {
		t.Errorf("Expected every feature, got %d", snap.Features)
	}
}

func TestCheck_YAML(t *testing.T) {
	isolateConfig(t)
	resetFlags()
	defer resetFlags()

	srv := testutil.NewWorldServer()
	defer srv.Close()

	output, err := executeCommand(rootCmd, "check", "-o", "yaml", "--country", "Nepal", "--dataset", srv.URL())
	if err != nil {
		t.Fatalf("Expected no error, got %v\n%s", err, output)
	}
	for _, want := range []string{"state: rendered", "target: Nepal", "features: 1"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in YAML output:\n%s", want, output)
		}
	}
}

func TestCheck_Suggestions(t *testing.T) {
	isolateConfig(t)
	resetFlags()
	defer resetFlags()

	srv := testutil.NewWorldServer()
	defer srv.Close()

	output, err := executeCommand(rootCmd, "check", "--country", "Brasil", "--dataset", srv.URL())
	if err == nil {
		t.Fatal("Expected error for missing country")
	}
	if !strings.Contains(output, "Did you mean: Brazil") {
		t.Errorf("Expected suggestion in output:\n%s", output)
	}
}

func TestCheck_BadOutput(t *testing.T) {
	resetFlags()
	defer resetFlags()

	if _, err := executeCommand(rootCmd, "check", "-o", "xml"); err == nil {
		t.Error("Expected error for unknown output format")
	}
}

func TestDiagnostics_Disabled(t *testing.T) {
	d := newDiagnostics(nil, "")
	if d.hub != nil {
		t.Error("Expected no hub without a listen address")
	}
	if err := d.start("", nil); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if d.server != nil {
		t.Error("Expected no server without a listen address")
	}
	d.stop()
}

func TestDiagnostics_Server(t *testing.T) {
	d := newDiagnostics(nil, "127.0.0.1:0")
	if err := d.start("127.0.0.1:0", func() any { return map[string]string{"state": "rendered"} }); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer d.stop()

	resp, err := http.Get("http://" + d.server.Addr() + "/status")
	if err != nil {
		t.Fatalf("GET /status failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "rendered") {
		t.Errorf("Unexpected status body %q", body)
	}

	resp, err = http.Get("http://" + d.server.Addr() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ = io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "borderview_load_state") {
		t.Error("Expected borderview metrics to be served")
	}
}
