package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/borderview/borderview-go/internal/boundary"
	"github.com/borderview/borderview-go/internal/config"
	"github.com/borderview/borderview-go/internal/diag"
	"github.com/borderview/borderview-go/internal/geo"
	"github.com/borderview/borderview-go/internal/logging"
	"github.com/ghodss/yaml"
	"github.com/spf13/cobra"
)

var (
	checkOutput  string
	checkTimeout time.Duration
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the boundaries without the interface and report the result",
	Long: `Fetches the dataset, selects the configured country and reports what
would be drawn. Exits non-zero when the country is missing or the dataset
cannot be loaded.

Examples:
  borderview check --country Nepal
  borderview check --mode all -o json`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "text", "Output format: text, json or yaml")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 0, "Give up after this long (0 waits for the dataset)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	switch checkOutput {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", checkOutput)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logging.Console(cfg.Diagnostics.LogLevel)
	if err != nil {
		return err
	}

	fetcher, err := geo.NewFetcher(cfg.Dataset.URL)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if checkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, checkTimeout)
		defer cancel()
	}

	loader := boundary.NewLoader(cfg.Session(), fetcher, nil, nil, diag.NewRecorder(log, nil, nil))
	loader.SetLogger(log.With("component", "boundary"))

	state, runErr := loader.Run(ctx)
	if err := writeCheck(cmd.OutOrStdout(), checkOutput, cfg, loader); err != nil {
		return err
	}

	if state != boundary.Rendered {
		cmd.SilenceUsage = true
		if runErr != nil {
			return runErr
		}
		return fmt.Errorf("load ended in state %s", state)
	}
	return nil
}

func writeCheck(w io.Writer, format string, cfg *config.Config, loader *boundary.Loader) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(loader.Snapshot())
	case "yaml":
		data, err := yaml.Marshal(loader.Snapshot())
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	writeReport(w, cfg, loader)
	return nil
}

func writeReport(w io.Writer, cfg *config.Config, loader *boundary.Loader) {
	fmt.Fprintf(w, "Target:   %s\n", cfg.Session().Describe())
	fmt.Fprintf(w, "Dataset:  %s\n", cfg.Dataset.URL)
	fmt.Fprintf(w, "State:    %s\n", loader.State())

	if loader.Err() != nil {
		snap := loader.Snapshot()
		fmt.Fprintf(w, "Error:    %s\n", snap.Error)
		if len(snap.Suggestions) > 0 {
			fmt.Fprintf(w, "Did you mean: %s\n", strings.Join(snap.Suggestions, ", "))
		}
		return
	}

	l := loader.Layer()
	if l == nil {
		return
	}
	fmt.Fprintf(w, "Features: %d\n", l.Len())
	if b, ok := l.Bounds(); ok {
		width, height := geo.Extent(b)
		fmt.Fprintf(w, "Bounds:   %.4f,%.4f .. %.4f,%.4f\n", b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat())
		fmt.Fprintf(w, "Extent:   %.0f x %.0f km\n", width, height)
	}
}
