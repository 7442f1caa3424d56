package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/borderview/borderview-go/internal/diag"
	"github.com/borderview/borderview-go/internal/ws"
	"github.com/gobwas/glob"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var (
	tailAddr     string
	tailTopics   []string
	tailFeatures []string
	tailRaw      bool
	tailRetry    time.Duration
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow diagnostic events of a running borderview",
	Long: `Connects to the diagnostics socket of a borderview started with
--diag-listen and prints hover, click and load events as they happen.

Examples:
  borderview tail --addr 127.0.0.1:9180
  borderview tail --topic click --topic load
  borderview tail --feature India --feature 'United *'`,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().StringVar(&tailAddr, "addr", "127.0.0.1:9180", "Diagnostics server address")
	tailCmd.Flags().StringSliceVar(&tailTopics, "topic", nil, "Only show these event types (click, hover_enter, hover_exit, load)")
	tailCmd.Flags().StringSliceVar(&tailFeatures, "feature", nil, "Only show events for features matching these glob patterns (case-insensitive)")
	tailCmd.Flags().BoolVar(&tailRaw, "raw", false, "Print raw JSON messages")
	tailCmd.Flags().DurationVar(&tailRetry, "retry", 2*time.Second, "Reconnect delay")
}

// eventsURL turns a host:port or http(s) URL into the events socket URL
func eventsURL(addr string) string {
	switch {
	case strings.HasPrefix(addr, "ws://"), strings.HasPrefix(addr, "wss://"):
		return addr
	case strings.HasPrefix(addr, "http://"):
		addr = "ws://" + strings.TrimPrefix(addr, "http://")
	case strings.HasPrefix(addr, "https://"):
		addr = "wss://" + strings.TrimPrefix(addr, "https://")
	default:
		addr = "ws://" + addr
	}
	return strings.TrimSuffix(addr, "/") + "/events"
}

// formatMessage renders one socket message as a terminal line
func formatMessage(msg ws.Message, raw bool) string {
	if !raw {
		var e diag.Event
		if err := json.Unmarshal(msg.Data, &e); err == nil && e.Type != "" {
			return e.String()
		}
	}
	return fmt.Sprintf("%s %s", msg.Type, string(msg.Data))
}

// featureFilter keeps messages whose feature matches one of its patterns
type featureFilter []glob.Glob

func newFeatureFilter(patterns []string) (featureFilter, error) {
	f := make(featureFilter, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return nil, fmt.Errorf("invalid feature pattern %q: %w", p, err)
		}
		f = append(f, g)
	}
	return f, nil
}

// match reports whether msg passes. Messages without a feature, such as
// load events, always pass.
func (f featureFilter) match(msg ws.Message) bool {
	if len(f) == 0 {
		return true
	}
	name := gjson.GetBytes(msg.Data, "feature")
	if !name.Exists() || name.String() == "" {
		return true
	}
	lower := strings.ToLower(name.String())
	for _, g := range f {
		if g.Match(lower) {
			return true
		}
	}
	return false
}

func runTail(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	filter, err := newFeatureFilter(tailFeatures)
	if err != nil {
		return err
	}

	url := eventsURL(tailAddr)
	client := ws.NewClient(url, tailRetry, tailTopics...)
	client.Start()
	defer client.Stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "Following %s\n", url)
	return follow(ctx, client, filter, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func follow(ctx context.Context, client *ws.Client, filter featureFilter, out, errOut io.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case state := <-client.StateChanges():
			fmt.Fprintf(errOut, "[%s]\n", state)
		case msg, ok := <-client.Messages():
			if !ok {
				return nil
			}
			if !filter.match(msg) {
				continue
			}
			fmt.Fprintln(out, formatMessage(msg, tailRaw))
		}
	}
}
