package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/borderview/borderview-go/internal/diag"
	"github.com/borderview/borderview-go/internal/testutil"
	"github.com/borderview/borderview-go/internal/ws"
)

// syncBuffer is a bytes.Buffer safe for one writer and one reader
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestEventsURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"127.0.0.1:9180", "ws://127.0.0.1:9180/events"},
		{"http://localhost:9180/", "ws://localhost:9180/events"},
		{"https://diag.example.com", "wss://diag.example.com/events"},
		{"ws://host:1/events", "ws://host:1/events"},
	}

	for _, tt := range tests {
		if got := eventsURL(tt.addr); got != tt.want {
			t.Errorf("eventsURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestFormatMessage(t *testing.T) {
	e := diag.Event{
		Type:    diag.EventClick,
		Time:    time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
		Feature: "India",
		Lat:     20.5,
		Lon:     78.9,
	}
	data, _ := json.Marshal(e)
	msg := ws.Message{Type: "click", Data: data}

	line := formatMessage(msg, false)
	if !strings.Contains(line, "12:30:00 click") || !strings.Contains(line, "India") {
		t.Errorf("Unexpected line %q", line)
	}

	raw := formatMessage(msg, true)
	if !strings.HasPrefix(raw, "click {") {
		t.Errorf("Expected raw JSON, got %q", raw)
	}

	odd := formatMessage(ws.Message{Type: "other", Data: json.RawMessage(`[1,2]`)}, false)
	if odd != "other [1,2]" {
		t.Errorf("Expected fallback formatting, got %q", odd)
	}
}

func TestFeatureFilter(t *testing.T) {
	click := ws.Message{Type: "click", Data: json.RawMessage(`{"type":"click","feature":"United Kingdom","lat":1,"lon":2}`)}
	load := ws.Message{Type: "load", Data: json.RawMessage(`{"type":"load","state":"rendered"}`)}

	tests := []struct {
		name     string
		msg      ws.Message
		patterns []string
		want     bool
	}{
		{"no filter", click, nil, true},
		{"exact", click, []string{"Nepal", "united kingdom"}, true},
		{"glob", click, []string{"United *"}, true},
		{"no match", click, []string{"Nepal", "Uni?"}, false},
		{"featureless passes", load, []string{"Nepal"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := newFeatureFilter(tt.patterns)
			if err != nil {
				t.Fatalf("newFeatureFilter failed: %v", err)
			}
			if got := f.match(tt.msg); got != tt.want {
				t.Errorf("match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFollow(t *testing.T) {
	hub := ws.NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	client := ws.NewClient(eventsURL(srv.URL), 20*time.Millisecond)
	client.Start()
	defer client.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	var out, errOut syncBuffer
	done := make(chan error, 1)
	filter, _ := newFeatureFilter([]string{"Nepal"})
	go func() { done <- follow(ctx, client, filter, &out, &errOut) }()

	if err := testutil.WaitForCondition(func() bool { return hub.ClientCount() == 1 }, 2*time.Second); err != nil {
		t.Fatal("client never subscribed")
	}

	rec := diag.NewRecorder(nil, nil, hub)
	rec.Emit(diag.Event{Type: diag.EventClick, Feature: "India"})
	rec.Emit(diag.Event{Type: diag.EventLoad, State: "rendered", Features: 1})

	if err := testutil.WaitForCondition(func() bool { return strings.Contains(out.String(), "load") }, 2*time.Second); err != nil {
		t.Fatalf("event not printed, got %q", out.String())
	}
	if !strings.Contains(out.String(), "rendered features=1") {
		t.Errorf("Unexpected output %q", out.String())
	}
	if strings.Contains(out.String(), "India") {
		t.Errorf("Expected filtered click to be dropped, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "[connected]") {
		t.Errorf("Expected state change on stderr, got %q", errOut.String())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("follow returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("follow did not stop")
	}
}
