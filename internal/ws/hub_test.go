package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/borderview/borderview-go/internal/testutil"
)

type clickPayload struct {
	Feature string  `json:"feature"`
	Lat     float64 `json:"lat"`
}

func startHub(t *testing.T) (*Hub, string, func()) {
	t.Helper()
	hub := NewHub()
	srv := httptest.NewServer(hub)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	return hub, url, func() {
		hub.Close()
		srv.Close()
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg := <-c.Messages():
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for message")
	}
	return Message{}
}

func TestHubBroadcast(t *testing.T) {
	hub, url, cleanup := startHub(t)
	defer cleanup()

	a := NewClient(url, 20*time.Millisecond)
	b := NewClient(url, 20*time.Millisecond)
	a.Start()
	b.Start()
	defer a.Stop()
	defer b.Stop()

	if err := testutil.WaitForCondition(func() bool { return hub.ClientCount() == 2 }, 2*time.Second); err != nil {
		t.Fatalf("Expected 2 subscribers, got %d", hub.ClientCount())
	}

	if err := hub.Publish("click", clickPayload{Feature: "India", Lat: 20.5}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		if msg.Type != "click" {
			t.Errorf("Expected click, got %s", msg.Type)
		}
		var p clickPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			t.Fatalf("Bad payload: %v", err)
		}
		if p.Feature != "India" || p.Lat != 20.5 {
			t.Errorf("Unexpected payload %+v", p)
		}
	}
}

func TestHubTopicFilter(t *testing.T) {
	hub, url, cleanup := startHub(t)
	defer cleanup()

	c := NewClient(url, 20*time.Millisecond, "load")
	c.Start()
	defer c.Stop()

	if err := testutil.WaitForCondition(func() bool { return hub.ClientCount() == 1 }, 2*time.Second); err != nil {
		t.Fatal("Expected subscriber")
	}
	// Give the subscription request time to arrive
	time.Sleep(50 * time.Millisecond)

	hub.Publish("click", clickPayload{Feature: "Nepal"})
	hub.Publish("load", map[string]string{"state": "rendered"})

	msg := receive(t, c)
	if msg.Type != "load" {
		t.Errorf("Expected only load messages, got %s", msg.Type)
	}
}

func TestHubClientLeaves(t *testing.T) {
	hub, url, cleanup := startHub(t)
	defer cleanup()

	c := NewClient(url, time.Hour)
	c.Start()
	if err := testutil.WaitForCondition(func() bool { return hub.ClientCount() == 1 }, 2*time.Second); err != nil {
		t.Fatal("Expected subscriber")
	}

	c.Stop()
	if err := testutil.WaitForCondition(func() bool { return hub.ClientCount() == 0 }, 2*time.Second); err != nil {
		t.Errorf("Expected subscriber to be removed, got %d", hub.ClientCount())
	}
}

func TestHubPublishWithoutClients(t *testing.T) {
	hub := NewHub()
	if err := hub.Publish("click", clickPayload{}); err != nil {
		t.Errorf("Expected publish without subscribers to succeed, got %v", err)
	}
}

func TestHubPublishAfterClose(t *testing.T) {
	hub := NewHub()
	hub.Close()
	if err := hub.Publish("click", clickPayload{}); err != ErrHubClosed {
		t.Errorf("Expected ErrHubClosed, got %v", err)
	}
}

func TestHubPublishUnencodable(t *testing.T) {
	hub := NewHub()
	if err := hub.Publish("click", make(chan int)); err == nil {
		t.Error("Expected encode error")
	}
}
