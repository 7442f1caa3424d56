package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 64
)

// ErrHubClosed is returned when publishing to a closed hub
var ErrHubClosed = errors.New("websocket hub closed")

type subscriber struct {
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once

	mu     sync.RWMutex
	topics map[string]bool
}

func (s *subscriber) wants(topic string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.topics) == 0 || s.topics[topic]
}

func (s *subscriber) subscribe(topics []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics = make(map[string]bool, len(topics))
	for _, t := range topics {
		s.topics[t] = true
	}
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.send)
	})
}

// Hub accepts WebSocket subscribers and broadcasts messages to them. Slow
// subscribers lose messages instead of blocking the publisher.
type Hub struct {
	upgrader websocket.Upgrader
	log      *slog.Logger

	mu      sync.RWMutex
	clients map[*subscriber]struct{}
	closed  bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:     slog.Default().With("component", "ws"),
		clients: make(map[*subscriber]struct{}),
	}
}

// ServeHTTP upgrades the request and serves the subscriber until it goes away
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", "error", err)
		return
	}

	sub := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.register(sub) {
		conn.Close()
		return
	}
	h.log.Debug("subscriber connected", "remote", r.RemoteAddr)

	go h.writeLoop(sub)
	h.readLoop(sub)
}

func (h *Hub) register(sub *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[sub] = struct{}{}
	return true
}

func (h *Hub) unregister(sub *subscriber) {
	h.mu.Lock()
	delete(h.clients, sub)
	h.mu.Unlock()
	sub.close()
}

func (h *Hub) readLoop(sub *subscriber) {
	defer func() {
		h.unregister(sub)
		sub.conn.Close()
	}()

	for {
		_, data, err := sub.conn.ReadMessage()
		if err != nil {
			return
		}
		var req subscribeRequest
		if err := json.Unmarshal(data, &req); err != nil {
			continue
		}
		if req.Action == "subscribe" {
			sub.subscribe(req.Topics)
		}
	}
}

func (h *Hub) writeLoop(sub *subscriber) {
	for data := range sub.send {
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			sub.conn.Close()
			return
		}
	}
	sub.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

// Publish sends v as a message of type topic to every interested subscriber
func (h *Hub) Publish(topic string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", topic, err)
	}
	frame, err := json.Marshal(Message{Type: topic, Data: data})
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrHubClosed
	}
	for sub := range h.clients {
		if !sub.wants(topic) {
			continue
		}
		select {
		case sub.send <- frame:
		default:
			// Subscriber too slow, drop
		}
	}
	return nil
}

// ClientCount returns the number of connected subscribers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every subscriber and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[*subscriber]struct{})
	h.mu.Unlock()

	for sub := range clients {
		sub.close()
	}
}
