// Package ws carries borderview diagnostic events over WebSocket: a hub that
// broadcasts to subscribers and a reconnecting client that follows a hub.
package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message is the envelope of everything sent over the socket
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// subscribeRequest asks the hub to only forward some message types
type subscribeRequest struct {
	Action string   `json:"action"`
	Topics []string `json:"topics"`
}

// ClientState represents the connection state
type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
)

func (s ClientState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	}
	return "disconnected"
}

// Client follows a hub, reconnecting after failures until stopped
type Client struct {
	url            string
	topics         []string
	reconnectDelay time.Duration
	state          ClientState
	mu             sync.RWMutex
	stopCh         chan struct{}
	stopOnce       sync.Once
	msgCh          chan Message
	stateCh        chan ClientState
}

// NewClient creates a client for the hub at url. With no topics every message
// type is received.
func NewClient(url string, reconnectDelay time.Duration, topics ...string) *Client {
	return &Client{
		url:            url,
		topics:         topics,
		reconnectDelay: reconnectDelay,
		state:          StateDisconnected,
		stopCh:         make(chan struct{}),
		msgCh:          make(chan Message, 100),
		stateCh:        make(chan ClientState, 8),
	}
}

// State returns the current connection state
func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsConnected returns true if the client is connected
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Messages returns the channel of received messages
func (c *Client) Messages() <-chan Message {
	return c.msgCh
}

// StateChanges returns the channel of connection state changes. Changes are
// dropped when nobody reads them.
func (c *Client) StateChanges() <-chan ClientState {
	return c.stateCh
}

// Start begins the connection goroutine
func (c *Client) Start() {
	go c.runConnection()
}

// Stop ends the connection goroutine. It is safe to call more than once.
func (c *Client) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

func (c *Client) setState(state ClientState) {
	c.mu.Lock()
	changed := c.state != state
	c.state = state
	c.mu.Unlock()

	if changed {
		select {
		case c.stateCh <- state:
		default:
		}
	}
}

func (c *Client) runConnection() {
	for {
		select {
		case <-c.stopCh:
			c.setState(StateDisconnected)
			return
		default:
		}

		c.setState(StateConnecting)

		dialer := websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		}

		conn, _, err := dialer.Dial(c.url, nil)
		if err != nil {
			c.setState(StateDisconnected)
			select {
			case <-c.stopCh:
				return
			case <-time.After(c.reconnectDelay):
				continue
			}
		}

		if len(c.topics) > 0 {
			if err := conn.WriteJSON(subscribeRequest{Action: "subscribe", Topics: c.topics}); err != nil {
				conn.Close()
				continue
			}
		}

		c.setState(StateConnected)

		// Close the connection when stopped so the read below returns
		done := make(chan struct{})
		go func() {
			select {
			case <-c.stopCh:
				conn.Close()
			case <-done:
			}
		}()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				conn.Close()
				c.setState(StateDisconnected)
				break
			}

			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}

			select {
			case c.msgCh <- msg:
			default:
				// Channel full, skip message
			}
		}
		close(done)

		// Wait before reconnecting
		select {
		case <-c.stopCh:
			return
		case <-time.After(c.reconnectDelay):
		}
	}
}
