// Package testutil provides fixtures and fake servers for borderview tests
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// DatasetMode controls how the mock dataset server answers
type DatasetMode string

const (
	DatasetOK        DatasetMode = "ok"
	DatasetNotFound  DatasetMode = "not_found"
	DatasetError     DatasetMode = "error"
	DatasetMalformed DatasetMode = "malformed"
)

// DatasetServer serves a GeoJSON document over HTTP and records requests
type DatasetServer struct {
	server *httptest.Server

	mu       sync.RWMutex
	mode     DatasetMode
	delay    time.Duration
	body     []byte
	requests int
	accepts  []string
}

// NewDatasetServer starts a server answering with body
func NewDatasetServer(body []byte) *DatasetServer {
	s := &DatasetServer{
		mode: DatasetOK,
		body: body,
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// NewWorldServer starts a server answering with the WorldCollection fixture
func NewWorldServer() *DatasetServer {
	return NewDatasetServer(WorldGeoJSON())
}

// URL returns the dataset URL
func (s *DatasetServer) URL() string {
	return s.server.URL + "/countries.geojson"
}

// Close shuts the server down
func (s *DatasetServer) Close() {
	s.server.Close()
}

// SetMode switches the answer mode
func (s *DatasetServer) SetMode(mode DatasetMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}

// SetDelay holds every answer back by d
func (s *DatasetServer) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// SetBody replaces the served document
func (s *DatasetServer) SetBody(body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.body = body
}

// Requests returns how many requests were served
func (s *DatasetServer) Requests() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requests
}

// AcceptHeaders returns the Accept header of every request
func (s *DatasetServer) AcceptHeaders() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.accepts))
	copy(out, s.accepts)
	return out
}

func (s *DatasetServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests++
	s.accepts = append(s.accepts, r.Header.Get("Accept"))
	mode := s.mode
	body := s.body
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	switch mode {
	case DatasetNotFound:
		http.NotFound(w, r)
	case DatasetError:
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	case DatasetMalformed:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[`))
	default:
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write(body)
	}
}
