package diag

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusFunc returns the current status document
type StatusFunc func() any

// Server exposes diagnostics over HTTP: the event socket, prometheus metrics
// and the loader status.
type Server struct {
	router   *mux.Router
	http     *http.Server
	listener net.Listener
	log      *slog.Logger
}

// NewServer builds the router. events may be nil to disable the socket.
func NewServer(events http.Handler, gatherer prometheus.Gatherer, status StatusFunc) *Server {
	r := mux.NewRouter()
	if events != nil {
		r.Handle("/events", events)
	}
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	r.HandleFunc("/status", func(w http.ResponseWriter, req *http.Request) {
		var doc any = map[string]string{"state": "unknown"}
		if status != nil {
			doc = status()
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(doc)
	}).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)

	return &Server{
		router: r,
		log:    slog.Default().With("component", "diag"),
	}
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr and serves in the background. Use ":0" for a random
// port and Addr to find it.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.http = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("diagnostics server stopped", "error", err)
		}
	}()
	s.log.Info("diagnostics listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the listening address, empty before Start
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
