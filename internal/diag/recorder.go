package diag

import (
	"log/slog"
	"time"

	"github.com/gofrs/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Publisher broadcasts a value under a topic
type Publisher interface {
	Publish(topic string, v any) error
}

// Metrics are the prometheus collectors fed by a Recorder
type Metrics struct {
	Clicks           *prometheus.CounterVec
	Hovers           *prometheus.CounterVec
	LoadDuration     prometheus.Histogram
	FeaturesRendered prometheus.Gauge
	LoadState        *prometheus.GaugeVec
}

// loadStates are the values of the load_state gauge label
var loadStates = []string{"idle", "fetching", "rendered", "not_found", "fetch_failed"}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Clicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "borderview",
			Name:      "clicks_total",
			Help:      "Clicks on boundary features.",
		}, []string{"feature"}),
		Hovers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "borderview",
			Name:      "hover_total",
			Help:      "Pointer entries into boundary features.",
		}, []string{"feature"}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "borderview",
			Name:      "load_duration_seconds",
			Help:      "Time from fetch start to a terminal load state.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FeaturesRendered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "borderview",
			Name:      "features_rendered",
			Help:      "Features in the rendered boundary layer.",
		}),
		LoadState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "borderview",
			Name:      "load_state",
			Help:      "1 for the current boundary loader state, 0 otherwise.",
		}, []string{"state"}),
	}
	if reg != nil {
		reg.MustRegister(m.Clicks, m.Hovers, m.LoadDuration, m.FeaturesRendered, m.LoadState)
	}
	m.setState("idle")
	return m
}

func (m *Metrics) setState(state string) {
	for _, s := range loadStates {
		v := 0.0
		if s == state {
			v = 1
		}
		m.LoadState.WithLabelValues(s).Set(v)
	}
}

// Recorder is the Sink used by the application: every event is logged,
// counted and published.
type Recorder struct {
	log       *slog.Logger
	metrics   *Metrics
	publisher Publisher
	session   string
}

// NewRecorder creates a recorder with a fresh session id. Any collaborator
// may be nil.
func NewRecorder(log *slog.Logger, metrics *Metrics, publisher Publisher) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	session := NewSessionID()
	return &Recorder{
		log:       log.With("component", "diag", "session", session),
		metrics:   metrics,
		publisher: publisher,
		session:   session,
	}
}

// NewSessionID returns a random identifier for one viewer run
func NewSessionID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return "unknown"
	}
	return id.String()
}

// Session returns the id stamped on every event
func (r *Recorder) Session() string {
	return r.session
}

// Emit records e
func (r *Recorder) Emit(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	if e.Session == "" {
		e.Session = r.session
	}

	switch e.Type {
	case EventClick:
		r.log.Info("clicked", "feature", e.Feature, "lat", e.Lat, "lon", e.Lon)
		if r.metrics != nil {
			r.metrics.Clicks.WithLabelValues(e.Feature).Inc()
		}
	case EventHoverEnter:
		r.log.Debug("hover enter", "feature", e.Feature)
		if r.metrics != nil {
			r.metrics.Hovers.WithLabelValues(e.Feature).Inc()
		}
	case EventHoverExit:
		r.log.Debug("hover exit", "feature", e.Feature)
	case EventLoad:
		r.log.Info("load state", "state", e.State, "features", e.Features, "message", e.Message)
		if r.metrics != nil {
			r.metrics.setState(e.State)
			if e.State != "fetching" {
				r.metrics.LoadDuration.Observe(e.DurationMS / 1000)
				r.metrics.FeaturesRendered.Set(float64(e.Features))
			}
		}
	}

	if r.publisher != nil {
		if err := r.publisher.Publish(string(e.Type), e); err != nil {
			r.log.Debug("publish failed", "error", err)
		}
	}
}
