package boundary

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/borderview/borderview-go/internal/diag"
	"github.com/borderview/borderview-go/internal/geo"
	"github.com/borderview/borderview-go/internal/layer"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// State is the loader lifecycle state
type State int

// Loader states. Rendered, NotFound and FetchFailed are terminal.
const (
	Idle State = iota
	Fetching
	Rendered
	NotFound
	FetchFailed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Rendered:
		return "rendered"
	case NotFound:
		return "not_found"
	case FetchFailed:
		return "fetch_failed"
	}
	return "unknown"
}

// Terminal reports whether no further transition can happen
func (s State) Terminal() bool {
	return s == Rendered || s == NotFound || s == FetchFailed
}

// Surface is the map the loader draws on
type Surface interface {
	layer.Map
	AddOverlay(name string, l *layer.Layer)
	FitBounds(b orb.Bound)
	AddLayerControl(bases, overlays []string)
	BaseLayerNames() []string
}

// StatusIndicator is the transient loading and error message display
type StatusIndicator interface {
	Show(msg string)
	Hide()
}

// Names offered when the target is missing
const maxSuggestions = 3

// FetchResult is the outcome of the single fetch
type FetchResult struct {
	Collection *geojson.FeatureCollection
	Err        error
}

// Snapshot is a point-in-time view of a loader, safe to hand to other goroutines
type Snapshot struct {
	State       string     `json:"state"`
	Target      string     `json:"target"`
	Mode        string     `json:"mode"`
	Features    int        `json:"features"`
	Message     string     `json:"message,omitempty"`
	Error       string     `json:"error,omitempty"`
	Suggestions []string   `json:"suggestions,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	DurationMS  float64    `json:"duration_ms,omitempty"`
}

// Loader drives one boundary load: Idle -> Fetching -> Rendered, NotFound or
// FetchFailed. Surface and status are only touched from Start and Complete, so
// callers running an event loop keep them on that loop and run Fetch elsewhere.
type Loader struct {
	session Session
	fetcher geo.Fetcher
	surface Surface
	status  StatusIndicator
	sink    diag.Sink
	log     *slog.Logger
	now     func() time.Time

	mu       sync.RWMutex
	state    State
	err      error
	layer    *layer.Layer
	binder   *layer.Binder
	features int
	started  time.Time
	finished time.Time
}

// NewLoader creates an idle loader
func NewLoader(session Session, fetcher geo.Fetcher, surface Surface, status StatusIndicator, sink diag.Sink) *Loader {
	if sink == nil {
		sink = diag.Discard
	}
	return &Loader{
		session: session,
		fetcher: fetcher,
		surface: surface,
		status:  status,
		sink:    sink,
		log:     slog.Default().With("component", "boundary"),
		now:     time.Now,
	}
}

// SetLogger replaces the logger
func (l *Loader) SetLogger(log *slog.Logger) {
	if log != nil {
		l.log = log
	}
}

// Session returns the loader's session
func (l *Loader) Session() Session {
	return l.session
}

// Start moves Idle to Fetching and shows the loading message
func (l *Loader) Start() error {
	l.mu.Lock()
	if l.state != Idle {
		l.mu.Unlock()
		return ErrAlreadyStarted
	}
	l.state = Fetching
	l.started = l.now()
	l.mu.Unlock()

	l.log.Info("fetching boundaries", "target", l.session.Describe())
	if l.status != nil {
		l.status.Show(MsgLoading)
	}
	l.sink.Emit(diag.Event{Type: diag.EventLoad, Time: l.started, State: Fetching.String()})
	return nil
}

// Fetch performs the single dataset request. It does not touch loader state
// and may run on any goroutine.
func (l *Loader) Fetch(ctx context.Context) FetchResult {
	if l.fetcher == nil {
		return FetchResult{Err: errors.New("no dataset fetcher configured")}
	}
	fc, err := l.fetcher.Fetch(ctx)
	return FetchResult{Collection: fc, Err: err}
}

// Complete applies a fetch result and returns the terminal state reached. A
// result for a loader that is not fetching is ignored.
func (l *Loader) Complete(res FetchResult) State {
	l.mu.RLock()
	state := l.state
	l.mu.RUnlock()
	if state != Fetching {
		l.log.Warn("ignoring fetch result", "state", state.String())
		return state
	}

	if res.Err != nil || res.Collection == nil {
		cause := res.Err
		if cause == nil {
			cause = errors.New("empty dataset response")
		}
		l.log.Error("boundary fetch failed", "error", cause)
		return l.fail(FetchFailed, &FetchFailure{Err: cause}, MsgFetchFailed)
	}

	sel := l.session.Selection()
	nameProp := l.session.nameProperty()
	features := geo.Select(res.Collection, sel, nameProp)
	if !sel.All && len(features) == 0 {
		l.log.Warn("target country not in dataset", "country", sel.Name, "property", nameProp,
			"features", len(res.Collection.Features))
		return l.fail(NotFound, &TargetNotFound{
			Name:        sel.Name,
			Suggestions: geo.Suggest(res.Collection, sel.Name, nameProp, maxSuggestions),
		}, MsgNotFound)
	}

	lay := layer.New(features, l.session.Resolver(), nameProp)
	binder := layer.NewBinder(lay, l.session.Styles.Highlight, l.surface, l.session.ZoomPolicy, l.sink)

	overlay := l.session.overlayName()
	if l.surface != nil {
		l.surface.AddOverlay(overlay, lay)
		if b, ok := lay.Bounds(); ok {
			l.surface.FitBounds(b)
		}
	}
	if l.status != nil {
		l.status.Hide()
	}
	if l.surface != nil {
		if bases := l.surface.BaseLayerNames(); len(bases) > 1 {
			l.surface.AddLayerControl(bases, []string{overlay})
		}
	}

	l.mu.Lock()
	l.state = Rendered
	l.layer = lay
	l.binder = binder
	l.features = lay.Len()
	l.finished = l.now()
	elapsed := l.finished.Sub(l.started)
	l.mu.Unlock()

	l.log.Info("boundaries rendered", "features", lay.Len(), "took", elapsed)
	l.sink.Emit(diag.Event{
		Type:       diag.EventLoad,
		Time:       l.finished,
		State:      Rendered.String(),
		Features:   lay.Len(),
		DurationMS: float64(elapsed) / float64(time.Millisecond),
	})
	return Rendered
}

// Run starts the loader, fetches and completes in one call
func (l *Loader) Run(ctx context.Context) (State, error) {
	if err := l.Start(); err != nil {
		return l.State(), err
	}
	state := l.Complete(l.Fetch(ctx))
	return state, l.Err()
}

func (l *Loader) fail(to State, err error, msg string) State {
	l.mu.Lock()
	l.state = to
	l.err = err
	l.finished = l.now()
	elapsed := l.finished.Sub(l.started)
	l.mu.Unlock()

	if l.status != nil {
		l.status.Show(msg)
	}
	l.sink.Emit(diag.Event{
		Type:       diag.EventLoad,
		Time:       l.finished,
		State:      to.String(),
		Message:    msg,
		DurationMS: float64(elapsed) / float64(time.Millisecond),
	})
	return to
}

// State returns the current state
func (l *Loader) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Err returns the terminal error, nil unless NotFound or FetchFailed
func (l *Loader) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Layer returns the rendered layer, nil before Rendered
func (l *Loader) Layer() *layer.Layer {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.layer
}

// Binder returns the interaction binder, nil before Rendered
func (l *Loader) Binder() *layer.Binder {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.binder
}

// Snapshot returns the loader status for diagnostics
func (l *Loader) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap := Snapshot{
		State:    l.state.String(),
		Target:   l.session.Country,
		Mode:     string(l.session.Mode),
		Features: l.features,
	}
	if !l.started.IsZero() {
		started := l.started
		snap.StartedAt = &started
	}
	if l.state.Terminal() {
		finished := l.finished
		snap.FinishedAt = &finished
		snap.DurationMS = float64(l.finished.Sub(l.started)) / float64(time.Millisecond)
	}
	switch l.state {
	case Fetching:
		snap.Message = MsgLoading
	case NotFound:
		snap.Message = MsgNotFound
	case FetchFailed:
		snap.Message = MsgFetchFailed
	}
	if l.err != nil {
		var ff *FetchFailure
		var nf *TargetNotFound
		switch {
		case errors.As(l.err, &ff):
			snap.Error = ff.Err.Error()
		case errors.As(l.err, &nf):
			snap.Error = l.err.Error()
			snap.Suggestions = nf.Suggestions
		default:
			snap.Error = l.err.Error()
		}
	}
	return snap
}
