package boundary

import "errors"

// User facing status messages
const (
	MsgLoading     = "Loading boundaries..."
	MsgFetchFailed = "Error loading map data."
	MsgNotFound    = "Country not found."
)

// ErrAlreadyStarted is returned when a loader is started twice
var ErrAlreadyStarted = errors.New("boundary loader already started")

// FetchFailure wraps a network, status or decode failure of the dataset fetch
type FetchFailure struct {
	Err error
}

func (e *FetchFailure) Error() string {
	return MsgFetchFailed
}

func (e *FetchFailure) Unwrap() error {
	return e.Err
}

// TargetNotFound reports that no feature carries the configured name.
// Suggestions lists similar names found in the dataset.
type TargetNotFound struct {
	Name        string
	Suggestions []string
}

func (e *TargetNotFound) Error() string {
	return MsgNotFound
}
