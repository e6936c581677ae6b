package ports

import "time"

// Search outcomes reported to a SearchObserver.
const (
	OutcomeOK           = "ok"
	OutcomeInvalid      = "invalid"
	OutcomeStorageError = "storage_error"
)

// SearchObserver receives signals from the query gateway.
// Implementations must be safe for concurrent use.
type SearchObserver interface {
	// SessionOpened is called after a session was successfully opened.
	SessionOpened()

	// SessionClosed is called once per opened session, after it was released.
	SessionClosed()

	// ObserveSearch records the outcome and duration of one search.
	ObserveSearch(outcome string, took time.Duration)
}
