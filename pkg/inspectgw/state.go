package inspectgw

import "github.com/bft-labs/inspectgw/internal/app"

// State is the lifecycle state of a Server.
type State = app.State

const (
	StateStopped  = app.StateStopped
	StateStarting = app.StateStarting
	StateRunning  = app.StateRunning
	StateStopping = app.StateStopping
	StateCrashed  = app.StateCrashed
)

// StateChangeEvent describes one lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// EventHandler receives lifecycle notifications. Calls are synchronous and
// may come from the serve goroutine; implementations should return quickly.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(event StateChangeEvent)

func (f EventHandlerFunc) OnStateChange(event StateChangeEvent) { f(event) }
