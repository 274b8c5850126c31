// Package lifecycle drives long-lived workers such as decoder.Stream: a
// manager starts the worker once, calls its Step in a loop on a dedicated
// goroutine, and on Close stops the loop and releases the worker.
//
// A strict manager ends the loop at the first step error, which suits a
// worker whose later input depends on the earlier one. A fail-safe manager
// logs step errors and recovered panics and keeps going, which suits a
// worker fed independent bitstreams.
package lifecycle

// Instance is a worker whose resources are released by its manager.
type Instance interface {
	// Close_ is called once, after the step loop has exited.
	Close_() //nolint:revive // distinct from the Close of the embedding manager
	String() string
}

// AsyncInstance is a worker stepped until it returns a BreakError, or, under
// a strict manager, any error.
type AsyncInstance interface {
	Instance
	// Step handles one unit of work. stopChan closes when Close is called.
	Step(stopChan <-chan struct{}) error
}

// AsyncManager owns the step loop of one AsyncInstance. Workers usually embed
// it, as decoder.Stream does.
type AsyncManager[T AsyncInstance] interface {
	Start(func(T) error) error
	Close()
	// Done closes when the step loop has exited.
	Done() <-chan struct{}
}

// BreakError is returned by Step to end the loop normally.
type BreakError struct{}

func (*BreakError) Error() string {
	return "break"
}

// StartedAlreadyError is returned by a strict manager on a second Start.
type StartedAlreadyError struct{}

func (*StartedAlreadyError) Error() string {
	return "started already"
}

// StartedAfterCloseError is returned by a strict manager on Start after Close.
type StartedAfterCloseError struct{}

func (*StartedAfterCloseError) Error() string {
	return "start after close"
}

var errBreak = &BreakError{}
