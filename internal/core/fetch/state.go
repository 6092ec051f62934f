package fetch

import "errors"

// State is the lifecycle of one view's fetch.
//
//	Idle -> AwaitingRealtime -> Resolved(realtime)
//	                         -> AwaitingFallback -> Resolved(fallback)
//	any non-terminal -> Unmounted
//
// No transition leaves Resolved except Unmounted on teardown.
type State int

const (
	Idle State = iota
	AwaitingRealtime
	AwaitingFallback
	Resolved
	Unmounted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingRealtime:
		return "awaiting_realtime"
	case AwaitingFallback:
		return "awaiting_fallback"
	case Resolved:
		return "resolved"
	case Unmounted:
		return "unmounted"
	default:
		return "unknown"
	}
}

// Source names the channel that committed a view's data.
type Source string

const (
	SourceNone     Source = "none"
	SourceRealtime Source = "realtime"
	SourceFallback Source = "fallback"
)

// ErrUnmounted is returned by Wait when the view was torn down before either
// channel resolved. It is an abandonment, not a failure.
var ErrUnmounted = errors.New("fetch: view unmounted before resolution")

// Result is the single outcome of a race. Err is set only for a failed
// REST fallback; the view then keeps its (empty) data and shows a banner.
type Result[T any] struct {
	Data   T
	Source Source
	Err    error
}
