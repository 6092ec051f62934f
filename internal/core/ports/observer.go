package ports

import "time"

// Observer receives operational signals from the core. The api/metrics
// package implements it with Prometheus collectors.
type Observer interface {
	FetchResolved(view, source string, elapsed time.Duration)
	RealtimeError(view, stage string)
	GuardDecision(outcome string)
	DecryptFailure(key string)
}

// NopObserver discards every signal.
type NopObserver struct{}

func (NopObserver) FetchResolved(string, string, time.Duration) {}
func (NopObserver) RealtimeError(string, string)                {}
func (NopObserver) GuardDecision(string)                        {}
func (NopObserver) DecryptFailure(string)                       {}
