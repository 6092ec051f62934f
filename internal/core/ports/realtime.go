package ports

import (
	"context"
	"encoding/json"
)

// Handler receives the raw data of one realtime event.
type Handler func(payload json.RawMessage)

// Realtime is a publish/subscribe channel keyed by event name.
type Realtime interface {
	// Connect opens the connection if it is not already open.
	Connect(ctx context.Context) error
	Emit(ctx context.Context, event string, payload any) error
	// On registers h for event and returns a function that deregisters
	// exactly this registration.
	On(event string, h Handler) (off func())
	Close() error
}

// RealtimeFactory opens connections authenticated with a session token.
type RealtimeFactory interface {
	New(token string) Realtime
}
