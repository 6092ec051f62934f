// Package fetch populates a view by racing a realtime subscription against a
// timed REST fallback. Whichever channel answers first commits the view's
// data; the other is ignored. A View commits at most once, never mutates
// after Unmount, and merges unsolicited update events into committed data.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/formlane/console/internal/core/domain"
	"github.com/formlane/console/internal/core/ports"
)

const (
	DefaultTimeout      = 3 * time.Second
	DefaultConnectEvent = "user-connected"
)

// Identity is announced on the realtime channel before any request.
type Identity struct {
	UserID    string `json:"userId"`
	CompanyID string `json:"companyId,omitempty"`
}

// Merge folds one update event into committed data.
type Merge[T any] func(current T, payload json.RawMessage) (T, error)

// Options parameterizes one race.
type Options[T any] struct {
	// Name labels logs and metrics, e.g. "companies".
	Name string
	// ConnectEvent carries Identity once connected. Defaults to "user-connected".
	ConnectEvent  string
	RequestEvent  string
	ResponseEvent string
	Identity      Identity
	// Request is the payload of RequestEvent. Defaults to Identity.
	Request any
	// Timeout is the realtime deadline. Defaults to DefaultTimeout.
	Timeout time.Duration
	// Decode turns the realtime payload into T. Defaults to json.Unmarshal.
	Decode   func(json.RawMessage) (T, error)
	Fallback func(ctx context.Context) (T, error)
	// Updates maps unsolicited event names to their merge functions.
	Updates map[string]Merge[T]
	// Private closes the realtime connection on Unmount.
	Private  bool
	Logger   zerolog.Logger
	Observer ports.Observer
}

func (o Options[T]) withDefaults() Options[T] {
	if o.ConnectEvent == "" {
		o.ConnectEvent = DefaultConnectEvent
	}
	if o.Request == nil {
		o.Request = o.Identity
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Decode == nil {
		o.Decode = func(raw json.RawMessage) (T, error) {
			var out T
			err := json.Unmarshal(raw, &out)
			return out, err
		}
	}
	if o.Observer == nil {
		o.Observer = ports.NopObserver{}
	}
	return o
}

type pendingUpdate[T any] struct {
	event   string
	merge   Merge[T]
	payload json.RawMessage
}

// View is one mounted instance of a list or record view.
type View[T any] struct {
	opts Options[T]
	rt   ports.Realtime
	log  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	state          State
	result         Result[T]
	pending        []pendingUpdate[T]
	timer          *time.Timer
	fallbackCancel context.CancelFunc
	offs           []func()
	done           chan struct{}
	started        time.Time
}

// Mount starts the race. rt may be nil when no realtime channel is
// configured, in which case the fallback fires immediately.
func Mount[T any](ctx context.Context, rt ports.Realtime, opts Options[T]) *View[T] {
	opts = opts.withDefaults()
	viewCtx, cancel := context.WithCancel(ctx)

	v := &View[T]{
		opts:    opts,
		rt:      rt,
		log:     opts.Logger.With().Str("view", opts.Name).Logger(),
		ctx:     viewCtx,
		cancel:  cancel,
		state:   Idle,
		result:  Result[T]{Source: SourceNone},
		done:    make(chan struct{}),
		started: time.Now(),
	}

	deadline := opts.Timeout
	if rt == nil {
		deadline = 0
	}

	v.mu.Lock()
	v.state = AwaitingRealtime
	if rt != nil {
		v.offs = append(v.offs, rt.On(opts.ResponseEvent, v.onResponse))
		for event, merge := range opts.Updates {
			v.offs = append(v.offs, rt.On(event, v.onUpdate(event, merge)))
		}
	}
	v.timer = time.AfterFunc(deadline, v.onDeadline)
	v.mu.Unlock()

	if rt != nil {
		go v.subscribe()
	}
	return v
}

func (v *View[T]) subscribe() {
	if err := v.rt.Connect(v.ctx); err != nil {
		v.realtimeFailed("connect", err)
		return
	}
	if err := v.rt.Emit(v.ctx, v.opts.ConnectEvent, v.opts.Identity); err != nil {
		v.realtimeFailed("announce", err)
		return
	}
	if err := v.rt.Emit(v.ctx, v.opts.RequestEvent, v.opts.Request); err != nil {
		v.realtimeFailed("request", err)
	}
}

// realtimeFailed logs and otherwise ignores the error: the deadline still
// decides when the fallback runs.
func (v *View[T]) realtimeFailed(stage string, err error) {
	if v.ctx.Err() != nil {
		return
	}
	v.opts.Observer.RealtimeError(v.opts.Name, stage)
	v.log.Warn().Err(err).Str("stage", stage).Msg("realtime unavailable, waiting for fallback")
}

func (v *View[T]) onResponse(payload json.RawMessage) {
	data, err := v.opts.Decode(payload)
	if err != nil {
		v.realtimeFailed("decode", fmt.Errorf("%w: decode %s: %w", domain.ErrRealtime, v.opts.ResponseEvent, err))
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	switch v.state {
	case AwaitingRealtime, AwaitingFallback:
		v.timer.Stop()
		if v.fallbackCancel != nil {
			v.fallbackCancel()
		}
		v.commit(data, SourceRealtime, nil)
	case Resolved:
		// A repeated snapshot replaces data committed by the same channel.
		if v.result.Source == SourceRealtime {
			v.result.Data = data
		}
	}
}

func (v *View[T]) onUpdate(event string, merge Merge[T]) ports.Handler {
	return func(payload json.RawMessage) {
		v.mu.Lock()
		defer v.mu.Unlock()

		switch v.state {
		case AwaitingRealtime, AwaitingFallback:
			v.pending = append(v.pending, pendingUpdate[T]{event: event, merge: merge, payload: payload})
		case Resolved:
			if v.result.Err != nil {
				return
			}
			merged, err := merge(v.result.Data, payload)
			if err != nil {
				v.log.Warn().Err(err).Str("event", event).Msg("update discarded")
				return
			}
			v.result.Data = merged
		}
	}
}

func (v *View[T]) onDeadline() {
	v.mu.Lock()
	if v.state != AwaitingRealtime {
		v.mu.Unlock()
		return
	}
	v.state = AwaitingFallback
	fallbackCtx, cancel := context.WithCancel(v.ctx)
	v.fallbackCancel = cancel
	v.mu.Unlock()

	v.log.Debug().Dur("timeout", v.opts.Timeout).Msg("realtime deadline elapsed, issuing fallback")

	var (
		data T
		err  error
	)
	if v.opts.Fallback == nil {
		err = fmt.Errorf("%w: no fallback for %s", domain.ErrTransport, v.opts.Name)
	} else {
		data, err = v.opts.Fallback(fallbackCtx)
	}
	cancel()

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != AwaitingFallback {
		return
	}
	if err != nil {
		var zero T
		v.log.Error().Err(err).Msg("fallback failed")
		v.commit(zero, SourceFallback, err)
		return
	}
	v.commit(data, SourceFallback, nil)
}

// commit must be called with mu held.
func (v *View[T]) commit(data T, source Source, err error) {
	if err == nil {
		for _, u := range v.pending {
			merged, mergeErr := u.merge(data, u.payload)
			if mergeErr != nil {
				v.log.Warn().Err(mergeErr).Str("event", u.event).Msg("queued update discarded")
				continue
			}
			data = merged
		}
	}
	v.pending = nil
	v.state = Resolved
	v.result = Result[T]{Data: data, Source: source, Err: err}
	close(v.done)

	elapsed := time.Since(v.started)
	v.opts.Observer.FetchResolved(v.opts.Name, string(source), elapsed)
	v.log.Debug().Str("source", string(source)).Dur("elapsed", elapsed).Msg("view resolved")
}

// Wait blocks until the view resolves, is unmounted, or ctx ends. A failed
// fallback is returned both in Result.Err and as the error.
func (v *View[T]) Wait(ctx context.Context) (Result[T], error) {
	select {
	case <-v.done:
	case <-ctx.Done():
		return Result[T]{Source: SourceNone}, ctx.Err()
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.result.Source == SourceNone {
		return v.result, ErrUnmounted
	}
	return v.result, v.result.Err
}

// Snapshot returns the current result and state without blocking.
func (v *View[T]) Snapshot() (Result[T], State) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.result, v.state
}

// Unmount tears the view down: listeners are deregistered, the deadline is
// cleared, an in-flight fallback is cancelled and a private connection is
// closed. Nothing mutates the view afterwards. Safe to call more than once.
func (v *View[T]) Unmount() {
	v.mu.Lock()
	if v.state == Unmounted {
		v.mu.Unlock()
		return
	}
	resolved := v.state == Resolved
	v.state = Unmounted
	v.timer.Stop()
	if v.fallbackCancel != nil {
		v.fallbackCancel()
	}
	v.pending = nil
	offs := v.offs
	v.offs = nil
	if !resolved {
		close(v.done)
	}
	v.mu.Unlock()

	for _, off := range offs {
		off()
	}
	v.cancel()

	if v.opts.Private && v.rt != nil {
		if err := v.rt.Close(); err != nil {
			v.log.Debug().Err(err).Msg("closing private realtime connection")
		}
	}
}
