package realtime

import (
	"context"
	"encoding/json"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/formlane/console/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

type delivery struct {
	event    string
	payload  json.RawMessage
	handlers []ports.Handler
}

// Dispatcher hands inbound events to a fixed set of workers using consistent
// hashing on the event name, so events with the same name are delivered in
// arrival order and a slow handler never stalls the read loop for others.
type Dispatcher struct {
	workers []chan delivery
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan delivery, numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan delivery, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue blocks while the event's worker is full. It reports false when ctx
// ended first.
func (d *Dispatcher) Enqueue(ctx context.Context, dl delivery) bool {
	select {
	case d.workers[d.shardIndex(dl.event)] <- dl:
		return true
	case <-ctx.Done():
		return false
	}
}

// shardIndex maps an event name deterministically to a worker index.
func (d *Dispatcher) shardIndex(event string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(event))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case dl := <-ch:
			for _, h := range dl.handlers {
				d.invoke(id, dl, h)
			}
		}
	}
}

func (d *Dispatcher) invoke(id int, dl delivery, h ports.Handler) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Interface("panic", r).
				Str("event", dl.event).
				Int("worker_id", id).
				Msg("realtime handler panicked")
		}
	}()
	h(dl.payload)
}
