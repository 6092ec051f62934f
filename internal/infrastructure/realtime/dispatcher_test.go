package realtime

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formlane/console/internal/core/ports"
)

func TestDispatcher_PreservesPerEventOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d := NewDispatcher(4, zerolog.Nop())
	d.Start(ctx)

	var (
		mu   sync.Mutex
		seen []int
		wg   sync.WaitGroup
	)
	handler := func(p json.RawMessage) {
		n, _ := strconv.Atoi(string(p))
		mu.Lock()
		seen = append(seen, n)
		mu.Unlock()
		wg.Done()
	}

	for i := 0; i < 100; i++ {
		wg.Add(1)
		require.True(t, d.Enqueue(ctx, delivery{
			event:    "company-edited",
			payload:  json.RawMessage(strconv.Itoa(i)),
			handlers: []ports.Handler{handler},
		}))
	}
	wg.Wait()

	for i, n := range seen {
		assert.Equal(t, i, n)
	}
}

func TestDispatcher_RecoversFromHandlerPanic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d := NewDispatcher(1, zerolog.Nop())
	d.Start(ctx)

	done := make(chan struct{})
	d.Enqueue(ctx, delivery{event: "x", handlers: []ports.Handler{func(json.RawMessage) { panic("boom") }}})
	d.Enqueue(ctx, delivery{event: "x", handlers: []ports.Handler{func(json.RawMessage) { close(done) }}})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker died after a handler panic")
	}
}

func TestDispatcher_EnqueueStopsWithContext(t *testing.T) {
	d := NewDispatcher(1, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < channelBuffer; i++ {
		require.True(t, d.Enqueue(ctx, delivery{event: "x"}))
	}
	cancel()
	assert.False(t, d.Enqueue(ctx, delivery{event: "x"}))
}
