// Package realtime is the websocket side of the dual-channel fetch. Frames
// are JSON objects {"event": name, "data": payload} in both directions.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/formlane/console/internal/core/domain"
	"github.com/formlane/console/internal/core/ports"
)

const (
	defaultDialTimeout = 5 * time.Second
	readLimit          = 4 << 20
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Config describes one connection.
type Config struct {
	URL string
	// Token, when set, is sent as a bearer Authorization header.
	Token       string
	Workers     int
	DialTimeout time.Duration
	Logger      zerolog.Logger
}

// Client is a ports.Realtime over one websocket. Listeners survive
// reconnects; a dropped connection is re-dialled by the next Connect.
type Client struct {
	cfg    Config
	log    zerolog.Logger
	group  singleflight.Group
	ctx    context.Context
	cancel context.CancelFunc
	disp   *Dispatcher

	mu        sync.Mutex
	conn      *websocket.Conn
	listeners map[string]map[uint64]ports.Handler
	nextID    uint64
	closed    bool
}

func NewClient(cfg Config) *Client {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		cfg:       cfg,
		log:       cfg.Logger.With().Str("component", "realtime").Logger(),
		ctx:       ctx,
		cancel:    cancel,
		disp:      NewDispatcher(cfg.Workers, cfg.Logger),
		listeners: make(map[string]map[uint64]ports.Handler),
	}
	c.disp.Start(ctx)
	return c
}

// Connect dials the server unless a connection is already open. Concurrent
// callers share one dial bounded by the client's lifetime and DialTimeout;
// ctx only bounds how long this caller waits for it.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return fmt.Errorf("%w: client closed", domain.ErrRealtime)
	case c.conn != nil:
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	ch := c.group.DoChan("connect", func() (any, error) {
		return nil, c.dial(c.ctx)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return fmt.Errorf("%w: connect: %w", domain.ErrRealtime, ctx.Err())
	}
}

func (c *Client) dial(ctx context.Context) error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
	defer cancel()

	opts := &websocket.DialOptions{HTTPHeader: http.Header{}}
	if c.cfg.Token != "" {
		opts.HTTPHeader.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	conn, _, err := websocket.Dial(dialCtx, c.cfg.URL, opts)
	if err != nil {
		return fmt.Errorf("%w: dial: %w", domain.ErrRealtime, err)
	}
	conn.SetReadLimit(readLimit)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "client closed")
		return fmt.Errorf("%w: client closed", domain.ErrRealtime)
	}
	c.conn = conn
	c.mu.Unlock()

	go c.readLoop(conn)
	c.log.Debug().Str("url", c.cfg.URL).Msg("realtime connected")
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(c.ctx)
		if err != nil {
			if c.ctx.Err() == nil && websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				c.log.Warn().Err(err).Msg("realtime connection lost")
			}
			c.drop(conn)
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil || f.Event == "" {
			c.log.Warn().Err(err).Int("bytes", len(data)).Msg("ignoring malformed realtime frame")
			continue
		}
		handlers := c.handlers(f.Event)
		if len(handlers) == 0 {
			continue
		}
		if !c.disp.Enqueue(c.ctx, delivery{event: f.Event, payload: f.Data, handlers: handlers}) {
			return
		}
	}
}

func (c *Client) drop(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.CloseNow()
}

func (c *Client) handlers(event string) []ports.Handler {
	c.mu.Lock()
	defer c.mu.Unlock()
	set := c.listeners[event]
	out := make([]ports.Handler, 0, len(set))
	for _, h := range set {
		out = append(out, h)
	}
	return out
}

// Emit sends one event. It fails when the connection is not open.
func (c *Client) Emit(ctx context.Context, event string, payload any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("%w: not connected", domain.ErrRealtime)
	}
	if err := wsjson.Write(ctx, conn, outbound{Event: event, Data: payload}); err != nil {
		return fmt.Errorf("%w: emit %s: %w", domain.ErrRealtime, event, err)
	}
	return nil
}

// On registers h for event. The returned function removes exactly this
// registration; an event already handed to a worker may still be delivered.
func (c *Client) On(event string, h ports.Handler) func() {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	if c.listeners[event] == nil {
		c.listeners[event] = make(map[uint64]ports.Handler)
	}
	c.listeners[event][id] = h
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.listeners[event], id)
			if len(c.listeners[event]) == 0 {
				delete(c.listeners, event)
			}
		})
	}
}

// Listeners reports the number of registered handlers.
func (c *Client) Listeners() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, set := range c.listeners {
		n += len(set)
	}
	return n
}

// Close shuts the connection and the dispatcher. It is idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		if err := conn.Close(websocket.StatusNormalClosure, "bye"); err != nil {
			c.log.Debug().Err(err).Msg("realtime close handshake")
		}
	}
	c.cancel()
	return nil
}

// Factory opens private, token-authenticated clients.
type Factory struct {
	URL         string
	DialTimeout time.Duration
	Logger      zerolog.Logger
}

func (f Factory) New(token string) ports.Realtime {
	return NewClient(Config{
		URL:         f.URL,
		Token:       token,
		Workers:     1,
		DialTimeout: f.DialTimeout,
		Logger:      f.Logger,
	})
}
