package service

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/formlane/console/internal/core/domain"
	"github.com/formlane/console/internal/core/ports"
)

type stubStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newStubStore() *stubStore {
	return &stubStore{entries: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (s *stubStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (s *stubStore) SetMany(_ context.Context, entries map[string][]byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range entries {
		s.entries[k] = v
		s.ttls[k] = ttl
	}
	return nil
}

func (s *stubStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.entries, k)
		delete(s.ttls, k)
	}
	return nil
}

func (s *stubStore) Ping(context.Context) error { return nil }

// stubEnvelope reverses the plaintext behind a marker; enough to prove
// nothing is stored in the clear.
type stubEnvelope struct{}

const sealedMarker = "sealed:"

func (stubEnvelope) Seal(p []byte) (string, error) {
	return sealedMarker + reverse(string(p)), nil
}

func (stubEnvelope) Open(c string) ([]byte, error) {
	rest, ok := strings.CutPrefix(c, sealedMarker)
	if !ok {
		return nil, domain.ErrDecryption
	}
	return []byte(reverse(rest)), nil
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

type upstreamCall struct {
	Method string
	Path   string
	Token  string
	Query  url.Values
}

type stubUpstream struct {
	mu        sync.Mutex
	calls     []upstreamCall
	responses map[string]string
	errs      map[string]error
}

func newStubUpstream() *stubUpstream {
	return &stubUpstream{responses: make(map[string]string), errs: make(map[string]error)}
}

func (u *stubUpstream) record(method, path, token string, query url.Values) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls = append(u.calls, upstreamCall{Method: method, Path: path, Token: token, Query: query})
	if err := u.errs[path]; err != nil {
		return "", err
	}
	body, ok := u.responses[path]
	if !ok {
		return "", &domain.TransportError{Method: method, Path: path, Status: 404}
	}
	return body, nil
}

func (u *stubUpstream) GetJSON(_ context.Context, path, token string, query url.Values, out any) error {
	body, err := u.record("GET", path, token, query)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(body), out)
}

func (u *stubUpstream) PostJSON(_ context.Context, path, token string, _ any, out any) error {
	body, err := u.record("POST", path, token, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(body), out)
}

func (u *stubUpstream) callCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.calls)
}

func (u *stubUpstream) lastCall() upstreamCall {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.calls) == 0 {
		return upstreamCall{}
	}
	return u.calls[len(u.calls)-1]
}

type countingObserver struct {
	ports.NopObserver
	mu        sync.Mutex
	decisions map[string]int
	decrypt   map[string]int
	resolved  map[string]string
}

func newCountingObserver() *countingObserver {
	return &countingObserver{
		decisions: make(map[string]int),
		decrypt:   make(map[string]int),
		resolved:  make(map[string]string),
	}
}

func (o *countingObserver) GuardDecision(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.decisions[outcome]++
}

func (o *countingObserver) DecryptFailure(key string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.decrypt[key]++
}

func (o *countingObserver) FetchResolved(view, source string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resolved[view] = source
}

// answeringRealtime replies to every get-all-X request with the configured
// payload for all-X.
type answeringRealtime struct {
	mu       sync.Mutex
	handlers map[string][]ports.Handler
	replies  map[string]string
	closed   bool
}

func newAnsweringRealtime(replies map[string]string) *answeringRealtime {
	return &answeringRealtime{handlers: make(map[string][]ports.Handler), replies: replies}
}

func (r *answeringRealtime) Connect(context.Context) error { return nil }

func (r *answeringRealtime) Emit(_ context.Context, event string, _ any) error {
	r.mu.Lock()
	body, ok := r.replies[event]
	var hs []ports.Handler
	if ok {
		resp := strings.TrimPrefix(event, "get-")
		hs = append(hs, r.handlers[resp]...)
	}
	r.mu.Unlock()
	for _, h := range hs {
		h(json.RawMessage(body))
	}
	return nil
}

func (r *answeringRealtime) On(event string, h ports.Handler) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[event] = append(r.handlers[event], h)
	idx := len(r.handlers[event]) - 1
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.handlers[event][idx] = func(json.RawMessage) {}
	}
}

func (r *answeringRealtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

type stubFactory struct{ rt *answeringRealtime }

func (f stubFactory) New(string) ports.Realtime { return f.rt }
