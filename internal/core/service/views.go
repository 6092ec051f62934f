package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/formlane/console/internal/core/domain"
	"github.com/formlane/console/internal/core/fetch"
	"github.com/formlane/console/internal/core/ports"
)

// Scope selects which identity narrows a view's data.
type Scope int

const (
	ScopeNone Scope = iota
	// ScopeCompany narrows to the :id path parameter, or the session's company.
	ScopeCompany
	// ScopeUser narrows to the session's user.
	ScopeUser
)

// ViewPayload is the rendered result of one view.
type ViewPayload struct {
	View   string `json:"view"`
	Title  string `json:"title"`
	Source string `json:"source"`
	Data   any    `json:"data"`
	// Banner carries a fallback failure shown inline instead of the data.
	Banner string `json:"banner,omitempty"`
}

// ViewEnv is everything a view needs for one render.
type ViewEnv struct {
	Name     string
	Session  *domain.Session
	Params   map[string]string
	Realtime ports.Realtime
	Private  bool
	Upstream ports.Upstream
	Timeout  time.Duration
	Logger   zerolog.Logger
	Observer ports.Observer
}

func (e ViewEnv) identity(scope Scope) fetch.Identity {
	id := fetch.Identity{UserID: e.Session.User.ID, CompanyID: e.Session.User.CompanyID}
	if scope == ScopeCompany && e.Params["id"] != "" {
		id.CompanyID = e.Params["id"]
	}
	return id
}

// Renderer renders one view for an admitted request.
type Renderer interface {
	Render(ctx context.Context, env ViewEnv) (ViewPayload, error)
}

// ListView is a collection view: get-all-<Resource> is answered by
// all-<Resource>, and <Singular>-added|edited|deleted keep it current.
type ListView[T any] struct {
	Resource string
	Singular string
	// Path is the REST fallback path; ":id" is replaced by the company scope.
	Path  string
	Scope Scope
	Key   func(T) string
}

func (l ListView[T]) options(env ViewEnv) fetch.Options[[]T] {
	identity := env.identity(l.Scope)
	return fetch.Options[[]T]{
		Name:          env.Name,
		RequestEvent:  "get-all-" + l.Resource,
		ResponseEvent: "all-" + l.Resource,
		Identity:      identity,
		Timeout:       env.Timeout,
		Decode:        decodeList[T],
		Fallback: func(ctx context.Context) ([]T, error) {
			var raw json.RawMessage
			path, query := scopedPath(l.Path, l.Scope, identity)
			if err := env.Upstream.GetJSON(ctx, path, env.Session.Token, query, &raw); err != nil {
				return nil, err
			}
			return decodeList[T](raw)
		},
		Updates: map[string]fetch.Merge[[]T]{
			l.Singular + "-added":   fetch.Upsert(l.Key),
			l.Singular + "-edited":  fetch.Upsert(l.Key),
			l.Singular + "-deleted": fetch.Remove(l.Key),
		},
		Private:  env.Private,
		Logger:   env.Logger,
		Observer: env.Observer,
	}
}

// Mount starts the race and leaves the view mounted for the caller to watch.
func (l ListView[T]) Mount(ctx context.Context, env ViewEnv) *fetch.View[[]T] {
	return fetch.Mount(ctx, env.Realtime, l.options(env))
}

func (l ListView[T]) Render(ctx context.Context, env ViewEnv) (ViewPayload, error) {
	v := l.Mount(ctx, env)
	defer v.Unmount()
	return payload(ctx, env, v, func(data []T) any {
		if data == nil {
			return []T{}
		}
		return data
	})
}

// RecordView is a single-record view: get-<Resource> is answered by
// <Resource>, and <Resource>-updated replaces it.
type RecordView[T any] struct {
	Resource string
	Path     string
	Scope    Scope
}

func (r RecordView[T]) options(env ViewEnv) fetch.Options[T] {
	identity := env.identity(r.Scope)
	return fetch.Options[T]{
		Name:          env.Name,
		RequestEvent:  "get-" + r.Resource,
		ResponseEvent: r.Resource,
		Identity:      identity,
		Timeout:       env.Timeout,
		Fallback: func(ctx context.Context) (T, error) {
			var out T
			path, query := scopedPath(r.Path, r.Scope, identity)
			err := env.Upstream.GetJSON(ctx, path, env.Session.Token, query, &out)
			return out, err
		},
		Updates: map[string]fetch.Merge[T]{
			r.Resource + "-updated": fetch.Replace[T](),
		},
		Private:  env.Private,
		Logger:   env.Logger,
		Observer: env.Observer,
	}
}

func (r RecordView[T]) Mount(ctx context.Context, env ViewEnv) *fetch.View[T] {
	return fetch.Mount(ctx, env.Realtime, r.options(env))
}

func (r RecordView[T]) Render(ctx context.Context, env ViewEnv) (ViewPayload, error) {
	v := r.Mount(ctx, env)
	defer v.Unmount()
	return payload(ctx, env, v, func(data T) any { return data })
}

func payload[T any](ctx context.Context, env ViewEnv, v *fetch.View[T], data func(T) any) (ViewPayload, error) {
	res, err := v.Wait(ctx)
	out := ViewPayload{View: env.Name, Source: string(res.Source)}
	switch {
	case err == nil:
		out.Data = data(res.Data)
		return out, nil
	case res.Err != nil:
		out.Data = data(res.Data)
		out.Banner = bannerMessage(res.Err)
		return out, nil
	default:
		return ViewPayload{}, err
	}
}

func bannerMessage(err error) string {
	var te *domain.TransportError
	if errors.As(err, &te) && te.Message != "" {
		return te.Message
	}
	return "Could not load data. Please try again."
}

// decodeList accepts a bare array or an object wrapping it in "data".
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Data []T `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, err
		}
		return wrapped.Data, nil
	}
	var out []T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func scopedPath(path string, scope Scope, id fetch.Identity) (string, url.Values) {
	query := url.Values{}
	switch scope {
	case ScopeCompany:
		if strings.Contains(path, ":id") {
			path = strings.ReplaceAll(path, ":id", url.PathEscape(id.CompanyID))
		} else if id.CompanyID != "" {
			query.Set("company_id", id.CompanyID)
		}
	case ScopeUser:
		query.Set("user_id", id.UserID)
	}
	if len(query) == 0 {
		query = nil
	}
	return path, query
}
