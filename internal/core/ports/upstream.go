package ports

import (
	"context"
	"net/url"
)

// Upstream is the REST API the console fronts. Failures are returned as
// *domain.TransportError.
type Upstream interface {
	GetJSON(ctx context.Context, path, token string, query url.Values, out any) error
	PostJSON(ctx context.Context, path, token string, body, out any) error
}
