package ports

import (
	"context"

	"github.com/formlane/console/internal/core/domain"
)

// SessionService owns the persisted session lifecycle.
type SessionService interface {
	Login(ctx context.Context, email, password string, remember bool) (string, *domain.Session, error)
	Load(ctx context.Context, sid string) (*domain.Session, error)
	Refresh(ctx context.Context, sid string) (*domain.Session, error)
	Clear(ctx context.Context, sid string) error
}
