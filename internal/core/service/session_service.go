package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/formlane/console/internal/core/domain"
	"github.com/formlane/console/internal/core/ports"
)

const (
	keyToken       = "token"
	keyUserInfo    = "userInfo"
	keyPermissions = "permissions_list"

	keyPrefix = "console"
)

const (
	pathLogin       = "/auth/login"
	pathPermissions = "/auth/me/permissions"
)

// tokenRecord keeps the remember flag next to the token so a refresh can
// reuse the expiry window chosen at login.
type tokenRecord struct {
	Value    string `json:"value"`
	Remember bool   `json:"remember"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string      `json:"token"`
	User        domain.User `json:"user"`
	Permissions []string    `json:"permissions"`
}

type permissionsResponse struct {
	Permissions []string `json:"permissions"`
}

// SessionService persists sessions as encrypted entries, one per field, under
// console:<sid>:<field>. Reads degrade to "no data" rather than failing.
type SessionService struct {
	store    ports.KeyValueStore
	envelope ports.Envelope
	upstream ports.Upstream
	shortTTL time.Duration
	longTTL  time.Duration
	log      zerolog.Logger
	observer ports.Observer
}

func NewSessionService(
	store ports.KeyValueStore,
	envelope ports.Envelope,
	upstream ports.Upstream,
	shortTTL, longTTL time.Duration,
	log zerolog.Logger,
	observer ports.Observer,
) *SessionService {
	if shortTTL <= 0 {
		shortTTL = 12 * time.Hour
	}
	if longTTL < shortTTL {
		longTTL = shortTTL
	}
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &SessionService{
		store:    store,
		envelope: envelope,
		upstream: upstream,
		shortTTL: shortTTL,
		longTTL:  longTTL,
		log:      log,
		observer: observer,
	}
}

func storageKey(sid, field string) string {
	return keyPrefix + ":" + sid + ":" + field
}

func (s *SessionService) ttl(remember bool) time.Duration {
	if remember {
		return s.longTTL
	}
	return s.shortTTL
}

// Login exchanges credentials with upstream and persists the new session.
// It returns the session id the caller hands back on later requests.
func (s *SessionService) Login(ctx context.Context, email, password string, remember bool) (string, *domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	var resp loginResponse
	if err := s.upstream.PostJSON(ctx, pathLogin, "", loginRequest{Email: email, Password: password}, &resp); err != nil {
		var te *domain.TransportError
		if errors.As(err, &te) {
			switch te.Status {
			case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
				return "", nil, domain.ErrInvalidCredentials
			}
		}
		return "", nil, err
	}
	if resp.Token == "" {
		return "", nil, fmt.Errorf("%w: login response without token", domain.ErrTransport)
	}

	sess := &domain.Session{
		Token:       resp.Token,
		User:        resp.User,
		Permissions: domain.NewPermissionSet(resp.Permissions...),
		Remember:    remember,
	}
	sid := uuid.NewString()
	if err := s.Save(ctx, sid, sess); err != nil {
		return "", nil, err
	}

	s.log.Info().Str("sid", sid).Str("user_id", sess.User.ID).Int("permissions", sess.Permissions.Len()).Msg("session created")
	return sid, sess, nil
}

// Save overwrites every persisted field of the session.
func (s *SessionService) Save(ctx context.Context, sid string, sess *domain.Session) error {
	if sid == "" || sess == nil {
		return domain.ErrAuthRequired
	}

	fields := map[string]any{
		keyToken:       tokenRecord{Value: sess.Token, Remember: sess.Remember},
		keyUserInfo:    sess.User,
		keyPermissions: sess.Permissions,
	}
	entries := make(map[string][]byte, len(fields))
	for field, v := range fields {
		sealed, err := s.seal(v)
		if err != nil {
			return fmt.Errorf("seal %s: %w", field, err)
		}
		entries[storageKey(sid, field)] = sealed
	}
	if err := s.store.SetMany(ctx, entries, s.ttl(sess.Remember)); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Load rebuilds the session. A missing or unreadable token means there is no
// session; missing user info or permissions degrade to empty values.
func (s *SessionService) Load(ctx context.Context, sid string) (*domain.Session, error) {
	if sid == "" {
		return nil, domain.ErrAuthRequired
	}

	var tok tokenRecord
	if err := s.read(ctx, sid, keyToken, &tok); err != nil || tok.Value == "" {
		return nil, domain.ErrAuthRequired
	}

	sess := &domain.Session{Token: tok.Value, Remember: tok.Remember}
	if err := s.read(ctx, sid, keyUserInfo, &sess.User); err != nil {
		sess.User = domain.User{}
	}
	sess.Permissions = s.Permissions(ctx, sid)
	return sess, nil
}

// Permissions returns the persisted permission set, or the empty set when it
// is absent or cannot be decrypted.
func (s *SessionService) Permissions(ctx context.Context, sid string) domain.PermissionSet {
	var perms domain.PermissionSet
	if err := s.read(ctx, sid, keyPermissions, &perms); err != nil {
		return domain.NewPermissionSet()
	}
	return perms
}

// SetPermissions replaces the persisted set. persist selects the long expiry
// window.
func (s *SessionService) SetPermissions(ctx context.Context, sid string, perms domain.PermissionSet, persist bool) error {
	sealed, err := s.seal(perms)
	if err != nil {
		return fmt.Errorf("seal %s: %w", keyPermissions, err)
	}
	return s.store.SetMany(ctx, map[string][]byte{storageKey(sid, keyPermissions): sealed}, s.ttl(persist))
}

// Refresh pulls the current permission set from upstream and overwrites the
// persisted one.
func (s *SessionService) Refresh(ctx context.Context, sid string) (*domain.Session, error) {
	sess, err := s.Load(ctx, sid)
	if err != nil {
		return nil, err
	}

	var resp permissionsResponse
	if err := s.upstream.GetJSON(ctx, pathPermissions, sess.Token, nil, &resp); err != nil {
		var te *domain.TransportError
		if errors.As(err, &te) && te.Status == http.StatusUnauthorized {
			return nil, domain.ErrAuthRequired
		}
		return nil, err
	}

	sess.Permissions = domain.NewPermissionSet(resp.Permissions...)
	if err := s.SetPermissions(ctx, sid, sess.Permissions, sess.Remember); err != nil {
		return nil, err
	}
	s.log.Debug().Str("sid", sid).Int("permissions", sess.Permissions.Len()).Msg("permissions refreshed")
	return sess, nil
}

// Clear removes every persisted field.
func (s *SessionService) Clear(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	return s.store.Delete(ctx,
		storageKey(sid, keyToken),
		storageKey(sid, keyUserInfo),
		storageKey(sid, keyPermissions),
	)
}

func (s *SessionService) seal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	sealed, err := s.envelope.Seal(raw)
	if err != nil {
		return nil, err
	}
	return []byte(sealed), nil
}

func (s *SessionService) read(ctx context.Context, sid, field string, out any) error {
	sealed, err := s.store.Get(ctx, storageKey(sid, field))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Warn().Err(err).Str("field", field).Msg("session store read failed")
		}
		return err
	}

	raw, err := s.envelope.Open(string(sealed))
	if err != nil {
		s.observer.DecryptFailure(field)
		s.log.Warn().Err(err).Str("field", field).Msg("discarding unreadable session entry")
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.observer.DecryptFailure(field)
		s.log.Warn().Err(err).Str("field", field).Msg("discarding malformed session entry")
		return fmt.Errorf("%w: %s: %w", domain.ErrDecryption, field, err)
	}
	return nil
}
