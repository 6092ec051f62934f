package ports

import (
	"context"
	"time"
)

// KeyValueStore is the persisted storage behind sessions. Entries expire
// after their TTL. Get returns domain.ErrNotFound for absent or expired keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// SetMany overwrites every entry with the same TTL. Existing values are
	// replaced, never merged.
	SetMany(ctx context.Context, entries map[string][]byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// Envelope is the symmetric encryption wrapper applied to every persisted
// entry. Open must fail with an error wrapping domain.ErrDecryption for
// tampered or foreign ciphertext.
type Envelope interface {
	Seal(plaintext []byte) (string, error)
	Open(ciphertext string) ([]byte, error)
}
