package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formlane/console/internal/core/domain"
)

func TestStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.SetMany(ctx, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, time.Minute))

	v, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	require.NoError(t, s.Delete(ctx, "a", "missing"))
	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, s.Len())
}

func TestStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore().WithClock(func() time.Time { return now })

	require.NoError(t, s.SetMany(ctx, map[string][]byte{"k": []byte("v")}, time.Hour))

	now = now.Add(59 * time.Minute)
	_, err := s.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, s.Len())
}

func TestStore_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	in := []byte("abc")
	require.NoError(t, s.SetMany(ctx, map[string][]byte{"k": in}, time.Minute))
	in[0] = 'x'

	out, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))

	out[0] = 'y'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestStore_ConcurrentOverwrite(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.SetMany(ctx, map[string][]byte{"k": []byte("v")}, time.Minute)
		}()
		go func() {
			defer wg.Done()
			if _, err := s.Get(ctx, "k"); err != nil {
				assert.ErrorIs(t, err, domain.ErrNotFound)
			}
		}()
	}
	wg.Wait()
}
