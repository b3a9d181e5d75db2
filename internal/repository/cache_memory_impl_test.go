package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReleaseCache(t *testing.T) {
	ctx := context.Background()
	t.Run("Should return absent for unknown keys", func(t *testing.T) {
		c := NewMemoryReleaseCache()
		value, ok, err := c.Get(ctx, "ns", "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, value)
	})
	t.Run("Should round trip a value", func(t *testing.T) {
		c := NewMemoryReleaseCache()
		require.NoError(t, c.Set(ctx, "ns", "k", []byte(`{"version":"1.0.0"}`), time.Minute))
		value, ok, err := c.Get(ctx, "ns", "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.JSONEq(t, `{"version":"1.0.0"}`, string(value))
	})
	t.Run("Should keep namespaces apart", func(t *testing.T) {
		c := NewMemoryReleaseCache()
		require.NoError(t, c.Set(ctx, "azure", "k", []byte("a"), time.Minute))
		_, ok, err := c.Get(ctx, "github", "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("Should expire entries after the ttl", func(t *testing.T) {
		c := NewMemoryReleaseCache()
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		c.now = func() time.Time { return now }
		require.NoError(t, c.Set(ctx, "ns", "k", []byte("v"), time.Minute))
		now = now.Add(59 * time.Second)
		_, ok, _ := c.Get(ctx, "ns", "k")
		assert.True(t, ok)
		now = now.Add(time.Second)
		_, ok, _ = c.Get(ctx, "ns", "k")
		assert.False(t, ok)
		assert.Equal(t, 0, c.Len())
	})
	t.Run("Should not alias stored values", func(t *testing.T) {
		c := NewMemoryReleaseCache()
		value := []byte("abc")
		require.NoError(t, c.Set(ctx, "ns", "k", value, time.Minute))
		value[0] = 'z'
		got, _, _ := c.Get(ctx, "ns", "k")
		assert.Equal(t, "abc", string(got))
	})
	t.Run("Should honour canceled contexts", func(t *testing.T) {
		c := NewMemoryReleaseCache()
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, c.Set(canceled, "ns", "k", []byte("v"), time.Minute), context.Canceled)
	})
	t.Run("Should be safe for concurrent use", func(t *testing.T) {
		c := NewMemoryReleaseCache()
		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := fmt.Sprintf("k%d", i)
				assert.NoError(t, c.Set(ctx, "ns", key, []byte(key), time.Minute))
				got, ok, err := c.Get(ctx, "ns", key)
				assert.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, key, string(got))
			}(i)
		}
		wg.Wait()
		assert.Equal(t, 50, c.Len())
	})
}
