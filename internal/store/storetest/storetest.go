// Package storetest holds the conformance suite every store.KV backend runs.
package storetest

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yiblet/proboost/internal/store"
)

// Run exercises kv against the store.KV contract. kv must start empty.
func Run(t *testing.T, newKV func(t *testing.T) store.KV) {
	t.Run("GetMissing", func(t *testing.T) {
		kv := newKV(t)
		_, err := kv.Get("missing")
		require.Error(t, err)
		assert.True(t, store.IsNotFound(err), "want ErrNotFound, got %v", err)
	})

	t.Run("SetAndGet", func(t *testing.T) {
		kv := newKV(t)
		require.NoError(t, kv.Set(store.KeyTheme, "dark"))

		got, err := kv.Get(store.KeyTheme)
		require.NoError(t, err)
		assert.Equal(t, "dark", got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		kv := newKV(t)
		require.NoError(t, kv.Set(store.KeyLanguage, "en"))
		require.NoError(t, kv.Set(store.KeyLanguage, "fr"))

		got, err := kv.Get(store.KeyLanguage)
		require.NoError(t, err)
		assert.Equal(t, "fr", got)
	})

	t.Run("PreservesBytes", func(t *testing.T) {
		kv := newKV(t)
		value := "[{\"id\":\"a\",\"title\":\"caf\u00e9 \\\"quoted\\\"\\n\"}]"
		require.NoError(t, kv.Set(store.KeyHistory, value))

		got, err := kv.Get(store.KeyHistory)
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})

	t.Run("Delete", func(t *testing.T) {
		kv := newKV(t)
		require.NoError(t, kv.Set(store.KeyAPIKey, "secret"))
		require.NoError(t, kv.Delete(store.KeyAPIKey))

		_, err := kv.Get(store.KeyAPIKey)
		assert.True(t, store.IsNotFound(err))

		err = kv.Delete(store.KeyAPIKey)
		assert.True(t, store.IsNotFound(err), "second delete should report not found, got %v", err)
	})

	t.Run("List", func(t *testing.T) {
		kv := newKV(t)
		want := map[string]string{
			store.KeyTheme:          "light",
			store.KeyJobAlertActive: "true",
		}
		for k, v := range want {
			require.NoError(t, kv.Set(k, v))
		}

		got, err := kv.List()
		require.NoError(t, err)
		assert.Equal(t, want, got)

		// Mutating the returned map must not leak into the store.
		got["extra"] = "x"
		again, err := kv.List()
		require.NoError(t, err)
		assert.NotContains(t, again, "extra")
	})

	t.Run("Concurrent", func(t *testing.T) {
		kv := newKV(t)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := fmt.Sprintf("key-%d", i)
				assert.NoError(t, kv.Set(key, fmt.Sprintf("value-%d", i)))
				_, err := kv.Get(key)
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		all, err := kv.List()
		require.NoError(t, err)
		assert.Len(t, all, 10)
	})
}
