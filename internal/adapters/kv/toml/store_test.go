package toml

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	config := viper.New()
	config.Set(DurablePathKey, filepath.Join(t.TempDir(), "storage.toml"))

	store, err := NewStore(config)
	require.NoError(t, err)
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "tracetrade:wallet:pairing", `{"accountIds":["0.0.1234"],"topic":"abc@2"}`))
	require.NoError(t, store.Put(ctx, "wc@2:core:0.3//messages", "[]"))
	require.NoError(t, store.Put(ctx, "tracetrade:wallet:pairing", `{"accountIds":["0.0.99"],"topic":"def@2"}`))

	value, err := store.Get(ctx, "tracetrade:wallet:pairing")
	require.NoError(t, err)
	assert.Equal(t, `{"accountIds":["0.0.99"],"topic":"def@2"}`, value)

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tracetrade:wallet:pairing", "wc@2:core:0.3//messages"}, keys)

	reopened, err := NewStoreAt(store.Path())
	require.NoError(t, err)
	value, err = reopened.Get(ctx, "wc@2:core:0.3//messages")
	require.NoError(t, err)
	assert.Equal(t, "[]", value)
}

func TestStoreGetMissingKeyReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestStoreDeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "never-written"))
	require.NoError(t, store.Put(ctx, "key", "value"))
	require.NoError(t, store.Delete(ctx, "key"))
	require.NoError(t, store.Delete(ctx, "key"))

	_, err := store.Get(ctx, "key")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestStoreWritesPrivateFileAndNoTempLeftovers(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Put(context.Background(), "key", "value"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(storageFileMode), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "storage.toml", entries[0].Name())
}

func TestStoreRejectsUnsupportedSchemaVersion(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "storage.toml")
	require.NoError(t, os.WriteFile(path, []byte("version = 99\n"), 0o600))

	store, err := NewStoreAt(path)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "key")
	require.ErrorContains(t, err, "unsupported storage schema version 99")
}

func TestStoreReturnsDecodeErrorForCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "storage.toml")
	require.NoError(t, os.WriteFile(path, []byte("entries = [[["), 0o600))

	store, err := NewStoreAt(path)
	require.NoError(t, err)

	_, err = store.Keys(context.Background())
	require.ErrorContains(t, err, "decode storage file")
	require.ErrorIs(t, err, domain.ErrStorageCorrupt)
}

func TestStoreDeleteQuarantinesCorruptFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{name: "torn write", data: "[[entries]\nkey = \"wc@2"},
		{name: "future schema", data: "version = 99\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "storage.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o600))

			store, err := NewStoreAt(path)
			require.NoError(t, err)
			ctx := context.Background()

			_, err = store.Get(ctx, "tracetrade:wallet:pairing")
			require.ErrorIs(t, err, domain.ErrStorageCorrupt)

			require.NoError(t, store.Delete(ctx, "tracetrade:wallet:pairing"))
			require.NoError(t, store.Delete(ctx, "wc@2:core:0.3//messages"))

			kept, err := os.ReadFile(path + ".corrupt")
			require.NoError(t, err)
			assert.Equal(t, tt.data, string(kept))

			require.NoError(t, store.Put(ctx, "k", "v"))
			value, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v", value)

			keys, err := store.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"k"}, keys)
		})
	}
}

func TestStoreConcurrentWritersSharePathLock(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "storage.toml")
	first, err := NewStoreAt(path)
	require.NoError(t, err)
	second, err := NewStoreAt(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		store := first
		if i%2 == 1 {
			store = second
		}
		go func(i int, store *Store) {
			defer wg.Done()
			require.NoError(t, store.Put(context.Background(), "key-"+strconv.Itoa(i), "value"))
		}(i, store)
	}
	wg.Wait()

	keys, err := first.Keys(context.Background())
	require.NoError(t, err)
	assert.Len(t, keys, 20)
}
