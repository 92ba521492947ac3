package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/adapters/kv/memory"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/ports/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPairingCacheRoundTrip(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	cache := NewPairingCache(store, "", zerolog.Nop())
	ctx := context.Background()

	record := domain.PairingRecord{
		AccountIDs: []domain.AccountID{"0.0.1234", "0.0.5678"},
		Topic:      "abc@2",
		RawTopic:   "wc:abc@2?x=1",
		PairedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	cache.Save(ctx, record)

	raw, err := store.Get(ctx, DefaultPairingCacheKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"accountIds":["0.0.1234","0.0.5678"],"topic":"abc@2","rawTopic":"wc:abc@2?x=1","pairedAt":"2026-03-01T12:00:00Z"}`, raw)

	loaded := cache.Load(ctx)
	require.NotNil(t, loaded)
	assert.Equal(t, record, *loaded)

	cache.Clear(ctx)
	assert.Nil(t, cache.Load(ctx))
}

func TestPairingCacheLoadNormalizesStoredRecord(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	require.NoError(t, store.Put(context.Background(), DefaultPairingCacheKey,
		`{"accountIds":["hedera:testnet:0.0.1234"," 0.0.1234 "],"topic":"wc:abc@2?x=1"}`))

	loaded := NewPairingCache(store, "", zerolog.Nop()).Load(context.Background())
	require.NotNil(t, loaded)
	assert.Equal(t, []domain.AccountID{"0.0.1234"}, loaded.AccountIDs)
	assert.Equal(t, "abc@2", loaded.Topic)
}

func TestPairingCacheDiscardsCorruptEntries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "malformed json", raw: `{"accountIds":`},
		{name: "no accounts", raw: `{"accountIds":[],"topic":"abc@2"}`},
		{name: "no topic", raw: `{"accountIds":["0.0.1"],"topic":"wc:"}`},
		{name: "wrong shape", raw: `["0.0.1"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := memory.NewStore()
			ctx := context.Background()
			require.NoError(t, store.Put(ctx, DefaultPairingCacheKey, tt.raw))

			assert.Nil(t, NewPairingCache(store, "", zerolog.Nop()).Load(ctx))

			_, err := store.Get(ctx, DefaultPairingCacheKey)
			require.ErrorIs(t, err, domain.ErrKeyNotFound)
		})
	}
}

func TestPairingCacheClearsCorruptStorage(t *testing.T) {
	t.Parallel()

	store := mocks.NewMockKeyValueStore(t)
	var logs bytes.Buffer
	cache := NewPairingCache(store, "", zerolog.New(&logs))
	ctx := context.Background()

	store.EXPECT().Get(mock.Anything, DefaultPairingCacheKey).
		Return("", fmt.Errorf("decode storage file: %w", domain.ErrStorageCorrupt)).Once()
	store.EXPECT().Delete(mock.Anything, DefaultPairingCacheKey).Return(nil).Once()

	assert.Nil(t, cache.Load(ctx))
	assert.Contains(t, logs.String(), "discard corrupt pairing storage")
}

func TestPairingCacheSwallowsAndLogsStorageFailures(t *testing.T) {
	t.Parallel()

	store := mocks.NewMockKeyValueStore(t)
	var logs bytes.Buffer
	cache := NewPairingCache(store, "custom:key", zerolog.New(&logs))
	ctx := context.Background()

	store.EXPECT().Put(mock.Anything, "custom:key", mock.Anything).Return(errors.New("quota exceeded")).Once()
	store.EXPECT().Get(mock.Anything, "custom:key").Return("", errors.New("storage unavailable")).Once()
	store.EXPECT().Delete(mock.Anything, "custom:key").Return(errors.New("storage unavailable")).Once()

	cache.Save(ctx, domain.PairingRecord{AccountIDs: []domain.AccountID{"0.0.1"}, Topic: "abc@2"})
	assert.Nil(t, cache.Load(ctx))
	cache.Clear(ctx)

	assert.Contains(t, logs.String(), "quota exceeded")
	assert.Contains(t, logs.String(), "write pairing cache")
	assert.Contains(t, logs.String(), "clear pairing cache")
}

func TestPairingCacheMissingEntryIsSilent(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	cache := NewPairingCache(memory.NewStore(), "", zerolog.New(&logs))

	assert.Nil(t, cache.Load(context.Background()))
	assert.Empty(t, logs.String())
}
