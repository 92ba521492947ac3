package chain

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/ports"
)

// Store prefers the durable backend and degrades to the session backend when the
// durable one is unavailable.
type Store struct {
	primary  ports.KeyValueStore
	fallback ports.KeyValueStore
}

var _ ports.KeyValueStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary storage backend is nil")
	errNilFallbackStore = errors.New("fallback storage backend is nil")
)

func NewStore(primary ports.KeyValueStore, fallback ports.KeyValueStore) *Store {
	store, err := NewStoreChecked(primary, fallback)
	if err != nil {
		panic(err)
	}

	return store
}

func NewStoreChecked(primary ports.KeyValueStore, fallback ports.KeyValueStore) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{primary: primary, fallback: fallback}, nil
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	err := s.primary.Put(ctx, key, value)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Put(ctx, key, value)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend put failed: %w; fallback backend put failed: %w", err, fallbackErr)
}

// Get reads the primary first. A key missing there may still have been written to
// the fallback while the primary was down.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.primary.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if shouldSkipFallback(err) {
		return "", err
	}

	fallbackValue, fallbackErr := s.fallback.Get(ctx, key)
	if fallbackErr == nil {
		return fallbackValue, nil
	}
	if errors.Is(err, domain.ErrKeyNotFound) && errors.Is(fallbackErr, domain.ErrKeyNotFound) {
		return "", fmt.Errorf("key %q: %w", key, domain.ErrKeyNotFound)
	}

	return "", fmt.Errorf("primary backend get failed: %w; fallback backend get failed: %w", err, fallbackErr)
}

// Delete removes the key from both backends so a stale fallback copy cannot
// resurface.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.primary.Delete(ctx, key)
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Delete(ctx, key)
	switch {
	case err == nil && fallbackErr == nil:
		return nil
	case err == nil:
		return fmt.Errorf("fallback backend delete failed: %w", fallbackErr)
	case fallbackErr == nil:
		return fmt.Errorf("primary backend delete failed: %w", err)
	default:
		return fmt.Errorf("primary backend delete failed: %w; fallback backend delete failed: %w", err, fallbackErr)
	}
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	primaryKeys, err := s.primary.Keys(ctx)
	if shouldSkipFallback(err) {
		return nil, err
	}

	fallbackKeys, fallbackErr := s.fallback.Keys(ctx)
	if err != nil && fallbackErr != nil {
		return nil, fmt.Errorf("primary backend keys failed: %w; fallback backend keys failed: %w", err, fallbackErr)
	}

	seen := make(map[string]struct{}, len(primaryKeys)+len(fallbackKeys))
	keys := make([]string, 0, len(primaryKeys)+len(fallbackKeys))
	for _, key := range append(primaryKeys, fallbackKeys...) {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys, nil
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
