package application

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/ports"
	"github.com/rs/zerolog"
)

const DefaultPairingCacheKey = "tracetrade:wallet:pairing"

type pairingRecordSchema struct {
	AccountIDs []string `json:"accountIds"`
	Topic      string   `json:"topic"`
	RawTopic   string   `json:"rawTopic,omitempty"`
	PairedAt   string   `json:"pairedAt,omitempty"`
}

// PairingCache persists the single pairing record. Every failure is logged and
// swallowed so storage trouble degrades to re-pairing.
type PairingCache struct {
	store  ports.KeyValueStore
	key    string
	logger zerolog.Logger
}

func NewPairingCache(store ports.KeyValueStore, key string, logger zerolog.Logger) *PairingCache {
	if key == "" {
		key = DefaultPairingCacheKey
	}

	return &PairingCache{
		store:  store,
		key:    key,
		logger: logger.With().Str("component", "pairing_cache").Logger(),
	}
}

func (c *PairingCache) Key() string {
	return c.key
}

func (c *PairingCache) Load(ctx context.Context) *domain.PairingRecord {
	raw, err := c.store.Get(ctx, c.key)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrKeyNotFound):
		return nil
	case errors.Is(err, domain.ErrStorageCorrupt):
		c.logger.Warn().Err(err).Msg("discard corrupt pairing storage")
		c.Clear(ctx)
		return nil
	default:
		c.logger.Warn().Err(err).Msg("read pairing cache")
		return nil
	}

	var schema pairingRecordSchema
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		c.logger.Warn().Err(err).Msg("discard malformed pairing cache entry")
		c.Clear(ctx)
		return nil
	}

	record := fromPairingSchema(schema)
	if err := record.Validate(); err != nil {
		c.logger.Warn().Err(err).Msg("discard invalid pairing cache entry")
		c.Clear(ctx)
		return nil
	}

	return &record
}

func (c *PairingCache) Save(ctx context.Context, record domain.PairingRecord) {
	data, err := json.Marshal(toPairingSchema(record))
	if err != nil {
		c.logger.Warn().Err(err).Msg("encode pairing cache entry")
		return
	}

	if err := c.store.Put(ctx, c.key, string(data)); err != nil {
		c.logger.Warn().Err(err).Str("topic", record.Topic).Msg("write pairing cache")
	}
}

func (c *PairingCache) Clear(ctx context.Context) {
	if err := c.store.Delete(ctx, c.key); err != nil {
		c.logger.Warn().Err(err).Msg("clear pairing cache")
	}
}

func toPairingSchema(record domain.PairingRecord) pairingRecordSchema {
	accounts := make([]string, 0, len(record.AccountIDs))
	for _, id := range record.AccountIDs {
		accounts = append(accounts, string(id))
	}

	schema := pairingRecordSchema{
		AccountIDs: accounts,
		Topic:      record.Topic,
		RawTopic:   record.RawTopic,
	}
	if !record.PairedAt.IsZero() {
		schema.PairedAt = record.PairedAt.UTC().Format(time.RFC3339Nano)
	}

	return schema
}

func fromPairingSchema(schema pairingRecordSchema) domain.PairingRecord {
	record := domain.PairingRecord{
		AccountIDs: domain.NormalizeAccountIDs(schema.AccountIDs),
		Topic:      CanonicalTopic(schema.Topic),
		RawTopic:   schema.RawTopic,
	}
	if schema.PairedAt != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, schema.PairedAt); err == nil {
			record.PairedAt = parsed
		}
	}

	return record
}
