package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/observability"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/ports"
	"github.com/rs/zerolog"
)

const (
	RecoveryTierKeys      = 0
	RecoveryTierNamespace = 1
	RecoveryTierDatabases = 2
)

const (
	DefaultTier1Settle = 3 * time.Second
	DefaultTier2Settle = 7 * time.Second
)

var (
	DefaultTier0Keys = []string{
		"wc@2:core:0.3//messages",
		"wc@2:core:0.3//subscription",
		"wc@2:core:0.3//history",
		"wc@2:core:0.3//expirer",
	}
	DefaultNamespacePrefixes = []string{"wc@2:", "walletconnect", "tracetrade:wallet:"}
	DefaultDatabases         = []string{"relay-sessions", "relay-keyvaluestorage"}
)

type RecoveryConfig struct {
	Tier0Keys         []string
	NamespacePrefixes []string
	Databases         []string
	// ExtraKeys are cleared from every scope from Tier 1 upward.
	ExtraKeys      []string
	Tier1Settle    time.Duration
	Tier2Settle    time.Duration
	RestartOnReset bool
}

func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		Tier0Keys:         append([]string(nil), DefaultTier0Keys...),
		NamespacePrefixes: append([]string(nil), DefaultNamespacePrefixes...),
		Databases:         append([]string(nil), DefaultDatabases...),
		Tier1Settle:       DefaultTier1Settle,
		Tier2Settle:       DefaultTier2Settle,
	}
}

type RecoveryReport struct {
	Tier    int
	Removed int
	Failed  int
	Err     error
}

func (r *RecoveryReport) fail(err error) {
	r.Failed++
	r.Err = errors.Join(r.Err, err)
}

type RecoveryDeps struct {
	Scopes    []ports.KeyValueStore
	Databases ports.DatabaseRegistry
	Restarter ports.Restarter
	Clock     ports.Clock
	Logger    zerolog.Logger
}

// StorageRecoveryManager runs escalating destructive cleanup between bridge
// initialization attempts. Deletions are independent: a failure is counted and
// logged, and the remaining deletions still run.
type StorageRecoveryManager struct {
	scopes    []ports.KeyValueStore
	databases ports.DatabaseRegistry
	restarter ports.Restarter
	clock     ports.Clock
	logger    zerolog.Logger
	cfg       RecoveryConfig
}

func NewStorageRecoveryManager(deps RecoveryDeps, cfg RecoveryConfig) *StorageRecoveryManager {
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if cfg.Tier1Settle < 0 {
		cfg.Tier1Settle = 0
	}
	if cfg.Tier2Settle < 0 {
		cfg.Tier2Settle = 0
	}

	scopes := make([]ports.KeyValueStore, 0, len(deps.Scopes))
	for _, scope := range deps.Scopes {
		if scope != nil {
			scopes = append(scopes, scope)
		}
	}

	return &StorageRecoveryManager{
		scopes:    scopes,
		databases: deps.Databases,
		restarter: deps.Restarter,
		clock:     deps.Clock,
		logger:    deps.Logger.With().Str("component", "storage_recovery").Logger(),
		cfg:       cfg,
	}
}

// PreClean runs the Tier 0 removal once before the first initialization attempt.
func (m *StorageRecoveryManager) PreClean(ctx context.Context) RecoveryReport {
	report := RecoveryReport{Tier: RecoveryTierKeys}
	m.removeKeys(ctx, m.cfg.Tier0Keys, &report)
	m.logger.Debug().Int("removed", report.Removed).Int("failed", report.Failed).Msg("pre-clean finished")
	return report
}

// Recover applies the given tier. Tier 2 always ends with domain.ErrReloadRequired:
// the caller must not keep using the process' bridge handles.
func (m *StorageRecoveryManager) Recover(ctx context.Context, tier int, bridge ports.Bridge) (RecoveryReport, error) {
	report := RecoveryReport{Tier: tier}

	switch {
	case tier <= RecoveryTierKeys:
		report.Tier = RecoveryTierKeys
		m.removeKeys(ctx, m.cfg.Tier0Keys, &report)
	case tier == RecoveryTierNamespace:
		if err := m.namespaceReset(ctx, bridge, &report); err != nil {
			return m.finish(report), err
		}
	default:
		report.Tier = RecoveryTierDatabases
		if err := m.namespaceReset(ctx, bridge, &report); err != nil {
			return m.finish(report), err
		}
		m.deleteDatabases(ctx, &report)
		if err := m.settle(ctx, m.cfg.Tier2Settle); err != nil {
			return m.finish(report), err
		}
		m.finish(report)
		return report, m.signalReload()
	}

	return m.finish(report), nil
}

func (m *StorageRecoveryManager) namespaceReset(ctx context.Context, bridge ports.Bridge, report *RecoveryReport) error {
	m.disconnectSessions(ctx, bridge, report)
	m.removeKeys(ctx, m.cfg.Tier0Keys, report)
	m.removeKeys(ctx, m.cfg.ExtraKeys, report)
	m.removeNamespaces(ctx, report)
	return m.settle(ctx, m.cfg.Tier1Settle)
}

func (m *StorageRecoveryManager) disconnectSessions(ctx context.Context, bridge ports.Bridge, report *RecoveryReport) {
	if bridge == nil {
		return
	}

	sessions, err := bridge.Sessions(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("list bridge sessions for recovery")
		report.fail(fmt.Errorf("list bridge sessions: %w", err))
		return
	}

	for _, session := range sessions {
		if err := bridge.Disconnect(ctx, session.Topic); err != nil {
			m.logger.Warn().Err(err).Str("topic", session.Topic).Msg("disconnect bridge session for recovery")
			report.fail(fmt.Errorf("disconnect session %q: %w", session.Topic, err))
			continue
		}
		report.Removed++
	}
}

func (m *StorageRecoveryManager) removeKeys(ctx context.Context, keys []string, report *RecoveryReport) {
	for _, scope := range m.scopes {
		for _, key := range keys {
			m.deleteKey(ctx, scope, key, report)
		}
	}
}

func (m *StorageRecoveryManager) removeNamespaces(ctx context.Context, report *RecoveryReport) {
	if len(m.cfg.NamespacePrefixes) == 0 {
		return
	}

	for _, scope := range m.scopes {
		keys, err := scope.Keys(ctx)
		if err != nil {
			m.logger.Warn().Err(err).Msg("list storage keys for recovery")
			report.fail(fmt.Errorf("list storage keys: %w", err))
			continue
		}
		for _, key := range keys {
			if hasAnyPrefix(key, m.cfg.NamespacePrefixes) {
				m.deleteKey(ctx, scope, key, report)
			}
		}
	}
}

func (m *StorageRecoveryManager) deleteKey(ctx context.Context, scope ports.KeyValueStore, key string, report *RecoveryReport) {
	if err := scope.Delete(ctx, key); err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("delete storage key for recovery")
		report.fail(fmt.Errorf("delete key %q: %w", key, err))
		return
	}
	report.Removed++
}

func (m *StorageRecoveryManager) deleteDatabases(ctx context.Context, report *RecoveryReport) {
	if m.databases == nil {
		return
	}

	for _, name := range m.cfg.Databases {
		if err := m.databases.Delete(ctx, name); err != nil {
			m.logger.Warn().Err(err).Str("database", name).Msg("delete embedded database for recovery")
			report.fail(fmt.Errorf("delete database %q: %w", name, err))
			continue
		}
		report.Removed++
	}
}

func (m *StorageRecoveryManager) settle(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	select {
	case <-m.clock.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *StorageRecoveryManager) signalReload() error {
	if !m.cfg.RestartOnReset || m.restarter == nil {
		m.logger.Warn().Msg("wallet storage reset; reload required")
		return domain.ErrReloadRequired
	}

	m.logger.Warn().Msg("wallet storage reset; restarting process")
	if err := m.restarter.Restart(); err != nil {
		m.logger.Error().Err(err).Msg("restart process after storage reset")
		return fmt.Errorf("restart process: %w", errors.Join(domain.ErrReloadRequired, err))
	}

	return domain.ErrReloadRequired
}

func (m *StorageRecoveryManager) finish(report RecoveryReport) RecoveryReport {
	observability.RecordRecovery(report.Tier, report.Removed, report.Failed)
	m.logger.Info().
		Int("tier", report.Tier).
		Int("removed", report.Removed).
		Int("failed", report.Failed).
		Msg("storage recovery finished")
	return report
}

func hasAnyPrefix(value string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}
