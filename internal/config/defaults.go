package config

import (
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultRelayURL       = "ws://127.0.0.1:8787/bridge"
	DefaultNetwork        = "testnet"
	DefaultCacheKey       = "tracetrade:wallet:pairing"
	DefaultConflictPolicy = "replace"
)

var (
	defaultTier0Keys = []string{
		"wc@2:core:0.3//messages",
		"wc@2:core:0.3//subscription",
		"wc@2:core:0.3//history",
		"wc@2:core:0.3//expirer",
	}
	defaultNamespacePrefixes = []string{"wc@2:", "walletconnect", "tracetrade:wallet:"}
	defaultDatabases         = []string{"relay-sessions", "relay-keyvaluestorage"}
)

// Default is the configuration used when no file or environment overrides exist.
func Default(dir string) Config {
	return Config{
		Bridge: BridgeConfig{
			URL:         DefaultRelayURL,
			Network:     DefaultNetwork,
			CallTimeout: 30 * time.Second,
		},
		App: AppConfig{
			Name:        "TraceTrade",
			Description: "Supply-chain trade settlement",
			URL:         "https://tracetrade.app",
			Icons:       []string{},
		},
		Storage: StorageConfig{
			Dir:         dir,
			DurablePath: filepath.Join(dir, "storage.toml"),
		},
		Recovery: RecoveryConfig{
			Tier0Keys:         append([]string(nil), defaultTier0Keys...),
			NamespacePrefixes: append([]string(nil), defaultNamespacePrefixes...),
			Databases:         append([]string(nil), defaultDatabases...),
			ExtraKeys:         []string{},
			Tier1Settle:       3 * time.Second,
			Tier2Settle:       7 * time.Second,
		},
		Pairing: PairingConfig{
			Timeout:         60 * time.Second,
			MaxInitAttempts: 3,
			ConflictPolicy:  DefaultConflictPolicy,
			CacheKey:        DefaultCacheKey,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// SetDefaults registers every key so environment overrides apply without a file.
func SetDefaults(v *viper.Viper, dir string) {
	d := Default(dir)

	v.SetDefault("bridge.url", d.Bridge.URL)
	v.SetDefault("bridge.network", d.Bridge.Network)
	v.SetDefault("bridge.project_id", d.Bridge.ProjectID)
	v.SetDefault("bridge.debug", d.Bridge.Debug)
	v.SetDefault("bridge.call_timeout", d.Bridge.CallTimeout)

	v.SetDefault("app.name", d.App.Name)
	v.SetDefault("app.description", d.App.Description)
	v.SetDefault("app.url", d.App.URL)
	v.SetDefault("app.icons", d.App.Icons)

	v.SetDefault("storage.dir", d.Storage.Dir)
	v.SetDefault("storage.durable_path", "")

	v.SetDefault("recovery.tier0_keys", d.Recovery.Tier0Keys)
	v.SetDefault("recovery.namespace_prefixes", d.Recovery.NamespacePrefixes)
	v.SetDefault("recovery.databases", d.Recovery.Databases)
	v.SetDefault("recovery.extra_keys", d.Recovery.ExtraKeys)
	v.SetDefault("recovery.tier1_settle", d.Recovery.Tier1Settle)
	v.SetDefault("recovery.tier2_settle", d.Recovery.Tier2Settle)
	v.SetDefault("recovery.restart_on_reset", d.Recovery.RestartOnReset)

	v.SetDefault("pairing.timeout", d.Pairing.Timeout)
	v.SetDefault("pairing.max_init_attempts", d.Pairing.MaxInitAttempts)
	v.SetDefault("pairing.conflict_policy", d.Pairing.ConflictPolicy)
	v.SetDefault("pairing.cache_key", d.Pairing.CacheKey)
	v.SetDefault("pairing.expected_peer.name", d.Pairing.ExpectedPeer.Name)
	v.SetDefault("pairing.expected_peer.url", d.Pairing.ExpectedPeer.URL)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("metrics.addr", d.Metrics.Addr)
}
