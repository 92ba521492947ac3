// Package config loads the wallet configuration from ~/.tracetrade/wallet.toml
// with TTW_ environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "TTW"
	configDir  = ".tracetrade"
	configFile = "wallet.toml"
)

type Config struct {
	Bridge   BridgeConfig   `mapstructure:"bridge"`
	App      AppConfig      `mapstructure:"app"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Recovery RecoveryConfig `mapstructure:"recovery"`
	Pairing  PairingConfig  `mapstructure:"pairing"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type BridgeConfig struct {
	URL         string        `mapstructure:"url"`
	Network     string        `mapstructure:"network"`
	ProjectID   string        `mapstructure:"project_id"`
	Debug       bool          `mapstructure:"debug"`
	CallTimeout time.Duration `mapstructure:"call_timeout"`
}

// AppConfig is the metadata the wallet shows the user when asked to pair.
type AppConfig struct {
	Name        string   `mapstructure:"name"`
	Description string   `mapstructure:"description"`
	URL         string   `mapstructure:"url"`
	Icons       []string `mapstructure:"icons"`
}

type StorageConfig struct {
	Dir         string `mapstructure:"dir"`
	DurablePath string `mapstructure:"durable_path"`
}

type RecoveryConfig struct {
	Tier0Keys         []string      `mapstructure:"tier0_keys"`
	NamespacePrefixes []string      `mapstructure:"namespace_prefixes"`
	Databases         []string      `mapstructure:"databases"`
	ExtraKeys         []string      `mapstructure:"extra_keys"`
	Tier1Settle       time.Duration `mapstructure:"tier1_settle"`
	Tier2Settle       time.Duration `mapstructure:"tier2_settle"`
	RestartOnReset    bool          `mapstructure:"restart_on_reset"`
}

type PairingConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxInitAttempts int           `mapstructure:"max_init_attempts"`
	ConflictPolicy  string        `mapstructure:"conflict_policy"`
	CacheKey        string        `mapstructure:"cache_key"`
	ExpectedPeer    PeerConfig    `mapstructure:"expected_peer"`
}

type PeerConfig struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// DatabaseDir is where the embedded bridge databases live.
func (c Config) DatabaseDir() string {
	return filepath.Join(c.Storage.Dir, "databases")
}

func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, configDir), nil
}

func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads path (the default location when empty) into v and decodes it. A
// missing file is not an error: defaults and environment still apply.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	dir, err := DefaultDir()
	if err != nil {
		return Config{}, err
	}
	SetDefaults(v, dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if strings.TrimSpace(path) == "" {
		path = filepath.Join(dir, configFile)
	}
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Storage.DurablePath == "" {
		cfg.Storage.DurablePath = filepath.Join(cfg.Storage.Dir, "storage.toml")
		v.Set("storage.durable_path", cfg.Storage.DurablePath)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if err := validateRelayURL(c.Bridge.URL); err != nil {
		errs = append(errs, err)
	}
	switch c.Bridge.Network {
	case "mainnet", "testnet", "previewnet":
	default:
		errs = append(errs, fmt.Errorf("bridge.network %q must be mainnet, testnet or previewnet", c.Bridge.Network))
	}
	if c.Bridge.CallTimeout <= 0 {
		errs = append(errs, fmt.Errorf("bridge.call_timeout must be positive"))
	}
	if strings.TrimSpace(c.App.Name) == "" {
		errs = append(errs, fmt.Errorf("app.name is required"))
	}
	if strings.TrimSpace(c.Storage.Dir) == "" {
		errs = append(errs, fmt.Errorf("storage.dir is required"))
	}
	if c.Recovery.Tier1Settle < 0 || c.Recovery.Tier2Settle < 0 {
		errs = append(errs, fmt.Errorf("recovery settle delays must not be negative"))
	}
	if c.Pairing.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("pairing.timeout must be positive"))
	}
	if c.Pairing.MaxInitAttempts < 1 {
		errs = append(errs, fmt.Errorf("pairing.max_init_attempts must be at least 1"))
	}
	switch strings.ToLower(strings.TrimSpace(c.Pairing.ConflictPolicy)) {
	case "replace", "reject":
	default:
		errs = append(errs, fmt.Errorf("pairing.conflict_policy %q must be replace or reject", c.Pairing.ConflictPolicy))
	}
	if strings.TrimSpace(c.Pairing.CacheKey) == "" {
		errs = append(errs, fmt.Errorf("pairing.cache_key is required"))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.Log.Level))); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Format)) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be console or json", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func validateRelayURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("bridge.url is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("bridge.url: %w", err)
	}
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return fmt.Errorf("bridge.url %q must use ws or wss", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("bridge.url %q has no host", raw)
	}
	return nil
}
