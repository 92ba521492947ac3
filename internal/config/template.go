package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

var ErrConfigExists = errors.New("config file already exists")

// fileConfig is the on-disk shape. Durations are written as Go duration strings.
type fileConfig struct {
	Bridge struct {
		URL         string `toml:"url"`
		Network     string `toml:"network"`
		ProjectID   string `toml:"project_id"`
		Debug       bool   `toml:"debug"`
		CallTimeout string `toml:"call_timeout"`
	} `toml:"bridge"`
	App struct {
		Name        string   `toml:"name"`
		Description string   `toml:"description"`
		URL         string   `toml:"url"`
		Icons       []string `toml:"icons"`
	} `toml:"app"`
	Storage struct {
		Dir string `toml:"dir"`
	} `toml:"storage"`
	Recovery struct {
		Tier0Keys         []string `toml:"tier0_keys"`
		NamespacePrefixes []string `toml:"namespace_prefixes"`
		Databases         []string `toml:"databases"`
		ExtraKeys         []string `toml:"extra_keys"`
		Tier1Settle       string   `toml:"tier1_settle"`
		Tier2Settle       string   `toml:"tier2_settle"`
		RestartOnReset    bool     `toml:"restart_on_reset"`
	} `toml:"recovery"`
	Pairing struct {
		Timeout         string `toml:"timeout"`
		MaxInitAttempts int    `toml:"max_init_attempts"`
		ConflictPolicy  string `toml:"conflict_policy"`
		CacheKey        string `toml:"cache_key"`
		ExpectedPeer    struct {
			Name string `toml:"name"`
			URL  string `toml:"url"`
		} `toml:"expected_peer"`
	} `toml:"pairing"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
	Metrics struct {
		Addr string `toml:"addr"`
	} `toml:"metrics"`
}

func toFile(c Config) fileConfig {
	var f fileConfig
	f.Bridge.URL = c.Bridge.URL
	f.Bridge.Network = c.Bridge.Network
	f.Bridge.ProjectID = c.Bridge.ProjectID
	f.Bridge.Debug = c.Bridge.Debug
	f.Bridge.CallTimeout = c.Bridge.CallTimeout.String()
	f.App.Name = c.App.Name
	f.App.Description = c.App.Description
	f.App.URL = c.App.URL
	f.App.Icons = nonNil(c.App.Icons)
	f.Storage.Dir = c.Storage.Dir
	f.Recovery.Tier0Keys = nonNil(c.Recovery.Tier0Keys)
	f.Recovery.NamespacePrefixes = nonNil(c.Recovery.NamespacePrefixes)
	f.Recovery.Databases = nonNil(c.Recovery.Databases)
	f.Recovery.ExtraKeys = nonNil(c.Recovery.ExtraKeys)
	f.Recovery.Tier1Settle = c.Recovery.Tier1Settle.String()
	f.Recovery.Tier2Settle = c.Recovery.Tier2Settle.String()
	f.Recovery.RestartOnReset = c.Recovery.RestartOnReset
	f.Pairing.Timeout = c.Pairing.Timeout.String()
	f.Pairing.MaxInitAttempts = c.Pairing.MaxInitAttempts
	f.Pairing.ConflictPolicy = c.Pairing.ConflictPolicy
	f.Pairing.CacheKey = c.Pairing.CacheKey
	f.Pairing.ExpectedPeer.Name = c.Pairing.ExpectedPeer.Name
	f.Pairing.ExpectedPeer.URL = c.Pairing.ExpectedPeer.URL
	f.Log.Level = c.Log.Level
	f.Log.Format = c.Log.Format
	f.Metrics.Addr = c.Metrics.Addr
	return f
}

// WriteDefault writes the default configuration to path. An existing file is
// only replaced when overwrite is set.
func WriteDefault(path string, overwrite bool) (Config, error) {
	dir := filepath.Dir(path)
	cfg := Default(dir)

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("stat config: %w", err)
		}
	}

	content, err := toml.Marshal(toFile(cfg))
	if err != nil {
		return Config{}, fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Config{}, fmt.Errorf("create config dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".wallet-*.toml.tmp")
	if err != nil {
		return Config{}, fmt.Errorf("create temp config: %w", err)
	}
	tmpPath := tmpFile.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmpFile.Write(content); err != nil {
		_ = tmpFile.Close()
		cleanup()
		return Config{}, fmt.Errorf("write temp config: %w", err)
	}
	if err := tmpFile.Chmod(0o600); err != nil {
		_ = tmpFile.Close()
		cleanup()
		return Config{}, fmt.Errorf("chmod temp config: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		cleanup()
		return Config{}, fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return Config{}, fmt.Errorf("replace config: %w", err)
	}

	return cfg, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
