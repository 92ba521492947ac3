package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	v := viper.New()
	cfg, err := Load(v, "")
	require.NoError(t, err)

	dir := filepath.Join(home, ".tracetrade")
	assert.Equal(t, DefaultRelayURL, cfg.Bridge.URL)
	assert.Equal(t, "testnet", cfg.Bridge.Network)
	assert.Equal(t, dir, cfg.Storage.Dir)
	assert.Equal(t, filepath.Join(dir, "storage.toml"), cfg.Storage.DurablePath)
	assert.Equal(t, filepath.Join(dir, "storage.toml"), v.GetString("storage.durable_path"))
	assert.Equal(t, filepath.Join(dir, "databases"), cfg.DatabaseDir())
	assert.Equal(t, 60*time.Second, cfg.Pairing.Timeout)
	assert.Equal(t, 3, cfg.Pairing.MaxInitAttempts)
	assert.Equal(t, "replace", cfg.Pairing.ConflictPolicy)
	assert.Equal(t, 3*time.Second, cfg.Recovery.Tier1Settle)
	assert.Equal(t, 7*time.Second, cfg.Recovery.Tier2Settle)
	assert.Equal(t, []string{"relay-sessions", "relay-keyvaluestorage"}, cfg.Recovery.Databases)
	assert.False(t, cfg.Recovery.RestartOnReset)
}

func TestWriteDefaultThenLoadRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "nested", "wallet.toml")
	written, err := WriteDefault(path, false)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, written.Bridge, loaded.Bridge)
	assert.Equal(t, written.Storage, loaded.Storage)
	assert.Equal(t, written.Pairing, loaded.Pairing)
	assert.Equal(t, written.Log, loaded.Log)
	assert.Equal(t, written.Recovery.Tier0Keys, loaded.Recovery.Tier0Keys)
	assert.Equal(t, written.Recovery.NamespacePrefixes, loaded.Recovery.NamespacePrefixes)
	assert.Equal(t, written.Recovery.Tier2Settle, loaded.Recovery.Tier2Settle)
	assert.Equal(t, written.App.Name, loaded.App.Name)

	_, err = WriteDefault(path, false)
	assert.ErrorIs(t, err, ErrConfigExists)

	_, err = WriteDefault(path, true)
	assert.NoError(t, err)
}

func TestLoadAppliesFileAndEnvironmentOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "wallet.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[bridge]
url = "wss://relay.tracetrade.app/bridge"
network = "mainnet"

[pairing]
timeout = "2m"
conflict_policy = "reject"

[pairing.expected_peer]
name = "HashPack"
`), 0o600))

	t.Setenv("TTW_PAIRING_TIMEOUT", "90s")
	t.Setenv("TTW_RECOVERY_RESTART_ON_RESET", "true")
	t.Setenv("TTW_LOG_FORMAT", "json")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "wss://relay.tracetrade.app/bridge", cfg.Bridge.URL)
	assert.Equal(t, "mainnet", cfg.Bridge.Network)
	assert.Equal(t, 90*time.Second, cfg.Pairing.Timeout)
	assert.Equal(t, "reject", cfg.Pairing.ConflictPolicy)
	assert.Equal(t, "HashPack", cfg.Pairing.ExpectedPeer.Name)
	assert.True(t, cfg.Recovery.RestartOnReset)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "wallet.toml")
	require.NoError(t, os.WriteFile(path, []byte("[bridge\nurl = "), 0o600))

	_, err := Load(viper.New(), path)
	assert.ErrorContains(t, err, "read config")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "missing relay url", mutate: func(c *Config) { c.Bridge.URL = "" }, wantErr: "bridge.url is required"},
		{name: "http relay url", mutate: func(c *Config) { c.Bridge.URL = "http://127.0.0.1:8787" }, wantErr: "must use ws or wss"},
		{name: "unknown network", mutate: func(c *Config) { c.Bridge.Network = "devnet" }, wantErr: `bridge.network "devnet"`},
		{name: "zero pairing timeout", mutate: func(c *Config) { c.Pairing.Timeout = 0 }, wantErr: "pairing.timeout must be positive"},
		{name: "no init attempts", mutate: func(c *Config) { c.Pairing.MaxInitAttempts = 0 }, wantErr: "max_init_attempts"},
		{name: "unknown conflict policy", mutate: func(c *Config) { c.Pairing.ConflictPolicy = "merge" }, wantErr: `conflict_policy "merge"`},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "log.level"},
		{name: "negative settle", mutate: func(c *Config) { c.Recovery.Tier1Settle = -time.Second }, wantErr: "settle delays"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default("/tmp/tracetrade")
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	t.Parallel()

	cfg := Default("")
	cfg.App.Name = ""
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.name is required")
	assert.Contains(t, err.Error(), "storage.dir is required")
	assert.Contains(t, err.Error(), `log.format "xml"`)
}
