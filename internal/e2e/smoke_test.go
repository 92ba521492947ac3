package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	stdout, stderr, err := runTTW(t, binaryPath, home, "version")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.NotEmpty(t, stdout)

	_, stderr, err = runTTW(t, binaryPath, home, "config", "init")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.FileExists(t, filepath.Join(home, ".tracetrade", "wallet.toml"))

	stdout, stderr, err = runTTW(t, binaryPath, home, "status", "--json")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, `"state": "disconnected"`)
	assert.Contains(t, stdout, "Bridge unavailable")
}

func TestSendWithoutPairingFails(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	_, _, err := runTTW(t, binaryPath, home, "send", "--account", "0.0.1234", "--tx-base64", "AQI=")
	require.Error(t, err)
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "ttw-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/ttw")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build ttw binary: %s", string(output))
	return binaryPath
}

func runTTW(t *testing.T, binaryPath, home string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(),
		"HOME="+home,
		"TTW_BRIDGE_URL=ws://127.0.0.1:1/bridge",
		"TTW_RECOVERY_TIER1_SETTLE=0s",
		"TTW_RECOVERY_TIER2_SETTLE=0s",
	)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
