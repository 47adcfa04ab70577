package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagCommand() (*cobra.Command, *string, *int) {
	cmd := &cobra.Command{Use: "test"}
	host := cmd.Flags().String("host", "127.0.0.1", "")
	port := cmd.Flags().Int("port", 8787, "")
	return cmd, host, port
}

func TestApplyEnvDefaults(t *testing.T) {
	t.Setenv("FLEETSYNTH_HOST", "0.0.0.0")
	t.Setenv("FLEETSYNTH_PORT", "9000")

	cmd, host, port := newFlagCommand()
	require.NoError(t, applyEnvDefaults(cmd))
	assert.Equal(t, "0.0.0.0", *host)
	assert.Equal(t, 9000, *port)
}

func TestApplyEnvDefaultsFlagWins(t *testing.T) {
	t.Setenv("FLEETSYNTH_PORT", "9000")

	cmd, _, port := newFlagCommand()
	require.NoError(t, cmd.Flags().Set("port", "7000"))
	require.NoError(t, applyEnvDefaults(cmd))
	assert.Equal(t, 7000, *port)
}

func TestApplyEnvDefaultsInvalidValue(t *testing.T) {
	t.Setenv("FLEETSYNTH_PORT", "eighty")

	cmd, _, _ := newFlagCommand()
	err := applyEnvDefaults(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FLEETSYNTH_PORT")
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("FLEETSYNTH_RATE=5hz\n"), 0644))

	t.Setenv("FLEETSYNTH_RATE", "")
	os.Unsetenv("FLEETSYNTH_RATE")

	require.NoError(t, loadEnvFile(path, true))
	assert.Equal(t, "5hz", os.Getenv("FLEETSYNTH_RATE"))
}

func TestLoadEnvFileMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.env")

	assert.NoError(t, loadEnvFile(missing, false))
	assert.Error(t, loadEnvFile(missing, true))
	assert.NoError(t, loadEnvFile("", true))
}
