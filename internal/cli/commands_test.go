package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/armadafleet/fleetsynth/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func resetGenerateFlags() {
	genFrom, genTo, genLast = "", "", ""
	genVessel, genSensors, genOutDir, genTransform = "", "", "", ""
	genTee, genNoOscillation = false, false
	genNoise = 0.05
}

func TestGenerateNDJSON(t *testing.T) {
	resetGenerateFlags()
	out, err := execute(t, "generate", "-q",
		"--from", "2024-01-01", "--to", "2024-01-02",
		"--seed", "42", "--sensors", "vessel_speed", "-o", "ndjson")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 101)

	var first, last map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[100]), &last))

	assert.Equal(t, float64(0), first["time_percent"])
	assert.Equal(t, float64(100), last["time_percent"])
	assert.Equal(t, "2024-01-01T00:00:00.000Z", first["formatted_time"])
	assert.Equal(t, "Transit", first["operating_mode"])
	assert.Contains(t, first, "vessel_speed")
	assert.NotContains(t, first, "engine_main_temp")
}

func TestGenerateRejectsReversedRange(t *testing.T) {
	resetGenerateFlags()
	_, err := execute(t, "generate", "-q", "--from", "2024-01-08", "--to", "2024-01-01")
	assert.Error(t, err)
}

func TestListSchedules(t *testing.T) {
	out, err := execute(t, "list-schedules", "-q")
	require.NoError(t, err)

	short := strings.Index(out, "short")
	monthly := strings.Index(out, "monthly")
	require.True(t, short >= 0 && monthly >= 0, out)
	assert.Less(t, short, monthly)
	assert.Contains(t, out, "unbounded")
}

func TestDescribeSchedule(t *testing.T) {
	out, err := execute(t, "describe-schedule", "-q", "daily")
	require.NoError(t, err)
	assert.Contains(t, out, "Schedule: daily")
	assert.Contains(t, out, "DP Operations")
	assert.Contains(t, out, "up to 24h")

	_, err = execute(t, "describe-schedule", "-q", "fortnightly")
	assert.Error(t, err)
}

func TestListSensorsCategory(t *testing.T) {
	out, err := execute(t, "list-sensors", "-q", "--category", "navigation")
	require.NoError(t, err)
	assert.Contains(t, out, "vessel_speed")
	assert.NotContains(t, out, "engine_main_temp")

	_, err = execute(t, "list-sensors", "-q", "--category", "Galley")
	assert.Error(t, err)
	listSensorsCategory = ""
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "fleetsynth v"+Version))
}

func TestGenerateToDirectoryWithTee(t *testing.T) {
	resetGenerateFlags()
	t.Cleanup(resetGenerateFlags)
	dir := t.TempDir()
	out, err := execute(t, "generate", "-q",
		"--last", "P7D", "--seed", "7", "--sensors", "fuel_flow_rate",
		"-o", "json", "--out", dir, "--tee")
	require.NoError(t, err)

	var series map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &series))
	assert.Equal(t, "weekly", series["schedule"])

	matches, err := filepath.Glob(filepath.Join(dir, "fleetsynth_fleet_*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestGenerateRejectsNegativeNoise(t *testing.T) {
	resetGenerateFlags()
	t.Cleanup(resetGenerateFlags)

	_, err := execute(t, "generate", "-q", "--from", "2024-01-01", "--to", "2024-01-02", "--noise=-1")
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "noise", verr.Field)
}
