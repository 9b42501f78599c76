package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"energy-agent/internal/config"
	"energy-agent/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestSetupLogger(t *testing.T) {
	l := logrus.New()

	setupLogger(l, config.LogConfig{Level: "debug", Format: "json"})
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)

	setupLogger(l, config.LogConfig{Level: "nonsense", Format: "text"})
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
}

func TestVersion(t *testing.T) {
	out := execute(t, "version")
	assert.Contains(t, out, "energy-agent version dev")
}

func TestSimulateThenRecommend(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	logger.SetOutput(&bytes.Buffer{})
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	dataset := filepath.Join(dir, "data.csv")
	out := execute(t, "simulate", "--days", "3", "--out", dataset, "--seed", "7")
	assert.Contains(t, out, "Wrote 72 hourly rows")

	b, err := os.ReadFile(dataset)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Len(t, lines, 73)
	assert.Equal(t, "timestamp,consumption_kwh,temperature_c", lines[0])

	t.Setenv("ENERGY_AGENT_HISTORY_PATH", dataset)
	out = execute(t, "recommend", "--temps", "25,20", "--max-temp", "22", "--min-comfort-temp", "18", "--lang", "pt")

	var rec models.Recommendation
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Contains(t, rec.ActionableScript, "18.0C")
	assert.InDelta(t, 5.0, rec.EstimatedCostSavingsEUR, 1e-9)
	assert.InDelta(t, 4.66, rec.EstimatedCarbonFootprintReductionKgCO2, 1e-9)
	assert.Len(t, rec.RecommendationID, 5)
}

func TestSimulate_RejectsNonPositiveDays(t *testing.T) {
	rootCmd.SetArgs([]string{"simulate", "--days", "0", "--out", filepath.Join(t.TempDir(), "x.csv")})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--days must be positive")
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	done := make(chan string)
	go func() {
		b, _ := io.ReadAll(r)
		done <- string(b)
	}()

	fn()
	require.NoError(t, w.Close())
	return <-done
}

func TestRecommend_StdoutIsOnlyJSON(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	logger.SetOutput(&bytes.Buffer{})
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	dataset := filepath.Join(dir, "data.csv")
	execute(t, "simulate", "--days", "2", "--out", dataset, "--seed", "3")
	t.Setenv("ENERGY_AGENT_HISTORY_PATH", dataset)

	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	rootCmd.SetArgs([]string{"recommend", "--temps", "30", "--max-temp", "22", "--min-comfort-temp", "18", "--lang", "en"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	out := captureStdout(t, func() {
		require.NoError(t, rootCmd.Execute())
	})

	var rec models.Recommendation
	require.NoError(t, json.Unmarshal([]byte(out), &rec), "stdout: %q", out)
	assert.NotEmpty(t, rec.ActionableScript)
}

func TestSimulationStart(t *testing.T) {
	now := time.Date(2024, 10, 27, 14, 37, 12, 0, time.FixedZone("CET", 3600))

	start := simulationStart(now, 30)

	assert.Equal(t, time.UTC, start.Location())
	assert.Equal(t, time.Date(2024, 9, 27, 13, 0, 0, 0, time.UTC), start)
}
