package main

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/curriculum-coverage/internal/types"
)

func TestAnalyzeCommand_MissingFlags(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "analyze")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "--curriculum is required")
}

func TestAnalyzeCommand_WritesReport(t *testing.T) {
	binaryPath := getBinaryPath(t)
	outPath := filepath.Join(t.TempDir(), "report.json")

	cmd := exec.Command(binaryPath, "analyze",
		"--curriculum", "testdata/curriculum.json",
		"--content", "testdata/content.json",
		"--out", outPath)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, string(output))

	assert.Contains(t, string(output), "Coverage: 40.0% (2/5 topics matched)")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var report types.CoverageReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 5, report.Overall.TotalTopics)
	assert.Equal(t, []string{"Pythagoras Theorem", "Probability"}, report.PerSubject["Mathematics"].UnmatchedTopics)
	assert.Equal(t, []string{"Waves"}, report.PerSubject["Physics"].UnmatchedTopics)
}

func TestAnalyzeCommand_ThresholdFromConfig(t *testing.T) {
	binaryPath := getBinaryPath(t)
	dir := t.TempDir()
	outPath := filepath.Join(dir, "report.json")
	configPath := filepath.Join(dir, "config.json")

	cfg := `{"curriculum": "testdata/curriculum.json", "content": "testdata/content.json", "threshold": 0.9}`
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0644))

	cmd := exec.Command(binaryPath, "analyze", "--config", configPath, "--out", outPath)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, string(output))

	var report types.CoverageReport
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 0.9, report.Threshold)
}

func TestAnalyzeCommand_LogLevelFromConfig(t *testing.T) {
	binaryPath := getBinaryPath(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")

	cfg := `{"curriculum": "testdata/curriculum.json", "content": "testdata/content.json", "log_level": "debug"}`
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0644))

	run := func(extra ...string) string {
		args := append([]string{"analyze", "--config", configPath, "--out", filepath.Join(dir, "report.json")}, extra...)
		cmd := exec.Command(binaryPath, args...)
		cmd.Env = envWithout("LOG_LEVEL", "LOG_FORMAT")
		output, err := cmd.CombinedOutput()
		require.NoError(t, err, string(output))
		return string(output)
	}

	assert.Contains(t, run(), "loaded config")
	assert.NotContains(t, run("--log-level", "warn"), "loaded config")
}

func TestAnalyzeCommand_InvalidThreshold(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "analyze",
		"--curriculum", "testdata/curriculum.json",
		"--content", "testdata/content.json",
		"--out", filepath.Join(t.TempDir(), "report.json"),
		"--threshold", "1.5")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "'threshold' failed 'lte' check")
}

func TestAnalyzeCommand_InvalidInput(t *testing.T) {
	binaryPath := getBinaryPath(t)
	bad := filepath.Join(t.TempDir(), "content.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"items": []}`), 0644))

	cmd := exec.Command(binaryPath, "analyze",
		"--curriculum", "testdata/curriculum.json",
		"--content", bad,
		"--out", filepath.Join(t.TempDir(), "report.json"))
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "coverage analysis failed")
}

func TestAnalyzeCommand_PersistNeedsDatabase(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "analyze",
		"--curriculum", "testdata/curriculum.json",
		"--content", "testdata/content.json",
		"--out", filepath.Join(t.TempDir(), "report.json"),
		"--persist")

	var env []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "DATABASE_URL=") {
			env = append(env, e)
		}
	}
	cmd.Env = env

	output, err := cmd.CombinedOutput()
	assert.Error(t, err)
	assert.Contains(t, string(output), "required with --persist")
}

func TestLabelFromPath(t *testing.T) {
	assert.Equal(t, "year10", labelFromPath("data/year10.json"))
	assert.Equal(t, "curriculum", labelFromPath("curriculum"))
}
