package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sells-group/icao-airports/internal/monitoring"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{"download", "filter", "split-polygons", "assign", "cluster", "cross-check", "compare", "borders"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Aliases(t *testing.T) {
	aliases := map[string]string{
		"dl":                   "download",
		"split_polygon":        "split-polygons",
		"airports_per_polygon": "assign",
		"exp_cluster":          "cluster",
		"exp_cross_check_easa": "cross-check",
		"exp_mercator_vs_not":  "compare",
	}
	for alias, name := range aliases {
		c, _, err := rootCmd.Find([]string{alias})
		require.NoError(t, err, alias)
		assert.Equal(t, name, c.Name(), alias)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "icao-airports", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestDownloadCommand_Flags(t *testing.T) {
	for _, name := range []string{"url", "out", "if-changed"} {
		assert.NotNil(t, downloadCmd.Flags().Lookup(name), "download should have --%s flag", name)
	}
	assert.Equal(t, "false", downloadCmd.Flags().Lookup("if-changed").DefValue)
}

func TestAssignCommand_Flags(t *testing.T) {
	for _, name := range []string{"space", "in", "out"} {
		assert.NotNil(t, assignCmd.Flags().Lookup(name), "assign should have --%s flag", name)
	}
}

func TestBordersCommand_Flags(t *testing.T) {
	flag := bordersCmd.Flags().Lookup("prefix-len")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
}

func TestCompareCommand_Flags(t *testing.T) {
	flag := compareCmd.Flags().Lookup("files")
	require.NotNil(t, flag)
	assert.Equal(t, "stringSlice", flag.Value.Type())
}

func TestRootCmd_PersistentPreRunE_WithValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
source:
  path: data/airports.csv
filter:
  outlier_threshold_km: 500
log:
  level: info
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(configContent), 0o644))
	t.Chdir(tmpDir)

	oldCfg := cfg
	cfg = nil
	defer func() { cfg = oldCfg }()

	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	require.NotNil(t, cfg)
	assert.Equal(t, "data/airports.csv", cfg.Source.Path)
	assert.Equal(t, 500.0, cfg.Filter.OutlierThresholdKM)
	assert.NotEmpty(t, runID)
	assert.NotNil(t, metrics)
}

func TestRootCmd_PersistentPreRunE_NoConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	oldCfg := cfg
	cfg = nil
	defer func() { cfg = oldCfg }()

	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	require.NotNil(t, cfg)
	assert.Equal(t, "airports.csv", cfg.Source.Path)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestRootCmd_PersistentPreRunE_BadLogLevel(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
log:
  level: NOT_A_LEVEL
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(configContent), 0o644))
	t.Chdir(tmpDir)

	oldCfg := cfg
	cfg = nil
	defer func() { cfg = oldCfg }()

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init logger")
}

func TestRootCmd_PersistentPreRunE_BadConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte("source: [unclosed"), 0o644))
	t.Chdir(tmpDir)

	oldCfg := cfg
	cfg = nil
	defer func() { cfg = oldCfg }()

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestWriteOutput_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.txt")
	require.NoError(t, writeOutput(path, []byte("x")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestLogRunSummary(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	m, err := monitoring.NewMetrics()
	require.NoError(t, err)
	m.AddParsed(monitoring.OutcomeRetained, 6)
	m.AddParsed(monitoring.OutcomeMalformed, 1)
	m.AddMismatches(2)

	snap := logRunSummary(m)
	require.NotNil(t, snap)
	assert.Equal(t, 6, snap.Parsed[monitoring.OutcomeRetained])
	assert.Equal(t, 1, snap.Parsed[monitoring.OutcomeMalformed])

	entries := logs.FilterMessage("run summary").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 2, entries[0].ContextMap()["mismatches"])
}

func TestLogRunSummary_NilMetrics(t *testing.T) {
	snap := logRunSummary(nil)
	require.NotNil(t, snap)
	assert.Empty(t, snap.Parsed)
}
