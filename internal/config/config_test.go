package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "wdicli/internal/errors"
	"wdicli/internal/shared/testutil"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "data_main.csv", cfg.Input.MainFile)
	assert.Equal(t, "data_country.csv", cfg.Input.MetadataFile)
	assert.Equal(t, "Country Code", cfg.Input.EntityColumn)
	assert.Equal(t, "Indicator Code", cfg.Input.IndicatorColumn)
	assert.Equal(t, []string{"Income Group"}, cfg.Input.MetadataAttributes)
	assert.Equal(t, 1048575, cfg.Export.RowsPerSheet)
	assert.True(t, cfg.Export.SplitByIndicator)
	assert.False(t, cfg.Export.CSVSidecar)
	assert.Equal(t, "global_indicator_output.xlsx", cfg.Export.OutputFile)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
input:
  main_file: wdi.csv
export:
  rows_per_sheet: 500
  split_by_indicator: false
logging:
  level: debug
  output: stdout
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	cfg, err := Load(configFile)
	require.NoError(t, err)

	// File values override defaults
	assert.Equal(t, "wdi.csv", cfg.Input.MainFile)
	assert.Equal(t, 500, cfg.Export.RowsPerSheet)
	assert.False(t, cfg.Export.SplitByIndicator)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Untouched fields keep defaults
	assert.Equal(t, "data_country.csv", cfg.Input.MetadataFile)
	assert.Equal(t, "global_indicator_output.xlsx", cfg.Export.OutputFile)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
export:
  rows_per_sheet: 500
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	t.Setenv("WDI_EXPORT_ROWS_PER_SHEET", "250")
	t.Setenv("WDI_INPUT_METADATA_ATTRIBUTES", "Income Group,Region")

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Export.RowsPerSheet)
	assert.Equal(t, []string{"Income Group", "Region"}, cfg.Input.MetadataAttributes)
}

func TestValidateRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "zero rows per sheet",
			mutate: func(c *Config) { c.Export.RowsPerSheet = 0 },
		},
		{
			name:   "rows per sheet above Excel limit",
			mutate: func(c *Config) { c.Export.RowsPerSheet = 2000000 },
		},
		{
			name:   "empty main file",
			mutate: func(c *Config) { c.Input.MainFile = "" },
		},
		{
			name:   "empty entity column",
			mutate: func(c *Config) { c.Input.EntityColumn = "" },
		},
		{
			name:   "unknown log level",
			mutate: func(c *Config) { c.Logging.Level = "verbose" },
		},
		{
			name:   "unknown log output",
			mutate: func(c *Config) { c.Logging.Output = "syslog" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrConfigInvalid))
			assert.Equal(t, 2, apperrors.ExitCode(err))
		})
	}
}

func TestNewPaths(t *testing.T) {
	base := t.TempDir()
	paths := NewPaths(base, Default().Paths)

	assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
	assert.Equal(t, filepath.Join(base, "output"), paths.OutputDir)
	assert.Equal(t, filepath.Join(base, "logs"), paths.LogsDir)
	assert.Equal(t, filepath.Join(base, "data", "data_main.csv"), paths.GetDataPath("data_main.csv"))
	assert.Equal(t, filepath.Join(base, "output", "out.xlsx"), paths.GetOutputPath("out.xlsx"))
	assert.Equal(t, filepath.Join(base, "logs", "reshape.log"), paths.GetLogPath("reshape.log"))
}

func TestNewPathsKeepsAbsoluteEntries(t *testing.T) {
	base := t.TempDir()
	abs := t.TempDir()

	cfg := Default().Paths
	cfg.OutputDir = abs

	paths := NewPaths(base, cfg)
	assert.Equal(t, abs, paths.OutputDir)
	assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	paths := NewPaths(base, Default().Paths)

	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.DataDir, paths.OutputDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// Second call is a no-op
	require.NoError(t, paths.EnsureDirectories())
}

func TestLogPathResolution(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	prev := slog.Default()
	slog.SetDefault(logger)
	t.Cleanup(func() { slog.SetDefault(prev) })

	base := t.TempDir()
	paths := NewPaths(base, Default().Paths)
	paths.LogPathResolution()

	testutil.AssertLogContains(t, handler, slog.LevelDebug, "Resolved application paths")
	assert.True(t, handler.ContainsAttr("base_dir", base))
	assert.True(t, handler.ContainsAttr("data_dir", filepath.Join(base, "data")))
	assert.True(t, handler.ContainsAttr("output_dir", filepath.Join(base, "output")))
}

func TestResolvePathsUsesConfiguredBaseDir(t *testing.T) {
	base := t.TempDir()

	cfg := Default()
	cfg.Paths.BaseDir = base

	paths, err := cfg.ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, base, paths.BaseDir)
	assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
}
