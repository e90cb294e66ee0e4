package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "healthplots/internal/errors"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "default configuration with no env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultInputFile, cfg.Paths.InputFile)
				assert.Equal(t, DefaultPlotsDir, cfg.Paths.PlotsDir)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, 4, cfg.Plot.Workers)
				assert.Equal(t, 30, cfg.Plot.HistogramBins)
				assert.Equal(t, ":8080", cfg.Server.Addr)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
			},
		},
		{
			name: "environment overrides",
			env: map[string]string{
				"HEALTHPLOTS_PATHS_INPUT_FILE":         "/tmp/patients.csv",
				"HEALTHPLOTS_PLOT_WORKERS":             "8",
				"HEALTHPLOTS_LOGGING_LEVEL":            "debug",
				"HEALTHPLOTS_SERVER_READ_TIMEOUT":      "30s",
				"HEALTHPLOTS_TELEMETRY_TRACE_EXPORTER": "stdout",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/tmp/patients.csv", cfg.Paths.InputFile)
				assert.Equal(t, 8, cfg.Plot.Workers)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "stdout", cfg.Telemetry.TraceExporter)
				// untouched values keep their defaults
				assert.Equal(t, DefaultPlotsDir, cfg.Paths.PlotsDir)
			},
		},
		{
			name: "yaml file overlay",
			file: `
paths:
  input_file: data/other.csv
  plots_dir: out/plots
plot:
  workers: 2
  histogram_bins: 20
server:
  addr: ":9090"
  write_timeout: 1m
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "data/other.csv", cfg.Paths.InputFile)
				assert.Equal(t, "out/plots", cfg.Paths.PlotsDir)
				assert.Equal(t, DefaultReportsDir, cfg.Paths.ReportsDir)
				assert.Equal(t, 2, cfg.Plot.Workers)
				assert.Equal(t, 20, cfg.Plot.HistogramBins)
				assert.Equal(t, ":9090", cfg.Server.Addr)
				assert.Equal(t, time.Minute, cfg.Server.WriteTimeout)
			},
		},
		{
			name: "environment wins over file",
			file: "plot:\n  workers: 2\n",
			env:  map[string]string{"HEALTHPLOTS_PLOT_WORKERS": "6"},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 6, cfg.Plot.Workers)
			},
		},
		{
			name:    "invalid worker count",
			env:     map[string]string{"HEALTHPLOTS_PLOT_WORKERS": "0"},
			wantErr: true,
		},
		{
			name:    "invalid trace exporter",
			env:     map[string]string{"HEALTHPLOTS_TELEMETRY_TRACE_EXPORTER": "jaeger"},
			wantErr: true,
		},
		{
			name:    "unparseable env value",
			env:     map[string]string{"HEALTHPLOTS_PLOT_WIDTH": "wide"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "paths: [unterminated",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			} else {
				// keep the search away from any config.yaml in the package dir
				t.Chdir(t.TempDir())
			}

			cfg, err := Load(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig), err.Error())
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config from file")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_SearchesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "config.yaml"),
		[]byte("paths:\n  plots_dir: charts\n"), 0644))
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "charts", cfg.Paths.PlotsDir)
}

func TestValidate_NormalisesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = ""
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, "logs/healthplots.log", cfg.Logging.FilePath)
}
