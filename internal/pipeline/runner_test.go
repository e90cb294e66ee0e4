package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthplots/internal/config"
	apperrors "healthplots/internal/errors"
	"healthplots/internal/infrastructure"
	"healthplots/internal/metrics"
	"healthplots/internal/plot"
	"healthplots/internal/shared/testutil"
)

func testConfig(t *testing.T, input string) (*config.Config, *config.Paths) {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.InputFile = input
	cfg.Plot.Width = 600
	cfg.Plot.Height = 400
	cfg.Plot.Workers = 2
	return cfg, config.ResolvePaths(t.TempDir(), cfg)
}

func TestParseProfile(t *testing.T) {
	p, err := ParseProfile("")
	require.NoError(t, err)
	assert.Equal(t, ProfileHealthcare, p)

	p, err = ParseProfile("vehicles")
	require.NoError(t, err)
	assert.Equal(t, ProfileVehicles, p)

	_, err = ParseProfile("boats")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestRunner_Healthcare(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	cfg, paths := testConfig(t, testutil.WritePatientCSV(t, ""))

	runner, err := NewRunner(cfg, paths, WithLogger(logger))
	require.NoError(t, err)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, summary.Status)
	assert.NotEmpty(t, summary.RunID)
	assert.NotEmpty(t, summary.TraceID)
	assert.Equal(t, 14, summary.RowsRead)
	assert.Equal(t, 12, summary.RowsCleaned)
	assert.Equal(t, 5, summary.RowsValid)
	assert.Equal(t, 2, summary.Dropped["length_stay"])

	require.Len(t, summary.Plots, 8)
	for _, f := range summary.Plots {
		assert.FileExists(t, f)
		assert.Equal(t, paths.PlotsDir, filepath.Dir(f))
	}
	assert.Contains(t, summary.Plots, filepath.Join(paths.PlotsDir, plot.CategoriesFile))

	assert.ElementsMatch(t, []string{paths.CleanCSV, paths.Workbook, paths.DescribeCSV}, summary.Reports)
	for _, f := range summary.Reports {
		assert.FileExists(t, f)
	}

	var stages []string
	for _, s := range summary.Stages {
		stages = append(stages, s.Stage)
		assert.Equal(t, StatusCompleted, s.Status)
	}
	assert.Equal(t, []string{StageLoad, StageDescribe, StagePlot, StageExport}, stages)

	saved, err := ReadSummary(paths.SummaryJSON)
	require.NoError(t, err)
	assert.Equal(t, summary.RunID, saved.RunID)
	assert.Equal(t, summary.Plots, saved.Plots)

	prom, err := os.ReadFile(paths.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `healthplots_runs_total{status="success"} 1`)
	assert.Contains(t, string(prom), `healthplots_dataset_rows{stage="valid"} 5`)

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Pipeline finished")
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Data Analysis")
	testutil.AssertRunID(t, handler, summary.RunID, "Pipeline started", "Pipeline finished")
	testutil.AssertComponentLogged(t, handler, "dataset", "Validation completed")
	testutil.AssertComponentLogged(t, handler, "plot", "Charts rendered")
	testutil.AssertComponentLogged(t, handler, "exporter", "Clean dataset exported")
	testutil.AssertNoErrors(t, handler)
}

func TestRunner_EmptyDataset(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	cfg, paths := testConfig(t, testutil.WritePatientCSV(t, testutil.PatientCSVHeader+"\n"))

	runner, err := NewRunner(cfg, paths, WithLogger(logger))
	require.NoError(t, err)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusEmpty, summary.Status)
	assert.Empty(t, summary.Plots)
	assert.NoDirExists(t, paths.PlotsDir)
	testutil.AssertLogContains(t, handler, slog.LevelWarn, EmptyDatasetMessage)
}

func TestRunner_MissingInput(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	cfg, paths := testConfig(t, filepath.Join(t.TempDir(), "missing.csv"))

	runner, err := NewRunner(cfg, paths, WithLogger(logger))
	require.NoError(t, err)

	summary, err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StatusFailed, summary.Status)
	require.Len(t, summary.Stages, 1)
	assert.Equal(t, StatusFailed, summary.Stages[0].Status)

	saved, rerr := ReadSummary(paths.SummaryJSON)
	require.NoError(t, rerr)
	assert.Equal(t, StatusFailed, saved.Status)
	assert.NotEmpty(t, saved.Error)
}

func TestRunner_PlotsDirNotWritable(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	cfg, paths := testConfig(t, testutil.WritePatientCSV(t, ""))
	require.NoError(t, os.WriteFile(paths.PlotsDir, []byte("in the way"), 0644))

	runner, err := NewRunner(cfg, paths, WithLogger(logger))
	require.NoError(t, err)

	summary, err := runner.Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	assert.Equal(t, StatusFailed, summary.Status)
	assert.Empty(t, summary.Plots)

	last := summary.Stages[len(summary.Stages)-1]
	assert.Equal(t, StagePlot, last.Stage)
	assert.Equal(t, StatusFailed, last.Status)
}

func TestRunner_Cancelled(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	cfg, paths := testConfig(t, testutil.WritePatientCSV(t, ""))
	runner, err := NewRunner(cfg, paths, WithLogger(logger))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = runner.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

const vehiclesCSV = `Brand,City,Department,Estimated Market Value,Accident History,Status
Toyota,Bogota,Cundinamarca,50000,False,Active
Chevrolet,Medellin,Antioquia,30000,False,Inactive
Renault,Cali,Valle,55000,False,Active
`

func TestRunner_Vehicles(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	input := filepath.Join(t.TempDir(), "vehicles.csv")
	require.NoError(t, os.WriteFile(input, []byte(vehiclesCSV), 0644))
	cfg, paths := testConfig(t, input)

	runner, err := NewRunner(cfg, paths, WithLogger(logger), WithProfile(ProfileVehicles))
	require.NoError(t, err)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ProfileVehicles, summary.Profile)
	assert.Equal(t, 3, summary.RowsRead)
	assert.Equal(t, []string{
		filepath.Join(paths.PlotsDir, plot.AccidentHistoryFile),
		filepath.Join(paths.PlotsDir, plot.StatusVsValueFile),
	}, summary.Plots)
	assert.Equal(t, []string{paths.DescribeCSV}, summary.Reports)
}

func TestRunner_VehiclesWithoutStatus(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	input := filepath.Join(t.TempDir(), "listings.csv")
	data := `city,department,brand,estimated_market_value,accident_history
Bogota,Cundinamarca,Toyota,50000,True
Medellin,Antioquia,Chevrolet,30000,False
Bogota,Cundinamarca,Toyota,45000,True
Cali,Valle,Renault,55000,False
Medellin,Antioquia,Mazda,35000,True
`
	require.NoError(t, os.WriteFile(input, []byte(data), 0644))
	cfg, paths := testConfig(t, input)

	runner, err := NewRunner(cfg, paths, WithLogger(logger), WithProfile(ProfileVehicles))
	require.NoError(t, err)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, summary.Status)
	assert.Equal(t, 5, summary.RowsRead)
	assert.Equal(t, []string{filepath.Join(paths.PlotsDir, plot.AccidentHistoryFile)}, summary.Plots)
}

func TestRunner_TracesStages(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	cfg, paths := testConfig(t, testutil.WritePatientCSV(t, ""))
	cfg.Telemetry.TraceExporter = "stdout"

	reg := prometheus.NewRegistry()
	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, paths.TraceFile, reg, logger)
	require.NoError(t, err)

	runner, err := NewRunner(cfg, paths,
		WithLogger(logger),
		WithTelemetry(providers),
		WithMetrics(metrics.New(reg)))
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, providers.Shutdown(context.Background()))

	traces, err := os.ReadFile(paths.TraceFile)
	require.NoError(t, err)
	for _, stage := range []string{StageLoad, StageDescribe, StagePlot, StageExport} {
		assert.True(t, strings.Contains(string(traces), `"Name": "`+stage+`"`), "missing span %s", stage)
	}

	prom, err := os.ReadFile(paths.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "pipeline_stage_duration")
	assert.Contains(t, string(prom), "healthplots_charts_total")
}
