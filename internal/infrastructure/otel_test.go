package infrastructure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthplots/internal/config"
)

func TestInitializeOTel_NoExporter(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.EnableMetrics = false

	providers, err := InitializeOTel(cfg, "", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	require.NotNil(t, providers.Tracer)
	require.NotNil(t, providers.Stages)

	_, end := providers.StartStage(context.Background(), "load")
	end(nil)

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.TraceExporter = "zipkin"

	_, err := InitializeOTel(cfg, "", nil, nil)
	assert.Error(t, err)
}

func TestInitializeOTel_StdoutTraceFileAndMetrics(t *testing.T) {
	traceFile := filepath.Join(t.TempDir(), "reports", "traces.json")
	reg := prometheus.NewRegistry()

	cfg := config.Default().Telemetry
	cfg.TraceExporter = "stdout"
	cfg.EnableMetrics = true

	providers, err := InitializeOTel(cfg, traceFile, reg, nil)
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)
	require.NotNil(t, providers.MeterProvider)

	ctx := WithTraceID(context.Background(), "run-1")
	stageCtx, end := providers.StartStage(ctx, "plot")
	assert.NotEmpty(t, TraceIDFromContext(stageCtx))
	AddSpanEvent(stageCtx, "chart.saved")
	end(fmt.Errorf("render failed"))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "pipeline_stage_duration_seconds")
	assert.Contains(t, names, "pipeline_stage_failures_total")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, providers.Shutdown(shutdownCtx))

	content, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"Name": "plot"`)
	assert.Contains(t, string(content), "render failed")
}

func TestTraceIDFromContext_NoSpan(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
