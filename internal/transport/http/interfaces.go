package http

import (
	"context"

	"healthplots/internal/pipeline"
	"healthplots/internal/services"
)

// HealthServiceInterface is what HealthHandler needs from services.HealthService.
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
}

// ResultsServiceInterface is what ResultsHandler needs from services.ResultsService.
type ResultsServiceInterface interface {
	Summary(ctx context.Context) (*pipeline.RunSummary, error)
	Plots(ctx context.Context) ([]services.PlotInfo, error)
	PlotPath(ctx context.Context, name string) (string, error)
}
