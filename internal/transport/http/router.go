package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"healthplots/internal/config"
	apierrors "healthplots/internal/errors"
	"healthplots/internal/infrastructure"
	"healthplots/internal/middleware"
)

// RouterDeps are the collaborators of the API router.
type RouterDeps struct {
	Health   HealthServiceInterface
	Results  ResultsServiceInterface
	Gatherer prometheus.Gatherer
	OTel     *infrastructure.OTelProviders
	Server   config.ServerConfig
	Logger   *slog.Logger
}

// NewRouter builds the chi router of the serve command.
func NewRouter(deps RouterDeps) (http.Handler, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	errorHandler := apierrors.NewErrorHandler(logger, false)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(errorHandler))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.NewRateLimiter(deps.Server.RateLimit, deps.Server.RateBurst, logger).Handler)
	if deps.OTel != nil {
		otelMW, err := middleware.NewOTelMiddleware(deps.OTel)
		if err != nil {
			return nil, err
		}
		r.Use(otelMW.Handler)
	}

	r.NotFound(errorHandler.NotFound)

	health := NewHealthHandler(deps.Health, logger)
	results := NewResultsHandler(deps.Results, logger, errorHandler)

	r.Route("/api", func(r chi.Router) {
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/health", health.HealthCheck)
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/summary", results.Summary)
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/plots", results.Plots)
		r.Get("/plots/{name}", results.Plot)
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}
	return r, nil
}
