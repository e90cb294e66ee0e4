package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "healthplots/internal/errors"
	"healthplots/internal/services"
)

// ResultsHandler serves the summary and charts of the last run.
type ResultsHandler struct {
	service      ResultsServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewResultsHandler creates a results handler with RFC 7807 error handling
func NewResultsHandler(service ResultsServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ResultsHandler {
	return &ResultsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "results_handler")),
		errorHandler: errorHandler,
	}
}

// PlotList is the body of GET /api/plots.
type PlotList struct {
	Count int                 `json:"count"`
	Plots []services.PlotInfo `json:"plots"`
}

// Summary handles GET /api/summary
func (h *ResultsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		if apierrors.IsType(err, apierrors.ErrTypeNotFound) {
			err = apierrors.ErrNoRunSummary
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// Plots handles GET /api/plots
func (h *ResultsHandler) Plots(w http.ResponseWriter, r *http.Request) {
	plots, err := h.service.Plots(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, PlotList{Count: len(plots), Plots: plots})
}

// Plot handles GET /api/plots/{name} and streams the PNG.
func (h *ResultsHandler) Plot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	path, err := h.service.PlotPath(r.Context(), name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Serving plot", slog.String("name", name))
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, path)
}
