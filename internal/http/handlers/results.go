package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/quizvote/internal/cache"
	"github.com/geocoder89/quizvote/internal/config"
	"github.com/geocoder89/quizvote/internal/domain/vote"
	"github.com/gin-gonic/gin"
)

type ResultsSource interface {
	Results(ctx context.Context) (vote.Results, error)
}

type CacheMetrics interface {
	ObserveCacheLookup(result string)
}

type ResultsHandler struct {
	source  ResultsSource
	cache   cache.ResultsCache
	metrics CacheMetrics
	log     *slog.Logger
}

// NewResultsHandler serves tallies from source; rc and metrics may be nil.
func NewResultsHandler(source ResultsSource, rc cache.ResultsCache, metrics CacheMetrics, log *slog.Logger) *ResultsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ResultsHandler{source: source, cache: rc, metrics: metrics, log: log}
}

// GetResult handles GET /api/get-result
func (h *ResultsHandler) GetResult(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	res, err := h.results(cctx)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, APIResponse{Status: http.StatusOK, Data: res})
}

// results prefers the cache. A broken cache only costs a direct aggregation. Results
// are stored under the generation read before aggregating, so a vote recorded meanwhile
// keeps them out of the cache.
func (h *ResultsHandler) results(ctx context.Context) (vote.Results, error) {
	if h.cache == nil {
		return h.source.Results(ctx)
	}

	res, ok, err := h.cache.GetResults(ctx)
	switch {
	case err != nil:
		h.observe("error")
		h.log.WarnContext(ctx, "results_cache_get_failed", "err", err)
	case ok:
		h.observe("hit")
		return res, nil
	default:
		h.observe("miss")
	}

	gen, genErr := h.cache.Generation(ctx)
	if genErr != nil {
		h.log.WarnContext(ctx, "results_cache_generation_failed", "err", genErr)
	}

	res, err = h.source.Results(ctx)
	if err != nil {
		return vote.Results{}, err
	}
	if genErr != nil {
		return res, nil
	}

	switch err := h.cache.SetResults(ctx, res, gen); {
	case errors.Is(err, cache.ErrStale):
		h.log.DebugContext(ctx, "results_cache_set_skipped", "generation", gen)
	case err != nil:
		h.log.WarnContext(ctx, "results_cache_set_failed", "err", err)
	}
	return res, nil
}

func (h *ResultsHandler) observe(result string) {
	if h.metrics != nil {
		h.metrics.ObserveCacheLookup(result)
	}
}
