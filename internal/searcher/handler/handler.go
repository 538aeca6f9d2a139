// Package handler exposes boolean and ranked search over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/logger"
)

// Engine is the query surface the handler serves. *searcher.Searcher
// implements it.
type Engine interface {
	Boolean(ctx context.Context, query string) ([]string, error)
	Ranked(ctx context.Context, query string, limit int) ([]ranker.ScoredDoc, bool)
	Limit(limit int) int
	Cache() *cache.RankedCache
}

type BooleanResponse struct {
	Query     string   `json:"query"`
	Results   []string `json:"results"`
	Total     int      `json:"total"`
	LatencyMs int64    `json:"latency_ms"`
}

type RankedResponse struct {
	Query     string             `json:"query"`
	Results   []ranker.ScoredDoc `json:"results"`
	Limit     int                `json:"limit"`
	CacheHit  bool               `json:"cache_hit"`
	LatencyMs int64              `json:"latency_ms"`
}

type Handler struct {
	engine Engine
	logger *slog.Logger
}

func New(engine Engine) *Handler {
	return &Handler{
		engine: engine,
		logger: slog.Default().With("component", "search-handler"),
	}
}

// Routes registers the search and cache endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search/boolean", h.Boolean)
	mux.HandleFunc("GET /api/v1/search/ranked", h.Ranked)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) Boolean(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	ctx := logger.WithQuery(r.Context(), query)

	ids, err := h.engine.Boolean(ctx, query)
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		if status >= http.StatusInternalServerError {
			logger.FromContext(ctx).Error("boolean search failed", "error", err)
		}
		h.writeError(w, status, err.Error())
		return
	}
	latency := time.Since(start).Milliseconds()
	logger.FromContext(ctx).Info("boolean search completed", "total", len(ids), "latency_ms", latency)
	h.writeJSON(w, http.StatusOK, BooleanResponse{
		Query:     query,
		Results:   ids,
		Total:     len(ids),
		LatencyMs: latency,
	})
}

func (h *Handler) Ranked(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	limit = h.engine.Limit(limit)
	ctx := logger.WithQuery(r.Context(), query)

	docs, hit := h.engine.Ranked(ctx, query, limit)
	latency := time.Since(start).Milliseconds()
	logger.FromContext(ctx).Info("ranked search completed",
		"returned", len(docs),
		"limit", limit,
		"cache_hit", hit,
		"latency_ms", latency,
	)
	h.writeJSON(w, http.StatusOK, RankedResponse{
		Query:     query,
		Results:   docs,
		Limit:     limit,
		CacheHit:  hit,
		LatencyMs: latency,
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	c := h.engine.Cache()
	if c == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	st := c.Stats()
	total := st.Hits + st.Misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(st.Hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     st.Hits,
		"misses":   st.Misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	c := h.engine.Cache()
	if c == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := c.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
