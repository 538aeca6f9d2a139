// Package report runs query files against a searcher and writes the result,
// timing and benchmark files.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/errors"
)

const (
	BooleanResultsFile      = "boolean_results.json"
	RankedResultsFile       = "vsm_results.json"
	ExecutionTimesFile      = "execution_times.json"
	DictModesBenchFile      = "benchmark_dict_modes.json"
	SkipStrategiesBenchFile = "benchmark_skip_strategies.json"
)

// DefaultRankedQueries is used when no ranked query file exists.
var DefaultRankedQueries = []string{
	"python data science",
	"machine learning",
	"beginner python",
}

type queryFile struct {
	Queries []string `json:"queries"`
}

// LoadQueries reads a {"queries": [...]} file.
func LoadQueries(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.Newf(apperrors.ErrNotFound, 0, "query file %s", path)
		}
		return nil, fmt.Errorf("reading query file %s: %w", path, err)
	}
	var qf queryFile
	if err := json.Unmarshal(data, &qf); err != nil {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, 0, "parsing query file %s: %v", path, err)
	}
	return qf.Queries, nil
}

// LoadRankedQueries is LoadQueries falling back to DefaultRankedQueries when
// the file does not exist.
func LoadRankedQueries(path string) ([]string, error) {
	qs, err := LoadQueries(path)
	if errors.Is(err, apperrors.ErrNotFound) {
		return DefaultRankedQueries, nil
	}
	return qs, err
}

// RankedHit marshals as a [doc_id, score] pair.
type RankedHit ranker.ScoredDoc

func (h RankedHit) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{h.DocID, h.Score})
}

func (h *RankedHit) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("ranked hit: want [doc_id, score], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &h.DocID); err != nil {
		return fmt.Errorf("ranked hit doc_id: %w", err)
	}
	if err := json.Unmarshal(pair[1], &h.Score); err != nil {
		return fmt.Errorf("ranked hit score: %w", err)
	}
	return nil
}

// ExecutionTimes summarises one boolean query run.
type ExecutionTimes struct {
	TotalQueries       int     `json:"total_queries"`
	TotalMs            float64 `json:"total_execution_time_ms"`
	AveragePerQueryMs  float64 `json:"average_time_per_query_ms"`
	DictMode           string  `json:"dict_mode"`
	SkipStrategy       string  `json:"skip_strategy"`
	UseSkips           bool    `json:"use_skips"`
	RequestedDictMode  string  `json:"requested_dict_mode,omitempty"`
	DictionaryDegraded bool    `json:"dictionary_degraded,omitempty"`
}

// Run is the outcome of evaluating both query sets once.
type Run struct {
	Boolean map[string][]string    `json:"boolean"`
	Ranked  map[string][]RankedHit `json:"ranked"`
	Times   ExecutionTimes         `json:"times"`
}

type Runner struct {
	s      *searcher.Searcher
	limit  int
	logger *slog.Logger
}

// NewRunner evaluates against s; ranked queries return up to limit hits.
func NewRunner(s *searcher.Searcher, limit int) *Runner {
	return &Runner{
		s:      s,
		limit:  limit,
		logger: slog.Default().With("component", "report"),
	}
}

// Run times the boolean queries sequentially, then ranks the free-text
// queries. A malformed boolean query aborts the run.
func (r *Runner) Run(ctx context.Context, booleanQueries, rankedQueries []string, skipStrategy string, useSkips bool) (*Run, error) {
	run := &Run{
		Boolean: make(map[string][]string, len(booleanQueries)),
		Ranked:  make(map[string][]RankedHit, len(rankedQueries)),
	}
	start := time.Now()
	for _, q := range booleanQueries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ids, err := r.s.Boolean(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("boolean query %q: %w", q, err)
		}
		run.Boolean[q] = ids
	}
	total := time.Since(start)

	for _, q := range rankedQueries {
		docs, _ := r.s.Ranked(ctx, q, r.limit)
		hits := make([]RankedHit, len(docs))
		for i, d := range docs {
			hits[i] = RankedHit(d)
		}
		run.Ranked[q] = hits
	}

	degraded, _ := r.s.Degraded()
	run.Times = ExecutionTimes{
		TotalQueries:       len(booleanQueries),
		TotalMs:            ms(total),
		DictMode:           string(r.s.Mode()),
		SkipStrategy:       skipStrategy,
		UseSkips:           useSkips,
		DictionaryDegraded: degraded,
	}
	if degraded {
		run.Times.RequestedDictMode = string(r.s.RequestedMode())
	}
	if n := len(booleanQueries); n > 0 {
		run.Times.AveragePerQueryMs = run.Times.TotalMs / float64(n)
	}
	r.logger.Info("query run finished",
		"boolean_queries", len(booleanQueries),
		"ranked_queries", len(rankedQueries),
		"total_ms", run.Times.TotalMs,
		"dict_mode", run.Times.DictMode,
	)
	return run, nil
}

// WriteRun writes boolean_results.json, vsm_results.json and
// execution_times.json into dir.
func WriteRun(dir string, run *Run) error {
	if err := WriteJSON(filepath.Join(dir, BooleanResultsFile), run.Boolean); err != nil {
		return err
	}
	if err := WriteJSON(filepath.Join(dir, RankedResultsFile), run.Ranked); err != nil {
		return err
	}
	return WriteJSON(filepath.Join(dir, ExecutionTimesFile), run.Times)
}

// SnapshotFile names the per-variant copy of execution_times.json a
// benchmark writes, e.g. execution_times.skip_k_8.json for kind "skip" and
// variant "k:8".
func SnapshotFile(kind, variant string) string {
	return fmt.Sprintf("execution_times.%s_%s.json", kind, strings.ReplaceAll(variant, ":", "_"))
}

// DictModeResult is one entry of benchmark_dict_modes.json.
type DictModeResult struct {
	TotalMs      float64 `json:"total_ms"`
	AvgMs        float64 `json:"avg_ms"`
	TotalQueries int     `json:"total_queries"`
}

// SkipStrategyResult is one entry of benchmark_skip_strategies.json.
type SkipStrategyResult struct {
	PostingsBytes int64   `json:"postings_bytes"`
	TotalMs       float64 `json:"total_ms"`
	AvgMs         float64 `json:"avg_ms"`
	TotalQueries  int     `json:"total_queries"`
}

// WriteJSON writes v as indented JSON, creating parent directories.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
