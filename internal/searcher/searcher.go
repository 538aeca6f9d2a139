// Package searcher wires a loaded index to the boolean executor, the ranked
// model and the configured dictionary membership check.
package searcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/artifact"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/dictionary"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/metrics"
)

type Options struct {
	// DataDir holds lexicon.json, postings.json and the dictionary files.
	DataDir      string
	DictMode     dictionary.Mode
	UseSkips     bool
	Workers      int
	Stem         bool
	DefaultLimit int
	MaxResults   int
}

// OptionsFromConfig collects the searcher settings spread over the indexer
// and search sections.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	mode, err := dictionary.ParseMode(cfg.Search.DictMode)
	if err != nil {
		return Options{}, err
	}
	return Options{
		DataDir:      cfg.Indexer.DataDir,
		DictMode:     mode,
		UseSkips:     cfg.Search.UseSkips,
		Workers:      cfg.Search.Workers,
		Stem:         cfg.Indexer.Stemming,
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxResults:   cfg.Search.MaxResults,
	}, nil
}

type Searcher struct {
	idx     *index.Index
	dict    *dictionary.Membership
	exec    *executor.Executor
	model   *ranker.Model
	cache   *cache.RankedCache
	opts    Options
	metrics *metrics.Metrics
	logger  *slog.Logger

	fingerprint  string
	stemMismatch bool
}

// Open loads the JSON artifacts from opts.DataDir and builds a Searcher. A
// manifest whose stemming setting differs from opts.Stem is logged, since
// query terms would then be normalised differently from indexed ones.
func Open(opts Options, m *metrics.Metrics) (*Searcher, error) {
	idx, err := artifact.Load(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening searcher: %w", err)
	}
	fp, err := artifact.Fingerprint(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening searcher: %w", err)
	}
	s := New(idx, opts, m)
	s.fingerprint = fp

	manifest, err := artifact.LoadManifest(opts.DataDir)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		s.logger.Warn("index has no manifest, build settings unknown", "data_dir", opts.DataDir)
	case err != nil:
		s.logger.Warn("index manifest unreadable", "data_dir", opts.DataDir, "error", err)
	case manifest.Stemming != opts.Stem:
		s.stemMismatch = true
		s.logger.Warn("stemming differs from index build",
			"index_stemming", manifest.Stemming,
			"query_stemming", opts.Stem,
			"data_dir", opts.DataDir,
		)
	}
	return s, nil
}

// New builds a Searcher over an index already in memory. The dictionary
// files for block and front modes are still read from opts.DataDir.
func New(idx *index.Index, opts Options, m *metrics.Metrics) *Searcher {
	if opts.DefaultLimit < 1 {
		opts.DefaultLimit = ranker.DefaultTopK
	}
	if opts.MaxResults < opts.DefaultLimit {
		opts.MaxResults = opts.DefaultLimit
	}
	dict := dictionary.Open(opts.DictMode, opts.DataDir, idx, m)
	s := &Searcher{
		idx:  idx,
		dict: dict,
		exec: executor.New(idx, dict, executor.Config{
			UseSkips: opts.UseSkips,
			Workers:  opts.Workers,
			Stem:     opts.Stem,
		}, m),
		model:   ranker.NewModel(idx, tokenizer.Options{Stem: opts.Stem}),
		opts:    opts,
		metrics: m,
		logger:  slog.Default().With("component", "searcher"),
	}
	s.logger.Info("searcher ready",
		"terms", idx.Len(),
		"documents", idx.DocCount(),
		"dict_mode", dict.Mode(),
		"degraded", dict.Degraded(),
		"use_skips", opts.UseSkips,
	)
	return s
}

// WithCache routes ranked queries through c.
func (s *Searcher) WithCache(c *cache.RankedCache) *Searcher {
	s.cache = c
	return s
}

// Boolean evaluates one AND/OR/NOT/phrase query.
func (s *Searcher) Boolean(ctx context.Context, query string) ([]string, error) {
	return s.exec.Search(ctx, query)
}

// BooleanAll evaluates queries in parallel, results in input order.
func (s *Searcher) BooleanAll(ctx context.Context, queries []string) ([][]string, error) {
	return s.exec.SearchAll(ctx, queries)
}

// Ranked returns the top documents for a free-text query. limit <= 0 uses
// the default limit and larger values are capped at the maximum. The bool
// reports whether the result came from the cache.
func (s *Searcher) Ranked(ctx context.Context, query string, limit int) ([]ranker.ScoredDoc, bool) {
	start := time.Now()
	limit = s.Limit(limit)
	terms := tokenizer.Terms(query, tokenizer.Options{Stem: s.opts.Stem})

	var docs []ranker.ScoredDoc
	cached := false
	if s.cache != nil && len(terms) > 0 {
		docs, cached = s.cache.GetOrCompute(ctx, terms, limit, func() []ranker.ScoredDoc {
			return s.model.RankTerms(terms, limit)
		})
	} else {
		docs = s.model.RankTerms(terms, limit)
	}

	if s.metrics != nil {
		outcome := "hit"
		if len(docs) == 0 {
			outcome = "zero_result"
		}
		s.metrics.QueriesTotal.WithLabelValues("ranked", outcome).Inc()
		s.metrics.QueryLatency.WithLabelValues("ranked", string(s.dict.Mode())).Observe(time.Since(start).Seconds())
		s.metrics.RankedResultsCount.Observe(float64(len(docs)))
	}
	s.logger.Debug("ranked query evaluated",
		"query", query,
		"terms", len(terms),
		"results", len(docs),
		"cached", cached,
		"duration", time.Since(start),
	)
	return docs, cached
}

// Limit clamps a requested result count into [1, MaxResults].
func (s *Searcher) Limit(limit int) int {
	if limit <= 0 {
		return s.opts.DefaultLimit
	}
	if limit > s.opts.MaxResults {
		return s.opts.MaxResults
	}
	return limit
}

// Mode is the dictionary mode actually in use.
func (s *Searcher) Mode() dictionary.Mode {
	return s.dict.Mode()
}

// RequestedMode is the dictionary mode the searcher was configured with.
func (s *Searcher) RequestedMode() dictionary.Mode {
	return s.dict.Requested()
}

// Degraded reports whether the requested dictionary mode fell back to raw,
// and why.
func (s *Searcher) Degraded() (bool, error) {
	return s.dict.Degraded(), s.dict.Reason()
}

func (s *Searcher) Index() *index.Index {
	return s.idx
}

// Fingerprint identifies the loaded artifact content. It is empty for a
// Searcher built by New.
func (s *Searcher) Fingerprint() string {
	return s.fingerprint
}

// StemMismatch reports whether the index manifest disagrees with the
// configured query stemming.
func (s *Searcher) StemMismatch() bool {
	return s.stemMismatch
}

func (s *Searcher) Cache() *cache.RankedCache {
	return s.cache
}

func (s *Searcher) Close() error {
	return s.dict.Close()
}
