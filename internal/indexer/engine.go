// Package indexer drives the batch build: it feeds a token stream into the
// index builder, freezes the result with the configured skip strategy and
// persists the artifacts, compressed dictionaries and size report.
package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/artifact"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/dictionary"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/skiplist"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/tracing"
)

const (
	SizeReportFile = "dict_compression_sizes.json"
	SQLiteFile     = "index.sqlite"
)

// Source yields token records. stream.FileSource and consumer.Source
// implement it.
type Source interface {
	Records(ctx context.Context, fn func(index.TokenRecord) error) error
}

type Engine struct {
	cfg        config.IndexerConfig
	resultsDir string
	strategy   skiplist.Strategy
	writer     *artifact.Writer
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewEngine validates the skip strategy and prepares the artifact
// directory. resultsDir receives the size report; m may be nil.
func NewEngine(cfg config.IndexerConfig, resultsDir string, m *metrics.Metrics) (*Engine, error) {
	strategy, err := skiplist.Parse(cfg.SkipStrategy)
	if err != nil {
		return nil, fmt.Errorf("configuring indexer: %w", err)
	}
	if cfg.BlockSize < 1 {
		cfg.BlockSize = dictionary.DefaultBlockSize
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating index data directory: %w", err)
	}
	return &Engine{
		cfg:        cfg,
		resultsDir: resultsDir,
		strategy:   strategy,
		writer:     artifact.NewWriter(cfg.DataDir),
		metrics:    m,
		logger:     slog.Default().With("component", "indexer"),
	}, nil
}

// Build reads every record from src and returns the frozen Index.
func (e *Engine) Build(ctx context.Context, src Source) (*index.Index, error) {
	ctx, span := tracing.Start(ctx, "build")
	defer span.End()
	start := time.Now()
	b := index.NewBuilder()
	err := src.Records(ctx, func(rec index.TokenRecord) error {
		if err := b.Add(rec); err != nil {
			return err
		}
		if e.metrics != nil {
			e.metrics.RecordsIndexedTotal.Inc()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading token stream: %w", err)
	}
	idx, err := b.Freeze(e.strategy)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	span.SetAttr("records", b.Records())
	span.SetAttr("terms", idx.Len())
	if e.metrics != nil {
		e.metrics.BuildDuration.Observe(elapsed.Seconds())
		e.metrics.IndexTerms.Set(float64(idx.Len()))
		e.metrics.IndexDocuments.Set(float64(idx.DocCount()))
		e.metrics.SkipPointers.Set(float64(idx.SkipPointers()))
	}
	e.logger.Info("index built",
		"source", fmt.Sprint(src),
		"records", b.Records(),
		"terms", idx.Len(),
		"documents", idx.DocCount(),
		"skip_strategy", e.strategy.String(),
		"duration", elapsed,
	)
	return idx, nil
}

// Persist writes lexicon.json, postings.json and their manifest, both
// compressed dictionaries, the size report and, when enabled, the SQLite export.
func (e *Engine) Persist(ctx context.Context, idx *index.Index) (dictionary.SizeReport, error) {
	ctx, span := tracing.Start(ctx, "persist")
	defer span.End()

	_, phase := tracing.Start(ctx, "write-artifacts")
	err := e.writer.Write(idx)
	if err == nil {
		_, err = artifact.WriteManifest(e.cfg.DataDir, artifact.Manifest{
			Stemming:     e.cfg.Stemming,
			SkipStrategy: e.strategy.String(),
			BlockSize:    e.cfg.BlockSize,
			Terms:        idx.Len(),
			Documents:    idx.DocCount(),
			BuiltAt:      time.Now().UTC(),
		})
	}
	phase.End()
	if err != nil {
		return dictionary.SizeReport{}, err
	}

	_, phase = tracing.Start(ctx, "write-dictionaries")
	terms := idx.Terms()
	if err := dictionary.WriteBlock(e.cfg.DataDir, terms, e.cfg.BlockSize); err != nil {
		phase.End()
		return dictionary.SizeReport{}, err
	}
	err = dictionary.WriteFront(e.cfg.DataDir, terms, e.cfg.BlockSize)
	phase.End()
	if err != nil {
		return dictionary.SizeReport{}, err
	}

	report := dictionary.MeasureSizes(e.cfg.DataDir, artifact.LexiconFile, artifact.PostingsFile)
	if e.resultsDir != "" {
		if err := writeReport(filepath.Join(e.resultsDir, SizeReportFile), report); err != nil {
			return report, fmt.Errorf("writing size report: %w", err)
		}
	}

	if e.cfg.SQLiteExport {
		path := filepath.Join(e.cfg.DataDir, SQLiteFile)
		exportCtx, phase := tracing.Start(ctx, "sqlite-export")
		err := artifact.ExportSQLite(exportCtx, path, idx)
		phase.End()
		if err != nil {
			return report, err
		}
		e.logger.Info("sqlite export written", "path", path)
	}

	e.logger.Info("index persisted",
		"dir", e.cfg.DataDir,
		"block_size", e.cfg.BlockSize,
		"lexicon_bytes", report.OriginalLexicon,
		"block_saving_pct", report.BlockSavingPct,
		"front_saving_pct", report.FrontSavingPct,
	)
	return report, nil
}

// Strategy returns the skip strategy the engine freezes with.
func (e *Engine) Strategy() skiplist.Strategy {
	return e.strategy
}

func writeReport(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
