package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/artifact"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/dictionary"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/stream"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/report"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	strategies := flag.String("strategies", "none,sqrt,k:8,alpha:0.1", "comma-separated skip strategies to compare")
	store := flag.Bool("store", false, "also save the reports to postgres")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queries, err := report.LoadQueries(cfg.Search.BooleanQueries)
	if err != nil {
		slog.Error("failed to load boolean queries", "error", err)
		os.Exit(1)
	}

	dictModes, err := benchDictModes(ctx, cfg, queries)
	if err != nil {
		slog.Error("dictionary mode benchmark failed", "error", err)
		os.Exit(1)
	}
	skips, err := benchSkipStrategies(ctx, cfg, queries, strings.Split(*strategies, ","))
	if err != nil {
		slog.Error("skip strategy benchmark failed", "error", err)
		os.Exit(1)
	}

	dir := cfg.Search.ResultsDir
	if err := report.WriteJSON(filepath.Join(dir, report.DictModesBenchFile), dictModes); err != nil {
		slog.Error("failed to write report", "error", err)
		os.Exit(1)
	}
	if err := report.WriteJSON(filepath.Join(dir, report.SkipStrategiesBenchFile), skips); err != nil {
		slog.Error("failed to write report", "error", err)
		os.Exit(1)
	}
	slog.Info("benchmarks written", "dir", dir)

	if *store {
		sizes := dictionary.MeasureSizes(cfg.Indexer.DataDir, artifact.LexiconFile, artifact.PostingsFile)
		if err := storeReports(ctx, cfg.Postgres, map[string]any{
			report.KindDictModes:      dictModes,
			report.KindSkipStrategies: skips,
			report.KindSizes:          sizes,
		}); err != nil {
			slog.Error("failed to store reports", "error", err)
			os.Exit(1)
		}
	}
}

// benchDictModes runs the boolean queries once per dictionary mode over the
// index in the configured data directory.
func benchDictModes(ctx context.Context, cfg *config.Config, queries []string) (map[string]report.DictModeResult, error) {
	out := make(map[string]report.DictModeResult, 3)
	for _, mode := range []dictionary.Mode{dictionary.ModeRaw, dictionary.ModeBlock, dictionary.ModeFront} {
		opts, err := searcher.OptionsFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		opts.DictMode = mode
		s, err := searcher.Open(opts, nil)
		if err != nil {
			return nil, err
		}
		run, err := report.NewRunner(s, cfg.Search.DefaultLimit).
			Run(ctx, queries, nil, cfg.Indexer.SkipStrategy, opts.UseSkips)
		s.Close()
		if err != nil {
			return nil, fmt.Errorf("dict mode %s: %w", mode, err)
		}
		snapshot := filepath.Join(cfg.Search.ResultsDir, report.SnapshotFile("dict", string(mode)))
		if err := report.WriteJSON(snapshot, run.Times); err != nil {
			return nil, err
		}
		out[string(mode)] = report.DictModeResult{
			TotalMs:      run.Times.TotalMs,
			AvgMs:        run.Times.AveragePerQueryMs,
			TotalQueries: run.Times.TotalQueries,
		}
		slog.Info("dict mode measured", "mode", mode, "total_ms", run.Times.TotalMs, "degraded", run.Times.DictionaryDegraded)
	}
	return out, nil
}

// benchSkipStrategies rebuilds the index once per strategy into a scratch
// directory and runs the boolean queries over the raw dictionary with skip
// routing enabled, so only the posting layout varies between runs.
func benchSkipStrategies(ctx context.Context, cfg *config.Config, queries, strategies []string) (map[string]report.SkipStrategyResult, error) {
	scratch, err := os.MkdirTemp("", "retrieval-bench-")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	out := make(map[string]report.SkipStrategyResult, len(strategies))
	for i, name := range strategies {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		icfg := cfg.Indexer
		icfg.SkipStrategy = name
		icfg.SQLiteExport = false
		icfg.DataDir = filepath.Join(scratch, fmt.Sprintf("s%d", i))

		engine, err := indexer.NewEngine(icfg, "", nil)
		if err != nil {
			return nil, err
		}
		idx, err := engine.Build(ctx, stream.FileSource{Path: cfg.Indexer.TokenStream})
		if err != nil {
			return nil, fmt.Errorf("skip strategy %s: %w", name, err)
		}
		if _, err := engine.Persist(ctx, idx); err != nil {
			return nil, fmt.Errorf("skip strategy %s: %w", name, err)
		}
		info, err := os.Stat(filepath.Join(icfg.DataDir, artifact.PostingsFile))
		if err != nil {
			return nil, err
		}

		opts, err := searcher.OptionsFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		opts.DataDir = icfg.DataDir
		opts.DictMode = dictionary.ModeRaw
		opts.UseSkips = true
		s := searcher.New(idx, opts, nil)
		run, err := report.NewRunner(s, cfg.Search.DefaultLimit).Run(ctx, queries, nil, name, true)
		s.Close()
		if err != nil {
			return nil, fmt.Errorf("skip strategy %s: %w", name, err)
		}
		snapshot := filepath.Join(cfg.Search.ResultsDir, report.SnapshotFile("skip", name))
		if err := report.WriteJSON(snapshot, run.Times); err != nil {
			return nil, err
		}
		out[name] = report.SkipStrategyResult{
			PostingsBytes: info.Size(),
			TotalMs:       run.Times.TotalMs,
			AvgMs:         run.Times.AveragePerQueryMs,
			TotalQueries:  run.Times.TotalQueries,
		}
		slog.Info("skip strategy measured",
			"strategy", name,
			"skip_pointers", idx.SkipPointers(),
			"postings_bytes", info.Size(),
			"total_ms", run.Times.TotalMs,
		)
	}
	return out, nil
}

func storeReports(ctx context.Context, cfg config.PostgresConfig, reports map[string]any) error {
	if cfg.Host == "" {
		return fmt.Errorf("postgres.host is not set")
	}
	db, err := postgres.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	st := report.NewStore(db)
	if err := st.EnsureSchema(ctx); err != nil {
		return err
	}
	return st.SaveAll(ctx, reports)
}
