package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/stream"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	skip := flag.String("skip", "", "skip strategy override: none, sqrt, k:N or alpha:F")
	source := flag.String("source", "", "token stream source override: file or kafka")
	input := flag.String("input", "", "token stream JSONL path override")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *skip != "" {
		cfg.Indexer.SkipStrategy = *skip
	}
	if *source != "" {
		cfg.Indexer.Source = *source
	}
	if *input != "" {
		cfg.Indexer.TokenStream = *input
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid flags: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
		metrics.Serve(ctx, cfg.Metrics.Port)
	}

	engine, err := indexer.NewEngine(cfg.Indexer, cfg.Search.ResultsDir, m)
	if err != nil {
		slog.Error("failed to create indexer", "error", err)
		os.Exit(1)
	}

	var src indexer.Source
	switch cfg.Indexer.Source {
	case "kafka":
		src = consumer.NewSource(cfg.Kafka)
	default:
		src = stream.FileSource{Path: cfg.Indexer.TokenStream}
	}
	slog.Info("starting index build",
		"source", fmt.Sprint(src),
		"data_dir", cfg.Indexer.DataDir,
		"skip_strategy", engine.Strategy().String(),
	)

	ctx, span := tracing.Start(ctx, "index-build")
	idx, err := engine.Build(ctx, src)
	if err != nil {
		slog.Error("index build failed", "error", err)
		os.Exit(1)
	}
	report, err := engine.Persist(ctx, idx)
	if err != nil {
		slog.Error("persisting index failed", "error", err)
		os.Exit(1)
	}

	span.SetAttr("skip_strategy", engine.Strategy().String())
	span.End()
	span.Log(slog.Default())

	slog.Info("indexer finished",
		"terms", idx.Len(),
		"documents", idx.DocCount(),
		"skip_pointers", idx.SkipPointers(),
		"block_total_bytes", report.BlockTotal,
		"front_total_bytes", report.FrontTotal,
	)
}
