package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/stream"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	input := flag.String("input", "data_stage/events.jsonl", "extracted documents, one {doc_id,title,text} per line")
	output := flag.String("output", "", "token stream output path (default indexer.tokenStream)")
	publish := flag.Bool("publish", false, "publish token records to the Kafka token stream topic instead of a file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := tokenizer.Options{Stem: cfg.Indexer.Stemming}
	var count int
	if *publish {
		count, err = publishRecords(ctx, cfg.Kafka, *input, opts)
	} else {
		path := *output
		if path == "" {
			path = cfg.Indexer.TokenStream
		}
		count, err = writeRecords(ctx, path, *input, opts)
	}
	if err != nil {
		slog.Error("tokenize failed", "error", err)
		os.Exit(1)
	}
	slog.Info("tokenize finished", "documents", count, "input", *input, "published", *publish)
}

func writeRecords(ctx context.Context, path, input string, opts tokenizer.Options) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating token stream: %w", err)
	}
	defer f.Close()
	w := stream.NewWriter(f)

	count := 0
	err = stream.Documents(ctx, input, func(doc stream.Document) error {
		count++
		return w.Write(stream.Tokenized(doc, opts))
	})
	if err != nil {
		return count, err
	}
	if err := w.Flush(); err != nil {
		return count, err
	}
	return count, f.Sync()
}

func publishRecords(ctx context.Context, cfg config.KafkaConfig, input string, opts tokenizer.Options) (int, error) {
	producer := kafka.NewProducer(cfg, cfg.Topics.TokenStream)
	defer producer.Close()

	count := 0
	err := stream.Documents(ctx, input, func(doc stream.Document) error {
		count++
		rec := stream.Tokenized(doc, opts)
		return producer.Add(ctx, kafka.Event{Key: rec.DocID, Value: rec})
	})
	if err != nil {
		return count, err
	}
	if err := producer.Flush(ctx); err != nil {
		return count, err
	}
	slog.Info("token records published", "topic", cfg.Topics.TokenStream, "count", producer.Published())
	return count, nil
}
