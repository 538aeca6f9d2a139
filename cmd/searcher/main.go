package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/report"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	dictMode := flag.String("dict", "", "dictionary mode override: raw, block or front")
	useSkips := flag.Bool("use-skip", false, "route two-term AND through skip pointers")
	batch := flag.Bool("batch", false, "run the query files once, write result files and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dictMode != "" {
		cfg.Search.DictMode = *dictMode
	}
	if *useSkips {
		cfg.Search.UseSkips = true
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

	opts, err := searcher.OptionsFromConfig(cfg)
	if err != nil {
		slog.Error("invalid search options", "error", err)
		os.Exit(1)
	}
	s, err := searcher.Open(opts, m)
	if err != nil {
		slog.Error("failed to open index", "error", err, "data_dir", cfg.Indexer.DataDir)
		os.Exit(1)
	}
	defer s.Close()

	if *batch {
		if err := runBatch(ctx, cfg, s); err != nil {
			slog.Error("batch run failed", "error", err)
			os.Exit(1)
		}
		return
	}
	if err := serve(ctx, cfg, s, m); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("search service stopped")
}

func runBatch(ctx context.Context, cfg *config.Config, s *searcher.Searcher) error {
	booleanQueries, err := report.LoadQueries(cfg.Search.BooleanQueries)
	if err != nil {
		return err
	}
	rankedQueries, err := report.LoadRankedQueries(cfg.Search.RankedQueries)
	if err != nil {
		return err
	}
	run, err := report.NewRunner(s, cfg.Search.DefaultLimit).
		Run(ctx, booleanQueries, rankedQueries, cfg.Indexer.SkipStrategy, cfg.Search.UseSkips)
	if err != nil {
		return err
	}
	if err := report.WriteRun(cfg.Search.ResultsDir, run); err != nil {
		return err
	}
	slog.Info("results written", "dir", cfg.Search.ResultsDir, "total_ms", run.Times.TotalMs)

	if cfg.Postgres.Host == "" {
		return nil
	}
	db, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, run report not stored", "error", err)
		return nil
	}
	defer db.Close()
	store := report.NewStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	_, err = store.Save(ctx, report.KindExecutionTimes, run.Times)
	return err
}

func serve(ctx context.Context, cfg *config.Config, s *searcher.Searcher, m *metrics.Metrics) error {
	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		idx := s.Index()
		if idx.Len() == 0 {
			return health.ComponentHealth{Status: health.StatusDown, Message: "empty index"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d terms, %d documents", idx.Len(), idx.DocCount()),
		}
	})
	checker.Register("dictionary", func(ctx context.Context) health.ComponentHealth {
		if degraded, reason := s.Degraded(); degraded {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: reason.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: string(s.Mode())}
	})

	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, ranked caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			scope := s.Fingerprint()
			s.WithCache(cache.New(redisClient, cfg.Redis.CacheTTL, scope, m))
			checker.Register("redis", health.PingCheck(redisClient.Ping, health.StatusDegraded))
			slog.Info("ranked cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL, "scope", scope)
		}
	}

	mux := http.NewServeMux()
	handler.New(s).Routes(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Logging(chain)
	if m != nil {
		chain = middleware.Metrics(m,
			"/api/v1/search/boolean",
			"/api/v1/search/ranked",
			"/api/v1/cache/stats",
			"/api/v1/cache/invalidate",
			"/health/live",
			"/health/ready",
		)(chain)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// done closes once Shutdown has drained in-flight handlers.
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening",
		"addr", server.Addr,
		"dict_mode", s.Mode(),
		"use_skips", cfg.Search.UseSkips,
	)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	<-done
	return nil
}
