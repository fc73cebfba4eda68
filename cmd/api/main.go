package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/geocoder89/quizvote/internal/cache"
	"github.com/geocoder89/quizvote/internal/config"
	"github.com/geocoder89/quizvote/internal/db"
	httpx "github.com/geocoder89/quizvote/internal/http"
	"github.com/geocoder89/quizvote/internal/http/handlers"
	"github.com/geocoder89/quizvote/internal/observability"
	"github.com/geocoder89/quizvote/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if cfg.OTELEnabled {
		shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName: "quizvote-api",
			Env:         cfg.Env,
			Endpoint:    cfg.OTELEndpoint,
			SampleRatio: cfg.OTELSampleRatio,
		})
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			tctx, cancel := config.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracer(tctx); err != nil {
				log.Error("tracer shutdown failed", "err", err)
			}
		}()
	}

	pool, err := db.Connect(ctx, cfg.DBURL, db.PoolOptions{MaxConns: cfg.DBMaxConns, MinConns: 1}, 5, log)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Error("schema setup failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	var shuttingDown atomic.Bool
	checks := map[string]handlers.Check{
		"db": pool.Ping,
		"shutdown": func(context.Context) error {
			if shuttingDown.Load() {
				return errors.New("shutting down")
			}
			return nil
		},
	}

	var resultsCache cache.ResultsCache = cache.NewMemoryResults(cfg.ResultsCacheTTL)
	if cfg.RedisAddr != "" {
		rctx, cancel := config.WithTimeout(ctx, 3*time.Second)
		rdb, err := cache.DialRedis(rctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		cancel()
		if err != nil {
			log.Error("redis connect failed", "addr", cfg.RedisAddr, "err", err)
			os.Exit(1)
		}
		defer rdb.Close()

		resultsCache = cache.NewProtectedResults(
			cache.NewRedisResults(rdb, cfg.ResultsCacheTTL),
			cache.ProtectedConfig{},
		)
		checks["redis"] = cache.RedisCheck(rdb)
		log.Info("results cache backed by redis", "addr", cfg.RedisAddr)
	}

	router := httpx.NewRouter(log, cfg, httpx.Deps{
		Users:        postgres.NewUsersRepo(pool, prom),
		Questions:    postgres.NewQuestionsRepo(pool, prom),
		Votes:        postgres.NewVotesRepo(pool, prom),
		ResultsCache: resultsCache,
		Prom:         prom,
		Gatherer:     reg,
		ReadyChecks:  checks,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	shuttingDown.Store(true)
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		sctx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(sctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")
	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
