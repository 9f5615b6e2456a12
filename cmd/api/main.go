package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/microblog/user-api/internal/api"
	"github.com/microblog/user-api/internal/core/service"
	"github.com/microblog/user-api/internal/infrastructure/db/postgres"
	redisdb "github.com/microblog/user-api/internal/infrastructure/db/redis"
	"github.com/microblog/user-api/internal/infrastructure/queue"
	"github.com/microblog/user-api/internal/pkg/config"
	"github.com/microblog/user-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Durable storage ---
	db, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN})
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}
	defer rdb.Close()

	// --- Write-behind queue ---
	repo := postgres.NewUserRepository(db)
	store := queue.NewPendingStore()
	flusher := queue.NewFlusher(store, repo, queue.Config{
		Interval:   cfg.Queue.FlushInterval,
		MaxBackoff: cfg.Queue.MaxBackoff,
		Timeout:    cfg.Queue.BatchTimeout,
	}, log)

	// The flusher outlives the request context: it is cancelled only after
	// the HTTP server has stopped accepting signups, so its final drain sees
	// every admitted record.
	flushCtx, stopFlusher := context.WithCancel(context.Background())
	flusherDone := make(chan struct{})
	go func() {
		defer close(flusherDone)
		flusher.Run(flushCtx)
	}()

	// --- HTTP server ---
	svc := service.NewUserService(repo, redisdb.NewUserCache(rdb), store, cfg.JWTAccessSecret, cfg.JWTRefreshSecret, log)
	e := api.NewRouter(svc, db, rdb, cfg.JWTAccessSecret, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}

	// Admissions have stopped; give the queue its final drain.
	stopFlusher()
	<-flusherDone

	log.Info().Msg("stopped")
}
