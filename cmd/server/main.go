package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Clark-Hu/popcorn-palace/db"
	"github.com/Clark-Hu/popcorn-palace/internal/config"
	"github.com/Clark-Hu/popcorn-palace/internal/events"
	httpserver "github.com/Clark-Hu/popcorn-palace/internal/http"
	"github.com/Clark-Hu/popcorn-palace/internal/ratelimit"
	"github.com/Clark-Hu/popcorn-palace/internal/repository"
	"github.com/Clark-Hu/popcorn-palace/internal/service"
	"github.com/Clark-Hu/popcorn-palace/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.New(os.Stdout, "[cinema-api] ", log.LstdFlags|log.Lshortfile)

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer st.Close()

	if cfg.DBAutoMigrate {
		if err := st.Migrate(dbCtx, db.Migrations); err != nil {
			log.Fatalf("migrate database: %v", err)
		}
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.EventsEnabled() {
		amqpPub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue, time.Duration(cfg.AMQPTimeoutSecs)*time.Second, logger)
		if err != nil {
			log.Fatalf("init event publisher: %v", err)
		}
		defer amqpPub.Close()
		publisher = amqpPub
	}

	var opts []httpserver.Option
	if cfg.RateLimitEnabled() {
		rdb, err := ratelimit.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("connect redis: %v", err)
		}
		defer rdb.Close()
		limiter := ratelimit.NewRedisLimiter(rdb, ratelimit.Config{
			Capacity:       cfg.RateLimitCapacity,
			RefillTokens:   1,
			RefillInterval: time.Duration(cfg.RateLimitRefillInterval) * time.Millisecond,
			Prefix:         cfg.RateLimitPrefix,
		})
		opts = append(opts, httpserver.WithRateLimiter(limiter))
	}

	repo := repository.New(st)
	services := httpserver.Services{
		Catalog:   service.NewCatalog(repo, publisher, logger),
		Scheduler: service.NewScheduler(repo, publisher, logger),
		Ledger:    service.NewLedger(repo, publisher, logger),
	}
	server := httpserver.New(cfg, st, services, logger, opts...)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()
	logger.Printf("listening on :%s", cfg.Port)

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
}
