package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/trogers1052/dividend-dashboard/internal/api"
	"github.com/trogers1052/dividend-dashboard/internal/config"
	"github.com/trogers1052/dividend-dashboard/internal/database"
	"github.com/trogers1052/dividend-dashboard/internal/kafka"
	"github.com/trogers1052/dividend-dashboard/internal/logger"
	"github.com/trogers1052/dividend-dashboard/internal/portfolio"
	"github.com/trogers1052/dividend-dashboard/internal/rates"
	"github.com/trogers1052/dividend-dashboard/internal/scheduler"
	"github.com/trogers1052/dividend-dashboard/internal/stream"
)

func main() {
	// A missing .env is fine; the environment may already be set
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	goRun := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	// Exchange rate
	var rateCache rates.Cache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		rateCache = rates.NewRedisCache(rdb, cfg.Redis.Key)
	}
	rateService := rates.NewService(rates.NewYahooProvider(nil, cfg.Rates.URL), rateCache, cfg.Rates.TTL, cfg.Rates.Fallback, log)

	// Portfolio store, publishing every change when Kafka is configured and
	// telling the quote stream when the held symbols may have changed
	var (
		publisher *kafka.Publisher
		client    *stream.Client
	)
	opts := portfolio.Options{ConsolidateAccounts: cfg.Portfolio.ConsolidateAccounts}
	opts.OnChange = func(snap *portfolio.Snapshot) {
		if publisher != nil {
			publisher.Notify(snap)
		}
		if client != nil {
			client.Refresh()
		}
	}
	if cfg.Kafka.Enabled() && cfg.Kafka.EventsTopic != "" {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic, "portfolio")
		defer producer.Close()

		publisher = kafka.NewPublisher(producer, log)
		goRun(func() { publisher.Run(ctx) })
	}
	store := portfolio.NewStore(rateService.Rate(ctx), opts, log)

	// Live quote stream, created before anything can change the store
	if cfg.Stream.URL != "" {
		symbols := store.Symbols
		if len(cfg.Stream.Symbols) > 0 {
			configured := cfg.Stream.Symbols
			symbols = func() []string { return configured }
		}
		var tokens stream.TokenSource
		if cfg.Stream.TokenURL != "" {
			tokens = stream.HTTPTokenSource(nil, cfg.Stream.TokenURL)
		}
		client = stream.NewClient(cfg.Stream.URL, symbols, tokens, store, log)
	}

	// Database loader
	sched := scheduler.New(log)
	if cfg.Database.Host != "" {
		db, err := database.New(cfg.Database.ConnectionString())
		if err != nil {
			log.Warn().Err(err).Msg("Database unavailable, positions will come from Kafka only")
		} else {
			defer db.Close()

			reload := scheduler.NewReloadPositionsJob(db, rateService, store, log)
			if err := sched.RunNow(reload); err != nil {
				log.Error().Err(err).Msg("Initial positions load failed")
			}
			addJob(sched, cfg.Schedule.ReloadPositions, reload, log)
		}
	}
	addJob(sched, cfg.Schedule.RefreshRate, scheduler.NewRefreshRateJob(rateService, store), log)
	sched.Start()
	defer sched.Stop()

	// Kafka consumers
	if cfg.Kafka.Enabled() {
		if cfg.Kafka.PositionsTopic != "" {
			positions := kafka.NewPositionsConsumer(cfg.Kafka.Brokers, cfg.Kafka.PositionsTopic, cfg.Kafka.GroupID, store, log)
			goRun(func() { runConsumer(ctx, positions.Start, log) })
		}
		if cfg.Kafka.QuotesTopic != "" {
			quotes := kafka.NewQuoteConsumer(cfg.Kafka.Brokers, cfg.Kafka.QuotesTopic, cfg.Kafka.GroupID, store, log)
			goRun(func() { runConsumer(ctx, quotes.Start, log) })
		}
	}

	if client != nil {
		goRun(func() { _ = client.Run(ctx) })
	}

	// HTTP server
	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           api.SetupRoutes(api.NewHandler(store, log)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	wg.Wait()
	log.Info().Msg("Server stopped")
}

func addJob(sched *scheduler.Scheduler, schedule string, job scheduler.Job, log zerolog.Logger) {
	if schedule == "" {
		return
	}
	if err := sched.AddJob(schedule, job); err != nil {
		log.Error().Err(err).Str("job", job.Name()).Msg("Invalid job schedule")
	}
}

func runConsumer(ctx context.Context, start func(context.Context) error, log zerolog.Logger) {
	if err := start(ctx); err != nil {
		log.Error().Err(err).Msg("Kafka consumer stopped with error")
	}
}
