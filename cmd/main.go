package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RaikyD/wc-tracking-service/internal/application"
	"github.com/RaikyD/wc-tracking-service/internal/config"
	"github.com/RaikyD/wc-tracking-service/internal/kafka"
	"github.com/RaikyD/wc-tracking-service/internal/logger"
	"github.com/RaikyD/wc-tracking-service/internal/metrics"
	"github.com/RaikyD/wc-tracking-service/internal/migrate"
	"github.com/RaikyD/wc-tracking-service/internal/presentation"
	"github.com/RaikyD/wc-tracking-service/internal/repository"
	"github.com/RaikyD/wc-tracking-service/internal/timeline"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Init()
		logger.Error("config load failed", "err", err)
		os.Exit(1)
	}
	logger.InitFormat(cfg.LOG_FORMAT)
	defer logger.Sync()
	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("store init failed", "backend", cfg.STORE_BACKEND, "err", err)
		os.Exit(1)
	}
	defer closeStore()
	logger.Info("record store ready", "backend", cfg.STORE_BACKEND, "columns", cfg.STORE_COLUMNS.Headers())

	tlCfg := timeline.DefaultConfig()
	if cfg.TIMELINE_FILE != "" {
		tlCfg, err = timeline.LoadFile(cfg.TIMELINE_FILE)
		if err != nil {
			logger.Error("timeline config failed", "file", cfg.TIMELINE_FILE, "err", err)
			os.Exit(1)
		}
	}

	// Wiring
	builder := application.NewBuilder(application.BuilderConfig{
		AcceptedStatuses: cfg.ACCEPTED_STATUSES,
		DefaultService:   cfg.DEFAULT_SERVICE,
		TrackingBaseURL:  cfg.TRACKING_BASE_URL,
	})
	svc := application.NewOrdersService(store, builder, timeline.New(tlCfg), cfg.STORE_COLUMNS, cfg.WEBHOOK_SECRET)
	if cfg.WEBHOOK_SECRET == "" {
		logger.Warn("WEBHOOK_SECRET not set, signature verification disabled")
	}

	if cfg.KAFKA_TOPIC != "" {
		prod := kafka.NewProducer(cfg.KAFKA_BROKERS, cfg.KAFKA_TOPIC)
		defer prod.Close()
		svc.SetPublisher(prod)
	}
	if cfg.KAFKA_INGEST_TOPIC != "" {
		kafka.StartConsumer(ctx, svc, kafka.ConsumerConfig{
			Brokers: cfg.KAFKA_BROKERS,
			Topic:   cfg.KAFKA_INGEST_TOPIC,
			GroupID: cfg.KAFKA_GROUP_ID,
		})
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Instrument)
	r.Use(presentation.CORS(cfg.CORS_ORIGINS))
	r.Use(middleware.Timeout(60 * time.Second))

	h := presentation.NewOrdersHandler(svc)
	h.Register(r)
	r.Handle("/metrics", promhttp.Handler())
	presentation.MountStatic(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP_PORT,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting http", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server crashed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "err", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (repository.RecordStore, func(), error) {
	noop := func() {}
	switch cfg.STORE_BACKEND {
	case config.BackendSheets:
		s, err := repository.NewSheetsStore(ctx, cfg.GOOGLE_CREDENTIALS_FILE, cfg.SHEET_ID, cfg.SHEET_RANGE)
		if err != nil {
			return nil, nil, err
		}
		if err := s.EnsureHeader(ctx, cfg.STORE_COLUMNS); err != nil {
			return nil, nil, err
		}
		return s, noop, nil

	case config.BackendPostgres:
		if err := migrate.Up(ctx, cfg.DB_STRING); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.New(ctx, cfg.DB_STRING)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repository.NewPostgresStore(pool, cfg.STORE_COLUMNS), pool.Close, nil

	case config.BackendRedis:
		s, err := repository.NewRedisStore(ctx, cfg.REDIS_ADDR, cfg.REDIS_KEY, cfg.STORE_COLUMNS)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	default:
		logger.Warn("using in-memory store, rows are lost on restart")
		return repository.NewMemoryStore(cfg.STORE_COLUMNS), noop, nil
	}
}
