package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"catalog-normalizer/internal/config"
	"catalog-normalizer/internal/dedupe"
	"catalog-normalizer/internal/httpapi"
	"catalog-normalizer/internal/jsonl"
	"catalog-normalizer/internal/kstream"
	"catalog-normalizer/internal/logger"
	"catalog-normalizer/internal/lookup"
	"catalog-normalizer/internal/metrics"
	"catalog-normalizer/internal/processing"
	"catalog-normalizer/internal/projections"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not up yet
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.Init(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Normalizer API: starting", zap.Stringer("config", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := metrics.NewRegistry()
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	projector := projections.NewProjector(rdb, cfg.RecordTTL)

	pipeline := &kstream.Pipeline{
		DataDir: cfg.DataDir,
		Options: processing.Options{
			Workers:   cfg.Workers,
			ChunkSize: cfg.ChunkSize,
			Metrics:   reg,
		},
		Events: projector,
		Dedupe: dedupe.NewGuard(rdb, cfg.DedupeWindow),
	}
	apiOpts := httpapi.Options{
		MaxBodyBytes: cfg.MaxBodyBytes,
		Pipeline:     pipeline,
		Metrics:      reg,
	}

	if cfg.EnableConsumers {
		pub := kstream.NewPublisher(cfg.KafkaBroker, cfg.RawTopic, cfg.NormalizedTopic)
		defer pub.Close()
		pipeline.Events = pub
		apiOpts.Raw = pub
		apiOpts.Ingest = dedupe.NewIngestGuard(rdb, cfg.DedupeWindow)

		// Start Kafka consumers in background goroutines
		go func() {
			log.Info("Starting normalizer consumer...")
			reader := kstream.KafkaReader(cfg.KafkaBroker, cfg.RawTopic, cfg.GroupID)
			if err := kstream.ConsumeRawTopic(ctx, reader, pipeline); err != nil {
				log.Error("Normalizer consumer error", zap.Error(err))
			}
		}()

		go func() {
			log.Info("Starting projectors consumer...")
			reader := kstream.KafkaReader(cfg.KafkaBroker, cfg.NormalizedTopic, cfg.GroupID+"-projections")
			if err := projector.ConsumeNormalizedTopic(ctx, reader); err != nil {
				log.Error("Projectors consumer error", zap.Error(err))
			}
		}()
	}

	// Setup HTTP routes
	r := mux.NewRouter()
	httpapi.New(apiOpts).RegisterRoutes(r) // normalize + ingest side
	lookup.NewService(rdb).RegisterRoutes(r)
	jsonl.NewQueryService(cfg.DataDir).RegisterRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("Shutting down...")
		cancel()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
		defer stop()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info("Normalizer API listening", zap.String("addr", cfg.HTTPAddr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server error", zap.Error(err))
	}
}
