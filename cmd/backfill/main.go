// Package main provides the backfill tool that pushes existing MongoDB
// catalog documents through the normalizer pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"catalog-normalizer/internal/config"
	"catalog-normalizer/internal/kstream"
	"catalog-normalizer/internal/logger"
	"catalog-normalizer/internal/model"
	"catalog-normalizer/internal/mongosrc"
	"catalog-normalizer/internal/processing"
)

func main() {
	kind := flag.String("kind", "", "Record kind: product or store")
	collection := flag.String("collection", "", "Source collection (default: <kind>s)")
	pageSize := flag.Int("page-size", 500, "Documents per batch")
	publish := flag.Bool("publish", false, "Publish raw batches to Kafka instead of processing locally")
	flag.Parse()

	k := model.Kind(*kind)
	if !k.Valid() {
		fmt.Println("Usage: backfill -kind <product|store> [-collection name] [-page-size n] [-publish]")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *collection == "" {
		*collection = string(k) + "s"
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.Init(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := mongosrc.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal("Backfill: mongo connect failed", zap.Error(err))
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	src := mongosrc.NewSource(client.Database(cfg.MongoDatabase), k, *collection, *pageSize)

	var handle func(model.RawBatch) error
	if *publish {
		pub := kstream.NewPublisher(cfg.KafkaBroker, cfg.RawTopic, cfg.NormalizedTopic)
		defer pub.Close()
		handle = func(batch model.RawBatch) error {
			return pub.PublishRawBatch(ctx, batch)
		}
	} else {
		pipeline := &kstream.Pipeline{
			DataDir: cfg.DataDir,
			Options: processing.Options{Workers: cfg.Workers, ChunkSize: cfg.ChunkSize},
		}
		handle = func(batch model.RawBatch) error {
			res, err := pipeline.Handle(ctx, batch)
			if err != nil {
				return err
			}
			log.Info("Backfill: batch done",
				zap.String("batch_id", res.Stats.BatchID),
				zap.Int("accepted", res.Stats.Accepted),
				zap.Int("rejected", res.Stats.Rejected),
			)
			return nil
		}
	}

	total, err := src.Each(ctx, handle)
	if err != nil {
		log.Fatal("Backfill: failed", zap.Int("documents", total), zap.Error(err))
	}
	log.Info("Backfill: complete",
		zap.String("collection", *collection),
		zap.Int("documents", total),
		zap.Bool("published", *publish),
	)
}
