package kstream

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"catalog-normalizer/internal/curated"
	"catalog-normalizer/internal/model"
	"catalog-normalizer/internal/processing"
	"catalog-normalizer/internal/rejections"
)

var validate = validator.New()

// KafkaReader creates a Kafka consumer using segmentio/kafka-go library.
// kafka.Reader provides consumer group functionality with automatic offset management.
func KafkaReader(broker, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3,
		MaxBytes:       104857600, // 100MB, raw batches can be large
		CommitInterval: time.Second,
	})
}

// EventPublisher receives the events of committed records.
type EventPublisher interface {
	PublishNormalized(ctx context.Context, events []model.CatalogNormalized) error
}

// BatchGuard remembers processed batch ids.
type BatchGuard interface {
	FirstSeen(ctx context.Context, batchID string) bool
	Forget(ctx context.Context, batchID string)
}

// ErrDuplicateBatch is returned by Handle for a batch id the guard has seen.
var ErrDuplicateBatch = errors.New("batch already processed")

// Pipeline normalizes a raw batch end to end: schema gate, rejection log,
// curated sink and, when Events is set, normalized events.
type Pipeline struct {
	DataDir string
	Options processing.Options
	Events  EventPublisher
	Dedupe  BatchGuard
}

// Handle runs one raw batch through the pipeline.
func (p *Pipeline) Handle(ctx context.Context, batch model.RawBatch) (*processing.Result, error) {
	if p.Dedupe != nil && !p.Dedupe.FirstSeen(ctx, batch.BatchID) {
		return nil, ErrDuplicateBatch
	}
	res, err := p.handle(ctx, batch)
	if err != nil && p.Dedupe != nil {
		p.Dedupe.Forget(ctx, batch.BatchID)
	}
	return res, err
}

func (p *Pipeline) handle(ctx context.Context, batch model.RawBatch) (*processing.Result, error) {
	res, err := processing.ProcessBatch(ctx, batch, p.Options)
	if err != nil {
		return nil, err
	}

	if err := rejections.WriteRejections(ctx, p.DataDir, batch.BatchID, batch.Source, res.Rejections); err != nil {
		zap.L().Error("Pipeline: failed to write rejections", zap.String("batch_id", batch.BatchID), zap.Error(err))
	}

	events, err := curated.WriteAccepted(ctx, p.DataDir, batch, res)
	if err != nil {
		return nil, err
	}
	if p.Events != nil && len(events) > 0 {
		if err := p.Events.PublishNormalized(ctx, events); err != nil {
			return nil, err
		}
		if m := p.Options.Metrics; m != nil {
			m.Published.Add(float64(len(events)))
		}
	}
	return res, nil
}

// DecodeRawBatch parses and validates a raw batch message.
func DecodeRawBatch(data []byte) (model.RawBatch, error) {
	var batch model.RawBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return batch, err
	}
	if err := validate.Struct(batch); err != nil {
		return batch, err
	}
	return batch, nil
}

// ConsumeRawTopic runs the normalizer consumer: it reads raw batches from the
// raw topic and hands each one to the pipeline until ctx is cancelled.
func ConsumeRawTopic(ctx context.Context, reader *kafka.Reader, pipeline *Pipeline) error {
	defer reader.Close()

	zap.L().Info("Normalizer: consuming raw batches", zap.String("topic", reader.Config().Topic))

	for {
		// segmentio/kafka-go: ReadMessage blocks until a message is available and
		// commits offsets for the consumer group.
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		batch, err := DecodeRawBatch(msg.Value)
		if err != nil {
			zap.L().Warn("Normalizer: dropping undecodable batch",
				zap.ByteString("key", msg.Key),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			continue
		}

		res, err := pipeline.Handle(ctx, batch)
		if errors.Is(err, ErrDuplicateBatch) {
			zap.L().Info("Normalizer: skipping redelivered batch", zap.String("batch_id", batch.BatchID))
			continue
		}
		if err != nil {
			zap.L().Error("Normalizer: batch failed", zap.String("batch_id", batch.BatchID), zap.Error(err))
			continue
		}
		zap.L().Info("Normalizer: batch normalized",
			zap.String("batch_id", batch.BatchID),
			zap.String("kind", string(batch.Kind)),
			zap.Int("accepted", res.Stats.Accepted),
			zap.Int("rejected", res.Stats.Rejected),
		)
	}
}
