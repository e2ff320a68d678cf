package kstream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"catalog-normalizer/internal/model"
)

// newWriter constructs a Kafka producer using segmentio/kafka-go library.
// kafka.Writer batches messages and retries on transient broker errors.
func newWriter(broker, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // same key, same partition: per-record ordering
		RequiredAcks: kafka.RequireOne,
		BatchBytes:   104857600, // raw batches can be large
		BatchTimeout: 50 * time.Millisecond,
	}
}

// Publisher writes raw batches and normalized events to their topics.
type Publisher struct {
	raw        *kafka.Writer
	normalized *kafka.Writer
}

// NewPublisher creates writers for the raw and normalized topics.
func NewPublisher(broker, rawTopic, normalizedTopic string) *Publisher {
	return &Publisher{
		raw:        newWriter(broker, rawTopic),
		normalized: newWriter(broker, normalizedTopic),
	}
}

// PublishRawBatch sends a raw batch to the ingest topic so the pipeline
// consumer can normalize it.
func (p *Publisher) PublishRawBatch(ctx context.Context, batch model.RawBatch) error {
	msg, err := rawBatchMessage(batch)
	if err != nil {
		return err
	}
	return p.raw.WriteMessages(ctx, msg)
}

// PublishNormalized sends CatalogNormalized events to the normalized topic.
func (p *Publisher) PublishNormalized(ctx context.Context, events []model.CatalogNormalized) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, evt := range events {
		msg, err := normalizedMessage(evt)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return p.normalized.WriteMessages(ctx, msgs...)
}

// Close flushes and closes both writers.
func (p *Publisher) Close() error {
	errRaw := p.raw.Close()
	if err := p.normalized.Close(); err != nil {
		return err
	}
	return errRaw
}

func rawBatchMessage(batch model.RawBatch) (kafka.Message, error) {
	data, err := json.Marshal(batch)
	if err != nil {
		return kafka.Message{}, err
	}
	// Key is used for partitioning (same key -> same partition for ordering).
	return kafka.Message{
		Key:   []byte(batch.BatchID),
		Value: data,
		Time:  time.Now(),
	}, nil
}

func normalizedMessage(evt model.CatalogNormalized) (kafka.Message, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(string(evt.Kind) + ":" + evt.ID),
		Value: data,
		Time:  time.Now(),
	}, nil
}
