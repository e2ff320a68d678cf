package projections

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"catalog-normalizer/internal/model"
)

// Projector applies CatalogNormalized events to the Redis read model.
type Projector struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewProjector returns a projector writing records with the given TTL.
func NewProjector(rdb redis.Cmdable, ttl time.Duration) *Projector {
	return &Projector{rdb: rdb, ttl: ttl}
}

// Apply runs the record, index and recent projectors for one event. Each
// projector runs even if an earlier one failed; the first error is returned.
func (p *Projector) Apply(ctx context.Context, evt model.CatalogNormalized) error {
	var errs []error
	if err := UpdateRecord(ctx, p.rdb, evt, p.ttl); err != nil {
		zap.L().Error("Record Projector error", zap.Error(err))
		errs = append(errs, err)
	}
	if err := UpdateIndex(ctx, p.rdb, evt); err != nil {
		zap.L().Error("Index Projector error", zap.Error(err))
		errs = append(errs, err)
	}
	if err := UpdateRecent(ctx, p.rdb, evt); err != nil {
		zap.L().Error("Recent Projector error", zap.Error(err))
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// PublishNormalized applies events directly, for deployments without Kafka.
func (p *Projector) PublishNormalized(ctx context.Context, events []model.CatalogNormalized) error {
	for _, evt := range events {
		if err := p.Apply(ctx, evt); err != nil {
			return err
		}
	}
	return nil
}

// ConsumeNormalizedTopic runs the projectors over the normalized topic until
// ctx is cancelled.
func (p *Projector) ConsumeNormalizedTopic(ctx context.Context, reader *kafka.Reader) error {
	defer reader.Close()

	zap.L().Info("Projectors: consuming normalized events", zap.String("topic", reader.Config().Topic))

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		var evt model.CatalogNormalized
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			zap.L().Warn("Projectors: failed to unmarshal", zap.Error(err))
			continue
		}
		if !evt.Kind.Valid() || evt.ID == "" {
			zap.L().Warn("Projectors: skipping event without kind or id", zap.ByteString("key", msg.Key))
			continue
		}
		_ = p.Apply(ctx, evt)
	}
}
