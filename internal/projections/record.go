package projections

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"catalog-normalizer/internal/model"
)

// RecordKey is the read-model key of one normalized record.
func RecordKey(kind model.Kind, id string) string {
	return fmt.Sprintf("%s:%s", kind, id)
}

// UpdateRecord stores the ready-to-serve normalized JSON of a record.
func UpdateRecord(ctx context.Context, rdb redis.Cmdable, evt model.CatalogNormalized, ttl time.Duration) error {
	key := RecordKey(evt.Kind, evt.ID)

	// redis/go-redis/v9: Set stores the record JSON as a string value.
	// TTL=0 means no expiration.
	if err := rdb.Set(ctx, key, []byte(evt.Record), ttl).Err(); err != nil {
		return err
	}

	zap.L().Debug("Record Projector: updated", zap.String("key", key))
	return nil
}
