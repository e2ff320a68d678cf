package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultWindow is how long a batch id is remembered.
const DefaultWindow = 7 * 24 * time.Hour

// Guard remembers processed batch ids so redelivered raw batches are not
// written twice.
type Guard struct {
	rdb    redis.Cmdable
	window time.Duration
	key    func(batchID string) string
}

// NewGuard returns a guard keeping batch ids for window.
func NewGuard(rdb redis.Cmdable, window time.Duration) *Guard {
	return newGuard(rdb, window, BatchKey)
}

// NewIngestGuard returns a guard for the HTTP edge. Its markers live apart
// from the pipeline's so a published batch still passes the consumer guard.
func NewIngestGuard(rdb redis.Cmdable, window time.Duration) *Guard {
	return newGuard(rdb, window, IngestKey)
}

func newGuard(rdb redis.Cmdable, window time.Duration, key func(string) string) *Guard {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Guard{rdb: rdb, window: window, key: key}
}

// BatchKey is the marker key of one batch id.
func BatchKey(batchID string) string {
	return fmt.Sprintf("seen:batch:%s", batchID)
}

// IngestKey is the edge marker key of one batch id.
func IngestKey(batchID string) string {
	return fmt.Sprintf("seen:ingest:%s", batchID)
}

// FirstSeen marks batchID and reports whether it was new. On Redis errors the
// batch is treated as new.
func (g *Guard) FirstSeen(ctx context.Context, batchID string) bool {
	// redis/go-redis/v9: SetNX only sets the key if it does not exist.
	// Returns true if the key was created, false if the batch was seen before.
	created, err := g.rdb.SetNX(ctx, g.key(batchID), 1, g.window).Result()
	if err != nil {
		zap.L().Warn("dedupe: SETNX error", zap.String("batch_id", batchID), zap.Error(err))
		return true
	}
	return created
}

// Forget drops the marker so a failed batch can be retried.
func (g *Guard) Forget(ctx context.Context, batchID string) {
	if err := g.rdb.Del(ctx, g.key(batchID)).Err(); err != nil {
		zap.L().Warn("dedupe: DEL error", zap.String("batch_id", batchID), zap.Error(err))
	}
}
