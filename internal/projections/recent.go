package projections

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"catalog-normalizer/internal/model"
)

// RecentLimit caps the recent-changes feed of each kind.
const RecentLimit = 1000

// Change is one entry of the recent-changes feed.
type Change struct {
	ID        string `json:"id"`
	BatchID   string `json:"batch_id"`
	Timestamp string `json:"timestamp"`
}

// RecentKey is the recent-changes list of a kind, newest first.
func RecentKey(kind model.Kind) string {
	return fmt.Sprintf("recent:%s", kind)
}

// UpdateRecent pushes the change onto the capped recent-changes feed so
// clients can poll for updates instead of re-reading every record.
func UpdateRecent(ctx context.Context, rdb redis.Cmdable, evt model.CatalogNormalized) error {
	data, err := json.Marshal(Change{ID: evt.ID, BatchID: evt.BatchID, Timestamp: evt.Timestamp})
	if err != nil {
		return err
	}

	key := RecentKey(evt.Kind)
	// redis/go-redis/v9: LPush + LTrim in one pipeline keeps the list bounded.
	_, err = rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, RecentLimit-1)
		return nil
	})
	if err != nil {
		return err
	}

	zap.L().Debug("Recent Projector: updated", zap.String("key", key))
	return nil
}
