package projections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"catalog-normalizer/internal/model"
)

// StoreProductsKey is the set of product ids offered by a store.
func StoreProductsKey(storeID string) string {
	return fmt.Sprintf("store:%s:products", storeID)
}

// ProductStoreKey holds the store id a product is currently indexed under.
func ProductStoreKey(productID string) string {
	return fmt.Sprintf("product:%s:store", productID)
}

// FreshnessKey is the sorted set of record ids scored by last update time.
func FreshnessKey(kind model.Kind) string {
	return fmt.Sprintf("freshness:%s", kind)
}

// UpdateIndex maintains the store → products index and the freshness set.
func UpdateIndex(ctx context.Context, rdb redis.Cmdable, evt model.CatalogNormalized) error {
	if evt.Kind == model.KindProduct {
		if err := indexProductStore(ctx, rdb, evt.ID, evt.StoreID); err != nil {
			return err
		}
	}

	// redis/go-redis/v9: ZAdd adds member to Redis Sorted Set (ZSET) with score.
	// Used for freshness tracking: records sorted by commit timestamp.
	if err := rdb.ZAdd(ctx, FreshnessKey(evt.Kind), redis.Z{
		Score:  float64(commitTime(evt).Unix()),
		Member: evt.ID,
	}).Err(); err != nil {
		return err
	}

	zap.L().Debug("Index Projector: updated",
		zap.String("kind", string(evt.Kind)),
		zap.String("id", evt.ID),
		zap.String("store_id", evt.StoreID),
	)
	return nil
}

// indexProductStore files a product under storeID and drops it from the set
// of the store it was filed under before. An empty storeID unfiles it.
func indexProductStore(ctx context.Context, rdb redis.Cmdable, productID, storeID string) error {
	key := ProductStoreKey(productID)
	var (
		prev string
		err  error
	)
	// redis/go-redis/v9: GetSet and GetDel swap the remembered store id atomically.
	if storeID == "" {
		prev, err = rdb.GetDel(ctx, key).Result()
	} else {
		prev, err = rdb.GetSet(ctx, key, storeID).Result()
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	if prev != "" && prev != storeID {
		// redis/go-redis/v9: SRem removes the product from the old store's set.
		if err := rdb.SRem(ctx, StoreProductsKey(prev), productID).Err(); err != nil {
			return err
		}
	}
	if storeID == "" {
		return nil
	}
	// redis/go-redis/v9: SAdd adds member to Redis Set. Used for Index: store → products.
	return rdb.SAdd(ctx, StoreProductsKey(storeID), productID).Err()
}

// commitTime parses the event timestamp, falling back to now.
func commitTime(evt model.CatalogNormalized) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, evt.Timestamp)
	if err != nil {
		return time.Now()
	}
	return ts
}
