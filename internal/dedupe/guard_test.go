package dedupe

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestGuard_FirstSeen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	g := NewGuard(rdb, time.Hour)

	assert.True(t, g.FirstSeen(ctx, "b-1"))
	assert.False(t, g.FirstSeen(ctx, "b-1"))
	assert.True(t, g.FirstSeen(ctx, "b-2"))
	assert.Equal(t, time.Hour, mr.TTL("seen:batch:b-1"))

	g.Forget(ctx, "b-1")
	assert.True(t, g.FirstSeen(ctx, "b-1"))

	mr.FastForward(2 * time.Hour)
	assert.True(t, g.FirstSeen(ctx, "b-2"))
}

func TestGuard_RedisDownTreatsBatchAsNew(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	g := NewGuard(rdb, 0)
	assert.True(t, g.FirstSeen(context.Background(), "b-1"))
	assert.Equal(t, DefaultWindow, g.window)
}

func TestIngestGuard_SeparateFromBatchGuard(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	edge := NewIngestGuard(rdb, time.Hour)
	pipeline := NewGuard(rdb, time.Hour)

	assert.True(t, edge.FirstSeen(ctx, "b-1"))
	assert.True(t, mr.Exists("seen:ingest:b-1"))
	assert.False(t, mr.Exists("seen:batch:b-1"))

	// the consumer still sees the batch as new
	assert.True(t, pipeline.FirstSeen(ctx, "b-1"))
	assert.False(t, edge.FirstSeen(ctx, "b-1"))

	edge.Forget(ctx, "b-1")
	assert.False(t, mr.Exists("seen:ingest:b-1"))
	assert.True(t, mr.Exists("seen:batch:b-1"))
}
