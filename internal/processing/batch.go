package processing

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"catalog-normalizer/internal/metrics"
	"catalog-normalizer/internal/model"
	"catalog-normalizer/internal/schemagate"
)

// ErrUnknownKind is returned for batches whose kind is neither product nor store.
var ErrUnknownKind = errors.New("unknown record kind")

// Stats is returned to the client so we can see throughput and latency.
type Stats struct {
	BatchID  string `json:"batch_id"`
	Received int    `json:"received"`
	Accepted int    `json:"accepted"`
	Rejected int    `json:"rejected"`
	// DurationMillis is the end-to-end processing time for the batch.
	DurationMillis int64 `json:"duration_ms"`
}

// Result carries the accepted records of a batch in input order. Only the
// slice matching the batch kind is populated.
type Result struct {
	Stats      Stats                  `json:"stats"`
	Products   []model.Product        `json:"-"`
	Stores     []model.Store          `json:"-"`
	Rejections []schemagate.Rejection `json:"rejections"`
}

// Options tunes the worker pool. Zero values fall back to defaults.
type Options struct {
	Workers   int
	ChunkSize int
	Metrics   *metrics.Registry
}

const (
	defaultWorkers   = 8
	defaultChunkSize = 100
)

// chunkResult is the gate output for one contiguous slice of the batch.
type chunkResult struct {
	products   []model.Product
	stores     []model.Store
	rejections []schemagate.Rejection
}

// ProcessBatch normalizes and gates every record of a raw batch. Records are
// split into chunks handled by a bounded worker pool; results are stitched
// back together in input order.
func ProcessBatch(ctx context.Context, batch model.RawBatch, opts Options) (*Result, error) {
	if !batch.Kind.Valid() {
		return nil, ErrUnknownKind
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	workers, size := opts.Workers, opts.ChunkSize
	if workers <= 0 {
		workers = defaultWorkers
	}
	if size <= 0 {
		size = defaultChunkSize
	}

	n := len(batch.Records)
	chunks := (n + size - 1) / size
	results := make([]chunkResult, chunks)
	workerCount := calcWorkerCount(chunks, workers)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				lo := c * size
				hi := lo + size
				if hi > n {
					hi = n
				}
				results[c] = gateChunk(batch.Kind, lo, batch.Records[lo:hi])
			}
		}()
	}

	for c := 0; c < chunks; c++ {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- c:
		}
	}
	close(jobs)
	wg.Wait()

	res := &Result{Rejections: []schemagate.Rejection{}}
	for _, r := range results {
		res.Products = append(res.Products, r.products...)
		res.Stores = append(res.Stores, r.stores...)
		res.Rejections = append(res.Rejections, r.rejections...)
	}
	res.Stats = Stats{
		BatchID:        batch.BatchID,
		Received:       n,
		Accepted:       len(res.Products) + len(res.Stores),
		Rejected:       len(res.Rejections),
		DurationMillis: time.Since(start).Milliseconds(),
	}

	if m := opts.Metrics; m != nil {
		kind := string(batch.Kind)
		m.Received.WithLabelValues(kind).Add(float64(res.Stats.Received))
		m.Accepted.WithLabelValues(kind).Add(float64(res.Stats.Accepted))
		m.Rejected.WithLabelValues(kind).Add(float64(res.Stats.Rejected))
		m.BatchSec.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}
	zap.L().Debug("Processing: batch done",
		zap.String("batch_id", batch.BatchID),
		zap.String("kind", string(batch.Kind)),
		zap.Int("received", res.Stats.Received),
		zap.Int("accepted", res.Stats.Accepted),
		zap.Int("rejected", res.Stats.Rejected),
	)
	return res, nil
}

// gateChunk runs the schema gate over records whose batch positions start at offset.
func gateChunk(kind model.Kind, offset int, records []any) chunkResult {
	var out chunkResult
	for i, raw := range records {
		switch kind {
		case model.KindProduct:
			p, rej := schemagate.GateProduct(offset+i, raw)
			if rej != nil {
				out.rejections = append(out.rejections, *rej)
				continue
			}
			out.products = append(out.products, *p)
		case model.KindStore:
			s, rej := schemagate.GateStore(offset+i, raw)
			if rej != nil {
				out.rejections = append(out.rejections, *rej)
				continue
			}
			out.stores = append(out.stores, *s)
		}
	}
	return out
}

func calcWorkerCount(chunks, limit int) int {
	if chunks <= 0 {
		return 1
	}
	if chunks < limit {
		return chunks
	}
	return limit
}
