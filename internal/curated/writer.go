package curated

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"catalog-normalizer/internal/model"
	"catalog-normalizer/internal/processing"
	"catalog-normalizer/internal/storage"
)

// WriteAccepted writes the accepted records of a processed batch to the
// curated JSONL store and returns one CatalogNormalized event per record.
func WriteAccepted(ctx context.Context, dataDir string, batch model.RawBatch, res *processing.Result) ([]model.CatalogNormalized, error) {
	tC := time.Now().UTC().Format(time.RFC3339Nano)
	events := []model.CatalogNormalized{}
	var encoded []json.RawMessage

	for i := range res.Products {
		p := &res.Products[i]
		data, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		evt := model.CatalogNormalized{
			Kind:      model.KindProduct,
			ID:        *p.ID,
			BatchID:   batch.BatchID,
			Timestamp: tC,
			Record:    data,
		}
		if p.StoreID != nil {
			evt.StoreID = *p.StoreID
		}
		events = append(events, evt)
		encoded = append(encoded, data)
	}
	for i := range res.Stores {
		s := &res.Stores[i]
		data, err := json.Marshal(s)
		if err != nil {
			return nil, err
		}
		events = append(events, model.CatalogNormalized{
			Kind:      model.KindStore,
			ID:        *s.ID,
			BatchID:   batch.BatchID,
			Timestamp: tC,
			Record:    data,
		})
		encoded = append(encoded, data)
	}

	if len(encoded) == 0 {
		return events, nil
	}
	path, err := storage.AppendRecords(ctx, dataDir, batch.Kind, batch.BatchID, encoded)
	if err != nil {
		return nil, err
	}
	zap.L().Info("Curated Writer: committed batch",
		zap.String("batch_id", batch.BatchID),
		zap.Int("records", len(encoded)),
		zap.String("path", path),
	)
	return events, nil
}
