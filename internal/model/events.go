package model

import "encoding/json"

// RawBatch is an ingest unit: a list of raw records of one kind as received
// from an upstream producer. It is published to the raw topic unchanged.
type RawBatch struct {
	BatchID string `json:"batch_id" validate:"required"`
	Kind    Kind   `json:"kind" validate:"required,oneof=product store"`
	Source  string `json:"source,omitempty"`
	Records []any  `json:"records"`
}

// CatalogNormalized is emitted after the curated writer commits a record.
// It is published to the normalized topic and consumed by the projectors.
type CatalogNormalized struct {
	Kind      Kind            `json:"kind"`
	ID        string          `json:"id"`
	StoreID   string          `json:"store_id,omitempty"` // products only
	BatchID   string          `json:"batch_id"`
	Timestamp string          `json:"timestamp"` // commit time, RFC3339Nano
	Record    json.RawMessage `json:"record"`
}
