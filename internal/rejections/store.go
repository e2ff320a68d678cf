package rejections

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"catalog-normalizer/internal/schemagate"
)

// Record is one row of the rejections log.
type Record struct {
	Scope     string `json:"scope"`
	Reason    string `json:"reason"`
	BatchID   string `json:"batch_id"`
	Source    string `json:"source,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Dir returns the rejections log directory.
func Dir(dataDir string) string {
	return filepath.Join(dataDir, "rejections")
}

// WriteRejections appends rejection records to the durable rejections store
// at <data>/rejections/rejections_<yyyy-mm-dd>.jsonl.
func WriteRejections(_ context.Context, dataDir, batchID, source string, rejections []schemagate.Rejection) error {
	if len(rejections) == 0 {
		return nil
	}
	dir := Dir(dataDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	now := time.Now().UTC()
	fpath := filepath.Join(dir, fmt.Sprintf("rejections_%s.jsonl", now.Format("2006-01-02")))
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, rej := range rejections {
		record := Record{
			Scope:     rej.Scope,
			Reason:    rej.Reason,
			BatchID:   batchID,
			Source:    source,
			Timestamp: now.Format(time.RFC3339Nano),
		}
		if err := enc.Encode(record); err != nil {
			return err
		}
	}
	return nil
}
