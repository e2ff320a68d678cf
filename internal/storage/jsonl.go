package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"catalog-normalizer/internal/model"
)

// Line is one curated JSONL row.
type Line struct {
	BatchID   string          `json:"batch_id"`
	WrittenAt string          `json:"written_at"`
	Record    json.RawMessage `json:"record"`
}

// Dir returns the curated directory for a record kind.
func Dir(dataDir string, kind model.Kind) string {
	return filepath.Join(dataDir, "curated", string(kind)+"s")
}

// AppendRecords appends already-encoded normalized records to the day file
// of their kind, <data>/curated/<kind>s/<yyyy-mm-dd>.jsonl, and returns the
// file path. Downstream batch jobs pick these files up; the service itself
// only appends.
func AppendRecords(_ context.Context, dataDir string, kind model.Kind, batchID string, records []json.RawMessage) (string, error) {
	dir := Dir(dataDir, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	fpath := filepath.Join(dir, fmt.Sprintf("%s.jsonl", now.Format("2006-01-02")))
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	writtenAt := now.Format(time.RFC3339Nano)
	for _, rec := range records {
		data, err := json.Marshal(Line{BatchID: batchID, WrittenAt: writtenAt, Record: rec})
		if err != nil {
			return "", err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return "", err
		}
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return fpath, nil
}
