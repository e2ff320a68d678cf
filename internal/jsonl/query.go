package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"catalog-normalizer/internal/model"
	"catalog-normalizer/internal/rejections"
	"catalog-normalizer/internal/storage"
)

// ErrBadDate is returned for a date filter that is not yyyy-mm-dd.
var ErrBadDate = errors.New("date must be yyyy-mm-dd")

const maxLineBytes = 16 << 20

// QueryService provides querying capabilities for the curated and rejection
// JSONL files.
type QueryService struct {
	dataDir string
}

// NewQueryService creates a query service rooted at dataDir.
func NewQueryService(dataDir string) *QueryService {
	return &QueryService{dataDir: dataDir}
}

// Page selects a window of lines.
type Page struct {
	Date   string // yyyy-mm-dd, empty for all days
	Limit  int
	Offset int
}

// GetCurated returns curated lines of one kind, oldest day first.
func (s *QueryService) GetCurated(ctx context.Context, kind model.Kind, page Page) ([]storage.Line, error) {
	files, err := dayFiles(storage.Dir(s.dataDir, kind), "", page.Date)
	if err != nil {
		return nil, err
	}
	return scanWindow(ctx, files, page, func(raw []byte) (storage.Line, bool) {
		var line storage.Line
		err := json.Unmarshal(raw, &line)
		return line, err == nil
	})
}

// GetRejections returns rejection records, oldest day first. A non-empty
// batchID keeps only that batch's rejections.
func (s *QueryService) GetRejections(ctx context.Context, batchID string, page Page) ([]rejections.Record, error) {
	files, err := dayFiles(rejections.Dir(s.dataDir), "rejections_", page.Date)
	if err != nil {
		return nil, err
	}
	return scanWindow(ctx, files, page, func(raw []byte) (rejections.Record, bool) {
		var rec rejections.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return rec, false
		}
		return rec, batchID == "" || rec.BatchID == batchID
	})
}

// Stats summarizes what the sinks hold.
type Stats struct {
	Products     int    `json:"products"`
	Stores       int    `json:"stores"`
	Rejections   int    `json:"rejections"`
	Batches      int    `json:"batches"`
	LatestUpdate string `json:"latest_update"`
}

// GetStats counts curated and rejected lines across all days.
func (s *QueryService) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	batches := make(map[string]bool)

	for _, kind := range []model.Kind{model.KindProduct, model.KindStore} {
		files, err := dayFiles(storage.Dir(s.dataDir, kind), "", "")
		if err != nil {
			return nil, err
		}
		count := 0
		for _, file := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			_, err := scanFile(file, func(raw []byte) bool {
				var line storage.Line
				if err := json.Unmarshal(raw, &line); err != nil {
					return false
				}
				count++
				batches[line.BatchID] = true
				if line.WrittenAt > stats.LatestUpdate {
					stats.LatestUpdate = line.WrittenAt
				}
				return false
			})
			if err != nil {
				return nil, err
			}
		}
		if kind == model.KindProduct {
			stats.Products = count
		} else {
			stats.Stores = count
		}
	}

	files, err := dayFiles(rejections.Dir(s.dataDir), "rejections_", "")
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		_, err := scanFile(file, func([]byte) bool {
			stats.Rejections++
			return false
		})
		if err != nil {
			return nil, err
		}
	}

	stats.Batches = len(batches)
	return stats, nil
}

// dayFiles lists <dir>/<prefix><yyyy-mm-dd>.jsonl in date order, or only the
// given date's file.
func dayFiles(dir, prefix, date string) ([]string, error) {
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, ErrBadDate
		}
		f := filepath.Join(dir, prefix+date+".jsonl")
		if _, err := os.Stat(f); err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, err
		}
		return []string{f}, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, prefix+"*.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// scanWindow decodes every non-blank line, skips the first page.Offset
// matches and returns at most page.Limit of the rest.
func scanWindow[T any](ctx context.Context, files []string, page Page, decode func([]byte) (T, bool)) ([]T, error) {
	out := []T{}
	skipped := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		done, err := scanFile(file, func(raw []byte) bool {
			v, ok := decode(raw)
			if !ok {
				return false
			}
			if skipped < page.Offset {
				skipped++
				return false
			}
			out = append(out, v)
			return len(out) >= page.Limit
		})
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}
	return out, nil
}

func scanFile(file string, fn func([]byte) (stop bool)) (bool, error) {
	f, err := os.Open(file)
	if err != nil {
		return false, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if fn([]byte(line)) {
			return true, nil
		}
	}
	return false, sc.Err()
}
