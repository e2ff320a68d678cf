package lookup

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"catalog-normalizer/internal/model"
	"catalog-normalizer/internal/projections"
)

const (
	defaultChangesLimit = 50
	maxChangesLimit     = projections.RecentLimit
)

// Service serves normalized records from the Redis read model.
type Service struct {
	rdb redis.Cmdable
}

// NewService creates a lookup service on top of an existing Redis client.
func NewService(rdb redis.Cmdable) *Service {
	return &Service{rdb: rdb}
}

// RegisterRoutes wires the read-side routes.
// gorilla/mux: path variables carry the record id and kind.
func (s *Service) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/v1/products/{id}", s.recordHandler(model.KindProduct)).Methods(http.MethodGet)
	r.HandleFunc("/v1/stores/{id}", s.recordHandler(model.KindStore)).Methods(http.MethodGet)
	r.HandleFunc("/v1/stores/{id}/products", s.storeProductsHandler).Methods(http.MethodGet)
	r.HandleFunc("/v1/changes/{kind}", s.changesHandler).Methods(http.MethodGet)
}

// recordHandler returns the ready-to-serve JSON of one record.
func (s *Service) recordHandler(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		// redis/go-redis/v9: Get retrieves the record shard stored by the projector.
		val, err := s.rdb.Get(r.Context(), projections.RecordKey(kind, id)).Result()
		if errors.Is(err, redis.Nil) {
			http.Error(w, string(kind)+" not found", http.StatusNotFound)
			return
		}
		if err != nil {
			zap.L().Error("Lookup: record read failed", zap.String("id", id), zap.Error(err))
			http.Error(w, "record lookup failed", http.StatusInternalServerError)
			return
		}

		writeRaw(w, r, []byte(val))
	}
}

// storeProductsHandler returns every cached product of a store. Ids whose
// record has expired are skipped.
func (s *Service) storeProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	storeID := mux.Vars(r)["id"]

	// redis/go-redis/v9: SMembers reads the store → products index.
	ids, err := s.rdb.SMembers(ctx, projections.StoreProductsKey(storeID)).Result()
	if err != nil {
		http.Error(w, "index lookup failed", http.StatusInternalServerError)
		return
	}
	if len(ids) == 0 {
		http.Error(w, "store not found", http.StatusNotFound)
		return
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = projections.RecordKey(model.KindProduct, id)
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		http.Error(w, "record lookup failed", http.StatusInternalServerError)
		return
	}

	products := make([]json.RawMessage, 0, len(vals))
	for _, v := range vals {
		if str, ok := v.(string); ok {
			products = append(products, json.RawMessage(str))
		}
	}

	writeJSON(w, r, map[string]any{
		"store_id": storeID,
		"products": products,
	})
}

// changesHandler returns the newest entries of the recent-changes feed.
func (s *Service) changesHandler(w http.ResponseWriter, r *http.Request) {
	kind := model.Kind(mux.Vars(r)["kind"])
	if !kind.Valid() {
		http.Error(w, "unknown kind", http.StatusNotFound)
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		http.Error(w, "invalid limit", http.StatusBadRequest)
		return
	}

	// redis/go-redis/v9: LRange reads the capped feed, newest first.
	vals, err := s.rdb.LRange(r.Context(), projections.RecentKey(kind), 0, int64(limit-1)).Result()
	if err != nil {
		http.Error(w, "changes lookup failed", http.StatusInternalServerError)
		return
	}

	changes := make([]projections.Change, 0, len(vals))
	for _, v := range vals {
		var c projections.Change
		if err := json.Unmarshal([]byte(v), &c); err != nil {
			continue
		}
		changes = append(changes, c)
	}

	writeJSON(w, r, map[string]any{
		"kind":    kind,
		"changes": changes,
	})
}

func parseLimit(q string) (int, error) {
	if q == "" {
		return defaultChangesLimit, nil
	}
	n, err := cast.ToIntE(q)
	if err != nil || n < 1 {
		return 0, errors.New("limit must be a positive integer")
	}
	if n > maxChangesLimit {
		n = maxChangesLimit
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	writeRaw(w, r, data)
}

// writeRaw writes a JSON body, gzip-compressed when the client accepts it.
func writeRaw(w http.ResponseWriter, r *http.Request, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	var out io.Writer = w
	if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		w.Header().Set("Content-Encoding", "gzip")
		gw := gzip.NewWriter(w)
		defer gw.Close()
		out = gw
	}
	_, _ = out.Write(body)
}
