package httpapi

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"catalog-normalizer/internal/kstream"
	"catalog-normalizer/internal/metrics"
	"catalog-normalizer/internal/model"
	"catalog-normalizer/internal/normalize"
	"catalog-normalizer/internal/processing"
)

// go-playground/validator/v10: Struct validator for the assembled ingest batch.
var validate = validator.New()

const defaultMaxBodyBytes = 10 << 20

// RawPublisher forwards raw batches to the raw topic.
type RawPublisher interface {
	PublishRawBatch(ctx context.Context, batch model.RawBatch) error
}

// Options configures the ingest side of the API.
type Options struct {
	MaxBodyBytes int
	// Pipeline handles ingest batches locally when Raw is nil.
	Pipeline *kstream.Pipeline
	// Raw, when set, receives ingest batches; the raw-topic consumer then
	// runs the pipeline.
	Raw RawPublisher
	// Ingest guards published batch ids at the edge. Unused when Raw is nil.
	Ingest  kstream.BatchGuard
	Metrics *metrics.Registry
}

// Handler serves the normalize and ingest endpoints.
type Handler struct {
	maxBody  int64
	pipeline *kstream.Pipeline
	raw      RawPublisher
	ingest   kstream.BatchGuard
	metrics  *metrics.Registry
}

// New builds a Handler from opts.
func New(opts Options) *Handler {
	maxBody := int64(opts.MaxBodyBytes)
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	pipeline := opts.Pipeline
	if pipeline == nil {
		pipeline = &kstream.Pipeline{}
	}
	return &Handler{
		maxBody:  maxBody,
		pipeline: pipeline,
		raw:      opts.Raw,
		ingest:   opts.Ingest,
		metrics:  opts.Metrics,
	}
}

// RegisterRoutes wires HTTP routes (normalize + ingest side).
// gorilla/mux: Router provides method-based routing and URL pattern matching.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/v1/normalize/product", h.normalizeOne(model.KindProduct)).Methods(http.MethodPost)
	r.HandleFunc("/v1/normalize/store", h.normalizeOne(model.KindStore)).Methods(http.MethodPost)
	r.HandleFunc("/v1/normalize/products", h.normalizeMany(model.KindProduct)).Methods(http.MethodPost)
	r.HandleFunc("/v1/normalize/stores", h.normalizeMany(model.KindStore)).Methods(http.MethodPost)
	r.HandleFunc("/v1/ingest/{kind}", h.ingestHandler).Methods(http.MethodPost)
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics.Handler()).Methods(http.MethodGet)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// normalizeOne maps a single raw record. A body that is not an object
// yields JSON null.
func (h *Handler) normalizeOne(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw any
		if !h.decodeBody(w, r, &raw) {
			return
		}
		if kind == model.KindProduct {
			writeJSON(w, r, http.StatusOK, normalize.Product(raw))
			return
		}
		writeJSON(w, r, http.StatusOK, normalize.Store(raw))
	}
}

// normalizeMany maps a raw collection. A body that is not an array yields [].
func (h *Handler) normalizeMany(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw any
		if !h.decodeBody(w, r, &raw) {
			return
		}
		if kind == model.KindProduct {
			writeJSON(w, r, http.StatusOK, normalize.Products(raw))
			return
		}
		writeJSON(w, r, http.StatusOK, normalize.Stores(raw))
	}
}

// ingestHandler accepts a raw batch of one kind. With a raw publisher the
// batch goes to Kafka and is gated inline only for the response stats;
// otherwise the full pipeline runs in the request.
func (h *Handler) ingestHandler(w http.ResponseWriter, r *http.Request) {
	var records []any
	if !h.decodeBody(w, r, &records) {
		return
	}

	batch := model.RawBatch{
		BatchID: r.URL.Query().Get("batch_id"),
		Kind:    model.Kind(mux.Vars(r)["kind"]),
		Source:  r.URL.Query().Get("source"),
		Records: records,
	}
	if batch.BatchID == "" {
		// google/uuid: random batch id when the producer does not supply one.
		batch.BatchID = uuid.NewString()
	}
	if batch.Records == nil {
		batch.Records = []any{}
	}

	// go-playground/validator/v10: Struct validates kind against the oneof tag.
	if err := validate.Struct(batch); err != nil {
		http.Error(w, "invalid batch: "+err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	var (
		res *processing.Result
		err error
	)
	if h.raw != nil {
		if h.ingest != nil && !h.ingest.FirstSeen(ctx, batch.BatchID) {
			http.Error(w, "batch already processed", http.StatusConflict)
			return
		}
		if err := h.raw.PublishRawBatch(ctx, batch); err != nil {
			if h.ingest != nil {
				h.ingest.Forget(ctx, batch.BatchID)
			}
			zap.L().Error("Edge: failed to publish raw batch", zap.String("batch_id", batch.BatchID), zap.Error(err))
			http.Error(w, "failed to enqueue batch", http.StatusServiceUnavailable)
			return
		}
		opts := h.pipeline.Options
		opts.Metrics = nil // counted by the consumer
		res, err = processing.ProcessBatch(ctx, batch, opts)
	} else {
		res, err = h.pipeline.Handle(ctx, batch)
	}
	if errors.Is(err, kstream.ErrDuplicateBatch) {
		http.Error(w, "batch already processed", http.StatusConflict)
		return
	}
	if err != nil {
		zap.L().Error("Edge: ingest processing error", zap.String("batch_id", batch.BatchID), zap.Error(err))
		http.Error(w, "processing failed", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if h.raw != nil {
		status = http.StatusAccepted
	}
	writeJSON(w, r, status, res)
}

// decodeBody reads a JSON body, transparently gunzipping it, and enforces the
// body limit on both the wire and the decompressed stream. It writes the
// error response and returns false on failure.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, h.maxBody)
	var reader io.Reader = body
	if strings.EqualFold(r.Header.Get("Content-Encoding"), "gzip") {
		gr, err := gzip.NewReader(body)
		if err != nil {
			if isTooLarge(err) {
				http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
				return false
			}
			http.Error(w, "failed to decompress gzip body", http.StatusBadRequest)
			return false
		}
		defer gr.Close()
		reader = http.MaxBytesReader(w, gr, h.maxBody)
	}

	if err := json.NewDecoder(reader).Decode(v); err != nil {
		if isTooLarge(err) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// writeJSON encodes v, gzip-compressed when the client accepts it.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
		return
	}

	w.Header().Set("Content-Encoding", "gzip")
	w.WriteHeader(status)
	gw := gzip.NewWriter(w)
	defer gw.Close()
	_ = json.NewEncoder(gw).Encode(v)
}
