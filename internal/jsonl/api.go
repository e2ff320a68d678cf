package jsonl

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"catalog-normalizer/internal/model"
)

// RegisterRoutes registers the curated data query routes.
func (s *QueryService) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/data").Subrouter()

	api.HandleFunc("/curated/{kind}", s.GetCuratedHandler).Methods("GET")
	api.HandleFunc("/rejections", s.GetRejectionsHandler).Methods("GET")
	api.HandleFunc("/stats", s.GetStatsHandler).Methods("GET")
}

func pageFromQuery(r *http.Request) Page {
	page := Page{Date: r.URL.Query().Get("date"), Limit: 100}
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 1000 {
			page.Limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			page.Offset = parsed
		}
	}
	return page
}

// GetCuratedHandler handles GET /api/data/curated/{kind}
func (s *QueryService) GetCuratedHandler(w http.ResponseWriter, r *http.Request) {
	kind := model.Kind(mux.Vars(r)["kind"])
	if !kind.Valid() {
		writeResult(w, http.StatusNotFound, nil, errors.New("unknown kind"))
		return
	}

	lines, err := s.GetCurated(r.Context(), kind, pageFromQuery(r))
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeResult(w, http.StatusOK, lines, nil)
}

// GetRejectionsHandler handles GET /api/data/rejections
func (s *QueryService) GetRejectionsHandler(w http.ResponseWriter, r *http.Request) {
	records, err := s.GetRejections(r.Context(), r.URL.Query().Get("batch_id"), pageFromQuery(r))
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeResult(w, http.StatusOK, records, nil)
}

// GetStatsHandler handles GET /api/data/stats
func (s *QueryService) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.GetStats(r.Context())
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeResult(w, http.StatusOK, stats, nil)
}

func writeQueryError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrBadDate) {
		writeResult(w, http.StatusBadRequest, nil, err)
		return
	}
	zap.L().Error("Data API: query failed", zap.Error(err))
	writeResult(w, http.StatusInternalServerError, nil, err)
}

func writeResult(w http.ResponseWriter, status int, data any, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err != nil {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    data,
	})
}
