package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/aggregator"
	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/metrics"
	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/model"
)

type healthResponse struct {
	Status    string     `json:"status"`
	Path      string     `json:"excel_path"`
	ModTime   *time.Time `json:"mtime"`
	LastError *string    `json:"last_error"`
}

type reloadResponse struct {
	Status string `json:"status"`
	model.CacheStatus
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	s.Cache.EnsureFresh(r.Context(), false)
	ds, st := s.Cache.Snapshot()

	status := "ok"
	if ds == nil {
		status = "no-data"
	}
	writeJSON(w, healthResponse{
		Status:    status,
		Path:      st.Path,
		ModTime:   st.ModTime,
		LastError: st.LastError,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, s.Cache.Status())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	if s.ReloadLimiter != nil && !s.ReloadLimiter.Allow() {
		http.Error(w, "reload rate limit exceeded", http.StatusTooManyRequests)
		return
	}
	s.Cache.EnsureFresh(r.Context(), true)
	writeJSON(w, reloadResponse{Status: "reloaded", CacheStatus: s.Cache.Status()})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	s.Cache.EnsureFresh(r.Context(), false)
	ds, st := s.Cache.Snapshot()

	q := r.URL.Query()
	filters := model.Filters{
		Query:    q.Get("q"),
		CaseID:   q.Get("case_id"),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
	}

	label := "yes"
	if ds == nil {
		label = "no"
	}
	metrics.DashboardRequests.WithLabelValues(label).Inc()

	writeJSON(w, aggregator.Build(ds, filters, st))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	if s.History == nil {
		writeJSON(w, nil)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid 'limit' parameter", http.StatusBadRequest)
			return
		}
		limit = n
	}

	events, err := s.History.RecentLoads(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, events)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if v == nil {
		_, _ = w.Write([]byte("[]"))
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}
