// CLAUDE:SUMMARY HTTP surface: POST /api/resolve, GET /api/history, JSON in and out.
package resolve

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterHTTP mounts the service's routes on a chi router.
func (s *Service) RegisterHTTP(r chi.Router) {
	r.Post("/api/resolve", s.handleResolve)
	r.Get("/api/history", s.handleHistory)
}

func (s *Service) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.InitialSelector == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "initialSelector is required"})
		return
	}
	writeJSON(w, http.StatusOK, s.doResolve(r.Context(), req))
}

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.hist == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "history not enabled"})
		return
	}
	n := 20
	if q := r.URL.Query().Get("limit"); q != "" {
		if v, err := strconv.Atoi(q); err == nil {
			n = v
		}
	}

	var err error
	var entries any
	if anchorID := r.URL.Query().Get("anchor"); anchorID != "" {
		entries, err = s.hist.ByAnchor(r.Context(), anchorID, n)
	} else {
		entries, err = s.hist.Recent(r.Context(), n)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
