package httpapi

import (
	"encoding/json"
	"net/http"
)

// handleSyncBulk schedules transfers for every dataset (§4.8 GET /sync).
func (s *Server) handleSyncBulk(w http.ResponseWriter, r *http.Request) {
	entries := s.replicator.Schedule(r.Context(), nil)
	writeJSON(w, entries)
}

type syncRequest struct {
	Datasets []string `json:"datasets"`
}

// handleSyncNamed schedules transfers only for the named datasets
// (§4.8 POST /sync).
func (s *Server) handleSyncNamed(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, map[string]string{"error": "ZfsCommandError", "msg": "invalid request body"})
		return
	}
	entries := s.replicator.Schedule(r.Context(), req.Datasets)
	writeJSON(w, entries)
}
