package httpapi

import (
	"encoding/json"
	"net/http"
)

type switchRequest struct {
	Dataset   string `json:"dataset"`
	NewServer string `json:"new_server"`
}

// handleSwitch performs the ownership transaction, returning null on
// success or an error-code object (§4.8 POST /switch).
func (s *Server) handleSwitch(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, map[string]string{"error": "ZfsCommandError", "msg": "invalid request body"})
		return
	}

	if err := s.switcher.Switch(r.Context(), req.Dataset, req.NewServer); err != nil {
		s.logError(r, err)
		writeJSON(w, err)
		return
	}
	writeJSON(w, nil)
}
