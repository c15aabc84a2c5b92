package httpapi

import "net/http"

// handleClean runs retention synchronously and returns null (§4.8 GET
// /clean).
func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	if err := s.retention.Run(r.Context()); err != nil {
		s.logError(r, err)
		writeJSON(w, err)
		return
	}
	writeJSON(w, nil)
}
