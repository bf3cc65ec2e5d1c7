package handlers

import (
	"net/http"
)

// HandleGlobalSearch runs the cross-collection search.
// GET /search?query=...&type=question|answer|user|tag
func (s *Server) HandleGlobalSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	searchType := r.URL.Query().Get("type")

	results, err := s.Search.Search(r.Context(), query, searchType)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, results)
}
