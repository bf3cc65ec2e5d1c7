package handlers

import (
	"net/http"

	"med-overflow/internal/models"
)

// TagListResponse is the paged tag listing payload.
type TagListResponse struct {
	Tags   []models.Tag `json:"tags"`
	IsNext bool         `json:"isNext"`
}

// TagQuestionsResponse is the questions-by-tag payload.
type TagQuestionsResponse struct {
	TagTitle  string            `json:"tagTitle"`
	Questions []models.Question `json:"questions"`
	IsNext    bool              `json:"isNext"`
}

// HandleListTags returns one page of tags.
// GET /tags?searchQuery=&filter=&page=&pageSize=
func (s *Server) HandleListTags(w http.ResponseWriter, r *http.Request) {
	searchQuery, mode, page, pageSize := parseListParams(r)

	tags, isNext, err := s.Tags.ListTags(r.Context(), searchQuery, mode, page, pageSize)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, TagListResponse{Tags: tags, IsNext: isNext})
}

// HandlePopularTags returns the most used tags.
// GET /tags/popular
func (s *Server) HandlePopularTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.Tags.PopularTags(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string][]models.Tag{"tags": tags})
}

// HandleQuestionsByTag returns one page of a tag's questions.
// GET /tags/{tagID}/questions?searchQuery=&page=&pageSize=
func (s *Server) HandleQuestionsByTag(w http.ResponseWriter, r *http.Request) {
	tagID, err := pathUUID(r, "tagID")
	if err != nil {
		s.respondError(w, err)
		return
	}

	searchQuery, _, page, pageSize := parseListParams(r)

	tagTitle, questions, isNext, err := s.Tags.GetQuestionsByTag(r.Context(), tagID, searchQuery, page, pageSize)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, TagQuestionsResponse{
		TagTitle:  tagTitle,
		Questions: questions,
		IsNext:    isNext,
	})
}
