package handlers

import (
	"encoding/json"
	"net/http"

	"med-overflow/internal/database"
	"med-overflow/internal/middleware"
	"med-overflow/internal/models"
	"med-overflow/internal/utils"

	"github.com/google/uuid"
)

// CreateQuestionRequest represents a request to post a question
type CreateQuestionRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// ViewQuestionRequest carries the optional acting user of a view event
type ViewQuestionRequest struct {
	UserID string `json:"userId"`
}

// QuestionListResponse is the paged question listing payload.
type QuestionListResponse struct {
	Questions []models.Question `json:"questions"`
	IsNext    bool              `json:"isNext"`
}

// HandleListQuestions returns one page of questions.
// GET /questions?searchQuery=&filter=&page=&pageSize=
func (s *Server) HandleListQuestions(w http.ResponseWriter, r *http.Request) {
	searchQuery, mode, page, pageSize := parseListParams(r)

	questions, isNext, err := s.Questions.ListQuestions(r.Context(), searchQuery, mode, page, pageSize)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, QuestionListResponse{Questions: questions, IsNext: isNext})
}

// HandleCreateQuestion posts a question authored by the caller.
// POST /questions
func (s *Server) HandleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req CreateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
		return
	}
	if req.Title == "" {
		s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "title is required", nil))
		return
	}

	author, err := s.callerUser(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	question, err := s.Questions.CreateQuestion(r.Context(), database.CreateQuestionParams{
		Title:    req.Title,
		Content:  req.Content,
		AuthorID: author.ID,
		Tags:     req.Tags,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, question)
}

// HandleGetQuestion returns one question, populated for display.
// GET /questions/{questionID}
func (s *Server) HandleGetQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathUUID(r, "questionID")
	if err != nil {
		s.respondError(w, err)
		return
	}

	question, err := s.Questions.GetQuestion(r.Context(), questionID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, question)
}

// HandleDeleteQuestion removes a question and its dependents.
// DELETE /questions/{questionID}
func (s *Server) HandleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathUUID(r, "questionID")
	if err != nil {
		s.respondError(w, err)
		return
	}

	if err := s.Questions.DeleteQuestion(r.Context(), questionID); err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

// HandleViewQuestion records a view: the counter always moves, the
// interaction row is appended only when an acting user is known. Succeeds
// with no payload.
// POST /questions/{questionID}/view
func (s *Server) HandleViewQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathUUID(r, "questionID")
	if err != nil {
		s.respondError(w, err)
		return
	}

	var req ViewQuestionRequest
	if r.Body != nil {
		// A missing or empty body just means an anonymous view
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	var userID *uuid.UUID
	if req.UserID != "" {
		id, err := uuid.Parse(req.UserID)
		if err != nil {
			s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid userId", err))
			return
		}
		userID = &id
	}

	if err := s.Views.RecordView(r.Context(), questionID, userID); err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

// callerUser resolves the authenticated caller to their user record.
func (s *Server) callerUser(r *http.Request) (*models.User, error) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return nil, utils.NewAppError(utils.ErrUnauthorized, "authentication required", nil)
	}
	return s.Users.GetUserByExternalID(r.Context(), identity.Subject)
}
