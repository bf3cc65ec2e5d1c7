package handlers

import (
	"encoding/json"
	"net/http"

	"med-overflow/internal/database"
	"med-overflow/internal/utils"

	"github.com/google/uuid"
)

// CreateAnswerRequest represents a request to post an answer
type CreateAnswerRequest struct {
	QuestionID string `json:"questionId"`
	Content    string `json:"content"`
}

// HandleCreateAnswer posts an answer authored by the caller.
// POST /answers
func (s *Server) HandleCreateAnswer(w http.ResponseWriter, r *http.Request) {
	var req CreateAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
		return
	}
	if req.Content == "" {
		s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "content is required", nil))
		return
	}

	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid questionId", err))
		return
	}

	author, err := s.callerUser(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	answer, err := s.Answers.CreateAnswer(r.Context(), database.CreateAnswerParams{
		Content:    req.Content,
		AuthorID:   author.ID,
		QuestionID: questionID,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, answer)
}

// HandleListAnswers returns one page of a question's answers.
// GET /questions/{questionID}/answers?page=&pageSize=
func (s *Server) HandleListAnswers(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathUUID(r, "questionID")
	if err != nil {
		s.respondError(w, err)
		return
	}

	_, _, page, pageSize := parseListParams(r)

	answers, isNext, err := s.Answers.ListAnswersByQuestion(r.Context(), questionID, page, pageSize)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, AnswerListResponse{Answers: answers, IsNext: isNext})
}
