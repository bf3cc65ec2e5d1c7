package handlers

import (
	"encoding/json"
	"net/http"

	"med-overflow/internal/database"
	"med-overflow/internal/models"
	"med-overflow/internal/utils"

	"github.com/go-chi/chi/v5"
)

// SyncUserRequest carries the profile delivered by the identity provider
type SyncUserRequest struct {
	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Picture    string `json:"picture"`
}

// UpdateUserRequest carries a partial profile update; omitted fields are
// left unchanged
type UpdateUserRequest struct {
	Name    *string `json:"name"`
	Bio     *string `json:"bio"`
	Picture *string `json:"picture"`
}

// UserListResponse is the paged user listing payload.
type UserListResponse struct {
	Users  []models.User `json:"users"`
	IsNext bool          `json:"isNext"`
}

// AnswerListResponse is the paged answer listing payload.
type AnswerListResponse struct {
	Answers []models.Answer `json:"answers"`
	IsNext  bool            `json:"isNext"`
}

// HandleListUsers returns one page of users.
// GET /users?searchQuery=&filter=&page=&pageSize=
func (s *Server) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	searchQuery, mode, page, pageSize := parseListParams(r)

	users, isNext, err := s.Users.ListUsers(r.Context(), searchQuery, mode, page, pageSize)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, UserListResponse{Users: users, IsNext: isNext})
}

// HandleSyncUser creates or refreshes a user from identity-provider data.
// POST /users/sync
func (s *Server) HandleSyncUser(w http.ResponseWriter, r *http.Request) {
	var req SyncUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
		return
	}
	if req.ExternalID == "" {
		s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "externalId is required", nil))
		return
	}

	user, err := s.Users.SyncUser(r.Context(), database.SyncUserParams{
		ExternalID: req.ExternalID,
		Name:       req.Name,
		Username:   req.Username,
		Email:      req.Email,
		Picture:    req.Picture,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, user)
}

// HandleGetUser returns one user by their external identity.
// GET /users/{externalID}
func (s *Server) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.Users.GetUserByExternalID(r.Context(), chi.URLParam(r, "externalID"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, user)
}

// HandleUpdateUser applies a partial profile update.
// PUT /users/{externalID}
func (s *Server) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
		return
	}

	user, err := s.Users.UpdateUser(r.Context(), chi.URLParam(r, "externalID"), database.UpdateUserParams{
		Name:    req.Name,
		Bio:     req.Bio,
		Picture: req.Picture,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, user)
}

// HandleDeleteUser removes a user and cascades over their authored content.
// DELETE /users/{externalID}
func (s *Server) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.Users.DeleteUser(r.Context(), chi.URLParam(r, "externalID"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, user)
}

// HandleToggleSaveQuestion saves the question for the user, or unsaves it if
// it is already saved.
// POST /users/{externalID}/saved/{questionID}
func (s *Server) HandleToggleSaveQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathUUID(r, "questionID")
	if err != nil {
		s.respondError(w, err)
		return
	}

	saved, err := s.Users.ToggleSaveQuestion(r.Context(), chi.URLParam(r, "externalID"), questionID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"saved": saved})
}

// HandleSavedQuestions returns one page of the user's saved questions.
// GET /users/{externalID}/saved?searchQuery=&page=&pageSize=
func (s *Server) HandleSavedQuestions(w http.ResponseWriter, r *http.Request) {
	searchQuery, _, page, pageSize := parseListParams(r)

	questions, isNext, err := s.Users.GetSavedQuestions(r.Context(), chi.URLParam(r, "externalID"), searchQuery, page, pageSize)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, QuestionListResponse{Questions: questions, IsNext: isNext})
}

// HandleUserInfo returns a user with their contribution totals.
// GET /users/{externalID}/info
func (s *Server) HandleUserInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.Users.GetUserInfo(r.Context(), chi.URLParam(r, "externalID"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, info)
}

// HandleUserQuestions returns one page of the user's authored questions.
// GET /users/{externalID}/questions?page=&pageSize=
func (s *Server) HandleUserQuestions(w http.ResponseWriter, r *http.Request) {
	_, _, page, pageSize := parseListParams(r)

	questions, isNext, err := s.Users.GetUserQuestions(r.Context(), chi.URLParam(r, "externalID"), page, pageSize)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, QuestionListResponse{Questions: questions, IsNext: isNext})
}

// HandleUserAnswers returns one page of the user's answers.
// GET /users/{externalID}/answers?page=&pageSize=
func (s *Server) HandleUserAnswers(w http.ResponseWriter, r *http.Request) {
	_, _, page, pageSize := parseListParams(r)

	answers, isNext, err := s.Users.GetUserAnswers(r.Context(), chi.URLParam(r, "externalID"), page, pageSize)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, AnswerListResponse{Answers: answers, IsNext: isNext})
}

// HandleUserTopTags returns the tags the user interacts with most.
// GET /users/{externalID}/tags
func (s *Server) HandleUserTopTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.Tags.TopTagsForUser(r.Context(), chi.URLParam(r, "externalID"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string][]models.Tag{"tags": tags})
}
