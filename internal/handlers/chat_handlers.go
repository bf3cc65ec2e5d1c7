package handlers

import (
	"encoding/json"
	"net/http"

	"med-overflow/internal/utils"
)

// ChatRequest carries a free-text question for the chat assistant
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse carries the assistant's reply
type ChatResponse struct {
	Reply string `json:"reply"`
}

// HandleChat forwards a question to the chat-completion provider.
// POST /chat
func (s *Server) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
		return
	}
	if req.Question == "" {
		s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "question is required", nil))
		return
	}

	reply, err := s.Chat.Ask(r.Context(), req.Question)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}
