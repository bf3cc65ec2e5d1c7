// Package handlers exposes the JSON HTTP API. The Server depends on narrow
// interfaces rather than the concrete store so every handler can be
// exercised with fakes.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"med-overflow/internal/clients"
	"med-overflow/internal/database"
	"med-overflow/internal/models"
	"med-overflow/internal/search"
	"med-overflow/internal/utils"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	appmiddleware "med-overflow/internal/middleware"
)

// QuestionStore covers the question operations the handlers need.
type QuestionStore interface {
	CreateQuestion(ctx context.Context, params database.CreateQuestionParams) (*models.Question, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error)
	ListQuestions(ctx context.Context, searchQuery string, mode database.SortMode, page, pageSize int) ([]models.Question, bool, error)
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
}

// TagStore covers the tag operations the handlers need.
type TagStore interface {
	ListTags(ctx context.Context, searchQuery string, mode database.SortMode, page, pageSize int) ([]models.Tag, bool, error)
	GetQuestionsByTag(ctx context.Context, tagID uuid.UUID, searchQuery string, page, pageSize int) (string, []models.Question, bool, error)
	PopularTags(ctx context.Context) ([]models.Tag, error)
	TopTagsForUser(ctx context.Context, externalID string) ([]models.Tag, error)
}

// UserStore covers the user operations the handlers need.
type UserStore interface {
	SyncUser(ctx context.Context, params database.SyncUserParams) (*models.User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error)
	UpdateUser(ctx context.Context, externalID string, params database.UpdateUserParams) (*models.User, error)
	DeleteUser(ctx context.Context, externalID string) (*models.User, error)
	ListUsers(ctx context.Context, searchQuery string, mode database.SortMode, page, pageSize int) ([]models.User, bool, error)
	ToggleSaveQuestion(ctx context.Context, externalID string, questionID uuid.UUID) (bool, error)
	GetSavedQuestions(ctx context.Context, externalID, searchQuery string, page, pageSize int) ([]models.Question, bool, error)
	GetUserInfo(ctx context.Context, externalID string) (*models.UserInfo, error)
	GetUserQuestions(ctx context.Context, externalID string, page, pageSize int) ([]models.Question, bool, error)
	GetUserAnswers(ctx context.Context, externalID string, page, pageSize int) ([]models.Answer, bool, error)
}

// AnswerStore covers the answer operations the handlers need.
type AnswerStore interface {
	CreateAnswer(ctx context.Context, params database.CreateAnswerParams) (*models.Answer, error)
	ListAnswersByQuestion(ctx context.Context, questionID uuid.UUID, page, pageSize int) ([]models.Answer, bool, error)
}

// BookingStore covers the stored booking operations the handlers need.
type BookingStore interface {
	SaveBooking(ctx context.Context, bookingType string) (*models.Booking, error)
	ListBookings(ctx context.Context) ([]models.Booking, error)
}

// ViewRecorder records question views with their interaction side effect.
type ViewRecorder interface {
	RecordView(ctx context.Context, questionID uuid.UUID, userID *uuid.UUID) error
}

// GlobalSearcher runs the cross-collection search.
type GlobalSearcher interface {
	Search(ctx context.Context, query, searchType string) ([]search.Result, error)
}

// SlotFinder looks up appointment slots from the scheduling provider.
type SlotFinder interface {
	GetTimeSlots(ctx context.Context, params clients.SlotParams) (json.RawMessage, error)
}

// ChatCompleter forwards questions to the chat-completion provider.
type ChatCompleter interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Server holds all handler dependencies
type Server struct {
	Logger    *zap.Logger
	Questions QuestionStore
	Tags      TagStore
	Users     UserStore
	Answers   AnswerStore
	Views     ViewRecorder
	Search    GlobalSearcher
	Booking   SlotFinder
	Bookings  BookingStore
	Chat      ChatCompleter

	JWTSecret      string
	AllowedOrigins []string
	MetricsEnabled bool
}

// Routes assembles the router with the full middleware stack.
func (s *Server) Routes(extra ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(appmiddleware.CORSMiddleware(appmiddleware.DefaultCORSConfig(s.AllowedOrigins)))
	r.Use(appmiddleware.ExtractIdentity(s.JWTSecret))
	for _, mw := range extra {
		r.Use(mw)
	}

	r.Get("/health", s.HandleHealth)
	if s.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/search", s.HandleGlobalSearch)

	r.Route("/tags", func(r chi.Router) {
		r.Get("/", s.HandleListTags)
		r.Get("/popular", s.HandlePopularTags)
		r.Get("/{tagID}/questions", s.HandleQuestionsByTag)
	})

	r.Route("/questions", func(r chi.Router) {
		r.Get("/", s.HandleListQuestions)
		r.With(appmiddleware.RequireIdentity).Post("/", s.HandleCreateQuestion)
		r.Get("/{questionID}", s.HandleGetQuestion)
		r.With(appmiddleware.RequireIdentity).Delete("/{questionID}", s.HandleDeleteQuestion)
		r.Post("/{questionID}/view", s.HandleViewQuestion)
		r.Get("/{questionID}/answers", s.HandleListAnswers)
	})

	r.With(appmiddleware.RequireIdentity).Post("/answers", s.HandleCreateAnswer)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", s.HandleListUsers)
		r.Post("/sync", s.HandleSyncUser)
		r.Get("/{externalID}", s.HandleGetUser)
		r.With(appmiddleware.RequireIdentity).Put("/{externalID}", s.HandleUpdateUser)
		r.With(appmiddleware.RequireIdentity).Delete("/{externalID}", s.HandleDeleteUser)
		r.With(appmiddleware.RequireIdentity).Post("/{externalID}/saved/{questionID}", s.HandleToggleSaveQuestion)
		r.Get("/{externalID}/saved", s.HandleSavedQuestions)
		r.Get("/{externalID}/info", s.HandleUserInfo)
		r.Get("/{externalID}/questions", s.HandleUserQuestions)
		r.Get("/{externalID}/answers", s.HandleUserAnswers)
		r.Get("/{externalID}/tags", s.HandleUserTopTags)
	})

	r.Get("/booking/slots", s.HandleBookingSlots)
	r.Route("/bookings", func(r chi.Router) {
		r.With(appmiddleware.RequireIdentity).Post("/", s.HandleCreateBooking)
		r.Get("/", s.HandleListBookings)
	})
	r.Post("/chat", s.HandleChat)

	return r
}

// HandleHealth reports liveness.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondJSON writes a JSON response with the given status.
func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.Logger.Error("failed to encode response", zap.Error(err))
	}
}

// respondError writes the unified error payload: {"error": message} with the
// status derived from the error code. Internal causes are logged, not leaked.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		status = utils.AppErrorToHTTPStatus(appErr.Code)
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", zap.Error(err))
	}

	s.respondJSON(w, status, map[string]string{"error": message})
}

// parseListParams extracts the shared listing query parameters.
func parseListParams(r *http.Request) (searchQuery string, mode database.SortMode, page, pageSize int) {
	q := r.URL.Query()

	searchQuery = q.Get("searchQuery")
	mode = database.SortMode(q.Get("filter"))

	page = 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}

	pageSize = database.DefaultPageSize
	if s, err := strconv.Atoi(q.Get("pageSize")); err == nil && s > 0 {
		pageSize = s
	}

	return searchQuery, mode, page, pageSize
}

// pathUUID parses a UUID route parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, utils.NewAppError(utils.ErrInvalidInput, "invalid "+name, err)
	}
	return id, nil
}
