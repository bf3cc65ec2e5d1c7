package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"med-overflow/internal/clients"
	"med-overflow/internal/database"
	"med-overflow/internal/models"
	"med-overflow/internal/search"
	"med-overflow/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testJWTSecret = "test-secret"

// Fakes embed the interface so only the methods a test exercises need
// implementations; anything else panics loudly.

type fakeSearchEngine struct {
	results []search.Result
	err     error
	query   string
	typ     string
}

func (f *fakeSearchEngine) Search(_ context.Context, query, searchType string) ([]search.Result, error) {
	f.query = query
	f.typ = searchType
	return f.results, f.err
}

type fakeTagStore struct {
	TagStore
	tags        []models.Tag
	isNext      bool
	err         error
	gotSearch   string
	gotMode     database.SortMode
	gotPage     int
	gotPageSize int
}

func (f *fakeTagStore) ListTags(_ context.Context, searchQuery string, mode database.SortMode, page, pageSize int) ([]models.Tag, bool, error) {
	f.gotSearch = searchQuery
	f.gotMode = mode
	f.gotPage = page
	f.gotPageSize = pageSize
	return f.tags, f.isNext, f.err
}

func (f *fakeTagStore) GetQuestionsByTag(_ context.Context, _ uuid.UUID, _ string, _, _ int) (string, []models.Question, bool, error) {
	if f.err != nil {
		return "", nil, false, f.err
	}
	return "general-health", nil, false, nil
}

type fakeViewRecorder struct {
	calls   int
	userIDs []*uuid.UUID
	err     error
}

func (f *fakeViewRecorder) RecordView(_ context.Context, _ uuid.UUID, userID *uuid.UUID) error {
	f.calls++
	f.userIDs = append(f.userIDs, userID)
	return f.err
}

type fakeUserStore struct {
	UserStore
	user   *models.User
	saved  bool
	err    error
	toggle int
}

func (f *fakeUserStore) GetUserByExternalID(_ context.Context, _ string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeUserStore) ToggleSaveQuestion(_ context.Context, _ string, _ uuid.UUID) (bool, error) {
	f.toggle++
	f.saved = !f.saved
	return f.saved, f.err
}

type fakeQuestionStore struct {
	QuestionStore
	created  *models.Question
	gotParam database.CreateQuestionParams
	err      error
}

func (f *fakeQuestionStore) CreateQuestion(_ context.Context, params database.CreateQuestionParams) (*models.Question, error) {
	f.gotParam = params
	return f.created, f.err
}

type fakeChat struct {
	reply string
	err   error
}

func (f *fakeChat) Ask(_ context.Context, _ string) (string, error) {
	return f.reply, f.err
}

type fakeBookingStore struct {
	saved []string
}

func (f *fakeBookingStore) SaveBooking(_ context.Context, bookingType string) (*models.Booking, error) {
	f.saved = append(f.saved, bookingType)
	return &models.Booking{ID: uuid.New(), Type: bookingType, CreatedAt: time.Now().UTC()}, nil
}

func (f *fakeBookingStore) ListBookings(_ context.Context) ([]models.Booking, error) {
	bookings := make([]models.Booking, 0, len(f.saved))
	for _, bookingType := range f.saved {
		bookings = append(bookings, models.Booking{ID: uuid.New(), Type: bookingType})
	}
	return bookings, nil
}

type fakeSlotFinder struct {
	payload json.RawMessage
	err     error
	got     clients.SlotParams
}

func (f *fakeSlotFinder) GetTimeSlots(_ context.Context, params clients.SlotParams) (json.RawMessage, error) {
	f.got = params
	return f.payload, f.err
}

func newTestServer() *Server {
	return &Server{
		Logger:         zap.NewNop(),
		JWTSecret:      testJWTSecret,
		AllowedOrigins: []string{"*"},
	}
}

func signedToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func TestGlobalSearchHandler(t *testing.T) {
	engine := &fakeSearchEngine{results: []search.Result{
		{Title: "What causes migraines?", Type: "question", ID: "q-1"},
		{Title: "migraine", Type: "tag", ID: "t-1"},
	}}
	server := newTestServer()
	server.Search = engine

	req := httptest.NewRequest(http.MethodGet, "/search?query=migraine", nil)
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "migraine", engine.query)

	var results []search.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	assert.Len(t, results, 2)
}

func TestGlobalSearchHandlerInvalidType(t *testing.T) {
	engine := &fakeSearchEngine{err: utils.NewInvalidSearchTypeError("subreddit")}
	server := newTestServer()
	server.Search = engine

	req := httptest.NewRequest(http.MethodGet, "/search?query=flu&type=subreddit", nil)
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "invalid search type")
}

func TestListTagsHandlerPassesParams(t *testing.T) {
	tagID := uuid.New()
	store := &fakeTagStore{
		tags:   []models.Tag{{ID: tagID, Name: "allergy", QuestionCount: 3}},
		isNext: true,
	}
	server := newTestServer()
	server.Tags = store

	req := httptest.NewRequest(http.MethodGet, "/tags?searchQuery=all&filter=name&page=2&pageSize=5", nil)
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "all", store.gotSearch)
	assert.Equal(t, database.SortName, store.gotMode)
	assert.Equal(t, 2, store.gotPage)
	assert.Equal(t, 5, store.gotPageSize)

	var resp TagListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.IsNext)
	require.Len(t, resp.Tags, 1)
	assert.Equal(t, "allergy", resp.Tags[0].Name)
}

func TestQuestionsByTagNotFound(t *testing.T) {
	store := &fakeTagStore{err: utils.NewNotFoundError("tag")}
	server := newTestServer()
	server.Tags = store

	req := httptest.NewRequest(http.MethodGet, "/tags/"+uuid.NewString()+"/questions", nil)
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	// A missing tag is NotFound, never an empty page.
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "tag not found", body["error"])
}

// TestViewQuestionRecordsEveryCall documents the append-only view log:
// repeat views by the same user are all recorded, none deduplicated.
func TestViewQuestionRecordsEveryCall(t *testing.T) {
	recorder := &fakeViewRecorder{}
	server := newTestServer()
	server.Views = recorder

	questionID := uuid.New()
	userID := uuid.New()
	body, _ := json.Marshal(ViewQuestionRequest{UserID: userID.String()})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/questions/"+questionID.String()+"/view", bytes.NewReader(body))
		w := httptest.NewRecorder()
		server.Routes().ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	}

	assert.Equal(t, 3, recorder.calls)
	for _, got := range recorder.userIDs {
		require.NotNil(t, got)
		assert.Equal(t, userID, *got)
	}
}

func TestViewQuestionAnonymous(t *testing.T) {
	recorder := &fakeViewRecorder{}
	server := newTestServer()
	server.Views = recorder

	req := httptest.NewRequest(http.MethodPost, "/questions/"+uuid.NewString()+"/view", bytes.NewReader([]byte("{}")))
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, 1, recorder.calls)
	assert.Nil(t, recorder.userIDs[0])
}

func TestViewQuestionMissing(t *testing.T) {
	recorder := &fakeViewRecorder{err: utils.NewNotFoundError("question")}
	server := newTestServer()
	server.Views = recorder

	req := httptest.NewRequest(http.MethodPost, "/questions/"+uuid.NewString()+"/view", bytes.NewReader([]byte("{}")))
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateQuestionRequiresIdentity(t *testing.T) {
	server := newTestServer()
	server.Questions = &fakeQuestionStore{}

	body, _ := json.Marshal(CreateQuestionRequest{Title: "Is this a cold?"})
	req := httptest.NewRequest(http.MethodPost, "/questions", bytes.NewReader(body))
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateQuestionWithIdentity(t *testing.T) {
	authorID := uuid.New()
	questions := &fakeQuestionStore{created: &models.Question{ID: uuid.New(), Title: "Is this a cold?"}}
	users := &fakeUserStore{user: &models.User{ID: authorID, ExternalID: "auth0|abc"}}

	server := newTestServer()
	server.Questions = questions
	server.Users = users

	body, _ := json.Marshal(CreateQuestionRequest{
		Title: "Is this a cold?",
		Tags:  []string{"cold", "flu"},
	})
	req := httptest.NewRequest(http.MethodPost, "/questions", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "auth0|abc"))
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, authorID, questions.gotParam.AuthorID)
	assert.Equal(t, []string{"cold", "flu"}, questions.gotParam.Tags)
}

func TestToggleSaveQuestion(t *testing.T) {
	users := &fakeUserStore{}
	server := newTestServer()
	server.Users = users

	url := "/users/auth0|abc/saved/" + uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, url, nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "auth0|abc"))
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, users.toggle)

	var body map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body["saved"])
}

func TestChatHandler(t *testing.T) {
	server := newTestServer()
	server.Chat = &fakeChat{reply: "Drink fluids and rest."}

	body, _ := json.Marshal(ChatRequest{Question: "about the flu"})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Drink fluids and rest.", resp.Reply)
}

func TestChatHandlerUpstreamFailure(t *testing.T) {
	server := newTestServer()
	server.Chat = &fakeChat{err: utils.NewUpstreamError("chat", assert.AnError)}

	body, _ := json.Marshal(ChatRequest{Question: "about the flu"})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var respBody map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.NotEmpty(t, respBody["error"])
}

func TestBookingSlotsHandler(t *testing.T) {
	finder := &fakeSlotFinder{payload: json.RawMessage(`{"data":{"slots":["2026-09-02 09:00"]}}`)}
	server := newTestServer()
	server.Booking = finder

	req := httptest.NewRequest(http.MethodGet, "/booking/slots?service=3&duration=1800&persons=1&startDate=2026-09-02", nil)
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, clients.SlotParams{Service: 3, Duration: 1800, Persons: 1, StartDate: "2026-09-02"}, finder.got)
	assert.JSONEq(t, `{"data":{"slots":["2026-09-02 09:00"]}}`, w.Body.String())
}

func TestBookingSlotsHandlerRejectsBadParams(t *testing.T) {
	server := newTestServer()
	server.Booking = &fakeSlotFinder{}

	req := httptest.NewRequest(http.MethodGet, "/booking/slots?service=abc", nil)
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBookingRequiresIdentity(t *testing.T) {
	store := &fakeBookingStore{}
	server := newTestServer()
	server.Bookings = store

	body := bytes.NewReader([]byte(`{"type":"urgent-care"}`))
	req := httptest.NewRequest(http.MethodPost, "/bookings", body)
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, store.saved)
}

func TestCreateAndListBookings(t *testing.T) {
	store := &fakeBookingStore{}
	server := newTestServer()
	server.Bookings = store

	body := bytes.NewReader([]byte(`{"type":"urgent-care"}`))
	req := httptest.NewRequest(http.MethodPost, "/bookings", body)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "auth0|abc"))
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{"urgent-care"}, store.saved)

	req = httptest.NewRequest(http.MethodGet, "/bookings", nil)
	w = httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string][]models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp["bookings"], 1)
	assert.Equal(t, "urgent-care", resp["bookings"][0].Type)
}

func TestHealthHandler(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
