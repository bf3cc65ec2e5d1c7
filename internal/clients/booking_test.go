package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"med-overflow/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetTimeSlotsBuildsProviderRequest(t *testing.T) {
	var gotQuery map[string]string
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = map[string]string{}
		for key, values := range r.URL.Query() {
			gotQuery[key] = values[0]
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"slots":["2026-09-02 09:00"]}}`))
	}))
	defer srv.Close()

	client := NewBookingClient(srv.URL, "slot-key", zap.NewNop())
	defer client.httpClient.CloseIdleConnections()

	payload, err := client.GetTimeSlots(context.Background(), SlotParams{
		Service:   3,
		Duration:  1800,
		Persons:   1,
		StartDate: "2026-09-02",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"slots":["2026-09-02 09:00"]}}`, string(payload))

	assert.Equal(t, "Amelia slot-key", gotAuth)
	assert.Equal(t, "wpamelia_api", gotQuery["action"])
	assert.Equal(t, "/api/v1/slots", gotQuery["call"])
	assert.Equal(t, "3", gotQuery["serviceId"])
	assert.Equal(t, "1800", gotQuery["serviceDuration"])
	assert.Equal(t, "1", gotQuery["persons"])
	assert.Equal(t, "2026-09-02", gotQuery["startDate"])
}

func TestGetTimeSlotsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewBookingClient(srv.URL, "slot-key", zap.NewNop())
	defer client.httpClient.CloseIdleConnections()

	_, err := client.GetTimeSlots(context.Background(), SlotParams{StartDate: "2026-09-02"})
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrUpstream))
}

func TestGetTimeSlotsMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	client := NewBookingClient(srv.URL, "slot-key", zap.NewNop())
	defer client.httpClient.CloseIdleConnections()

	_, err := client.GetTimeSlots(context.Background(), SlotParams{StartDate: "2026-09-02"})
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrUpstream))
}

func TestGetTimeSlotsRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewBookingClient(srv.URL, "slot-key", zap.NewNop())
	defer client.httpClient.CloseIdleConnections()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetTimeSlots(ctx, SlotParams{StartDate: "2026-09-02"})
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrUpstream))
}
