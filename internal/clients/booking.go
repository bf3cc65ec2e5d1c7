// Package clients holds the outbound HTTP collaborators: the scheduling
// provider and the chat-completion provider.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"med-overflow/internal/utils"

	"go.uber.org/zap"
)

const bookingRequestTimeout = 10 * time.Second

// SlotParams identifies the service window to look up availability for.
type SlotParams struct {
	Service   int
	Duration  int
	Persons   int
	StartDate string
}

// BookingClient looks up appointment slots from the scheduling provider.
// Responses are forwarded verbatim; there are no retries.
type BookingClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewBookingClient creates a slot-lookup client. The API key is sent in the
// Authorization header and must never be logged.
func NewBookingClient(baseURL, apiKey string, logger *zap.Logger) *BookingClient {
	return &BookingClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: bookingRequestTimeout},
		logger:     logger,
	}
}

// GetTimeSlots fetches available slots and returns the provider's raw JSON
// payload.
func (c *BookingClient) GetTimeSlots(ctx context.Context, params SlotParams) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("action", "wpamelia_api")
	query.Set("call", "/api/v1/slots")
	query.Set("serviceId", strconv.Itoa(params.Service))
	query.Set("serviceDuration", strconv.Itoa(params.Duration))
	query.Set("persons", strconv.Itoa(params.Persons))
	query.Set("startDate", params.StartDate)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, utils.NewUpstreamError("booking", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Amelia "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("booking slot request failed", zap.Error(err))
		return nil, utils.NewUpstreamError("booking", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, utils.NewUpstreamError("booking", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("booking provider returned an error status", zap.Int("status", resp.StatusCode))
		return nil, utils.NewUpstreamError("booking", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if !json.Valid(body) {
		return nil, utils.NewUpstreamError("booking", fmt.Errorf("malformed JSON response"))
	}

	return json.RawMessage(body), nil
}
