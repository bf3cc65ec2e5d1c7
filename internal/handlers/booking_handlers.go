package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"med-overflow/internal/clients"
	"med-overflow/internal/models"
	"med-overflow/internal/utils"
)

// CreateBookingRequest carries the visit type the patient selected
type CreateBookingRequest struct {
	Type string `json:"type"`
}

// HandleBookingSlots proxies a slot lookup to the scheduling provider and
// forwards its JSON payload verbatim.
// GET /booking/slots?service=&duration=&persons=&startDate=
func (s *Server) HandleBookingSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	service, err := strconv.Atoi(q.Get("service"))
	if err != nil {
		s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid service", err))
		return
	}
	duration, err := strconv.Atoi(q.Get("duration"))
	if err != nil {
		s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid duration", err))
		return
	}
	persons, err := strconv.Atoi(q.Get("persons"))
	if err != nil {
		s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid persons", err))
		return
	}
	startDate := q.Get("startDate")
	if startDate == "" {
		s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "startDate is required", nil))
		return
	}

	slots, err := s.Booking.GetTimeSlots(r.Context(), clients.SlotParams{
		Service:   service,
		Duration:  duration,
		Persons:   persons,
		StartDate: startDate,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(slots); err != nil {
		s.Logger.Error("failed to write booking slots response")
	}
}

// HandleCreateBooking records a visit-type selection.
// POST /bookings
func (s *Server) HandleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid request body", err))
		return
	}
	if req.Type == "" {
		s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "type is required", nil))
		return
	}

	booking, err := s.Bookings.SaveBooking(r.Context(), req.Type)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, booking)
}

// HandleListBookings returns recorded bookings, newest first.
// GET /bookings
func (s *Server) HandleListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.Bookings.ListBookings(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string][]models.Booking{"bookings": bookings})
}
