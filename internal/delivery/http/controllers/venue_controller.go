package controllers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"campusevents/internal/adapters/calendar"
	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/domain"
)

// CheckAvailabilityRequest is the request body for POST /venues/check-availability.
// VenueID may hold the venue's id or its exact name.
type CheckAvailabilityRequest struct {
	VenueID   string `json:"venue_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Validate implements Validator.
func (c CheckAvailabilityRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.VenueID) == "" {
		errs = append(errs, "venue_id is required")
	}
	if strings.TrimSpace(c.Date) == "" {
		errs = append(errs, "date is required")
	}
	if strings.TrimSpace(c.StartTime) == "" {
		errs = append(errs, "start_time is required")
	}
	return errs
}

// BookVenueRequest is the request body for POST /venues/book.
type BookVenueRequest struct {
	VenueID   string `json:"venue_id"`
	EventID   string `json:"event_id"`
	EventName string `json:"event_name"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Validate implements Validator.
func (b BookVenueRequest) Validate() []string {
	errs := CheckAvailabilityRequest{VenueID: b.VenueID, Date: b.Date, StartTime: b.StartTime}.Validate()
	if strings.TrimSpace(b.EventID) == "" {
		errs = append(errs, "event_id is required")
	}
	if strings.TrimSpace(b.EventName) == "" {
		errs = append(errs, "event_name is required")
	}
	return errs
}

// CancelBookingRequest is the request body for POST /venues/cancel-booking.
type CancelBookingRequest struct {
	VenueID string `json:"venue_id"`
	EventID string `json:"event_id"`
}

// Validate implements Validator.
func (c CancelBookingRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.VenueID) == "" {
		errs = append(errs, "venue_id is required")
	}
	if strings.TrimSpace(c.EventID) == "" {
		errs = append(errs, "event_id is required")
	}
	return errs
}

// CreateVenueRequest is the request body for POST /venues.
type CreateVenueRequest struct {
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	Capacity    int      `json:"capacity"`
	Description string   `json:"description"`
	Facilities  []string `json:"facilities"`
	Image       string   `json:"image"`
}

// Validate implements Validator.
func (c CreateVenueRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(c.Location) == "" {
		errs = append(errs, "location is required")
	}
	if c.Capacity < 0 {
		errs = append(errs, "capacity must not be negative")
	}
	return errs
}

// UpdateVenueRequest is the request body for PUT /venues/{venueID}. All fields optional; omitted fields are unchanged.
type UpdateVenueRequest struct {
	Name               *string  `json:"name"`
	Location           *string  `json:"location"`
	Capacity           *int     `json:"capacity"`
	Description        *string  `json:"description"`
	Facilities         []string `json:"facilities"`
	Image              *string  `json:"image"`
	GenerallyAvailable *bool    `json:"generally_available"`
}

// Validate implements Validator.
func (u UpdateVenueRequest) Validate() []string {
	var errs []string
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		errs = append(errs, "name must not be empty")
	}
	if u.Capacity != nil && *u.Capacity < 0 {
		errs = append(errs, "capacity must not be negative")
	}
	return errs
}

// ListVenuesResponse is the data payload for GET /venues (200).
type ListVenuesResponse struct {
	Items      []*domain.Venue        `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// BookVenueSuccessResponse is the success response envelope for POST /venues/book (201).
type BookVenueSuccessResponse struct {
	Data  *domain.Booking   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// AvailabilitySuccessResponse is the success response envelope for POST /venues/check-availability (200).
type AvailabilitySuccessResponse struct {
	Data  *domain.Availability `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

type VenueController struct {
	Logger  *slog.Logger
	Service domain.VenueService
	// Now is the clock used for calendar DTSTAMP values.
	Now func() time.Time
}

func NewVenueController(logger *slog.Logger, svc domain.VenueService) *VenueController {
	return &VenueController{
		Logger:  logger,
		Service: svc,
		Now:     time.Now,
	}
}

// CheckAvailability godoc
// @Summary Check venue availability
// @Description Reports whether a venue is free for a date and time slot. Dates are DD/MM/YYYY, DD/MM/YY or YYYY-MM-DD; times are H:MM with optional AM/PM. A missing end_time means a two hour slot. Only confirmed bookings block.
// @Tags venues
// @Accept json
// @Produce json
// @Param body body CheckAvailabilityRequest true "Candidate slot"
// @Success 200 {object} controllers.AvailabilitySuccessResponse "data.available is false when the venue is disabled or booked"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request; error.details holds the availability"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /venues/check-availability [post]
func (c *VenueController) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req CheckAvailabilityRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	availability, err := c.Service.CheckAvailability(r.Context(), domain.AvailabilityQuery{
		VenueKey:  req.VenueID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		if availability != nil && errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONErrorDetails(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, availability.Reason, availability)
			return
		}
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, availability)
}

// BookVenue godoc
// @Summary Book a venue
// @Description Books a venue for an event slot. The availability check and the insert run in one transaction, so two overlapping requests cannot both succeed.
// @Tags venues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body BookVenueRequest true "Booking"
// @Success 201 {object} controllers.BookVenueSuccessResponse "data contains the stored booking"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict; error.details holds {name,date,time,venue} for a clash"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /venues/book [post]
func (c *VenueController) BookVenue(w http.ResponseWriter, r *http.Request) {
	var req BookVenueRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	booking := domain.NewBooking("", strings.TrimSpace(req.EventID), strings.TrimSpace(req.EventName), req.Date, req.StartTime, req.EndTime, time.Now())
	stored, err := c.Service.BookVenue(r.Context(), req.VenueID, booking, userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, stored)
}

// CancelBooking godoc
// @Summary Cancel a venue booking
// @Description Removes the booking an event holds at a venue, freeing the slot.
// @Tags venues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CancelBookingRequest true "Venue and event"
// @Success 200 {object} helpers.APIResponse "data is null"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /venues/cancel-booking [post]
func (c *VenueController) CancelBooking(w http.ResponseWriter, r *http.Request) {
	var req CancelBookingRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := c.Service.CancelBooking(r.Context(), req.VenueID, strings.TrimSpace(req.EventID), userID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nil)
}

// CreateVenue godoc
// @Summary Create a venue
// @Description Creates a bookable venue. New venues accept bookings.
// @Tags venues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateVenueRequest true "Venue data"
// @Success 201 {object} helpers.APIResponse "data contains the created venue"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict; the name is taken"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /venues [post]
func (c *VenueController) CreateVenue(w http.ResponseWriter, r *http.Request) {
	var req CreateVenueRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	now := time.Now()
	venue := domain.NewVenue(req.Name, req.Location, req.Capacity, req.Description, req.Facilities, req.Image, userID, now, now)
	if err := c.Service.CreateVenue(r.Context(), venue); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, venue)
}

// ListVenues godoc
// @Summary List venues
// @Tags venues
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /venues [get]
func (c *VenueController) ListVenues(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	venues, total, err := c.Service.ListVenues(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	meta := helpers.NewPaginationMeta(params, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListVenuesResponse{Items: venues, Pagination: meta})
}

// GetVenue godoc
// @Summary Get a venue
// @Description Looks the venue up by id, then by exact name.
// @Tags venues
// @Produce json
// @Param venueID path string true "Venue ID or name"
// @Success 200 {object} helpers.APIResponse "data contains the venue with its bookings"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /venues/{venueID} [get]
func (c *VenueController) GetVenue(w http.ResponseWriter, r *http.Request) {
	venue, err := c.Service.GetVenue(r.Context(), r.PathValue("venueID"))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, venue)
}

// UpdateVenue godoc
// @Summary Update a venue
// @Description Partial update. Setting generally_available to false blocks all new bookings.
// @Tags venues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param venueID path string true "Venue ID or name"
// @Param body body UpdateVenueRequest true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data contains the updated venue"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict; the name is taken"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /venues/{venueID} [put]
func (c *VenueController) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	var req UpdateVenueRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if _, ok := requireUser(w, r); !ok {
		return
	}
	venue, err := c.Service.UpdateVenue(r.Context(), r.PathValue("venueID"), domain.VenueUpdate{
		Name:               req.Name,
		Location:           req.Location,
		Capacity:           req.Capacity,
		Description:        req.Description,
		Facilities:         req.Facilities,
		Image:              req.Image,
		GenerallyAvailable: req.GenerallyAvailable,
	})
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, venue)
}

// DeleteVenue godoc
// @Summary Delete a venue
// @Description Only venues without bookings can be deleted.
// @Tags venues
// @Produce json
// @Security BearerAuth
// @Param venueID path string true "Venue ID or name"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /venues/{venueID} [delete]
func (c *VenueController) DeleteVenue(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	if err := c.Service.DeleteVenue(r.Context(), r.PathValue("venueID")); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListBookings godoc
// @Summary List a venue's bookings
// @Tags venues
// @Produce json
// @Param venueID path string true "Venue ID or name"
// @Param status query string false "confirmed, pending or cancelled"
// @Success 200 {object} helpers.APIResponse "data contains the bookings"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /venues/{venueID}/bookings [get]
func (c *VenueController) ListBookings(w http.ResponseWriter, r *http.Request) {
	status := domain.BookingStatus(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))))
	bookings, err := c.Service.ListBookings(r.Context(), r.PathValue("venueID"), status)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, bookings)
}

// Calendar godoc
// @Summary Venue calendar feed
// @Description iCalendar feed of the venue's confirmed bookings, with floating local times.
// @Tags venues
// @Produce text/calendar
// @Param venueID path string true "Venue ID or name"
// @Success 200 {string} string "VCALENDAR"
// @Success 204 "Venue has no confirmed bookings"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /venues/{venueID}/calendar.ics [get]
func (c *VenueController) Calendar(w http.ResponseWriter, r *http.Request) {
	venue, err := c.Service.GetVenue(r.Context(), r.PathValue("venueID"))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	var buf bytes.Buffer
	skipped, err := calendar.EncodeVenue(&buf, venue, c.Now())
	if skipped > 0 {
		c.Logger.WarnContext(r.Context(), "calendar feed skipped malformed bookings", "venue_id", venue.ID, "skipped", skipped)
	}
	if err != nil {
		if errors.Is(err, calendar.ErrNoBookings) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
