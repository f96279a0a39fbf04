package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

// ConflictDetails identifies the booking that blocked a request (409).
// swagger:model ConflictDetails
type ConflictDetails struct {
	Name  string `json:"name"`
	Date  string `json:"date"`
	Time  string `json:"time"`
	Venue string `json:"venue"`
}

// writeServiceError maps service errors to status codes. Anything unrecognised is logged
// and reported as 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		var details *ConflictDetails
		if first := conflict.First(); first != nil {
			details = &ConflictDetails{
				Name:  first.EventName,
				Date:  first.Date,
				Time:  first.StartTime,
				Venue: conflict.VenueName,
			}
		}
		helpers.WriteJSONErrorDetails(w, http.StatusConflict, helpers.ErrCodeConflict, conflict.Error(), details)
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrVenueNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "venue not found")
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrVenueDisabled):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "venue is not available for booking")
	case errors.Is(err, domain.ErrDuplicateBooking):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "event already booked at this venue")
	case errors.Is(err, domain.ErrDuplicateVenueName):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "a venue with this name already exists")
	case errors.Is(err, domain.ErrVenueHasBookings):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "venue still has bookings")
	case errors.Is(err, domain.ErrDuplicateEmail):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "email already registered")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidCredentials):
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid email or password")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
	}
}

// requireUser returns the authenticated user ID or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
	}
	return userID, ok
}
