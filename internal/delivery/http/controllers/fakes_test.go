package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeVenueService implements domain.VenueService for handler tests.
type fakeVenueService struct {
	venue        *domain.Venue
	venues       []*domain.Venue
	total        int
	bookings     []domain.Booking
	availability *domain.Availability
	err          error

	lastKey     string
	lastQuery   domain.AvailabilityQuery
	lastBooking *domain.Booking
	lastActor   string
	lastEventID string
	lastParams  domain.PaginationParams
	lastUpdate  domain.VenueUpdate
	lastStatus  domain.BookingStatus
	lastCreate  *domain.Venue
}

func (f *fakeVenueService) CreateVenue(ctx context.Context, venue *domain.Venue) error {
	f.lastCreate = venue
	if f.err != nil {
		return f.err
	}
	venue.ID = "venue-created"
	return nil
}

func (f *fakeVenueService) GetVenue(ctx context.Context, key string) (*domain.Venue, error) {
	f.lastKey = key
	return f.venue, f.err
}

func (f *fakeVenueService) ListVenues(ctx context.Context, params domain.PaginationParams) ([]*domain.Venue, int, error) {
	f.lastParams = params
	return f.venues, f.total, f.err
}

func (f *fakeVenueService) UpdateVenue(ctx context.Context, key string, update domain.VenueUpdate) (*domain.Venue, error) {
	f.lastKey = key
	f.lastUpdate = update
	return f.venue, f.err
}

func (f *fakeVenueService) DeleteVenue(ctx context.Context, key string) error {
	f.lastKey = key
	return f.err
}

func (f *fakeVenueService) ListBookings(ctx context.Context, key string, status domain.BookingStatus) ([]domain.Booking, error) {
	f.lastKey = key
	f.lastStatus = status
	return f.bookings, f.err
}

func (f *fakeVenueService) CheckAvailability(ctx context.Context, q domain.AvailabilityQuery) (*domain.Availability, error) {
	f.lastQuery = q
	return f.availability, f.err
}

func (f *fakeVenueService) BookVenue(ctx context.Context, venueKey string, booking *domain.Booking, actorID string) (*domain.Booking, error) {
	f.lastKey = venueKey
	f.lastBooking = booking
	f.lastActor = actorID
	if f.err != nil {
		return nil, f.err
	}
	booking.ID = "booking-1"
	booking.VenueID = "venue-1"
	return booking, nil
}

func (f *fakeVenueService) CancelBooking(ctx context.Context, venueKey, eventID, actorID string) error {
	f.lastKey = venueKey
	f.lastEventID = eventID
	f.lastActor = actorID
	return f.err
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	event  *domain.Event
	events []*domain.Event
	total  int
	err    error

	lastCreate   *domain.Event
	lastVenueKey string
	lastID       string
	lastActor    string
	lastParams   domain.PaginationParams
}

func (f *fakeEventService) CreateEvent(ctx context.Context, event *domain.Event, venueKey string) error {
	f.lastCreate = event
	f.lastVenueKey = venueKey
	if f.err != nil {
		return f.err
	}
	event.ID = "ev-created"
	event.VenueID = "venue-1"
	return nil
}

func (f *fakeEventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	f.lastID = id
	return f.event, f.err
}

func (f *fakeEventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastParams = params
	return f.events, f.total, f.err
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, id, actorID string) error {
	f.lastID = id
	f.lastActor = actorID
	return f.err
}

func (f *fakeEventService) ReconcileBookings(ctx context.Context) (*domain.ReconcileStats, error) {
	return &domain.ReconcileStats{}, f.err
}

// fakeUserService implements domain.UserService for handler tests.
type fakeUserService struct {
	user   *domain.User
	result *domain.LoginResult
	err    error

	lastEmail    string
	lastPassword string
	lastName     string
}

func (f *fakeUserService) SignUp(ctx context.Context, email, password, name string) (*domain.User, error) {
	f.lastEmail, f.lastPassword, f.lastName = email, password, name
	return f.user, f.err
}

func (f *fakeUserService) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	f.lastEmail, f.lastPassword = email, password
	return f.result, f.err
}

// serve routes a single request through a ServeMux registered with pattern, so
// PathValue works. A non-empty userID is placed in the context as RequireAuth would.
func serve(t *testing.T, pattern string, handler http.HandlerFunc, method, target string, body any, userID string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if userID != "" {
		req = req.WithContext(middleware.SetUserID(req.Context(), userID))
	}
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

// envelope is helpers.APIResponse with Data kept raw for typed decoding.
type envelope struct {
	Data  json.RawMessage   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}
