package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"campusevents/internal/domain"
	"campusevents/internal/schedule"
)

const reasonVenueDisabled = "venue disabled"

type venueService struct {
	venueRepo      domain.VenueRepository
	notifier       *BookingNotifier
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewVenueService returns a VenueService. notifier may be nil.
func NewVenueService(venueRepo domain.VenueRepository, notifier *BookingNotifier, logger *slog.Logger, timeout time.Duration) domain.VenueService {
	return &venueService{
		venueRepo:      venueRepo,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *venueService) CreateVenue(ctx context.Context, venue *domain.Venue) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	venue.Name = strings.TrimSpace(venue.Name)
	venue.Location = strings.TrimSpace(venue.Location)
	if err := validateVenue(venue); err != nil {
		return err
	}
	if venue.Facilities == nil {
		venue.Facilities = []string{}
	}
	venue.Bookings = []domain.Booking{}
	now := time.Now()
	venue.CreatedAt = now
	venue.UpdatedAt = now
	if err := s.venueRepo.Create(ctx, venue); err != nil {
		return fmt.Errorf("create venue: %w", err)
	}
	return nil
}

func (s *venueService) GetVenue(ctx context.Context, key string) (*domain.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return resolveVenue(ctx, s.venueRepo, key)
}

func (s *venueService) ListVenues(ctx context.Context, params domain.PaginationParams) ([]*domain.Venue, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	venues, total, err := s.venueRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list venues: %w", err)
	}
	return venues, total, nil
}

// UpdateVenue applies only the fields set in update. Each field is validated on its own;
// the stored row was valid, so the merged row is too.
func (s *venueService) UpdateVenue(ctx context.Context, key string, update domain.VenueUpdate) (*domain.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	update, err := normalizeVenueUpdate(update)
	if err != nil {
		return nil, err
	}
	venue, err := resolveVenue(ctx, s.venueRepo, key)
	if err != nil {
		return nil, err
	}
	updated, err := s.venueRepo.Update(ctx, venue.ID, update, time.Now())
	if err != nil {
		return nil, fmt.Errorf("update venue: %w", err)
	}
	return updated, nil
}

func (s *venueService) DeleteVenue(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	venue, err := resolveVenue(ctx, s.venueRepo, key)
	if err != nil {
		return err
	}
	if err := s.venueRepo.Delete(ctx, venue.ID); err != nil {
		return fmt.Errorf("delete venue: %w", err)
	}
	return nil
}

func (s *venueService) ListBookings(ctx context.Context, key string, status domain.BookingStatus) ([]domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown booking status %q", domain.ErrInvalidInput, status)
	}
	venue, err := resolveVenue(ctx, s.venueRepo, key)
	if err != nil {
		return nil, err
	}
	bookings, err := s.venueRepo.ListBookings(ctx, venue.ID, status)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// CheckAvailability is the read-only conflict check. A disabled venue is reported as
// unavailable; an unparseable candidate is reported as unavailable and returns ErrInvalidInput.
func (s *venueService) CheckAvailability(ctx context.Context, q domain.AvailabilityQuery) (*domain.Availability, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	venue, err := resolveVenue(ctx, s.venueRepo, q.VenueKey)
	if err != nil {
		return nil, err
	}
	if !venue.GenerallyAvailable {
		return &domain.Availability{Available: false, Reason: reasonVenueDisabled, VenueID: venue.ID}, nil
	}
	candidate, err := candidateInterval(q.Date, q.StartTime, q.EndTime)
	if err != nil {
		reason := err.Error()
		var pe *schedule.ParseError
		if errors.As(err, &pe) {
			reason = pe.Error()
		}
		return &domain.Availability{Available: false, Reason: reason, VenueID: venue.ID}, err
	}
	return scanBookings(ctx, s.logger, venue, candidate), nil
}

// BookVenue re-runs the conflict check against a locked snapshot of the venue and stores
// the booking in the same transaction.
func (s *venueService) BookVenue(ctx context.Context, venueKey string, booking *domain.Booking, actorID string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(booking.EventID) == "" || strings.TrimSpace(booking.EventName) == "" {
		return nil, fmt.Errorf("%w: event_id and event_name are required", domain.ErrInvalidInput)
	}
	candidate, err := candidateInterval(booking.Date, booking.StartTime, booking.EndTime)
	if err != nil {
		return nil, err
	}
	venue, err := resolveVenue(ctx, s.venueRepo, venueKey)
	if err != nil {
		return nil, err
	}
	booking.VenueID = venue.ID
	booking.Status = domain.BookingConfirmed
	booking.CreatedAt = time.Now()
	if err := s.venueRepo.AppendBooking(ctx, venue.ID, booking, bookingGuard(ctx, s.logger, candidate)); err != nil {
		return nil, fmt.Errorf("book venue: %w", err)
	}
	s.notifier.Confirmed(ctx, venue, booking, actorID)
	return booking, nil
}

func (s *venueService) CancelBooking(ctx context.Context, venueKey, eventID, actorID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(eventID) == "" {
		return fmt.Errorf("%w: event_id is required", domain.ErrInvalidInput)
	}
	venue, err := resolveVenue(ctx, s.venueRepo, venueKey)
	if err != nil {
		return err
	}
	if err := s.venueRepo.RemoveBooking(ctx, venue.ID, eventID); err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	removed := &domain.Booking{VenueID: venue.ID, EventID: eventID}
	for _, b := range venue.Bookings {
		if b.EventID == eventID {
			removed = &b
			break
		}
	}
	s.notifier.Cancelled(ctx, venue, removed, actorID)
	return nil
}

func normalizeVenueUpdate(u domain.VenueUpdate) (domain.VenueUpdate, error) {
	var problems []string
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			problems = append(problems, "name must not be empty")
		}
		u.Name = &name
	}
	if u.Location != nil {
		location := strings.TrimSpace(*u.Location)
		if location == "" {
			problems = append(problems, "location must not be empty")
		}
		u.Location = &location
	}
	if u.Capacity != nil && *u.Capacity <= 0 {
		problems = append(problems, "capacity must be positive")
	}
	if len(problems) > 0 {
		return u, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, "; "))
	}
	return u, nil
}

func validateVenue(v *domain.Venue) error {
	var problems []string
	if v.Name == "" {
		problems = append(problems, "name is required")
	}
	if v.Location == "" {
		problems = append(problems, "location is required")
	}
	if v.Capacity <= 0 {
		problems = append(problems, "capacity must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}
