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

	"github.com/google/uuid"
)

type eventService struct {
	eventRepo      domain.EventRepository
	venueRepo      domain.VenueRepository
	notifier       *BookingNotifier
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository,
	venueRepo domain.VenueRepository,
	notifier *BookingNotifier,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		venueRepo:      venueRepo,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event, venueKey string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event.Name = strings.TrimSpace(event.Name)
	if event.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if event.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}
	candidate, err := candidateInterval(event.Date, event.Time, event.EndTime)
	if err != nil {
		return err
	}
	venue, err := resolveVenue(ctx, s.venueRepo, venueKey)
	if err != nil {
		return err
	}

	now := time.Now()
	event.ID = uuid.NewString()
	event.VenueID = venue.ID
	event.VenueName = venue.Name
	event.CreatedAt = now
	event.UpdatedAt = now

	booking := domain.NewBooking(venue.ID, event.ID, event.Name, event.Date, event.Time, event.EndTime, now)
	if err := s.venueRepo.AppendBooking(ctx, venue.ID, booking, bookingGuard(ctx, s.logger, candidate)); err != nil {
		return fmt.Errorf("book venue: %w", err)
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		if rmErr := s.venueRepo.RemoveBooking(ctx, venue.ID, event.ID); rmErr != nil {
			s.logger.ErrorContext(ctx, "release booking after failed event create",
				"venue_id", venue.ID, "event_id", event.ID, "err", rmErr)
		}
		return fmt.Errorf("create event: %w", err)
	}
	s.notifier.Confirmed(ctx, venue, booking, event.CreatedBy)
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.eventRepo.GetByID(ctx, id)
}

func (s *eventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

// DeleteEvent releases the event's venue booking and then removes the event. Only the
// admin who created an event may delete it.
func (s *eventService) DeleteEvent(ctx context.Context, id, actorID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if event.CreatedBy != "" && event.CreatedBy != actorID {
		return domain.ErrForbidden
	}

	venue, err := s.eventVenue(ctx, event)
	switch {
	case err == nil:
		if err := s.venueRepo.RemoveBooking(ctx, venue.ID, event.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("release booking: %w", err)
		}
	case errors.Is(err, domain.ErrVenueNotFound):
		s.logger.WarnContext(ctx, "deleting event whose venue is gone", "event_id", event.ID, "venue", event.VenueName)
	default:
		return err
	}

	// A failure here leaves the event without a booking; ReconcileBookings restores it.
	if err := s.eventRepo.Delete(ctx, event.ID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if venue != nil {
		booking := domain.NewBooking(venue.ID, event.ID, event.Name, event.Date, event.Time, event.EndTime, event.CreatedAt)
		s.notifier.Cancelled(ctx, venue, booking, actorID)
	}
	return nil
}

// ReconcileBookings walks every stored event and adds the venue booking it should hold.
// Events whose slot conflicts with an existing booking are counted and left alone.
func (s *eventService) ReconcileBookings(ctx context.Context) (*domain.ReconcileStats, error) {
	events, err := s.eventRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	stats := &domain.ReconcileStats{}
	for _, event := range events {
		stats.EventsProcessed++
		if err := s.reconcileOne(ctx, event, stats); err != nil {
			return stats, err
		}
	}
	s.logger.InfoContext(ctx, "booking reconciliation finished",
		"events", stats.EventsProcessed, "added", stats.BookingsAdded,
		"venues_missing", stats.VenuesMissing, "conflicts", stats.Conflicts, "rejected", stats.Rejected)
	return stats, nil
}

func (s *eventService) reconcileOne(ctx context.Context, event *domain.Event, stats *domain.ReconcileStats) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	venue, err := s.eventVenue(ctx, event)
	if errors.Is(err, domain.ErrVenueNotFound) {
		stats.VenuesMissing++
		s.logger.WarnContext(ctx, "event venue not found", "event_id", event.ID, "venue_id", event.VenueID, "venue", event.VenueName)
		return nil
	}
	if err != nil {
		return err
	}
	for _, b := range venue.Bookings {
		if b.EventID == event.ID {
			return nil
		}
	}

	candidate, err := schedule.NewInterval(event.Date, event.Time, event.EndTime)
	if err != nil {
		stats.Rejected++
		s.logger.WarnContext(ctx, "event slot does not parse", "event_id", event.ID, "err", err)
		return nil
	}
	booking := domain.NewBooking(venue.ID, event.ID, event.Name, event.Date, event.Time, event.EndTime, time.Now())
	err = s.venueRepo.AppendBooking(ctx, venue.ID, booking, bookingGuard(ctx, s.logger, candidate))
	switch {
	case err == nil:
		stats.BookingsAdded++
	case errors.Is(err, domain.ErrBookingConflict):
		stats.Conflicts++
		s.logger.WarnContext(ctx, "event overlaps an existing booking", "event_id", event.ID, "venue_id", venue.ID, "err", err)
	case errors.Is(err, domain.ErrVenueDisabled):
		stats.Rejected++
		s.logger.WarnContext(ctx, "event venue is disabled", "event_id", event.ID, "venue_id", venue.ID)
	case errors.Is(err, domain.ErrDuplicateBooking):
	default:
		return fmt.Errorf("append booking for event %s: %w", event.ID, err)
	}
	return nil
}

// eventVenue finds the venue of a stored event, by id first and then by the name the
// event was created with.
func (s *eventService) eventVenue(ctx context.Context, event *domain.Event) (*domain.Venue, error) {
	if event.VenueID != "" {
		venue, err := resolveVenue(ctx, s.venueRepo, event.VenueID)
		if !errors.Is(err, domain.ErrVenueNotFound) {
			return venue, err
		}
	}
	return resolveVenue(ctx, s.venueRepo, event.VenueName)
}
