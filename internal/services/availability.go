package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"campusevents/internal/domain"
	"campusevents/internal/schedule"
)

// resolveVenue looks a venue up by id and falls back to its exact name. Older clients
// still send venue names where an id is expected.
func resolveVenue(ctx context.Context, repo domain.VenueRepository, key string) (*domain.Venue, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.ErrVenueNotFound
	}
	venue, err := repo.GetByID(ctx, key)
	if err == nil {
		return venue, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get venue by id: %w", err)
	}
	venue, err = repo.GetByName(ctx, key)
	if err == nil {
		return venue, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", domain.ErrVenueNotFound, key)
	}
	return nil, fmt.Errorf("get venue by name: %w", err)
}

// candidateInterval normalizes a requested slot. Failures wrap ErrInvalidInput and keep
// the *schedule.ParseError reachable through errors.As.
func candidateInterval(date, start, end string) (schedule.Interval, error) {
	iv, err := schedule.NewInterval(date, start, end)
	if err != nil {
		return schedule.Interval{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return iv, nil
}

// scanBookings checks candidate against the confirmed bookings of venue. Every
// overlapping booking is collected; stored rows that do not parse are skipped and logged.
func scanBookings(ctx context.Context, logger *slog.Logger, venue *domain.Venue, candidate schedule.Interval) *domain.Availability {
	result := &domain.Availability{Available: true, VenueID: venue.ID}
	for _, b := range venue.Bookings {
		if b.Status != domain.BookingConfirmed {
			continue
		}
		existing, err := schedule.NewInterval(b.Date, b.StartTime, b.EndTime)
		if err != nil {
			result.Skipped++
			logger.WarnContext(ctx, "skipping unparseable booking",
				"venue_id", venue.ID, "booking_id", b.ID, "event_id", b.EventID, "err", err)
			continue
		}
		if schedule.Overlaps(candidate, existing) {
			result.Conflicts = append(result.Conflicts, b)
		}
	}
	if len(result.Conflicts) > 0 {
		first := result.Conflicts[0]
		result.Available = false
		result.ConflictingBooking = &first
		result.Reason = fmt.Sprintf("venue already booked by %q on %s at %s", first.EventName, first.Date, first.StartTime)
	}
	return result
}

// bookingGuard rejects the append when the locked venue is disabled or already holds a
// confirmed booking overlapping candidate.
func bookingGuard(ctx context.Context, logger *slog.Logger, candidate schedule.Interval) domain.BookingGuard {
	return func(venue *domain.Venue) error {
		if !venue.GenerallyAvailable {
			return domain.ErrVenueDisabled
		}
		a := scanBookings(ctx, logger, venue, candidate)
		if !a.Available {
			return &domain.ConflictError{VenueName: venue.Name, Conflicts: a.Conflicts}
		}
		return nil
	}
}
