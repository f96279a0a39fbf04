package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusevents/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEventService(events *fakeEventRepo, venues *fakeVenueRepo, notifier *BookingNotifier) domain.EventService {
	return NewEventService(events, venues, notifier, testLogger, 5*time.Second)
}

func newEvent(name, date, start, end string) *domain.Event {
	return domain.NewEvent(name, date, start, end, "", 0, "CS Club", "admin-1", time.Time{}, time.Time{})
}

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("stores event and books venue", func(t *testing.T) {
		venues := newFakeVenueRepo(testVenue())
		events := newFakeEventRepo()
		pub := &fakePublisher{}
		svc := newTestEventService(events, venues, NewBookingNotifier(nil, pub, nil, testLogger))

		e := newEvent("Tech Talk", "01/06/2025", "10:00 AM", "12:00 PM")
		require.NoError(t, svc.CreateEvent(ctx, e, "Main Auditorium"))

		_, err := uuid.Parse(e.ID)
		require.NoError(t, err)
		assert.Equal(t, "venue-1", e.VenueID)
		assert.Equal(t, "Main Auditorium", e.VenueName)
		stored, err := events.GetByID(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, "Tech Talk", stored.Name)

		bookings := venues.bookings("venue-1")
		require.Len(t, bookings, 1)
		assert.Equal(t, e.ID, bookings[0].EventID)
		assert.Equal(t, "10:00 AM", bookings[0].StartTime)
		require.Len(t, pub.sent, 1)
		assert.Equal(t, "admin-1", pub.sent[0].msg.ActorID)
	})

	t.Run("conflict leaves nothing behind", func(t *testing.T) {
		venues := newFakeVenueRepo(testVenue(booking("ev-1", "Tech Talk", "01/06/2025", "10:00 AM", "12:00 PM", domain.BookingConfirmed)))
		events := newFakeEventRepo()
		svc := newTestEventService(events, venues, nil)

		err := svc.CreateEvent(ctx, newEvent("Workshop", "01/06/2025", "11:00 AM", ""), "venue-1")
		require.ErrorIs(t, err, domain.ErrBookingConflict)
		var ce *domain.ConflictError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "Tech Talk", ce.First().EventName)

		all, _ := events.ListAll(ctx)
		assert.Empty(t, all)
		assert.Len(t, venues.bookings("venue-1"), 1)
	})

	t.Run("failed event insert releases the booking", func(t *testing.T) {
		venues := newFakeVenueRepo(testVenue())
		events := newFakeEventRepo()
		events.createErr = errors.New("insert failed")
		svc := newTestEventService(events, venues, nil)

		err := svc.CreateEvent(ctx, newEvent("Tech Talk", "01/06/2025", "10:00 AM", ""), "venue-1")
		require.Error(t, err)
		assert.Empty(t, venues.bookings("venue-1"))
	})

	t.Run("validation", func(t *testing.T) {
		svc := newTestEventService(newFakeEventRepo(), newFakeVenueRepo(testVenue()), nil)
		require.ErrorIs(t, svc.CreateEvent(ctx, newEvent(" ", "01/06/2025", "10:00 AM", ""), "venue-1"), domain.ErrInvalidInput)
		require.ErrorIs(t, svc.CreateEvent(ctx, newEvent("Talk", "06/31/2025", "10:00 AM", ""), "venue-1"), domain.ErrInvalidInput)
		require.ErrorIs(t, svc.CreateEvent(ctx, newEvent("Talk", "01/06/2025", "10:00 AM", ""), "Gym"), domain.ErrVenueNotFound)

		priced := newEvent("Talk", "01/06/2025", "10:00 AM", "")
		priced.Price = -5
		require.ErrorIs(t, svc.CreateEvent(ctx, priced, "venue-1"), domain.ErrInvalidInput)
	})

	t.Run("venue lookup failure is a storage error", func(t *testing.T) {
		errDB := errors.New("connection refused")
		venues := newFakeVenueRepo(testVenue())
		venues.getErr = errDB
		events := newFakeEventRepo()
		svc := newTestEventService(events, venues, nil)

		err := svc.CreateEvent(ctx, newEvent("Tech Talk", "01/06/2025", "10:00 AM", ""), "Main Auditorium")
		require.ErrorIs(t, err, errDB)
		assert.NotErrorIs(t, err, domain.ErrVenueNotFound)
		assert.NotErrorIs(t, err, domain.ErrBookingConflict)
		all, _ := events.ListAll(ctx)
		assert.Empty(t, all)
	})
}

func TestEventService_DeleteEvent(t *testing.T) {
	ctx := context.Background()

	setup := func() (*fakeEventRepo, *fakeVenueRepo, domain.EventService) {
		e := newEvent("Tech Talk", "01/06/2025", "10:00 AM", "12:00 PM")
		e.ID = "ev-1"
		e.VenueID = "venue-1"
		e.VenueName = "Main Auditorium"
		events := newFakeEventRepo(e)
		venues := newFakeVenueRepo(testVenue(booking("ev-1", "Tech Talk", "01/06/2025", "10:00 AM", "12:00 PM", domain.BookingConfirmed)))
		return events, venues, newTestEventService(events, venues, nil)
	}

	t.Run("releases the booking", func(t *testing.T) {
		events, venues, svc := setup()
		require.NoError(t, svc.DeleteEvent(ctx, "ev-1", "admin-1"))
		_, err := events.GetByID(ctx, "ev-1")
		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, venues.bookings("venue-1"))
	})

	t.Run("other admins are forbidden", func(t *testing.T) {
		_, venues, svc := setup()
		require.ErrorIs(t, svc.DeleteEvent(ctx, "ev-1", "admin-2"), domain.ErrForbidden)
		assert.Len(t, venues.bookings("venue-1"), 1)
	})

	t.Run("unknown event", func(t *testing.T) {
		_, _, svc := setup()
		require.ErrorIs(t, svc.DeleteEvent(ctx, "ev-404", "admin-1"), domain.ErrNotFound)
	})

	t.Run("event whose venue is gone", func(t *testing.T) {
		e := newEvent("Orphan", "01/06/2025", "10:00 AM", "")
		e.ID = "ev-9"
		e.VenueName = "Demolished Hall"
		events := newFakeEventRepo(e)
		svc := newTestEventService(events, newFakeVenueRepo(), nil)
		require.NoError(t, svc.DeleteEvent(ctx, "ev-9", "admin-1"))
	})
}

func TestEventService_ReconcileBookings(t *testing.T) {
	ctx := context.Background()

	mk := func(id, name, venueID, venueName, date, start, end string) *domain.Event {
		e := newEvent(name, date, start, end)
		e.ID = id
		e.VenueID = venueID
		e.VenueName = venueName
		return e
	}
	disabled := &domain.Venue{ID: "venue-2", Name: "Closed Hall", Location: "South", Capacity: 10, GenerallyAvailable: false}
	venues := newFakeVenueRepo(
		testVenue(booking("ev-1", "Already booked", "01/06/2025", "10:00 AM", "12:00 PM", domain.BookingConfirmed)),
		disabled,
	)
	events := newFakeEventRepo(
		mk("ev-1", "Already booked", "venue-1", "Main Auditorium", "01/06/2025", "10:00 AM", "12:00 PM"),
		mk("ev-2", "Missing booking", "", "Main Auditorium", "01/06/2025", "2:00 PM", "4:00 PM"),
		mk("ev-3", "Clashes", "venue-1", "Main Auditorium", "01/06/2025", "11:00 AM", ""),
		mk("ev-4", "Nowhere", "venue-404", "Demolished Hall", "01/06/2025", "9:00 AM", ""),
		mk("ev-5", "Garbled", "venue-1", "Main Auditorium", "someday", "9:00 AM", ""),
		mk("ev-6", "Closed", "venue-2", "Closed Hall", "01/06/2025", "9:00 AM", ""),
		mk("ev-7", "Stale id", "venue-old", "Main Auditorium", "02/06/2025", "9:00 AM", ""),
	)
	svc := newTestEventService(events, venues, nil)

	stats, err := svc.ReconcileBookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, &domain.ReconcileStats{
		EventsProcessed: 7,
		BookingsAdded:   2,
		VenuesMissing:   1,
		Conflicts:       1,
		Rejected:        2,
	}, stats)

	ids := map[string]bool{}
	for _, b := range venues.bookings("venue-1") {
		ids[b.EventID] = true
	}
	assert.Equal(t, map[string]bool{"ev-1": true, "ev-2": true, "ev-7": true}, ids)

	again, err := svc.ReconcileBookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.BookingsAdded)
}

func TestEventService_ReconcileBookings_StorageError(t *testing.T) {
	venues := newFakeVenueRepo(testVenue())
	venues.appendErr = errors.New("connection reset")
	events := newFakeEventRepo(func() *domain.Event {
		e := newEvent("Talk", "01/06/2025", "10:00 AM", "")
		e.ID = "ev-1"
		e.VenueID = "venue-1"
		return e
	}())
	svc := newTestEventService(events, venues, nil)

	stats, err := svc.ReconcileBookings(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, stats.EventsProcessed)
}
