package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"campusevents/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeVenueRepo is an in-memory VenueRepository. AppendBooking holds the repo lock
// while the guard runs, mirroring the row lock the Postgres repository takes.
type fakeVenueRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Venue
	nextID    int
	appendErr error
	createErr error
	// getErr is returned by GetByID and GetByName when set.
	getErr error
}

func newFakeVenueRepo(venues ...*domain.Venue) *fakeVenueRepo {
	f := &fakeVenueRepo{byID: make(map[string]*domain.Venue), nextID: 1}
	for _, v := range venues {
		f.byID[v.ID] = v
	}
	return f
}

func copyVenue(v *domain.Venue) *domain.Venue {
	c := *v
	c.Bookings = append([]domain.Booking{}, v.Bookings...)
	c.Facilities = append([]string{}, v.Facilities...)
	return &c
}

func (f *fakeVenueRepo) Create(ctx context.Context, v *domain.Venue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	v.ID = fmt.Sprintf("venue-%d", f.nextID)
	f.nextID++
	f.byID[v.ID] = copyVenue(v)
	return nil
}

func (f *fakeVenueRepo) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if v, ok := f.byID[id]; ok {
		return copyVenue(v), nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeVenueRepo) GetByName(ctx context.Context, name string) (*domain.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, v := range f.byID {
		if v.Name == name {
			return copyVenue(v), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeVenueRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Venue, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Venue, 0, len(f.byID))
	for _, v := range f.byID {
		out = append(out, copyVenue(v))
	}
	return out, len(out), nil
}

func (f *fakeVenueRepo) Update(ctx context.Context, id string, u domain.VenueUpdate, updatedAt time.Time) (*domain.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if u.Name != nil {
		for otherID, other := range f.byID {
			if otherID != id && other.Name == *u.Name {
				return nil, domain.ErrDuplicateVenueName
			}
		}
		v.Name = *u.Name
	}
	if u.Location != nil {
		v.Location = *u.Location
	}
	if u.Capacity != nil {
		v.Capacity = *u.Capacity
	}
	if u.Description != nil {
		v.Description = *u.Description
	}
	if u.Facilities != nil {
		v.Facilities = append([]string{}, u.Facilities...)
	}
	if u.Image != nil {
		v.Image = *u.Image
	}
	if u.GenerallyAvailable != nil {
		v.GenerallyAvailable = *u.GenerallyAvailable
	}
	v.UpdatedAt = updatedAt
	return copyVenue(v), nil
}

func (f *fakeVenueRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if len(v.Bookings) > 0 {
		return domain.ErrVenueHasBookings
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeVenueRepo) ListBookings(ctx context.Context, venueID string, status domain.BookingStatus) ([]domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[venueID]
	if !ok {
		return []domain.Booking{}, nil
	}
	out := make([]domain.Booking, 0)
	for _, b := range v.Bookings {
		if status == "" || b.Status == status {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeVenueRepo) AppendBooking(ctx context.Context, venueID string, b *domain.Booking, guard domain.BookingGuard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	v, ok := f.byID[venueID]
	if !ok {
		return domain.ErrNotFound
	}
	if guard != nil {
		if err := guard(copyVenue(v)); err != nil {
			return err
		}
	}
	for _, existing := range v.Bookings {
		if existing.EventID == b.EventID {
			return domain.ErrDuplicateBooking
		}
	}
	b.ID = fmt.Sprintf("booking-%d", f.nextID)
	f.nextID++
	b.VenueID = venueID
	v.Bookings = append(v.Bookings, *b)
	return nil
}

func (f *fakeVenueRepo) RemoveBooking(ctx context.Context, venueID, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[venueID]
	if !ok {
		return domain.ErrNotFound
	}
	for i, b := range v.Bookings {
		if b.EventID == eventID {
			v.Bookings = append(v.Bookings[:i], v.Bookings[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeVenueRepo) bookings(venueID string) []domain.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Booking{}, f.byID[venueID].Bookings...)
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID      map[string]*domain.Event
	order     []string
	createErr error
	deleteErr error
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	f := &fakeEventRepo{byID: make(map[string]*domain.Event)}
	for _, e := range events {
		f.byID[e.ID] = e
		f.order = append(f.order, e.ID)
	}
	return f
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.byID[e.ID] = e
	f.order = append(f.order, e.ID)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	all, _ := f.ListAll(ctx)
	return all, len(all), nil
}

func (f *fakeEventRepo) ListAll(ctx context.Context) ([]*domain.Event, error) {
	out := make([]*domain.Event, 0, len(f.order))
	for _, id := range f.order {
		if e, ok := f.byID[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	byEmail   map[string]*domain.User
	byID      map[string]*domain.User
	createErr error
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{byEmail: make(map[string]*domain.User), byID: make(map[string]*domain.User)}
	for _, u := range users {
		f.byEmail[u.Email] = u
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	u.ID = fmt.Sprintf("user-%d", len(f.byID)+1)
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

// fakeEmailService records booking emails.
type fakeEmailService struct {
	mu        sync.Mutex
	confirmed []*domain.BookingEmailData
	cancelled []*domain.BookingEmailData
	err       error
}

func (f *fakeEmailService) SendBookingConfirmed(ctx context.Context, data *domain.BookingEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed = append(f.confirmed, data)
	return f.err
}

func (f *fakeEmailService) SendBookingCancelled(ctx context.Context, data *domain.BookingEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, data)
	return f.err
}

type publishedMessage struct {
	key string
	msg domain.BookingMessage
}

// fakePublisher records published booking messages.
type fakePublisher struct {
	mu   sync.Mutex
	sent []publishedMessage
	err  error
}

func (f *fakePublisher) Publish(ctx context.Context, key string, msg domain.BookingMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, publishedMessage{key: key, msg: msg})
	return f.err
}

func (f *fakePublisher) Close() error { return nil }
