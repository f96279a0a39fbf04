package domain

import (
	"context"
	"time"
)

// Event represents a campus event held at a venue.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	VenueID     string    `json:"venue_id"`
	VenueName   string    `json:"venue_name"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	EndTime     string    `json:"end_time"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Organizer   string    `json:"organizer"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID and venue fields are set by the service on create.
func NewEvent(name, date, startTime, endTime, description string, price float64, organizer, createdBy string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Name:        name,
		Date:        date,
		Time:        startTime,
		EndTime:     endTime,
		Description: description,
		Price:       price,
		Organizer:   organizer,
		CreatedBy:   createdBy,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	ListAll(ctx context.Context) ([]*Event, error)
	Delete(ctx context.Context, id string) error
}

// ReconcileStats summarises a booking reconciliation run.
type ReconcileStats struct {
	EventsProcessed int `json:"events_processed"`
	BookingsAdded   int `json:"bookings_added"`
	VenuesMissing   int `json:"venues_missing"`
	Conflicts       int `json:"conflicts"`
	Rejected        int `json:"rejected"`
}

// EventService defines the business logic for campus events.
type EventService interface {
	// CreateEvent books venueKey for the event slot and stores the event. The venue
	// booking and the availability check happen atomically.
	CreateEvent(ctx context.Context, event *Event, venueKey string) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	DeleteEvent(ctx context.Context, id, actorID string) error
	// ReconcileBookings adds a venue booking for every stored event that lacks one.
	ReconcileBookings(ctx context.Context) (*ReconcileStats, error)
}
