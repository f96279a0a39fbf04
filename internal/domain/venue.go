package domain

import (
	"context"
	"time"
)

// BookingStatus is the lifecycle state of a venue booking.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingPending   BookingStatus = "pending"
	BookingCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is one of the known booking states.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingConfirmed, BookingPending, BookingCancelled:
		return true
	}
	return false
}

// Venue represents a bookable campus space.
// swagger:model Venue
type Venue struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Location           string    `json:"location"`
	Capacity           int       `json:"capacity"`
	Description        string    `json:"description"`
	Facilities         []string  `json:"facilities"`
	Image              string    `json:"image"`
	GenerallyAvailable bool      `json:"generally_available"`
	CreatedBy          string    `json:"created_by"`
	Bookings           []Booking `json:"bookings"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewVenue returns a new Venue that accepts bookings. ID is set by the service on create.
func NewVenue(name, location string, capacity int, description string, facilities []string, image, createdBy string, createdAt, updatedAt time.Time) *Venue {
	if facilities == nil {
		facilities = []string{}
	}
	return &Venue{
		Name:               name,
		Location:           location,
		Capacity:           capacity,
		Description:        description,
		Facilities:         facilities,
		Image:              image,
		GenerallyAvailable: true,
		CreatedBy:          createdBy,
		Bookings:           []Booking{},
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
	}
}

// Booking is a reservation of a venue for an event. Date and times keep the text the
// client supplied (DD/MM/YYYY, H:MM AM/PM) so legacy rows remain representable.
// swagger:model Booking
type Booking struct {
	ID        string        `json:"id"`
	VenueID   string        `json:"venue_id"`
	EventID   string        `json:"event_id"`
	EventName string        `json:"event_name"`
	Date      string        `json:"date"`
	StartTime string        `json:"start_time"`
	EndTime   string        `json:"end_time"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewBooking returns a confirmed booking for the given event slot.
func NewBooking(venueID, eventID, eventName, date, startTime, endTime string, createdAt time.Time) *Booking {
	return &Booking{
		VenueID:   venueID,
		EventID:   eventID,
		EventName: eventName,
		Date:      date,
		StartTime: startTime,
		EndTime:   endTime,
		Status:    BookingConfirmed,
		CreatedAt: createdAt,
	}
}

// VenueUpdate carries the optional fields of a venue update; nil means unchanged.
type VenueUpdate struct {
	Name               *string
	Location           *string
	Capacity           *int
	Description        *string
	Facilities         []string
	Image              *string
	GenerallyAvailable *bool
}

// AvailabilityQuery is a candidate slot to check against a venue's bookings.
// VenueKey is a venue id or, as a fallback, its exact name.
type AvailabilityQuery struct {
	VenueKey  string
	Date      string
	StartTime string
	EndTime   string
}

// Availability is the outcome of a conflict check.
// swagger:model Availability
type Availability struct {
	Available          bool      `json:"available"`
	Reason             string    `json:"reason,omitempty"`
	VenueID            string    `json:"venue_id,omitempty"`
	ConflictingBooking *Booking  `json:"conflictingBooking,omitempty"`
	Conflicts          []Booking `json:"conflicts,omitempty"`
	Skipped            int       `json:"skipped,omitempty"`
}

// BookingGuard inspects a locked snapshot of a venue before a booking is appended.
// Returning an error aborts the append.
type BookingGuard func(venue *Venue) error

// VenueRepository defines the interface for venue and booking storage.
type VenueRepository interface {
	// Create returns ErrDuplicateVenueName when the name is taken.
	Create(ctx context.Context, venue *Venue) error
	GetByID(ctx context.Context, id string) (*Venue, error)
	GetByName(ctx context.Context, name string) (*Venue, error)
	List(ctx context.Context, params PaginationParams) ([]*Venue, int, error)
	// Update applies the non-nil fields of update in a single statement and returns the
	// stored venue. Returns ErrDuplicateVenueName when the new name is taken.
	Update(ctx context.Context, id string, update VenueUpdate, updatedAt time.Time) (*Venue, error)
	// Delete removes a venue with no bookings. Returns ErrVenueHasBookings otherwise.
	Delete(ctx context.Context, id string) error
	ListBookings(ctx context.Context, venueID string, status BookingStatus) ([]Booking, error)
	// AppendBooking locks the venue, runs guard against the locked snapshot and, if it
	// passes, stores the booking in the same transaction.
	AppendBooking(ctx context.Context, venueID string, booking *Booking, guard BookingGuard) error
	RemoveBooking(ctx context.Context, venueID, eventID string) error
}

// VenueService defines venue administration and availability operations.
type VenueService interface {
	CreateVenue(ctx context.Context, venue *Venue) error
	GetVenue(ctx context.Context, key string) (*Venue, error)
	ListVenues(ctx context.Context, params PaginationParams) ([]*Venue, int, error)
	UpdateVenue(ctx context.Context, key string, update VenueUpdate) (*Venue, error)
	DeleteVenue(ctx context.Context, key string) error
	ListBookings(ctx context.Context, key string, status BookingStatus) ([]Booking, error)
	CheckAvailability(ctx context.Context, q AvailabilityQuery) (*Availability, error)
	BookVenue(ctx context.Context, venueKey string, booking *Booking, actorID string) (*Booking, error)
	CancelBooking(ctx context.Context, venueKey, eventID, actorID string) error
}
