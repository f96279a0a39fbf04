package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// BookingEmailData holds data for booking confirmation and cancellation emails.
type BookingEmailData struct {
	Email     string
	Name      string
	VenueName string
	EventName string
	Date      string
	StartTime string
	EndTime   string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendBookingConfirmed(ctx context.Context, data *BookingEmailData) error
	SendBookingCancelled(ctx context.Context, data *BookingEmailData) error
}

// Routing keys for booking lifecycle messages.
const (
	BookingConfirmedKey = "booking.confirmed"
	BookingCancelledKey = "booking.cancelled"
)

// BookingMessage is the payload published when a booking is confirmed or cancelled.
type BookingMessage struct {
	VenueID   string `json:"venue_id"`
	VenueName string `json:"venue_name"`
	EventID   string `json:"event_id"`
	EventName string `json:"event_name"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	ActorID   string `json:"actor_id"`
}

// BookingPublisher publishes booking lifecycle messages to a broker.
type BookingPublisher interface {
	Publish(ctx context.Context, key string, msg BookingMessage) error
	Close() error
}
