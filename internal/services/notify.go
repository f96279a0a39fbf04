package services

import (
	"context"
	"log/slog"

	"campusevents/internal/domain"
)

// BookingNotifier tells the outside world about booking changes: an email to the admin
// who made the change and a message on the broker. Both are best effort; failures are
// logged and never undo the booking.
type BookingNotifier struct {
	emailService domain.EmailService
	publisher    domain.BookingPublisher
	userRepo     domain.UserRepository
	logger       *slog.Logger
}

// NewBookingNotifier returns a notifier. emailService and publisher may be nil.
func NewBookingNotifier(emailService domain.EmailService, publisher domain.BookingPublisher, userRepo domain.UserRepository, logger *slog.Logger) *BookingNotifier {
	return &BookingNotifier{
		emailService: emailService,
		publisher:    publisher,
		userRepo:     userRepo,
		logger:       logger,
	}
}

func (n *BookingNotifier) Confirmed(ctx context.Context, venue *domain.Venue, b *domain.Booking, actorID string) {
	n.notify(ctx, domain.BookingConfirmedKey, venue, b, actorID)
}

func (n *BookingNotifier) Cancelled(ctx context.Context, venue *domain.Venue, b *domain.Booking, actorID string) {
	n.notify(ctx, domain.BookingCancelledKey, venue, b, actorID)
}

func (n *BookingNotifier) notify(ctx context.Context, key string, venue *domain.Venue, b *domain.Booking, actorID string) {
	if n == nil {
		return
	}
	if n.publisher != nil {
		msg := domain.BookingMessage{
			VenueID:   venue.ID,
			VenueName: venue.Name,
			EventID:   b.EventID,
			EventName: b.EventName,
			Date:      b.Date,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
			ActorID:   actorID,
		}
		if err := n.publisher.Publish(ctx, key, msg); err != nil {
			n.logger.WarnContext(ctx, "publish booking message failed", "key", key, "event_id", b.EventID, "err", err)
		}
	}
	if n.emailService == nil || n.userRepo == nil || actorID == "" {
		return
	}
	user, err := n.userRepo.GetByID(ctx, actorID)
	if err != nil {
		n.logger.WarnContext(ctx, "load booking actor failed", "actor_id", actorID, "err", err)
		return
	}
	data := &domain.BookingEmailData{
		Email:     user.Email,
		Name:      user.Name,
		VenueName: venue.Name,
		EventName: b.EventName,
		Date:      b.Date,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
	}
	if key == domain.BookingCancelledKey {
		err = n.emailService.SendBookingCancelled(ctx, data)
	} else {
		err = n.emailService.SendBookingConfirmed(ctx, data)
	}
	if err != nil {
		n.logger.WarnContext(ctx, "send booking email failed", "key", key, "to", user.Email, "err", err)
	}
}
