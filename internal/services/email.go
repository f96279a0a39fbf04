package services

import (
	"context"
	"fmt"
	"log/slog"

	"campusevents/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendBookingConfirmed sends the "booking_confirmed" template.
func (s *emailService) SendBookingConfirmed(ctx context.Context, data *domain.BookingEmailData) error {
	return s.send(ctx, "booking_confirmed", data)
}

// SendBookingCancelled sends the "booking_cancelled" template.
func (s *emailService) SendBookingCancelled(ctx context.Context, data *domain.BookingEmailData) error {
	return s.send(ctx, "booking_cancelled", data)
}

func (s *emailService) send(ctx context.Context, templateName string, data *domain.BookingEmailData) error {
	if data == nil {
		return fmt.Errorf("%s email data is nil", templateName)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", templateName, err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", templateName, err)
	}
	s.logger.InfoContext(ctx, "email sent", "template", templateName, "to", data.Email)
	return nil
}
