package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"campusevents/config"
	"campusevents/internal/adapters/auth"
	"campusevents/internal/adapters/email"
	"campusevents/internal/adapters/mq"
	"campusevents/internal/domain"
	"campusevents/internal/repository/postgres"
	"campusevents/internal/services"

	"golang.org/x/crypto/bcrypt"
)

// app holds the wired dependencies shared by the commands.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *sql.DB
	publisher domain.BookingPublisher

	tokens *auth.JWT
	venues domain.VenueService
	events domain.EventService
	users  domain.UserService
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger()

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return nil, err
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.AWSRegion,
			AccessKeyID:     cfg.Email.AWSKeyID,
			SecretAccessKey: cfg.Email.AWSSecret,
		},
	}, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("mailer: %w", err)
	}

	publisher := newPublisher(cfg, logger)

	venueRepo := postgres.NewVenueRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	userRepo := postgres.NewUserRepository(db)

	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	notifier := services.NewBookingNotifier(emailService, publisher, userRepo, logger)
	tokens := auth.NewJWT(cfg.JWTSecret)

	return &app{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		publisher: publisher,
		tokens:    tokens,
		venues:    services.NewVenueService(venueRepo, notifier, logger, cfg.RequestTimeout),
		events:    services.NewEventService(eventRepo, venueRepo, notifier, logger, cfg.RequestTimeout),
		users:     services.NewUserService(userRepo, auth.NewBcryptHasher(bcrypt.DefaultCost), tokens, cfg.JWTExpiry, cfg.RequestTimeout),
	}, nil
}

// newPublisher connects to the broker when AMQP_URL is set. Booking events are
// best effort, so a broker that cannot be reached downgrades to the noop publisher.
func newPublisher(cfg *config.Config, logger *slog.Logger) domain.BookingPublisher {
	if cfg.AMQP.URL == "" {
		return mq.NewNoopPublisher(logger)
	}
	p, err := mq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
	if err != nil {
		logger.Warn("amqp unavailable, booking events disabled", "err", err)
		return mq.NewNoopPublisher(logger)
	}
	logger.Info("publishing booking events", "exchange", cfg.AMQP.Exchange)
	return p
}

func (a *app) Close() {
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("close publisher", "err", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("close database", "err", err)
	}
}
