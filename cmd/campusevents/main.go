package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusevents/internal/delivery/http/controllers"
	"campusevents/internal/repository/postgres"

	deliveryhttp "campusevents/internal/delivery/http"

	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 10 * time.Second

// @title Campus Events API
// @version 1.0
// @description Venue booking and event management with double-booking detection.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	app := &cli.App{
		Name:  "campusevents",
		Usage: "Campus event and venue booking service.",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			reconcileCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "migrate", Usage: "Apply the schema before serving."},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if c.Bool("migrate") {
				if err := postgres.Migrate(ctx, a.db); err != nil {
					return err
				}
				a.logger.Info("schema applied")
			}

			router := deliveryhttp.NewRouter(
				deliveryhttp.RouterConfig{Logger: a.logger, Verifier: a.tokens, AllowedOrigins: a.cfg.CORSOrigins},
				controllers.NewVenueController(a.logger, a.venues),
				controllers.NewEventController(a.logger, a.events),
				controllers.NewAuthController(a.logger, a.users),
			)
			srv := &http.Server{
				Addr:              ":" + a.cfg.Port,
				Handler:           router,
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("server starting", "port", a.cfg.Port, "env", a.cfg.Environment)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("server: %w", err)
			case <-ctx.Done():
			}

			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update the database schema.",
		Action: func(c *cli.Context) error {
			a, err := newApp(c.Context)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := postgres.Migrate(c.Context, a.db); err != nil {
				return err
			}
			a.logger.Info("schema applied")
			return nil
		},
	}
}

func reconcileCommand() *cli.Command {
	return &cli.Command{
		Name:  "reconcile",
		Usage: "Add the missing venue booking for every stored event.",
		Action: func(c *cli.Context) error {
			a, err := newApp(c.Context)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.events.ReconcileBookings(c.Context)
			if err != nil {
				return fmt.Errorf("reconcile: %w", err)
			}
			a.logger.Info("reconcile finished",
				"events", stats.EventsProcessed,
				"added", stats.BookingsAdded,
				"venues_missing", stats.VenuesMissing,
				"conflicts", stats.Conflicts,
				"rejected", stats.Rejected,
			)
			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	}
}
