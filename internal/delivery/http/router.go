package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "campusevents/docs"
	"campusevents/internal/delivery/http/controllers"
	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

// RouterConfig carries what NewRouter needs besides the controllers.
type RouterConfig struct {
	Logger         *slog.Logger
	Verifier       domain.TokenVerifier
	AllowedOrigins []string
}

// NewRouter initializes the HTTP router with all application routes, wrapped in
// CORS and request logging.
func NewRouter(cfg RouterConfig, venueController *controllers.VenueController, eventController *controllers.EventController, authController *controllers.AuthController) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(cfg.Verifier, cfg.Logger)

	// Venues
	mux.HandleFunc("POST /venues/check-availability", venueController.CheckAvailability)
	mux.HandleFunc("POST /venues/book", auth(venueController.BookVenue))
	mux.HandleFunc("POST /venues/cancel-booking", auth(venueController.CancelBooking))
	mux.HandleFunc("POST /venues", auth(venueController.CreateVenue))
	mux.HandleFunc("GET /venues", venueController.ListVenues)
	mux.HandleFunc("GET /venues/{venueID}", venueController.GetVenue)
	mux.HandleFunc("PUT /venues/{venueID}", auth(venueController.UpdateVenue))
	mux.HandleFunc("DELETE /venues/{venueID}", auth(venueController.DeleteVenue))
	mux.HandleFunc("GET /venues/{venueID}/bookings", venueController.ListBookings)
	mux.HandleFunc("GET /venues/{venueID}/calendar.ics", venueController.Calendar)

	// Events
	mux.HandleFunc("POST /post/event", auth(eventController.CreateEvent))
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("GET /events/{eventID}", eventController.GetEvent)
	mux.HandleFunc("DELETE /events/{eventID}", auth(eventController.DeleteEvent))

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return middleware.LoggingMiddleware(cfg.Logger, middleware.CORS(cfg.AllowedOrigins, mux))
}
