package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"campusevents/internal/delivery/http/controllers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rejectingVerifier struct{}

func (rejectingVerifier) Verify(string) (string, error) { return "", errors.New("invalid") }

func newTestRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := RouterConfig{Logger: logger, Verifier: rejectingVerifier{}, AllowedOrigins: []string{"https://campus.example"}}
	return NewRouter(cfg,
		controllers.NewVenueController(logger, nil),
		controllers.NewEventController(logger, nil),
		controllers.NewAuthController(logger, nil),
	)
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter()
	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/venues/book"},
		{http.MethodPost, "/venues/cancel-booking"},
		{http.MethodPost, "/venues"},
		{http.MethodPut, "/venues/v1"},
		{http.MethodDelete, "/venues/v1"},
		{http.MethodPost, "/post/event"},
		{http.MethodDelete, "/events/e1"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			req := httptest.NewRequest(rt.method, rt.path, strings.NewReader(`{}`))
			req.Header.Set("Authorization", "Bearer forged")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/venues/v1", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRouter_Healthz(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":{"status":"ok"},"error":null}`, rr.Body.String())
}

func TestRouter_Preflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/venues/book", nil)
	req.Header.Set("Origin", "https://campus.example")
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://campus.example", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_SwaggerDoc(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/venues/check-availability")
}
