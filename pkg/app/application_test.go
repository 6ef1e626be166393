package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	bookingshandler "roombook/internal/bookings/handler"
	bookingsrepo "roombook/internal/bookings/repository"
	bookingsservice "roombook/internal/bookings/service"
	bookingsvalidator "roombook/internal/bookings/validator"
	"roombook/internal/health/checks"
	resourceshandler "roombook/internal/resources/handler"
	resourcesrepo "roombook/internal/resources/repository"
	resourcesservice "roombook/internal/resources/service"
	resourcesvalidator "roombook/internal/resources/validator"
	searchhandler "roombook/internal/search/handler"
	searchservice "roombook/internal/search/service"
	"roombook/pkg/clock"
	"roombook/pkg/config"
	"roombook/pkg/contracts"
	httputil "roombook/pkg/http"
	"roombook/pkg/logger"
	"roombook/pkg/middleware"
	"roombook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApplication(t *testing.T, mutate func(*config.Config)) http.Handler {
	t.Helper()
	cfg := config.FromEnv("test")
	cfg.Log = logger.Discard()
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())

	clk := clock.NewManual(time.Date(2030, 1, 7, 7, 0, 0, 0, time.Local))
	resources := resourcesservice.NewResourceService(
		resourcesrepo.NewMemoryResourceRepository(),
		resourcesvalidator.NewResourceValidator(cfg.Log),
		clk,
		cfg.Log,
	)
	bookingRepo := bookingsrepo.NewMemoryBookingRepository()
	bookings := bookingsservice.NewBookingService(
		bookingRepo,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		resources.Exists,
		cfg.BusinessHours(),
		clk,
		nil,
		cfg.Log,
	)

	application := NewApplication(cfg)
	application.SetApp(
		[]contracts.HealthChecker{checks.NewLedgerChecker(bookingRepo)},
		resourceshandler.NewResourceHandler(resources, cfg.Log),
		bookingshandler.NewBookingHandler(bookings, cfg.Log),
		searchhandler.NewSearchHandler(searchservice.NewSearchService(resources, bookings, cfg.Log), cfg.Log),
	)
	t.Cleanup(func() {
		application.runShutdownHooks(context.Background())
		application.idempotencyStore.Stop()
		application.rateLimiter.Stop()
	})
	return application.Handler()
}

func send(h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var resp struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Data
}

func TestApplication_BookingFlow(t *testing.T) {
	h := newTestApplication(t, nil)

	rec := send(h, http.MethodPost, "/api/v1/resources",
		`{"display_name":"Orchid","capacity":6,"equipment":["projector"],"location":"Floor 1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	room := decodeData[model.Resource](t, rec)
	assert.Equal(t, []string{"PROJECTOR"}, room.Equipment)

	booking := `{"requester_id":"U1","resource_id":"` + room.ID + `","start":"2030-01-08 09:00","end":"2030-01-08 10:00"}`
	headers := map[string]string{middleware.DefaultIdempotencyHeader: "create-1", httputil.RequesterIDHeader: "U1"}

	first := send(h, http.MethodPost, "/api/v1/bookings", booking, headers)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	assert.NotEmpty(t, first.Header().Get(middleware.RequestIDHeader))

	replay := send(h, http.MethodPost, "/api/v1/bookings", booking, headers)
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, first.Body.String(), replay.Body.String())

	again := send(h, http.MethodPost, "/api/v1/bookings", booking, map[string]string{httputil.RequesterIDHeader: "U1"})
	assert.Equal(t, http.StatusConflict, again.Code)

	rec = send(h, http.MethodGet, "/api/v1/resources/available?start=2030-01-08+09:00&end=2030-01-08+10:00", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[[]model.Resource](t, rec))

	b := decodeData[model.Booking](t, first)
	rec = send(h, http.MethodDelete, "/api/v1/bookings/id/"+b.ID, "", map[string]string{httputil.RequesterIDHeader: "U1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = send(h, http.MethodGet, "/api/v1/resources/available?start=2030-01-08+09:00&end=2030-01-08+10:00", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]model.Resource](t, rec), 1)
}

func TestApplication_HealthAndReady(t *testing.T) {
	h := newTestApplication(t, nil)

	rec := send(h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = send(h, http.MethodGet, "/ready", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ledger"`)
}

func TestApplication_MiddlewareRejections(t *testing.T) {
	h := newTestApplication(t, func(c *config.Config) {
		c.RateLimitRequests = 2
		c.MaxRequestSize = 256
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resources", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = send(h, http.MethodPost, "/api/v1/resources", `{"display_name":"`+strings.Repeat("x", 300)+`"}`, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	limited := map[string]string{httputil.RequesterIDHeader: "U2"}
	assert.Equal(t, http.StatusOK, send(h, http.MethodGet, "/api/v1/requesters/U2/bookings", "", limited).Code)
	assert.Equal(t, http.StatusOK, send(h, http.MethodGet, "/api/v1/requesters/U2/bookings", "", limited).Code)
	assert.Equal(t, http.StatusTooManyRequests, send(h, http.MethodGet, "/api/v1/requesters/U2/bookings", "", limited).Code)

	assert.Equal(t, http.StatusOK, send(h, http.MethodGet, "/health", "", limited).Code, "health bypasses the limiter")
}

func TestApplication_ShutdownHooksRunInOrder(t *testing.T) {
	cfg := config.FromEnv("test")
	cfg.Log = logger.Discard()
	application := NewApplication(cfg)

	var order []string
	application.OnShutdown(
		ShutdownHook{Name: "flush", Fn: func(context.Context) error { order = append(order, "flush"); return nil }},
		ShutdownHook{Name: "close", Fn: func(context.Context) error { order = append(order, "close"); return assert.AnError }},
		ShutdownHook{Name: "after", Fn: func(context.Context) error { order = append(order, "after"); return nil }},
	)

	application.runShutdownHooks(context.Background())

	assert.Equal(t, []string{"flush", "close", "after"}, order)
}
