package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	bookingshandler "roombook/internal/bookings/handler"
	bookingsrepo "roombook/internal/bookings/repository"
	bookingsservice "roombook/internal/bookings/service"
	bookingsvalidator "roombook/internal/bookings/validator"
	resourceshandler "roombook/internal/resources/handler"
	resourcesrepo "roombook/internal/resources/repository"
	resourcesservice "roombook/internal/resources/service"
	resourcesvalidator "roombook/internal/resources/validator"
	searchhandler "roombook/internal/search/handler"
	searchservice "roombook/internal/search/service"
	"roombook/pkg/clock"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Client {
	t.Helper()
	log := logger.Discard()
	clk := clock.NewManual(time.Date(2030, 1, 7, 7, 0, 0, 0, time.Local))

	resources := resourcesservice.NewResourceService(
		resourcesrepo.NewMemoryResourceRepository(),
		resourcesvalidator.NewResourceValidator(log),
		clk,
		log,
	)
	bookings := bookingsservice.NewBookingService(
		bookingsrepo.NewMemoryBookingRepository(),
		bookingsvalidator.NewBookingValidator(log),
		resources.Exists,
		model.DefaultBusinessHours(),
		clk,
		nil,
		log,
	)

	router := httprouter.New()
	router.GET("/health", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})
	resourceshandler.NewResourceHandler(resources, log).RegisterRoutes(router)
	bookingshandler.NewBookingHandler(bookings, log).RegisterRoutes(router)
	searchhandler.NewSearchHandler(searchservice.NewSearchService(resources, bookings, log), log).RegisterRoutes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func slot(startHour, endHour int) model.Interval {
	return model.MustInterval(
		time.Date(2030, 1, 8, startHour, 0, 0, 0, time.Local),
		time.Date(2030, 1, 8, endHour, 0, 0, 0, time.Local),
	)
}

func TestClient_RoundTrip(t *testing.T) {
	c := newTestServer(t)
	ctx := context.Background()

	lotus, err := c.Resources.Register(ctx, model.ResourceInput{DisplayName: "Lotus", Capacity: 12, Equipment: []string{"vc", "projector"}})
	require.NoError(t, err)
	orchid, err := c.Resources.Register(ctx, model.ResourceInput{DisplayName: "Orchid", Capacity: 6, Equipment: []string{"projector"}})
	require.NoError(t, err)

	got, err := c.Resources.Get(ctx, orchid.ID)
	require.NoError(t, err)
	assert.Equal(t, "Orchid", got.DisplayName)

	all, err := c.Resources.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	matching, err := c.Resources.Match(ctx, 5, []string{"PROJECTOR"})
	require.NoError(t, err)
	require.Len(t, matching, 2)
	assert.Equal(t, orchid.ID, matching[0].ID)

	booking, err := c.Bookings.Create(ctx, "U1", orchid.ID, slot(10, 11), "")
	require.NoError(t, err)
	assert.Equal(t, model.BookingActive, booking.Status)

	fetched, err := c.Bookings.GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, fetched.ID)

	avail, err := c.Bookings.Availability(ctx, orchid.ID, slot(10, 11))
	require.NoError(t, err)
	assert.False(t, avail.Available)

	free, err := c.Search.Available(ctx, slot(10, 11), 5, []string{"PROJECTOR"})
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, lotus.ID, free[0].ID)

	mine, err := c.Bookings.ForRequester(ctx, "U1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	onRoom, err := c.Bookings.ForResource(ctx, orchid.ID)
	require.NoError(t, err)
	assert.Len(t, onRoom, 1)

	cancelled, err := c.Bookings.Cancel(ctx, booking.ID, "U1")
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, cancelled.Status)

	mine, err = c.Bookings.ForRequester(ctx, "U1")
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestClient_APIErrors(t *testing.T) {
	c := newTestServer(t)
	ctx := context.Background()
	room, err := c.Resources.Register(ctx, model.ResourceInput{DisplayName: "Iris", Capacity: 4})
	require.NoError(t, err)
	existing, err := c.Bookings.Create(ctx, "U1", room.ID, slot(9, 10), "")
	require.NoError(t, err)

	_, err = c.Bookings.Create(ctx, "U2", room.ID, slot(9, 10), "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "CONFLICT", apiErr.Code)
	assert.Equal(t, existing.ID, apiErr.Details["conflicting_booking_id"])

	_, err = c.Bookings.Cancel(ctx, existing.ID, "U2")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)

	_, err = c.Resources.Get(ctx, "Rmissing1")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "NOT_FOUND")
}

func TestClient_WaitForHealthy(t *testing.T) {
	c := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Http.WaitForHealthy(ctx, 10*time.Millisecond))

	down := NewHttpClient("http://127.0.0.1:1")
	ctx, cancel = context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, down.WaitForHealthy(ctx, 10*time.Millisecond))
}

func TestToAPIError_LegacyBody(t *testing.T) {
	resp := &Response{
		Response: &http.Response{StatusCode: http.StatusBadRequest},
		Body:     []byte(`{"error":"Invalid request body"}`),
	}

	err := toAPIError(resp)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Invalid request body", apiErr.Message)
}
