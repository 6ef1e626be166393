package client

import (
	"context"
	"net/url"
	"time"

	httputil "roombook/pkg/http"
	"roombook/pkg/model"
)

type BookingClient struct {
	httpClient *HttpClient
}

type Availability struct {
	ResourceID string    `json:"resource_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Available  bool      `json:"available"`
}

type createBookingBody struct {
	RequesterID string `json:"requester_id"`
	ResourceID  string `json:"resource_id"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

// Create books iv for the requester. A non-empty idempotencyKey makes the
// call safe to retry.
func (c *BookingClient) Create(ctx context.Context, requesterID, resourceID string, iv model.Interval, idempotencyKey string) (*model.Booking, error) {
	headers := map[string]string{httputil.RequesterIDHeader: requesterID}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}

	resp, err := c.httpClient.POST(ctx, "/api/v1/bookings", createBookingBody{
		RequesterID: requesterID,
		ResourceID:  resourceID,
		Start:       iv.Start.Format(time.RFC3339),
		End:         iv.End.Format(time.RFC3339),
	}, headers)
	if err != nil {
		return nil, err
	}
	var b model.Booking
	if err := decodeData(resp, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *BookingClient) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/bookings/id/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var b model.Booking
	if err := decodeData(resp, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *BookingClient) Cancel(ctx context.Context, id, requesterID string) (*model.Booking, error) {
	resp, err := c.httpClient.DELETE(ctx, "/api/v1/bookings/id/"+url.PathEscape(id), map[string]string{
		httputil.RequesterIDHeader: requesterID,
	})
	if err != nil {
		return nil, err
	}
	var b model.Booking
	if err := decodeData(resp, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *BookingClient) ForRequester(ctx context.Context, requesterID string) ([]*model.Booking, error) {
	return c.list(ctx, "/api/v1/requesters/"+url.PathEscape(requesterID)+"/bookings")
}

func (c *BookingClient) ForResource(ctx context.Context, resourceID string) ([]*model.Booking, error) {
	return c.list(ctx, "/api/v1/resources/id/"+url.PathEscape(resourceID)+"/bookings")
}

func (c *BookingClient) list(ctx context.Context, path string) ([]*model.Booking, error) {
	resp, err := c.httpClient.GET(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	var out []*model.Booking
	if err := decodeData(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingClient) Availability(ctx context.Context, resourceID string, iv model.Interval) (*Availability, error) {
	q := intervalQuery(iv)
	resp, err := c.httpClient.GET(ctx, "/api/v1/resources/id/"+url.PathEscape(resourceID)+"/availability?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var a Availability
	if err := decodeData(resp, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func intervalQuery(iv model.Interval) url.Values {
	q := url.Values{}
	q.Set("start", iv.Start.Format(time.RFC3339))
	q.Set("end", iv.End.Format(time.RFC3339))
	return q
}
