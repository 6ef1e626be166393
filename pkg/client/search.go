package client

import (
	"context"
	"strconv"
	"strings"

	"roombook/pkg/model"
)

type SearchClient struct {
	httpClient *HttpClient
}

// Available lists resources free for iv, smallest capacity first.
func (c *SearchClient) Available(ctx context.Context, iv model.Interval, minCapacity int, equipment []string) ([]*model.Resource, error) {
	q := intervalQuery(iv)
	if minCapacity != 0 {
		q.Set("min_capacity", strconv.Itoa(minCapacity))
	}
	if len(equipment) > 0 {
		q.Set("equipment", strings.Join(equipment, ","))
	}

	resp, err := c.httpClient.GET(ctx, "/api/v1/resources/available?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var out []*model.Resource
	if err := decodeData(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}
