package client

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"roombook/pkg/model"
)

type ResourceClient struct {
	httpClient *HttpClient
}

func (c *ResourceClient) Register(ctx context.Context, input model.ResourceInput) (*model.Resource, error) {
	resp, err := c.httpClient.POST(ctx, "/api/v1/resources", input, nil)
	if err != nil {
		return nil, err
	}
	var r model.Resource
	if err := decodeData(resp, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *ResourceClient) Get(ctx context.Context, id string) (*model.Resource, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/resources/id/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var r model.Resource
	if err := decodeData(resp, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *ResourceClient) List(ctx context.Context) ([]*model.Resource, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/resources", nil)
	if err != nil {
		return nil, err
	}
	var out []*model.Resource
	if err := decodeData(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ResourceClient) Match(ctx context.Context, minCapacity int, equipment []string) ([]*model.Resource, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/resources/match?"+matchQuery(minCapacity, equipment).Encode(), nil)
	if err != nil {
		return nil, err
	}
	var out []*model.Resource
	if err := decodeData(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func matchQuery(minCapacity int, equipment []string) url.Values {
	q := url.Values{}
	if minCapacity != 0 {
		q.Set("min_capacity", strconv.Itoa(minCapacity))
	}
	if len(equipment) > 0 {
		q.Set("equipment", strings.Join(equipment, ","))
	}
	return q
}
