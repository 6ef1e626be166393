package client

// Client groups the typed clients of one roombook deployment.
type Client struct {
	Http      *HttpClient
	Resources *ResourceClient
	Bookings  *BookingClient
	Search    *SearchClient
}

func NewClient(baseURL string) *Client {
	httpClient := NewHttpClient(baseURL)
	return &Client{
		Http:      httpClient,
		Resources: &ResourceClient{httpClient: httpClient},
		Bookings:  &BookingClient{httpClient: httpClient},
		Search:    &SearchClient{httpClient: httpClient},
	}
}
