package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	models "github.com/chrisdamba/skybooker/internal"
)

// InventoryClient searches itineraries on a live inventory/pricing service.
type InventoryClient struct {
	httpClient HTTPClient
	baseURL    string
}

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

type Option func(*InventoryClient)

type SearchResponse struct {
	Itineraries []models.FlightItinerary `json:"itineraries"`
}

var (
	ErrBadStatusCode error = errors.New("invalid status code from inventory service")
	ErrNoBaseURL     error = errors.New("inventory base url is empty")
)

func WithBaseURL(url string) Option {
	return func(c *InventoryClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *InventoryClient) {
		c.httpClient = httpClient
	}
}

func NewInventoryClient(opts ...Option) *InventoryClient {
	client := &InventoryClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

func (c *InventoryClient) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.FlightItinerary, error) {
	if c.baseURL == "" {
		return nil, ErrNoBaseURL
	}

	jsonBytes, err := json.Marshal(criteria)
	if err != nil {
		return nil, fmt.Errorf("encoding criteria: %w", err)
	}

	u := fmt.Sprintf("%s/%s", c.baseURL, "itineraries/search")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewBuffer(jsonBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling inventory service: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrBadStatusCode, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var searchResponse SearchResponse
	if err := json.Unmarshal(body, &searchResponse); err != nil {
		return nil, fmt.Errorf("decoding itineraries: %w", err)
	}
	return searchResponse.Itineraries, nil
}
