// Package tmdb provides access to The Movie Database API for movie and TV
// show metadata.
package tmdb

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const imageBaseURL = "https://image.tmdb.org/t/p/w500"

// Client queries the TMDB v3 API.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
	baseURL     string
	apiKey      string
}

// NewClient creates a new TMDB client using v3 API key auth.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		// TMDB allows roughly 50 req/s; we stay far below it.
		rateLimiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 10),
		logger:      logger,
		baseURL:     "https://api.themoviedb.org/3",
		apiKey:      apiKey,
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// wait blocks until the rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}
