package tmdb

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shelfdapp/shelfd-server/internal/catalog"
	"github.com/shelfdapp/shelfd-server/internal/domain"
	domainerrors "github.com/shelfdapp/shelfd-server/internal/errors"
)

// title covers both movie and TV payloads; movies use title/release_date,
// TV shows use name/first_air_date.
type title struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Name         string `json:"name"`
	PosterPath   string `json:"poster_path"`
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
}

type searchResponse struct {
	Page    int     `json:"page"`
	Results []title `json:"results"`
}

// LookupTitle fetches one movie or TV show by its TMDB ID.
func (c *Client) LookupTitle(ctx context.Context, mediaType domain.MediaType, titleID string) (*catalog.Metadata, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	path, err := resourcePath(mediaType)
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/%s/%s?api_key=%s",
		c.baseURL, path, url.PathEscape(titleID), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domainerrors.NotFoundf("%s %s not found", mediaType, titleID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup failed: status %d", resp.StatusCode)
	}

	var t title
	if err := json.UnmarshalRead(resp.Body, &t); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return titleMetadata(&t, mediaType), nil
}

// SearchTitles searches TMDB for movies or TV shows. Pages start at 1.
func (c *Client) SearchTitles(ctx context.Context, mediaType domain.MediaType, query string, page int) ([]*catalog.Metadata, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	path, err := resourcePath(mediaType)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))

	searchURL := fmt.Sprintf("%s/search/%s?%s", c.baseURL, path, params.Encode())

	c.logger.Debug("searching TMDB", "media_type", mediaType, "query", query, "page", page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.UnmarshalRead(resp.Body, &searchResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	results := make([]*catalog.Metadata, 0, len(searchResp.Results))
	for i := range searchResp.Results {
		results = append(results, titleMetadata(&searchResp.Results[i], mediaType))
	}

	c.logger.Debug("TMDB search results", "query", query, "count", len(results))
	return results, nil
}

func resourcePath(mediaType domain.MediaType) (string, error) {
	switch mediaType {
	case domain.MediaTypeMovie:
		return "movie", nil
	case domain.MediaTypeTVShow:
		return "tv", nil
	default:
		return "", domainerrors.InvalidMediaTypef("TMDB does not serve media type %q", mediaType)
	}
}

func titleMetadata(t *title, mediaType domain.MediaType) *catalog.Metadata {
	name := t.Title
	if name == "" {
		name = t.Name
	}

	cover := ""
	if t.PosterPath != "" {
		cover = imageBaseURL + t.PosterPath
	}

	return &catalog.Metadata{
		MediaID:    "tmdb-" + strconv.Itoa(t.ID),
		MediaType:  mediaType,
		Title:      name,
		CoverImage: cover,
	}
}
