package googlebooks

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shelfdapp/shelfd-server/internal/catalog"
	"github.com/shelfdapp/shelfd-server/internal/domain"
	domainerrors "github.com/shelfdapp/shelfd-server/internal/errors"
)

const pageSize = 10

type volume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title      string   `json:"title"`
		Authors    []string `json:"authors"`
		ImageLinks struct {
			Thumbnail string `json:"thumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

// LookupVolume fetches one volume by its Google Books ID.
func (c *Client) LookupVolume(ctx context.Context, volumeID string) (*catalog.Metadata, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	reqURL := c.baseURL + "/volumes/" + url.PathEscape(volumeID)
	if c.apiKey != "" {
		reqURL += "?key=" + url.QueryEscape(c.apiKey)
	}

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
		return nil, domainerrors.NotFoundf("volume %s not found", volumeID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup failed: status %d", resp.StatusCode)
	}

	var vol volume
	if err := json.UnmarshalRead(resp.Body, &vol); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return volumeMetadata(&vol), nil
}

// SearchVolumes searches Google Books. Pages start at 1.
func (c *Client) SearchVolumes(ctx context.Context, query string, page int) ([]*catalog.Metadata, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", fmt.Sprintf("%d", pageSize))
	params.Set("startIndex", fmt.Sprintf("%d", (page-1)*pageSize))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	searchURL := c.baseURL + "/volumes?" + params.Encode()

	c.logger.Debug("searching Google Books", "query", query, "page", page)

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

	var searchResp volumesResponse
	if err := json.UnmarshalRead(resp.Body, &searchResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	results := make([]*catalog.Metadata, 0, len(searchResp.Items))
	for i := range searchResp.Items {
		results = append(results, volumeMetadata(&searchResp.Items[i]))
	}

	c.logger.Debug("Google Books search results", "query", query, "count", len(results))
	return results, nil
}

func volumeMetadata(vol *volume) *catalog.Metadata {
	cover := vol.VolumeInfo.ImageLinks.Thumbnail
	// The API hands out http:// thumbnail links; browsers want https.
	cover = strings.Replace(cover, "http://", "https://", 1)

	return &catalog.Metadata{
		MediaID:    "gb-" + vol.ID,
		MediaType:  domain.MediaTypeBook,
		Title:      vol.VolumeInfo.Title,
		Creator:    strings.Join(vol.VolumeInfo.Authors, ", "),
		CoverImage: cover,
	}
}
