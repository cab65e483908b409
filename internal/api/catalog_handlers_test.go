package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfdapp/shelfd-server/internal/catalog"
	"github.com/shelfdapp/shelfd-server/internal/domain"
	domainerrors "github.com/shelfdapp/shelfd-server/internal/errors"
)

// fakeGateway serves canned catalog metadata for handler tests.
type fakeGateway struct {
	items map[string]*catalog.Metadata
}

func (f *fakeGateway) Lookup(_ context.Context, mediaType domain.MediaType, externalID string) (*catalog.Metadata, error) {
	if mediaType == domain.MediaTypeArticle {
		return nil, domainerrors.Validation("articles have no catalog; supply metadata directly")
	}
	meta, ok := f.items[externalID]
	if !ok {
		return nil, domainerrors.NotFoundf("no catalog entry for %s", externalID)
	}
	return meta, nil
}

func (f *fakeGateway) Search(_ context.Context, mediaType domain.MediaType, query string, page int) ([]*catalog.Metadata, error) {
	if mediaType == domain.MediaTypeArticle {
		return nil, domainerrors.Validation("articles have no catalog; supply metadata directly")
	}
	var results []*catalog.Metadata
	for _, meta := range f.items {
		if meta.MediaType == mediaType {
			results = append(results, meta)
		}
	}
	return results, nil
}

func testGateway() *fakeGateway {
	return &fakeGateway{
		items: map[string]*catalog.Metadata{
			"gb-dune": {
				MediaID:    "gb-dune",
				MediaType:  domain.MediaTypeBook,
				Title:      "Dune",
				Creator:    "Frank Herbert",
				CoverImage: "https://covers.example.com/dune.jpg",
			},
		},
	}
}

func TestSearchCatalog(t *testing.T) {
	ts := setupTestServer(t, testGateway())
	token, _ := ts.registerTestUser(t, "reader@example.com")

	resp := ts.api.Get("/api/v1/catalog/book/search?q=dune", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var env testEnvelope[SearchCatalogResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	require.Len(t, env.Data.Results, 1)
	assert.Equal(t, "gb-dune", env.Data.Results[0].MediaID)
	assert.Equal(t, "Frank Herbert", env.Data.Results[0].Creator)
}

func TestSearchCatalog_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t, testGateway())

	resp := ts.api.Get("/api/v1/catalog/book/search?q=dune")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestSearchCatalog_Article(t *testing.T) {
	ts := setupTestServer(t, testGateway())
	token, _ := ts.registerTestUser(t, "reader@example.com")

	resp := ts.api.Get("/api/v1/catalog/article/search?q=essay", bearer(token))
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestLookupCatalogItem(t *testing.T) {
	ts := setupTestServer(t, testGateway())
	token, _ := ts.registerTestUser(t, "reader@example.com")

	resp := ts.api.Get("/api/v1/catalog/book/items/gb-dune", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var env testEnvelope[CatalogItemResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.Equal(t, "Dune", env.Data.Title)
	assert.Equal(t, "book", env.Data.MediaType)
}

func TestLookupCatalogItem_NotFound(t *testing.T) {
	ts := setupTestServer(t, testGateway())
	token, _ := ts.registerTestUser(t, "reader@example.com")

	resp := ts.api.Get("/api/v1/catalog/book/items/gb-missing", bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())
}

func TestLookupCatalogItem_InvalidMediaType(t *testing.T) {
	ts := setupTestServer(t, testGateway())
	token, _ := ts.registerTestUser(t, "reader@example.com")

	resp := ts.api.Get("/api/v1/catalog/podcast/items/x", bearer(token))
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}
