package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfdapp/shelfd-server/internal/catalog"
	"github.com/shelfdapp/shelfd-server/internal/domain"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/{mediaType}/search",
		Summary:     "Search catalog",
		Description: "Searches the external metadata catalog for a media type",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchCatalog)

	huma.Register(s.api, huma.Operation{
		OperationID: "lookupCatalogItem",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/{mediaType}/items/{externalId}",
		Summary:     "Look up catalog item",
		Description: "Fetches metadata for one known external ID",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLookupCatalogItem)
}

// === DTOs ===

// CatalogItemResponse contains provider-neutral media metadata.
type CatalogItemResponse struct {
	MediaID    string `json:"media_id" doc:"External media ID usable in shelf placements"`
	MediaType  string `json:"media_type" doc:"Media type"`
	Title      string `json:"title" doc:"Display title"`
	Creator    string `json:"creator,omitempty" doc:"Author or director"`
	CoverImage string `json:"cover_image,omitempty" doc:"Cover image URL"`
}

// SearchCatalogInput contains catalog search parameters.
type SearchCatalogInput struct {
	MediaType string `path:"mediaType" doc:"Media type (book, movie, tv_show)"`
	Query     string `query:"q" required:"true" doc:"Search query"`
	Page      int    `query:"page" default:"1" minimum:"1" doc:"Result page, starting at 1"`
}

// SearchCatalogResponse contains catalog search results.
type SearchCatalogResponse struct {
	Results []CatalogItemResponse `json:"results" doc:"Matching catalog items"`
}

// SearchCatalogOutput wraps the search response for Huma.
type SearchCatalogOutput struct {
	Body SearchCatalogResponse
}

// LookupCatalogItemInput contains catalog lookup parameters.
type LookupCatalogItemInput struct {
	MediaType  string `path:"mediaType" doc:"Media type (book, movie, tv_show)"`
	ExternalID string `path:"externalId" doc:"Provider-specific ID"`
}

// CatalogItemOutput wraps a single catalog item for Huma.
type CatalogItemOutput struct {
	Body CatalogItemResponse
}

// === Handlers ===

func (s *Server) handleSearchCatalog(ctx context.Context, input *SearchCatalogInput) (*SearchCatalogOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	mt, err := domain.ParseMediaType(input.MediaType)
	if err != nil {
		return nil, err
	}

	results, err := s.services.Catalog.Search(ctx, mt, input.Query, input.Page)
	if err != nil {
		return nil, err
	}

	resp := make([]CatalogItemResponse, len(results))
	for i, meta := range results {
		resp[i] = mapCatalogItem(meta)
	}

	return &SearchCatalogOutput{Body: SearchCatalogResponse{Results: resp}}, nil
}

func (s *Server) handleLookupCatalogItem(ctx context.Context, input *LookupCatalogItemInput) (*CatalogItemOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	mt, err := domain.ParseMediaType(input.MediaType)
	if err != nil {
		return nil, err
	}

	meta, err := s.services.Catalog.Lookup(ctx, mt, input.ExternalID)
	if err != nil {
		return nil, err
	}

	return &CatalogItemOutput{Body: mapCatalogItem(meta)}, nil
}

func mapCatalogItem(meta *catalog.Metadata) CatalogItemResponse {
	return CatalogItemResponse{
		MediaID:    meta.MediaID,
		MediaType:  string(meta.MediaType),
		Title:      meta.Title,
		Creator:    meta.Creator,
		CoverImage: meta.CoverImage,
	}
}
