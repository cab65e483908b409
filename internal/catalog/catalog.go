// Package catalog resolves external media metadata for shelf placements.
// Books come from Google Books, movies and TV shows from TMDB; articles
// carry caller-supplied metadata and never hit a provider.
package catalog

import (
	"context"

	"github.com/shelfdapp/shelfd-server/internal/domain"
	domainerrors "github.com/shelfdapp/shelfd-server/internal/errors"
)

// Metadata is the provider-neutral display record for one media item.
type Metadata struct {
	MediaID    string           `json:"media_id"`
	MediaType  domain.MediaType `json:"media_type"`
	Title      string           `json:"title"`
	Creator    string           `json:"creator,omitempty"`
	CoverImage string           `json:"cover_image,omitempty"`
}

// Gateway looks up and searches external media catalogs.
type Gateway interface {
	// Lookup fetches metadata for a known external ID.
	Lookup(ctx context.Context, mediaType domain.MediaType, externalID string) (*Metadata, error)
	// Search queries the provider for a media type. Pages start at 1.
	Search(ctx context.Context, mediaType domain.MediaType, query string, page int) ([]*Metadata, error)
}

// BookProvider and ScreenProvider are the per-provider halves of the Gateway.
type BookProvider interface {
	LookupVolume(ctx context.Context, volumeID string) (*Metadata, error)
	SearchVolumes(ctx context.Context, query string, page int) ([]*Metadata, error)
}

type ScreenProvider interface {
	LookupTitle(ctx context.Context, mediaType domain.MediaType, titleID string) (*Metadata, error)
	SearchTitles(ctx context.Context, mediaType domain.MediaType, query string, page int) ([]*Metadata, error)
}

// Router dispatches gateway calls to the provider that owns each media type.
type Router struct {
	books  BookProvider
	screen ScreenProvider
}

// NewRouter creates a gateway over the given providers.
func NewRouter(books BookProvider, screen ScreenProvider) *Router {
	return &Router{books: books, screen: screen}
}

// Lookup implements Gateway.
func (r *Router) Lookup(ctx context.Context, mediaType domain.MediaType, externalID string) (*Metadata, error) {
	switch mediaType {
	case domain.MediaTypeBook:
		return r.books.LookupVolume(ctx, externalID)
	case domain.MediaTypeMovie, domain.MediaTypeTVShow:
		return r.screen.LookupTitle(ctx, mediaType, externalID)
	case domain.MediaTypeArticle:
		return nil, domainerrors.Validation("articles have no catalog; supply metadata directly")
	default:
		return nil, domainerrors.InvalidMediaTypef("unrecognized media type %q", mediaType)
	}
}

// Search implements Gateway.
func (r *Router) Search(ctx context.Context, mediaType domain.MediaType, query string, page int) ([]*Metadata, error) {
	if page < 1 {
		page = 1
	}
	switch mediaType {
	case domain.MediaTypeBook:
		return r.books.SearchVolumes(ctx, query, page)
	case domain.MediaTypeMovie, domain.MediaTypeTVShow:
		return r.screen.SearchTitles(ctx, mediaType, query, page)
	case domain.MediaTypeArticle:
		return nil, domainerrors.Validation("articles have no catalog; supply metadata directly")
	default:
		return nil, domainerrors.InvalidMediaTypef("unrecognized media type %q", mediaType)
	}
}
