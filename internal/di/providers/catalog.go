package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/shelfdapp/shelfd-server/internal/catalog"
	"github.com/shelfdapp/shelfd-server/internal/catalog/googlebooks"
	"github.com/shelfdapp/shelfd-server/internal/catalog/tmdb"
	"github.com/shelfdapp/shelfd-server/internal/config"
)

// ProvideGoogleBooksClient provides the Google Books volumes client.
func ProvideGoogleBooksClient(i do.Injector) (*googlebooks.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	if cfg.Catalog.GoogleBooksAPIKey == "" {
		log.Info("Google Books API key not configured, using unauthenticated quota")
	}

	return googlebooks.NewClient(cfg.Catalog.GoogleBooksAPIKey, log), nil
}

// ProvideTMDBClient provides the TMDB titles client.
func ProvideTMDBClient(i do.Injector) (*tmdb.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	if cfg.Catalog.TMDBAPIKey == "" {
		log.Warn("TMDB API key not configured, movie and TV lookups will fail")
	}

	return tmdb.NewClient(cfg.Catalog.TMDBAPIKey, log), nil
}

// ProvideCatalogGateway provides the media-type catalog router.
func ProvideCatalogGateway(i do.Injector) (catalog.Gateway, error) {
	books := do.MustInvoke[*googlebooks.Client](i)
	screen := do.MustInvoke[*tmdb.Client](i)

	return catalog.NewRouter(books, screen), nil
}
