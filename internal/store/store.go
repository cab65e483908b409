// Package store defines the persistence interface for the Shelfd server.
package store

import (
	"context"

	"github.com/shelfdapp/shelfd-server/internal/domain"
)

// Placement identifies one media ID sitting on one shelf.
type Placement struct {
	ShelfID string
	MediaID string
}

// Store defines the interface for all persistence operations.
//
// The placement operations (ApplyPlacement, RemovePlacement, MovePlacement)
// are atomic: the shelf's item set and the denormalized ShelfItem record are
// written or removed as one unit, so no reader ever observes an entry without
// its record (or a record without its entry) through these paths.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error

	// Auth sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Shelves. CreateShelf returns ErrAlreadyExists when a default shelf
	// with the same (user_id, media_type, status) already exists; callers
	// resolve the race by re-fetching.
	CreateShelf(ctx context.Context, shelf *domain.Shelf) error
	GetShelf(ctx context.Context, id string) (*domain.Shelf, error)
	UpdateShelf(ctx context.Context, shelf *domain.Shelf) error
	DeleteShelf(ctx context.Context, id string) error
	ListShelves(ctx context.Context, userID string, mediaType domain.MediaType) ([]*domain.Shelf, error)
	FindDefaultShelf(ctx context.Context, userID string, mediaType domain.MediaType, status domain.Status) (*domain.Shelf, error)
	FindDefaultShelfContaining(ctx context.Context, userID string, mediaType domain.MediaType, mediaID string) (*domain.Shelf, error)

	// Placements (atomic dual writes)
	ApplyPlacement(ctx context.Context, shelfID string, item *domain.ShelfItem) error
	RemovePlacement(ctx context.Context, shelfID, mediaID string) error
	MovePlacement(ctx context.Context, fromShelfID, toShelfID string, item *domain.ShelfItem) error

	// Shelf items
	ListShelfItems(ctx context.Context, shelfID string) ([]*domain.ShelfItem, error)
	GetShelfItem(ctx context.Context, shelfID, mediaID string) (*domain.ShelfItem, error)

	// Reconciliation queries and repairs. Unbacked entries are shelf item-set
	// members with no ShelfItem record; orphan items are ShelfItem records
	// whose media ID is no longer in the owning shelf's item set.
	ListUnbackedEntries(ctx context.Context, userID string, mediaType domain.MediaType) ([]Placement, error)
	ListOrphanItems(ctx context.Context, userID string, mediaType domain.MediaType) ([]*domain.ShelfItem, error)
	InsertShelfItem(ctx context.Context, item *domain.ShelfItem) error
	DeleteShelfItem(ctx context.Context, id string) error
}
