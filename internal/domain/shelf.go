package domain

import (
	"slices"
	"time"
)

// ShelfType distinguishes auto-provisioned status buckets from user-named
// shelves.
type ShelfType string

const (
	// ShelfTypeDefault marks a status-bucket shelf provisioned per user per
	// media type (want-to/current/finished/did-not-finish/saved).
	ShelfTypeDefault ShelfType = "default"
	// ShelfTypeCustom marks a user-named shelf with no status semantics.
	ShelfTypeCustom ShelfType = "custom"
)

// Shelf is one bucket of media for one user. Default shelves are resolved
// by (user, media type, status); custom shelves only by ID. A media ID may
// sit on at most one default shelf per (user, media type) at a time, while
// custom placement is unconstrained and independent of default placement.
type Shelf struct {
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	MediaType        MediaType `json:"media_type"`
	ShelfType        ShelfType `json:"shelf_type"`
	Status           Status    `json:"status,omitempty"` // Default shelves only
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`       // Custom shelves only
	IsPrivate        bool      `json:"is_private,omitempty"`        // Custom shelves only
	HasCollaborators bool      `json:"has_collaborators,omitempty"` // Custom shelves only
	Items            []string  `json:"items"`                       // Media IDs placed on this shelf
}

// IsDefault reports whether this is an auto-provisioned status shelf.
func (s *Shelf) IsDefault() bool {
	return s.ShelfType == ShelfTypeDefault
}

// Contains checks if a media ID is placed on this shelf.
func (s *Shelf) Contains(mediaID string) bool {
	return slices.Contains(s.Items, mediaID)
}
