package domain

import "time"

// ShelfItem is the denormalized per-placement record for a media ID on a
// shelf. It carries the display metadata captured at placement time so
// listing a shelf never re-queries the catalog. A ShelfItem exists exactly
// as long as its media ID sits in the owning shelf's item set; the two are
// written and removed together.
type ShelfItem struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ShelfID    string    `json:"shelf_id"`
	MediaID    string    `json:"media_id"`
	MediaType  MediaType `json:"media_type"`
	Title      string    `json:"title"`
	Creator    string    `json:"creator,omitempty"`     // Author, director, etc.
	CoverImage string    `json:"cover_image,omitempty"` // Remote cover URL
	AddedAt    time.Time `json:"added_at"`
}
