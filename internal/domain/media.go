package domain

import (
	"github.com/shelfdapp/shelfd-server/internal/errors"
)

// MediaType partitions shelf namespaces. Each user has an independent set
// of shelves per media type.
type MediaType string

const (
	MediaTypeBook    MediaType = "book"
	MediaTypeMovie   MediaType = "movie"
	MediaTypeTVShow  MediaType = "tv_show"
	MediaTypeArticle MediaType = "article"
)

// MediaTypes lists all recognized media types in canonical order.
var MediaTypes = []MediaType{MediaTypeBook, MediaTypeMovie, MediaTypeTVShow, MediaTypeArticle}

// ParseMediaType converts a free-text token into a MediaType.
// Unrecognized tokens return an INVALID_MEDIA_TYPE error; enum coercion
// happens here at the boundary, nowhere else.
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(s) {
	case MediaTypeBook, MediaTypeMovie, MediaTypeTVShow, MediaTypeArticle:
		return MediaType(s), nil
	default:
		return "", errors.InvalidMediaTypef("unrecognized media type %q", s)
	}
}

// Status is the progress bucket of a default shelf. Statuses are only
// meaningful for default shelves; custom shelves carry an empty status.
type Status string

const (
	StatusWantTo       Status = "want_to"
	StatusCurrent      Status = "current"
	StatusFinished     Status = "finished"
	StatusDidNotFinish Status = "did_not_finish"
	StatusSaved        Status = "saved" // Articles only

	// StatusNone is the neutral placeholder carried by custom shelves.
	// It never participates in default-shelf resolution.
	StatusNone Status = ""
)

// ShelfDef is one canonical (status, display name) pair for a media type's
// default shelf set.
type ShelfDef struct {
	Status Status
	Name   string
}

// DefaultShelfDefs returns the canonical default shelf definitions for a
// media type, in display order. Books read, movies and TV shows watch;
// articles get the reduced saved/finished pair.
func DefaultShelfDefs(mediaType MediaType) []ShelfDef {
	switch mediaType {
	case MediaTypeBook:
		return []ShelfDef{
			{StatusWantTo, "Want to Read"},
			{StatusCurrent, "Currently Reading"},
			{StatusFinished, "Finished"},
			{StatusDidNotFinish, "Did Not Finish"},
		}
	case MediaTypeMovie, MediaTypeTVShow:
		return []ShelfDef{
			{StatusWantTo, "Want to Watch"},
			{StatusCurrent, "Currently Watching"},
			{StatusFinished, "Finished"},
			{StatusDidNotFinish, "Did Not Finish"},
		}
	case MediaTypeArticle:
		return []ShelfDef{
			{StatusSaved, "Saved"},
			{StatusFinished, "Finished"},
		}
	default:
		return nil
	}
}

// ParseStatus converts a free-text status token into a Status, validated
// against the recognized statuses for the given media type.
func ParseStatus(mediaType MediaType, s string) (Status, error) {
	for _, def := range DefaultShelfDefs(mediaType) {
		if def.Status == Status(s) {
			return def.Status, nil
		}
	}
	return "", errors.InvalidStatusf("unrecognized status %q for media type %q", s, mediaType)
}

// DefaultShelfName returns the canonical display name for a default shelf.
// The status must already be validated for the media type.
func DefaultShelfName(mediaType MediaType, status Status) string {
	for _, def := range DefaultShelfDefs(mediaType) {
		if def.Status == status {
			return def.Name
		}
	}
	return ""
}
