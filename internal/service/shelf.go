package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shelfdapp/shelfd-server/internal/domain"
	domainerrors "github.com/shelfdapp/shelfd-server/internal/errors"
	"github.com/shelfdapp/shelfd-server/internal/id"
	"github.com/shelfdapp/shelfd-server/internal/store"
)

// ShelfService orchestrates shelf operations: default shelf provisioning,
// custom shelves, item placement, and consistency repair.
type ShelfService struct {
	store  store.Store
	logger *slog.Logger
}

// NewShelfService creates a new shelf service.
func NewShelfService(store store.Store, logger *slog.Logger) *ShelfService {
	return &ShelfService{
		store:  store,
		logger: logger,
	}
}

// CreateCustomShelfParams carries the caller-supplied fields for a new
// custom shelf.
type CreateCustomShelfParams struct {
	MediaType   string
	Name        string
	Description string
	IsPrivate   bool
}

// PlaceTarget names the shelf an item should land on: either an explicit
// shelf ID, or a (media type, status) pair resolved to the user's default
// shelf for that status.
type PlaceTarget struct {
	ShelfID   string
	MediaType string
	Status    string
}

// PlacedMedia carries the media identity and display fields for a placement.
type PlacedMedia struct {
	MediaID    string
	MediaType  string
	Title      string
	Creator    string
	CoverImage string
}

// ShelfWithItems pairs a shelf with its expanded item records, in placement
// order. Entries with no stored record get a bare ShelfItem holding only the
// media identity; display fields stay empty and render as null at the API
// boundary.
type ShelfWithItems struct {
	Shelf *domain.Shelf
	Items []*domain.ShelfItem
}

// ReconcileReport summarizes one repair sweep.
type ReconcileReport struct {
	EntriesBackfilled int
	OrphansRemoved    int
}

// EnsureDefaultShelves lazily provisions the full default shelf set for a
// (user, media type) pair. Idempotent: shelves that already exist are
// returned as-is. Safe under concurrent calls; losers of the create race
// re-fetch the winner's row.
func (s *ShelfService) EnsureDefaultShelves(ctx context.Context, userID, mediaType string) ([]*domain.Shelf, error) {
	if err := ctx.Err(); err != nil {
		return nil, s.mapStoreErr(err, "ensure default shelves")
	}

	mt, err := domain.ParseMediaType(mediaType)
	if err != nil {
		return nil, err
	}

	defs := domain.DefaultShelfDefs(mt)
	shelves := make([]*domain.Shelf, 0, len(defs))
	for _, def := range defs {
		shelf, err := s.resolveDefault(ctx, userID, mt, def.Status)
		if err != nil {
			return nil, err
		}
		shelves = append(shelves, shelf)
	}
	return shelves, nil
}

// ResolveDefaultShelf returns the default shelf for (user, media type,
// status), creating it if it does not exist yet.
func (s *ShelfService) ResolveDefaultShelf(ctx context.Context, userID, mediaType, status string) (*domain.Shelf, error) {
	if err := ctx.Err(); err != nil {
		return nil, s.mapStoreErr(err, "resolve default shelf")
	}

	mt, err := domain.ParseMediaType(mediaType)
	if err != nil {
		return nil, err
	}
	st, err := domain.ParseStatus(mt, status)
	if err != nil {
		return nil, err
	}

	return s.resolveDefault(ctx, userID, mt, st)
}

// resolveDefault is the get-or-create core. The partial unique index on
// default shelves guarantees at most one row per (user, media type, status);
// a create that loses the race surfaces as ErrAlreadyExists and the winner's
// row is fetched instead.
func (s *ShelfService) resolveDefault(ctx context.Context, userID string, mt domain.MediaType, st domain.Status) (*domain.Shelf, error) {
	shelf, err := s.store.FindDefaultShelf(ctx, userID, mt, st)
	if err == nil {
		return shelf, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, s.mapStoreErr(err, "find default shelf")
	}

	shelfID, err := id.Generate("shelf")
	if err != nil {
		return nil, fmt.Errorf("generate shelf ID: %w", err)
	}

	now := time.Now()
	shelf = &domain.Shelf{
		CreatedAt: now,
		UpdatedAt: now,
		ID:        shelfID,
		UserID:    userID,
		MediaType: mt,
		ShelfType: domain.ShelfTypeDefault,
		Status:    st,
		Name:      domain.DefaultShelfName(mt, st),
		IsPrivate: true,
		Items:     []string{},
	}

	err = s.store.CreateShelf(ctx, shelf)
	if err == nil {
		s.logger.Info("default shelf created",
			"shelf_id", shelfID,
			"user_id", userID,
			"media_type", mt,
			"status", st,
		)
		return shelf, nil
	}
	if errors.Is(err, store.ErrAlreadyExists) {
		// Lost the race; the winner's shelf is authoritative.
		shelf, err = s.store.FindDefaultShelf(ctx, userID, mt, st)
		if err != nil {
			return nil, s.mapStoreErr(err, "refetch default shelf after conflict")
		}
		return shelf, nil
	}
	return nil, s.mapStoreErr(err, "create default shelf")
}

// CreateCustomShelf creates a user-named shelf. Custom shelves carry no
// status and are exempt from the default shelf uniqueness rule; names may
// repeat freely.
func (s *ShelfService) CreateCustomShelf(ctx context.Context, userID string, params CreateCustomShelfParams) (*domain.Shelf, error) {
	if err := ctx.Err(); err != nil {
		return nil, s.mapStoreErr(err, "create custom shelf")
	}

	if params.Name == "" {
		return nil, domainerrors.Validation("shelf name cannot be empty")
	}
	mt, err := domain.ParseMediaType(params.MediaType)
	if err != nil {
		return nil, err
	}

	shelfID, err := id.Generate("shelf")
	if err != nil {
		return nil, fmt.Errorf("generate shelf ID: %w", err)
	}

	now := time.Now()
	shelf := &domain.Shelf{
		CreatedAt:   now,
		UpdatedAt:   now,
		ID:          shelfID,
		UserID:      userID,
		MediaType:   mt,
		ShelfType:   domain.ShelfTypeCustom,
		Status:      domain.StatusNone,
		Name:        params.Name,
		Description: params.Description,
		IsPrivate:   params.IsPrivate,
		Items:       []string{},
	}

	if err := s.store.CreateShelf(ctx, shelf); err != nil {
		return nil, s.mapStoreErr(err, "create custom shelf")
	}

	s.logger.Info("custom shelf created",
		"shelf_id", shelfID,
		"user_id", userID,
		"media_type", mt,
		"name", params.Name,
	)
	return shelf, nil
}

// PlaceItem adds a media item to a shelf. The target is either an explicit
// shelf ID (ownership enforced) or a (media type, status) pair resolved to
// the user's default shelf. The membership entry and the display record are
// written atomically. A default-shelf placement of media already held by a
// different default shelf relocates the item to the target.
func (s *ShelfService) PlaceItem(ctx context.Context, userID string, target PlaceTarget, media PlacedMedia) (*domain.ShelfItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, s.mapStoreErr(err, "place item")
	}

	if media.MediaID == "" {
		return nil, domainerrors.Validation("media ID cannot be empty")
	}
	mt, err := domain.ParseMediaType(media.MediaType)
	if err != nil {
		return nil, err
	}

	shelf, err := s.resolveTarget(ctx, userID, mt, target)
	if err != nil {
		return nil, err
	}

	if shelf.Contains(media.MediaID) {
		return nil, domainerrors.DuplicateItem(
			fmt.Sprintf("media %s is already on shelf %s", media.MediaID, shelf.ID))
	}

	itemID, err := id.Generate("item")
	if err != nil {
		return nil, fmt.Errorf("generate item ID: %w", err)
	}

	item := &domain.ShelfItem{
		ID:         itemID,
		UserID:     userID,
		ShelfID:    shelf.ID,
		MediaID:    media.MediaID,
		MediaType:  mt,
		Title:      media.Title,
		Creator:    media.Creator,
		CoverImage: media.CoverImage,
		AddedAt:    time.Now(),
	}

	// A media ID sits on at most one default shelf per (user, media type).
	// Placing onto a default shelf while another default shelf holds the
	// media relocates it rather than creating a second placement.
	if shelf.IsDefault() {
		current, err := s.store.FindDefaultShelfContaining(ctx, userID, mt, media.MediaID)
		switch {
		case err == nil && current.ID != shelf.ID:
			if err := s.store.MovePlacement(ctx, current.ID, shelf.ID, item); err != nil {
				if errors.Is(err, store.ErrAlreadyExists) {
					return nil, domainerrors.DuplicateItem(
						fmt.Sprintf("media %s is already on shelf %s", media.MediaID, shelf.ID))
				}
				return nil, s.mapStoreErr(err, "relocate placement")
			}
			s.logger.Info("item relocated",
				"user_id", userID,
				"media_id", media.MediaID,
				"media_type", mt,
				"from_shelf", current.ID,
				"to_shelf", shelf.ID,
			)
			return item, nil
		case err == nil:
			// Same shelf under a stale read; the insert below reports the
			// duplicate.
		case !errors.Is(err, store.ErrNotFound):
			return nil, s.mapStoreErr(err, "find shelf holding item")
		}
	}

	if err := s.store.ApplyPlacement(ctx, shelf.ID, item); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.DuplicateItem(
				fmt.Sprintf("media %s is already on shelf %s", media.MediaID, shelf.ID))
		}
		return nil, s.mapStoreErr(err, "apply placement")
	}

	s.logger.Info("item placed",
		"shelf_id", shelf.ID,
		"user_id", userID,
		"media_id", media.MediaID,
		"media_type", mt,
	)
	return item, nil
}

// resolveTarget turns a PlaceTarget into a shelf the user may write to.
func (s *ShelfService) resolveTarget(ctx context.Context, userID string, mt domain.MediaType, target PlaceTarget) (*domain.Shelf, error) {
	if target.ShelfID != "" {
		shelf, err := s.store.GetShelf(ctx, target.ShelfID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, domainerrors.NotFoundf("shelf %s not found", target.ShelfID)
			}
			return nil, s.mapStoreErr(err, "get shelf")
		}
		if shelf.UserID != userID {
			return nil, domainerrors.Forbidden("you do not own this shelf")
		}
		if shelf.MediaType != mt {
			return nil, domainerrors.InvalidMediaTypef(
				"shelf %s holds %s, not %s", shelf.ID, shelf.MediaType, mt)
		}
		return shelf, nil
	}

	st, err := domain.ParseStatus(mt, target.Status)
	if err != nil {
		return nil, err
	}
	return s.resolveDefault(ctx, userID, mt, st)
}

// MoveItem transitions an item between default shelves for a media type.
// Moving to the status it already has succeeds without touching the store.
// The removal from the source and the insert on the destination happen in
// one transaction, so the item is never visible on two default shelves or
// on none.
func (s *ShelfService) MoveItem(ctx context.Context, userID, mediaType, mediaID, newStatus string) error {
	if err := ctx.Err(); err != nil {
		return s.mapStoreErr(err, "move item")
	}

	mt, err := domain.ParseMediaType(mediaType)
	if err != nil {
		return err
	}
	st, err := domain.ParseStatus(mt, newStatus)
	if err != nil {
		return err
	}

	from, err := s.store.FindDefaultShelfContaining(ctx, userID, mt, mediaID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.ItemNotFoundf("media %s is not on any %s shelf", mediaID, mt)
		}
		return s.mapStoreErr(err, "find shelf holding item")
	}

	if from.Status == st {
		return nil
	}

	to, err := s.resolveDefault(ctx, userID, mt, st)
	if err != nil {
		return err
	}

	item := s.carriedItem(ctx, userID, from.ID, to.ID, mediaID, mt)

	if err := s.store.MovePlacement(ctx, from.ID, to.ID, item); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domainerrors.DuplicateItem(
				fmt.Sprintf("media %s is already on shelf %s", mediaID, to.ID))
		}
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.ItemNotFoundf("media %s is not on shelf %s", mediaID, from.ID)
		}
		return s.mapStoreErr(err, "move placement")
	}

	s.logger.Info("item moved",
		"user_id", userID,
		"media_id", mediaID,
		"media_type", mt,
		"from_shelf", from.ID,
		"to_shelf", to.ID,
		"status", st,
	)
	return nil
}

// carriedItem builds the record that follows a moved item, preserving the
// source shelf's display fields when a record exists.
func (s *ShelfService) carriedItem(ctx context.Context, userID, fromShelfID, toShelfID, mediaID string, mt domain.MediaType) *domain.ShelfItem {
	item := &domain.ShelfItem{
		ID:        id.MustGenerate("item"),
		UserID:    userID,
		ShelfID:   toShelfID,
		MediaID:   mediaID,
		MediaType: mt,
		AddedAt:   time.Now(),
	}

	prev, err := s.store.GetShelfItem(ctx, fromShelfID, mediaID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("could not load item record for move",
				"shelf_id", fromShelfID, "media_id", mediaID, "error", err)
		}
		return item
	}

	item.Title = prev.Title
	item.Creator = prev.Creator
	item.CoverImage = prev.CoverImage
	item.AddedAt = prev.AddedAt
	return item
}

// RemoveItem takes a media item off the default shelf currently holding it.
// Placements on custom shelves are left alone; stray display records are
// cleaned up by Reconcile, not here.
func (s *ShelfService) RemoveItem(ctx context.Context, userID, mediaType, mediaID string) error {
	if err := ctx.Err(); err != nil {
		return s.mapStoreErr(err, "remove item")
	}

	mt, err := domain.ParseMediaType(mediaType)
	if err != nil {
		return err
	}

	shelf, err := s.store.FindDefaultShelfContaining(ctx, userID, mt, mediaID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.ItemNotFoundf("media %s is not on any %s shelf", mediaID, mt)
		}
		return s.mapStoreErr(err, "find shelf holding item")
	}

	if err := s.store.RemovePlacement(ctx, shelf.ID, mediaID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.ItemNotFoundf("media %s is not on shelf %s", mediaID, shelf.ID)
		}
		return s.mapStoreErr(err, "remove placement")
	}

	s.logger.Info("item removed",
		"user_id", userID,
		"media_id", mediaID,
		"media_type", mt,
		"shelf_id", shelf.ID,
	)
	return nil
}

// ListShelves returns all of the user's shelves for a media type with item
// records expanded in placement order. A (user, media type) pair that has
// never been touched gets its default shelves provisioned first.
func (s *ShelfService) ListShelves(ctx context.Context, userID, mediaType string) ([]*ShelfWithItems, error) {
	if err := ctx.Err(); err != nil {
		return nil, s.mapStoreErr(err, "list shelves")
	}

	mt, err := domain.ParseMediaType(mediaType)
	if err != nil {
		return nil, err
	}

	shelves, err := s.store.ListShelves(ctx, userID, mt)
	if err != nil {
		return nil, s.mapStoreErr(err, "list shelves")
	}
	if len(shelves) == 0 {
		if _, err := s.EnsureDefaultShelves(ctx, userID, mediaType); err != nil {
			return nil, err
		}
		shelves, err = s.store.ListShelves(ctx, userID, mt)
		if err != nil {
			return nil, s.mapStoreErr(err, "list shelves")
		}
	}

	out := make([]*ShelfWithItems, 0, len(shelves))
	for _, shelf := range shelves {
		items, err := s.expandItems(ctx, shelf)
		if err != nil {
			return nil, err
		}
		out = append(out, &ShelfWithItems{Shelf: shelf, Items: items})
	}
	return out, nil
}

// expandItems resolves a shelf's media IDs into display records. A missing
// record degrades to a bare item with only the media identity set; listing
// never fails because one record is absent.
func (s *ShelfService) expandItems(ctx context.Context, shelf *domain.Shelf) ([]*domain.ShelfItem, error) {
	records, err := s.store.ListShelfItems(ctx, shelf.ID)
	if err != nil {
		return nil, s.mapStoreErr(err, "list shelf items")
	}

	byMedia := make(map[string]*domain.ShelfItem, len(records))
	for _, rec := range records {
		byMedia[rec.MediaID] = rec
	}

	items := make([]*domain.ShelfItem, 0, len(shelf.Items))
	for _, mediaID := range shelf.Items {
		if rec, ok := byMedia[mediaID]; ok {
			items = append(items, rec)
			continue
		}
		items = append(items, &domain.ShelfItem{
			UserID:    shelf.UserID,
			ShelfID:   shelf.ID,
			MediaID:   mediaID,
			MediaType: shelf.MediaType,
		})
	}
	return items, nil
}

// Reconcile repairs the two drift directions between shelf membership and
// display records for one (user, media type) pair: entries with no record
// get a bare record back-filled, and records with no entry are deleted.
// Each repair is logged; the sweep is deterministic and safe to rerun.
func (s *ShelfService) Reconcile(ctx context.Context, userID, mediaType string) (ReconcileReport, error) {
	var report ReconcileReport

	if err := ctx.Err(); err != nil {
		return report, s.mapStoreErr(err, "reconcile")
	}

	mt, err := domain.ParseMediaType(mediaType)
	if err != nil {
		return report, err
	}

	unbacked, err := s.store.ListUnbackedEntries(ctx, userID, mt)
	if err != nil {
		return report, s.mapStoreErr(err, "list unbacked entries")
	}
	for _, p := range unbacked {
		item := &domain.ShelfItem{
			ID:        id.MustGenerate("item"),
			UserID:    userID,
			ShelfID:   p.ShelfID,
			MediaID:   p.MediaID,
			MediaType: mt,
			AddedAt:   time.Now(),
		}
		if err := s.store.InsertShelfItem(ctx, item); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				continue
			}
			return report, s.mapStoreErr(err, "backfill item record")
		}
		report.EntriesBackfilled++
		s.logger.Warn("inconsistent state repaired: entry without item record",
			"user_id", userID,
			"shelf_id", p.ShelfID,
			"media_id", p.MediaID,
		)
	}

	orphans, err := s.store.ListOrphanItems(ctx, userID, mt)
	if err != nil {
		return report, s.mapStoreErr(err, "list orphan items")
	}
	for _, orphan := range orphans {
		if err := s.store.DeleteShelfItem(ctx, orphan.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return report, s.mapStoreErr(err, "delete orphan item record")
		}
		report.OrphansRemoved++
		s.logger.Warn("inconsistent state repaired: item record without entry",
			"user_id", userID,
			"shelf_id", orphan.ShelfID,
			"media_id", orphan.MediaID,
			"item_id", orphan.ID,
		)
	}

	return report, nil
}

// mapStoreErr translates infrastructure failures into the service error
// taxonomy. Context expiry becomes a retryable timeout rather than leaking
// the raw context error to callers.
func (s *ShelfService) mapStoreErr(err error, op string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return domainerrors.StoreTimeout(op + " timed out").WithCause(err)
	case errors.Is(err, store.ErrUnavailable):
		return domainerrors.StoreUnavailable(op + " failed").WithCause(err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
