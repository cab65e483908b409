package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shelfdapp/shelfd-server/internal/domain"
	"github.com/shelfdapp/shelfd-server/internal/store"
)

const shelfItemColumns = `id, user_id, shelf_id, media_id, media_type, title, creator, cover_image, added_at`

// shelfItemColumnsSI is shelfItemColumns qualified for joins aliasing shelf_items as si.
const shelfItemColumnsSI = `si.id, si.user_id, si.shelf_id, si.media_id, si.media_type, si.title, si.creator, si.cover_image, si.added_at`

func scanShelfItem(scanner interface{ Scan(dest ...any) error }) (*domain.ShelfItem, error) {
	var item domain.ShelfItem

	var (
		title      sql.NullString
		creator    sql.NullString
		coverImage sql.NullString
		addedAt    string
	)

	err := scanner.Scan(
		&item.ID,
		&item.UserID,
		&item.ShelfID,
		&item.MediaID,
		&item.MediaType,
		&title,
		&creator,
		&coverImage,
		&addedAt,
	)
	if err != nil {
		return nil, err
	}

	item.AddedAt, err = parseTime(addedAt)
	if err != nil {
		return nil, err
	}

	if title.Valid {
		item.Title = title.String
	}
	if creator.Valid {
		item.Creator = creator.String
	}
	if coverImage.Valid {
		item.CoverImage = coverImage.String
	}

	return &item, nil
}

// appendEntry inserts a shelf_entries row at the end of the shelf's order.
func appendEntry(ctx context.Context, tx *sql.Tx, shelfID, mediaID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO shelf_entries (shelf_id, media_id, position)
		VALUES (?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM shelf_entries WHERE shelf_id = ?))`,
		shelfID, mediaID, shelfID,
	)
	return err
}

func insertItemRecord(ctx context.Context, tx *sql.Tx, item *domain.ShelfItem) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO shelf_items (
			id, user_id, shelf_id, media_id, media_type,
			title, creator, cover_image, added_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.UserID,
		item.ShelfID,
		item.MediaID,
		string(item.MediaType),
		nullString(item.Title),
		nullString(item.Creator),
		nullString(item.CoverImage),
		formatTime(item.AddedAt),
	)
	return err
}

func touchShelf(ctx context.Context, tx *sql.Tx, shelfID string, now string) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE shelves SET updated_at = ? WHERE id = ?`, now, shelfID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ApplyPlacement adds an item to a shelf: the membership entry and the
// denormalized item record land in the same transaction, so a crash can
// never leave one without the other.
// Returns store.ErrAlreadyExists if the shelf already holds the media ID.
func (s *Store) ApplyPlacement(ctx context.Context, shelfID string, item *domain.ShelfItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback()

	if err := appendEntry(ctx, tx, shelfID, item.MediaID); err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return classify(err)
	}

	if err := insertItemRecord(ctx, tx, item); err != nil {
		return classify(fmt.Errorf("insert shelf_item: %w", err))
	}

	if err := touchShelf(ctx, tx, shelfID, formatTime(item.AddedAt)); err != nil {
		return classify(err)
	}

	return classify(tx.Commit())
}

// RemovePlacement removes a media ID from a shelf, deleting the membership
// entry and any item records for that (shelf, media) pair together.
// Returns store.ErrNotFound if the shelf does not hold the media ID.
func (s *Store) RemovePlacement(ctx context.Context, shelfID, mediaID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM shelf_entries WHERE shelf_id = ? AND media_id = ?`,
		shelfID, mediaID)
	if err != nil {
		return classify(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM shelf_items WHERE shelf_id = ? AND media_id = ?`,
		shelfID, mediaID)
	if err != nil {
		return classify(err)
	}

	if err := touchShelf(ctx, tx, shelfID, formatTime(time.Now())); err != nil {
		return classify(err)
	}

	return classify(tx.Commit())
}

// MovePlacement relocates a media ID from one shelf to another in a single
// transaction. The item record is rewritten under the destination shelf so
// observers never see the item on both shelves or on neither.
// Returns store.ErrNotFound if the source shelf does not hold the media ID,
// and store.ErrAlreadyExists if the destination already does.
func (s *Store) MovePlacement(ctx context.Context, fromShelfID, toShelfID string, item *domain.ShelfItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM shelf_entries WHERE shelf_id = ? AND media_id = ?`,
		fromShelfID, item.MediaID)
	if err != nil {
		return classify(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM shelf_items WHERE shelf_id = ? AND media_id = ?`,
		fromShelfID, item.MediaID)
	if err != nil {
		return classify(err)
	}

	if err := appendEntry(ctx, tx, toShelfID, item.MediaID); err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return classify(err)
	}

	if err := insertItemRecord(ctx, tx, item); err != nil {
		return classify(fmt.Errorf("insert shelf_item: %w", err))
	}

	now := formatTime(item.AddedAt)
	if err := touchShelf(ctx, tx, fromShelfID, now); err != nil {
		return classify(err)
	}
	if err := touchShelf(ctx, tx, toShelfID, now); err != nil {
		return classify(err)
	}

	return classify(tx.Commit())
}

// ListShelfItems returns the item records for a shelf in placement order.
// Records without a matching entry row are excluded; ListOrphanItems
// surfaces those for reconciliation.
func (s *Store) ListShelfItems(ctx context.Context, shelfID string) ([]*domain.ShelfItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+shelfItemColumnsSI+`
		FROM shelf_items si
		JOIN shelf_entries se ON se.shelf_id = si.shelf_id AND se.media_id = si.media_id
		WHERE si.shelf_id = ?
		ORDER BY se.position`,
		shelfID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.ShelfItem
	for rows.Next() {
		item, err := scanShelfItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetShelfItem returns the item record for a (shelf, media) pair.
// Returns store.ErrNotFound if no record exists.
func (s *Store) GetShelfItem(ctx context.Context, shelfID, mediaID string) (*domain.ShelfItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shelfItemColumns+` FROM shelf_items WHERE shelf_id = ? AND media_id = ?`,
		shelfID, mediaID)

	item, err := scanShelfItem(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListUnbackedEntries returns (shelf, media) pairs present in shelf_entries
// with no matching item record.
func (s *Store) ListUnbackedEntries(ctx context.Context, userID string, mediaType domain.MediaType) ([]store.Placement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT se.shelf_id, se.media_id
		FROM shelf_entries se
		JOIN shelves sh ON sh.id = se.shelf_id
		LEFT JOIN shelf_items si ON si.shelf_id = se.shelf_id AND si.media_id = se.media_id
		WHERE sh.user_id = ? AND sh.media_type = ? AND si.id IS NULL
		ORDER BY se.shelf_id, se.position`,
		userID, string(mediaType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var placements []store.Placement
	for rows.Next() {
		var p store.Placement
		if err := rows.Scan(&p.ShelfID, &p.MediaID); err != nil {
			return nil, err
		}
		placements = append(placements, p)
	}
	return placements, rows.Err()
}

// ListOrphanItems returns item records whose (shelf, media) pair has no
// matching membership entry.
func (s *Store) ListOrphanItems(ctx context.Context, userID string, mediaType domain.MediaType) ([]*domain.ShelfItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+shelfItemColumnsSI+`
		FROM shelf_items si
		LEFT JOIN shelf_entries se ON se.shelf_id = si.shelf_id AND se.media_id = si.media_id
		WHERE si.user_id = ? AND si.media_type = ? AND se.media_id IS NULL
		ORDER BY si.added_at`,
		userID, string(mediaType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.ShelfItem
	for rows.Next() {
		item, err := scanShelfItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// InsertShelfItem writes a bare item record outside a placement
// transaction. Reconciliation uses it to back-fill entries that lost their
// record.
func (s *Store) InsertShelfItem(ctx context.Context, item *domain.ShelfItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertItemRecord(ctx, tx, item); err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return tx.Commit()
}

// DeleteShelfItem removes a single item record by ID.
// Returns store.ErrNotFound if no record exists.
func (s *Store) DeleteShelfItem(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM shelf_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
