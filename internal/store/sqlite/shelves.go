package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shelfdapp/shelfd-server/internal/domain"
	"github.com/shelfdapp/shelfd-server/internal/store"
)

// shelfColumns is the ordered list of columns selected in shelf queries.
// Must match the scan order in scanShelf.
const shelfColumns = `id, created_at, updated_at, user_id, media_type, shelf_type, status, name, description, is_private, has_collaborators`

// scanShelf scans a sql.Row (or sql.Rows via its Scan method) into a domain.Shelf.
func scanShelf(scanner interface{ Scan(dest ...any) error }) (*domain.Shelf, error) {
	var sh domain.Shelf

	var (
		createdAt        string
		updatedAt        string
		status           sql.NullString
		description      sql.NullString
		isPrivate        int
		hasCollaborators int
	)

	err := scanner.Scan(
		&sh.ID,
		&createdAt,
		&updatedAt,
		&sh.UserID,
		&sh.MediaType,
		&sh.ShelfType,
		&status,
		&sh.Name,
		&description,
		&isPrivate,
		&hasCollaborators,
	)
	if err != nil {
		return nil, err
	}

	// Parse timestamps.
	sh.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	sh.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	// Optional fields.
	if status.Valid {
		sh.Status = domain.Status(status.String)
	}
	if description.Valid {
		sh.Description = description.String
	}
	sh.IsPrivate = isPrivate != 0
	sh.HasCollaborators = hasCollaborators != 0

	return &sh, nil
}

// loadShelfItemIDs loads the ordered media IDs for a shelf from shelf_entries.
func (s *Store) loadShelfItemIDs(ctx context.Context, shelfID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT media_id FROM shelf_entries WHERE shelf_id = ? ORDER BY position`, shelfID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mediaIDs []string
	for rows.Next() {
		var mediaID string
		if err := rows.Scan(&mediaID); err != nil {
			return nil, err
		}
		mediaIDs = append(mediaIDs, mediaID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return mediaIDs, nil
}

// CreateShelf inserts a new shelf and its item entries.
// Returns store.ErrAlreadyExists on duplicate ID or when a default shelf
// with the same (user_id, media_type, status) already exists; the partial
// unique index enforces the latter so concurrent get-or-create callers
// cannot both insert.
func (s *Store) CreateShelf(ctx context.Context, shelf *domain.Shelf) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO shelves (
			id, created_at, updated_at, user_id, media_type, shelf_type,
			status, name, description, is_private, has_collaborators
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		shelf.ID,
		formatTime(shelf.CreatedAt),
		formatTime(shelf.UpdatedAt),
		shelf.UserID,
		string(shelf.MediaType),
		string(shelf.ShelfType),
		nullString(string(shelf.Status)),
		shelf.Name,
		nullString(shelf.Description),
		boolToInt(shelf.IsPrivate),
		boolToInt(shelf.HasCollaborators),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return classify(err)
	}

	// Insert shelf_entries for each media ID with position based on index.
	for i, mediaID := range shelf.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO shelf_entries (shelf_id, media_id, position)
			VALUES (?, ?, ?)`,
			shelf.ID, mediaID, i,
		)
		if err != nil {
			return classify(fmt.Errorf("insert shelf_entry %s: %w", mediaID, err))
		}
	}

	return classify(tx.Commit())
}

// GetShelf retrieves a shelf by ID, including its ordered media IDs.
// Returns store.ErrNotFound if the shelf does not exist.
func (s *Store) GetShelf(ctx context.Context, id string) (*domain.Shelf, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shelfColumns+` FROM shelves WHERE id = ?`, id)

	sh, err := scanShelf(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	sh.Items, err = s.loadShelfItemIDs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load shelf item ids: %w", err)
	}

	return sh, nil
}

// UpdateShelf updates a shelf's metadata row. The item set is managed
// through the placement operations, never through this method.
// Returns store.ErrNotFound if the shelf does not exist.
func (s *Store) UpdateShelf(ctx context.Context, shelf *domain.Shelf) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE shelves SET
			updated_at = ?,
			name = ?,
			description = ?,
			is_private = ?,
			has_collaborators = ?
		WHERE id = ?`,
		formatTime(shelf.UpdatedAt),
		shelf.Name,
		nullString(shelf.Description),
		boolToInt(shelf.IsPrivate),
		boolToInt(shelf.HasCollaborators),
		shelf.ID,
	)
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

// DeleteShelf performs a hard delete on a shelf.
// ON DELETE CASCADE removes its entries and item records.
// Returns store.ErrNotFound if the shelf does not exist.
func (s *Store) DeleteShelf(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM shelves WHERE id = ?`, id)
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

// ListShelves returns all shelves for a user and media type, defaults
// before custom shelves, oldest first within each group. Items are loaded
// for each shelf.
func (s *Store) ListShelves(ctx context.Context, userID string, mediaType domain.MediaType) ([]*domain.Shelf, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+shelfColumns+` FROM shelves
		 WHERE user_id = ? AND media_type = ?
		 ORDER BY shelf_type = 'custom', created_at`,
		userID, string(mediaType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shelves []*domain.Shelf
	for rows.Next() {
		sh, err := scanShelf(rows)
		if err != nil {
			return nil, err
		}
		shelves = append(shelves, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, sh := range shelves {
		sh.Items, err = s.loadShelfItemIDs(ctx, sh.ID)
		if err != nil {
			return nil, fmt.Errorf("load shelf item ids for %s: %w", sh.ID, err)
		}
	}

	return shelves, nil
}

// FindDefaultShelf looks up the default shelf for (user, media type, status).
// Returns store.ErrNotFound if it has not been created yet.
func (s *Store) FindDefaultShelf(ctx context.Context, userID string, mediaType domain.MediaType, status domain.Status) (*domain.Shelf, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shelfColumns+` FROM shelves
		 WHERE user_id = ? AND media_type = ? AND status = ? AND shelf_type = 'default'`,
		userID, string(mediaType), string(status))

	sh, err := scanShelf(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	sh.Items, err = s.loadShelfItemIDs(ctx, sh.ID)
	if err != nil {
		return nil, fmt.Errorf("load shelf item ids: %w", err)
	}

	return sh, nil
}

// FindDefaultShelfContaining locates the default shelf of the given media
// type holding mediaID for the user. At most one can match while the
// placement invariant holds.
// Returns store.ErrNotFound if the item is not on any default shelf.
func (s *Store) FindDefaultShelfContaining(ctx context.Context, userID string, mediaType domain.MediaType, mediaID string) (*domain.Shelf, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shelfColumns+` FROM shelves
		 WHERE user_id = ? AND media_type = ? AND shelf_type = 'default'
		   AND id IN (SELECT shelf_id FROM shelf_entries WHERE media_id = ?)`,
		userID, string(mediaType), mediaID)

	sh, err := scanShelf(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	sh.Items, err = s.loadShelfItemIDs(ctx, sh.ID)
	if err != nil {
		return nil, fmt.Errorf("load shelf item ids: %w", err)
	}

	return sh, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
