package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/shelfdapp/shelfd-server/internal/domain"
	"github.com/shelfdapp/shelfd-server/internal/store"
)

func TestApplyPlacement(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-1")
	insertTestShelf(t, s, testDefaultShelf("shelf-1", "user-1", domain.MediaTypeBook, domain.StatusWantTo))

	item := testShelfItem("item-1", "user-1", "shelf-1", "media-1", domain.MediaTypeBook, "Dune")
	item.Creator = "Frank Herbert"
	item.CoverImage = "https://covers.example.com/dune.jpg"

	if err := s.ApplyPlacement(ctx, "shelf-1", item); err != nil {
		t.Fatalf("ApplyPlacement: %v", err)
	}

	// Entry and record were written together.
	shelf, err := s.GetShelf(ctx, "shelf-1")
	if err != nil {
		t.Fatalf("GetShelf: %v", err)
	}
	if len(shelf.Items) != 1 || shelf.Items[0] != "media-1" {
		t.Fatalf("shelf items: got %v, want [media-1]", shelf.Items)
	}

	got, err := s.GetShelfItem(ctx, "shelf-1", "media-1")
	if err != nil {
		t.Fatalf("GetShelfItem: %v", err)
	}
	if got.Title != "Dune" {
		t.Errorf("Title: got %q, want %q", got.Title, "Dune")
	}
	if got.Creator != "Frank Herbert" {
		t.Errorf("Creator: got %q, want %q", got.Creator, "Frank Herbert")
	}
	if got.CoverImage != item.CoverImage {
		t.Errorf("CoverImage: got %q, want %q", got.CoverImage, item.CoverImage)
	}
	if got.AddedAt.Unix() != item.AddedAt.Unix() {
		t.Errorf("AddedAt: got %v, want %v", got.AddedAt, item.AddedAt)
	}
}

func TestApplyPlacement_Duplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-1")
	insertTestShelf(t, s, testDefaultShelf("shelf-1", "user-1", domain.MediaTypeBook, domain.StatusWantTo))

	item := testShelfItem("item-1", "user-1", "shelf-1", "media-1", domain.MediaTypeBook, "Dune")
	if err := s.ApplyPlacement(ctx, "shelf-1", item); err != nil {
		t.Fatalf("ApplyPlacement: %v", err)
	}

	dup := testShelfItem("item-2", "user-1", "shelf-1", "media-1", domain.MediaTypeBook, "Dune")
	err := s.ApplyPlacement(ctx, "shelf-1", dup)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	// The failed placement must not leave a second item record behind.
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM shelf_items WHERE shelf_id = 'shelf-1'").Scan(&n); err != nil {
		t.Fatalf("count items: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 item record, got %d", n)
	}
}

func TestApplyPlacement_PreservesOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-1")
	insertTestShelf(t, s, testDefaultShelf("shelf-1", "user-1", domain.MediaTypeBook, domain.StatusWantTo))

	for _, mediaID := range []string{"media-a", "media-b", "media-c"} {
		item := testShelfItem("item-"+mediaID, "user-1", "shelf-1", mediaID, domain.MediaTypeBook, "Book "+mediaID)
		if err := s.ApplyPlacement(ctx, "shelf-1", item); err != nil {
			t.Fatalf("ApplyPlacement %s: %v", mediaID, err)
		}
	}

	shelf, err := s.GetShelf(ctx, "shelf-1")
	if err != nil {
		t.Fatalf("GetShelf: %v", err)
	}
	want := []string{"media-a", "media-b", "media-c"}
	if len(shelf.Items) != len(want) {
		t.Fatalf("got %d items, want %d", len(shelf.Items), len(want))
	}
	for i := range want {
		if shelf.Items[i] != want[i] {
			t.Errorf("Items[%d]: got %q, want %q", i, shelf.Items[i], want[i])
		}
	}

	items, err := s.ListShelfItems(ctx, "shelf-1")
	if err != nil {
		t.Fatalf("ListShelfItems: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d item records, want 3", len(items))
	}
	for i := range want {
		if items[i].MediaID != want[i] {
			t.Errorf("items[%d].MediaID: got %q, want %q", i, items[i].MediaID, want[i])
		}
	}
}

func TestRemovePlacement(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-1")
	insertTestShelf(t, s, testDefaultShelf("shelf-1", "user-1", domain.MediaTypeBook, domain.StatusWantTo))

	item := testShelfItem("item-1", "user-1", "shelf-1", "media-1", domain.MediaTypeBook, "Dune")
	if err := s.ApplyPlacement(ctx, "shelf-1", item); err != nil {
		t.Fatalf("ApplyPlacement: %v", err)
	}

	if err := s.RemovePlacement(ctx, "shelf-1", "media-1"); err != nil {
		t.Fatalf("RemovePlacement: %v", err)
	}

	shelf, err := s.GetShelf(ctx, "shelf-1")
	if err != nil {
		t.Fatalf("GetShelf: %v", err)
	}
	if len(shelf.Items) != 0 {
		t.Errorf("shelf items: got %v, want empty", shelf.Items)
	}

	_, err = s.GetShelfItem(ctx, "shelf-1", "media-1")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for item record, got %v", err)
	}
}

func TestRemovePlacement_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-1")
	insertTestShelf(t, s, testDefaultShelf("shelf-1", "user-1", domain.MediaTypeBook, domain.StatusWantTo))

	err := s.RemovePlacement(ctx, "shelf-1", "media-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMovePlacement(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-1")
	insertTestShelf(t, s, testDefaultShelf("shelf-want", "user-1", domain.MediaTypeBook, domain.StatusWantTo))
	insertTestShelf(t, s, testDefaultShelf("shelf-cur", "user-1", domain.MediaTypeBook, domain.StatusCurrent))

	item := testShelfItem("item-1", "user-1", "shelf-want", "media-1", domain.MediaTypeBook, "Dune")
	if err := s.ApplyPlacement(ctx, "shelf-want", item); err != nil {
		t.Fatalf("ApplyPlacement: %v", err)
	}

	moved := testShelfItem("item-2", "user-1", "shelf-cur", "media-1", domain.MediaTypeBook, "Dune")
	if err := s.MovePlacement(ctx, "shelf-want", "shelf-cur", moved); err != nil {
		t.Fatalf("MovePlacement: %v", err)
	}

	from, err := s.GetShelf(ctx, "shelf-want")
	if err != nil {
		t.Fatalf("GetShelf from: %v", err)
	}
	if len(from.Items) != 0 {
		t.Errorf("source shelf still holds %v", from.Items)
	}

	to, err := s.GetShelf(ctx, "shelf-cur")
	if err != nil {
		t.Fatalf("GetShelf to: %v", err)
	}
	if len(to.Items) != 1 || to.Items[0] != "media-1" {
		t.Fatalf("destination items: got %v, want [media-1]", to.Items)
	}

	// The item record follows the move.
	got, err := s.GetShelfItem(ctx, "shelf-cur", "media-1")
	if err != nil {
		t.Fatalf("GetShelfItem: %v", err)
	}
	if got.ID != "item-2" {
		t.Errorf("record ID: got %q, want item-2", got.ID)
	}
	if _, err := s.GetShelfItem(ctx, "shelf-want", "media-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on source record, got %v", err)
	}
}

func TestMovePlacement_SourceMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-1")
	insertTestShelf(t, s, testDefaultShelf("shelf-want", "user-1", domain.MediaTypeBook, domain.StatusWantTo))
	insertTestShelf(t, s, testDefaultShelf("shelf-cur", "user-1", domain.MediaTypeBook, domain.StatusCurrent))

	item := testShelfItem("item-1", "user-1", "shelf-cur", "media-1", domain.MediaTypeBook, "Dune")
	err := s.MovePlacement(ctx, "shelf-want", "shelf-cur", item)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMovePlacement_DestinationConflictRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-1")
	insertTestShelf(t, s, testDefaultShelf("shelf-want", "user-1", domain.MediaTypeBook, domain.StatusWantTo))
	insertTestShelf(t, s, testDefaultShelf("shelf-cur", "user-1", domain.MediaTypeBook, domain.StatusCurrent))

	src := testShelfItem("item-1", "user-1", "shelf-want", "media-1", domain.MediaTypeBook, "Dune")
	if err := s.ApplyPlacement(ctx, "shelf-want", src); err != nil {
		t.Fatalf("ApplyPlacement src: %v", err)
	}
	dst := testShelfItem("item-2", "user-1", "shelf-cur", "media-1", domain.MediaTypeBook, "Dune")
	if err := s.ApplyPlacement(ctx, "shelf-cur", dst); err != nil {
		t.Fatalf("ApplyPlacement dst: %v", err)
	}

	moved := testShelfItem("item-3", "user-1", "shelf-cur", "media-1", domain.MediaTypeBook, "Dune")
	err := s.MovePlacement(ctx, "shelf-want", "shelf-cur", moved)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	// The whole transaction rolled back, so the source placement survives.
	from, err := s.GetShelf(ctx, "shelf-want")
	if err != nil {
		t.Fatalf("GetShelf: %v", err)
	}
	if len(from.Items) != 1 || from.Items[0] != "media-1" {
		t.Fatalf("source items after rollback: got %v, want [media-1]", from.Items)
	}
}

func TestListUnbackedEntries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-1")
	insertTestShelf(t, s, testDefaultShelf("shelf-1", "user-1", domain.MediaTypeBook, domain.StatusWantTo))

	item := testShelfItem("item-1", "user-1", "shelf-1", "media-1", domain.MediaTypeBook, "Dune")
	if err := s.ApplyPlacement(ctx, "shelf-1", item); err != nil {
		t.Fatalf("ApplyPlacement: %v", err)
	}

	// Simulate a legacy write path that added an entry without a record.
	if _, err := s.db.Exec(
		`INSERT INTO shelf_entries (shelf_id, media_id, position) VALUES ('shelf-1', 'media-bare', 5)`); err != nil {
		t.Fatalf("insert bare entry: %v", err)
	}

	got, err := s.ListUnbackedEntries(ctx, "user-1", domain.MediaTypeBook)
	if err != nil {
		t.Fatalf("ListUnbackedEntries: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d unbacked entries, want 1", len(got))
	}
	if got[0].ShelfID != "shelf-1" || got[0].MediaID != "media-bare" {
		t.Errorf("got %+v, want shelf-1/media-bare", got[0])
	}
}

func TestListOrphanItems(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-1")
	insertTestShelf(t, s, testDefaultShelf("shelf-1", "user-1", domain.MediaTypeBook, domain.StatusWantTo))

	item := testShelfItem("item-1", "user-1", "shelf-1", "media-1", domain.MediaTypeBook, "Dune")
	if err := s.ApplyPlacement(ctx, "shelf-1", item); err != nil {
		t.Fatalf("ApplyPlacement: %v", err)
	}

	orphan := testShelfItem("item-orphan", "user-1", "shelf-1", "media-2", domain.MediaTypeBook, "Loose Record")
	if err := s.InsertShelfItem(ctx, orphan); err != nil {
		t.Fatalf("InsertShelfItem: %v", err)
	}

	got, err := s.ListOrphanItems(ctx, "user-1", domain.MediaTypeBook)
	if err != nil {
		t.Fatalf("ListOrphanItems: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d orphans, want 1", len(got))
	}
	if got[0].ID != "item-orphan" {
		t.Errorf("got %q, want item-orphan", got[0].ID)
	}

	if err := s.DeleteShelfItem(ctx, "item-orphan"); err != nil {
		t.Fatalf("DeleteShelfItem: %v", err)
	}
	got, err = s.ListOrphanItems(ctx, "user-1", domain.MediaTypeBook)
	if err != nil {
		t.Fatalf("ListOrphanItems after delete: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d orphans after delete, want 0", len(got))
	}
}

func TestDeleteShelfItem_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.DeleteShelfItem(ctx, "nonexistent")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
