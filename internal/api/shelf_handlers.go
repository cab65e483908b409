package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfdapp/shelfd-server/internal/domain"
	"github.com/shelfdapp/shelfd-server/internal/service"
)

func (s *Server) registerShelfRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listShelves",
		Method:      http.MethodGet,
		Path:        "/api/v1/shelves/{mediaType}",
		Summary:     "List shelves",
		Description: "Returns all shelves of one media type for the current user, bootstrapping defaults on first use",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListShelves)

	huma.Register(s.api, huma.Operation{
		OperationID: "createShelf",
		Method:      http.MethodPost,
		Path:        "/api/v1/shelves",
		Summary:     "Create custom shelf",
		Description: "Creates a new custom shelf for organizing media",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "ensureDefaultShelves",
		Method:      http.MethodPost,
		Path:        "/api/v1/shelves/{mediaType}/defaults",
		Summary:     "Ensure default shelves",
		Description: "Provisions the default status shelves for a media type; idempotent",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleEnsureDefaults)

	huma.Register(s.api, huma.Operation{
		OperationID: "placeItem",
		Method:      http.MethodPost,
		Path:        "/api/v1/shelves/items",
		Summary:     "Place item on shelf",
		Description: "Places a media item on an explicit shelf or on the default shelf for a status",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePlaceItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "moveItem",
		Method:      http.MethodPost,
		Path:        "/api/v1/shelves/items/move",
		Summary:     "Move item between statuses",
		Description: "Moves a media item from its current default shelf to the one for the new status",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMoveItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeItem",
		Method:      http.MethodDelete,
		Path:        "/api/v1/shelves/{mediaType}/{mediaId}",
		Summary:     "Remove item",
		Description: "Removes a media item from its default shelf; custom shelf placements are untouched",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "reconcileShelves",
		Method:      http.MethodPost,
		Path:        "/api/v1/shelves/{mediaType}/reconcile",
		Summary:     "Reconcile shelves",
		Description: "Repairs shelf entries without display records and display records without entries",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReconcile)
}

// === DTOs ===

// ShelfItemResponse represents one placed media item in API responses.
type ShelfItemResponse struct {
	MediaID    string     `json:"media_id" doc:"External media ID"`
	MediaType  string     `json:"media_type" doc:"Media type"`
	Title      *string    `json:"title" doc:"Display title, null when unknown"`
	Creator    *string    `json:"creator" doc:"Author or director, null when unknown"`
	CoverImage *string    `json:"cover_image" doc:"Cover image URL, null when unknown"`
	AddedAt    *time.Time `json:"added_at" doc:"Placement time, null when unknown"`
}

// ShelfResponse contains shelf data in API responses.
type ShelfResponse struct {
	ID          string              `json:"id" doc:"Shelf ID"`
	MediaType   string              `json:"media_type" doc:"Media type"`
	ShelfType   string              `json:"shelf_type" doc:"default or custom"`
	Status      string              `json:"status,omitempty" doc:"Status for default shelves"`
	Name        string              `json:"name" doc:"Shelf name"`
	Description string              `json:"description,omitempty" doc:"Shelf description"`
	IsPrivate   bool                `json:"is_private" doc:"Whether the shelf is private"`
	ItemCount   int                 `json:"item_count" doc:"Number of items on the shelf"`
	Items       []ShelfItemResponse `json:"items" doc:"Items in placement order"`
	CreatedAt   time.Time           `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time           `json:"updated_at" doc:"Last update time"`
}

// ListShelvesInput contains parameters for listing shelves.
type ListShelvesInput struct {
	MediaType string `path:"mediaType" doc:"Media type (book, movie, tv_show, article)"`
}

// ListShelvesResponse contains a list of shelves.
type ListShelvesResponse struct {
	Shelves []ShelfResponse `json:"shelves" doc:"List of shelves, defaults first"`
}

// ListShelvesOutput wraps the list shelves response for Huma.
type ListShelvesOutput struct {
	Body ListShelvesResponse
}

// CreateShelfRequest is the request body for creating a custom shelf.
type CreateShelfRequest struct {
	MediaType   string `json:"media_type" validate:"required" doc:"Media type (book, movie, tv_show, article)"`
	Name        string `json:"name" validate:"required,min=1,max=100" doc:"Shelf name"`
	Description string `json:"description,omitempty" validate:"max=500" doc:"Shelf description"`
	IsPrivate   bool   `json:"is_private,omitempty" doc:"Whether the shelf is private"`
}

// CreateShelfInput wraps the create shelf request for Huma.
type CreateShelfInput struct {
	Body CreateShelfRequest
}

// ShelfOutput wraps a single shelf response for Huma.
type ShelfOutput struct {
	Body ShelfResponse
}

// EnsureDefaultsInput contains parameters for provisioning default shelves.
type EnsureDefaultsInput struct {
	MediaType string `path:"mediaType" doc:"Media type (book, movie, tv_show, article)"`
}

// PlaceItemRequest is the request body for placing an item.
// Either shelf_id or status selects the target shelf.
type PlaceItemRequest struct {
	ShelfID    string `json:"shelf_id,omitempty" doc:"Explicit target shelf ID"`
	MediaType  string `json:"media_type" validate:"required" doc:"Media type"`
	Status     string `json:"status,omitempty" doc:"Target status when no shelf ID is given"`
	MediaID    string `json:"media_id" validate:"required,max=200" doc:"External media ID"`
	Title      string `json:"title,omitempty" validate:"max=500" doc:"Display title"`
	Creator    string `json:"creator,omitempty" validate:"max=500" doc:"Author or director"`
	CoverImage string `json:"cover_image,omitempty" validate:"omitempty,url" doc:"Cover image URL"`
}

// PlaceItemInput wraps the place item request for Huma.
type PlaceItemInput struct {
	Body PlaceItemRequest
}

// PlaceItemOutput wraps the placed item for Huma.
type PlaceItemOutput struct {
	Body ShelfItemResponse
}

// MoveItemRequest is the request body for moving an item between statuses.
type MoveItemRequest struct {
	MediaType string `json:"media_type" validate:"required" doc:"Media type"`
	MediaID   string `json:"media_id" validate:"required,max=200" doc:"External media ID"`
	Status    string `json:"status" validate:"required" doc:"New status"`
}

// MoveItemInput wraps the move item request for Huma.
type MoveItemInput struct {
	Body MoveItemRequest
}

// RemoveItemInput contains parameters for removing an item.
type RemoveItemInput struct {
	MediaType string `path:"mediaType" doc:"Media type"`
	MediaID   string `path:"mediaId" doc:"External media ID"`
}

// ReconcileInput contains parameters for a reconciliation sweep.
type ReconcileInput struct {
	MediaType string `path:"mediaType" doc:"Media type"`
}

// ReconcileResponse summarizes one reconciliation sweep.
type ReconcileResponse struct {
	EntriesBackfilled int `json:"entries_backfilled" doc:"Shelf entries that got a display record backfilled"`
	OrphansRemoved    int `json:"orphans_removed" doc:"Display records removed for missing entries"`
}

// ReconcileOutput wraps the reconcile response for Huma.
type ReconcileOutput struct {
	Body ReconcileResponse
}

// === Handlers ===

func (s *Server) handleListShelves(ctx context.Context, input *ListShelvesInput) (*ListShelvesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	shelves, err := s.services.Shelf.ListShelves(ctx, userID, input.MediaType)
	if err != nil {
		return nil, err
	}

	resp := make([]ShelfResponse, len(shelves))
	for i, sw := range shelves {
		resp[i] = mapShelfResponse(sw.Shelf, sw.Items)
	}

	return &ListShelvesOutput{Body: ListShelvesResponse{Shelves: resp}}, nil
}

func (s *Server) handleCreateShelf(ctx context.Context, input *CreateShelfInput) (*ShelfOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	shelf, err := s.services.Shelf.CreateCustomShelf(ctx, userID, service.CreateCustomShelfParams{
		MediaType:   input.Body.MediaType,
		Name:        input.Body.Name,
		Description: input.Body.Description,
		IsPrivate:   input.Body.IsPrivate,
	})
	if err != nil {
		return nil, err
	}

	return &ShelfOutput{Body: mapShelfResponse(shelf, nil)}, nil
}

func (s *Server) handleEnsureDefaults(ctx context.Context, input *EnsureDefaultsInput) (*ListShelvesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	shelves, err := s.services.Shelf.EnsureDefaultShelves(ctx, userID, input.MediaType)
	if err != nil {
		return nil, err
	}

	resp := make([]ShelfResponse, len(shelves))
	for i, shelf := range shelves {
		resp[i] = mapShelfResponse(shelf, nil)
	}

	return &ListShelvesOutput{Body: ListShelvesResponse{Shelves: resp}}, nil
}

func (s *Server) handlePlaceItem(ctx context.Context, input *PlaceItemInput) (*PlaceItemOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	item, err := s.services.Shelf.PlaceItem(ctx, userID,
		service.PlaceTarget{
			ShelfID:   input.Body.ShelfID,
			MediaType: input.Body.MediaType,
			Status:    input.Body.Status,
		},
		service.PlacedMedia{
			MediaID:    input.Body.MediaID,
			MediaType:  input.Body.MediaType,
			Title:      input.Body.Title,
			Creator:    input.Body.Creator,
			CoverImage: input.Body.CoverImage,
		},
	)
	if err != nil {
		return nil, err
	}

	return &PlaceItemOutput{Body: mapShelfItemResponse(item)}, nil
}

func (s *Server) handleMoveItem(ctx context.Context, input *MoveItemInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Shelf.MoveItem(ctx, userID, input.Body.MediaType, input.Body.MediaID, input.Body.Status); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Item moved"}}, nil
}

func (s *Server) handleRemoveItem(ctx context.Context, input *RemoveItemInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Shelf.RemoveItem(ctx, userID, input.MediaType, input.MediaID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Item removed"}}, nil
}

func (s *Server) handleReconcile(ctx context.Context, input *ReconcileInput) (*ReconcileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	report, err := s.services.Shelf.Reconcile(ctx, userID, input.MediaType)
	if err != nil {
		return nil, err
	}

	return &ReconcileOutput{
		Body: ReconcileResponse{
			EntriesBackfilled: report.EntriesBackfilled,
			OrphansRemoved:    report.OrphansRemoved,
		},
	}, nil
}

// === Helpers ===

func mapShelfResponse(shelf *domain.Shelf, items []*domain.ShelfItem) ShelfResponse {
	itemResponses := make([]ShelfItemResponse, len(items))
	for i, item := range items {
		itemResponses[i] = mapShelfItemResponse(item)
	}

	// Shelves mapped without expanded items still report their entry count.
	count := len(items)
	if items == nil {
		count = len(shelf.Items)
		itemResponses = []ShelfItemResponse{}
	}

	return ShelfResponse{
		ID:          shelf.ID,
		MediaType:   string(shelf.MediaType),
		ShelfType:   string(shelf.ShelfType),
		Status:      string(shelf.Status),
		Name:        shelf.Name,
		Description: shelf.Description,
		IsPrivate:   shelf.IsPrivate,
		ItemCount:   count,
		Items:       itemResponses,
		CreatedAt:   shelf.CreatedAt,
		UpdatedAt:   shelf.UpdatedAt,
	}
}

// mapShelfItemResponse renders display fields as null when the record is
// bare (entry with no stored ShelfItem).
func mapShelfItemResponse(item *domain.ShelfItem) ShelfItemResponse {
	resp := ShelfItemResponse{
		MediaID:   item.MediaID,
		MediaType: string(item.MediaType),
	}
	if item.ID == "" {
		return resp
	}

	resp.Title = &item.Title
	resp.Creator = &item.Creator
	resp.CoverImage = &item.CoverImage
	addedAt := item.AddedAt
	resp.AddedAt = &addedAt
	return resp
}
