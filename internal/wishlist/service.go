package wishlist

import (
	"context"
	"errors"
	"time"

	"github.com/janmaslov/wishlist/internal/models"
	"github.com/janmaslov/wishlist/internal/realtime"
	"github.com/janmaslov/wishlist/internal/render"
)

var (
	ErrItemNotFound  = errors.New("item not found")
	ErrNotAuthorized = errors.New("not authorized")
	ErrInvalidType   = errors.New("invalid item type")
	ErrInvalidStatus = errors.New("invalid item status")
)

// ItemRepository is the list store this service mutates.
type ItemRepository interface {
	Create(ctx context.Context, item *models.WishlistItem) error
	FindByID(ctx context.Context, id uint) (*models.WishlistItem, error)
	FindByView(ctx context.Context, archived bool) ([]models.WishlistItem, error)
	Update(ctx context.Context, item *models.WishlistItem) error
	Delete(ctx context.Context, id uint) error
}

// SnapshotRenderer builds the per-user payload pushed on a publish.
type SnapshotRenderer interface {
	Snapshot(ctx context.Context, viewer models.Identity, ch realtime.Channel) ([]byte, error)
}

type Service interface {
	CreateItem(ctx context.Context, actor models.Identity, req *models.CreateItemRequest) (*models.ItemResponse, error)
	GetItem(ctx context.Context, viewer models.Identity, id uint) (*models.ItemResponse, error)
	ListItems(ctx context.Context, viewer models.Identity, archived bool) ([]models.ItemResponse, error)
	UpdateItem(ctx context.Context, actor models.Identity, id uint, req *models.UpdateItemRequest) (*models.ItemResponse, error)
	DeleteItem(ctx context.Context, actor models.Identity, id uint) error
}

// service is the mutation event source: every successful create/update/delete
// triggers a publish on both channels, because any edit can move an item
// between the active and archived views. Failed mutations publish nothing.
type service struct {
	repo      ItemRepository
	publisher realtime.Publisher
	renderer  SnapshotRenderer
}

func NewService(repo ItemRepository, publisher realtime.Publisher, renderer SnapshotRenderer) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		renderer:  renderer,
	}
}

func (s *service) CreateItem(ctx context.Context, actor models.Identity, req *models.CreateItemRequest) (*models.ItemResponse, error) {
	if !req.Type.Valid() {
		return nil, ErrInvalidType
	}

	item := &models.WishlistItem{
		Status:           models.StatusRequested,
		LastStatusChange: time.Now().UTC(),
		Type:             req.Type,
		Name:             req.Name,
		Poster:           req.Poster,
		CreatedBy:        actor.JellyfinID,
		Year:             req.Year,
		ImdbID:           req.ImdbID,
		TmdbID:           req.TmdbID,
		TvdbID:           req.TvdbID,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.notifyListeners()

	resp := render.ItemResponse(item, actor)
	return &resp, nil
}

func (s *service) GetItem(ctx context.Context, viewer models.Identity, id uint) (*models.ItemResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrItemNotFound
	}

	resp := render.ItemResponse(item, viewer)
	return &resp, nil
}

func (s *service) ListItems(ctx context.Context, viewer models.Identity, archived bool) ([]models.ItemResponse, error) {
	items, err := s.repo.FindByView(ctx, archived)
	if err != nil {
		return nil, err
	}
	return render.ItemResponses(items, viewer), nil
}

func (s *service) UpdateItem(ctx context.Context, actor models.Identity, id uint, req *models.UpdateItemRequest) (*models.ItemResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrItemNotFound
	}

	if !canModify(actor, item) {
		return nil, ErrNotAuthorized
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		if *req.Status != item.Status {
			item.Status = *req.Status
			item.LastStatusChange = time.Now().UTC()
		}
	}
	if req.Type != nil {
		if !req.Type.Valid() {
			return nil, ErrInvalidType
		}
		item.Type = *req.Type
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Poster != nil {
		item.Poster = *req.Poster
	}
	if req.Year != nil {
		item.Year = *req.Year
	}
	if req.ImdbID != nil {
		item.ImdbID = *req.ImdbID
	}
	if req.TmdbID != nil {
		item.TmdbID = *req.TmdbID
	}
	if req.TvdbID != nil {
		item.TvdbID = *req.TvdbID
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.notifyListeners()

	resp := render.ItemResponse(item, actor)
	return &resp, nil
}

func (s *service) DeleteItem(ctx context.Context, actor models.Identity, id uint) error {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrItemNotFound
	}

	if !canModify(actor, item) {
		return ErrNotAuthorized
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.notifyListeners()
	return nil
}

// canModify: an item is editable by its creator and by admins.
func canModify(actor models.Identity, item *models.WishlistItem) bool {
	return actor.Admin || item.CreatedBy == actor.JellyfinID
}

// notifyListeners publishes a refresh on every channel. The two publishes run
// concurrently with each other and never block the mutating request; each is
// internally one sequential fan-out.
func (s *service) notifyListeners() {
	for _, ch := range realtime.Channels() {
		ch := ch
		go s.publisher.Publish(ch, func(viewer models.Identity) ([]byte, error) {
			return s.renderer.Snapshot(context.Background(), viewer, ch)
		})
	}
}
