package render

import (
	"context"
	"encoding/json"
	"time"

	"github.com/janmaslov/wishlist/internal/models"
	"github.com/janmaslov/wishlist/internal/realtime"
)

// ItemLister is the slice of the item store the renderer reads from.
type ItemLister interface {
	FindByView(ctx context.Context, archived bool) ([]models.WishlistItem, error)
}

// SnapshotPayload is what subscribers receive on every publish: the full
// current list, personalized for the viewing user.
type SnapshotPayload struct {
	Channel     string                `json:"channel"`
	GeneratedAt time.Time             `json:"generatedAt"`
	Viewer      ViewerInfo            `json:"viewer"`
	Items       []models.ItemResponse `json:"items"`
}

type ViewerInfo struct {
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
}

// Renderer produces per-user snapshot payloads from current store state.
type Renderer struct {
	items ItemLister
}

func NewRenderer(items ItemLister) *Renderer {
	return &Renderer{items: items}
}

// Snapshot renders the channel's list for one viewer. Pure function of
// (viewer, channel, store state); admin and creator see edit controls enabled.
func (r *Renderer) Snapshot(ctx context.Context, viewer models.Identity, ch realtime.Channel) ([]byte, error) {
	items, err := r.items.FindByView(ctx, ch == realtime.ChannelArchived)
	if err != nil {
		return nil, err
	}

	payload := SnapshotPayload{
		Channel:     ch.String(),
		GeneratedAt: time.Now().UTC(),
		Viewer:      ViewerInfo{Name: viewer.Name, Admin: viewer.Admin},
		Items:       ItemResponses(items, viewer),
	}

	return json.Marshal(payload)
}

// ItemResponses converts store rows into viewer-personalized responses.
func ItemResponses(items []models.WishlistItem, viewer models.Identity) []models.ItemResponse {
	responses := make([]models.ItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ItemResponse(&items[i], viewer))
	}
	return responses
}

func ItemResponse(item *models.WishlistItem, viewer models.Identity) models.ItemResponse {
	return models.ItemResponse{
		ID:               item.ID,
		Status:           item.Status,
		StatusLabel:      item.Status.String(),
		LastStatusChange: item.LastStatusChange,
		Type:             item.Type,
		Name:             item.Name,
		Poster:           item.Poster,
		CreatedBy:        item.CreatedBy,
		CreatedAt:        item.CreatedAt,
		Year:             item.Year,
		ImdbID:           item.ImdbID,
		TmdbID:           item.TmdbID,
		TvdbID:           item.TvdbID,
		CanEdit:          viewer.Admin || item.CreatedBy == viewer.JellyfinID,
	}
}
