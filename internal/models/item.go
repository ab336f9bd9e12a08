package models

import (
	"time"

	"gorm.io/gorm"
)

// ItemStatus drives the active/archived split: Requested and Approved items
// show on the active list, Available and Declined items on the archived one.
type ItemStatus int

const (
	StatusRequested ItemStatus = iota
	StatusApproved
	StatusAvailable
	StatusDeclined
)

func (s ItemStatus) Valid() bool {
	return s >= StatusRequested && s <= StatusDeclined
}

// Archived reports whether an item with this status belongs to the archived view.
func (s ItemStatus) Archived() bool {
	return s == StatusAvailable || s == StatusDeclined
}

func (s ItemStatus) String() string {
	switch s {
	case StatusRequested:
		return "requested"
	case StatusApproved:
		return "approved"
	case StatusAvailable:
		return "available"
	case StatusDeclined:
		return "declined"
	default:
		return "unknown"
	}
}

type ItemType int

const (
	TypeMovie ItemType = iota
	TypeSeries
)

func (t ItemType) Valid() bool {
	return t == TypeMovie || t == TypeSeries
}

/** --------------------ENTITIES-------------------- */
// WishlistItem represents a requested movie or series
type WishlistItem struct {
	gorm.Model
	Status           ItemStatus `gorm:"index;not null;default:0" json:"status"`
	LastStatusChange time.Time  `json:"lastStatusChange"`
	Type             ItemType   `gorm:"not null" json:"type"`
	Name             string     `gorm:"not null" json:"name"`
	Poster           string     `json:"poster"`
	CreatedBy        string     `gorm:"index;not null" json:"createdBy"` // JellyfinID of the requesting user
	Year             int        `json:"year"`
	ImdbID           string     `json:"imdbId,omitempty"`
	TmdbID           string     `json:"tmdbId,omitempty"`
	TvdbID           string     `json:"tvdbId,omitempty"`
}

/** -------------------- DTOs -------------------- */
type CreateItemRequest struct {
	Type   ItemType `json:"type" binding:"min=0,max=1"`
	Name   string   `json:"name" binding:"required"`
	Poster string   `json:"poster"`
	Year   int      `json:"year" binding:"required"`
	ImdbID string   `json:"imdbId"`
	TmdbID string   `json:"tmdbId"`
	TvdbID string   `json:"tvdbId"`
}

// UpdateItemRequest carries partial edits; nil fields are left untouched.
type UpdateItemRequest struct {
	Status *ItemStatus `json:"status,omitempty"`
	Type   *ItemType   `json:"type,omitempty"`
	Name   *string     `json:"name,omitempty"`
	Poster *string     `json:"poster,omitempty"`
	Year   *int        `json:"year,omitempty"`
	ImdbID *string     `json:"imdbId,omitempty"`
	TmdbID *string     `json:"tmdbId,omitempty"`
	TvdbID *string     `json:"tvdbId,omitempty"`
}

type ItemResponse struct {
	ID               uint       `json:"id"`
	Status           ItemStatus `json:"status"`
	StatusLabel      string     `json:"statusLabel"`
	LastStatusChange time.Time  `json:"lastStatusChange"`
	Type             ItemType   `json:"type"`
	Name             string     `json:"name"`
	Poster           string     `json:"poster"`
	CreatedBy        string     `json:"createdBy"`
	CreatedAt        time.Time  `json:"createdAt"`
	Year             int        `json:"year"`
	ImdbID           string     `json:"imdbId,omitempty"`
	TmdbID           string     `json:"tmdbId,omitempty"`
	TvdbID           string     `json:"tvdbId,omitempty"`
	CanEdit          bool       `json:"canEdit"` // Viewer-dependent: creator or admin
}
