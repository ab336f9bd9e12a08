package models

import (
	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */
// User represents a local account mapped to an identity-provider account.
// Rows are created lazily on first sign-in (get-or-create keyed by JellyfinID).
type User struct {
	gorm.Model
	JellyfinID string `gorm:"uniqueIndex;not null" json:"jellyfinId"` // Stable id issued by the identity provider
	Name       string `gorm:"not null" json:"name"`                   // Display name, refreshed on sign-in
}

// Identity is the authenticated principal bound to a session or a live
// connection. It is immutable for the lifetime of a connection.
type Identity struct {
	UserID     uint   `json:"userId"`
	JellyfinID string `json:"jellyfinId"`
	Name       string `json:"name"`
	Admin      bool   `json:"admin"`
}

/** -------------------- DTOs -------------------- */
// SignInRequest represents the request for user sign-in
type SignInRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignInResponse represents the response for a successful sign-in
type SignInResponse struct {
	User UserResponse `json:"user"`
}

type UserResponse struct {
	ID         uint   `json:"id"`
	JellyfinID string `json:"jellyfinId"`
	Name       string `json:"name"`
	Admin      bool   `json:"admin"`
}
