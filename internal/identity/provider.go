package identity

import (
	"context"
	"errors"
)

// ErrInvalidCredentials is returned for every authentication failure. Callers
// must not be able to tell an unknown user from a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Account is what the identity provider knows about a user.
type Account struct {
	ID   string // Stable external identifier
	Name string // Display name
}

// Provider authenticates raw credentials against an external identity source.
// It is consulted once per sign-in; session tokens are verified locally.
type Provider interface {
	Authenticate(ctx context.Context, username, password string) (*Account, error)
}
