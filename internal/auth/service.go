package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/janmaslov/wishlist/internal/identity"
	"github.com/janmaslov/wishlist/internal/models"
)

// ErrInvalidCredentials is the single failure surfaced for any sign-in
// problem, identity-provider rejections included.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository is the user store consumed at sign-in and at every
// connection-open.
type UserRepository interface {
	GetOrCreate(ctx context.Context, jellyfinID, name string) (*models.User, error)
	FindByJellyfinID(ctx context.Context, jellyfinID string) (*models.User, error)
}

// Service is the session validator: it exchanges raw credentials for a signed
// session token at sign-in, and resolves previously issued tokens to a current
// Identity on every privileged request.
type Service struct {
	users    UserRepository
	provider identity.Provider
	tokens   *TokenService
	admins   map[string]bool
}

func NewService(users UserRepository, provider identity.Provider, tokens *TokenService, admins []string) *Service {
	adminSet := make(map[string]bool, len(admins))
	for _, id := range admins {
		adminSet[id] = true
	}
	return &Service{
		users:    users,
		provider: provider,
		tokens:   tokens,
		admins:   adminSet,
	}
}

func (s *Service) Tokens() *TokenService {
	return s.tokens
}

// SignIn verifies credentials with the identity provider, get-or-creates the
// local user keyed by the provider's id, and issues a session token.
func (s *Service) SignIn(ctx context.Context, username, password string) (models.Identity, string, error) {
	account, err := s.provider.Authenticate(ctx, username, password)
	if err != nil {
		slog.Info("Sign-in rejected", "username", username)
		return models.Identity{}, "", ErrInvalidCredentials
	}

	user, err := s.users.GetOrCreate(ctx, account.ID, account.Name)
	if err != nil {
		return models.Identity{}, "", err
	}

	token, err := s.tokens.Issue(user.JellyfinID, user.Name)
	if err != nil {
		return models.Identity{}, "", err
	}

	slog.Info("User signed in", "name", user.Name, "jellyfinID", user.JellyfinID)
	return s.identityOf(user), token, nil
}

// ResolveToken verifies a session token and resolves its claimed identity to
// the current local user. Any failure means unauthenticated.
func (s *Service) ResolveToken(ctx context.Context, tokenString string) (models.Identity, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return models.Identity{}, ErrInvalidToken
	}

	user, err := s.users.FindByJellyfinID(ctx, claims.JellyfinID)
	if err != nil || user == nil {
		return models.Identity{}, ErrInvalidToken
	}

	return s.identityOf(user), nil
}

// IsAdmin reports whether the external id is on the configured admin list.
func (s *Service) IsAdmin(jellyfinID string) bool {
	return s.admins[jellyfinID]
}

func (s *Service) identityOf(user *models.User) models.Identity {
	return models.Identity{
		UserID:     user.ID,
		JellyfinID: user.JellyfinID,
		Name:       user.Name,
		Admin:      s.admins[user.JellyfinID],
	}
}
