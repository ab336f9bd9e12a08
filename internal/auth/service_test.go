package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/janmaslov/wishlist/internal/identity"
	"github.com/janmaslov/wishlist/internal/models"
)

type fakeProvider struct {
	account *identity.Account
	err     error
}

func (p *fakeProvider) Authenticate(ctx context.Context, username, password string) (*identity.Account, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.account, nil
}

type fakeUserRepo struct {
	users   map[string]*models.User
	creates int
	nextID  uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) GetOrCreate(ctx context.Context, jellyfinID, name string) (*models.User, error) {
	if user, ok := r.users[jellyfinID]; ok {
		user.Name = name
		return user, nil
	}
	r.creates++
	r.nextID++
	user := &models.User{JellyfinID: jellyfinID, Name: name}
	user.ID = r.nextID
	r.users[jellyfinID] = user
	return user, nil
}

func (r *fakeUserRepo) FindByJellyfinID(ctx context.Context, jellyfinID string) (*models.User, error) {
	return r.users[jellyfinID], nil
}

func newTestService(provider identity.Provider, repo UserRepository, admins []string) *Service {
	return NewService(repo, provider, NewTokenService("test-secret", time.Hour), admins)
}

func TestSignInGetOrCreateIsIdempotent(t *testing.T) {
	repo := newFakeUserRepo()
	provider := &fakeProvider{account: &identity.Account{ID: "jf-123", Name: "alice"}}
	svc := newTestService(provider, repo, nil)

	first, token, err := svc.SignIn(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if token == "" {
		t.Error("expected a session token")
	}

	second, _, err := svc.SignIn(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("second SignIn failed: %v", err)
	}

	if repo.creates != 1 {
		t.Errorf("expected exactly one user creation, got %d", repo.creates)
	}
	if first.UserID != second.UserID {
		t.Errorf("expected the same local user on repeat sign-in, got %d and %d", first.UserID, second.UserID)
	}
}

func TestSignInRejectionIsGeneric(t *testing.T) {
	repo := newFakeUserRepo()
	provider := &fakeProvider{err: identity.ErrInvalidCredentials}
	svc := newTestService(provider, repo, nil)

	_, _, err := svc.SignIn(context.Background(), "alice", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if repo.creates != 0 {
		t.Errorf("failed sign-in must not create users, got %d creations", repo.creates)
	}
}

func TestSignInGrantsAdminFromConfig(t *testing.T) {
	repo := newFakeUserRepo()
	provider := &fakeProvider{account: &identity.Account{ID: "jf-admin", Name: "root"}}
	svc := newTestService(provider, repo, []string{"jf-admin"})

	id, _, err := svc.SignIn(context.Background(), "root", "pw")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if !id.Admin {
		t.Error("expected configured admin to have Admin set")
	}
	if !svc.IsAdmin("jf-admin") || svc.IsAdmin("jf-123") {
		t.Error("IsAdmin does not match the configured list")
	}
}

func TestResolveTokenRoundtrip(t *testing.T) {
	repo := newFakeUserRepo()
	provider := &fakeProvider{account: &identity.Account{ID: "jf-123", Name: "alice"}}
	svc := newTestService(provider, repo, nil)

	signedIn, token, err := svc.SignIn(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	resolved, err := svc.ResolveToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ResolveToken failed: %v", err)
	}
	if resolved != signedIn {
		t.Errorf("resolved identity %+v does not match signed-in identity %+v", resolved, signedIn)
	}
}

func TestResolveTokenUnknownUserFailsClosed(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(&fakeProvider{}, repo, nil)

	// Valid signature, but the claimed user does not exist locally.
	token, err := svc.Tokens().Issue("jf-ghost", "ghost")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := svc.ResolveToken(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestResolveTokenGarbageFailsClosed(t *testing.T) {
	svc := newTestService(&fakeProvider{}, newFakeUserRepo(), nil)

	if _, err := svc.ResolveToken(context.Background(), "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
