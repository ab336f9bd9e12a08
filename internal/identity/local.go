package identity

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// LocalProvider authenticates against a static user list, for deployments
// without a reachable Jellyfin server. Entries are "username:bcrypt-hash".
type LocalProvider struct {
	hashes map[string]string
}

func NewLocalProvider(entries []string) (*LocalProvider, error) {
	hashes := make(map[string]string, len(entries))
	for _, entry := range entries {
		name, hash, ok := strings.Cut(entry, ":")
		if !ok || name == "" || hash == "" {
			return nil, fmt.Errorf("malformed local user entry %q", entry)
		}
		hashes[name] = hash
	}
	return &LocalProvider{hashes: hashes}, nil
}

func (p *LocalProvider) Authenticate(ctx context.Context, username, password string) (*Account, error) {
	hash, ok := p.hashes[username]
	if !ok {
		// Burn a comparison anyway so unknown users cost the same as known ones.
		bcrypt.CompareHashAndPassword([]byte("$2a$10$7EqJtq98hPqEX7fNZaFWoO5v0WkPA9uWWTTpWg5cBwg0bzCkPY1xW"), []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &Account{ID: "local-" + username, Name: username}, nil
}
