package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const authHeader = `MediaBrowser Client="wishlist", Device="server", DeviceId="wishlist-server", Version="1.0"`

// JellyfinProvider authenticates against a Jellyfin server via
// /Users/AuthenticateByName.
type JellyfinProvider struct {
	baseURL string
	client  *http.Client
}

func NewJellyfinProvider(baseURL string, timeout time.Duration) *JellyfinProvider {
	return &JellyfinProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type authenticateByNameRequest struct {
	Username string `json:"Username"`
	Pw       string `json:"Pw"`
}

type authenticateByNameResponse struct {
	User struct {
		ID   string `json:"Id"`
		Name string `json:"Name"`
	} `json:"User"`
}

func (p *JellyfinProvider) Authenticate(ctx context.Context, username, password string) (*Account, error) {
	body, err := json.Marshal(authenticateByNameRequest{Username: username, Pw: password})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/Users/AuthenticateByName", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authHeader)

	resp, err := p.client.Do(req)
	if err != nil {
		slog.Error("Jellyfin authentication request failed", "error", err)
		return nil, ErrInvalidCredentials
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("Jellyfin rejected credentials", "username", username, "status", resp.StatusCode)
		return nil, ErrInvalidCredentials
	}

	var parsed authenticateByNameResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode Jellyfin response: %w", err)
	}

	if parsed.User.ID == "" {
		return nil, ErrInvalidCredentials
	}

	return &Account{ID: parsed.User.ID, Name: parsed.User.Name}, nil
}
