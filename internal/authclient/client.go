// Package authclient authenticates requests of other services against the auth service.
package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aircnc/aircnc-server/pkg/middleware"
	gocache "github.com/patrickmn/go-cache"
)

var ErrUnauthenticated = errors.New("auth service rejected the token")

// Client verifies tokens by calling GET {baseURL}/auth/authenticate. Accepted tokens are
// cached for cacheTTL; a zero cacheTTL disables the cache.
type Client struct {
	baseURL  string
	http     *http.Client
	cache    *gocache.Cache
	cacheTTL time.Duration
}

func New(baseURL string, timeout, cacheTTL time.Duration) *Client {
	c := &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		cacheTTL: cacheTTL,
	}
	if cacheTTL > 0 {
		c.cache = gocache.New(cacheTTL, time.Minute)
	}
	return c
}

type authenticateResponse struct {
	User struct {
		ID    string `json:"_id"`
		Email string `json:"email"`
	} `json:"user"`
}

// Verify implements middleware.Verifier.
func (c *Client) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	if c.cache != nil {
		if v, ok := c.cache.Get(raw); ok {
			return v.(*userToken), nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/authenticate", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+raw)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth service request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthenticated
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("auth service returned %d", resp.StatusCode)
	}

	var body authenticateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	if body.User.ID == "" {
		return nil, errors.New("auth response has no user id")
	}

	tok := &userToken{claims: map[string]interface{}{"sub": body.User.ID, "email": body.User.Email}}
	if c.cache != nil {
		c.cache.Set(raw, tok, c.cacheTTL)
	}
	return tok, nil
}

type userToken struct {
	claims map[string]interface{}
}

func (t *userToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
