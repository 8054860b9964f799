package mpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/parcelmesh/shipbridge/pkg/carrier"
	"golang.org/x/sync/singleflight"
)

// tokenExpirySkew is subtracted from the reported token lifetime so a
// token is refreshed before the server-side expiry.
const tokenExpirySkew = 30 * time.Second

// tokenSource caches an OAuth2 client-credentials access token.
// Concurrent callers that find the token expired share one refresh via
// singleflight instead of each hitting the token endpoint.
type tokenSource struct {
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu     sync.RWMutex
	token  string
	expiry time.Time

	group singleflight.Group
}

func newTokenSource(tokenURL, clientID, clientSecret string, httpClient *http.Client) *tokenSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &tokenSource{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
	}
}

// Token returns a valid access token, refreshing it when needed.
func (s *tokenSource) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	token, expiry := s.token, s.expiry
	s.mu.RUnlock()

	if token != "" && time.Now().Before(expiry) {
		return token, nil
	}

	v, err, _ := s.group.Do(s.clientID, func() (any, error) {
		// Re-check under the write lock: another caller may have
		// refreshed between the fast path and the flight.
		s.mu.RLock()
		token, expiry := s.token, s.expiry
		s.mu.RUnlock()
		if token != "" && time.Now().Before(expiry) {
			return token, nil
		}
		return s.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate discards the cached token, forcing a refresh on next use.
func (s *tokenSource) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.expiry = time.Time{}
	s.mu.Unlock()
}

func (s *tokenSource) refresh(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.clientID, s.clientSecret)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", translate(&carrier.HTTPError{Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", translate(&carrier.HTTPError{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       body,
		})
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", carrier.NewError(carrierName, "token endpoint returned no access token", carrier.CategoryAuth)
	}

	lifetime := time.Duration(tok.ExpiresIn) * time.Second
	if lifetime > tokenExpirySkew {
		lifetime -= tokenExpirySkew
	}

	s.mu.Lock()
	s.token = tok.AccessToken
	s.expiry = time.Now().Add(lifetime)
	s.mu.Unlock()

	return tok.AccessToken, nil
}
