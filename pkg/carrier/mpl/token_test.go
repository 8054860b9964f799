package mpl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/parcelmesh/shipbridge/pkg/carrier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		require.Equal(t, http.MethodPost, r.Method)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "client-id", user)
		require.Equal(t, "client-secret", pass)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))

		json.NewEncoder(w).Encode(tokenResponse{
			AccessToken: "tok-1",
			TokenType:   "Bearer",
			ExpiresIn:   3600,
		})
	}))
}

func TestTokenSource_CachesUntilExpiry(t *testing.T) {
	var calls atomic.Int32
	srv := newTokenServer(t, &calls)
	defer srv.Close()

	ts := newTokenSource(srv.URL, "client-id", "client-secret", srv.Client())

	for i := 0; i < 5; i++ {
		tok, err := ts.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-1", tok)
	}
	assert.Equal(t, int32(1), calls.Load(), "cached token must not be re-fetched")
}

func TestTokenSource_ConcurrentCallersShareOneRefresh(t *testing.T) {
	var calls atomic.Int32
	srv := newTokenServer(t, &calls)
	defer srv.Close()

	ts := newTokenSource(srv.URL, "client-id", "client-secret", srv.Client())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := ts.Token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "tok-1", tok)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "concurrent refresh must be deduplicated")
}

func TestTokenSource_InvalidateForcesRefresh(t *testing.T) {
	var calls atomic.Int32
	srv := newTokenServer(t, &calls)
	defer srv.Close()

	ts := newTokenSource(srv.URL, "client-id", "client-secret", srv.Client())

	_, err := ts.Token(context.Background())
	require.NoError(t, err)

	ts.Invalidate()

	_, err = ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTokenSource_RejectionIsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"INVALID_TOKEN","message":"bad client credentials"}`))
	}))
	defer srv.Close()

	ts := newTokenSource(srv.URL, "client-id", "wrong-secret", srv.Client())

	_, err := ts.Token(context.Background())

	var cerr *carrier.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carrier.CategoryAuth, cerr.Category)
	assert.False(t, cerr.Retryable())
}

func TestTokenSource_EmptyTokenIsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tokenResponse{ExpiresIn: 3600})
	}))
	defer srv.Close()

	ts := newTokenSource(srv.URL, "client-id", "client-secret", srv.Client())

	_, err := ts.Token(context.Background())

	var cerr *carrier.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carrier.CategoryAuth, cerr.Category)
}
