package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogsync_api/config"
)

func newTokenConfig(tokenURL string) config.AmazonConfig {
	return config.AmazonConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RefreshToken: "refresh-token",
		TokenURL:     tokenURL,
	}
}

func TestTokenService_ExchangesRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh-token", r.PostForm.Get("refresh_token"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))

		fmt.Fprint(w, `{"access_token": "token-1", "expires_in": 3600}`)
	}))
	defer server.Close()

	service := NewTokenService(newTokenConfig(server.URL), io.Discard)

	token, err := service.GetAccessToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
}

func TestTokenService_CachesUntilExpiry(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `{"access_token": "token-1", "expires_in": 3600}`)
	}))
	defer server.Close()

	service := NewTokenService(newTokenConfig(server.URL), io.Discard)

	first, err := service.GetAccessToken(context.Background())
	require.NoError(t, err)
	second, err := service.GetAccessToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), requests.Load())
}

func TestTokenService_RefreshesExpiringToken(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		// expires_in below the refresh slack: every call has to re-exchange.
		fmt.Fprintf(w, `{"access_token": "token-%d", "expires_in": 30}`, n)
	}))
	defer server.Close()

	service := NewTokenService(newTokenConfig(server.URL), io.Discard)

	first, err := service.GetAccessToken(context.Background())
	require.NoError(t, err)
	second, err := service.GetAccessToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "token-1", first)
	assert.Equal(t, "token-2", second)
	assert.Equal(t, int32(2), requests.Load())
}

func TestTokenService_RejectedExchange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": "invalid_grant"}`)
	}))
	defer server.Close()

	service := NewTokenService(newTokenConfig(server.URL), io.Discard)

	_, err := service.GetAccessToken(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_grant")
}
