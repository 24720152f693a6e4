package services

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

	"catalogsync_api/config"
	"catalogsync_api/pkg/logger"
)

// refreshSlack renews the token slightly before it actually expires so a call
// never goes out with a token about to die mid-flight.
const refreshSlack = 60 * time.Second

const tokenRequestTimeout = 20 * time.Second

// TokenProvider is consulted before every authenticated SP-API call.
type TokenProvider interface {
	GetAccessToken(ctx context.Context) (string, error)
}

// TokenService exchanges the long-lived LWA refresh token for short-lived
// access tokens and caches them until expiry.
type TokenService struct {
	clientID     string
	clientSecret string
	refreshToken string
	tokenURL     string
	client       *http.Client
	log          logger.Logger

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func NewTokenService(cfg config.AmazonConfig, writer io.Writer) *TokenService {
	return &TokenService{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		refreshToken: cfg.RefreshToken,
		tokenURL:     cfg.TokenURL,
		client:       &http.Client{Timeout: tokenRequestTimeout},
		log:          logger.NewLogger(writer, "[LWATokenService]"),
	}
}

func (t *TokenService) GetAccessToken(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.accessToken != "" && time.Now().Before(t.expiresAt.Add(-refreshSlack)) {
		return t.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", t.refreshToken)
	form.Set("client_id", t.clientID)
	form.Set("client_secret", t.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("token exchange rejected: status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResponse.AccessToken == "" {
		return "", fmt.Errorf("token exchange returned an empty access token")
	}

	t.accessToken = tokenResponse.AccessToken
	t.expiresAt = time.Now().Add(time.Duration(tokenResponse.ExpiresIn) * time.Second)
	t.log.Log("LWA access token refreshed, valid for %ds", tokenResponse.ExpiresIn)

	return t.accessToken, nil
}
