// Package backend implements the HTTP client for the wrapped
// chat-completion service. It owns authentication, TLS options and the
// request timeout; callers see a single synchronous Complete operation.
package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lmbridge/lmbridge/internal/config"
	"github.com/lmbridge/lmbridge/internal/domain/chat/models"
)

type Service struct {
	mu     sync.RWMutex
	client *http.Client
	cfg    *config.BackendSettings

	// Exchanged bearer token, only used when no static access token is
	// configured.
	token       string
	tokenExpiry time.Time
}

func NewService(cfg *config.BackendSettings) (*Service, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("backend base URL is not configured")
	}
	if cfg.AccessToken == "" && cfg.AuthKey == "" {
		return nil, errors.New("backend credentials are not configured")
	}
	if cfg.AccessToken == "" && cfg.AuthURL == "" {
		return nil, errors.New("backend auth URL is required when only an auth key is configured")
	}

	transport := http.DefaultTransport
	if cfg.InsecureSkipVerify {
		log.Warn().Msg("Backend TLS certificate verification is disabled")
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Service{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		cfg: cfg,
	}, nil
}

// Complete sends a translated request to the backend and returns the
// decoded JSON reply. The reply is deliberately untyped: the backend
// emits null-valued fields at arbitrary depth and the response
// translator needs to see them all.
func (s *Service) Complete(ctx context.Context, req *models.BackendChatRequest) (any, error) {
	token, err := s.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("backend auth: %w", err)
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := strings.TrimSuffix(s.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call backend: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read backend response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Str("body", string(body)).Msg("Backend returned an error")
		return nil, fmt.Errorf("backend returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode backend response: %w", err)
	}
	return decoded, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	// ExpiresAt is epoch milliseconds; ExpiresIn is seconds from now.
	// Backends disagree on which one they send.
	ExpiresAt int64 `json:"expires_at"`
	ExpiresIn int64 `json:"expires_in"`
}

// accessToken returns the configured static token, or a cached
// exchanged one, refreshing it when it is within a minute of expiry.
func (s *Service) accessToken(ctx context.Context) (string, error) {
	if s.cfg.AccessToken != "" {
		return s.cfg.AccessToken, nil
	}

	s.mu.RLock()
	if s.token != "" && time.Now().Add(time.Minute).Before(s.tokenExpiry) {
		token := s.token
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Add(time.Minute).Before(s.tokenExpiry) {
		return s.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	if s.cfg.Scope != "" {
		form.Set("scope", s.cfg.Scope)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "Basic "+s.cfg.AuthKey)
	httpReq.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("token endpoint returned no access token")
	}

	s.token = tok.AccessToken
	switch {
	case tok.ExpiresAt > 0:
		s.tokenExpiry = time.UnixMilli(tok.ExpiresAt)
	case tok.ExpiresIn > 0:
		s.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	default:
		s.tokenExpiry = time.Now().Add(30 * time.Minute)
	}

	log.Debug().Time("expiry", s.tokenExpiry).Msg("Exchanged backend auth key for access token")
	return s.token, nil
}
