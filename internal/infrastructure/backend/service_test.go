package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmbridge/lmbridge/internal/config"
	"github.com/lmbridge/lmbridge/internal/domain/chat/models"
)

func testRequest() *models.BackendChatRequest {
	return &models.BackendChatRequest{
		Messages: []models.BackendMessage{{Role: "user", Content: "hi"}},
	}
}

func TestNewServiceValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.BackendSettings
		ok   bool
	}{
		{name: "static token", cfg: config.BackendSettings{BaseURL: "https://b", AccessToken: "tok"}, ok: true},
		{name: "auth key with auth URL", cfg: config.BackendSettings{BaseURL: "https://b", AuthKey: "key", AuthURL: "https://a"}, ok: true},
		{name: "missing base URL", cfg: config.BackendSettings{AccessToken: "tok"}},
		{name: "no credentials", cfg: config.BackendSettings{BaseURL: "https://b"}},
		{name: "auth key without auth URL", cfg: config.BackendSettings{BaseURL: "https://b", AuthKey: "key"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(&tt.cfg)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCompleteStaticToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices": [{"message": {"role": "assistant", "content": null}}], "usage": null}`)
	}))
	defer srv.Close()

	svc, err := NewService(&config.BackendSettings{BaseURL: srv.URL, AccessToken: "tok", Timeout: 5 * time.Second})
	require.NoError(t, err)

	raw, err := svc.Complete(context.Background(), testRequest())
	require.NoError(t, err)

	// Null members must survive decoding untouched; stripping them is
	// the translator's job.
	doc := raw.(map[string]any)
	usage, present := doc["usage"]
	assert.True(t, present)
	assert.Nil(t, usage)
}

func TestCompleteBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc, err := NewService(&config.BackendSettings{BaseURL: srv.URL, AccessToken: "tok", Timeout: 5 * time.Second})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestCompleteTokenExchange(t *testing.T) {
	var tokenCalls int

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Basic secret-key", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "API_SCOPE", r.PostForm.Get("scope"))

		expiresAt := time.Now().Add(30 * time.Minute).UnixMilli()
		fmt.Fprintf(w, `{"access_token": "issued-token", "expires_at": %d}`, expiresAt)
	})
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer issued-token", r.Header.Get("Authorization"))
		io.WriteString(w, `{"choices": []}`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc, err := NewService(&config.BackendSettings{
		BaseURL: srv.URL,
		AuthKey: "secret-key",
		AuthURL: srv.URL + "/oauth",
		Scope:   "API_SCOPE",
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	_, err = svc.Complete(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, tokenCalls, "second call must reuse the cached token")
}

func TestCompleteSendsTranslatedBody(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"choices": []}`)
	}))
	defer srv.Close()

	svc, err := NewService(&config.BackendSettings{BaseURL: srv.URL, AccessToken: "tok", Timeout: 5 * time.Second})
	require.NoError(t, err)

	temp := 0.5
	req := testRequest()
	req.Temperature = &temp
	_, err = svc.Complete(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 0.5, got["temperature"])
	messages := got["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])
}
