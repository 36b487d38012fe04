package broker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"gpt-4o","name":"GPT-4o","provider":"openai"},{"id":"claude-sonnet-4","name":"Claude","provider":"anthropic"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	models, err := c.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "gpt-4o", models[0].ID)
	assert.Equal(t, "anthropic", models[1].Provider)
}

func TestKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/keys", r.URL.Path)
		w.Write([]byte(`{"openai":"sk-1","anthropic":"sk-2"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")

	key, err := c.Key(context.Background(), "openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-1", key)

	key, err = c.Key(context.Background(), "perplexity")
	require.NoError(t, err)
	assert.Empty(t, key, "unconfigured provider yields empty key, not an error")
}

func TestUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad")
	_, err := c.ListModels(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	_, err := c.ListModels(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
