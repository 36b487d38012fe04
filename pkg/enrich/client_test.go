package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/people/match", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("X-API-Key"))

		var req PersonMatchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://linkedin.com/in/janedoe", req.ProfileURL)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"found":true,"email":"jane@example.com","company":"Acme"}`))
	}))
	defer srv.Close()

	c := NewClient("key-1", srv.URL)
	resp, err := c.PersonMatch(context.Background(), PersonMatchRequest{
		ProfileURL: "https://linkedin.com/in/janedoe",
		FirstName:  "Jane",
	})
	require.NoError(t, err)
	assert.True(t, resp.Found)
	assert.Equal(t, "jane@example.com", resp.Email)
	assert.Equal(t, "Acme", resp.Company)
}

func TestPersonMatch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"found":false}`))
	}))
	defer srv.Close()

	c := NewClient("key-1", srv.URL)
	resp, err := c.PersonMatch(context.Background(), PersonMatchRequest{ProfileURL: "x"})
	require.NoError(t, err)
	assert.False(t, resp.Found)
}

func TestPersonMatch_StatusSentinels(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusPaymentRequired, ErrNoCredits},
		{http.StatusUnprocessableEntity, ErrInvalidRequest},
		{http.StatusTooManyRequests, ErrRateLimited},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		c := NewClient("key-1", srv.URL)
		_, err := c.PersonMatch(context.Background(), PersonMatchRequest{ProfileURL: "x"})
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
		srv.Close()
	}
}

func TestPersonMatch_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("key-1", srv.URL)
	_, err := c.PersonMatch(context.Background(), PersonMatchRequest{ProfileURL: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestPersonMatch_RateLimiterHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"found":false}`))
	}))
	defer srv.Close()

	// One request per 100 seconds: the second call must block until
	// the context expires.
	c := NewClient("key-1", srv.URL, WithRateLimit(0.01))

	_, err := c.PersonMatch(context.Background(), PersonMatchRequest{ProfileURL: "x"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.PersonMatch(ctx, PersonMatchRequest{ProfileURL: "y"})
	assert.Error(t, err)
}
