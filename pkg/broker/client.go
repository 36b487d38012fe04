// Package broker implements the key/model broker client. The broker is
// a remote service that returns the provider API keys and the model
// catalog; it is the only source of credentials in the system.
package broker

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// ErrUnauthorized indicates the broker rejected the bearer token.
var ErrUnauthorized = eris.New("broker: unauthorized")

// Model describes one generation model the broker exposes.
type Model struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// Client looks up provider keys and available models.
type Client interface {
	ListModels(ctx context.Context) ([]Model, error)
	// Key returns the API key for the named provider, or "" when the
	// broker has none configured.
	Key(ctx context.Context, provider string) (string, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a broker client for the given base URL and bearer token.
func NewClient(baseURL, token string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		token:   token,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) ListModels(ctx context.Context) ([]Model, error) {
	var models []Model
	if err := c.get(ctx, "/models", &models); err != nil {
		return nil, err
	}
	return models, nil
}

func (c *httpClient) Key(ctx context.Context, provider string) (string, error) {
	var keys map[string]string
	if err := c.get(ctx, "/keys", &keys); err != nil {
		return "", err
	}
	return keys[provider], nil
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrapf(err, "broker: create request %s", path)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "broker: send request %s", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "broker: read response %s", path)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return eris.Errorf("broker: server error %d on %s: %s", resp.StatusCode, path, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "broker: unmarshal response %s", path)
	}
	return nil
}
