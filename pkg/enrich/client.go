// Package enrich implements the third-party contact-enrichment client.
// The person-match endpoint takes a profile URL plus an optional name
// and returns contact details when the person is on file.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Sentinel errors mapped from the API's documented status codes:
// 401 unauthorized, 402 out of credits, 422 invalid request, 429
// rate limited.
var (
	ErrUnauthorized   = eris.New("enrich: unauthorized")
	ErrNoCredits      = eris.New("enrich: insufficient credits")
	ErrInvalidRequest = eris.New("enrich: invalid request")
	ErrRateLimited    = eris.New("enrich: rate limited")
)

// PersonMatchRequest identifies the person to look up.
type PersonMatchRequest struct {
	ProfileURL string `json:"profile_url"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
}

// PersonMatchResponse is the enrichment payload.
type PersonMatchResponse struct {
	Found    bool   `json:"found"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Company  string `json:"company,omitempty"`
	Location string `json:"location,omitempty"`
}

// Client looks up contact details for a person.
type Client interface {
	PersonMatch(ctx context.Context, req PersonMatchRequest) (*PersonMatchResponse, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables the
// client-side limiter (the server still enforces its own).
func WithRateLimit(perSecond float64) Option {
	return func(c *httpClient) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an enrichment API client.
func NewClient(apiKey, baseURL string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) PersonMatch(ctx context.Context, req PersonMatchRequest) (*PersonMatchResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "enrich: rate limiter wait")
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/people/match", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "enrich: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: read response")
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusPaymentRequired:
		return nil, ErrNoCredits
	case http.StatusUnprocessableEntity:
		return nil, ErrInvalidRequest
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		return nil, eris.Errorf("enrich: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result PersonMatchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "enrich: unmarshal response")
	}

	return &result, nil
}
