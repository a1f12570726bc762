// Package exa provides a client for the Exa structured web-search API.
package exa

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.exa.ai"

// Client performs structured searches against the Exa API.
type Client interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest is the request body for POST /search.
type SearchRequest struct {
	Query          string    `json:"query"`
	NumResults     int       `json:"numResults,omitempty"`
	IncludeDomains []string  `json:"includeDomains,omitempty"`
	Type           string    `json:"type,omitempty"`
	Contents       *Contents `json:"contents,omitempty"`
}

// Contents asks Exa to attach page content to each result.
type Contents struct {
	Text    bool     `json:"text,omitempty"`
	Summary *Summary `json:"summary,omitempty"`
}

// Summary requests a per-result structured summary conforming to a JSON
// schema supplied by the caller.
type Summary struct {
	Query  string          `json:"query,omitempty"`
	Schema json.RawMessage `json:"schema,omitempty"`
}

// SearchResponse is the response from POST /search.
type SearchResponse struct {
	RequestID string   `json:"requestId"`
	Results   []Result `json:"results"`
}

// Result is a single search hit. Summary holds the provider-filled JSON blob
// when a summary schema was requested.
type Result struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Text    string `json:"text,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates an Exa API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "exa: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "exa: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "exa: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "exa: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("exa: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "exa: unmarshal response")
	}

	return &result, nil
}
