package fmp

import (
	"net/http"
	"net/url"

	"quotegateway/internal/httpx"
)

const baseURL = "https://financialmodelingprep.com"

// APIClient is a client for the Financial Modeling Prep API.
type APIClient struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient performs the requests.
	httpClient httpx.Doer
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains additional query parameters to be sent with each request.
	query url.Values
	// hasKey records whether an API key was supplied.
	hasKey bool
}

// APIClientOption is a configuration option for the API client.
type APIClientOption func(*APIClient)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) APIClientOption {
	return func(c *APIClient) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient httpx.Doer) APIClientOption {
	return func(c *APIClient) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) APIClientOption {
	return func(c *APIClient) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewAPIClient creates a new client. An empty key is accepted here; the
// adapter reports it as a missing credential before any request is made.
func NewAPIClient(key string, options ...APIClientOption) *APIClient {
	c := &APIClient{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
	}
	if key != "" {
		// https://site.financialmodelingprep.com/developer/docs
		c.query.Add("apikey", key)
		c.hasKey = true
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// HasKey reports whether the client carries an API key.
func (c *APIClient) HasKey() bool { return c.hasKey }
