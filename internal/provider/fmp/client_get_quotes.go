package fmp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"quotegateway/internal/httpx"
	"quotegateway/internal/provider"
)

// Quote is one entry of the /api/v3/quote response.
type Quote struct {
	Symbol            string          `json:"symbol"`
	Name              string          `json:"name"`
	Price             provider.Number `json:"price"`
	ChangesPercentage provider.Number `json:"changesPercentage"`
	Change            provider.Number `json:"change"`
	MarketCap         provider.Number `json:"marketCap"`
	PreviousClose     provider.Number `json:"previousClose"`
	Exchange          string          `json:"exchange"`
}

// GetQuotes fetches all symbols in a single request. Symbols are embedded in
// the path as a comma-separated list.
func (c *APIClient) GetQuotes(ctx context.Context, symbols []string) ([]Quote, error) {
	escaped := make([]string, len(symbols))
	for i, s := range symbols {
		escaped[i] = url.PathEscape(s)
	}

	u := fmt.Sprintf("%s/api/v3/quote/%s?%s", c.baseURL, strings.Join(escaped, ","), c.query.Encode())

	header := make(map[string]string, len(c.header))
	for k := range c.header {
		header[k] = c.header.Get(k)
	}

	body, err := httpx.Get(ctx, c.httpClient, u, header)
	if err != nil {
		return nil, err
	}

	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '{' {
		// {"Error Message": "Invalid API KEY. ..."}
		var e map[string]any
		if err := json.Unmarshal(body, &e); err != nil {
			return nil, fmt.Errorf("decoding error response: %w", err)
		}
		if msg, ok := e["Error Message"].(string); ok {
			return nil, fmt.Errorf("provider error: %s", msg)
		}
		return nil, fmt.Errorf("unexpected object response")
	}

	var quotes []Quote
	if err := json.Unmarshal(body, &quotes); err != nil {
		return nil, fmt.Errorf("decoding quotes response: %w", err)
	}
	return quotes, nil
}
