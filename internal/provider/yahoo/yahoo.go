package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"quotegateway/internal/httpx"
	"quotegateway/internal/provider"
)

// Config controls the Yahoo Finance provider behavior.
type Config struct {
	Name    string
	URL     string
	Headers map[string]string // optional extra headers
	// BrowserHeaders sends a desktop browser identity; the public endpoint
	// rejects unknown clients.
	BrowserHeaders bool
}

// Provider fetches the unauthenticated v7 quote endpoint. Every symbol of a
// request goes out in one call.
type Provider struct {
	cfg    Config
	client httpx.Doer
}

func New(cfg Config, hc httpx.Doer) *Provider {
	if cfg.Name == "" {
		cfg.Name = "yahoo"
	}
	if cfg.URL == "" {
		cfg.URL = "https://query1.finance.yahoo.com"
	}
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

// CheckCredential always succeeds; the endpoint needs no key.
func (p *Provider) CheckCredential() error { return nil }

func (p *Provider) Units(symbols []string) [][]string { return provider.Chunk(symbols, 0) }

func (p *Provider) Pacing() time.Duration { return 0 }

func (p *Provider) FetchUnit(ctx context.Context, symbols []string) ([]provider.Result, error) {
	ix := provider.NewIndex(symbols, nil)
	if len(ix.Native()) == 0 {
		return nil, nil
	}

	q := url.Values{}
	q.Set("symbols", strings.Join(ix.Native(), ","))
	u := fmt.Sprintf("%s/v7/finance/quote?%s", strings.TrimRight(p.cfg.URL, "/"), q.Encode())

	body, err := httpx.Get(ctx, p.client, u, p.headers())
	if err != nil {
		return nil, p.transportErr(err)
	}

	var payload response
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, p.transportErr(fmt.Errorf("decode: %w", err))
	}
	if e := payload.QuoteResponse.Error; e != nil {
		return nil, p.transportErr(fmt.Errorf("provider error %s: %s", e.Code, e.Description))
	}

	out := make([]provider.Result, 0, len(symbols))
	for _, it := range payload.QuoteResponse.Result {
		for _, orig := range ix.Claim(it.Symbol) {
			if !it.RegularMarketPrice.Present() {
				out = append(out, provider.Result{Original: orig, Err: provider.SymbolError(orig, "no regular market price")})
				continue
			}
			out = append(out, provider.Result{Original: orig, Record: provider.Record{
				Symbol:        it.Symbol,
				LongName:      it.LongName,
				ShortName:     it.ShortName,
				Price:         it.RegularMarketPrice,
				PreviousClose: it.RegularMarketPreviousClose,
				Change:        it.RegularMarketChange,
				ChangePercent: it.RegularMarketChangePercent,
				MarketCap:     it.MarketCap,
				Rich:          true,
			}})
		}
	}
	return append(out, ix.Missing("not returned by provider")...), nil
}

func (p *Provider) headers() map[string]string {
	h := make(map[string]string, len(httpx.BrowserHeaders)+len(p.cfg.Headers)+1)
	if p.cfg.BrowserHeaders {
		for k, v := range httpx.BrowserHeaders {
			h[k] = v
		}
		h["Referer"] = "https://finance.yahoo.com"
	}
	for k, v := range p.cfg.Headers {
		h[k] = v
	}
	return h
}

func (p *Provider) transportErr(err error) error {
	return &provider.TransportError{Provider: p.cfg.Name, Err: err}
}

type response struct {
	QuoteResponse struct {
		Result []item      `json:"result"`
		Error  *errPayload `json:"error"`
	} `json:"quoteResponse"`
}

type item struct {
	Symbol                     string          `json:"symbol"`
	LongName                   string          `json:"longName"`
	ShortName                  string          `json:"shortName"`
	RegularMarketPrice         provider.Number `json:"regularMarketPrice"`
	RegularMarketPreviousClose provider.Number `json:"regularMarketPreviousClose"`
	RegularMarketChange        provider.Number `json:"regularMarketChange"`
	RegularMarketChangePercent provider.Number `json:"regularMarketChangePercent"`
	MarketCap                  provider.Number `json:"marketCap"`
}

type errPayload struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
