package twelvedata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"quotegateway/internal/httpx"
	"quotegateway/internal/provider"
)

const (
	// MaxChunkSize is the most symbols sent in one quote request.
	MaxChunkSize = 8
	// DefaultPacing is the wait between two successive requests.
	DefaultPacing = 100 * time.Millisecond
)

// CommoditySymbols maps futures-style tickers to Twelve Data codes.
var CommoditySymbols = provider.SymbolMap{
	"CL=F": "CL", // WTI crude oil
	"NG=F": "NG", // natural gas
	"RB=F": "RB", // RBOB gasoline
}

type Config struct {
	Name      string
	URL       string
	APIKey    string
	SymbolMap provider.SymbolMap
	// ChunkSize is the number of symbols per request, clamped to
	// [1, MaxChunkSize]. Commodities use 1.
	ChunkSize int
	// Pacing is the wait between requests. Zero means DefaultPacing,
	// negative disables it.
	Pacing time.Duration
}

// Provider talks to the Twelve Data quote endpoint, one symbol or one small
// comma-joined chunk per request.
type Provider struct {
	cfg    Config
	client httpx.Doer
}

func New(cfg Config, hc httpx.Doer) *Provider {
	if cfg.Name == "" {
		cfg.Name = "twelvedata"
	}
	if cfg.URL == "" {
		cfg.URL = "https://api.twelvedata.com"
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1
	}
	if cfg.ChunkSize > MaxChunkSize {
		cfg.ChunkSize = MaxChunkSize
	}
	if cfg.Pacing == 0 {
		cfg.Pacing = DefaultPacing
	}
	if cfg.Pacing < 0 {
		cfg.Pacing = 0
	}
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) CheckCredential() error {
	if p.cfg.APIKey == "" {
		return provider.ErrMissingCredential
	}
	return nil
}

func (p *Provider) Units(symbols []string) [][]string {
	return provider.Chunk(symbols, p.cfg.ChunkSize)
}

func (p *Provider) Pacing() time.Duration { return p.cfg.Pacing }

func (p *Provider) FetchUnit(ctx context.Context, symbols []string) ([]provider.Result, error) {
	ix := provider.NewIndex(symbols, p.cfg.SymbolMap)
	native := ix.Native()
	if len(native) == 0 {
		return nil, nil
	}

	q := url.Values{}
	q.Set("symbol", strings.Join(native, ","))
	q.Set("apikey", p.cfg.APIKey)
	u := fmt.Sprintf("%s/quote?%s", strings.TrimRight(p.cfg.URL, "/"), q.Encode())

	body, err := httpx.Get(ctx, p.client, u, nil)
	if err != nil {
		return nil, p.transportErr(err)
	}

	out := make([]provider.Result, 0, len(symbols))

	// A single symbol comes back as a flat quote object, several as an
	// object keyed by symbol.
	if len(native) == 1 {
		var one quote
		if err := json.Unmarshal(body, &one); err != nil {
			return nil, p.transportErr(fmt.Errorf("decode: %w", err))
		}
		if one.failed() && one.fatal() {
			return nil, p.transportErr(one.err())
		}
		out = appendResults(out, ix.Claim(native[0]), one)
		return out, nil
	}

	var envelope quote
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.failed() {
		if envelope.fatal() {
			return nil, p.transportErr(envelope.err())
		}
		return ix.Missing(envelope.Message), nil
	}

	err = decodeOrdered(body, func(key string, raw json.RawMessage) error {
		var one quote
		if err := json.Unmarshal(raw, &one); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		out = appendResults(out, ix.Claim(key), one)
		return nil
	})
	if err != nil {
		return nil, p.transportErr(err)
	}
	return append(out, ix.Missing("not returned by provider")...), nil
}

func (p *Provider) transportErr(err error) error {
	return &provider.TransportError{Provider: p.cfg.Name, Err: err}
}

func appendResults(out []provider.Result, originals []string, q quote) []provider.Result {
	for _, orig := range originals {
		if q.failed() {
			out = append(out, provider.Result{Original: orig, Err: provider.SymbolError(orig, q.Message)})
			continue
		}
		out = append(out, provider.Result{Original: orig, Record: provider.Record{
			Symbol:        q.Symbol,
			LongName:      q.Name,
			Price:         q.Close,
			PreviousClose: q.PreviousClose,
			Change:        q.Change,
			ChangePercent: q.PercentChange,
		}})
	}
	return out
}

// quote is the /quote payload, or an error object carrying status "error".
type quote struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Exchange      string          `json:"exchange"`
	Close         provider.Number `json:"close"`
	PreviousClose provider.Number `json:"previous_close"`
	Change        provider.Number `json:"change"`
	PercentChange provider.Number `json:"percent_change"`

	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (q quote) failed() bool { return q.Status == "error" }

// fatal reports error codes that concern the whole account rather than one
// symbol.
func (q quote) fatal() bool {
	switch q.Code {
	case 401, 403, 429:
		return true
	}
	return false
}

func (q quote) err() error {
	return fmt.Errorf("provider error %d: %s", q.Code, q.Message)
}

// decodeOrdered walks a JSON object and hands each member to fn in document
// order.
func decodeOrdered(b []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("decode: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("decode: unexpected key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
