package fmp

import (
	"context"
	"time"

	"quotegateway/internal/provider"
)

type Config struct {
	Name string // display name, default: fmp
}

// Adapter serves quotes from Financial Modeling Prep. All symbols of a
// request go out in one call and the provider's own change fields are kept.
type Adapter struct {
	cfg    Config
	client *APIClient
}

func New(cfg Config, client *APIClient) *Adapter {
	if cfg.Name == "" {
		cfg.Name = "fmp"
	}
	return &Adapter{cfg: cfg, client: client}
}

func (a *Adapter) Name() string { return a.cfg.Name }

func (a *Adapter) CheckCredential() error {
	if a.client == nil || !a.client.HasKey() {
		return provider.ErrMissingCredential
	}
	return nil
}

func (a *Adapter) Units(symbols []string) [][]string { return provider.Chunk(symbols, 0) }

func (a *Adapter) Pacing() time.Duration { return 0 }

func (a *Adapter) FetchUnit(ctx context.Context, symbols []string) ([]provider.Result, error) {
	ix := provider.NewIndex(symbols, nil)
	quotes, err := a.client.GetQuotes(ctx, ix.Native())
	if err != nil {
		return nil, &provider.TransportError{Provider: a.cfg.Name, Err: err}
	}

	out := make([]provider.Result, 0, len(symbols))
	for _, q := range quotes {
		for _, orig := range ix.Claim(q.Symbol) {
			if !q.Price.Present() {
				out = append(out, provider.Result{Original: orig, Err: provider.SymbolError(orig, "no price")})
				continue
			}
			out = append(out, provider.Result{Original: orig, Record: provider.Record{
				Symbol:        q.Symbol,
				LongName:      q.Name,
				Price:         q.Price,
				PreviousClose: q.PreviousClose,
				Change:        q.Change,
				ChangePercent: q.ChangesPercentage,
				MarketCap:     q.MarketCap,
				Rich:          true,
			}})
		}
	}
	return append(out, ix.Missing("not returned by provider")...), nil
}
