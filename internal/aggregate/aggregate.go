package aggregate

import (
	"context"
	"errors"
	"time"

	"quotegateway/internal/normalize"
	"quotegateway/internal/provider"
	"quotegateway/internal/provider/ratelimit"
)

// Aggregator turns a raw symbol parameter into canonical quotes through one
// provider adapter. It holds no per-request state and is safe for
// concurrent use.
type Aggregator struct {
	// Observer receives unit and skip events. Nil means no reporting.
	Observer Observer
	// Wait overrides the pacing wait, mainly for tests.
	Wait ratelimit.WaitFunc
}

// GetQuotes parses raw, fetches every unit of p strictly in order and
// returns the normalized quotes in request order. Any failing unit aborts
// the call and its partial results are discarded.
func (a *Aggregator) GetQuotes(ctx context.Context, raw string, p provider.Adapter) ([]provider.Quote, error) {
	symbols := provider.ParseSymbols(raw)
	if len(symbols) == 0 {
		return nil, provider.ErrMissingSymbols
	}
	if err := p.CheckCredential(); err != nil {
		return nil, err
	}

	obs := a.Observer
	if obs == nil {
		obs = NopObserver{}
	}

	units := p.Units(symbols)
	out := make([]provider.Quote, 0, len(symbols))
	pacer := ratelimit.Pacer{Delay: p.Pacing(), Wait: a.Wait}

	err := pacer.Run(ctx, len(units), func(ctx context.Context, i int) error {
		start := time.Now()
		results, err := p.FetchUnit(ctx, units[i])
		obs.UnitFetched(p.Name(), len(units[i]), time.Since(start), err)
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.Err != nil {
				obs.SymbolSkipped(p.Name(), r.Original, r.Err)
				continue
			}
			out = append(out, normalize.Normalize(r.Record, r.Original))
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, provider.ErrUpstreamTransport) {
			err = &provider.TransportError{Provider: p.Name(), Err: err}
		}
		return nil, err
	}
	return out, nil
}
