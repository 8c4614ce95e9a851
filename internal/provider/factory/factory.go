package factory

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"quotegateway/internal/config"
	"quotegateway/internal/httpx"
	"quotegateway/internal/provider"
	"quotegateway/internal/provider/fmp"
	"quotegateway/internal/provider/twelvedata"
	"quotegateway/internal/provider/yahoo"
)

// Kind is the asset class a provider is built for. It decides chunking and
// the symbol table.
type Kind string

const (
	Stocks      Kind = "stocks"
	Commodities Kind = "commodities"
)

type Set struct {
	Stocks      provider.Adapter
	Commodities provider.Adapter
}

// NewFromConfig builds the adapters behind both API routes.
func NewFromConfig(cfg config.Config, hc httpx.Doer) (Set, error) {
	stocks, err := Build(cfg.Stocks.Provider, Stocks, cfg, hc)
	if err != nil {
		return Set{}, err
	}
	commodities, err := Build(cfg.Commodities.Provider, Commodities, cfg, hc)
	if err != nil {
		return Set{}, err
	}
	return Set{Stocks: stocks, Commodities: commodities}, nil
}

// Build returns the named adapter configured for kind.
func Build(name string, kind Kind, cfg config.Config, hc httpx.Doer) (provider.Adapter, error) {
	route := cfg.Stocks
	if kind == Commodities {
		route = cfg.Commodities
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case config.ProviderFMP:
		header := http.Header{}
		for k, v := range cfg.FMP.Headers {
			header.Set(k, v)
		}
		client := fmp.NewAPIClient(cfg.FMP.APIKey,
			fmp.WithBaseURL(cfg.FMP.BaseURL),
			fmp.WithHTTPClient(hc),
			fmp.WithHeader(header),
		)
		return fmp.New(fmp.Config{}, client), nil

	case config.ProviderTwelveData:
		table := provider.SymbolMap(route.SymbolMap)
		chunk := cfg.TwelveData.StockChunkSize
		if kind == Commodities {
			table = provider.Merge(twelvedata.CommoditySymbols, table)
			chunk = 1
		}
		pacing := time.Duration(cfg.TwelveData.PacingMS) * time.Millisecond
		if cfg.TwelveData.PacingMS == 0 {
			pacing = -1
		}
		return twelvedata.New(twelvedata.Config{
			URL:       cfg.TwelveData.BaseURL,
			APIKey:    cfg.TwelveData.APIKey,
			SymbolMap: table,
			ChunkSize: chunk,
			Pacing:    pacing,
		}, hc), nil

	case config.ProviderYahoo:
		return yahoo.New(yahoo.Config{
			URL:            cfg.Yahoo.BaseURL,
			BrowserHeaders: cfg.Yahoo.BrowserHeaders,
		}, hc), nil
	}
	return nil, fmt.Errorf("unknown provider %q", name)
}
