package provider

import (
	"context"
	"strings"
	"time"
)

// Quote is the canonical shape returned to callers regardless of which
// upstream answered. Symbol is always the caller's original token.
type Quote struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	Change            float64 `json:"change"`
	ChangesPercentage float64 `json:"changesPercentage"`
	MarketCap         float64 `json:"marketCap"`
	PreviousClose     float64 `json:"previousClose"`
}

// Record is a provider-native quote flattened into the fields the
// normalizer understands. It never leaves the aggregator.
type Record struct {
	Symbol        string
	LongName      string
	ShortName     string
	Price         Number
	PreviousClose Number
	Change        Number
	ChangePercent Number
	MarketCap     Number
	// Rich marks providers that already compute change and percent-change.
	Rich bool
}

// Result is one entry of a unit response. A non-nil Err is a skip marker:
// the provider flagged this symbol and it must be dropped.
type Result struct {
	Original string
	Record   Record
	Err      error
}

// Adapter is implemented once per upstream provider.
type Adapter interface {
	Name() string
	// CheckCredential returns ErrMissingCredential when the provider needs a
	// credential that is not configured.
	CheckCredential() error
	// Units partitions a symbol request into provider calls.
	Units(symbols []string) [][]string
	// Pacing is the wait inserted between successive units.
	Pacing() time.Duration
	FetchUnit(ctx context.Context, symbols []string) ([]Result, error)
}

// ParseSymbols splits a comma-separated parameter. Blank tokens are dropped;
// order, duplicates and casing are kept.
func ParseSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Chunk splits in into consecutive slices of at most size elements.
// size <= 0 yields a single chunk.
func Chunk(in []string, size int) [][]string {
	if len(in) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]string{in}
	}
	out := make([][]string, 0, (len(in)+size-1)/size)
	for i := 0; i < len(in); i += size {
		j := i + size
		if j > len(in) {
			j = len(in)
		}
		out = append(out, in[i:j])
	}
	return out
}
