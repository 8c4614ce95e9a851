// Package normalize converts provider-native quote records into the
// canonical quote shape.
package normalize

import (
	"strings"

	"github.com/shopspring/decimal"

	"quotegateway/internal/provider"
)

var hundred = decimal.NewFromInt(100)

// Normalize builds the canonical quote for rec. original is the caller's
// symbol and always becomes the output symbol.
//
// Field rules:
//   - name: long name, short name, provider symbol, then original
//   - price: parsed, 0 when missing or invalid
//   - previousClose: parsed, falls back to price when missing, invalid or zero
//   - change: provider value on rich records, else price - previousClose
//   - changesPercentage: provider value on rich records, else
//     change / previousClose * 100, or 0 when previousClose <= 0
//   - marketCap: parsed, 0 when missing or invalid
func Normalize(rec provider.Record, original string) provider.Quote {
	price, _ := parse(rec.Price)

	prev, ok := parse(rec.PreviousClose)
	if !ok || prev.IsZero() {
		prev = price
	}

	change := price.Sub(prev)
	if rec.Rich {
		if c, ok := parse(rec.Change); ok {
			change = c
		}
	}

	pct := Percent(change, prev)
	if rec.Rich {
		if p, ok := parse(rec.ChangePercent); ok {
			pct = p
		}
	}

	mcap, _ := parse(rec.MarketCap)

	return provider.Quote{
		Symbol:            original,
		Name:              name(rec, original),
		Price:             price.InexactFloat64(),
		Change:            change.InexactFloat64(),
		ChangesPercentage: pct.InexactFloat64(),
		MarketCap:         mcap.InexactFloat64(),
		PreviousClose:     prev.InexactFloat64(),
	}
}

// Percent returns change relative to base on a 0-100 scale, guarding
// against non-positive bases.
func Percent(change, base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	return change.Div(base).Mul(hundred)
}

func name(rec provider.Record, original string) string {
	for _, s := range []string{rec.LongName, rec.ShortName, rec.Symbol} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return original
}

func parse(n provider.Number) (decimal.Decimal, bool) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
