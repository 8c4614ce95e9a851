package aggregate

import "time"

// Observer is notified of what happens while a request is served.
// Implementations must be safe for concurrent use.
type Observer interface {
	// UnitFetched reports one upstream call. err is nil on success.
	UnitFetched(provider string, size int, elapsed time.Duration, err error)
	// SymbolSkipped reports a symbol the provider flagged and that was
	// dropped from the response.
	SymbolSkipped(provider, symbol string, reason error)
}

type NopObserver struct{}

func (NopObserver) UnitFetched(string, int, time.Duration, error) {}
func (NopObserver) SymbolSkipped(string, string, error) {}

// MultiObserver fans every event out to each observer in order.
type MultiObserver []Observer

func (m MultiObserver) UnitFetched(provider string, size int, elapsed time.Duration, err error) {
	for _, o := range m {
		o.UnitFetched(provider, size, elapsed, err)
	}
}

func (m MultiObserver) SymbolSkipped(provider, symbol string, reason error) {
	for _, o := range m {
		o.SymbolSkipped(provider, symbol, reason)
	}
}
