package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSymbols indicates the caller supplied no symbols.
	ErrMissingSymbols = errors.New("missing symbols")
	// ErrMissingCredential indicates a credentialed provider has no API key configured.
	ErrMissingCredential = errors.New("API key not configured")
	// ErrUpstreamTransport matches every TransportError.
	ErrUpstreamTransport = errors.New("upstream transport failure")
	// ErrSymbolUnavailable marks a symbol the provider flagged as unknown or invalid.
	ErrSymbolUnavailable = errors.New("symbol unavailable")
)

// TransportError is a call-level failure talking to a provider: a non-2xx
// status, a network error, or an undecodable body.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrUpstreamTransport }

// SymbolError builds a skip marker for one symbol.
func SymbolError(symbol, reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: %s", ErrSymbolUnavailable, symbol)
	}
	return fmt.Errorf("%w: %s: %s", ErrSymbolUnavailable, symbol, reason)
}
