// Package logging configures zerolog and reports aggregator events.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds a logger writing to w (stdout when nil). format "console" or
// "text" gives human-readable output, anything else JSON. Unknown levels
// fall back to info.
func New(level, format string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	switch strings.ToLower(format) {
	case "console", "text":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Observer logs unit fetches and skipped symbols.
type Observer struct {
	Log zerolog.Logger
}

func (o Observer) UnitFetched(provider string, size int, elapsed time.Duration, err error) {
	if err != nil {
		o.Log.Error().Err(err).
			Str("provider", provider).
			Int("symbols", size).
			Dur("elapsed", elapsed).
			Msg("upstream fetch failed")
		return
	}
	o.Log.Debug().
		Str("provider", provider).
		Int("symbols", size).
		Dur("elapsed", elapsed).
		Msg("upstream fetch")
}

func (o Observer) SymbolSkipped(provider, symbol string, reason error) {
	o.Log.Warn().Err(reason).
		Str("provider", provider).
		Str("symbol", symbol).
		Msg("symbol skipped")
}
