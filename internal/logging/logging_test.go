package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quotegateway/internal/logging"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNew_LevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logging.New("warn", "json", &buf)
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	require.Equal(t, "shown", lines[0]["message"])
	require.Equal(t, "warn", lines[0]["level"])
}

func TestNew_UnknownLevelIsInfo(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logging.New("loud", "", &buf)
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	require.Len(t, decodeLines(t, &buf), 1)
}

func TestNew_Console(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logging.New("info", "console", &buf)
	log.Info().Str("provider", "fmp").Msg("hello")
	require.Contains(t, buf.String(), "hello")
	require.Contains(t, buf.String(), "provider=")
	require.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestObserver(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	obs := logging.Observer{Log: logging.New("debug", "json", &buf)}

	obs.UnitFetched("twelvedata", 8, 120*time.Millisecond, nil)
	obs.UnitFetched("twelvedata", 4, time.Second, errors.New("twelvedata: 502"))
	obs.SymbolSkipped("twelvedata", "ZZZZ", errors.New("symbol not found"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)
	require.Equal(t, "debug", lines[0]["level"])
	require.EqualValues(t, 8, lines[0]["symbols"])
	require.Equal(t, "error", lines[1]["level"])
	require.Equal(t, "twelvedata: 502", lines[1]["error"])
	require.Equal(t, "warn", lines[2]["level"])
	require.Equal(t, "ZZZZ", lines[2]["symbol"])
}
