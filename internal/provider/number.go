package provider

import (
	"bytes"
	"encoding/json"
)

// Number holds a numeric field exactly as the provider sent it. Upstreams
// disagree on whether numbers are JSON numbers or strings, so both decode
// into the same textual form. Empty means missing or null.
type Number string

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number(s)
		return nil
	}
	// anything else (numbers, stray booleans) is kept verbatim and
	// left to the normalizer to reject
	*n = Number(b)
	return nil
}

// Present reports whether the provider sent a value at all.
func (n Number) Present() bool { return n != "" }
