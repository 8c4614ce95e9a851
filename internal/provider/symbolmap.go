package provider

import "strings"

// SymbolMap translates caller symbols into a provider's vocabulary.
// Tables are built once at startup and only read afterwards.
type SymbolMap map[string]string

// Map returns the provider-native form of symbol, or symbol itself when the
// table has no entry for it.
func Map(symbol string, table SymbolMap) string {
	if v, ok := table[symbol]; ok && v != "" {
		return v
	}
	return symbol
}

// Merge returns a new table holding base overlaid with extra.
func Merge(base, extra SymbolMap) SymbolMap {
	out := make(SymbolMap, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// Index ties one unit's caller symbols to the native symbols sent upstream.
// Native symbols are de-duplicated in first-seen order; each native symbol
// remembers every original token that mapped to it.
type Index struct {
	native   []string
	byNative map[string][]string
	claimed  map[string]bool
}

func NewIndex(originals []string, table SymbolMap) *Index {
	ix := &Index{
		native:   make([]string, 0, len(originals)),
		byNative: make(map[string][]string, len(originals)),
		claimed:  make(map[string]bool, len(originals)),
	}
	for _, s := range originals {
		key := Map(s, table)
		if _, ok := ix.byNative[key]; !ok {
			ix.native = append(ix.native, key)
		}
		ix.byNative[key] = append(ix.byNative[key], s)
	}
	return ix
}

// Native lists the symbols to request upstream.
func (ix *Index) Native() []string { return ix.native }

// Claim resolves a symbol echoed back by the provider to the caller's
// tokens and marks them answered. Providers sometimes change case, so an
// exact miss falls back to a case-insensitive match. A symbol answered twice
// yields nil the second time.
func (ix *Index) Claim(native string) []string {
	key, ok := native, false
	if _, ok = ix.byNative[native]; !ok {
		for _, k := range ix.native {
			if strings.EqualFold(k, native) {
				key, ok = k, true
				break
			}
		}
	}
	if !ok || ix.claimed[key] {
		return nil
	}
	ix.claimed[key] = true
	return ix.byNative[key]
}

// Unclaimed lists the native symbols the provider never answered for, in
// request order.
func (ix *Index) Unclaimed() []string {
	var out []string
	for _, k := range ix.native {
		if !ix.claimed[k] {
			out = append(out, k)
		}
	}
	return out
}

// Originals returns the caller tokens behind a native symbol without
// claiming them.
func (ix *Index) Originals(native string) []string { return ix.byNative[native] }

// Missing builds skip markers for every caller token the provider left
// unanswered.
func (ix *Index) Missing(reason string) []Result {
	var out []Result
	for _, k := range ix.Unclaimed() {
		for _, orig := range ix.byNative[k] {
			out = append(out, Result{Original: orig, Err: SymbolError(orig, reason)})
		}
	}
	return out
}
