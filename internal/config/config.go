package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Server struct {
	Port              string `json:"port" yaml:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec" yaml:"request_timeout_sec"`
}

type Log struct {
	Level  string `json:"level" yaml:"level"`   // trace|debug|info|warn|error
	Format string `json:"format" yaml:"format"` // json|console
}

type FMP struct {
	APIKey  string `json:"api_key" yaml:"api_key"`
	BaseURL string `json:"base_url" yaml:"base_url"`
	// Headers are added to every FMP request, e.g. for a proxy in front of it.
	Headers map[string]string `json:"headers" yaml:"headers"`
}

type TwelveData struct {
	APIKey         string `json:"api_key" yaml:"api_key"`
	BaseURL        string `json:"base_url" yaml:"base_url"`
	PacingMS       int    `json:"pacing_ms" yaml:"pacing_ms"`
	StockChunkSize int    `json:"stock_chunk_size" yaml:"stock_chunk_size"`
}

type Yahoo struct {
	BaseURL        string `json:"base_url" yaml:"base_url"`
	BrowserHeaders bool   `json:"browser_headers" yaml:"browser_headers"`
}

// Route selects the provider behind one API route.
type Route struct {
	Provider string `json:"provider" yaml:"provider"`
	// SymbolMap extends the provider's built-in symbol table.
	SymbolMap map[string]string `json:"symbol_map" yaml:"symbol_map"`
}

type Config struct {
	Server      Server     `json:"server" yaml:"server"`
	Log         Log        `json:"log" yaml:"log"`
	FMP         FMP        `json:"fmp" yaml:"fmp"`
	TwelveData  TwelveData `json:"twelvedata" yaml:"twelvedata"`
	Yahoo       Yahoo      `json:"yahoo" yaml:"yahoo"`
	Stocks      Route      `json:"stocks" yaml:"stocks"`
	Commodities Route      `json:"commodities" yaml:"commodities"`
}

const (
	ProviderFMP        = "fmp"
	ProviderTwelveData = "twelvedata"
	ProviderYahoo      = "yahoo"
)

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 10},
		Log:    Log{Level: "info", Format: "json"},
		FMP:    FMP{BaseURL: "https://financialmodelingprep.com"},
		TwelveData: TwelveData{
			BaseURL:        "https://api.twelvedata.com",
			PacingMS:       100,
			StockChunkSize: 8,
		},
		Yahoo:       Yahoo{BaseURL: "https://query1.finance.yahoo.com", BrowserHeaders: true},
		Stocks:      Route{Provider: ProviderFMP},
		Commodities: Route{Provider: ProviderTwelveData},
	}
}

// Load reads a JSON or YAML config from path. If path is empty, config.json,
// config.yaml and config.yml are tried in that order; a missing file yields
// defaults. Environment variables override select fields, credentials
// included.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		for _, name := range []string{"config.json", "config.yaml", "config.yml"} {
			if _, err := os.Stat(name); err == nil {
				path = name
				break
			}
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := decode(path, b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(path string, b []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		return json.Unmarshal(b, cfg)
	}
}

// Validate rejects provider choices a route cannot serve.
func (c Config) Validate() error {
	switch c.Stocks.Provider {
	case ProviderFMP, ProviderTwelveData, ProviderYahoo:
	default:
		return fmt.Errorf("config: unknown stocks provider %q", c.Stocks.Provider)
	}
	switch c.Commodities.Provider {
	case ProviderTwelveData, ProviderYahoo:
	default:
		return fmt.Errorf("config: unknown commodities provider %q", c.Commodities.Provider)
	}
	if c.Server.RequestTimeoutSec <= 0 {
		return fmt.Errorf("config: request_timeout_sec must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Server.RequestTimeoutSec = x
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	if v := os.Getenv("FMP_API_KEY"); v != "" {
		cfg.FMP.APIKey = v
	}
	if v := os.Getenv("FMP_BASE_URL"); v != "" {
		cfg.FMP.BaseURL = v
	}

	if v := os.Getenv("TWELVE_DATA_API_KEY"); v != "" {
		cfg.TwelveData.APIKey = v
	}
	if v := os.Getenv("TWELVE_DATA_BASE_URL"); v != "" {
		cfg.TwelveData.BaseURL = v
	}
	if v := os.Getenv("TWELVE_DATA_PACING_MS"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x >= 0 {
			cfg.TwelveData.PacingMS = x
		}
	}
	if v := os.Getenv("TWELVE_DATA_STOCK_CHUNK"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.TwelveData.StockChunkSize = x
		}
	}

	if v := os.Getenv("YAHOO_BASE_URL"); v != "" {
		cfg.Yahoo.BaseURL = v
	}
	if v := os.Getenv("YAHOO_BROWSER_HEADERS"); v != "" {
		cfg.Yahoo.BrowserHeaders = parseBool(v, cfg.Yahoo.BrowserHeaders)
	}

	if v := os.Getenv("STOCKS_PROVIDER"); v != "" {
		cfg.Stocks.Provider = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("COMMODITIES_PROVIDER"); v != "" {
		cfg.Commodities.Provider = strings.ToLower(strings.TrimSpace(v))
	}
}

func parseBool(v string, def bool) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y":
		return true
	case "0", "false", "no", "n":
		return false
	}
	return def
}
