package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"quotegateway/internal/aggregate"
	"quotegateway/internal/config"
	"quotegateway/internal/httpx"
	"quotegateway/internal/logging"
	"quotegateway/internal/provider/factory"
)

type options struct {
	configPath string
	provider   string
	kind       string
	timeout    int
	verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "fetch [symbols...]",
		Short: "Fetch normalized quotes once and print them as JSON",
		Long: `Fetch quotes through one upstream provider and print the same JSON the
server would return.
Example:
fetch AAPL MSFT
fetch --kind commodities --provider twelvedata CL=F,NG=F`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), opts, strings.Join(args, ","), stdout, stderr)
		},
		SilenceUsage: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json or config.yaml (optional)")
	f.StringVar(&opts.provider, "provider", "", "provider to use: fmp, twelvedata or yahoo (default: the configured one for --kind)")
	f.StringVar(&opts.kind, "kind", string(factory.Stocks), "symbol kind: stocks or commodities")
	f.IntVar(&opts.timeout, "timeout", 0, "upstream request timeout in seconds (default: from config)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log upstream calls and skipped symbols to stderr")
	return cmd
}

func runFetch(ctx context.Context, opts options, raw string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.timeout > 0 {
		cfg.Server.RequestTimeoutSec = opts.timeout
	}

	kind := factory.Kind(strings.ToLower(opts.kind))
	name := opts.provider
	switch kind {
	case factory.Stocks:
		if name == "" {
			name = cfg.Stocks.Provider
		}
	case factory.Commodities:
		if name == "" {
			name = cfg.Commodities.Provider
		}
	default:
		return fmt.Errorf("unknown kind %q", opts.kind)
	}

	p, err := factory.Build(name, kind, cfg, httpx.New(time.Duration(cfg.Server.RequestTimeoutSec)*time.Second))
	if err != nil {
		return err
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	agg := &aggregate.Aggregator{
		Observer: logging.Observer{Log: logging.New(level, "console", stderr)},
	}

	quotes, err := agg.GetQuotes(ctx, raw, p)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(quotes)
}
