package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/report"
	"github.com/contactkeval/option-pricer/internal/server"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args, prices the configured quote (or serves REST) and returns
// the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("option-pricer", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "path to YAML config")
	fs.Float64("spot", 0, "spot price of the underlying")
	fs.Float64("strike", 0, "strike price")
	fs.Float64("expiry", 0, "time to expiry in years")
	fs.Float64("rate", 0, "risk-free rate, continuously compounded")
	fs.Float64("vol", 0, "annualized volatility")
	fs.String("type", "", "option type: call or put (empty prices both)")
	fs.String("format", "", "output format: text, json or csv")
	fs.Int("v", 1, "verbosity: 0=error 1=info 2=debug 3=trace")
	fs.Bool("json-log", false, "emit logs as JSON")
	rest := fs.Bool("rest", false, "run as REST server")
	fs.String("port", "", "REST server listen address, e.g. :8080")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	// validated once, after flags
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitUsage
	}
	if err := applyFlags(fs, cfg); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitUsage
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitUsage
	}

	if err := logger.Init(cfg.Logging.Verbosity, cfg.Logging.JSON); err != nil {
		fmt.Fprintf(stderr, "initializing logger: %v\n", err)
		return exitUsage
	}
	defer logger.Sync()

	if *rest {
		srv, err := server.New(cfg)
		if err != nil {
			logger.Errorf("building server: %v", err)
			return exitError
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := srv.ListenAndServe(ctx); err != nil {
			logger.Errorf("server failed: %v", err)
			return exitError
		}
		return exitOK
	}

	results, err := priceAll(cfg.Quote)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		if errors.Is(err, pricing.ErrInvalidArgument) {
			return exitUsage
		}
		return exitError
	}

	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitUsage
	}
	if err := report.Write(stdout, format, results); err != nil {
		logger.Errorf("writing report: %v", err)
		return exitError
	}
	return exitOK
}

// priceAll prices the quote once per configured option type.
func priceAll(quote config.QuoteConfig) ([]report.Result, error) {
	types, err := quote.Types()
	if err != nil {
		return nil, err
	}

	results := make([]report.Result, 0, len(types))
	for _, t := range types {
		q := quote.OptionQuote(t)
		p, err := q.Price()
		if err != nil {
			return nil, err
		}
		logger.Debugf("%s price=%.6f intrinsic=%.6f", t, p, q.Intrinsic())
		results = append(results, report.Result{Quote: q, Price: p})
	}
	return results, nil
}

// applyFlags copies explicitly set flags over the loaded config, so flags
// win over file and environment values but unset flags change nothing.
func applyFlags(fs *flag.FlagSet, cfg *config.Config) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		v := f.Value.String()
		switch f.Name {
		case "spot":
			cfg.Quote.Spot, err = strconv.ParseFloat(v, 64)
		case "strike":
			cfg.Quote.Strike, err = strconv.ParseFloat(v, 64)
		case "expiry":
			cfg.Quote.Expiry, err = strconv.ParseFloat(v, 64)
		case "rate":
			cfg.Quote.Rate, err = strconv.ParseFloat(v, 64)
		case "vol":
			cfg.Quote.Volatility, err = strconv.ParseFloat(v, 64)
		case "type":
			cfg.Quote.Type = v
		case "format":
			cfg.Output.Format = config.NormalizeFormat(v)
		case "v":
			cfg.Logging.Verbosity, err = strconv.Atoi(v)
		case "json-log":
			cfg.Logging.JSON, err = strconv.ParseBool(v)
		case "port":
			cfg.Server.Listen = v
		}
		if err != nil {
			err = fmt.Errorf("invalid -%s %q: %w", f.Name, v, err)
		}
	})
	return err
}
