package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/sawmill/internal/classifier"
	"github.com/crimson-sun/sawmill/internal/cleaner"
	"github.com/crimson-sun/sawmill/internal/config"
	"github.com/crimson-sun/sawmill/internal/ledger"
	"github.com/crimson-sun/sawmill/internal/logging"
	"github.com/crimson-sun/sawmill/internal/metrics"
	"github.com/crimson-sun/sawmill/internal/output"
	"github.com/crimson-sun/sawmill/internal/output/async"
	"github.com/crimson-sun/sawmill/internal/output/file"
	"github.com/crimson-sun/sawmill/internal/output/multi"
	"github.com/crimson-sun/sawmill/internal/output/stdout"
	"github.com/crimson-sun/sawmill/internal/output/textfile"
	"github.com/crimson-sun/sawmill/internal/output/webhook"
	"github.com/crimson-sun/sawmill/internal/pipeline"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sawmill",
		Short:         "Batch analyzer for exported service logs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	var (
		cfgPath     string
		outDir      string
		outFile     string
		format      string
		webhookURL  string
		ledgerPath  string
		compareFrom string
		compareTo   string
		logLevel    string
		maxResponse float64
		pretty      bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Load, clean, and aggregate one or more exported log files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			// Flags override config file and environment.
			if cmd.Flags().Changed("out") {
				cfg.Output.Dir = outDir
			}
			if cmd.Flags().Changed("output-file") {
				cfg.Output.File = outFile
			}
			if cmd.Flags().Changed("format") {
				cfg.Output.Format = format
			}
			if cmd.Flags().Changed("webhook") {
				cfg.Output.WebhookURL = webhookURL
			}
			if cmd.Flags().Changed("ledger") {
				cfg.Classifier.LedgerPath = ledgerPath
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("pretty") {
				cfg.Output.Pretty = pretty
			}
			if cmd.Flags().Changed("max-response") {
				cfg.Cleaner.MaxResponse = maxResponse
			}

			return runAnalyze(cmd.Context(), cfg, args, compareFrom, compareTo)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to YAML config file")
	cmd.Flags().StringVar(&outDir, "out", "reports", "directory for text reports")
	cmd.Flags().StringVar(&outFile, "output-file", "", "NDJSON report file path")
	cmd.Flags().StringVar(&format, "format", "text", "report format: text, json, ndjson")
	cmd.Flags().StringVar(&webhookURL, "webhook", "", "POST each report to this URL")
	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "path to the classification ledger JSON")
	cmd.Flags().StringVar(&compareFrom, "compare-from", "", "earlier date for day-over-day comparison (YYYY-MM-DD or dd/mm)")
	cmd.Flags().StringVar(&compareTo, "compare-to", "", "later date for day-over-day comparison (YYYY-MM-DD or dd/mm)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.Flags().Float64Var(&maxResponse, "max-response", 0, "response-time outlier cutoff (default 2000)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "pretty-print JSON reports on stdout")

	return cmd
}

func runAnalyze(parent context.Context, cfg config.Config, paths []string, compareFrom, compareTo string) error {
	reportsOnStdout := cfg.Output.Format == "json"
	logging.Init(reportsOnStdout, logging.ParseLevel(cfg.LogLevel))

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var led *ledger.Ledger
	if cfg.Classifier.LedgerPath != "" {
		var err error
		led, err = ledger.Open(cfg.Classifier.LedgerPath)
		if err != nil {
			return err
		}
		slog.Info("classification ledger loaded",
			"path", cfg.Classifier.LedgerPath, "entries", led.Len())
	}

	backend, err := buildBackend(cfg.Classifier)
	if err != nil {
		return err
	}

	var clsOpts []classifier.Option
	if led != nil {
		clsOpts = append(clsOpts, classifier.WithLedger(led))
	}
	if cfg.Classifier.PacingMS >= 0 {
		clsOpts = append(clsOpts, classifier.WithPacing(time.Duration(cfg.Classifier.PacingMS)*time.Millisecond))
	}
	cls := classifier.New(classifier.DefaultRules(), backend, clsOpts...)
	eng := metrics.NewEngine(cls)

	out, err := buildOutput(cfg.Output)
	if err != nil {
		return err
	}

	pipeOpts := []pipeline.Option{
		pipeline.WithCleanerOptions(cleaner.Options{MaxResponse: cfg.Cleaner.MaxResponse}),
	}
	if compareFrom != "" && compareTo != "" {
		pipeOpts = append(pipeOpts, pipeline.WithComparison(compareFrom, compareTo))
	}

	p := pipeline.New(eng, out, pipeOpts...)
	results := p.Run(ctx, paths)
	if err := p.Close(); err != nil {
		return err
	}

	if led != nil {
		if err := led.Save(); err != nil {
			return err
		}
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	if failed == len(results) {
		return fmt.Errorf("all %d files failed", failed)
	}
	if failed > 0 {
		slog.Warn("batch finished with failures", "failed", failed, "total", len(results))
	}
	return nil
}

// buildBackend resolves the remote classification backend from config.
// "auto" prefers Azure when fully configured, then Gemini; with neither
// configured, keyword misses resolve to the fallback category.
func buildBackend(cfg config.ClassifierConfig) (classifier.Backend, error) {
	azure := classifier.AzureConfig{
		Endpoint:   cfg.Azure.Endpoint,
		APIKey:     cfg.Azure.APIKey,
		Deployment: cfg.Azure.Deployment,
		APIVersion: cfg.Azure.APIVersion,
	}
	gemini := classifier.GeminiConfig{
		APIKey: cfg.Gemini.APIKey,
		Model:  cfg.Gemini.Model,
	}

	switch cfg.Provider {
	case "azure":
		return classifier.NewAzureBackend(azure)
	case "gemini":
		return classifier.NewGeminiBackend(gemini)
	case "none":
		return nil, nil
	case "auto", "":
		if azure.Configured() {
			return classifier.NewAzureBackend(azure)
		}
		if gemini.Configured() {
			return classifier.NewGeminiBackend(gemini)
		}
		slog.Warn("no classification backend configured, unmatched errors will be uncategorized")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.Provider)
	}
}

// buildOutput assembles the report destination stack: the primary
// format destination plus optional NDJSON file and webhook fan-out.
func buildOutput(cfg config.OutputConfig) (output.Output, error) {
	var outputs []output.Output

	switch cfg.Format {
	case "text", "":
		dest, err := textfile.New(cfg.Dir)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, dest, stdout.New(true, false))
	case "json":
		outputs = append(outputs, stdout.New(false, cfg.Pretty))
	case "ndjson":
		if cfg.File == "" {
			return nil, errors.New("ndjson format requires an output file path")
		}
	default:
		return nil, fmt.Errorf("unknown output format %q", cfg.Format)
	}

	if cfg.File != "" {
		dest, err := file.New(cfg.File)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, dest)
	}
	if cfg.WebhookURL != "" {
		// A slow or flaky endpoint must not stall the next file.
		outputs = append(outputs, async.New(webhook.New(cfg.WebhookURL)))
	}

	if len(outputs) == 1 {
		return outputs[0], nil
	}
	return multi.New(outputs...), nil
}
