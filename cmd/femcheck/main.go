// Command femcheck verifies a local simulation toolchain (the Gmsh mesher
// and the Elmer FEM solver) the way the install guide tells a human to:
// run each tool, capture its output, and compare against the expected
// banner text.
//
// Subcommands:
//
//	femcheck run    - run the verification checks and print a report
//	femcheck links  - verify the install guide's external links resolve
//	femcheck serve  - serve verification status over HTTP
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"femcheck.openqed.org/checkdb"
	"femcheck.openqed.org/internal/app"
	"femcheck.openqed.org/internal/linkcheck"
	"femcheck.openqed.org/internal/logging"
	"femcheck.openqed.org/internal/manifest"
	"femcheck.openqed.org/internal/metrics"
	"femcheck.openqed.org/internal/models"
	"femcheck.openqed.org/internal/restapi"
	"femcheck.openqed.org/internal/toolcheck"
)

func main() {
	args := os.Args[1:]
	command := "run"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command = args[0]
		args = args[1:]
	}

	var code int
	switch command {
	case "run":
		code = runVerify(args)
	case "links":
		code = runLinks(args)
	case "serve":
		code = runServe(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (expected run, links or serve)\n", command)
		code = 2
	}
	os.Exit(code)
}

func runVerify(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	manifestPath := fs.String("manifest", "", "Path to a tool manifest file (built-in defaults when empty)")
	dbPath := fs.String("db", "", "SQLite file recording run history (history disabled when empty)")
	format := fs.String("format", "text", "Report format (text|json|yaml)")
	verbose := fs.Bool("verbose", false, "Verbose logging")
	_ = fs.Parse(args)

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := logging.NewTerminalLogger(os.Stderr, level)

	loader, err := manifest.NewLoader(*manifestPath, logger)
	if err != nil {
		logging.LogError(logger, "failed to load manifest", err)
		return 1
	}

	runner := &toolcheck.Runner{
		Loader: loader,
		Env:    toolcheck.SystemEnv(logger),
	}

	if *dbPath != "" {
		history, err := checkdb.NewClient(checkdb.NewConfig(*dbPath, *verbose), logger)
		if err != nil {
			logging.LogError(logger, "failed to open run history", err)
			return 1
		}
		defer logging.SafeCloseWithLogging(history, logger, "run_history")
		runner.History = history
	}

	report, err := runner.Verify(context.Background())
	if err != nil {
		logging.LogError(logger, "verification interrupted", err)
		return 1
	}

	if err := writeReport(os.Stdout, *format, &report); err != nil {
		logging.LogError(logger, "failed to write report", err)
		return 1
	}

	if report.Failed() {
		return 1
	}
	return 0
}

func runLinks(args []string) int {
	fs := flag.NewFlagSet("links", flag.ExitOnError)
	manifestPath := fs.String("manifest", "", "Path to a tool manifest file (built-in defaults when empty)")
	docPath := fs.String("doc", "", "Markdown document to check (manifest setting when empty)")
	format := fs.String("format", "text", "Report format (text|json|yaml)")
	timeout := fs.Duration("timeout", 2*time.Minute, "Overall time budget for the link check")
	_ = fs.Parse(args)

	logger := logging.NewTerminalLogger(os.Stderr, slog.LevelWarn)

	loader, err := manifest.NewLoader(*manifestPath, logger)
	if err != nil {
		logging.LogError(logger, "failed to load manifest", err)
		return 1
	}

	cfg := loader.Get().Links
	doc := cfg.Doc
	if *docPath != "" {
		doc = *docPath
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	checker := linkcheck.NewChecker(cfg, logger)
	report, err := checker.CheckDoc(ctx, doc)
	if err != nil {
		logging.LogError(logger, "link check failed", err)
		return 1
	}

	if err := writeReport(os.Stdout, *format, &report); err != nil {
		logging.LogError(logger, "failed to write report", err)
		return 1
	}

	if report.Failed() {
		return 1
	}
	return 0
}

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", 4000, "Status server port")
	env := fs.String("env", "development", "Environment (development|staging|production)")
	apiKeysFlag := fs.String("api-keys", "test", "Comma separated API keys")
	rateLimit := fs.Int("rate-limit", 100, "Requests per second per API key (negative disables)")
	manifestPath := fs.String("manifest", "", "Path to a tool manifest file (built-in defaults when empty)")
	dbPath := fs.String("db", "femcheck.db", "SQLite file recording run history")
	interval := fs.Duration("interval", 0, "Re-verify periodically (disabled when zero)")
	_ = fs.Parse(args)

	logger := logging.NewStructuredLogger(os.Stdout, slog.LevelInfo)

	var apiKeys []string
	for _, key := range strings.Split(*apiKeysFlag, ",") {
		if key = strings.TrimSpace(key); key != "" {
			apiKeys = append(apiKeys, key)
		}
	}

	loader, err := manifest.NewLoader(*manifestPath, logger)
	if err != nil {
		logging.LogError(logger, "failed to load manifest", err)
		return 1
	}

	history, err := checkdb.NewClient(checkdb.NewConfig(*dbPath, true), logger)
	if err != nil {
		logging.LogError(logger, "failed to open run history", err)
		return 1
	}
	defer logging.SafeCloseWithLogging(history, logger, "run_history")

	m := metrics.New()
	runner := &toolcheck.Runner{
		Loader:  loader,
		Env:     toolcheck.SystemEnv(logger),
		History: history,
		Metrics: m,
	}

	application := &app.Application{
		Config: app.Config{
			Port:      *port,
			Env:       *env,
			ApiKeys:   apiKeys,
			RateLimit: *rateLimit,
		},
		Logger:   logger,
		Manifest: loader,
		Runner:   runner,
		History:  history,
		Metrics:  m,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Pick up manifest edits without a restart.
	if err := loader.Watch(ctx); err != nil {
		logging.LogError(logger, "manifest watch unavailable", err)
	}

	// Verify once at startup so the API has something to serve.
	verifyAtStartup(ctx, runner, logger)
	go checkGuideLinks(ctx, loader, m, logger)

	if *interval > 0 {
		go reverifyPeriodically(ctx, runner, loader, m, *interval, logger)
	}

	api := restapi.NewRestAPI(application)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      api.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting status server", "addr", srv.Addr, "env", *env)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.LogError(logger, "server stopped", err)
		return 1
	}
	return 0
}

func verifyAtStartup(ctx context.Context, runner *toolcheck.Runner, logger *slog.Logger) {
	report, err := runner.Verify(ctx)
	if err != nil {
		logging.LogError(logger, "startup verification failed", err)
		return
	}
	logger.Info("startup verification complete", "status", report.Status)
}

// checkGuideLinks verifies the install guide's external links and records
// the outcome in metrics. A manifest without a doc path disables the check.
func checkGuideLinks(ctx context.Context, loader *manifest.Loader, m *metrics.Metrics, logger *slog.Logger) {
	cfg := loader.Get().Links
	if cfg.Doc == "" {
		return
	}

	checker := linkcheck.NewChecker(cfg, logger)
	report, err := checker.CheckDoc(ctx, cfg.Doc)
	if err != nil {
		logging.LogError(logger, "install guide link check failed", err)
		return
	}
	m.ObserveLinkReport(report)
}

func reverifyPeriodically(ctx context.Context, runner *toolcheck.Runner, loader *manifest.Loader, m *metrics.Metrics, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := runner.Verify(ctx); err != nil {
				logging.LogError(logger, "periodic verification failed", err)
			}
			checkGuideLinks(ctx, loader, m, logger)
		}
	}
}

// writeReport renders a verification or link report in the requested format.
func writeReport(w io.Writer, format string, report any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		return yaml.NewEncoder(w).Encode(report)
	case "text":
		switch r := report.(type) {
		case *models.Report:
			return r.WriteText(w)
		case *models.LinkReport:
			return r.WriteText(w)
		}
		return fmt.Errorf("unsupported report type %T", report)
	default:
		return fmt.Errorf("unknown format %q (expected text, json or yaml)", format)
	}
}
