// Command recall is an interactive chat client for OpenAI-compatible backends
// that records the conversation into a memory store.
package main

import (
	"context"
	"errors"
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

	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leofalp/recall/core/chatloop"
	"github.com/leofalp/recall/core/client"
	"github.com/leofalp/recall/core/client/middleware"
	"github.com/leofalp/recall/core/provider"
	"github.com/leofalp/recall/core/session"
	"github.com/leofalp/recall/internal/logging"
)

const (
	exitOK          = 0
	exitFailure     = 1
	exitConfigError = 2

	shutdownTimeout = 10 * time.Second
)

type options struct {
	backend     string
	baseURL     string
	apiKey      string
	model       string
	db          string
	system      string
	envFile     string
	metricsAddr string
	logFormat   string
	conscious   bool
	auto        bool
	verbose     bool
	timeout     time.Duration
	retries     int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("recall", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVar(&o.backend, "backend", envDefault("RECALL_BACKEND", "deepseek"), "backend preset ("+strings.Join(provider.PresetNames(), ", ")+") or \"custom\"")
	fs.StringVar(&o.baseURL, "base-url", "", "OpenAI-compatible base URL (required for -backend custom)")
	fs.StringVar(&o.apiKey, "api-key", "", "credential; defaults to <BACKEND>_API_KEY")
	fs.StringVar(&o.model, "model", "", "model name; defaults to <BACKEND>_MODEL or the preset default")
	fs.StringVar(&o.db, "db", envDefault("RECALL_DB", session.DefaultTarget), "memory storage target (sqlite:///file.db, postgres://..., memory://)")
	fs.StringVar(&o.system, "system", "", "system prompt sent before every message")
	fs.StringVar(&o.envFile, "env", "", "extra .env file loaded over the environment")
	fs.StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	fs.StringVar(&o.logFormat, "log-format", logging.FormatFromEnv().String(), "diagnostic log format (compact, json)")
	fs.BoolVar(&o.conscious, "conscious", true, "record turns synchronously before each reply is shown")
	fs.BoolVar(&o.auto, "auto", true, "record turns in the background (ignored when -conscious is set)")
	fs.BoolVar(&o.verbose, "verbose", false, "debug logging and session diagnostics")
	fs.DurationVar(&o.timeout, "timeout", 60*time.Second, "per-request timeout (0 disables)")
	fs.IntVar(&o.retries, "retries", 2, "retries for transient transport failures (0 disables)")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitConfigError
	}

	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := logging.New(stderr, logging.Options{Format: logging.ParseFormat(o.logFormat), Level: level})

	if o.envFile != "" {
		if err := godotenv.Overload(o.envFile); err != nil {
			fmt.Fprintf(stderr, "Error: load %s: %v\n", o.envFile, err)
			return exitConfigError
		}
	}

	cfg, err := buildConfig(o)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitConfigError
	}

	cl, err := cfg.NewClient(client.WithMiddleware(buildMiddlewares(o, logger)...))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitConfigError
	}

	var metrics *session.Metrics
	if o.metricsAddr != "" {
		registry := prometheus.NewRegistry()
		metrics = session.NewMetrics(registry, "recall")
		srv := serveMetrics(o.metricsAddr, registry, logger)
		defer srv.Close()
	}

	fmt.Fprintf(stdout, "Initializing memory session with %s...\n", cfg.Name())
	store, err := session.Open(ctx, o.db)
	if err != nil {
		fmt.Fprintf(stderr, "Error: open memory store %s: %v\n", o.db, err)
		return exitFailure
	}

	sess, err := session.New(ctx, store, cl, session.Options{
		ConsciousIngest: o.conscious,
		AutoIngest:      o.auto,
		Verbose:         o.verbose,
		Logger:          logger,
		Metrics:         metrics,
	})
	if err != nil {
		_ = store.Close()
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := sess.Close(closeCtx); err != nil {
			logger.Warn("memory session close failed", "error", err)
		}
	}()

	fmt.Fprintln(stdout, "Enabling memory tracking...")
	if err := sess.Enable(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}

	hints := cfg.Hint()
	fmt.Fprintf(stdout, "recall - Chat with %s while memory is being tracked\n", cfg.Model())
	if len(hints) > 0 {
		fmt.Fprintln(stdout, hints[0])
	}
	fmt.Fprintln(stdout, "Type 'exit' or press Ctrl+C to quit")
	fmt.Fprintln(stdout, strings.Repeat("-", 50))

	loop := chatloop.New(cl, chatloop.Options{
		Model:        cfg.Model(),
		SystemPrompt: o.system,
		Notice:       "Processing your message with memory tracking...",
		In:           stdin,
		Out:          stdout,
		Hints:        hints,
		Logger:       logger,
	})
	if err := loop.Run(ctx); err != nil {
		logger.Error("chat loop stopped", "error", err)
		return exitFailure
	}
	return exitOK
}

// buildConfig resolves the provider config from flags and the environment.
func buildConfig(o options) (provider.Config, error) {
	if strings.EqualFold(o.backend, "custom") {
		return provider.FromCustom(o.baseURL, o.apiKey, o.model)
	}
	return provider.PresetWith(o.backend, provider.Overrides{
		BaseURL: o.baseURL,
		APIKey:  o.apiKey,
		Model:   o.model,
	})
}

// buildMiddlewares orders retry outermost so every attempt gets its own
// timeout, with logging closest to the provider.
func buildMiddlewares(o options, logger *slog.Logger) []client.MiddlewareConfig {
	var mws []client.MiddlewareConfig
	if o.retries > 0 {
		mws = append(mws, middleware.NewRetryMiddleware(middleware.RetryConfig{MaxRetries: o.retries}))
	}
	if o.timeout > 0 {
		mws = append(mws, middleware.NewTimeoutMiddleware(o.timeout))
	}
	if o.verbose {
		mws = append(mws, middleware.NewLoggingMiddleware(logger, middleware.LogLevelStandard))
	}
	return mws
}

func serveMetrics(addr string, registry *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return srv
}

func envDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
