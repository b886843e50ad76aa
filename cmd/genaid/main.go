package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"genaid/internal/artifact"
	"genaid/internal/bridge"
	"genaid/internal/config"
	"genaid/internal/httpapi"
	"genaid/internal/lane"
	"genaid/internal/registry"
	"genaid/internal/session"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "genaid",
		Short:         "Local model download, session and generation bridge",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "genaid %s (llama=%t)\n", version, session.LlamaBuilt())
			return nil
		},
	}
}

type serveFlags struct {
	config     string
	addr       string
	storageDir string
	logLevel   string
	logFormat  string
	cors       string
}

func newServeCmd() *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(f)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.config, "config", os.Getenv("GENAID_CONFIG"), "Path to a .yaml/.json/.toml config file")
	fl.StringVar(&f.addr, "addr", os.Getenv("GENAID_ADDR"), "HTTP listen address, e.g. :8080")
	fl.StringVar(&f.storageDir, "storage-dir", "", "Directory model files are stored in")
	fl.StringVar(&f.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	fl.StringVar(&f.logFormat, "log-format", "", "Log format: console|json")
	fl.StringVar(&f.cors, "cors-origins", "", "Comma-separated allowed origins; enables CORS")
	return cmd
}

// resolveConfig layers flags over the config file over defaults.
func resolveConfig(f serveFlags) (config.Config, error) {
	var cfg config.Config
	if f.config != "" {
		c, err := config.Load(f.config)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	if f.addr != "" {
		cfg.Addr = f.addr
	}
	if f.storageDir != "" {
		cfg.StorageDir = f.storageDir
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.logFormat != "" {
		cfg.LogFormat = f.logFormat
	}
	if origins := splitCSV(f.cors); len(origins) > 0 {
		cfg.CORSEnabled = true
		cfg.CORSOrigins = origins
	}
	return cfg.Merge(config.Default()), nil
}

func newLogger(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if strings.ToLower(format) == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
}

func serve(parent context.Context, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)

	timeout, err := cfg.Timeout()
	if err != nil {
		return err
	}
	catalog, err := registry.New(cfg.Models)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	store, err := artifact.NewStore(artifact.StoreConfig{
		Root:    cfg.StorageDir,
		Fetcher: artifact.NewHTTPFetcher(timeout),
		Logger:  &logger,
	})
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	sessions := session.NewManager(session.ManagerConfig{
		Engine: session.NewLlamaEngine(cfg.LlamaCtx, cfg.LlamaThreads),
		Logger: &logger,
	})
	worker := lane.New(lane.Config{Logger: &logger})
	b := bridge.New(bridge.Config{
		Store:    store,
		Sessions: sessions,
		Lane:     worker,
		Catalog:  catalog,
		Logger:   &logger,
	})

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpapi.SetLogger(logger)
	httpapi.SetBaseContext(ctx)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, nil, nil)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(b),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Addr).
			Str("storage_dir", store.Root()).
			Bool("llama", session.LlamaBuilt()).
			Int("catalog", len(catalog.Entries())).
			Msg("genaid listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	shutdown(shutdownCtx, logger, srv, worker, sessions)
	logger.Info().Msg("genaid stopped")
	return nil
}

type drainer interface {
	Close(ctx context.Context) error
}

type releaser interface {
	Close() error
}

// shutdown stops accepting calls, drains the lane, then releases the session.
// A task still running after an incomplete drain releases any session it
// finishes building, since the manager is closed by then.
func shutdown(ctx context.Context, logger zerolog.Logger, srv *http.Server, worker drainer, sessions releaser) {
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown error")
	}
	if err := worker.Close(ctx); err != nil {
		logger.Warn().Err(err).Msg("lane drain incomplete")
	}
	if err := sessions.Close(); err != nil {
		logger.Warn().Err(err).Msg("session release error")
	}
}

// splitCSV splits a comma-separated list, trimming blanks.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
