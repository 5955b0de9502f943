// Package app assembles the storefront: configuration, storage, services and
// the HTTP server, behind a single Run call shared by every entry point.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/pkg/cart"
	"storefront/pkg/catalog"
	"storefront/pkg/httpapi"
	"storefront/pkg/order"
	"storefront/pkg/storage/sqlitedb"
	"storefront/pkg/version"
)

// Run parses args and serves until ctx is canceled. When logger is nil one is
// built from the configured log level.
func Run(ctx context.Context, args []string, logger *zap.Logger) error {
	cmd := newRootCommand(logger)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

type flags struct {
	configPath  string
	port        int
	dbPath      string
	catalogFile string
	logLevel    string
	tlsDomain   string
	showVersion bool
}

func newRootCommand(logger *zap.Logger) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Noodle and sauce storefront",
		Long:          "Serves the storefront JSON API: product catalog, per-session carts, checkout and orders.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "storefront version %s\n", version.Version())
				return nil
			}
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logger, nil)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "Path to a YAML config file")
	fs.IntVar(&f.port, "port", 0, "Port for the HTTP server (overrides config and PORT)")
	fs.StringVar(&f.dbPath, "db-path", "", "SQLite database file; defaults to the working directory")
	fs.StringVar(&f.catalogFile, "catalog", "", "YAML file used to seed an empty catalog")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	fs.StringVar(&f.tlsDomain, "tls-domain", "", "Serve HTTPS for this domain with a self-signed certificate")
	fs.BoolVar(&f.showVersion, "version", false, "Show the application version")
	return cmd
}

// resolveConfig layers explicitly set flags over the config file.
func resolveConfig(cmd *cobra.Command, f flags) (*Config, error) {
	cfg, err := LoadConfig(f.configPath)
	if err != nil {
		return nil, err
	}
	fs := cmd.Flags()
	if fs.Changed("port") {
		cfg.Server.Port = f.port
	}
	if fs.Changed("db-path") {
		cfg.Storage.Path = f.dbPath
	}
	if fs.Changed("catalog") {
		cfg.Catalog.SeedFile = f.catalogFile
	}
	if fs.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if fs.Changed("tls-domain") {
		cfg.TLS.Domain = f.tlsDomain
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the production JSON logger at the configured level.
func newLogger(cfg *Config) (*zap.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// serve wires storage, services and the HTTP server, then blocks until ctx
// ends and the server has shut down. ready, when set, receives the bound address.
func serve(ctx context.Context, cfg *Config, logger *zap.Logger, ready func(addr string)) error {
	if logger == nil {
		built, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer built.Sync()
		logger = built
	}

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	db, err := sqlitedb.Open(ctx, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("unable to open database: %w", err)
	}
	defer db.Close()

	if err := sqlitedb.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("unable to ensure schema: %w", err)
	}

	catalogService := catalog.NewService(catalog.NewRepository(db), logger)
	defer catalogService.Close()

	if err := seedCatalog(ctx, catalogService, cfg.Catalog.SeedFile, logger); err != nil {
		return err
	}

	carts := cart.NewSessions(cart.SessionsOptions{
		TTL:           cfg.Session.TTL,
		SweepInterval: cfg.Session.SweepInterval,
	}, logger)
	defer carts.Close()

	orderService := order.NewService(order.NewRepository(db), logger)
	defer orderService.Close()

	api := httpapi.New(httpapi.Deps{
		Catalog:    catalogService,
		Carts:      carts,
		Orders:     orderService,
		Policy:     policy,
		SessionTTL: cfg.Session.TTL,
	}, logger)

	listener, err := net.Listen("tcp", cfg.Address())
	if err != nil {
		return fmt.Errorf("unable to listen on %s: %w", cfg.Address(), err)
	}
	scheme := "http"
	if cfg.TLS.Domain != "" {
		secured, err := tlsListener(listener, cfg.TLS)
		if err != nil {
			listener.Close()
			return err
		}
		listener = secured
		scheme = "https"
	}
	server := &http.Server{
		Handler:      api.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		errs <- server.Serve(listener)
	}()

	if cfg.TLS.Domain != "" && cfg.TLS.RedirectPort > 0 {
		redirected := make(chan struct{})
		go func() {
			defer close(redirected)
			runRedirect(ctx, cfg, logger)
		}()
		defer func() {
			stop()
			<-redirected
		}()
	}

	addr := listener.Addr().String()
	logger.Info("storefront is running",
		zap.String("addr", addr), zap.String("scheme", scheme), zap.String("version", version.Version()))
	if ready != nil {
		ready(addr)
	}

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped unexpectedly: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	<-errs
	return nil
}

// seedCatalog fills an empty catalog from the seed file or the built-in samples.
func seedCatalog(ctx context.Context, svc *catalog.Service, seedFile string, logger *zap.Logger) error {
	items := catalog.SampleItems()
	if seedFile != "" {
		loaded, err := catalog.LoadFile(seedFile)
		if err != nil {
			return fmt.Errorf("unable to load catalog seed: %w", err)
		}
		items = loaded
	}
	n, err := svc.Seed(ctx, items)
	if err != nil {
		return fmt.Errorf("unable to seed catalog: %w", err)
	}
	if n == 0 {
		logger.Debug("catalog already populated, skipping seed")
	}
	return nil
}
