package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"freightportal/internal/api"
	"freightportal/internal/auth"
	"freightportal/internal/backend"
	"freightportal/internal/carrier"
	"freightportal/internal/certs"
	"freightportal/internal/config"
	"freightportal/internal/crypto"
	"freightportal/internal/files"
	"freightportal/internal/inflight"
	"freightportal/internal/utils"
)

const shutdownTimeout = 10 * time.Second

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "portal",
	Short:         "Freight approval portal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portal HTTP server",
	Long: `Run the portal HTTP server.

Configuration is read from --config (YAML, or JSON with comments for
.json/.hujson files) and PORTAL_* environment variables. The session key
file is created on first start when missing.`,
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "portal.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger, err := utils.NewLogger(level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	handler, closeBackend, err := buildHandler(cfg, logger)
	if err != nil {
		return err
	}
	defer closeBackend()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if cfg.TLSEnabled() {
		tlsCfg, leaf, err := certs.NewCertManager(cfg.Server.TLSCert, cfg.Server.TLSKey).TLSConfig()
		if err != nil {
			return err
		}
		srv.TLSConfig = tlsCfg
		logger.Info("tls enabled", zap.Time("not_after", leaf.NotAfter))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("portal listening", zap.String("addr", srv.Addr))
		var err error
		if srv.TLSConfig != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildHandler(cfg *config.Config, logger *zap.Logger) (http.Handler, func(), error) {
	master, created, err := files.LoadOrCreateMasterKey(cfg.Session.KeyFile)
	if err != nil {
		return nil, nil, fmt.Errorf("session key: %w", err)
	}
	if created {
		logger.Info("session key created", zap.String("path", cfg.Session.KeyFile))
	}
	keys, err := crypto.DeriveCookieKeys(master)
	if err != nil {
		return nil, nil, err
	}
	timeout, err := cfg.BackendTimeout()
	if err != nil {
		return nil, nil, err
	}

	client := backend.New(cfg.Backend.APIURL, cfg.Backend.ERPURL, timeout, logger.Named("backend"))
	guard := inflight.New()
	router, err := api.NewRouter(api.Deps{
		Store: auth.NewStore(keys, auth.StoreOptions{
			CookieName: cfg.Session.CookieName,
			Secure:     cfg.Server.SecureCookies || cfg.TLSEnabled(),
		}, logger.Named("session")),
		Authenticator: auth.NewAuthenticator(client, guard, logger.Named("auth")),
		Flow:          carrier.NewFlow(client, guard, logger.Named("carrier")),
		Logger:        logger.Named("http"),
	})
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return router, client.Close, nil
}
