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

	"github.com/alexcolls/penweb/internal/config"
	"github.com/alexcolls/penweb/internal/httpapi"
	"github.com/alexcolls/penweb/internal/logging"
	"github.com/alexcolls/penweb/internal/probe"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the batch check API",
	Long: `Serve starts the HTTP API. POST /api/checks accepts a batch of URLs,
checks each one and reports status codes, latencies and failure
diagnostics. GET /healthz answers unauthenticated.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides $ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		return err
	}
	defer logger.Sync()

	addr := cfg.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	base := probe.NewHTTPChecker(cfg.HTTPTimeout)
	base.Agent = checkerAgent
	checker := &probe.RetryChecker{
		Inner:    base,
		Attempts: cfg.RetryAttempts,
		Backoff:  cfg.RetryBackoff,
	}

	api := httpapi.NewServer(logger, checker)
	srv := &http.Server{
		Addr: addr,
		Handler: api.Router(httpapi.RouterOptions{
			APIKeys:        cfg.APIKeys,
			RPM:            cfg.PublicRPM,
			Burst:          cfg.PublicBurst,
			AllowedOrigins: cfg.AllowedOrigins,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api_listen", zap.String("addr", addr))
		fmt.Printf("penweb API listening on %s\n", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		fmt.Println("\nShutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("api_stopped")
		return nil
	}
}
