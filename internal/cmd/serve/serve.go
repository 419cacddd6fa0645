// Package serve provides the serve command.
package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dpotapov/go-wikidom"
	"github.com/dpotapov/go-wikidom/internal/cmd/cmdutil"
	"github.com/dpotapov/go-wikidom/internal/config"
)

const shutdownTimeout = 5 * time.Second

// NewCmdServe creates the serve command.
func NewCmdServe() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the build endpoint over HTTP and WebSocket",
		Long: `Serve token stream builds.

POST a JSON token array to get the rendered document, or open a WebSocket and
send {"tokens":[...]} batches followed by {"end":true}.`,
		Example: `  wikidom serve --addr :9000`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := cmdutil.LoadConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, cfg.Logger(cmd.ErrOrStderr()))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+config.DefaultAddr+")")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	meter := &wikidom.Counter{}
	srv := &http.Server{
		Addr: cfg.ListenAddr(),
		Handler: &wikidom.Handler{
			Logger: logger,
			Policy: policy,
			Meter:  meter,
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server stopped", "tokens", meter.Total())
	return nil
}
