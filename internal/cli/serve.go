package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	apphttp "orcamento/internal/http"
	"orcamento/internal/log"
)

// shutdownTimeout bounds the drain of in-flight requests.
const shutdownTimeout = 30 * time.Second

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Args:  cobra.NoArgs,
		RunE:  a.runServe,
	}
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	// the server logs to stdout like any other service
	logger := SetupLogger(a.cfg, cmd.OutOrStdout())

	svc, err := newServices(logger, a.cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	srv, err := apphttp.NewServer(a.cfg.Addr(), svc.controller, svc.client, logger)
	if err != nil {
		return err
	}
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 2*a.cfg.RequestTimeout + 10*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, srv, logger, a.cfg.FinanceAPIURL)
}

// serve runs srv until ctx is cancelled, then drains it.
func serve(ctx context.Context, srv *apphttp.Server, logger *log.Logger, baseURL string) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting orcamento server",
			"addr", srv.Addr,
			log.FieldBaseURL, baseURL,
			log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
			return err
		}
		logger.Info("Server stopped gracefully")
		return nil
	})

	return g.Wait()
}
