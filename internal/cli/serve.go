package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/tablebot/pkg/adapters/fakeapi"
	httpadapter "github.com/aretw0/tablebot/pkg/adapters/http"
	"golang.org/x/time/rate"
)

// ShutdownTimeout bounds graceful shutdown of the HTTP servers.
const ShutdownTimeout = 5 * time.Second

// ListenAndServe runs srv until ctx is cancelled, then shuts it down
// gracefully.
func ListenAndServe(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", "address", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("start shutdown", "address", srv.Addr)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("could not stop server: %w", err)
			}
		}
		logger.Info("server stopped gracefully", "address", srv.Addr)
		return nil
	}
}

// NewServeHandler builds the chat API handler from the app and its HTTP settings.
func NewServeHandler(app *App) http.Handler {
	cfg := app.Config.HTTP
	return httpadapter.NewHandler(app.Bot, app.Sessions,
		httpadapter.WithLogger(app.Logger),
		httpadapter.WithMetricsHandler(app.Metrics.Handler()),
		httpadapter.WithRateLimit(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		httpadapter.WithAllowedOrigins(cfg.AllowedOrigins...),
	)
}

// RunServe serves the chat API on addr until ctx is cancelled.
func RunServe(ctx context.Context, app *App, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewServeHandler(app),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return ListenAndServe(ctx, srv, app.Logger)
}

// RunMockAPI serves the in-memory booking API on addr until ctx is cancelled.
func RunMockAPI(ctx context.Context, addr string, logger *slog.Logger, opts ...fakeapi.Option) error {
	api := fakeapi.New(append(opts, fakeapi.WithLogger(logger))...)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return ListenAndServe(ctx, srv, logger)
}
