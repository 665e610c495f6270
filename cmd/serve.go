package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/frosty865/VOFC-Engine-sub003/internal/bootstrap"
	"github.com/frosty865/VOFC-Engine-sub003/internal/bootstrap/logging"
	"github.com/frosty865/VOFC-Engine-sub003/internal/errs"
	"github.com/frosty865/VOFC-Engine-sub003/internal/transport/httpapi"
	"github.com/frosty865/VOFC-Engine-sub003/internal/usecase/review"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		handler := httpapi.NewServer(svc, httpapi.Config{
			JWTSecret:   app.Config.Auth.JWTSecret,
			AdminEmails: app.Config.Auth.AdminEmails,
		})

		server := &http.Server{
			Addr:              app.Config.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext:       func(_ net.Listener) context.Context { return ctx },
		}

		signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		serveErr := make(chan error, 1)
		go func() {
			logging.Info(ctx, "http server listening", slog.String("addr", server.Addr))
			serveErr <- server.ListenAndServe()
		}()

		select {
		case err := <-serveErr:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errs.Wrap(err, "serve http")
			}
		case <-signalCtx.Done():
			logging.Info(ctx, "shutdown signal received")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return errs.Wrap(err, "shutdown http server")
			}
		}

		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
