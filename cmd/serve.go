package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/payraan/twelvedata/internal/httpserve"
	"github.com/payraan/twelvedata/internal/server"
	"github.com/payraan/twelvedata/pkg/logger"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command
func NewServeCommand(a *server.App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway server",
		Long:  "Start the HTTP gateway, listening on all interfaces",
		Run: func(cmd *cobra.Command, args []string) {
			if err := StartServer(a); err != nil {
				logger.Fatal("Server error", "error", err)
			}
		},
	}
}

// StartServer runs the echo server until a termination signal arrives, then
// shuts it down gracefully.
func StartServer(a *server.App) error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = 1 * time.Minute
	e.Server.WriteTimeout = 2 * time.Minute

	e = httpserve.RegisterRoutes(e, a)

	// Setup a channel to capture termination signals
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Starting gateway server", "port", a.Config.Http.Port)
		if err := e.Start(fmt.Sprintf(":%s", a.Config.Http.Port)); err != nil {
			if err.Error() != "http: Server closed" {
				logger.Error("Server error", "error", err)
				// Nothing to serve anymore, unblock the signal wait
				sigs <- syscall.SIGTERM
			}
		}
	}()

	<-sigs
	logger.Info("Received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("Shutting down server...")
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if err := a.Shutdown(); err != nil {
		logger.Error("Application shutdown error", "error", err)
	}

	logger.Info("Shutdown complete")
	return nil
}
