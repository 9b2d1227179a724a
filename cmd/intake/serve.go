package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002"
	httpAdapter "github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/adapters/http"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Exposes questionnaire sessions, scoring and submission as a JSON API over HTTP, with Prometheus metrics on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadConfig(cmd)

		var extra []intake.Option
		srvOpts := []httpAdapter.Option{httpAdapter.WithVersion(intake.Version)}
		if cfg.Server.Metrics {
			metrics := observability.NewMetrics()
			extra = append(extra, intake.WithLifecycleHooks(metrics.Hooks()))
			srvOpts = append(srvOpts, httpAdapter.WithMetrics(promhttp.Handler()))
		}

		res, cfg, logger := loadEngine(ctx, cmd, extra...)
		defer func() {
			if err := res.Close(); err != nil {
				logger.Error("Failed to close engine", "error", err)
			}
		}()

		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		srv := &http.Server{
			Addr:    addr,
			Handler: httpAdapter.NewHandler(res.Engine, srvOpts...),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("Starting intake server", "addr", srv.Addr, "flows", res.Engine.Flows())
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				fmt.Printf("Server error: %v\n", err)
				os.Exit(1)
			}

		case sig := <-shutdown:
			logger.Info("Start shutdown", "signal", sig)

			// Give outstanding requests a deadline for completion.
			timeout := cfg.GetShutdownTimeout()
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("Graceful shutdown did not complete", "timeout", timeout, "error", err)
				if err := srv.Close(); err != nil {
					logger.Error("Error killing server", "error", err)
				}
			}
			logger.Info("Intake server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on (overrides server.addr)")
}
