package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/enrichment/httpapi"
	"github.com/jonwraymond/enrichment/observe"
)

func newServeCmd(configPath *string) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the summarization HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(ctx, *configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if listen != "" {
				cfg.Listen = listen
			}

			a, err := newApp(ctx, cfg, os.Stderr, nil)
			if err != nil {
				return err
			}
			defer func() {
				shutCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
				defer cancel()
				if err := a.Close(shutCtx); err != nil {
					a.logger.Warn(shutCtx, "shutdown incomplete", observe.Err(err))
				}
			}()

			srv := httpapi.New(a.svc,
				httpapi.WithAuthenticator(a.authn),
				httpapi.WithTenantHeader(cfg.Auth.TenantHeader),
				httpapi.WithLogger(a.logger),
				httpapi.WithHealth(a.health),
				httpapi.WithMetricsHandler(a.obs.MetricsHandler()),
				httpapi.WithShutdownTimeout(cfg.ShutdownTimeout),
			)
			return srv.ListenAndServe(ctx, cfg.Listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "override the listen address")
	return cmd
}
