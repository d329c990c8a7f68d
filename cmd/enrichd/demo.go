package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/enrichment/observe"
	"github.com/jonwraymond/enrichment/summarize"
)

const demoText = "Enrichment summarizes text for many tenants.\n" +
	"Each tenant picks a model, tone and limit.\n" +
	"Failed model calls are retried with backoff.\n" +
	"Repeated input is served from a tenant cache."

var demoTenants = []string{"tenant1", "tenant2", "tenant3"}

func newDemoCmd(configPath *string) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Summarize sample text for each demo tenant twice, then for an unknown tenant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(ctx, *configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a, err := newApp(ctx, cfg, cmd.ErrOrStderr(), nil)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(context.Background()) }()

			runDemo(ctx, a.svc, cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", demoText, "sample text")
	return cmd
}

// runDemo prints one line per call. Failures are printed, not returned.
func runDemo(ctx context.Context, svc *summarize.Service, out io.Writer, text string) {
	call := func(tenantID, label string) {
		reqCtx := observe.WithRequest(ctx, observe.RequestMeta{RequestID: observe.NewRequestID(), TenantID: tenantID})
		res, err := svc.Summarize(reqCtx, tenantID, text)
		if err != nil {
			fmt.Fprintf(out, "%s %s: error (%s): %v\n", tenantID, label, summarize.Kind(err), err)
			return
		}
		fmt.Fprintf(out, "%s %s: %s\n", tenantID, label, res.Summary)
	}

	for _, id := range demoTenants {
		call(id, "first")
		call(id, "second")
	}
	call("unknown-tenant", "expected failure")
}
