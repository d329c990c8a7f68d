package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/enrichment/observe"
)

func newSummarizeCmd(configPath *string) *cobra.Command {
	var (
		tenantID string
		text     string
	)

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize text once for a tenant and print the JSON result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if text == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}

			cfg, err := loadConfig(ctx, *configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a, err := newApp(ctx, cfg, cmd.ErrOrStderr(), nil)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(context.Background()) }()

			ctx = observe.WithRequest(ctx, observe.RequestMeta{RequestID: observe.NewRequestID(), TenantID: tenantID})
			res, err := a.svc.Summarize(ctx, tenantID, text)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringVarP(&tenantID, "tenant", "t", "", "tenant id")
	cmd.Flags().StringVar(&text, "text", "", `text to summarize, or "-" for stdin`)
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}
