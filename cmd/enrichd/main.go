// Command enrichd serves and exercises the multi-tenant summarizer.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "enrichd",
		Short:         "Multi-tenant text summarization service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (defaults built in)")

	root.AddCommand(
		newServeCmd(&configPath),
		newSummarizeCmd(&configPath),
		newDemoCmd(&configPath),
	)
	return root
}
