package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "casewatch",
		Short:        "Report case filtering service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(compileCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
