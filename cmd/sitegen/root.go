package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sitegen/internal/handlers"
)

var rootCmd = &cobra.Command{
	Use:     "sitegen",
	Short:   "AI website generator API",
	Long:    `sitegen turns a natural-language description into a website using an LLM provider chain and stores the results in PostgreSQL.`,
	Version: handlers.Version,
	// Running the bare binary starts the server.
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, generateCmd)
}
