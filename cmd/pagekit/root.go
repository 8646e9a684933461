package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pagekit",
	Short: "Server-rendered admin pages for hierarchical resources",
	Long: `PageKit serves list and detail pages for a set of configured
resources, with breadcrumb navigation through parent/child hierarchies.

Resources, form fields, and select options are declared in pagekit.yaml.
Items live in a local SQLite database, in memory, or behind a remote
REST backend.

Quick start:
  pagekit serve     # Start the server
  pagekit validate  # Check the configuration
  pagekit hash      # Hash an edit-lock password`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "pagekit.yaml", "config file path")
}
