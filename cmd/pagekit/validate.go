package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/pagekit/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Configuration invalid: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Configuration valid")
		fmt.Printf("  Resources: %d\n", len(cfg.Resources))
		for _, r := range cfg.Resources {
			if r.Parent != "" {
				fmt.Printf("    %s (parent: %s, %d fields)\n", r.Name, r.Parent, len(r.Fields))
			} else {
				fmt.Printf("    %s (%d fields)\n", r.Name, len(r.Fields))
			}
		}
		fmt.Printf("  Selects: %d\n", len(cfg.Selects))
		if cfg.Backend.URL != "" {
			fmt.Printf("  Backend: %s\n", cfg.Backend.URL)
		} else {
			fmt.Printf("  Storage: %s\n", cfg.Database.Driver)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
