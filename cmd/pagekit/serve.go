package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/artpar/pagekit/bootstrap"
	"github.com/artpar/pagekit/config"
)

var (
	hotReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the PageKit server",
	Long: `Start the PageKit server.

The server will:
  - Load configuration from pagekit.yaml (or --config)
  - Open the configured storage backend
  - Serve list and detail pages for every configured resource

Environment variables (for Docker deployments):
  PAGEKIT_SERVER_PORT         - Server port (default: 8080)
  PAGEKIT_DATABASE_DRIVER     - Storage driver: sqlite or memory
  PAGEKIT_DATABASE_DSN        - SQLite database path (default: pagekit.db)
  PAGEKIT_BACKEND_URL         - Remote REST backend (overrides local storage)
  PAGEKIT_EDIT_PASSWORD_HASH  - Bcrypt hash guarding mutating pages
  PAGEKIT_LOG_LEVEL           - Log level: debug, info, warn, error

Examples:
  pagekit serve
  pagekit serve --config /etc/pagekit/config.yaml
  pagekit serve --hot-reload=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	var app *bootstrap.App
	var err error

	if hotReload {
		app, err = bootstrap.NewWithHotReload(cfgFile)
	} else {
		var cfg *config.Config
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		app, err = bootstrap.New(cfg)
	}
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Run()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		app.Logger.Info().Str("signal", sig.String()).Msg("signal received")
		return app.Shutdown(context.Background())
	}
}
