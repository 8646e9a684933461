// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/pagekit/adapters/clock"
	"github.com/artpar/pagekit/adapters/idgen"
	"github.com/artpar/pagekit/adapters/memory"
	"github.com/artpar/pagekit/adapters/metrics"
	"github.com/artpar/pagekit/adapters/remote"
	"github.com/artpar/pagekit/adapters/sqlite"
	"github.com/artpar/pagekit/config"
	"github.com/artpar/pagekit/core/endpoint"
	"github.com/artpar/pagekit/core/selectconf"
	"github.com/artpar/pagekit/ports"
	"github.com/artpar/pagekit/web"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	DB         *sqlite.DB
	Metrics    *metrics.Collector
	HTTPServer *http.Server
	Holder     *config.Holder

	// handler is swapped atomically on config reload.
	handler atomic.Pointer[http.Handler]
}

// New creates and initializes the application from a loaded configuration.
func New(cfg *config.Config) (*App, error) {
	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("initializing pagekit")

	a := &App{Logger: logger}

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
		logger.Info().Str("path", cfg.Metrics.Path).Msg("prometheus metrics enabled")
	}

	if err := a.rebuild(cfg); err != nil {
		return nil, err
	}

	a.HTTPServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      http.HandlerFunc(a.serveHTTP),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return a, nil
}

// NewWithHotReload creates the application from a config file and watches it
// for changes. Edits to resources, selects, or the edit lock take effect
// without a restart; server address changes still need one.
func NewWithHotReload(path string) (*App, error) {
	bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	holder, err := config.NewHolder(path, bootLogger)
	if err != nil {
		return nil, err
	}

	a, err := New(holder.Get())
	if err != nil {
		return nil, err
	}
	a.Holder = holder

	holder.OnChange(func(cfg *config.Config) {
		if err := a.rebuild(cfg); err != nil {
			a.Logger.Error().Err(err).Msg("config reload rejected, keeping old wiring")
			if a.Metrics != nil {
				a.Metrics.ConfigReloadErrors.Inc()
			}
			return
		}
		if a.Metrics != nil {
			a.Metrics.ConfigReloads.Inc()
		}
		a.Logger.Info().Msg("rewired resources from new config")
	})

	if err := holder.WatchFile(); err != nil {
		a.Logger.Warn().Err(err).Msg("config file watch unavailable")
	}
	holder.WatchSignals()

	return a, nil
}

// rebuild constructs the full route table for a configuration and swaps it in.
func (a *App) rebuild(cfg *config.Config) error {
	endpoints, err := buildEndpoints(cfg.Resources)
	if err != nil {
		return fmt.Errorf("build endpoints: %w", err)
	}

	stores, err := a.buildStores(cfg, endpoints)
	if err != nil {
		return fmt.Errorf("build stores: %w", err)
	}

	selects := selectconf.NewRegistry()
	for name, sc := range cfg.Selects {
		selects.Register(name, sc)
	}

	bindings := make([]*web.Binding, len(cfg.Resources))
	for i, rc := range cfg.Resources {
		bindings[i] = &web.Binding{
			Endpoint: endpoints[rc.Name],
			Store:    stores[rc.Name],
			Fields:   rc.Fields,
		}
	}

	handler, err := web.NewHandler(web.Deps{
		Bindings:         bindings,
		Selects:          selects,
		Metrics:          a.Metrics,
		Logger:           a.Logger,
		EditPasswordHash: cfg.EditLock.PasswordHash,
		MetricsEnabled:   cfg.Metrics.Enabled,
		MetricsPath:      cfg.Metrics.Path,
	})
	if err != nil {
		return fmt.Errorf("build web handler: %w", err)
	}

	var h http.Handler = handler.Router()
	a.handler.Store(&h)
	return nil
}

func (a *App) serveHTTP(w http.ResponseWriter, r *http.Request) {
	(*a.handler.Load()).ServeHTTP(w, r)
}

// buildEndpoints turns resource declarations into linked descriptors.
func buildEndpoints(resources []config.ResourceConfig) (map[string]*endpoint.Descriptor, error) {
	byName := make(map[string]*endpoint.Descriptor, len(resources))
	for _, rc := range resources {
		byName[rc.Name] = &endpoint.Descriptor{
			Name:       rc.Name,
			LabelField: rc.LabelField,
		}
	}
	for _, rc := range resources {
		if rc.Parent == "" {
			continue
		}
		parent, ok := byName[rc.Parent]
		if !ok {
			return nil, fmt.Errorf("resource %q: unknown parent %q", rc.Name, rc.Parent)
		}
		byName[rc.Name].Parent = parent
	}
	for _, ep := range byName {
		if err := ep.Validate(); err != nil {
			return nil, err
		}
	}
	return byName, nil
}

// buildStores picks a collection store per resource. A configured backend URL
// wins over local storage.
func (a *App) buildStores(cfg *config.Config, endpoints map[string]*endpoint.Descriptor) (map[string]ports.Collection, error) {
	stores := make(map[string]ports.Collection, len(endpoints))

	if cfg.Backend.URL != "" {
		client := remote.NewClient(remote.ClientConfig{
			BaseURL: cfg.Backend.URL,
			APIKey:  cfg.Backend.APIKey,
			Timeout: cfg.Backend.Timeout,
			Headers: cfg.Backend.Headers,
		})
		for name, ep := range endpoints {
			stores[name] = client.Resource("/" + ep.Plural())
		}
		a.Logger.Info().Str("url", cfg.Backend.URL).Msg("using remote backend")
		return stores, nil
	}

	switch cfg.Database.Driver {
	case "memory":
		for name := range endpoints {
			stores[name] = memory.NewResourceStore(idgen.UUID{})
		}
	case "sqlite":
		if a.DB == nil {
			db, err := sqlite.Open(cfg.Database.DSN)
			if err != nil {
				return nil, err
			}
			if err := db.Migrate(); err != nil {
				db.Close()
				return nil, err
			}
			a.DB = db
			a.Logger.Info().Str("dsn", cfg.Database.DSN).Msg("database ready")
		}
		for name, ep := range endpoints {
			stores[name] = sqlite.NewResourceStore(a.DB, ep.Plural(), idgen.UUID{}, clock.Real{})
		}
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
	return stores, nil
}

// Run starts the HTTP server and blocks until it stops.
func (a *App) Run() error {
	a.Logger.Info().Str("addr", a.HTTPServer.Addr).Msg("server listening")
	if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info().Msg("shutting down")

	if a.Holder != nil {
		a.Holder.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := a.HTTPServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}
	return nil
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
