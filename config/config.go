// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig              `yaml:"server"`
	Backend   BackendConfig             `yaml:"backend"`
	Database  DatabaseConfig            `yaml:"database"`
	EditLock  EditLockConfig            `yaml:"edit_lock"`
	Resources []ResourceConfig          `yaml:"resources"`
	Selects   map[string]map[string]any `yaml:"selects"`
	Logging   LoggingConfig             `yaml:"logging"`
	Metrics   MetricsConfig             `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// BackendConfig configures an optional remote REST backend. When URL is set,
// resources are read and written through it instead of the local database.
type BackendConfig struct {
	URL     string            `yaml:"url,omitempty"`
	APIKey  string            `yaml:"api_key,omitempty"`
	Timeout time.Duration     `yaml:"timeout,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// DatabaseConfig configures local storage.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "memory"
	DSN    string `yaml:"dsn"`
}

// EditLockConfig guards mutating pages behind a shared password.
// PasswordHash is a bcrypt hash; when empty, editing is open.
type EditLockConfig struct {
	PasswordHash string `yaml:"password_hash,omitempty"`
}

// ResourceConfig declares one resource type and its place in the hierarchy.
type ResourceConfig struct {
	Name       string        `yaml:"name"`
	Parent     string        `yaml:"parent,omitempty"`
	LabelField string        `yaml:"label_field,omitempty"`
	Fields     []FieldConfig `yaml:"fields"`
}

// FieldConfig declares one form field of a resource.
type FieldConfig struct {
	Name     string         `yaml:"name"`
	Label    string         `yaml:"label,omitempty"`
	Widget   string         `yaml:"widget,omitempty"` // "text", "textarea", "select"
	Select   string         `yaml:"select,omitempty"` // named select config
	Options  map[string]any `yaml:"options,omitempty"`
	Required bool           `yaml:"required,omitempty"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads and validates configuration from a YAML file. Environment
// variables referenced in the file are expanded, and PAGEKIT_* variables
// override individual settings.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies PAGEKIT_* environment variables on top of the
// parsed file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PAGEKIT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PAGEKIT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PAGEKIT_BACKEND_URL"); v != "" {
		cfg.Backend.URL = v
	}
	if v := os.Getenv("PAGEKIT_BACKEND_API_KEY"); v != "" {
		cfg.Backend.APIKey = v
	}
	if v := os.Getenv("PAGEKIT_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("PAGEKIT_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("PAGEKIT_EDIT_PASSWORD_HASH"); v != "" {
		cfg.EditLock.PasswordHash = v
	}
	if v := os.Getenv("PAGEKIT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PAGEKIT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "pagekit.db"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	for i := range cfg.Resources {
		if cfg.Resources[i].LabelField == "" {
			cfg.Resources[i].LabelField = "name"
		}
		for j := range cfg.Resources[i].Fields {
			f := &cfg.Resources[i].Fields[j]
			if f.Widget == "" {
				f.Widget = "text"
			}
		}
	}
}

func validate(cfg *Config) error {
	switch cfg.Database.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("database.driver must be sqlite or memory, got %q", cfg.Database.Driver)
	}

	switch cfg.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", cfg.Logging.Format)
	}

	byName := make(map[string]*ResourceConfig, len(cfg.Resources))
	for i := range cfg.Resources {
		r := &cfg.Resources[i]
		if r.Name == "" {
			return fmt.Errorf("resource %d: name is required", i)
		}
		if _, dup := byName[r.Name]; dup {
			return fmt.Errorf("resource %q declared twice", r.Name)
		}
		byName[r.Name] = r
	}

	for _, r := range cfg.Resources {
		if r.Parent == "" {
			continue
		}
		if _, ok := byName[r.Parent]; !ok {
			return fmt.Errorf("resource %q: unknown parent %q", r.Name, r.Parent)
		}
		// Walk the chain to reject cycles.
		seen := map[string]bool{r.Name: true}
		for p := byName[r.Parent]; p != nil; {
			if seen[p.Name] {
				return fmt.Errorf("resource %q: parent chain contains a cycle at %q", r.Name, p.Name)
			}
			seen[p.Name] = true
			if p.Parent == "" {
				break
			}
			p = byName[p.Parent]
		}
	}

	for _, r := range cfg.Resources {
		for _, f := range r.Fields {
			if f.Select != "" {
				if _, ok := cfg.Selects[f.Select]; !ok {
					return fmt.Errorf("resource %q field %q: unknown select %q", r.Name, f.Name, f.Select)
				}
			}
		}
	}

	return nil
}
