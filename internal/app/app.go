// Package app wires the storage backend and the typed surfaces together and
// holds the user-level configuration.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/avdeev/apilab/internal/history"
	"github.com/avdeev/apilab/internal/progress"
	httpclient "github.com/avdeev/apilab/internal/protocol/http"
	"github.com/avdeev/apilab/internal/runner"
	"github.com/avdeev/apilab/internal/storage"
	"github.com/avdeev/apilab/internal/storage/filesystem"
	"github.com/avdeev/apilab/internal/storage/sqlite"
	"gopkg.in/yaml.v3"
)

// Backend names accepted in the configuration.
const (
	BackendFilesystem = "filesystem"
	BackendSQLite     = "sqlite"
)

// Config holds user-level settings.
type Config struct {
	DataDir        string `yaml:"data_dir"`
	Backend        string `yaml:"backend"`
	BaseOrigin     string `yaml:"base_origin"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// DefaultConfig returns the defaults used when no config file exists.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:        filepath.Join(home, ".apilab"),
		Backend:        BackendFilesystem,
		BaseOrigin:     "http://localhost:3000",
		TimeoutSeconds: 30,
	}
}

// LoadConfig reads the config file at path, falling back to defaults for an
// absent file and for any unset field.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	defaults := DefaultConfig()
	if cfg.DataDir == "" {
		cfg.DataDir = defaults.DataDir
	}
	if cfg.Backend == "" {
		cfg.Backend = defaults.Backend
	}
	if cfg.BaseOrigin == "" {
		cfg.BaseOrigin = defaults.BaseOrigin
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = defaults.TimeoutSeconds
	}
	return cfg, nil
}

// DefaultConfigPath is where LoadConfig looks unless overridden.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".apilab", "config.yaml")
}

// Timeout returns the configured request timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// App is the assembled application: one storage backend and the typed
// surfaces over it.
type App struct {
	config Config
	kv     storage.KV

	Collections  *storage.CollectionStore
	Environments *storage.EnvironmentStore
	History      *history.Store
	Progress     *progress.Store
}

// New opens the configured backend and builds the surfaces.
func New(cfg Config) (*App, error) {
	kv, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		config:       cfg,
		kv:           kv,
		Collections:  storage.NewCollectionStore(kv),
		Environments: storage.NewEnvironmentStore(kv),
		History:      history.NewStore(kv),
		Progress:     progress.NewStore(kv),
	}, nil
}

func openBackend(cfg Config) (storage.KV, error) {
	switch cfg.Backend {
	case BackendFilesystem:
		return filesystem.New(cfg.DataDir)
	case BackendSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return sqlite.New(filepath.Join(cfg.DataDir, "apilab.db"))
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

// Config returns the configuration the app was built with.
func (a *App) Config() Config {
	return a.config
}

// Close releases the storage backend.
func (a *App) Close() error {
	return a.kv.Close()
}

// NewSession builds a send session over the app's surfaces. Callers may
// override the client or layer extra variables through runner options.
func (a *App) NewSession(opts ...runner.Option) *runner.Session {
	base := []runner.Option{
		runner.WithClient(httpclient.NewClient(httpclient.WithTimeout(a.config.Timeout()))),
		runner.WithHistory(a.History),
		runner.WithEnvironments(a.Environments),
		runner.WithCollections(a.Collections),
		runner.WithBaseOrigin(a.config.BaseOrigin),
	}
	return runner.NewSession(append(base, opts...)...)
}
