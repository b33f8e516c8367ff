package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/sky-health/assets"
	"github.com/doeshing/sky-health/internal/domain"
	"github.com/doeshing/sky-health/internal/pkg/filesystem"
)

// EnvConfigPath overrides the default config location.
const EnvConfigPath = "SKY_HEALTH_CONFIG"

// FileLoader loads YAML configuration from ~/.sky-health/config.yaml (overridable via SKY_HEALTH_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load reads the config file over the defaults. A missing file yields the defaults;
// the loader never writes to disk.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return domain.Config{}, err
	}

	path := l.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return domain.Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	// Keys absent from the file keep their default values.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	return hydrateDefaults(cfg), nil
}

// Path returns the file Load reads.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandHome(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandHome(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".sky-health", "config.yaml")
}

// Defaults decodes the embedded default configuration.
func Defaults() (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse embedded defaults: %w", err)
	}
	return hydrateDefaults(cfg), nil
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if strings.TrimSpace(cfg.GatewayProcess) == "" {
		cfg.GatewayProcess = domain.DefaultGatewayProcess
	}
	if strings.TrimSpace(cfg.GatewayCLI) == "" {
		cfg.GatewayCLI = domain.DefaultGatewayCLI
	}
	if strings.TrimSpace(cfg.DiskMount) == "" {
		cfg.DiskMount = domain.DefaultDiskMount
	}
	if cfg.CheckTimeoutSeconds <= 0 {
		cfg.CheckTimeoutSeconds = int(domain.DefaultCheckTimeout.Seconds())
	}
	if cfg.MaxParallel < 0 {
		cfg.MaxParallel = 0
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = domain.DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = domain.DefaultLogFormat
	}
	if cfg.Tracing == "" {
		cfg.Tracing = domain.DefaultTracing
	}
	return cfg
}
