package app

import (
	"context"
	"io"
	"runtime"
	"strings"

	"github.com/doeshing/sky-health/internal/application/probes"
	"github.com/doeshing/sky-health/internal/application/runner"
	"github.com/doeshing/sky-health/internal/domain"
	"github.com/doeshing/sky-health/internal/infrastructure/config"
	"github.com/doeshing/sky-health/internal/infrastructure/executor"
	"github.com/doeshing/sky-health/internal/infrastructure/meminfo"
	"github.com/doeshing/sky-health/internal/infrastructure/telemetry"
	"github.com/doeshing/sky-health/internal/pkg/logger"
	"github.com/doeshing/sky-health/internal/ports"
)

// Options selects the config file and, in tests, replaces host adapters.
type Options struct {
	ConfigPath string
	Verbose    bool

	// Runner defaults to the local executor.
	Runner ports.CommandRunner
	// Memory defaults to /proc/meminfo on linux.
	Memory ports.FreeMemoryReader
	// GOOS defaults to runtime.GOOS.
	GOOS string
	// LogOutput and TraceOutput default to stderr.
	LogOutput   io.Writer
	TraceOutput io.Writer
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Logger        ports.Logger
	Registry      []domain.CheckDefinition
	HealthService *runner.Service

	debugLogging    bool
	shutdownTracing telemetry.ShutdownFunc
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if opts.Verbose {
		level = "debug"
	}
	log := logger.New(logger.Options{Level: level, Format: cfg.Logging.Format, Output: opts.LogOutput})

	tp, shutdown, err := telemetry.NewTracerProvider(cfg.Tracing, opts.TraceOutput)
	if err != nil {
		return nil, err
	}

	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	cmdRunner := opts.Runner
	if cmdRunner == nil {
		cmdRunner = executor.NewLocalExecutor()
	}
	memReader := opts.Memory
	if memReader == nil && goos == "linux" {
		memReader = meminfo.NewProcReader("")
	}

	registry, err := probes.NewRegistry(probes.Deps{
		Runner: cmdRunner,
		Memory: memReader,
		Logger: log,
		GOOS:   goos,
	}, cfg)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	healthService := &runner.Service{
		Logger:      log,
		Tracer:      tp.Tracer("github.com/doeshing/sky-health/internal/application/runner"),
		Timeout:     cfg.CheckTimeout(),
		Parallel:    cfg.Parallel,
		MaxParallel: cfg.MaxParallel,
	}

	log.Debug("container ready", map[string]interface{}{
		"config":   cfgLoader.Path(),
		"goos":     goos,
		"parallel": cfg.Parallel,
		"tracing":  cfg.Tracing,
	})

	return &Container{
		Logger:          log,
		Registry:        registry,
		HealthService:   healthService,
		debugLogging:    isDebugLevel(level),
		shutdownTracing: shutdown,
	}, nil
}

// DebugLogging reports whether check goroutines may write to the log output
// while a run is in flight.
func (c *Container) DebugLogging() bool {
	return c.debugLogging
}

func isDebugLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return true
	default:
		return false
	}
}

// Close flushes telemetry.
func (c *Container) Close(ctx context.Context) error {
	if c.shutdownTracing == nil {
		return nil
	}
	return c.shutdownTracing(ctx)
}
