package domain

import "time"

// Config mirrors ~/.sky-health/config.yaml.
//
// Only where and how the checks look is configurable. The checklist and its
// thresholds are fixed.
type Config struct {
	GatewayProcess      string          `yaml:"gateway_process"`
	GatewayCLI          string          `yaml:"gateway_cli"`
	DiskMount           string          `yaml:"disk_mount"`
	CheckTimeoutSeconds int             `yaml:"check_timeout_seconds"`
	Parallel            bool            `yaml:"parallel"`
	MaxParallel         int             `yaml:"max_parallel"`
	Logging             LoggingSettings `yaml:"logging"`
	Tracing             string          `yaml:"tracing"`
}

// LoggingSettings controls diagnostic output on stderr.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// CheckTimeout returns the per-check deadline.
func (c Config) CheckTimeout() time.Duration {
	if c.CheckTimeoutSeconds <= 0 {
		return DefaultCheckTimeout
	}
	return time.Duration(c.CheckTimeoutSeconds) * time.Second
}
