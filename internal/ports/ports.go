// Package ports defines the interfaces between the health-check core and the
// host it inspects.
//
// Probes never call os/exec or read /proc directly. They go through a
// CommandRunner or a FreeMemoryReader so the check registry can be exercised
// against canned output in tests.
package ports

import (
	"context"

	"github.com/doeshing/sky-health/internal/domain"
)

// CommandRunner executes one external command without a shell.
//
// On failure the returned error is a *domain.ProbeError, and the result still
// carries whatever the command printed before it failed.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (domain.ExecutionResult, error)
}

// FreeMemoryReader reports free physical memory in bytes on platforms where
// it is read from the kernel rather than from a command.
type FreeMemoryReader interface {
	FreeBytes(ctx context.Context) (uint64, error)
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stderr, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
