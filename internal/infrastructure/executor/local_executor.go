package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/doeshing/sky-health/internal/domain"
	"github.com/doeshing/sky-health/internal/ports"
)

// defaultWaitDelay bounds how long Run waits for pipes after the process is
// killed, so a grandchild holding stdout cannot stall a probe.
const defaultWaitDelay = time.Second

// LocalExecutor runs commands directly on the host, without a shell.
type LocalExecutor struct {
	lookPath  func(string) (string, error)
	waitDelay time.Duration
}

// NewLocalExecutor builds a new executor.
func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{lookPath: exec.LookPath, waitDelay: defaultWaitDelay}
}

// Run implements ports.CommandRunner.
func (e *LocalExecutor) Run(ctx context.Context, name string, args ...string) (domain.ExecutionResult, error) {
	display := strings.TrimSpace(name + " " + strings.Join(args, " "))

	path, err := e.lookPath(name)
	if err != nil {
		return domain.ExecutionResult{ExitCode: -1}, domain.NewProbeError(domain.FailureCommandUnavailable, display, err)
	}

	c := exec.CommandContext(ctx, path, args...)
	c.WaitDelay = e.waitDelay
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err = c.Run()
	result := domain.ExecutionResult{
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err == nil {
		return result, nil
	}

	result.ExitCode = -1
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, domain.NewProbeError(domain.FailureCommandTimedOut, display, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, domain.NewProbeError(domain.FailureCommandFailed, display, err)
	}
	return result, domain.NewProbeError(domain.FailureCommandUnavailable, display, err)
}

var _ ports.CommandRunner = (*LocalExecutor)(nil)
