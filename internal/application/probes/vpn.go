package probes

import (
	"context"
	"strings"

	"github.com/doeshing/sky-health/internal/domain"
	"github.com/doeshing/sky-health/internal/ports"
)

var vpnFallback = domain.CheckResult{OK: false, Detail: "not installed"}

// vpnCheck reads the first line of `tailscale status`. The client exits
// non-zero when stopped, so the output is inspected before the error.
func vpnCheck(runner ports.CommandRunner) observeFunc {
	return func(ctx context.Context) (domain.CheckResult, error) {
		res, err := runner.Run(ctx, "tailscale", "status")
		if ParseTailscaleStopped(res.Stdout) {
			return domain.CheckResult{OK: false, Detail: "stopped"}, nil
		}
		if err != nil {
			return domain.CheckResult{}, err
		}
		return domain.CheckResult{OK: true, Detail: "connected"}, nil
	}
}

// ParseTailscaleStopped reports whether the first line of a status report
// says the client is stopped.
func ParseTailscaleStopped(output string) bool {
	first, _, _ := strings.Cut(strings.TrimLeft(output, "\r\n"), "\n")
	return strings.Contains(strings.ToLower(first), "stopped")
}
