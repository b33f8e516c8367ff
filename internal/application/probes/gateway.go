package probes

import (
	"context"
	"strings"

	"github.com/doeshing/sky-health/internal/domain"
	"github.com/doeshing/sky-health/internal/ports"
)

var (
	gatewayFallback     = domain.CheckResult{OK: false, Detail: "not running"}
	integrationFallback = domain.CheckResult{OK: false, Detail: domain.DetailUnknown}
)

// gatewayCheck looks the gateway up in the process table. pgrep exits 1 when
// nothing matches, which lands on the fallback like any other failure.
func gatewayCheck(runner ports.CommandRunner, process string) observeFunc {
	return func(ctx context.Context) (domain.CheckResult, error) {
		if _, err := runner.Run(ctx, "pgrep", "-f", process); err != nil {
			return domain.CheckResult{}, err
		}
		return domain.CheckResult{OK: true, Detail: "running"}, nil
	}
}

// integrationCheck reads the gateway's status report and looks for the
// WhatsApp channel line in it.
func integrationCheck(runner ports.CommandRunner, cli string) observeFunc {
	return func(ctx context.Context) (domain.CheckResult, error) {
		res, err := runner.Run(ctx, cli, "status")
		// A failing status command may still have printed the channel table.
		if err != nil && domain.KindOf(err) != domain.FailureCommandFailed {
			return domain.CheckResult{}, err
		}
		connected, perr := ParseIntegrationStatus(res.Combined())
		if perr != nil {
			return domain.CheckResult{}, perr
		}
		if connected {
			return domain.CheckResult{OK: true, Detail: "connected"}, nil
		}
		return domain.CheckResult{OK: false, Detail: "disconnected"}, nil
	}
}

// ParseIntegrationStatus collects every line mentioning whatsapp and reports
// whether any of them carries the OK marker. Status reports may print a
// header or plugin line before the channel line. A report without any such
// line is a parse failure.
func ParseIntegrationStatus(output string) (bool, error) {
	matched := false
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(strings.ToLower(line), "whatsapp") {
			continue
		}
		if strings.Contains(line, "OK") {
			return true, nil
		}
		matched = true
	}
	if !matched {
		return false, domain.ParseError("status", "no whatsapp line in %d bytes of output", len(output))
	}
	return false, nil
}
