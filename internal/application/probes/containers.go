package probes

import (
	"context"
	"fmt"
	"strings"

	"github.com/doeshing/sky-health/internal/domain"
	"github.com/doeshing/sky-health/internal/ports"
)

var containersFallback = domain.CheckResult{OK: false, Detail: "not running"}

func containersCheck(runner ports.CommandRunner) observeFunc {
	return func(ctx context.Context) (domain.CheckResult, error) {
		res, err := runner.Run(ctx, "docker", "ps", "-q")
		if err != nil {
			return domain.CheckResult{}, err
		}
		count := ParseContainerCount(res.Stdout)
		return domain.CheckResult{OK: count > 0, Detail: fmt.Sprintf("%d containers", count)}, nil
	}
}

// ParseContainerCount counts the container IDs printed by `docker ps -q`.
func ParseContainerCount(output string) int {
	count := 0
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}
