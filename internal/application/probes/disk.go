package probes

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/doeshing/sky-health/internal/domain"
	"github.com/doeshing/sky-health/internal/ports"
)

// diskCheck reads the used percentage of mount from POSIX-format df output.
func diskCheck(runner ports.CommandRunner, mount string) observeFunc {
	return func(ctx context.Context) (domain.CheckResult, error) {
		res, err := runner.Run(ctx, "df", "-P", mount)
		if err != nil {
			return domain.CheckResult{}, err
		}
		pct, err := ParseDiskUsage(res.Stdout)
		if err != nil {
			return domain.CheckResult{}, err
		}
		return ClassifyDisk(pct), nil
	}
}

// ParseDiskUsage extracts the capacity percentage from the last data line of
// df output. The first field after the filesystem name that ends in "%" is
// taken, so device names with unusual spacing do not shift the column.
func ParseDiskUsage(output string) (int, error) {
	var last string
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) != "" {
			last = line
		}
	}
	fields := strings.Fields(last)
	if len(fields) < 2 {
		return 0, domain.ParseError("df", "no usage line in output")
	}
	for _, field := range fields[1:] {
		raw, ok := strings.CutSuffix(field, "%")
		if !ok {
			continue
		}
		pct, err := strconv.Atoi(raw)
		if err != nil || pct < 0 || pct > 100 {
			return 0, domain.ParseError("df", "invalid capacity %q", field)
		}
		return pct, nil
	}
	return 0, domain.ParseError("df", "no capacity column in %q", last)
}

// ClassifyDisk applies the three-tier usage policy: above the critical
// threshold fails, above the warning threshold passes degraded.
func ClassifyDisk(pct int) domain.CheckResult {
	used := fmt.Sprintf("%d%% used", pct)
	switch {
	case pct > domain.DiskCriticalPercent:
		return domain.CheckResult{OK: false, Detail: used + " - CRITICAL"}
	case pct > domain.DiskWarningPercent:
		return domain.CheckResult{OK: true, Detail: used + " - WARNING"}
	default:
		return domain.CheckResult{OK: true, Detail: used}
	}
}
