package probes

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/doeshing/sky-health/internal/domain"
	"github.com/doeshing/sky-health/internal/ports"
)

const bytesPerMB = 1024 * 1024

var pageSizePattern = regexp.MustCompile(`page size of (\d+) bytes`)

// memoryCheck reads free memory from vm_stat on darwin and from the kernel
// reader elsewhere.
func memoryCheck(runner ports.CommandRunner, reader ports.FreeMemoryReader, goos string) observeFunc {
	return func(ctx context.Context) (domain.CheckResult, error) {
		var (
			free uint64
			err  error
		)
		switch {
		case goos == "darwin":
			free, err = vmStatFreeBytes(ctx, runner)
		case reader != nil:
			free, err = reader.FreeBytes(ctx)
		default:
			err = domain.NewProbeError(domain.FailureCommandUnavailable, "memory", fmt.Errorf("no memory source for %s", goos))
		}
		if err != nil {
			return domain.CheckResult{}, err
		}
		return ClassifyMemory(free), nil
	}
}

func vmStatFreeBytes(ctx context.Context, runner ports.CommandRunner) (uint64, error) {
	res, err := runner.Run(ctx, "vm_stat")
	if err != nil {
		return 0, err
	}
	return ParseVMStat(res.Stdout, uint64(os.Getpagesize()))
}

// ParseVMStat returns free bytes from vm_stat output: the "Pages free" count
// times the page size announced in the header, or defaultPageSize when the
// header does not state one.
func ParseVMStat(output string, defaultPageSize uint64) (uint64, error) {
	pageSize := defaultPageSize
	if m := pageSizePattern.FindStringSubmatch(output); m != nil {
		if n, err := strconv.ParseUint(m[1], 10, 64); err == nil && n > 0 {
			pageSize = n
		}
	}
	if pageSize == 0 {
		return 0, domain.ParseError("vm_stat", "unknown page size")
	}

	for _, line := range strings.Split(output, "\n") {
		label, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(label) != "Pages free" {
			continue
		}
		value = strings.TrimSuffix(strings.TrimSpace(value), ".")
		pages, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return 0, domain.ParseError("vm_stat", "invalid free page count %q", value)
		}
		if pages > ^uint64(0)/pageSize {
			return 0, domain.ParseError("vm_stat", "free page count out of range: %d", pages)
		}
		return pages * pageSize, nil
	}
	return 0, domain.ParseError("vm_stat", "no \"Pages free\" line in output")
}

// ClassifyMemory fails the check when less than the low-memory threshold is free.
// The threshold is compared before rounding, so 499.6MB reads "500MB free - LOW".
func ClassifyMemory(freeBytes uint64) domain.CheckResult {
	mb := float64(freeBytes) / bytesPerMB
	detail := fmt.Sprintf("%.0fMB free", mb)
	if mb < domain.MemoryLowMB {
		return domain.CheckResult{OK: false, Detail: detail + " - LOW"}
	}
	return domain.CheckResult{OK: true, Detail: detail}
}
