package meminfo

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/procfs"

	"github.com/doeshing/sky-health/internal/domain"
	"github.com/doeshing/sky-health/internal/ports"
)

const meminfoSource = "/proc/meminfo"

// ProcReader reads MemFree from a procfs mount.
type ProcReader struct {
	mountPoint string
}

// NewProcReader builds a reader over mountPoint; empty means /proc.
func NewProcReader(mountPoint string) *ProcReader {
	if mountPoint == "" {
		mountPoint = procfs.DefaultMountPoint
	}
	return &ProcReader{mountPoint: mountPoint}
}

// FreeBytes implements ports.FreeMemoryReader.
func (r *ProcReader) FreeBytes(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.NewProbeError(domain.FailureCommandTimedOut, meminfoSource, err)
	}
	fs, err := procfs.NewFS(r.mountPoint)
	if err != nil {
		return 0, domain.NewProbeError(domain.FailureCommandUnavailable, meminfoSource, err)
	}
	info, err := fs.Meminfo()
	if err != nil {
		return 0, domain.NewProbeError(domain.FailureParse, meminfoSource, err)
	}
	if info.MemFree == nil {
		return 0, domain.NewProbeError(domain.FailureParse, meminfoSource, errors.New("MemFree missing"))
	}
	// procfs reports MemFree in kB.
	kb := *info.MemFree
	if kb > ^uint64(0)/1024 {
		return 0, domain.NewProbeError(domain.FailureParse, meminfoSource, fmt.Errorf("MemFree out of range: %d", kb))
	}
	return kb * 1024, nil
}

var _ ports.FreeMemoryReader = (*ProcReader)(nil)
