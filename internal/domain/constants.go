package domain

import "time"

// Check names, in registry order.
const (
	CheckGateway     = "Clawdbot Gateway"
	CheckIntegration = "WhatsApp"
	CheckContainers  = "Docker"
	CheckVPN         = "Tailscale"
	CheckDisk        = "Disk Space"
	CheckMemory      = "Memory"
)

// Thresholds
const (
	// DiskCriticalPercent fails the disk check when usage is above it.
	DiskCriticalPercent = 90
	// DiskWarningPercent flags the disk check as degraded when usage is above it.
	DiskWarningPercent = 80
	// MemoryLowMB fails the memory check when free memory is below it.
	MemoryLowMB = 500
)

// Detail strings shared between probes and the runner.
const (
	DetailUnknown  = "unknown"
	DetailError    = "error"
	DetailTimedOut = "timed out"
)

// Timeout and duration constants
const (
	// DefaultCheckTimeout bounds a single probe, including its command.
	DefaultCheckTimeout = 5 * time.Second
)

// Config defaults
const (
	DefaultGatewayProcess = "clawdbot"
	DefaultGatewayCLI     = "clawdbot"
	DefaultDiskMount      = "/"
	DefaultLogLevel       = "warn"
	DefaultLogFormat      = "text"
	DefaultTracing        = "none"
)

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// PublicFilePermissions is the permission for files other tools read (rw-r--r--)
	PublicFilePermissions = 0o644
)
