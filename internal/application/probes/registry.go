// Package probes defines the fixed checklist sky-health evaluates.
//
// Every check follows the same shape: an observe function that may fail with
// a typed *domain.ProbeError, and a probe boundary that resolves any such
// failure to the check's fallback result. Whether a check fails open or closed
// is carried by its fallback, not decided by the runner.
package probes

import (
	"context"
	"errors"
	"runtime"

	"github.com/doeshing/sky-health/internal/domain"
	"github.com/doeshing/sky-health/internal/ports"
)

// Deps are the host collaborators the checks read from.
type Deps struct {
	Runner ports.CommandRunner
	// Memory is used where free memory comes from the kernel instead of vm_stat.
	Memory ports.FreeMemoryReader
	Logger ports.Logger
	// GOOS selects the memory source; empty means runtime.GOOS.
	GOOS string
}

// NewRegistry returns the checklist in its fixed display order.
func NewRegistry(deps Deps, cfg domain.Config) ([]domain.CheckDefinition, error) {
	if deps.Runner == nil {
		return nil, errors.New("probes: command runner is required")
	}
	goos := deps.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	log := deps.Logger

	defs := []domain.CheckDefinition{
		define(domain.CheckGateway, gatewayFallback, log, gatewayCheck(deps.Runner, cfg.GatewayProcess)),
		define(domain.CheckIntegration, integrationFallback, log, integrationCheck(deps.Runner, cfg.GatewayCLI)),
		define(domain.CheckContainers, containersFallback, log, containersCheck(deps.Runner)),
		define(domain.CheckVPN, vpnFallback, log, vpnCheck(deps.Runner)),
		define(domain.CheckDisk, failOpen, log, diskCheck(deps.Runner, cfg.DiskMount)),
		define(domain.CheckMemory, failOpen, log, memoryCheck(deps.Runner, deps.Memory, goos)),
	}
	if err := domain.ValidateRegistry(defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// failOpen is the fallback of checks that must never block overall health
// just because a measurement could not be taken.
var failOpen = domain.CheckResult{OK: true, Detail: domain.DetailUnknown}

type observeFunc func(ctx context.Context) (domain.CheckResult, error)

func define(name string, fallback domain.CheckResult, log ports.Logger, observe observeFunc) domain.CheckDefinition {
	return domain.CheckDefinition{
		Name:     name,
		Fallback: fallback,
		Probe:    contain(name, fallback, log, observe),
	}
}

// contain is the probe boundary: no error leaves it.
func contain(name string, fallback domain.CheckResult, log ports.Logger, observe observeFunc) domain.Probe {
	return func(ctx context.Context) domain.CheckResult {
		result, err := observe(ctx)
		if err == nil {
			return result
		}
		if log != nil {
			log.Debug("check fell back", map[string]interface{}{
				"check":    name,
				"kind":     domain.KindOf(err).String(),
				"error":    err.Error(),
				"fallback": fallback.Detail,
			})
		}
		return fallback
	}
}
