package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/doeshing/sky-health/internal/domain"
	"github.com/doeshing/sky-health/internal/ports"
)

const tracerName = "github.com/doeshing/sky-health/internal/application/runner"

// Service evaluates a check registry into a HealthReport.
type Service struct {
	Logger ports.Logger
	Tracer trace.Tracer
	// Timeout bounds each check; zero means domain.DefaultCheckTimeout.
	Timeout time.Duration
	// Parallel runs checks concurrently. Report order is unaffected.
	Parallel bool
	// MaxParallel caps concurrent checks when Parallel is set; zero is unbounded.
	MaxParallel int
}

// Run invokes every check exactly once and folds the results. It never
// fails: a check that panics, hangs past its deadline, or has no probe is
// reported as a failed (or, for fail-open checks, unknown) result.
func (s *Service) Run(ctx context.Context, defs []domain.CheckDefinition) domain.HealthReport {
	runID := uuid.NewString()
	ctx, span := s.tracer().Start(ctx, "health.run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Int("run.checks", len(defs)),
		attribute.Bool("run.parallel", s.Parallel),
	))
	defer span.End()

	start := time.Now()
	results := make([]domain.NamedCheckResult, len(defs))

	if s.Parallel && len(defs) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		if s.MaxParallel > 0 {
			g.SetLimit(s.MaxParallel)
		}
		for i, def := range defs {
			i, def := i, def
			g.Go(func() error {
				results[i] = s.runCheck(gctx, runID, def)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, def := range defs {
			results[i] = s.runCheck(ctx, runID, def)
		}
	}

	report := domain.NewHealthReport(results)
	span.SetAttributes(attribute.Bool("run.ok", report.OverallOK))
	if !report.OverallOK {
		span.SetStatus(codes.Error, fmt.Sprintf("%d of %d checks failed", len(report.Failed()), len(results)))
	}
	s.logDebug("health run complete", map[string]interface{}{
		"run_id":      runID,
		"ok":          report.OverallOK,
		"checks":      len(results),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return report
}

func (s *Service) runCheck(ctx context.Context, runID string, def domain.CheckDefinition) domain.NamedCheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()
	ctx, span := s.tracer().Start(ctx, "check "+def.Name, trace.WithAttributes(
		attribute.String("check.name", def.Name),
		attribute.Bool("check.fails_open", def.FailsOpen()),
	))
	defer span.End()

	start := time.Now()
	result := s.invoke(ctx, runID, def)
	named := domain.NamedCheckResult{
		Name:     def.Name,
		OK:       result.OK,
		Detail:   result.Detail,
		Duration: time.Since(start),
	}

	span.SetAttributes(
		attribute.Bool("check.ok", named.OK),
		attribute.String("check.detail", named.Detail),
	)
	fields := map[string]interface{}{
		"run_id":      runID,
		"check":       named.Name,
		"ok":          named.OK,
		"detail":      named.Detail,
		"duration_ms": named.Duration.Milliseconds(),
	}
	if named.OK {
		s.logDebug("check passed", fields)
	} else {
		span.SetStatus(codes.Error, named.Detail)
		if s.Logger != nil {
			s.Logger.Info("check failed", fields)
		}
	}
	return named
}

// invoke runs the probe on its own goroutine so a probe that ignores its
// context cannot hold the run past the deadline.
func (s *Service) invoke(ctx context.Context, runID string, def domain.CheckDefinition) domain.CheckResult {
	if def.Probe == nil {
		return domain.CheckResult{OK: false, Detail: domain.DetailError}
	}

	resultCh := make(chan domain.CheckResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				if s.Logger != nil {
					s.Logger.Error("check panicked", fmt.Errorf("%v", r), map[string]interface{}{
						"run_id": runID,
						"check":  def.Name,
					})
				}
				resultCh <- domain.CheckResult{OK: false, Detail: domain.DetailError}
			}
		}()
		resultCh <- def.Probe(ctx)
	}()

	select {
	case result := <-resultCh:
		return result
	case <-ctx.Done():
		return timedOut(def)
	}
}

func timedOut(def domain.CheckDefinition) domain.CheckResult {
	if def.FailsOpen() {
		return def.Fallback
	}
	return domain.CheckResult{OK: false, Detail: domain.DetailTimedOut}
}

func (s *Service) timeout() time.Duration {
	if s.Timeout <= 0 {
		return domain.DefaultCheckTimeout
	}
	return s.Timeout
}

func (s *Service) tracer() trace.Tracer {
	if s.Tracer != nil {
		return s.Tracer
	}
	return otel.Tracer(tracerName)
}

func (s *Service) logDebug(msg string, fields map[string]interface{}) {
	if s.Logger != nil {
		s.Logger.Debug(msg, fields)
	}
}
