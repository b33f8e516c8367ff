// Package domain defines the core entities of sky-health.
//
// A run evaluates a fixed, ordered list of CheckDefinitions and folds their
// CheckResults into one HealthReport. Nothing in this package touches the
// operating system; probes reach the host through the ports package.
package domain

import (
	"context"
	"time"
)

// CheckResult is the normalized outcome of one probe invocation.
type CheckResult struct {
	OK     bool   `json:"ok"`
	Detail string `json:"detail"`
}

// Probe inspects one aspect of host health. A Probe must always return a
// result; failures are folded into the result rather than returned.
type Probe func(ctx context.Context) CheckResult

// CheckDefinition pairs a probe with its display name and failure policy.
type CheckDefinition struct {
	Name  string
	Probe Probe
	// Fallback is reported when the probe cannot observe its target.
	// Fallback.OK decides whether the check fails open or closed.
	Fallback CheckResult
}

// FailsOpen reports whether an unobservable target counts as healthy.
func (d CheckDefinition) FailsOpen() bool {
	return d.Fallback.OK
}

// NamedCheckResult is a CheckResult attributed to the check that produced it.
type NamedCheckResult struct {
	Name     string        `json:"name"`
	OK       bool          `json:"ok"`
	Detail   string        `json:"detail"`
	Duration time.Duration `json:"-"`
}

// HealthReport aggregates a full run in registry order.
type HealthReport struct {
	OverallOK bool               `json:"ok"`
	Results   []NamedCheckResult `json:"services"`
}

// NewHealthReport builds a report whose OverallOK is the AND of every result.
// An empty result set is never healthy.
func NewHealthReport(results []NamedCheckResult) HealthReport {
	return HealthReport{
		OverallOK: AllOK(results),
		Results:   results,
	}
}

// AllOK folds the ok flags of results with logical AND.
func AllOK(results []NamedCheckResult) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if !r.OK {
			return false
		}
	}
	return true
}

// Failed returns the results whose check did not pass, preserving order.
func (r HealthReport) Failed() []NamedCheckResult {
	var failed []NamedCheckResult
	for _, res := range r.Results {
		if !res.OK {
			failed = append(failed, res)
		}
	}
	return failed
}
