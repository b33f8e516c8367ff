package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for probe failures. A *ProbeError matches the sentinel of
// its Kind under errors.Is.
var (
	ErrCommandUnavailable = errors.New("command unavailable")
	ErrCommandFailed      = errors.New("command failed")
	ErrCommandTimedOut    = errors.New("command timed out")
	ErrParseFailure       = errors.New("unexpected command output")
)

// Registry validation errors.
var (
	ErrEmptyRegistry  = errors.New("registry has no checks")
	ErrUnnamedCheck   = errors.New("check has no name")
	ErrDuplicateCheck = errors.New("duplicate check name")
	ErrNilProbe       = errors.New("check has no probe")
)

// FailureKind classifies why a probe could not produce a direct observation.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureCommandUnavailable
	FailureCommandFailed
	FailureCommandTimedOut
	FailureParse
)

func (k FailureKind) String() string {
	switch k {
	case FailureCommandUnavailable:
		return "command_unavailable"
	case FailureCommandFailed:
		return "command_failed"
	case FailureCommandTimedOut:
		return "command_timed_out"
	case FailureParse:
		return "parse_failure"
	default:
		return "unknown"
	}
}

func (k FailureKind) sentinel() error {
	switch k {
	case FailureCommandUnavailable:
		return ErrCommandUnavailable
	case FailureCommandFailed:
		return ErrCommandFailed
	case FailureCommandTimedOut:
		return ErrCommandTimedOut
	case FailureParse:
		return ErrParseFailure
	default:
		return nil
	}
}

// ProbeError is the typed failure a probe resolves against its fallback.
type ProbeError struct {
	Kind    FailureKind
	Command string
	Err     error
}

func (e *ProbeError) Error() string {
	var b strings.Builder
	if e.Command != "" {
		b.WriteString(e.Command)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ProbeError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewProbeError builds a ProbeError for command.
func NewProbeError(kind FailureKind, command string, err error) *ProbeError {
	return &ProbeError{Kind: kind, Command: command, Err: err}
}

// ParseError reports output that did not match the expected shape.
func ParseError(command, format string, args ...any) *ProbeError {
	return NewProbeError(FailureParse, command, fmt.Errorf(format, args...))
}

// KindOf extracts the FailureKind carried by err, if any.
func KindOf(err error) FailureKind {
	var pe *ProbeError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return FailureUnknown
}

// ValidateRegistry checks the invariants of a check list: non-empty, every
// check named and probed, and no name used twice.
func ValidateRegistry(defs []CheckDefinition) error {
	if len(defs) == 0 {
		return ErrEmptyRegistry
	}
	seen := make(map[string]struct{}, len(defs))
	for i, def := range defs {
		if strings.TrimSpace(def.Name) == "" {
			return fmt.Errorf("check #%d: %w", i, ErrUnnamedCheck)
		}
		if def.Probe == nil {
			return fmt.Errorf("check %q: %w", def.Name, ErrNilProbe)
		}
		if _, dup := seen[def.Name]; dup {
			return fmt.Errorf("check %q: %w", def.Name, ErrDuplicateCheck)
		}
		seen[def.Name] = struct{}{}
	}
	return nil
}
