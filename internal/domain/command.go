package domain

import "strings"

// ExecutionResult captures the output of one external command.
type ExecutionResult struct {
	Stdout     string
	Stderr     string
	ExitCode   int
	DurationMS int64
}

// Combined returns stdout followed by stderr, the way a shell "2>&1" would
// present them to a reader.
func (r ExecutionResult) Combined() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	if !strings.HasSuffix(r.Stdout, "\n") {
		return r.Stdout + "\n" + r.Stderr
	}
	return r.Stdout + r.Stderr
}
