// Package executor defines the interface for the build-executor
// collaborator: the component that runs the shell-level build phases
// with the composed environment and reports pass/fail per phase.
package executor

import (
	"context"
	"fmt"
	"time"
)

// Phase is one shell-level build step: a name, the environment exported
// to it, and the command to run. A check phase may name sub-tests to
// exclude from the run.
type Phase struct {
	Name          string
	Env           map[string]string
	Command       []string
	ExcludedTests []string
}

// PhaseResult records the outcome of one completed phase.
type PhaseResult struct {
	Phase    string
	Duration time.Duration
	Output   string
}

// PhaseError reports the phase that halted the build. Later phases do
// not run; by convention no partial install is considered valid.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase %q failed: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Executor runs an ordered list of build phases. Results cover every
// phase that finished, including the failing one; the error, when
// non-nil, is a *PhaseError naming it.
type Executor interface {
	RunPhases(ctx context.Context, phases []Phase) ([]PhaseResult, error)
}
