package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/torchbuildgo/internal/executor"
)

// FakeExecutor records the phases it was asked to run instead of
// spawning processes. Setting FailPhase makes that phase fail, halting
// the remainder the way a real executor would.
type FakeExecutor struct {
	mu        sync.Mutex
	phases    []executor.Phase
	FailPhase string
}

// RunPhases implements executor.Executor.
func (e *FakeExecutor) RunPhases(ctx context.Context, phases []executor.Phase) ([]executor.PhaseResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var results []executor.PhaseResult
	for _, phase := range phases {
		e.phases = append(e.phases, phase)
		results = append(results, executor.PhaseResult{Phase: phase.Name})
		if phase.Name == e.FailPhase {
			return results, &executor.PhaseError{Phase: phase.Name, Err: fmt.Errorf("forced failure")}
		}
	}
	return results, nil
}

// Phases returns the phases recorded so far.
func (e *FakeExecutor) Phases() []executor.Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]executor.Phase(nil), e.phases...)
}

// FakeRewriter serves rpaths from memory. Artifacts absent from Rpaths
// fail to read; artifacts listed in DenyWrite fail to write.
type FakeRewriter struct {
	mu        sync.Mutex
	Rpaths    map[string][]string
	DenyWrite map[string]bool
	written   map[string][]string
}

// ReadRpath implements rpath.Rewriter.
func (r *FakeRewriter) ReadRpath(ctx context.Context, artifact string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries, ok := r.Rpaths[artifact]
	if !ok {
		return nil, fmt.Errorf("no dynamic section in %s", artifact)
	}
	return append([]string(nil), entries...), nil
}

// WriteRpath implements rpath.Rewriter.
func (r *FakeRewriter) WriteRpath(ctx context.Context, artifact string, entries []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.DenyWrite[artifact] {
		return fmt.Errorf("%s: permission denied", artifact)
	}
	if r.written == nil {
		r.written = make(map[string][]string)
	}
	r.written[artifact] = append([]string(nil), entries...)
	r.Rpaths[artifact] = append([]string(nil), entries...)
	return nil
}

// Written returns the rpath last written for the artifact, or nil.
func (r *FakeRewriter) Written(artifact string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written[artifact]
}
