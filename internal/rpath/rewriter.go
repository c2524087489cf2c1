package rpath

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Rewriter reads and writes the rpath embedded in a shared library.
type Rewriter interface {
	// ReadRpath returns the current ordered rpath entries of the artifact.
	ReadRpath(ctx context.Context, artifact string) ([]string, error)
	// WriteRpath replaces the artifact's rpath with the given entries.
	WriteRpath(ctx context.Context, artifact string, entries []string) error
}

// PatchelfRewriter shells out to patchelf, the same tool the upstream
// packaging uses.
type PatchelfRewriter struct {
	// Tool overrides the patchelf binary path. Empty means "patchelf"
	// from PATH.
	Tool string
}

func (r *PatchelfRewriter) tool() string {
	if r.Tool != "" {
		return r.Tool
	}
	return "patchelf"
}

// ReadRpath implements Rewriter via `patchelf --print-rpath`.
func (r *PatchelfRewriter) ReadRpath(ctx context.Context, artifact string) ([]string, error) {
	out, err := exec.CommandContext(ctx, r.tool(), "--print-rpath", artifact).Output()
	if err != nil {
		return nil, fmt.Errorf("patchelf --print-rpath %s: %w", artifact, err)
	}
	raw := strings.TrimSpace(string(out))
	if raw == "" {
		return nil, nil
	}
	return strings.Split(raw, ":"), nil
}

// WriteRpath implements Rewriter via `patchelf --set-rpath`.
func (r *PatchelfRewriter) WriteRpath(ctx context.Context, artifact string, entries []string) error {
	joined := strings.Join(entries, ":")
	if err := exec.CommandContext(ctx, r.tool(), "--set-rpath", joined, artifact).Run(); err != nil {
		return fmt.Errorf("patchelf --set-rpath %s: %w", artifact, err)
	}
	return nil
}

// Apply executes a plan against its artifact through the given rewriter.
// A no-op plan returns immediately. Read failures surface as ErrNotFound
// and write failures as ErrWriteDenied, both wrapped in a PatchError
// carrying the artifact path.
func Apply(ctx context.Context, rw Rewriter, plan *Plan) error {
	if plan.NoOp {
		return nil
	}
	// Re-read before writing so a concurrent or repeated apply on an
	// already-patched artifact stays a no-op instead of dropping the
	// entries a first application retained.
	current, err := rw.ReadRpath(ctx, plan.Artifact)
	if err != nil {
		return &PatchError{Path: plan.Artifact, Err: fmt.Errorf("%w: %v", ErrNotFound, err)}
	}
	if len(current) > 0 && current[0] == SelfEntry {
		return nil
	}
	if err := rw.WriteRpath(ctx, plan.Artifact, plan.Entries); err != nil {
		return &PatchError{Path: plan.Artifact, Err: fmt.Errorf("%w: %v", ErrWriteDenied, err)}
	}
	return nil
}
