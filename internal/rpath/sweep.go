package rpath

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/vk/torchbuildgo/internal/ctxlog"
	"github.com/vk/torchbuildgo/internal/fsutil"
)

// Sweep walks the install tree, plans and applies the rpath rewrite for
// every shared library belonging to the package's own components, and
// returns the paths it patched. The walk is single-threaded, so each
// artifact sees exactly one writer. A failing artifact is recorded and
// the sweep continues; the joined error makes the overall build result a
// failure without rolling anything back.
func Sweep(ctx context.Context, rw Rewriter, root string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	libs, err := fsutil.FindSharedObjects(root)
	if err != nil {
		return nil, err
	}

	var patched []string
	var failures []error

	for _, lib := range libs {
		if !IsOwnLibrary(filepath.Base(lib)) {
			continue
		}

		current, err := rw.ReadRpath(ctx, lib)
		if err != nil {
			failures = append(failures, &PatchError{Path: lib, Err: fmt.Errorf("%w: %v", ErrNotFound, err)})
			continue
		}

		plan := NewPlan(lib, current)
		if plan.NoOp {
			logger.Debug("Artifact already patched, skipping.", "artifact", lib)
			continue
		}

		if err := Apply(ctx, rw, plan); err != nil {
			failures = append(failures, err)
			continue
		}
		logger.Debug("Artifact rpath rewritten.", "artifact", lib, "entries", plan.Entries)
		patched = append(patched, lib)
	}

	return patched, errors.Join(failures...)
}
