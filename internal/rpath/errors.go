package rpath

import (
	"errors"
	"fmt"
)

// Sentinel causes for a PatchError.
var (
	// ErrNotFound means the artifact's current rpath could not be read.
	ErrNotFound = errors.New("rpath not readable")
	// ErrWriteDenied means the rewritten rpath could not be written back.
	ErrWriteDenied = errors.New("rpath not writable")
)

// PatchError reports a failure to patch one artifact. Patch failures are
// artifact-scoped: they abort packaging of that artifact, never roll back
// the build, but must surface in the overall build result.
type PatchError struct {
	Path string
	Err  error
}

func (e *PatchError) Error() string {
	return fmt.Sprintf("patching %s: %v", e.Path, e.Err)
}

func (e *PatchError) Unwrap() error {
	return e.Err
}
