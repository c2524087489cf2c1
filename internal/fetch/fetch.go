// Package fetch defines the source-fetcher collaborator: the component
// that resolves a package's pinned source archive into a PackageHandle
// the core can read. The core itself never fetches.
package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/torchbuildgo/internal/variant"
)

// Sentinel causes for a FetchError.
var (
	// ErrNotFound means no archive exists for the requested identity and
	// version.
	ErrNotFound = errors.New("package not found")
	// ErrChecksumMismatch means the archive content does not match the
	// pinned checksum.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// FetchError reports a failed fetch with enough context to diagnose the
// pin that caused it. Fetch failures are fatal to the whole build.
type FetchError struct {
	Source  string
	Version string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s@%s: %v", e.Source, e.Version, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher resolves a pinned package source into a read-only handle.
type Fetcher interface {
	Fetch(ctx context.Context, source, version, checksum string) (*variant.PackageHandle, error)
}
