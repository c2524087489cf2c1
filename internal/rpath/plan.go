package rpath

import "regexp"

// SelfEntry is the dynamic-linker token for "the directory containing
// this artifact itself".
const SelfEntry = "$ORIGIN"

// sandboxPrefixLen is the number of leading rpath entries the build
// leaves pointing into the ephemeral build tree. They will not exist
// after installation and must be dropped.
const sandboxPrefixLen = 2

// ownLibrary matches the shared objects belonging to the package's own
// compiled components. Anything else in the install tree is left alone.
var ownLibrary = regexp.MustCompile(`^lib(torch|c10|caffe2|shm)[^/]*\.so(\.[0-9.]+)?$`)

// Plan describes the rpath rewrite for a single artifact: the final
// ordered entry list, or a no-op when the artifact was already patched.
type Plan struct {
	Artifact string
	Entries  []string
	NoOp     bool
}

// NewPlan computes the rewrite for an artifact given its current rpath.
// The leading sandbox entries are dropped, the remaining entries are
// retained in order, and the self-relative entry is prepended. An rpath
// already starting with the self-relative entry yields a no-op plan, so
// re-planning an already-patched artifact never drops real entries.
func NewPlan(artifact string, current []string) *Plan {
	if len(current) > 0 && current[0] == SelfEntry {
		return &Plan{Artifact: artifact, Entries: current, NoOp: true}
	}

	var tail []string
	if len(current) > sandboxPrefixLen {
		tail = current[sandboxPrefixLen:]
	}

	entries := make([]string, 0, len(tail)+1)
	entries = append(entries, SelfEntry)
	entries = append(entries, tail...)
	return &Plan{Artifact: artifact, Entries: entries}
}

// IsOwnLibrary reports whether the file name identifies one of the
// package's own shared libraries, the only artifacts eligible for
// patching.
func IsOwnLibrary(name string) bool {
	return ownLibrary.MatchString(name)
}
