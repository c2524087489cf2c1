// Package rpath plans and applies the post-build rewrite of shared
// library runtime search paths. Produced libraries come out of the build
// with rpath entries pointing into the ephemeral build tree; the planner
// drops those and prepends a self-relative entry so co-installed
// libraries resolve each other without absolute paths.
package rpath
