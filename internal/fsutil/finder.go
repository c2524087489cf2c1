// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// FindSharedObjects recursively searches the given root path for shared
// libraries, including versioned names such as libfoo.so.1. It returns a
// slice of their full paths in walk order.
func FindSharedObjects(rootPath string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsSharedObject(d.Name()) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// IsSharedObject reports whether the file name looks like a shared
// library (a ".so" suffix, possibly followed by version components).
func IsSharedObject(name string) bool {
	return strings.HasSuffix(name, ".so") || strings.Contains(name, ".so.")
}
