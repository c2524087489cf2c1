package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/vk/torchbuildgo/internal/ctxlog"
	"github.com/vk/torchbuildgo/internal/variant"
)

// archiveName is the fixed file name of a package's source archive
// inside its store entry.
const archiveName = "source.tar.gz"

// DirFetcher resolves packages out of a local content store laid out as
//
//	<root>/<name>/<version>/source.tar.gz
//	<root>/<name>/<version>/{lib,include,bin}/
//
// The archive content is verified against the pinned sha256 before a
// handle is handed out.
type DirFetcher struct {
	Root string
}

// Fetch implements Fetcher.
func (f *DirFetcher) Fetch(ctx context.Context, source, version, checksum string) (*variant.PackageHandle, error) {
	logger := ctxlog.FromContext(ctx)

	name := path.Base(source)
	entry := filepath.Join(f.Root, name, version)

	archive := filepath.Join(entry, archiveName)
	sum, err := fileSHA256(archive)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FetchError{Source: source, Version: version, Err: ErrNotFound}
		}
		return nil, &FetchError{Source: source, Version: version, Err: err}
	}
	if sum != checksum {
		return nil, &FetchError{
			Source:  source,
			Version: version,
			Err:     fmt.Errorf("%w: want %s, got %s", ErrChecksumMismatch, checksum, sum),
		}
	}

	handle := &variant.PackageHandle{
		Name:       name,
		Source:     source,
		Version:    version,
		Checksum:   sum,
		LibDir:     existingDir(filepath.Join(entry, "lib")),
		IncludeDir: existingDir(filepath.Join(entry, "include")),
		BinDir:     existingDir(filepath.Join(entry, "bin")),
	}
	logger.Debug("Package resolved from local store.", "package", name, "version", version)
	return handle, nil
}

// existingDir returns dir when it exists, otherwise the empty string so
// the handle exposes no phantom output paths.
func existingDir(dir string) string {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ""
	}
	return dir
}

func fileSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
