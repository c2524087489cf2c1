package testutil

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/torchbuildgo/internal/app"
	"github.com/vk/torchbuildgo/internal/fetch"
	"github.com/vk/torchbuildgo/internal/hcl_adapter"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Harness provides a fully wired application environment on a temporary
// directory tree: a config dir for HCL files, a package content store
// served through the real DirFetcher, and fake executor/rewriter
// collaborators.
type Harness struct {
	ConfigDir  string
	StoreDir   string
	InstallDir string
	HostOS     string

	Executor *FakeExecutor
	Rewriter *FakeRewriter
}

// HarnessResult holds the outcomes of an integration test run. Output
// carries both the log stream and anything the app printed (dry-run
// resolution included).
type HarnessResult struct {
	Output string
	Err    error
	App    *app.App
}

// NewHarness creates the temporary directory layout and the fakes.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	tmpDir := t.TempDir()
	h := &Harness{
		ConfigDir:  filepath.Join(tmpDir, "config"),
		StoreDir:   filepath.Join(tmpDir, "store"),
		InstallDir: filepath.Join(tmpDir, "dist"),
		HostOS:     "linux",
		Executor:   &FakeExecutor{},
		Rewriter:   &FakeRewriter{Rpaths: make(map[string][]string)},
	}
	for _, dir := range []string{h.ConfigDir, h.StoreDir, h.InstallDir} {
		require.NoError(t, os.MkdirAll(dir, 0755))
	}
	return h
}

// WriteConfig writes one HCL file into the harness config directory.
func (h *Harness) WriteConfig(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(h.ConfigDir, name), []byte(content), 0644))
}

// WritePackage creates a store entry for name@version with a source
// archive and lib/include/bin output directories, and returns the
// archive's sha256 for use in a package pin.
func (h *Harness) WritePackage(t *testing.T, name, version string) string {
	t.Helper()

	entry := filepath.Join(h.StoreDir, name, version)
	for _, sub := range []string{"lib", "include", "bin"} {
		require.NoError(t, os.MkdirAll(filepath.Join(entry, sub), 0755))
	}

	content := []byte(name + "-" + version + " source archive\n")
	require.NoError(t, os.WriteFile(filepath.Join(entry, "source.tar.gz"), content, 0644))

	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// PinBlock renders the package pin HCL for a package previously created
// with WritePackage.
func (h *Harness) PinBlock(t *testing.T, name, version string) string {
	t.Helper()
	checksum := h.WritePackage(t, name, version)
	return fmt.Sprintf("package %q {\n  version  = %q\n  checksum = %q\n}\n", name, version, checksum)
}

// BasePins creates store entries and pin blocks for the packages every
// variant needs on a linux host.
func (h *Harness) BasePins(t *testing.T) string {
	t.Helper()
	return h.PinBlock(t, "openblas", "0.3.7") +
		h.PinBlock(t, "pyyaml", "5.1") +
		h.PinBlock(t, "cffi", "1.12") +
		h.PinBlock(t, "numactl", "2.0.12")
}

// Run wires the app with the harness collaborators and executes it,
// recovering any startup panic into the result error.
func (h *Harness) Run(t *testing.T, configure func(cfg *app.Config)) *HarnessResult {
	t.Helper()
	return h.RunWithContext(context.Background(), t, configure)
}

// RunWithContext is Run with a caller-supplied context.
func (h *Harness) RunWithContext(ctx context.Context, t *testing.T, configure func(cfg *app.Config)) *HarnessResult {
	t.Helper()

	appConfig := &app.Config{
		ConfigPath: h.ConfigDir,
		StorePath:  h.StoreDir,
		InstallDir: h.InstallDir,
		HostOS:     h.HostOS,
		LogLevel:   "debug",
		LogFormat:  "text",
	}
	if configure != nil {
		configure(appConfig)
	}

	outBuffer := &SafeBuffer{}
	fetcher := &fetch.DirFetcher{Root: appConfig.StorePath}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.New(outBuffer, appConfig, hcl_adapter.NewLoader(appConfig.HostOS), fetcher, h.Executor, h.Rewriter)
	}()

	if panicErr != nil {
		return &HarnessResult{
			Output: outBuffer.String(),
			Err:    fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(ctx)
	return &HarnessResult{
		Output: outBuffer.String(),
		Err:    runErr,
		App:    testApp,
	}
}
