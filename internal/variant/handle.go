package variant

// BLASBackend identifies the linear-algebra implementation a numeric
// library is linked against.
type BLASBackend string

// Supported BLAS backends.
const (
	BLASNone     BLASBackend = ""
	BLASOpenBLAS BLASBackend = "openblas"
	BLASMKL      BLASBackend = "mkl"
)

// PackageHandle is a read-only reference to an externally resolved
// package: its identity, pinned version, and resolved output paths.
// Handles are produced by a fetch.Fetcher; the resolver and composer
// only ever read them.
type PackageHandle struct {
	Name     string
	Source   string // owner/repo, or just a name for plain tools
	Version  string
	Checksum string // hex-encoded sha256 of the source archive

	LibDir     string
	IncludeDir string
	BinDir     string

	// CompilerDir points at the toolchain shipped alongside the package.
	// Only meaningful for the CUDA toolkit handle.
	CompilerDir string

	// BLAS is the backend a numeric library is linked against. Empty for
	// everything that is not a numeric library.
	BLAS BLASBackend

	// Members holds the constituent handles of an aggregate (see
	// JoinToolkit). Empty for ordinary handles.
	Members []*PackageHandle
}

// Roots returns every output directory the handle contributes to build
// search paths, in declaration order, without duplicates. For aggregate
// handles this is the union across all members.
func (h *PackageHandle) Roots() []string {
	var roots []string
	seen := make(map[string]struct{})
	add := func(dir string) {
		if dir == "" {
			return
		}
		if _, ok := seen[dir]; ok {
			return
		}
		seen[dir] = struct{}{}
		roots = append(roots, dir)
	}

	add(h.LibDir)
	add(h.IncludeDir)
	add(h.BinDir)
	for _, m := range h.Members {
		for _, dir := range m.Roots() {
			add(dir)
		}
	}
	return roots
}

// JoinedToolkitName is the identity of the aggregate produced by JoinToolkit.
const JoinedToolkitName = "cudatoolkit-joined"

// JoinToolkit merges the CUDA toolkit and the communication library into
// one logical build input, so the wrapped project sees a single unified
// toolkit view. The aggregate owns no outputs of its own; its search
// roots are the union of the member outputs.
func JoinToolkit(toolkit, comm *PackageHandle) *PackageHandle {
	return &PackageHandle{
		Name:    JoinedToolkitName,
		Version: toolkit.Version,
		Members: []*PackageHandle{toolkit, comm},
	}
}

// Tool returns a handle for a fixed build-orchestration tool that needs
// no pinned source archive (it is expected on the build host).
func Tool(name string) *PackageHandle {
	return &PackageHandle{Name: name}
}
