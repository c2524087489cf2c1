package config

// Model is the unified, format-agnostic representation of one build
// invocation's configuration: the variant selection plus every package
// pin the fetcher must resolve.
type Model struct {
	Variant  *Variant
	Packages map[string]*Package
}

// Variant is the format-agnostic representation of the `variant` block.
type Variant struct {
	CUDASupport      bool
	MKLSupport       bool
	OpenMPISupport   bool
	BuildNamedTensor bool
	BuildBinaries    bool
	RuntimeVersion   string
}

// Package is the format-agnostic representation of a `package` block: a
// pinned source the fetcher resolves into a handle.
type Package struct {
	Name     string
	Source   string
	Version  string
	Checksum string
}
