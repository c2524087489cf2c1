package variant

// FeatureFlagSet is the immutable record of the boolean choices selecting
// a build variant, together with the package handles each choice consumes.
// It is created once per build invocation, validated, and then read by the
// resolver and the composer without further mutation.
type FeatureFlagSet struct {
	CUDASupport      bool
	MKLSupport       bool
	OpenMPISupport   bool
	BuildNamedTensor bool
	BuildBinaries    bool

	// RuntimeVersion is the version of the target runtime interpreter,
	// e.g. "3.7". It drives the typing-shim compatibility rule.
	RuntimeVersion string

	// HostOS is the build host operating system ("linux", "darwin").
	// Threaded through explicitly so the resolver never consults
	// ambient process state.
	HostOS string

	// Optional support packages. A boolean flag above may only be set
	// when its handle is present; see Validate.
	CUDAToolkit *PackageHandle
	CUDNN       *PackageHandle
	NCCL        *PackageHandle
	Magma       *PackageHandle
	MKL         *PackageHandle
	OpenMPI     *PackageHandle

	// Base inputs consumed by every variant.
	Numeric        *PackageHandle
	NumericMKL     *PackageHandle
	Serialization  *PackageHandle
	CFFI           *PackageHandle
	ThreadAffinity *PackageHandle
	TypingShim     *PackageHandle
}
