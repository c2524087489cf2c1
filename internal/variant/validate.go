package variant

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// typingShimThreshold is the first runtime version shipping a usable
// typing module of its own. Older targets need the compatibility shim
// appended to the propagated inputs.
const typingShimThreshold = "v3.5"

// ConfigError reports a feature flag whose required package handle is
// missing from the flag set. Validation failures are fatal: resolution
// must not proceed on an inconsistent flag set.
type ConfigError struct {
	Flag    string
	Missing string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("flag %q requires package %q, which is not present", e.Flag, e.Missing)
}

// NeedsTypingShim reports whether the target runtime version predates
// the typing threshold. An unparseable version is treated as modern.
func NeedsTypingShim(runtimeVersion string) bool {
	v := "v" + runtimeVersion
	if !semver.IsValid(v) {
		return false
	}
	return semver.Compare(v, typingShimThreshold) < 0
}

// Validate checks the internal consistency of a flag set: every enabled
// flag must carry the handles its resolution path consumes, and the base
// inputs present in every variant must be bound. Pure function of its
// input, no side effects.
func Validate(flags *FeatureFlagSet) error {
	if flags.CUDNN != nil && flags.CUDAToolkit == nil {
		return &ConfigError{Flag: "cudnn", Missing: "cudatoolkit"}
	}
	if flags.CUDASupport {
		if flags.CUDAToolkit == nil {
			return &ConfigError{Flag: "cuda_support", Missing: "cudatoolkit"}
		}
		if flags.CUDNN == nil {
			return &ConfigError{Flag: "cuda_support", Missing: "cudnn"}
		}
		if flags.Magma == nil {
			return &ConfigError{Flag: "cuda_support", Missing: "magma"}
		}
		if flags.NCCL == nil {
			return &ConfigError{Flag: "cuda_support", Missing: "nccl"}
		}
	}
	if flags.MKLSupport {
		if flags.MKL == nil {
			return &ConfigError{Flag: "mkl_support", Missing: "mkl"}
		}
		if flags.NumericMKL == nil && flags.Numeric != nil && flags.Numeric.BLAS != BLASMKL {
			return &ConfigError{Flag: "mkl_support", Missing: "numeric-mkl"}
		}
	}
	if flags.OpenMPISupport && flags.OpenMPI == nil {
		return &ConfigError{Flag: "openmpi_support", Missing: "openmpi"}
	}

	if flags.Numeric == nil {
		return &ConfigError{Flag: "base", Missing: "numeric"}
	}
	if flags.Serialization == nil {
		return &ConfigError{Flag: "base", Missing: "serialization"}
	}
	if flags.CFFI == nil {
		return &ConfigError{Flag: "base", Missing: "cffi"}
	}
	if flags.HostOS == "linux" && flags.ThreadAffinity == nil {
		return &ConfigError{Flag: "base", Missing: "thread-affinity"}
	}
	if NeedsTypingShim(flags.RuntimeVersion) && flags.TypingShim == nil {
		return &ConfigError{Flag: "runtime_version", Missing: "typing-shim"}
	}

	return nil
}
