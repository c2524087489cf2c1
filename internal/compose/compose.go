// Package compose derives the exported build-environment variables for a
// validated feature flag set. Composition is deterministic and touches
// neither the filesystem nor any compiler.
package compose

import (
	"path/filepath"

	"github.com/vk/torchbuildgo/internal/variant"
)

// CUDAArchList is the curated set of GPU compute capabilities the build
// targets. The sandboxed build environment has no GPU to probe, so the
// list is enumerated explicitly; new hardware generations need an
// explicit addition here.
const CUDAArchList = "3.5 5.0 6.0 6.1 7.0 7.5"

// The wrapped project derives its own version stamp and build counter
// from the checkout state, which is wrong for a pinned source archive.
// Both are forced to fixed values.
const (
	BuildVersion = "1.2.0"
	BuildNumber  = "0"
)

// mklWarningSuppression works around a compiler warning false positive
// in the MKL headers that the wrapped project promotes to an error.
const mklWarningSuppression = "-Wno-error=array-bounds"

// Compose derives the build environment for the given flag set. Keys that
// do not apply to the variant are absent, never empty.
func Compose(flags *variant.FeatureFlagSet) variant.BuildEnvironment {
	env := variant.BuildEnvironment{
		"PYTORCH_BUILD_VERSION": BuildVersion,
		"PYTORCH_BUILD_NUMBER":  BuildNumber,
		"BUILD_NAMED_TENSOR":    toggle(flags.BuildNamedTensor),
		// Force the externally resolved communication library over the
		// copy vendored inside the wrapped project's source tree.
		"USE_SYSTEM_NCCL": "1",
	}

	if flags.BuildBinaries {
		env["BUILD_BINARY"] = "1"
	}

	if flags.CUDASupport {
		env["TORCH_CUDA_ARCH_LIST"] = CUDAArchList
		env["CC"] = filepath.Join(flags.CUDAToolkit.CompilerDir, "gcc")
		env["CXX"] = filepath.Join(flags.CUDAToolkit.CompilerDir, "g++")
		if flags.CUDNN != nil {
			env["CUDNN_INCLUDE_DIR"] = flags.CUDNN.IncludeDir
		}
	}

	if effectiveBLAS(flags) == variant.BLASMKL {
		env["EXTRA_CFLAGS"] = mklWarningSuppression
	}

	return env
}

// effectiveBLAS is the backend of the numeric library after resolution's
// MKL substitution rule has been applied.
func effectiveBLAS(flags *variant.FeatureFlagSet) variant.BLASBackend {
	if flags.MKLSupport {
		return variant.BLASMKL
	}
	if flags.Numeric != nil {
		return flags.Numeric.BLAS
	}
	return variant.BLASNone
}

func toggle(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
