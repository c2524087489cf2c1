package compose

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/torchbuildgo/internal/variant"
)

func baseFlags() *variant.FeatureFlagSet {
	return &variant.FeatureFlagSet{
		RuntimeVersion: "3.7",
		HostOS:         "linux",
		Numeric:        &variant.PackageHandle{Name: "openblas", BLAS: variant.BLASOpenBLAS},
	}
}

func TestCompose_AllFeaturesOff(t *testing.T) {
	t.Parallel()

	env := Compose(baseFlags())

	require.Equal(t, variant.BuildEnvironment{
		"PYTORCH_BUILD_VERSION": BuildVersion,
		"PYTORCH_BUILD_NUMBER":  BuildNumber,
		"BUILD_NAMED_TENSOR":    "0",
		"USE_SYSTEM_NCCL":       "1",
	}, env, "only the always-set keys are exported")
}

func TestCompose_NoCUDAKeysWithoutCUDA(t *testing.T) {
	t.Parallel()

	env := Compose(baseFlags())

	require.NotContains(t, env, "TORCH_CUDA_ARCH_LIST")
	require.NotContains(t, env, "CUDNN_INCLUDE_DIR")
	require.NotContains(t, env, "CC")
	require.NotContains(t, env, "CXX")
}

func TestCompose_CUDA(t *testing.T) {
	t.Parallel()

	flags := baseFlags()
	flags.CUDASupport = true
	flags.CUDAToolkit = &variant.PackageHandle{
		Name:        "cudatoolkit",
		Version:     "10.1",
		CompilerDir: "/store/cudatoolkit/10.1/bin",
	}
	flags.CUDNN = &variant.PackageHandle{
		Name:       "cudnn",
		IncludeDir: "/store/cudnn/7.6/include",
	}

	env := Compose(flags)

	require.Equal(t, CUDAArchList, env["TORCH_CUDA_ARCH_LIST"])
	require.Equal(t, "/store/cudatoolkit/10.1/bin/gcc", env["CC"])
	require.Equal(t, "/store/cudatoolkit/10.1/bin/g++", env["CXX"])
	require.Equal(t, "/store/cudnn/7.6/include", env["CUDNN_INCLUDE_DIR"])
}

func TestCompose_NamedTensorToggle(t *testing.T) {
	t.Parallel()

	flags := baseFlags()
	flags.BuildNamedTensor = true
	require.Equal(t, "1", Compose(flags)["BUILD_NAMED_TENSOR"])
}

func TestCompose_BuildBinaries(t *testing.T) {
	t.Parallel()

	flags := baseFlags()
	require.NotContains(t, Compose(flags), "BUILD_BINARY")

	flags.BuildBinaries = true
	require.Equal(t, "1", Compose(flags)["BUILD_BINARY"])
}

func TestCompose_MKLWarningSuppression(t *testing.T) {
	t.Parallel()

	flags := baseFlags()
	require.NotContains(t, Compose(flags), "EXTRA_CFLAGS")

	flags.MKLSupport = true
	require.Equal(t, mklWarningSuppression, Compose(flags)["EXTRA_CFLAGS"])

	// A base numeric library already linked against MKL also triggers it.
	flags = baseFlags()
	flags.Numeric = &variant.PackageHandle{Name: "numeric", BLAS: variant.BLASMKL}
	require.Equal(t, mklWarningSuppression, Compose(flags)["EXTRA_CFLAGS"])
}

func TestCompose_Deterministic(t *testing.T) {
	t.Parallel()

	flags := baseFlags()
	flags.CUDASupport = true
	flags.CUDAToolkit = &variant.PackageHandle{Name: "cudatoolkit", CompilerDir: "/store/bin"}

	require.Equal(t, Compose(flags), Compose(flags))
}
