package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/torchbuildgo/internal/ctxlog"
	"github.com/vk/torchbuildgo/internal/variant"
)

// buildFlagSet resolves every package pin through the fetcher and binds
// the resulting handles to their roles in the feature flag set. Binding
// is by well-known package name; an unknown name is a configuration
// error, not something to ignore silently.
func (a *App) buildFlagSet(ctx context.Context, hostOS string) (*variant.FeatureFlagSet, error) {
	logger := ctxlog.FromContext(ctx)

	flags := &variant.FeatureFlagSet{
		CUDASupport:      a.model.Variant.CUDASupport,
		MKLSupport:       a.model.Variant.MKLSupport,
		OpenMPISupport:   a.model.Variant.OpenMPISupport,
		BuildNamedTensor: a.model.Variant.BuildNamedTensor,
		BuildBinaries:    a.model.Variant.BuildBinaries,
		RuntimeVersion:   a.model.Variant.RuntimeVersion,
		HostOS:           hostOS,
	}

	// Deterministic fetch order keeps logs and failure reports stable.
	names := make([]string, 0, len(a.model.Packages))
	for name := range a.model.Packages {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pin := a.model.Packages[name]
		handle, err := a.fetcher.Fetch(ctx, pin.Source, pin.Version, pin.Checksum)
		if err != nil {
			return nil, err
		}

		switch name {
		case "cudatoolkit":
			// The toolkit ships its own compiler pair next to its binaries.
			handle.CompilerDir = handle.BinDir
			flags.CUDAToolkit = handle
		case "cudnn":
			flags.CUDNN = handle
		case "nccl":
			flags.NCCL = handle
		case "magma":
			flags.Magma = handle
		case "mkl":
			handle.BLAS = variant.BLASMKL
			flags.MKL = handle
		case "openmpi":
			flags.OpenMPI = handle
		case "openblas":
			handle.BLAS = variant.BLASOpenBLAS
			flags.Numeric = handle
		case "openblas-mkl":
			handle.BLAS = variant.BLASMKL
			flags.NumericMKL = handle
		case "pyyaml":
			flags.Serialization = handle
		case "cffi":
			flags.CFFI = handle
		case "numactl":
			flags.ThreadAffinity = handle
		case "typing":
			flags.TypingShim = handle
		default:
			return nil, fmt.Errorf("package %q has no role in this build", name)
		}
		logger.Debug("Package pin bound.", "package", name, "version", pin.Version)
	}

	return flags, nil
}
