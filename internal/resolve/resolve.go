// Package resolve turns a validated feature flag set into the concrete
// ordered dependency sequences the build executor consumes. Resolution
// is a pure function: same flag set in, same sequences out.
package resolve

import (
	"fmt"

	"github.com/vk/torchbuildgo/internal/variant"
)

// Fixed tool identities present in every variant.
const (
	orchestrationTool = "cmake"
	checkBuildTool    = "ninja"
	propertyTestTool  = "hypothesis"
)

// depList is an ordered, identity-deduplicated sequence under assembly.
type depList struct {
	items []*variant.PackageHandle
	seen  map[string]int
}

func newDepList() *depList {
	return &depList{seen: make(map[string]int)}
}

// add appends the handle unless its identity is already present.
func (l *depList) add(h *variant.PackageHandle) {
	if _, ok := l.seen[h.Name]; ok {
		return
	}
	l.seen[h.Name] = len(l.items)
	l.items = append(l.items, h)
}

// replace substitutes the handle at the position currently held by name,
// keeping the sequence order intact. No-op when name is absent.
func (l *depList) replace(name string, h *variant.PackageHandle) {
	idx, ok := l.seen[name]
	if !ok {
		return
	}
	delete(l.seen, name)
	l.seen[h.Name] = idx
	l.items[idx] = h
}

// Resolve computes the dependency sequences for the given flag set. It
// re-validates the flag set first, so the only error it can return is a
// validation failure on a flag set the caller never checked.
func Resolve(flags *variant.FeatureFlagSet) (*variant.ResolvedDependencySet, error) {
	if err := variant.Validate(flags); err != nil {
		return nil, fmt.Errorf("resolve called on invalid flag set: %w", err)
	}

	native := newDepList()
	build := newDepList()
	propagated := newDepList()
	check := newDepList()

	// Fixed base sets.
	native.add(variant.Tool(orchestrationTool))
	native.add(variant.Tool("util-linux"))
	native.add(variant.Tool("which"))

	build.add(flags.Numeric)
	if flags.HostOS == "linux" {
		// Thread-affinity control only exists on Linux hosts.
		build.add(flags.ThreadAffinity)
	}

	propagated.add(flags.CFFI)
	propagated.add(flags.Numeric)
	propagated.add(flags.Serialization)

	if flags.CUDASupport {
		native.add(variant.JoinToolkit(flags.CUDAToolkit, flags.NCCL))
		build.add(flags.CUDNN)
		build.add(magmaVariant(flags))
		build.add(flags.NCCL)
	}

	if flags.MKLSupport && flags.Numeric.BLAS != variant.BLASMKL {
		// Substitute, never append: the base numeric library must not
		// survive next to its MKL-linked variant.
		build.replace(flags.Numeric.Name, flags.NumericMKL)
		propagated.replace(flags.Numeric.Name, flags.NumericMKL)
	}

	if flags.OpenMPISupport {
		propagated.add(mpiVariant(flags))
	}

	if variant.NeedsTypingShim(flags.RuntimeVersion) {
		propagated.add(flags.TypingShim)
	}

	check.add(variant.Tool(propertyTestTool))
	check.add(variant.Tool(checkBuildTool))

	return &variant.ResolvedDependencySet{
		NativeBuildInputs:     native.items,
		BuildInputs:           build.items,
		PropagatedBuildInputs: propagated.items,
		CheckInputs:           check.items,
	}, nil
}

// magmaVariant derives the identity of the CUDA-aware linear-algebra
// package from its parameterization: the toolkit it was built against
// and, when MKL is requested, the MKL linkage.
func magmaVariant(flags *variant.FeatureFlagSet) *variant.PackageHandle {
	h := *flags.Magma
	h.Name = fmt.Sprintf("%s-cuda%s", flags.Magma.Name, flags.CUDAToolkit.Version)
	if flags.MKLSupport {
		h.Name += "-mkl"
		h.BLAS = variant.BLASMKL
	}
	return &h
}

// mpiVariant records CUDA awareness in the MPI runtime identity when both
// features are enabled, so a CUDA-aware and a plain MPI build never
// collide under one name.
func mpiVariant(flags *variant.FeatureFlagSet) *variant.PackageHandle {
	if !flags.CUDASupport {
		return flags.OpenMPI
	}
	h := *flags.OpenMPI
	h.Name = fmt.Sprintf("%s-cuda%s", flags.OpenMPI.Name, flags.CUDAToolkit.Version)
	return &h
}
