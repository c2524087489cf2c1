package variant

// ResolvedDependencySet holds the concrete, ordered dependency sequences
// a resolution produced. Order matters: it is the compiler and library
// search precedence handed to the build executor. No sequence contains
// the same package identity twice.
type ResolvedDependencySet struct {
	NativeBuildInputs     []*PackageHandle
	BuildInputs           []*PackageHandle
	PropagatedBuildInputs []*PackageHandle
	CheckInputs           []*PackageHandle
}

// Contains reports whether the sequence holds a handle with the given
// identity.
func Contains(seq []*PackageHandle, name string) bool {
	for _, h := range seq {
		if h.Name == name {
			return true
		}
	}
	return false
}

// SearchRoots returns the union of output directories across every
// sequence, in sequence order, deduplicated. This feeds the prefix-path
// export handed to the build executor.
func (s *ResolvedDependencySet) SearchRoots() []string {
	var roots []string
	seen := make(map[string]struct{})
	for _, seq := range [][]*PackageHandle{
		s.NativeBuildInputs,
		s.BuildInputs,
		s.PropagatedBuildInputs,
	} {
		for _, h := range seq {
			for _, dir := range h.Roots() {
				if _, ok := seen[dir]; ok {
					continue
				}
				seen[dir] = struct{}{}
				roots = append(roots, dir)
			}
		}
	}
	return roots
}

// BuildEnvironment maps exported build variable names to values. An
// absent key means "not exported"; values are never empty-string
// placeholders.
type BuildEnvironment map[string]string
