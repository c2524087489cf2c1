// Package manifest records the outcome of a build-variant resolution as
// a YAML document: the flag set, the resolved dependency sequences, the
// composed environment, and the artifacts the patch sweep rewrote. The
// manifest is the resolution record downstream packaging consumes.
package manifest

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/vk/torchbuildgo/internal/variant"
)

// FileName is the manifest's fixed name inside the install tree.
const FileName = "build-manifest.yaml"

// Flags is the serialized form of the feature flag set.
type Flags struct {
	CUDASupport      bool   `yaml:"cuda_support"`
	MKLSupport       bool   `yaml:"mkl_support"`
	OpenMPISupport   bool   `yaml:"openmpi_support"`
	BuildNamedTensor bool   `yaml:"build_named_tensor"`
	BuildBinaries    bool   `yaml:"build_binaries"`
	RuntimeVersion   string `yaml:"runtime_version,omitempty"`
	HostOS           string `yaml:"host_os"`
}

// Entry is the serialized form of one resolved dependency.
type Entry struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version,omitempty"`
}

// Manifest is the full resolution record for one build run.
type Manifest struct {
	RunID     string    `yaml:"run_id"`
	CreatedAt time.Time `yaml:"created_at"`

	Flags Flags `yaml:"flags"`

	NativeBuildInputs     []Entry `yaml:"native_build_inputs"`
	BuildInputs           []Entry `yaml:"build_inputs"`
	PropagatedBuildInputs []Entry `yaml:"propagated_build_inputs"`
	CheckInputs           []Entry `yaml:"check_inputs"`

	Environment map[string]string `yaml:"environment"`

	PatchedArtifacts []string `yaml:"patched_artifacts,omitempty"`
}

// New assembles a manifest with a fresh run ID from the resolution
// outputs.
func New(flags *variant.FeatureFlagSet, deps *variant.ResolvedDependencySet, env variant.BuildEnvironment) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Flags: Flags{
			CUDASupport:      flags.CUDASupport,
			MKLSupport:       flags.MKLSupport,
			OpenMPISupport:   flags.OpenMPISupport,
			BuildNamedTensor: flags.BuildNamedTensor,
			BuildBinaries:    flags.BuildBinaries,
			RuntimeVersion:   flags.RuntimeVersion,
			HostOS:           flags.HostOS,
		},
		NativeBuildInputs:     entries(deps.NativeBuildInputs),
		BuildInputs:           entries(deps.BuildInputs),
		PropagatedBuildInputs: entries(deps.PropagatedBuildInputs),
		CheckInputs:           entries(deps.CheckInputs),
		Environment:           env,
	}
}

// Write serializes the manifest to the given path.
func (m *Manifest) Write(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshalling build manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing build manifest: %w", err)
	}
	return nil
}

// Encode writes the YAML form of the manifest to w. Used by the dry-run
// path to show a resolution without building anything.
func (m *Manifest) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encoding build manifest: %w", err)
	}
	return nil
}

// Read loads a manifest back from disk.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading build manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding build manifest: %w", err)
	}
	return &m, nil
}

func entries(seq []*variant.PackageHandle) []Entry {
	out := make([]Entry, 0, len(seq))
	for _, h := range seq {
		out = append(out, Entry{Name: h.Name, Version: h.Version})
	}
	return out
}
