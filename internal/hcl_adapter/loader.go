package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/torchbuildgo/internal/config"
	"github.com/vk/torchbuildgo/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	hostOS string
}

// NewLoader creates a new HCL configuration loader. The host OS is made
// available to variant files as `host.os`, so a pin set can say e.g.
// `openmpi_support = host.os == "linux"`.
func NewLoader(hostOS string) *Loader {
	return &Loader{hostOS: hostOS}
}

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Variants []*variantBlock `hcl:"variant,block"`
	Packages []*packageBlock `hcl:"package,block"`
	Remain   hcl.Body        `hcl:",remain"`
}

// variantBlock is the HCL shape of the `variant` block. Every attribute
// is optional; an omitted flag means the feature is off.
type variantBlock struct {
	CUDASupport      bool   `hcl:"cuda_support,optional"`
	MKLSupport       bool   `hcl:"mkl_support,optional"`
	OpenMPISupport   bool   `hcl:"openmpi_support,optional"`
	BuildNamedTensor bool   `hcl:"build_named_tensor,optional"`
	BuildBinaries    bool   `hcl:"build_binaries,optional"`
	RuntimeVersion   string `hcl:"runtime_version,optional"`
}

// packageBlock is the HCL shape of a `package` block.
type packageBlock struct {
	Name     string `hcl:"name,label"`
	Version  string `hcl:"version"`
	Checksum string `hcl:"checksum"`
	Source   string `hcl:"source,optional"`
}

// Load orchestrates the entire HCL configuration loading process. It is
// agnostic to the origin of the paths and merges blocks from every file
// it finds.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := &config.Model{
		Packages: make(map[string]*config.Package),
	}

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	evalCtx := l.evalContext()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, v := range root.Variants {
			if model.Variant != nil {
				return nil, fmt.Errorf("duplicate variant block in %s: a build invocation has exactly one variant", file)
			}
			model.Variant = &config.Variant{
				CUDASupport:      v.CUDASupport,
				MKLSupport:       v.MKLSupport,
				OpenMPISupport:   v.OpenMPISupport,
				BuildNamedTensor: v.BuildNamedTensor,
				BuildBinaries:    v.BuildBinaries,
				RuntimeVersion:   v.RuntimeVersion,
			}
		}
		for _, p := range root.Packages {
			if _, exists := model.Packages[p.Name]; exists {
				return nil, fmt.Errorf("duplicate package %q in %s", p.Name, file)
			}
			source := p.Source
			if source == "" {
				source = p.Name
			}
			model.Packages[p.Name] = &config.Package{
				Name:     p.Name,
				Source:   source,
				Version:  p.Version,
				Checksum: p.Checksum,
			}
		}
	}

	if model.Variant == nil {
		return nil, fmt.Errorf("no variant block found in %v", paths)
	}

	logger.Debug("HCL loading complete.", "packages", len(model.Packages))
	return model, nil
}

// evalContext exposes build-host facts to variant files.
func (l *Loader) evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"host": cty.ObjectVal(map[string]cty.Value{
				"os": cty.StringVal(l.hostOS),
			}),
		},
	}
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && filepath.Ext(p) == ".hcl" {
					if _, wasSeen := seen[p]; !wasSeen {
						allFiles = append(allFiles, p)
						seen[p] = struct{}{}
					}
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if filepath.Ext(path) == ".hcl" {
			if _, wasSeen := seen[path]; !wasSeen {
				allFiles = append(allFiles, path)
				seen[path] = struct{}{}
			}
		}
	}
	return allFiles, nil
}
