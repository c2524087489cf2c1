package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/torchbuildgo/internal/compose"
	"github.com/vk/torchbuildgo/internal/ctxlog"
	"github.com/vk/torchbuildgo/internal/executor"
	"github.com/vk/torchbuildgo/internal/manifest"
	"github.com/vk/torchbuildgo/internal/resolve"
	"github.com/vk/torchbuildgo/internal/rpath"
	"github.com/vk/torchbuildgo/internal/variant"
)

// checkExclusions names the check-phase sub-tests skipped in the
// sandboxed build environment. The distributed suite needs a working
// multi-process transport the sandbox does not provide.
var checkExclusions = []string{"test_distributed"}

// Run executes the main application logic: resolve the variant, compose
// the environment, drive the build phases, patch the produced artifacts,
// and record the resolution manifest.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	flags, err := a.buildFlagSet(ctx, a.config.HostOS)
	if err != nil {
		return err
	}

	if err := variant.Validate(flags); err != nil {
		return fmt.Errorf("variant validation failed: %w", err)
	}
	a.logger.Debug("Variant validation passed.")

	deps, err := resolve.Resolve(flags)
	if err != nil {
		return err
	}
	env := compose.Compose(flags)
	a.logger.Info("Variant resolved.",
		"native_build_inputs", len(deps.NativeBuildInputs),
		"build_inputs", len(deps.BuildInputs),
		"propagated_build_inputs", len(deps.PropagatedBuildInputs),
		"environment_keys", len(env),
	)

	record := manifest.New(flags, deps, env)

	if a.config.DryRun {
		a.logger.Info("Dry run requested, printing resolution and stopping.")
		return record.Encode(a.outW)
	}

	if _, err := a.executor.RunPhases(ctx, a.buildPhases(deps, env)); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	a.logger.Info("All build phases finished.")

	patched, err := rpath.Sweep(ctx, a.rewriter, a.config.InstallDir)
	if err != nil {
		return fmt.Errorf("artifact patching failed: %w", err)
	}
	a.logger.Info("Install tree patched.", "artifacts", len(patched))

	record.PatchedArtifacts = patched
	manifestPath := filepath.Join(a.config.InstallDir, manifest.FileName)
	if err := record.Write(manifestPath); err != nil {
		return err
	}
	a.logger.Info("Build manifest written.", "path", manifestPath, "run_id", record.RunID)

	return nil
}

// buildPhases assembles the ordered shell-level phases the executor
// runs. Every phase sees the composed environment plus the prefix-path
// export derived from the resolved dependency roots.
func (a *App) buildPhases(deps *variant.ResolvedDependencySet, env variant.BuildEnvironment) []executor.Phase {
	phaseEnv := make(map[string]string, len(env)+1)
	for key, value := range env {
		phaseEnv[key] = value
	}
	if roots := deps.SearchRoots(); len(roots) > 0 {
		phaseEnv["CMAKE_PREFIX_PATH"] = strings.Join(roots, ":")
	}

	phases := []executor.Phase{
		{
			Name:    "build",
			Env:     phaseEnv,
			Command: []string{"python", "setup.py", "build"},
		},
		{
			Name:    "install",
			Env:     phaseEnv,
			Command: []string{"python", "setup.py", "install", "--prefix", a.config.InstallDir},
		},
	}

	if !a.config.SkipCheck {
		phases = append(phases, executor.Phase{
			Name:          "check",
			Env:           phaseEnv,
			Command:       []string{"python", "-m", "pytest", "test"},
			ExcludedTests: checkExclusions,
		})
	}

	return phases
}
