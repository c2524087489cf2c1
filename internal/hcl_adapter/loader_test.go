package hcl_adapter

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/torchbuildgo/internal/ctxlog"
)

func loadContext() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"variant.hcl": `
			variant {
				cuda_support       = true
				build_named_tensor = true
				runtime_version    = "3.7"
			}
		`,
		"pins.hcl": `
			package "cudatoolkit" {
				version  = "10.1.243"
				checksum = "e7c7ac"
				source   = "nvidia/cudatoolkit"
			}

			package "openblas" {
				version  = "0.3.7"
				checksum = "aa55aa"
			}
		`,
	})

	model, err := NewLoader("linux").Load(loadContext(), dir)
	require.NoError(t, err)

	require.True(t, model.Variant.CUDASupport)
	require.True(t, model.Variant.BuildNamedTensor)
	require.False(t, model.Variant.MKLSupport, "omitted flags default to off")
	require.Equal(t, "3.7", model.Variant.RuntimeVersion)

	require.Len(t, model.Packages, 2)
	require.Equal(t, "nvidia/cudatoolkit", model.Packages["cudatoolkit"].Source)
	require.Equal(t, "10.1.243", model.Packages["cudatoolkit"].Version)
	require.Equal(t, "openblas", model.Packages["openblas"].Source, "source defaults to the block label")
}

func TestLoad_HostFacts(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"variant.hcl": `
			variant {
				openmpi_support = host.os == "linux"
			}
		`,
	})

	model, err := NewLoader("linux").Load(loadContext(), dir)
	require.NoError(t, err)
	require.True(t, model.Variant.OpenMPISupport)

	model, err = NewLoader("darwin").Load(loadContext(), dir)
	require.NoError(t, err)
	require.False(t, model.Variant.OpenMPISupport)
}

func TestLoad_SingleFilePath(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"variant.hcl": `variant {}`,
	})

	model, err := NewLoader("linux").Load(loadContext(), filepath.Join(dir, "variant.hcl"))
	require.NoError(t, err)
	require.NotNil(t, model.Variant)
}

func TestLoad_Failure(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		files       map[string]string
		errContains string
	}{
		{
			name: "syntax error",
			files: map[string]string{
				"variant.hcl": `variant {`,
			},
			errContains: "failed to parse",
		},
		{
			name: "unknown attribute",
			files: map[string]string{
				"variant.hcl": `
					variant {
						rocm_support = true
					}
				`,
			},
			errContains: "Unsupported argument",
		},
		{
			name: "duplicate variant blocks",
			files: map[string]string{
				"a.hcl": `variant {}`,
				"b.hcl": `variant {}`,
			},
			errContains: "duplicate variant block",
		},
		{
			name: "duplicate package labels",
			files: map[string]string{
				"variant.hcl": `variant {}`,
				"pins.hcl": `
					package "openblas" {
						version  = "0.3.7"
						checksum = "aa"
					}

					package "openblas" {
						version  = "0.3.6"
						checksum = "bb"
					}
				`,
			},
			errContains: `duplicate package "openblas"`,
		},
		{
			name: "package missing version",
			files: map[string]string{
				"variant.hcl": `variant {}`,
				"pins.hcl": `
					package "openblas" {
						checksum = "aa"
					}
				`,
			},
			errContains: "Missing required argument",
		},
		{
			name: "no variant block",
			files: map[string]string{
				"pins.hcl": `
					package "openblas" {
						version  = "0.3.7"
						checksum = "aa"
					}
				`,
			},
			errContains: "no variant block",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := writeFiles(t, tc.files)
			_, err := NewLoader("linux").Load(loadContext(), dir)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.errContains)
		})
	}
}
