package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindSharedObjects(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	libDir := filepath.Join(root, "lib")
	require.NoError(t, os.MkdirAll(libDir, 0755))

	for _, name := range []string{"libtorch.so", "libtorch.so.1", "readme.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(libDir, name), nil, 0644))
	}

	found, err := FindSharedObjects(root)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{
		filepath.Join(libDir, "libtorch.so"),
		filepath.Join(libDir, "libtorch.so.1"),
	}, found)
}

func TestIsSharedObject(t *testing.T) {
	t.Parallel()

	require.True(t, IsSharedObject("libfoo.so"))
	require.True(t, IsSharedObject("libfoo.so.1.2"))
	require.False(t, IsSharedObject("libfoo.a"))
	require.False(t, IsSharedObject("soup.txt"))
}
