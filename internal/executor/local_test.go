package executor

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/torchbuildgo/internal/ctxlog"
)

func execContext() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func TestLocal_RunPhases(t *testing.T) {
	t.Parallel()

	local := &Local{Dir: t.TempDir()}
	results, err := local.RunPhases(execContext(), []Phase{
		{Name: "build", Command: []string{"sh", "-c", "echo building"}},
		{Name: "install", Command: []string{"sh", "-c", "echo installing"}},
	})

	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "build", results[0].Phase)
	require.Contains(t, results[0].Output, "building")
	require.Equal(t, "install", results[1].Phase)
	require.Contains(t, results[1].Output, "installing")
}

func TestLocal_PhaseEnvironment(t *testing.T) {
	t.Parallel()

	local := &Local{}
	results, err := local.RunPhases(execContext(), []Phase{
		{
			Name:    "build",
			Env:     map[string]string{"PYTORCH_BUILD_VERSION": "1.2.0"},
			Command: []string{"sh", "-c", "echo version=$PYTORCH_BUILD_VERSION"},
		},
	})

	require.NoError(t, err)
	require.Contains(t, results[0].Output, "version=1.2.0")
}

func TestLocal_FailingPhaseHaltsRemainder(t *testing.T) {
	t.Parallel()

	marker := t.TempDir() + "/ran-install"

	local := &Local{}
	results, err := local.RunPhases(execContext(), []Phase{
		{Name: "build", Command: []string{"sh", "-c", "exit 3"}},
		{Name: "install", Command: []string{"sh", "-c", "touch " + marker}},
	})

	require.Error(t, err)

	var phaseErr *PhaseError
	require.ErrorAs(t, err, &phaseErr)
	require.Equal(t, "build", phaseErr.Phase)

	require.Len(t, results, 1, "the failing phase is the last result")
	require.NoFileExists(t, marker, "later phases must not run")
}

func TestLocal_ExcludedTestsAppended(t *testing.T) {
	t.Parallel()

	local := &Local{}
	results, err := local.RunPhases(execContext(), []Phase{
		{
			Name:          "check",
			Command:       []string{"printf", "%s\n"},
			ExcludedTests: []string{"test_distributed"},
		},
	})

	require.NoError(t, err)
	require.Contains(t, results[0].Output, "--deselect=test_distributed")
}

func TestLocal_EmptyCommandFails(t *testing.T) {
	t.Parallel()

	local := &Local{}
	_, err := local.RunPhases(execContext(), []Phase{{Name: "build"}})

	var phaseErr *PhaseError
	require.ErrorAs(t, err, &phaseErr)
	require.Equal(t, "build", phaseErr.Phase)
}
