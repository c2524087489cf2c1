package rpath

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// memRewriter is an in-memory Rewriter for exercising Apply and Sweep
// without patchelf.
type memRewriter struct {
	rpaths    map[string][]string
	denyWrite map[string]bool
	writes    int
}

func (r *memRewriter) ReadRpath(ctx context.Context, artifact string) ([]string, error) {
	entries, ok := r.rpaths[artifact]
	if !ok {
		return nil, fmt.Errorf("no dynamic section in %s", artifact)
	}
	return append([]string(nil), entries...), nil
}

func (r *memRewriter) WriteRpath(ctx context.Context, artifact string, entries []string) error {
	if r.denyWrite[artifact] {
		return fmt.Errorf("%s: permission denied", artifact)
	}
	r.rpaths[artifact] = append([]string(nil), entries...)
	r.writes++
	return nil
}

func TestApply(t *testing.T) {
	t.Parallel()

	rw := &memRewriter{rpaths: map[string][]string{
		"/dist/lib/libtorch.so": {"/build/a", "/build/b", "/store/x/lib"},
	}}
	plan := NewPlan("/dist/lib/libtorch.so", rw.rpaths["/dist/lib/libtorch.so"])

	require.NoError(t, Apply(context.Background(), rw, plan))
	require.Equal(t, []string{"$ORIGIN", "/store/x/lib"}, rw.rpaths["/dist/lib/libtorch.so"])
}

func TestApply_Idempotent(t *testing.T) {
	t.Parallel()

	rw := &memRewriter{rpaths: map[string][]string{
		"/dist/lib/libtorch.so": {"/build/a", "/build/b", "/store/x/lib"},
	}}
	plan := NewPlan("/dist/lib/libtorch.so", rw.rpaths["/dist/lib/libtorch.so"])

	require.NoError(t, Apply(context.Background(), rw, plan))
	require.NoError(t, Apply(context.Background(), rw, plan), "re-applying must not fail")
	require.Equal(t, 1, rw.writes, "the second application must not write again")
	require.Equal(t, []string{"$ORIGIN", "/store/x/lib"}, rw.rpaths["/dist/lib/libtorch.so"],
		"the retained entries must survive a repeated application")
}

func TestApply_ReadFailureIsNotFound(t *testing.T) {
	t.Parallel()

	rw := &memRewriter{rpaths: map[string][]string{}}
	plan := NewPlan("/dist/lib/libtorch.so", []string{"/build/a", "/build/b"})

	err := Apply(context.Background(), rw, plan)
	require.ErrorIs(t, err, ErrNotFound)

	var patchErr *PatchError
	require.ErrorAs(t, err, &patchErr)
	require.Equal(t, "/dist/lib/libtorch.so", patchErr.Path)
}

func TestApply_WriteFailureIsWriteDenied(t *testing.T) {
	t.Parallel()

	rw := &memRewriter{
		rpaths:    map[string][]string{"/dist/lib/libtorch.so": {"/build/a", "/build/b"}},
		denyWrite: map[string]bool{"/dist/lib/libtorch.so": true},
	}
	plan := NewPlan("/dist/lib/libtorch.so", rw.rpaths["/dist/lib/libtorch.so"])

	err := Apply(context.Background(), rw, plan)
	require.ErrorIs(t, err, ErrWriteDenied)

	var patchErr *PatchError
	require.ErrorAs(t, err, &patchErr)
	require.Equal(t, "/dist/lib/libtorch.so", patchErr.Path)
}

func TestApply_NoOpPlanSkipsRewriter(t *testing.T) {
	t.Parallel()

	// A nil rewriter would panic if the no-op plan reached it.
	plan := &Plan{Artifact: "/dist/lib/libtorch.so", Entries: []string{"$ORIGIN"}, NoOp: true}
	require.NoError(t, Apply(context.Background(), nil, plan))
}
