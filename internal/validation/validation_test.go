package validation

import (
	"os"
	"testing"

	"github.com/KernelPryanic/fs-manager/internal/backend"
	"github.com/KernelPryanic/fs-manager/internal/schema"
	"github.com/KernelPryanic/fs-manager/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTree(t *testing.T) (*tree.Tree, *backend.Handler) {
	t.Helper()

	be := backend.NewHandler(&schema.OS{}, &schema.Unix{})

	// t.TempDir() permissions depend on the process umask; pin the root
	// to the mode the fixture declares logically.
	base := t.TempDir()
	require.NoError(t, os.Chmod(base, 0o700))

	tr := tree.New(base, 0o700, be)

	docs, err := tr.CreateChild(tr.Root(), tree.CreateSpec{
		Alias: "docs", Path: "documents", Kind: schema.KindDirectory, Mode: 0o750,
	})
	require.NoError(t, err)

	_, err = tr.CreateChild(docs, tree.CreateSpec{
		Alias: "notes", Path: "notes.txt", Kind: schema.KindFile, Mode: 0o640,
	})
	require.NoError(t, err)

	return tr, be
}

// TestValidateTree_Success tests a fully consistent hierarchy.
func TestValidateTree_Success(t *testing.T) {
	t.Parallel()

	tr, be := newTestTree(t)

	require.NoError(t, ValidateTree(tr, be))
}

// TestValidateTree_Fail_MissingBacking tests the detection of physical
// backing removed behind the hierarchy's back.
func TestValidateTree_Fail_MissingBacking(t *testing.T) {
	t.Parallel()

	tr, be := newTestTree(t)

	notes, err := tr.Find("notes")
	require.NoError(t, err)
	require.NoError(t, os.Remove(notes.Path()))

	err = ValidateTree(tr, be)
	require.Error(t, err, "an error should occur")
	assert.ErrorIs(t, err, ErrMissingBacking)
}

// TestValidateTree_Fail_KindDrift tests the detection of a physical
// entity swapped for one of a different kind.
func TestValidateTree_Fail_KindDrift(t *testing.T) {
	t.Parallel()

	tr, be := newTestTree(t)

	notes, err := tr.Find("notes")
	require.NoError(t, err)
	require.NoError(t, os.Remove(notes.Path()))
	require.NoError(t, os.Mkdir(notes.Path(), 0o700))

	err = ValidateTree(tr, be)
	require.Error(t, err, "an error should occur")
	assert.ErrorIs(t, err, ErrKindDrift)
}

// TestValidateTree_Fail_ModeDrift tests the detection of permissions
// changed behind the hierarchy's back.
func TestValidateTree_Fail_ModeDrift(t *testing.T) {
	t.Parallel()

	tr, be := newTestTree(t)

	notes, err := tr.Find("notes")
	require.NoError(t, err)
	require.NoError(t, os.Chmod(notes.Path(), 0o600))

	err = ValidateTree(tr, be)
	require.Error(t, err, "an error should occur")
	assert.ErrorIs(t, err, ErrModeDrift)
}

// TestValidateTree_Fail_CollectsAll tests that all findings are part of
// the joined error instead of only the first.
func TestValidateTree_Fail_CollectsAll(t *testing.T) {
	t.Parallel()

	tr, be := newTestTree(t)

	docs, err := tr.Find("docs")
	require.NoError(t, err)

	notes, err := tr.Find("notes")
	require.NoError(t, err)

	require.NoError(t, os.Chmod(docs.Path(), 0o700))
	require.NoError(t, os.Remove(notes.Path()))

	err = ValidateTree(tr, be)
	require.Error(t, err, "an error should occur")
	assert.ErrorIs(t, err, ErrModeDrift)
	assert.ErrorIs(t, err, ErrMissingBacking)
}

// TestValidateNode_Success tests the single-node consistency check.
func TestValidateNode_Success(t *testing.T) {
	t.Parallel()

	tr, be := newTestTree(t)

	notes, err := tr.Find("notes")
	require.NoError(t, err)

	require.NoError(t, ValidateNode(notes, be))
	require.NoError(t, ValidateNode(tr.Root(), be))
}
