package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KernelPryanic/fs-manager/internal/codec"
	"github.com/KernelPryanic/fs-manager/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSnappy_Success tests rebuilding the hierarchy from the physical
// state of the base path.
func TestSnappy_Success(t *testing.T) {
	t.Parallel()

	base := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(base, "projects", "gopher"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "projects", "gopher", "main.txt"), []byte("content"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "readme.txt"), []byte("readme"), 0o644))

	s := openTestSession(t, Options{BasePath: base})

	_, err := s.Mkdir(MakeOptions{Alias: "untracked-before"})
	require.NoError(t, err)
	require.NoError(t, s.Cd("untracked-before"))

	require.NoError(t, s.Snappy(false))

	assert.True(t, s.Current().IsRoot(), "the position should return to the root")
	assert.False(t, s.RootBound())

	err = s.Back()
	assert.ErrorIs(t, err, ErrNoHistory, "the history should be cleared")

	projects, err := s.Dir("projects")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "projects"), projects.Path())

	gopher, err := s.Dir("gopher")
	require.NoError(t, err)
	assert.Equal(t, projects, gopher.Parent())

	mainFile, err := s.File("main.txt")
	require.NoError(t, err)
	assert.Equal(t, schema.KindFile, mainFile.Kind())
	assert.Equal(t, os.FileMode(0o644), mainFile.Mode())

	_, err = s.Find("untracked-before")
	assert.NoError(t, err, "physically present directories should be rediscovered")
}

// TestSnappy_Success_ExcludesDocument tests that the structure document
// itself is not mirrored into the hierarchy.
func TestSnappy_Success_ExcludesDocument(t *testing.T) {
	t.Parallel()

	s := openTestSession(t, Options{BasePath: t.TempDir()})

	_, err := s.Mkdir(MakeOptions{Alias: "docs"})
	require.NoError(t, err)
	require.NoError(t, s.SaveAll())

	require.NoError(t, s.Snappy(false))

	_, err = s.Find(codec.StructureFile)
	assert.Error(t, err, "the structure document should stay out of the hierarchy")

	_, err = s.Find("docs")
	assert.NoError(t, err)
}

// TestSnappy_Success_AliasCollision tests that a name already aliased
// falls back to the base-relative path as alias.
func TestSnappy_Success_AliasCollision(t *testing.T) {
	t.Parallel()

	base := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(base, "alpha"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "beta"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "alpha", "data.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "beta", "data.txt"), []byte("b"), 0o644))

	s := openTestSession(t, Options{BasePath: base})

	require.NoError(t, s.Snappy(false))

	first, err := s.Find("data.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "alpha", "data.txt"), first.Path())

	second, err := s.Find(filepath.Join("beta", "data.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "beta", "data.txt"), second.Path())
}

// TestSnappy_Success_RootBound tests adopting the root-bound flag along
// with the rebuild.
func TestSnappy_Success_RootBound(t *testing.T) {
	t.Parallel()

	base := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(base, "outer", "inner"), 0o755))

	s := openTestSession(t, Options{BasePath: base})

	require.NoError(t, s.Snappy(true))
	assert.True(t, s.RootBound())

	require.NoError(t, s.Cd("outer"))
	require.NoError(t, s.Cd("inner"))
	require.NoError(t, s.Cd("outer"), "a root-bound session may address any directory")
}
