package session

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KernelPryanic/fs-manager/internal/codec"
	"github.com/KernelPryanic/fs-manager/internal/hashsum"
	"github.com/KernelPryanic/fs-manager/internal/schema"
	"github.com/KernelPryanic/fs-manager/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSession(t *testing.T, opts Options) *Session {
	t.Helper()

	if opts.BasePath == "" {
		opts.BasePath = t.TempDir()
	}

	s, err := Open(opts)
	require.NoError(t, err)

	return s
}

func modePtr(mode os.FileMode) *os.FileMode {
	return &mode
}

func boolPtr(b bool) *bool {
	return &b
}

// TestOpen_Success tests establishing a session with defaulted options.
func TestOpen_Success(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "managed")

	s := openTestSession(t, Options{BasePath: base})

	assert.Equal(t, base, s.Base())
	assert.True(t, filepath.IsAbs(s.Base()))
	assert.Equal(t, s.Tree().Root(), s.Current())
	assert.Equal(t, hashsum.DefaultAlgorithm, s.Algorithm())
	assert.False(t, s.Temporary())
	assert.False(t, s.RootBound())

	entry, err := os.Stat(base)
	require.NoError(t, err, "the base directory should have been created")
	assert.True(t, entry.IsDir())
}

// TestOpen_Success_ExistingBase tests that an already existing base
// directory is adopted untouched, its permission mode included.
func TestOpen_Success_ExistingBase(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "managed")
	require.NoError(t, os.Mkdir(base, 0o755))

	s := openTestSession(t, Options{BasePath: base})

	entry, err := os.Stat(base)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), entry.Mode().Perm())
	assert.Equal(t, os.FileMode(0o755), s.Tree().Root().Mode())
}

// TestOpen_Success_RandPrefix tests rooting a session inside a randomized
// directory underneath the given base path.
func TestOpen_Success_RandPrefix(t *testing.T) {
	t.Parallel()

	base := t.TempDir()

	s := openTestSession(t, Options{BasePath: base, RandPrefix: true})

	assert.Equal(t, base, filepath.Dir(s.Base()))
	assert.True(t, strings.HasPrefix(filepath.Base(s.Base()), "fsm-"))

	entry, err := os.Stat(s.Base())
	require.NoError(t, err)
	assert.True(t, entry.IsDir())
}

// TestOpen_Success_LoadsExisting tests that re-opening a base path picks
// the persisted structure document back up.
func TestOpen_Success_LoadsExisting(t *testing.T) {
	t.Parallel()

	base := t.TempDir()

	s := openTestSession(t, Options{BasePath: base})

	_, err := s.Mkdir(MakeOptions{Alias: "tom", Path: "tom_dir"})
	require.NoError(t, err)
	require.NoError(t, s.Cd("tom"))
	_, err = s.Mkfile(MakeOptions{Alias: "jerry", Path: "jerry_file", Mode: modePtr(0o644)})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened := openTestSession(t, Options{BasePath: base})

	jerry, err := reopened.Find("jerry")
	require.NoError(t, err)
	assert.Equal(t, schema.KindFile, jerry.Kind())
	assert.Equal(t, os.FileMode(0o644), jerry.Mode())
	assert.Equal(t, filepath.Join(base, "tom_dir", "jerry_file"), jerry.Path())

	tom, err := reopened.Find("tom")
	require.NoError(t, err)
	assert.Equal(t, schema.KindDirectory, tom.Kind())
	assert.Equal(t, tom, jerry.Parent())
}

// TestOpen_Fail tests the upfront rejections of a session to be opened.
func TestOpen_Fail(t *testing.T) {
	t.Parallel()

	t.Run("no base path", func(t *testing.T) {
		t.Parallel()

		_, err := Open(Options{})
		require.Error(t, err, "an error should occur")
		assert.ErrorIs(t, err, ErrNoBasePath)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		t.Parallel()

		_, err := Open(Options{BasePath: t.TempDir(), Algorithm: "crc32"})
		require.Error(t, err, "an error should occur")
		assert.ErrorIs(t, err, hashsum.ErrUnsupportedAlgorithm)
	})

	t.Run("base path is a file", func(t *testing.T) {
		t.Parallel()

		base := filepath.Join(t.TempDir(), "occupied")
		require.NoError(t, os.WriteFile(base, []byte("content"), 0o600))

		_, err := Open(Options{BasePath: base})
		require.Error(t, err, "an error should occur")
		assert.ErrorIs(t, err, ErrNotADirectory)
	})
}

// TestClose_Success_Temporary tests that closing a temporary session
// removes the whole base path.
func TestClose_Success_Temporary(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "scratch")

	s := openTestSession(t, Options{BasePath: base, Temporary: true})

	_, err := s.Mkdir(MakeOptions{Alias: "docs"})
	require.NoError(t, err)
	require.NoError(t, s.Cd("docs"))
	_, err = s.Mkfile(MakeOptions{Alias: "notes"})
	require.NoError(t, err)

	require.NoError(t, s.Close())

	_, err = os.Stat(base)
	assert.ErrorIs(t, err, os.ErrNotExist, "the base path should be gone")
}

// TestClose_Success_Durable tests that closing a durable session removes
// its temporary subtrees and persists the remaining structure.
func TestClose_Success_Durable(t *testing.T) {
	t.Parallel()

	base := t.TempDir()

	s := openTestSession(t, Options{BasePath: base})

	_, err := s.Mkdir(MakeOptions{Alias: "keep"})
	require.NoError(t, err)
	_, err = s.Mkdir(MakeOptions{Alias: "scratch", Temporary: boolPtr(true)})
	require.NoError(t, err)
	require.NoError(t, s.Cd("scratch"))
	_, err = s.Mkfile(MakeOptions{Alias: "note"})
	require.NoError(t, err)

	require.NoError(t, s.Close())

	_, err = os.Stat(filepath.Join(base, "keep"))
	assert.NoError(t, err, "durable nodes should survive")
	_, err = os.Stat(filepath.Join(base, "scratch"))
	assert.ErrorIs(t, err, os.ErrNotExist, "temporary subtrees should be gone")
	_, err = os.Stat(filepath.Join(base, codec.StructureFile))
	assert.NoError(t, err, "the structure document should have been persisted")

	reopened := openTestSession(t, Options{BasePath: base})

	_, err = reopened.Find("keep")
	assert.NoError(t, err)
	_, err = reopened.Find("scratch")
	assert.Error(t, err)
	_, err = reopened.Find("note")
	assert.Error(t, err)
}

// TestClose_Fail_Repeated tests that a session rejects use after close.
func TestClose_Fail_Repeated(t *testing.T) {
	t.Parallel()

	s := openTestSession(t, Options{BasePath: t.TempDir()})

	require.NoError(t, s.Close())

	err := s.Close()
	require.Error(t, err, "an error should occur")
	assert.ErrorIs(t, err, ErrSessionClosed)

	_, err = s.Mkdir(MakeOptions{Alias: "late"})
	require.Error(t, err, "an error should occur")
	assert.ErrorIs(t, err, ErrSessionClosed)

	err = s.Cd("late")
	require.Error(t, err, "an error should occur")
	assert.ErrorIs(t, err, ErrSessionClosed)
}

// TestSaveLoadAll_Success tests that a persisted structure is
// reconstructed isomorphically by a fresh session over the same base.
func TestSaveLoadAll_Success(t *testing.T) {
	t.Parallel()

	base := t.TempDir()

	s := openTestSession(t, Options{BasePath: base})

	_, err := s.Mkdir(MakeOptions{Alias: "docs", Path: "documents", Mode: modePtr(0o750)})
	require.NoError(t, err)
	require.NoError(t, s.Cd("docs"))
	_, err = s.Mkfile(MakeOptions{Alias: "notes", Path: "notes.txt", Mode: modePtr(0o640)})
	require.NoError(t, err)
	_, err = s.Mkdir(MakeOptions{Alias: "misc", Temporary: boolPtr(true)})
	require.NoError(t, err)

	require.NoError(t, s.SaveHashsums(context.Background(), ""))
	require.NoError(t, s.SaveAll())

	reopened := openTestSession(t, Options{BasePath: base})

	require.Equal(t, s.Tree().Len(), reopened.Tree().Len())

	for _, alias := range []string{"docs", "notes", "misc"} {
		want, err := s.Find(alias)
		require.NoError(t, err)
		got, err := reopened.Find(alias)
		require.NoError(t, err)

		assert.Equal(t, want.Kind(), got.Kind())
		assert.Equal(t, want.Path(), got.Path())
		assert.Equal(t, want.Mode(), got.Mode())
		assert.Equal(t, want.Temporary(), got.Temporary())
	}

	record, ok := reopened.Ledger().Get("notes")
	require.True(t, ok, "the ledger should have been restored")
	assert.Equal(t, s.Algorithm(), record.Algorithm)
}

// TestLoadAll_Success_Replaces tests that an explicit reload restores the
// persisted hierarchy over later logical mutations.
func TestLoadAll_Success_Replaces(t *testing.T) {
	t.Parallel()

	s := openTestSession(t, Options{BasePath: t.TempDir(), Temporary: true})

	_, err := s.Mkdir(MakeOptions{Alias: "docs"})
	require.NoError(t, err)
	require.NoError(t, s.SaveAll())

	_, err = s.Mkdir(MakeOptions{Alias: "extra"})
	require.NoError(t, err)
	require.NoError(t, s.Cd("extra"))

	require.NoError(t, s.LoadAll())

	assert.True(t, s.Current().IsRoot(), "the position should return to the root")

	_, err = s.Find("docs")
	assert.NoError(t, err)
	_, err = s.Find("extra")
	assert.Error(t, err, "unsaved nodes should be gone from the hierarchy")

	exists, err := s.Exists("extra")
	require.NoError(t, err)
	assert.True(t, exists, "reloading replaces logical state only, never physical")
}

// TestVerify_Success tests verification of a consistent session.
func TestVerify_Success(t *testing.T) {
	t.Parallel()

	s := openTestSession(t, Options{BasePath: t.TempDir()})

	_, err := s.Mkdir(MakeOptions{Alias: "docs"})
	require.NoError(t, err)

	assert.NoError(t, s.Verify())
}

// TestVerify_Fail_Drift tests that verification surfaces physical drift.
func TestVerify_Fail_Drift(t *testing.T) {
	t.Parallel()

	s := openTestSession(t, Options{BasePath: t.TempDir()})

	n, err := s.Mkfile(MakeOptions{Alias: "notes"})
	require.NoError(t, err)
	require.NoError(t, os.Remove(n.Path()))

	err = s.Verify()
	require.Error(t, err, "an error should occur")
	assert.ErrorIs(t, err, validation.ErrMissingBacking)
}

// TestHashProgress_Success tests progress reporting across the lifecycle
// of a hashsum batch.
func TestHashProgress_Success(t *testing.T) {
	t.Parallel()

	s := openTestSession(t, Options{BasePath: t.TempDir()})

	progress := s.HashProgress()
	assert.False(t, progress.HasStarted, "no batch ran yet")

	_, err := s.Mkfile(MakeOptions{Alias: "alpha"})
	require.NoError(t, err)
	_, err = s.Mkfile(MakeOptions{Alias: "beta"})
	require.NoError(t, err)

	require.NoError(t, s.SaveHashsums(context.Background(), ""))

	progress = s.HashProgress()
	assert.True(t, progress.HasStarted)
	assert.True(t, progress.HasFinished)
	assert.Equal(t, 2, progress.TotalItems)
	assert.Equal(t, 2, progress.SuccessItems)
	assert.InDelta(t, 100, progress.ProgressPct, 0.01)
	assert.Equal(t, "bytes/sec", progress.ProcessingSpeedUnit)
}
