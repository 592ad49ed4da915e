package codec

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KernelPryanic/fs-manager/internal/backend"
	"github.com/KernelPryanic/fs-manager/internal/hashsum"
	"github.com/KernelPryanic/fs-manager/internal/schema"
	"github.com/KernelPryanic/fs-manager/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDocument() *Document {
	return &Document{
		Version: Version,
		Root: &Node{
			Path: "/base",
			Kind: schema.KindDirectory,
			Mode: 0o700,
			Children: []*Node{
				{
					Alias: "docs",
					Path:  "documents",
					Kind:  schema.KindDirectory,
					Mode:  0o750,
					Children: []*Node{
						{
							Alias: "notes",
							Path:  "notes.txt",
							Kind:  schema.KindFile,
							Mode:  0o640,
						},
					},
				},
				{
					Alias:     "misc",
					Path:      "misc",
					Kind:      schema.KindDirectory,
					Mode:      0o700,
					Temporary: true,
				},
			},
		},
		Hashsums: hashsum.Ledger{
			"notes": {
				Algorithm:  hashsum.AlgorithmMD5,
				Digest:     "5eb63bbbe01eeed093cb22bb8f5acdc3",
				CapturedAt: time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC),
			},
		},
	}
}

func newTestTree(t *testing.T) *tree.Tree {
	t.Helper()

	return tree.New(t.TempDir(), 0o700, backend.NewHandler(&schema.OS{}, &schema.Unix{}))
}

// TestEncodeDecode_Success tests that a document survives the round trip
// through its on-disk form.
func TestEncodeDecode_Success(t *testing.T) {
	t.Parallel()

	doc := newTestDocument()

	data, err := Encode(doc)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, doc, decoded)
}

// TestEncode_Success tests the exact on-disk shape of a small document.
func TestEncode_Success(t *testing.T) {
	t.Parallel()

	data, err := Encode(&Document{
		Version: Version,
		Root: &Node{
			Path: "/base",
			Kind: schema.KindDirectory,
			Mode: 0o700,
			Children: []*Node{
				{Alias: "notes", Path: "notes.txt", Kind: schema.KindFile, Mode: 0o600, Temporary: true},
			},
		},
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"version": 1,
		"root": {
			"alias": "",
			"path": "/base",
			"kind": "dir",
			"mode": 448,
			"temporary": false,
			"children": [
				{"alias": "notes", "path": "notes.txt", "kind": "file", "mode": 384, "temporary": true}
			]
		}
	}`, string(data))
}

// TestFromTree_Success tests snapshotting a live hierarchy into a document.
func TestFromTree_Success(t *testing.T) {
	t.Parallel()

	tr := newTestTree(t)

	docs, err := tr.CreateChild(tr.Root(), tree.CreateSpec{
		Alias: "docs", Path: "documents", Kind: schema.KindDirectory, Mode: 0o750,
	})
	require.NoError(t, err)

	_, err = tr.CreateChild(docs, tree.CreateSpec{
		Alias: "notes", Path: "notes.txt", Kind: schema.KindFile, Mode: 0o640, Temporary: true,
	})
	require.NoError(t, err)

	ledger := hashsum.NewLedger()
	ledger.Set("notes", hashsum.AlgorithmSHA1, "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed")

	doc := FromTree(tr, ledger)

	assert.Equal(t, Version, doc.Version)
	assert.Equal(t, "", doc.Root.Alias)
	assert.Equal(t, tr.Base(), doc.Root.Path)
	assert.Equal(t, schema.KindDirectory, doc.Root.Kind)

	require.Len(t, doc.Root.Children, 1)
	assert.Equal(t, "docs", doc.Root.Children[0].Alias)
	assert.Equal(t, "documents", doc.Root.Children[0].Path)
	assert.Equal(t, uint32(0o750), doc.Root.Children[0].Mode)
	assert.False(t, doc.Root.Children[0].Temporary)

	require.Len(t, doc.Root.Children[0].Children, 1)
	assert.Equal(t, "notes", doc.Root.Children[0].Children[0].Alias)
	assert.Equal(t, schema.KindFile, doc.Root.Children[0].Children[0].Kind)
	assert.True(t, doc.Root.Children[0].Children[0].Temporary)

	require.Contains(t, doc.Hashsums, "notes")
	assert.Equal(t, hashsum.AlgorithmSHA1, doc.Hashsums["notes"].Algorithm)
}

// TestApply_Success tests reconstructing a hierarchy from a document.
func TestApply_Success(t *testing.T) {
	t.Parallel()

	tr := newTestTree(t)

	require.NoError(t, Apply(newTestDocument(), tr))

	docs, err := tr.Find("docs")
	require.NoError(t, err)
	assert.Equal(t, schema.KindDirectory, docs.Kind())
	assert.Equal(t, filepath.Join(tr.Base(), "documents"), docs.Path())

	notes, err := tr.Find("notes")
	require.NoError(t, err)
	assert.Equal(t, schema.KindFile, notes.Kind())
	assert.Equal(t, docs, notes.Parent())
	assert.Equal(t, os.FileMode(0o640), notes.Mode())

	misc, err := tr.Find("misc")
	require.NoError(t, err)
	assert.True(t, misc.Temporary())
}

// TestApply_Fail_AliasConflict tests that colliding aliases reject the
// whole document before any mutation.
func TestApply_Fail_AliasConflict(t *testing.T) {
	t.Parallel()

	tr := newTestTree(t)

	_, err := tr.CreateChild(tr.Root(), tree.CreateSpec{
		Alias: "notes", Path: "elsewhere.txt", Kind: schema.KindFile, Mode: 0o600,
	})
	require.NoError(t, err)

	err = Apply(newTestDocument(), tr)
	assert.ErrorIs(t, err, ErrAliasConflict)

	_, err = tr.Find("docs")
	assert.Error(t, err, "no document node should have been attached")
}

// TestHandler_SaveLoad_Success tests the full round trip of a hierarchy
// through its structure document on disk.
func TestHandler_SaveLoad_Success(t *testing.T) {
	t.Parallel()

	be := backend.NewHandler(&schema.OS{}, &schema.Unix{})
	handler := NewHandler(be)

	src := tree.New(t.TempDir(), 0o700, be)

	docs, err := src.CreateChild(src.Root(), tree.CreateSpec{
		Alias: "docs", Path: "documents", Kind: schema.KindDirectory, Mode: 0o750,
	})
	require.NoError(t, err)

	_, err = src.CreateChild(docs, tree.CreateSpec{
		Alias: "notes", Path: "notes.txt", Kind: schema.KindFile, Mode: 0o640, Temporary: true,
	})
	require.NoError(t, err)

	ledger := hashsum.NewLedger()
	ledger.Set("notes", hashsum.AlgorithmMD5, "5eb63bbbe01eeed093cb22bb8f5acdc3")

	require.NoError(t, handler.Save(src, ledger, StructureFile))

	info, err := os.Stat(filepath.Join(src.Base(), StructureFile))
	require.NoError(t, err)
	assert.Equal(t, DocumentMode, info.Mode().Perm())

	dst := tree.New(src.Base(), 0o700, be)

	loaded, err := handler.Load(dst, StructureFile)
	require.NoError(t, err)
	assert.Equal(t, ledger, loaded)

	assert.Equal(t, src.Len(), dst.Len())

	notes, err := dst.Find("notes")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dst.Base(), "documents", "notes.txt"), notes.Path())
	assert.Equal(t, os.FileMode(0o640), notes.Mode())
	assert.True(t, notes.Temporary())
}

// TestHandler_Load_Fail tests loading a missing or corrupt document.
func TestHandler_Load_Fail(t *testing.T) {
	t.Parallel()

	be := backend.NewHandler(&schema.OS{}, &schema.Unix{})
	handler := NewHandler(be)

	tr := tree.New(t.TempDir(), 0o700, be)

	_, err := handler.Load(tr, StructureFile)
	assert.ErrorIs(t, err, backend.ErrBackend)

	path := filepath.Join(tr.Base(), StructureFile)
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 1,`), 0o600))

	_, err = handler.Load(tr, StructureFile)
	assert.ErrorIs(t, err, ErrCorruptStructure)
}

// TestDecode_Fail tests the rejection of malformed documents.
func TestDecode_Fail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name:    "malformed json",
			data:    `{"version": 1,`,
			wantErr: ErrCorruptStructure,
		},
		{
			name:    "unsupported version",
			data:    `{"version": 2, "root": {"alias": "", "path": "/base", "kind": "dir", "mode": 448}}`,
			wantErr: ErrCorruptStructure,
		},
		{
			name:    "missing root",
			data:    `{"version": 1}`,
			wantErr: ErrCorruptStructure,
		},
		{
			name:    "aliased root",
			data:    `{"version": 1, "root": {"alias": "base", "path": "/base", "kind": "dir", "mode": 448}}`,
			wantErr: ErrCorruptStructure,
		},
		{
			name:    "relative root path",
			data:    `{"version": 1, "root": {"alias": "", "path": "base", "kind": "dir", "mode": 448}}`,
			wantErr: ErrCorruptStructure,
		},
		{
			name: "node without alias",
			data: `{"version": 1, "root": {"alias": "", "path": "/base", "kind": "dir", "mode": 448,
				"children": [{"alias": "", "path": "notes.txt", "kind": "file", "mode": 384}]}}`,
			wantErr: ErrCorruptStructure,
		},
		{
			name: "colliding aliases",
			data: `{"version": 1, "root": {"alias": "", "path": "/base", "kind": "dir", "mode": 448,
				"children": [
					{"alias": "notes", "path": "notes.txt", "kind": "file", "mode": 384},
					{"alias": "notes", "path": "other.txt", "kind": "file", "mode": 384}
				]}}`,
			wantErr: ErrAliasConflict,
		},
		{
			name: "unknown kind",
			data: `{"version": 1, "root": {"alias": "", "path": "/base", "kind": "dir", "mode": 448,
				"children": [{"alias": "notes", "path": "notes.txt", "kind": "link", "mode": 384}]}}`,
			wantErr: ErrCorruptStructure,
		},
		{
			name: "non-permission mode bits",
			data: `{"version": 1, "root": {"alias": "", "path": "/base", "kind": "dir", "mode": 448,
				"children": [{"alias": "notes", "path": "notes.txt", "kind": "file", "mode": 4096}]}}`,
			wantErr: ErrCorruptStructure,
		},
		{
			name: "escaping path",
			data: `{"version": 1, "root": {"alias": "", "path": "/base", "kind": "dir", "mode": 448,
				"children": [{"alias": "evil", "path": "../outside", "kind": "file", "mode": 384}]}}`,
			wantErr: ErrCorruptStructure,
		},
		{
			name: "file with children",
			data: `{"version": 1, "root": {"alias": "", "path": "/base", "kind": "dir", "mode": 448,
				"children": [{"alias": "notes", "path": "notes.txt", "kind": "file", "mode": 384,
					"children": [{"alias": "inner", "path": "inner", "kind": "dir", "mode": 448}]}]}}`,
			wantErr: ErrCorruptStructure,
		},
		{
			name: "unknown hashsum algorithm",
			data: `{"version": 1, "root": {"alias": "", "path": "/base", "kind": "dir", "mode": 448},
				"hashsums": {"notes": {"algorithm": "crc32", "digest_hex": "abc"}}}`,
			wantErr: ErrCorruptStructure,
		},
		{
			name: "hashsum record without digest",
			data: `{"version": 1, "root": {"alias": "", "path": "/base", "kind": "dir", "mode": 448},
				"hashsums": {"notes": {"algorithm": "md5", "digest_hex": ""}}}`,
			wantErr: ErrCorruptStructure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decode([]byte(tt.data))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
