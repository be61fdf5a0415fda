package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/notepack/pkg/types"
)

func newTestCatalog(t *testing.T) *SQLiteCatalog {
	t.Helper()
	store, err := NewSQLiteCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleBuild() *Build {
	return &Build{
		NotesDir:    "notes",
		TargetBytes: 40960,
		HardBytes:   49152,
		NoteCount:   2,
		PartCount:   3,
		Notes: []NoteRecord{
			{NoteID: 1, Title: "calculus", SourcePath: "notes/calculus.txt",
				FirstPartID: 1, PartCount: 2, ChunkCount: 5, PayloadBytes: 90000,
				ContentHash: []byte{0x01, 0x02, 0x03}},
			{NoteID: 2, Title: "physics", SourcePath: "notes/physics.txt",
				FirstPartID: 3, PartCount: 1, ChunkCount: 1, PayloadBytes: 400,
				ContentHash: []byte{0x04, 0x05, 0x06}},
		},
		Parts: []PartRecord{
			{NoteID: 1, GlobalID: 1, Name: "NTX0001", PartIndex: 0, SizeBytes: 45000},
			{NoteID: 1, GlobalID: 2, Name: "NTX0002", PartIndex: 1, SizeBytes: 45080},
			{NoteID: 2, GlobalID: 3, Name: "NTX0003", PartIndex: 0, SizeBytes: 432},
		},
		Diagnostics: []string{
			"notes/calculus.txt: hard split at byte 49152; consider inserting separators to improve chunking",
		},
	}
}

func TestRecordAndGetBuild(t *testing.T) {
	store := newTestCatalog(t)
	ctx := context.Background()

	in := sampleBuild()
	id, err := store.RecordBuild(ctx, in)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, id, in.ID)
	assert.False(t, in.CreatedAt.IsZero())

	got, err := store.GetBuild(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, in.NotesDir, got.NotesDir)
	assert.Equal(t, in.TargetBytes, got.TargetBytes)
	assert.Equal(t, in.HardBytes, got.HardBytes)
	assert.Equal(t, in.NoteCount, got.NoteCount)
	assert.Equal(t, in.PartCount, got.PartCount)
	assert.Equal(t, in.Notes, got.Notes)
	assert.Equal(t, in.Parts, got.Parts)
	assert.Equal(t, in.Diagnostics, got.Diagnostics)
}

func TestGetBuild_NotFound(t *testing.T) {
	store := newTestCatalog(t)

	_, err := store.GetBuild(context.Background(), 999)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestListBuilds_NewestFirst(t *testing.T) {
	store := newTestCatalog(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		b := sampleBuild()
		id, err := store.RecordBuild(ctx, b)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	builds, err := store.ListBuilds(ctx, 2)
	require.NoError(t, err)
	require.Len(t, builds, 2)
	assert.Equal(t, ids[2], builds[0].ID)
	assert.Equal(t, ids[1], builds[1].ID)

	// Listing omits child records.
	assert.Empty(t, builds[0].Notes)
	assert.Empty(t, builds[0].Parts)
}

func TestListBuilds_DefaultLimit(t *testing.T) {
	store := newTestCatalog(t)
	ctx := context.Background()

	_, err := store.RecordBuild(ctx, sampleBuild())
	require.NoError(t, err)

	builds, err := store.ListBuilds(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, builds, 1)
}

func TestReopenExistingCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	ctx := context.Background()

	store, err := NewSQLiteCatalog(path)
	require.NoError(t, err)
	id, err := store.RecordBuild(ctx, sampleBuild())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must be a no-op migration-wise and keep existing rows.
	store, err = NewSQLiteCatalog(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	got, err := store.GetBuild(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got.Notes, 2)
	assert.Len(t, got.Parts, 3)
}

func TestRecordBuild_EmptyChildren(t *testing.T) {
	store := newTestCatalog(t)
	ctx := context.Background()

	id, err := store.RecordBuild(ctx, &Build{NotesDir: "notes", TargetBytes: 1, HardBytes: 2})
	require.NoError(t, err)

	got, err := store.GetBuild(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got.Notes)
	assert.Empty(t, got.Parts)
	assert.Empty(t, got.Diagnostics)
}
