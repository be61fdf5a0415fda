package builder

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"

	"github.com/dshills/notepack/internal/catalog"
	"github.com/dshills/notepack/internal/container"
	"github.com/dshills/notepack/pkg/types"
)

// testPack is a notes directory with a command whitelist and output dirs
// under one temp root.
type testPack struct {
	root     string
	notesDir string
	cfg      Config
}

func newTestPack(t *testing.T, notes map[string]string) *testPack {
	t.Helper()
	root := t.TempDir()
	notesDir := filepath.Join(root, "notes")
	require.NoError(t, os.Mkdir(notesDir, 0o755))

	for name, text := range notes {
		require.NoError(t, os.WriteFile(filepath.Join(notesDir, name), []byte(text), 0o644))
	}

	whitelist := filepath.Join(root, "LATEX_COMMANDS_SUPPORTED.md")
	require.NoError(t, os.WriteFile(whitelist, []byte("- \\frac\n- \\sqrt\n"), 0o644))

	return &testPack{
		root:     root,
		notesDir: notesDir,
		cfg: Config{
			NotesDir:      notesDir,
			OutRaw:        filepath.Join(root, "dist", "raw"),
			Out8xv:        filepath.Join(root, "dist", "8xv"),
			ManifestPath:  filepath.Join(root, "dist", "pack_manifest.json"),
			LatexCommands: whitelist,
			SkipConvbin:   true,
			Workers:       4,
		},
	}
}

func (p *testPack) build(t *testing.T) (*Builder, *Result) {
	t.Helper()
	b, err := New(p.cfg)
	require.NoError(t, err)
	result, err := b.Build(context.Background())
	require.NoError(t, err)
	return b, result
}

func TestBuild_EndToEnd(t *testing.T) {
	// bravo is large enough to need several parts at the default capacity.
	notes := map[string]string{
		"alpha.txt": "Short note. With two sentences and $\\frac{a}{b}$ inline.",
		"bravo.txt": strings.Repeat("word ", 40000),
		"delta.txt": "Another small one.",
	}
	pack := newTestPack(t, notes)
	pack.cfg.TargetBytes = 100
	pack.cfg.HardBytes = 200
	_, result := pack.build(t)

	// Notes come back in sorted filename order with 1-based ids.
	require.Len(t, result.Notes, 3)
	assert.Equal(t, []string{"alpha", "bravo", "delta"},
		[]string{result.Notes[0].Title, result.Notes[1].Title, result.Notes[2].Title})
	for i, n := range result.Notes {
		assert.Equal(t, i+1, n.ID)
	}
	assert.Greater(t, result.Notes[1].PartCount, 1, "bravo should span several parts")

	// first_part_id ranges tile 1..partCount without gaps.
	nextID := 1
	for _, n := range result.Notes {
		assert.Equal(t, nextID, n.FirstPartID)
		nextID += n.PartCount
	}
	require.Len(t, result.Parts, nextID-1)
	for i, p := range result.Parts {
		assert.Equal(t, i+1, p.GlobalID)
	}

	// The emitted index mirrors the notes.
	indexBlob, err := os.ReadFile(result.IndexPath)
	require.NoError(t, err)
	entries, err := container.DecodeIndex(indexBlob)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, n := range result.Notes {
		assert.Equal(t, types.IndexEntryFromNote(n), entries[i])
	}

	// Every emitted part decodes, and reassembling each note's chunks
	// from its containers reproduces the source file byte for byte.
	reassembled := make(map[int]*strings.Builder)
	for _, p := range result.Parts {
		blob, err := os.ReadFile(filepath.Join(pack.cfg.OutRaw, p.Name()+".bin"))
		require.NoError(t, err)
		require.LessOrEqual(t, len(blob), container.MaxContainerBytes)

		decoded, err := container.DecodePart(blob)
		require.NoError(t, err)
		assert.Equal(t, p.NoteID, decoded.NoteID)
		assert.Equal(t, p.Index, decoded.Index)
		assert.Equal(t, p.Count, decoded.Count)

		sb, ok := reassembled[decoded.NoteID]
		if !ok {
			sb = &strings.Builder{}
			reassembled[decoded.NoteID] = sb
		}
		for i := range decoded.Entries {
			sb.WriteString(decoded.ChunkText(i))
		}
	}
	assert.Equal(t, notes["alpha.txt"], reassembled[1].String())
	assert.Equal(t, notes["bravo.txt"], reassembled[2].String())
	assert.Equal(t, notes["delta.txt"], reassembled[3].String())

	// No AppVar directory when convbin is skipped.
	_, err = os.Stat(pack.cfg.Out8xv)
	assert.True(t, os.IsNotExist(err))
}

func TestBuild_ManifestContents(t *testing.T) {
	text := "One sentence. " + strings.Repeat("\\frac ", 10)
	pack := newTestPack(t, map[string]string{"note.txt": text})
	_, result := pack.build(t)

	data, err := os.ReadFile(result.ManifestPath)
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))

	assert.Equal(t, types.IndexName, m.IndexAppvar)
	assert.Equal(t, pack.notesDir, m.NotesDir)
	assert.Equal(t, DefaultTargetBytes, m.TargetBytes)
	assert.Equal(t, DefaultHardBytes, m.HardBytes)
	assert.Equal(t, len(result.Parts), m.PartCount)

	require.Len(t, m.Notes, 1)
	sum := blake3.Sum256([]byte(text))
	assert.Equal(t, hex.EncodeToString(sum[:]), m.Notes[0].ContentHash)
	assert.Equal(t, "note", m.Notes[0].Title)

	// One blob per part plus the index, each hash matching the file.
	require.Len(t, m.Blobs, len(result.Parts)+1)
	assert.Equal(t, types.IndexName, m.Blobs[0].Name)
	for _, blob := range m.Blobs {
		data, err := os.ReadFile(filepath.Join(pack.cfg.OutRaw, blob.File))
		require.NoError(t, err)
		assert.Len(t, data, blob.SizeBytes)
		sum := blake3.Sum256(data)
		assert.Equal(t, hex.EncodeToString(sum[:]), blob.BLAKE3)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	notes := map[string]string{
		"a.txt": strings.Repeat("Sentence here. ", 5000),
		"b.txt": strings.Repeat("more words without stops ", 4000),
	}

	emitted := func(workers int) map[string][]byte {
		pack := newTestPack(t, notes)
		pack.cfg.TargetBytes = 4096
		pack.cfg.HardBytes = 8192
		pack.cfg.Workers = workers
		pack.build(t)

		out := make(map[string][]byte)
		entries, err := os.ReadDir(pack.cfg.OutRaw)
		require.NoError(t, err)
		for _, e := range entries {
			data, err := os.ReadFile(filepath.Join(pack.cfg.OutRaw, e.Name()))
			require.NoError(t, err)
			out[e.Name()] = data
		}
		return out
	}

	assert.Equal(t, emitted(1), emitted(8))
}

func TestBuild_SkipsDotfilesAndManifest(t *testing.T) {
	pack := newTestPack(t, map[string]string{
		"real.txt":      "A real note.",
		".hidden":       "ignored",
		"manifest.json": "{}",
	})
	_, result := pack.build(t)

	require.Len(t, result.Notes, 1)
	assert.Equal(t, "real", result.Notes[0].Title)
}

func TestBuild_UnsupportedCommandsWarn(t *testing.T) {
	pack := newTestPack(t, map[string]string{
		"note.txt": `Uses $\frac{1}{2}$ and the unsupported \zeta and \badcmd.`,
	})
	b, _ := pack.build(t)

	items := b.Diagnostics().Items()
	require.Len(t, items, 1)
	assert.Contains(t, items[0], "unsupported commands detected (badcmd, zeta)")
}

func TestBuild_MissingWhitelistDegradesToWarning(t *testing.T) {
	pack := newTestPack(t, map[string]string{"note.txt": `Uses \anything freely.`})
	pack.cfg.LatexCommands = filepath.Join(pack.root, "absent.md")
	b, _ := pack.build(t)

	items := b.Diagnostics().Items()
	require.Len(t, items, 1)
	assert.Contains(t, items[0], "command validation skipped")
}

func TestBuild_HardSplitWarningsInDiscoveryOrder(t *testing.T) {
	// Both notes force hard splits; the merged report must follow filename
	// order regardless of which worker finishes first.
	pack := newTestPack(t, map[string]string{
		"a.txt": strings.Repeat("x", 300),
		"b.txt": strings.Repeat("y", 300),
	})
	pack.cfg.TargetBytes = 100
	pack.cfg.HardBytes = 200
	b, _ := pack.build(t)

	items := b.Diagnostics().Items()
	require.Len(t, items, 2)
	assert.Contains(t, items[0], filepath.Join(pack.notesDir, "a.txt"))
	assert.Contains(t, items[1], filepath.Join(pack.notesDir, "b.txt"))
}

func TestBuild_PackingInfeasibilityAbortsWithoutOutput(t *testing.T) {
	pack := newTestPack(t, map[string]string{
		"big.txt": strings.Repeat("a", 70000),
	})
	pack.cfg.TargetBytes = 70000
	pack.cfg.HardBytes = 70000

	b, err := New(pack.cfg)
	require.NoError(t, err)
	_, err = b.Build(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrChunkTooLarge)

	// Fatal errors abort before anything is written.
	_, statErr := os.Stat(pack.cfg.OutRaw)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(pack.cfg.ManifestPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuild_EmptyNotesDirFails(t *testing.T) {
	root := t.TempDir()
	notesDir := filepath.Join(root, "notes")
	require.NoError(t, os.Mkdir(notesDir, 0o755))

	b, err := New(Config{NotesDir: notesDir, OutRaw: filepath.Join(root, "raw"), SkipConvbin: true})
	require.NoError(t, err)

	_, err = b.Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no note files found")
}

func TestNew_InvalidSplitConfig(t *testing.T) {
	_, err := New(Config{NotesDir: "notes", TargetBytes: 100, HardBytes: 50})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidSplitConfig)
}

func TestBuild_ConvbinInvokedPerBlob(t *testing.T) {
	pack := newTestPack(t, map[string]string{"note.txt": "Just one chunk."})
	pack.cfg.SkipConvbin = false

	b, err := New(pack.cfg)
	require.NoError(t, err)

	var converted []string
	b.convbin = func(ctx context.Context, binPath, outPath, name string) error {
		assert.FileExists(t, binPath)
		assert.True(t, strings.HasSuffix(outPath, name+".8xv"))
		converted = append(converted, name)
		return nil
	}

	result, err := b.Build(context.Background())
	require.NoError(t, err)

	require.Len(t, converted, len(result.Parts)+1)
	assert.Equal(t, types.IndexName, converted[0])
	assert.Equal(t, "NTX0001", converted[1])
}

func TestBuild_ConvbinFailureAborts(t *testing.T) {
	pack := newTestPack(t, map[string]string{"note.txt": "Just one chunk."})
	pack.cfg.SkipConvbin = false

	b, err := New(pack.cfg)
	require.NoError(t, err)
	b.convbin = func(ctx context.Context, binPath, outPath, name string) error {
		return fmt.Errorf("%w for %s: exit status 1", ErrConvbin, name)
	}

	_, err = b.Build(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConvbin)
}

func TestBuild_RecordsCatalog(t *testing.T) {
	pack := newTestPack(t, map[string]string{
		"note.txt": "First sentence. Second sentence runs a bit longer.",
	})
	store, err := catalog.NewSQLiteCatalog(filepath.Join(pack.root, "catalog.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	pack.cfg.Catalog = store

	_, result := pack.build(t)
	require.Positive(t, result.CatalogBuildID)

	got, err := store.GetBuild(context.Background(), result.CatalogBuildID)
	require.NoError(t, err)
	assert.Equal(t, len(result.Notes), got.NoteCount)
	assert.Equal(t, len(result.Parts), got.PartCount)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "note", got.Notes[0].Title)
	assert.Len(t, got.Notes[0].ContentHash, 32)
	require.Len(t, got.Parts, len(result.Parts))
	assert.Equal(t, "NTX0001", got.Parts[0].Name)
}

func TestNew_AppliesDefaults(t *testing.T) {
	b, err := New(Config{NotesDir: "notes"})
	require.NoError(t, err)

	assert.Equal(t, DefaultTargetBytes, b.cfg.TargetBytes)
	assert.Equal(t, DefaultHardBytes, b.cfg.HardBytes)
	assert.Equal(t, filepath.Join("dist", "raw"), b.cfg.OutRaw)
	assert.Equal(t, filepath.Join("dist", "8xv"), b.cfg.Out8xv)
	assert.Equal(t, filepath.Join("dist", "pack_manifest.json"), b.cfg.ManifestPath)
	assert.Equal(t, "LATEX_COMMANDS_SUPPORTED.md", b.cfg.LatexCommands)
	assert.Positive(t, b.cfg.Workers)
}
