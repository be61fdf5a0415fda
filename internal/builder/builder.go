package builder

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/notepack/internal/boundary"
	"github.com/dshills/notepack/internal/catalog"
	"github.com/dshills/notepack/internal/container"
	"github.com/dshills/notepack/internal/packer"
	"github.com/dshills/notepack/internal/splitter"
	"github.com/dshills/notepack/internal/texcmd"
	"github.com/dshills/notepack/pkg/types"
)

// Default split parameters. The target keeps chunks comfortably under the
// container capacity; the hard cap bounds the worst case for boundary-free
// text.
const (
	DefaultTargetBytes = 40960
	DefaultHardBytes   = 49152
)

// Config contains configuration for a pack build
type Config struct {
	NotesDir      string        // directory of note source files
	OutRaw        string        // output directory for raw .bin blobs
	Out8xv        string        // output directory for converted .8xv AppVars
	ManifestPath  string        // pack manifest path (default: next to OutRaw)
	TargetBytes   int           // preferred chunk size (default 40960)
	HardBytes     int           // hard chunk cap (default 49152)
	LatexCommands string        // supported-command list (default: beside NotesDir)
	SkipConvbin   bool          // emit raw blobs only
	Workers       int           // parallel split workers (default: runtime.NumCPU())
	Catalog       catalog.Store // optional build history catalog
}

// Builder coordinates the pack pipeline: discover -> scan -> split ->
// pack -> encode -> emit.
type Builder struct {
	cfg   Config
	split *splitter.Splitter
	pack  *packer.Packer
	diags *Diagnostics

	// convbin is injectable for tests
	convbin ConvbinRunner
}

// Result summarizes a completed build.
type Result struct {
	Notes          []*types.Note
	Parts          []*types.Part
	IndexPath      string
	ManifestPath   string
	Diagnostics    []string
	CatalogBuildID int64
}

// New validates the configuration and returns a Builder. Split parameter
// errors are fatal here, before any file is touched.
func New(cfg Config) (*Builder, error) {
	if cfg.NotesDir == "" {
		return nil, errors.New("notes directory is required")
	}
	if cfg.TargetBytes == 0 {
		cfg.TargetBytes = DefaultTargetBytes
	}
	if cfg.HardBytes == 0 {
		cfg.HardBytes = DefaultHardBytes
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.OutRaw == "" {
		cfg.OutRaw = filepath.Join("dist", "raw")
	}
	if cfg.Out8xv == "" {
		cfg.Out8xv = filepath.Join("dist", "8xv")
	}
	if cfg.ManifestPath == "" {
		cfg.ManifestPath = filepath.Join(filepath.Dir(cfg.OutRaw), "pack_manifest.json")
	}
	if cfg.LatexCommands == "" {
		cfg.LatexCommands = filepath.Join(filepath.Dir(cfg.NotesDir), "LATEX_COMMANDS_SUPPORTED.md")
	}

	split, err := splitter.New(cfg.TargetBytes, cfg.HardBytes)
	if err != nil {
		return nil, err
	}

	return &Builder{
		cfg:     cfg,
		split:   split,
		pack:    packer.New(),
		diags:   &Diagnostics{},
		convbin: RunConvbin,
	}, nil
}

// Diagnostics returns the build's warning collector.
func (b *Builder) Diagnostics() *Diagnostics {
	return b.diags
}

// Build runs the full pipeline. Fatal errors (bad configuration, packing
// infeasibility, serialization overflow, I/O) abort before any output file
// is written; quality warnings accumulate in Diagnostics and never abort.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	files, err := discoverNoteFiles(b.cfg.NotesDir)
	if err != nil {
		return nil, err
	}

	supported := b.loadSupportedCommands()

	works, err := b.splitNotes(ctx, files, supported)
	if err != nil {
		return nil, err
	}

	// Global part ids are assigned in a single monotonic pass over notes
	// in discovery order; downstream readers rely on first_part_id plus
	// part_count addressing a contiguous id range.
	notes := make([]*types.Note, 0, len(works))
	var parts []*types.Part
	nextPartID := 1
	for _, w := range works {
		note := w.note
		groups, err := b.pack.Pack(note.ID, note.Chunks)
		if err != nil {
			return nil, fmt.Errorf("packing %s: %w", note.Source, err)
		}
		note.FirstPartID = nextPartID
		note.PartCount = len(groups)
		for pi, group := range groups {
			parts = append(parts, &types.Part{
				GlobalID: nextPartID,
				NoteID:   note.ID,
				Index:    pi,
				Count:    len(groups),
				Chunks:   group,
			})
			nextPartID++
		}
		notes = append(notes, note)
	}

	indexEntries := make([]types.IndexEntry, 0, len(notes))
	for _, n := range notes {
		indexEntries = append(indexEntries, types.IndexEntryFromNote(n))
	}
	indexBlob, err := container.EncodeIndex(indexEntries)
	if err != nil {
		return nil, err
	}

	partBlobs := make([][]byte, len(parts))
	for i, p := range parts {
		if partBlobs[i], err = container.EncodePart(p); err != nil {
			return nil, err
		}
	}

	// All blobs assembled and size-checked; only now touch the filesystem.
	if err := b.emit(ctx, works, notes, parts, indexBlob, partBlobs); err != nil {
		return nil, err
	}

	result := &Result{
		Notes:        notes,
		Parts:        parts,
		IndexPath:    filepath.Join(b.cfg.OutRaw, types.IndexName+".bin"),
		ManifestPath: b.cfg.ManifestPath,
		Diagnostics:  b.diags.Items(),
	}

	if b.cfg.Catalog != nil {
		id, err := b.recordBuild(ctx, works, notes, parts, partBlobs)
		if err != nil {
			return nil, fmt.Errorf("recording build in catalog: %w", err)
		}
		result.CatalogBuildID = id
	}

	return result, nil
}

// noteWork carries one note through the parallel split stage.
type noteWork struct {
	note  *types.Note
	hash  [32]byte // BLAKE3 of the source text
	diags *Diagnostics
}

// splitNotes reads, validates and splits every note. Notes are processed
// concurrently; per-note diagnostics are collected locally and merged in
// discovery order afterwards so the warning report stays deterministic.
func (b *Builder) splitNotes(ctx context.Context, files []string, supported map[string]bool) ([]noteWork, error) {
	works := make([]noteWork, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Workers)

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			text := string(data)

			local := &Diagnostics{}
			if len(supported) > 0 {
				if unknown := texcmd.Unknown(texcmd.Used(text), supported); len(unknown) > 0 {
					local.Warnf("%s: unsupported commands detected (%s)", path, strings.Join(unknown, ", "))
				}
			}

			chunks := b.split.Split(text, boundary.Scan(text), path, local)

			works[i] = noteWork{
				note: &types.Note{
					ID:     i + 1,
					Title:  titleFromFilename(path),
					Source: path,
					Chunks: chunks,
				},
				hash:  blake3.Sum256(data),
				diags: local,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range works {
		b.diags.Merge(works[i].diags)
	}
	return works, nil
}

// emit writes all blobs, runs convbin unless skipped, and writes the
// manifest.
func (b *Builder) emit(ctx context.Context, works []noteWork, notes []*types.Note,
	parts []*types.Part, indexBlob []byte, partBlobs [][]byte) error {

	if err := os.MkdirAll(b.cfg.OutRaw, 0755); err != nil {
		return fmt.Errorf("creating raw output dir: %w", err)
	}
	if !b.cfg.SkipConvbin {
		if err := os.MkdirAll(b.cfg.Out8xv, 0755); err != nil {
			return fmt.Errorf("creating 8xv output dir: %w", err)
		}
	}

	manifest := Manifest{
		IndexAppvar: types.IndexName,
		NotesDir:    b.cfg.NotesDir,
		TargetBytes: b.cfg.TargetBytes,
		HardBytes:   b.cfg.HardBytes,
		PartCount:   len(parts),
		Artifacts:   ManifestDirs{RawDir: b.cfg.OutRaw, X8vDir: b.cfg.Out8xv},
	}
	for i, n := range notes {
		manifest.Notes = append(manifest.Notes, ManifestNote{
			NoteID:      n.ID,
			Title:       n.Title,
			FirstPartID: n.FirstPartID,
			PartCount:   n.PartCount,
			TotalChunks: len(n.Chunks),
			Source:      n.Source,
			ContentHash: hex.EncodeToString(works[i].hash[:]),
		})
	}

	writeBlob := func(name string, blob []byte) error {
		rawPath := filepath.Join(b.cfg.OutRaw, name+".bin")
		if err := os.WriteFile(rawPath, blob, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", rawPath, err)
		}
		if !b.cfg.SkipConvbin {
			outPath := filepath.Join(b.cfg.Out8xv, name+".8xv")
			if err := b.convbin(ctx, rawPath, outPath, name); err != nil {
				return err
			}
		}
		sum := blake3.Sum256(blob)
		manifest.Blobs = append(manifest.Blobs, ManifestBlob{
			Name:      name,
			File:      name + ".bin",
			SizeBytes: len(blob),
			BLAKE3:    hex.EncodeToString(sum[:]),
		})
		return nil
	}

	if err := writeBlob(types.IndexName, indexBlob); err != nil {
		return err
	}
	for i, p := range parts {
		if err := writeBlob(p.Name(), partBlobs[i]); err != nil {
			return err
		}
	}

	return manifest.Write(b.cfg.ManifestPath)
}

// recordBuild persists the build in the catalog.
func (b *Builder) recordBuild(ctx context.Context, works []noteWork, notes []*types.Note,
	parts []*types.Part, partBlobs [][]byte) (int64, error) {

	build := catalog.Build{
		NotesDir:    b.cfg.NotesDir,
		TargetBytes: b.cfg.TargetBytes,
		HardBytes:   b.cfg.HardBytes,
		NoteCount:   len(notes),
		PartCount:   len(parts),
		Diagnostics: b.diags.Items(),
	}
	for i, n := range notes {
		build.Notes = append(build.Notes, catalog.NoteRecord{
			NoteID:       n.ID,
			Title:        n.Title,
			SourcePath:   n.Source,
			FirstPartID:  n.FirstPartID,
			PartCount:    n.PartCount,
			ChunkCount:   len(n.Chunks),
			PayloadBytes: n.TotalPayloadBytes(),
			ContentHash:  works[i].hash[:],
		})
	}
	for i, p := range parts {
		build.Parts = append(build.Parts, catalog.PartRecord{
			NoteID:    p.NoteID,
			GlobalID:  p.GlobalID,
			Name:      p.Name(),
			PartIndex: p.Index,
			SizeBytes: len(partBlobs[i]),
		})
	}

	return b.cfg.Catalog.RecordBuild(ctx, &build)
}

// loadSupportedCommands loads the renderer command whitelist. A missing or
// empty list degrades to a diagnostic; validation is then skipped.
func (b *Builder) loadSupportedCommands() map[string]bool {
	supported, err := texcmd.LoadSupported(b.cfg.LatexCommands)
	if errors.Is(err, fs.ErrNotExist) {
		b.diags.Warnf("no supported-command list found at %s; command validation skipped", b.cfg.LatexCommands)
		return nil
	}
	if err != nil {
		b.diags.Warnf("failed to read supported-command list at %s: %v; command validation skipped", b.cfg.LatexCommands, err)
		return nil
	}
	if len(supported) == 0 {
		b.diags.Warnf("supported-command list exists but no commands were parsed at %s; validation skipped", b.cfg.LatexCommands)
		return nil
	}
	return supported
}

// discoverNoteFiles lists the note sources in sorted filename order,
// skipping dotfiles and manifest.json. Note ids follow this order.
func discoverNoteFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("notes directory not found: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") || strings.EqualFold(name, "manifest.json") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no note files found in %s", dir)
	}
	return files, nil
}

// titleFromFilename derives the display title from the source filename
// stem.
func titleFromFilename(path string) string {
	base := filepath.Base(path)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	if title == "" {
		title = base
	}
	return title
}
