// Command notepack builds TI-84 CE AppVar note packs from a directory of
// LaTeX-flavoured text notes: one part AppVar per 65,512-byte container
// plus a single index AppVar describing every note.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/dshills/notepack/internal/builder"
	"github.com/dshills/notepack/internal/catalog"
	"github.com/dshills/notepack/internal/container"
	"github.com/dshills/notepack/pkg/types"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var cli struct {
	Build   BuildCmd   `cmd:"" help:"Build part and index AppVars from a notes directory"`
	Inspect InspectCmd `cmd:"" help:"Decode and print a part or index blob"`
	History HistoryCmd `cmd:"" help:"Show recorded build history from a catalog"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// BuildCmd runs the full pack pipeline.
type BuildCmd struct {
	NotesDir      string `name:"notes-dir" help:"Directory of note files" default:"notes" type:"existingdir"`
	OutRaw        string `name:"out-raw" help:"Output directory for raw .bin blobs" default:"dist/raw" type:"path"`
	Out8xv        string `name:"out-8xv" help:"Output directory for .8xv AppVars" default:"dist/8xv" type:"path"`
	TargetBytes   int    `name:"target-bytes" help:"Preferred chunk size in encoded bytes" default:"40960"`
	HardBytes     int    `name:"hard-bytes" help:"Hard chunk cap in encoded bytes" default:"49152"`
	SkipConvbin   bool   `name:"skip-convbin" help:"Emit raw blobs only; do not invoke convbin"`
	LatexCommands string `name:"latex-commands" help:"Supported-command list (markdown bullets)" type:"path"`
	Catalog       string `name:"catalog" help:"Record the build in this SQLite catalog" type:"path"`
	Workers       int    `name:"workers" help:"Parallel split workers (0 = number of CPUs)"`
}

func (c *BuildCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := builder.Config{
		NotesDir:      c.NotesDir,
		OutRaw:        c.OutRaw,
		Out8xv:        c.Out8xv,
		TargetBytes:   c.TargetBytes,
		HardBytes:     c.HardBytes,
		LatexCommands: c.LatexCommands,
		SkipConvbin:   c.SkipConvbin,
		Workers:       c.Workers,
	}

	if c.Catalog != "" {
		store, err := catalog.NewSQLiteCatalog(c.Catalog)
		if err != nil {
			return fmt.Errorf("opening catalog: %w", err)
		}
		defer func() { _ = store.Close() }()
		cfg.Catalog = store
	}

	b, err := builder.New(cfg)
	if err != nil {
		return err
	}

	result, err := b.Build(ctx)
	if err != nil {
		b.Diagnostics().Emit(os.Stderr)
		return err
	}

	fmt.Printf("Built index: %s\n", result.IndexPath)
	fmt.Printf("Built parts: %d\n", len(result.Parts))
	if !c.SkipConvbin {
		fmt.Printf("Generated AppVars in: %s\n", c.Out8xv)
	}
	if result.CatalogBuildID != 0 {
		fmt.Printf("Recorded build %d in %s\n", result.CatalogBuildID, c.Catalog)
	}

	b.Diagnostics().Emit(os.Stderr)
	return nil
}

// InspectCmd decodes a raw blob and prints its structure.
type InspectCmd struct {
	Path  string `arg:"" help:"Path to a raw .bin blob" type:"existingfile"`
	Chunk int    `name:"chunk" help:"Print the text of this note-wide chunk index" default:"-1"`
}

func (c *InspectCmd) Run() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return err
	}
	if len(data) < 4 {
		return fmt.Errorf("%s: too small to be a container", c.Path)
	}

	switch string(data[0:4]) {
	case container.PartMagic:
		return c.inspectPart(data)
	case container.IndexMagic:
		return c.inspectIndex(data)
	default:
		return fmt.Errorf("%s: unknown container magic %q", c.Path, data[0:4])
	}
}

func (c *InspectCmd) inspectPart(data []byte) error {
	blob, err := container.DecodePart(data)
	if err != nil {
		return err
	}

	fmt.Printf("part container (%d bytes)\n", len(data))
	fmt.Printf("  note_id:    %d\n", blob.NoteID)
	fmt.Printf("  part_index: %d of %d\n", blob.Index, blob.Count)
	fmt.Printf("  entries:    %d\n", len(blob.Entries))
	for i, e := range blob.Entries {
		fmt.Printf("  [%d] chunk_idx=%d kind=%s offset=%d length=%d\n",
			i, e.ChunkIdx, e.Kind, e.RelOffset, e.Length)
	}

	if c.Chunk >= 0 {
		text, kind, ok := blob.LookupChunk(c.Chunk)
		if !ok {
			return fmt.Errorf("chunk %d not in this part", c.Chunk)
		}
		fmt.Printf("\nchunk %d (%s, %d bytes):\n%s\n", c.Chunk, kind, len(text), text)
	}
	return nil
}

func (c *InspectCmd) inspectIndex(data []byte) error {
	entries, err := container.DecodeIndex(data)
	if err != nil {
		return err
	}

	fmt.Printf("index container (%d bytes, %d notes)\n", len(data), len(entries))
	for _, e := range entries {
		fmt.Printf("  note %d %q: parts %d..%d, %d chunks, %d payload bytes\n",
			e.NoteID, e.Title, e.FirstPartID, e.FirstPartID+e.PartCount-1,
			e.ChunkCount, e.TotalPayloadBytes)
	}
	return nil
}

// HistoryCmd queries a build catalog.
type HistoryCmd struct {
	Catalog string `name:"catalog" help:"SQLite catalog path" required:"" type:"existingfile"`
	Build   int64  `name:"build" help:"Show one build in detail" default:"0"`
	Limit   int    `name:"limit" help:"Number of builds to list" default:"20"`
}

func (c *HistoryCmd) Run() error {
	store, err := catalog.NewSQLiteCatalog(c.Catalog)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()

	if c.Build > 0 {
		build, err := store.GetBuild(ctx, c.Build)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return fmt.Errorf("build %d not found", c.Build)
			}
			return err
		}
		printBuild(build)
		return nil
	}

	builds, err := store.ListBuilds(ctx, c.Limit)
	if err != nil {
		return err
	}
	for _, b := range builds {
		fmt.Printf("build %d  %s  notes=%d parts=%d target=%d hard=%d  %s\n",
			b.ID, b.CreatedAt.Format("2006-01-02 15:04:05"),
			b.NoteCount, b.PartCount, b.TargetBytes, b.HardBytes, b.NotesDir)
	}
	return nil
}

func printBuild(b *catalog.Build) {
	fmt.Printf("build %d  %s\n", b.ID, b.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  notes dir: %s\n", b.NotesDir)
	fmt.Printf("  split:     target=%d hard=%d\n", b.TargetBytes, b.HardBytes)
	fmt.Printf("  notes:\n")
	for _, n := range b.Notes {
		fmt.Printf("    [%d] %q parts=%d first=%d chunks=%d payload=%d (%s)\n",
			n.NoteID, n.Title, n.PartCount, n.FirstPartID, n.ChunkCount,
			n.PayloadBytes, n.SourcePath)
	}
	fmt.Printf("  parts:\n")
	for _, p := range b.Parts {
		fmt.Printf("    %s note=%d index=%d size=%d\n", p.Name, p.NoteID, p.PartIndex, p.SizeBytes)
	}
	if len(b.Diagnostics) > 0 {
		fmt.Printf("  warnings:\n")
		for i, msg := range b.Diagnostics {
			fmt.Printf("    [%d] %s\n", i+1, msg)
		}
	}
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("notepack\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("SQLite Driver: %s (%s)\n", catalog.DriverName, catalog.BuildMode)
	return nil
}

func main() {
	// Log to stderr; stdout carries the build summary and inspect output.
	log.SetOutput(os.Stderr)

	ctx := kong.Parse(&cli,
		kong.Name("notepack"),
		kong.Description("Build TI-84 CE AppVar note packs from text notes."),
		kong.UsageOnError(),
	)

	if err := ctx.Run(); err != nil {
		log.Printf("%v", err)
		if errors.Is(err, builder.ErrConvbin) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
