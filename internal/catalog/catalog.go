package catalog

import (
	"context"
	"time"
)

// Store defines the interface for persisting and querying build history
type Store interface {
	// RecordBuild persists a completed build with its notes, parts and
	// diagnostics in one transaction, returning the new build id.
	RecordBuild(ctx context.Context, build *Build) (int64, error)

	// GetBuild loads one build with all child records.
	GetBuild(ctx context.Context, id int64) (*Build, error)

	// ListBuilds returns the most recent builds, newest first, without
	// child records.
	ListBuilds(ctx context.Context, limit int) ([]Build, error)

	Close() error
}

// Build is one recorded pack build
type Build struct {
	ID          int64
	NotesDir    string
	TargetBytes int
	HardBytes   int
	NoteCount   int
	PartCount   int
	CreatedAt   time.Time

	Notes       []NoteRecord
	Parts       []PartRecord
	Diagnostics []string
}

// NoteRecord mirrors one index entry as built, plus provenance
type NoteRecord struct {
	NoteID       int
	Title        string
	SourcePath   string
	FirstPartID  int
	PartCount    int
	ChunkCount   int
	PayloadBytes int
	ContentHash  []byte // BLAKE3 of the note source text
}

// PartRecord describes one emitted part container
type PartRecord struct {
	NoteID    int
	GlobalID  int
	Name      string
	PartIndex int
	SizeBytes int
}
