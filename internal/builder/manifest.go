package builder

import (
	"encoding/json"
	"fmt"
	"os"
)

// Manifest is the human- and tool-readable summary of one pack build,
// written as pack_manifest.json next to the output directories.
type Manifest struct {
	IndexAppvar string         `json:"index_appvar"`
	NotesDir    string         `json:"notes_dir"`
	TargetBytes int            `json:"target_bytes"`
	HardBytes   int            `json:"hard_bytes"`
	Notes       []ManifestNote `json:"notes"`
	PartCount   int            `json:"part_count"`
	Artifacts   ManifestDirs   `json:"artifacts"`
	Blobs       []ManifestBlob `json:"blobs"`
}

// ManifestNote summarizes one note as built.
type ManifestNote struct {
	NoteID      int    `json:"note_id"`
	Title       string `json:"title"`
	FirstPartID int    `json:"first_part_id"`
	PartCount   int    `json:"part_count"`
	TotalChunks int    `json:"total_chunks"`
	Source      string `json:"source"`
	ContentHash string `json:"content_hash"` // BLAKE3 of the note text, hex
}

// ManifestDirs names the output directories.
type ManifestDirs struct {
	RawDir string `json:"raw_dir"`
	X8vDir string `json:"x8v_dir"`
}

// ManifestBlob records one emitted container blob.
type ManifestBlob struct {
	Name      string `json:"name"`
	File      string `json:"file"`
	SizeBytes int    `json:"size_bytes"`
	BLAKE3    string `json:"blake3"`
}

// Write serializes the manifest as indented JSON.
func (m *Manifest) Write(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
