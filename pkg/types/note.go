package types

import "errors"

// Note is a single source document queued for packing. Note ids are
// assigned 1..N in discovery order and are stable for a given notes
// directory; the title is derived from the source filename.
type Note struct {
	// ID is the positive note id (1-based, discovery order).
	ID int

	// Title is the display title, truncated to 255 UTF-8 bytes when
	// serialized into the index container.
	Title string

	// Source is the path of the note file, for diagnostics and the
	// build manifest.
	Source string

	// Chunks is the note's ordered chunk sequence.
	Chunks []Chunk

	// FirstPartID and PartCount are filled in during packing.
	FirstPartID int
	PartCount   int
}

// TotalPayloadBytes returns the summed byte length of all chunks, which
// equals the note's original text length.
func (n *Note) TotalPayloadBytes() int {
	total := 0
	for i := range n.Chunks {
		total += n.Chunks[i].ByteLen()
	}
	return total
}

// Validate checks the note invariants before encoding.
func (n *Note) Validate() error {
	if n.ID <= 0 {
		return errors.New("note ID must be positive")
	}
	if n.Title == "" {
		return errors.New("note title cannot be empty")
	}
	for i := range n.Chunks {
		if err := n.Chunks[i].Validate(); err != nil {
			return err
		}
		if n.Chunks[i].Idx != i {
			return errors.New("chunk indices must be contiguous from zero")
		}
	}
	return nil
}

// IndexEntry is one row of the cross-note index container: enough for a
// reader to locate every part of a note and size its buffers up front.
type IndexEntry struct {
	NoteID            int
	FirstPartID       int
	PartCount         int
	ChunkCount        int
	TotalPayloadBytes int
	Title             string
}

// IndexEntryFromNote builds the index row for a packed note.
func IndexEntryFromNote(n *Note) IndexEntry {
	return IndexEntry{
		NoteID:            n.ID,
		FirstPartID:       n.FirstPartID,
		PartCount:         n.PartCount,
		ChunkCount:        len(n.Chunks),
		TotalPayloadBytes: n.TotalPayloadBytes(),
		Title:             n.Title,
	}
}
