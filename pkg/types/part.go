package types

import (
	"errors"
	"fmt"
)

// PartNamePrefix is the AppVar name prefix for part containers. The full
// name is the prefix plus the zero-padded global part id, e.g. NTX0007.
const PartNamePrefix = "NTX"

// IndexName is the AppVar name of the single index container.
const IndexName = "NTXIDX"

// Part is an ordered, non-empty group of chunks from exactly one note,
// sized to fit a single container.
type Part struct {
	// GlobalID is the 1-based part id, monotonically increasing across
	// all notes in build order. It determines the container name.
	GlobalID int

	// NoteID is the owning note.
	NoteID int

	// Index is the part's zero-based position within its note; Count is
	// the note's total part count.
	Index int
	Count int

	// Chunks is the part's ordered chunk group.
	Chunks []Chunk
}

// Name returns the container name derived from the global part id.
func (p *Part) Name() string {
	return fmt.Sprintf("%s%04d", PartNamePrefix, p.GlobalID)
}

// PayloadBytes returns the summed chunk byte length of the part.
func (p *Part) PayloadBytes() int {
	total := 0
	for i := range p.Chunks {
		total += p.Chunks[i].ByteLen()
	}
	return total
}

// Validate checks the part invariants before encoding.
func (p *Part) Validate() error {
	if p.GlobalID <= 0 {
		return errors.New("part global ID must be positive")
	}
	if p.NoteID <= 0 {
		return errors.New("part note ID must be positive")
	}
	if len(p.Chunks) == 0 {
		return errors.New("part must contain at least one chunk")
	}
	if p.Index < 0 || p.Count <= 0 || p.Index >= p.Count {
		return errors.New("part index out of range")
	}
	return nil
}
