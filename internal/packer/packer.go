package packer

import (
	"github.com/dshills/notepack/internal/container"
	"github.com/dshills/notepack/pkg/types"
)

// Packer groups a note's chunks into the fewest containers a greedy
// left-to-right pass can produce, keeping every container within the
// capacity including its header and entry-table overhead.
type Packer struct {
	capacity   int
	headerSize int
	entrySize  int
}

// New returns a Packer with the wire-format sizes of the part container.
func New() *Packer {
	return &Packer{
		capacity:   container.MaxContainerBytes,
		headerSize: container.PartHeaderSize,
		entrySize:  container.PartEntrySize,
	}
}

// Pack partitions the chunk sequence into ordered, non-empty groups, each
// of which serializes within the container capacity. Chunks are never
// reordered and earlier groups are never repacked; chunk sizes are bounded
// near the split target, far below the capacity, so the occasional
// one-chunk trailing group is an accepted cost.
//
// If a single chunk plus header and one entry exceeds the capacity, Pack
// fails with a PackError: the hard-split cap is too large for the
// container and no grouping can help.
func (p *Packer) Pack(noteID int, chunks []types.Chunk) ([][]types.Chunk, error) {
	var parts [][]types.Chunk
	var cur []types.Chunk
	curPayload := 0

	for _, chunk := range chunks {
		nextSize := p.serializedSize(len(cur)+1, curPayload+chunk.ByteLen())

		if nextSize > p.capacity && len(cur) > 0 {
			parts = append(parts, cur)
			cur = nil
			curPayload = 0
			nextSize = p.serializedSize(1, chunk.ByteLen())
		}

		if nextSize > p.capacity {
			return nil, &types.PackError{
				NoteID:   noteID,
				ChunkIdx: chunk.Idx,
				Size:     nextSize,
				Limit:    p.capacity,
			}
		}

		cur = append(cur, chunk)
		curPayload += chunk.ByteLen()
	}

	if len(cur) > 0 {
		parts = append(parts, cur)
	}

	return parts, nil
}

// serializedSize is the part blob size for a group with the given entry
// count and payload byte total.
func (p *Packer) serializedSize(entries, payload int) int {
	return p.headerSize + entries*p.entrySize + payload
}
