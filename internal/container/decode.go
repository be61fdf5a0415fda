package container

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/dshills/notepack/pkg/types"
)

// PartEntry is one decoded row of a part's chunk table.
type PartEntry struct {
	RelOffset int
	Length    int
	Kind      types.SplitKind
	ChunkIdx  int
}

// PartBlob is a decoded part container. Chunk text is looked up through
// the entry table in O(1) per entry; the payload is kept as a single slice
// of the original blob.
type PartBlob struct {
	NoteID  int
	Index   int
	Count   int
	Entries []PartEntry

	payload []byte
}

// DecodePart parses and validates a part container blob. The returned
// PartBlob shares memory with data.
func DecodePart(data []byte) (*PartBlob, error) {
	if len(data) < PartHeaderSize {
		return nil, &types.ContainerError{Container: "part", Reason: "blob smaller than header"}
	}
	if !bytes.Equal(data[0:4], []byte(PartMagic)) {
		return nil, &types.ContainerError{Container: "part", Reason: "bad magic"}
	}

	version := getU16(data, 4)
	headerSize := getU16(data, 6)
	if version != FormatVersion || headerSize != PartHeaderSize {
		return nil, &types.ContainerError{Container: "part",
			Reason: fmt.Sprintf("version mismatch (version=%d, header_size=%d)", version, headerSize)}
	}

	entryCount := getU16(data, 14)
	tableOff := getU16(data, 16)
	payloadOff := getU16(data, 18)
	payloadSize := getU16(data, 20)

	if tableOff+entryCount*PartEntrySize > len(data) {
		return nil, &types.ContainerError{Container: "part", Reason: "chunk table out of bounds"}
	}
	if payloadOff+payloadSize > len(data) {
		return nil, &types.ContainerError{Container: "part", Reason: "payload out of bounds"}
	}

	blob := &PartBlob{
		NoteID:  getU16(data, 8),
		Index:   getU16(data, 10),
		Count:   getU16(data, 12),
		Entries: make([]PartEntry, entryCount),
		payload: data[payloadOff : payloadOff+payloadSize],
	}

	for i := 0; i < entryCount; i++ {
		ent := tableOff + i*PartEntrySize
		e := PartEntry{
			RelOffset: getU16(data, ent+0),
			Length:    getU16(data, ent+2),
			Kind:      types.SplitKind(data[ent+4]),
			ChunkIdx:  getU16(data, ent+6),
		}
		if e.RelOffset+e.Length > payloadSize {
			return nil, &types.ContainerError{Container: "part",
				Reason: fmt.Sprintf("entry %d: chunk payload out of bounds", i)}
		}
		blob.Entries[i] = e
	}

	return blob, nil
}

// ChunkText returns the raw text of the i-th entry in this part.
func (b *PartBlob) ChunkText(i int) string {
	e := &b.Entries[i]
	return string(b.payload[e.RelOffset : e.RelOffset+e.Length])
}

// LookupChunk finds the chunk with the given note-wide index, if this part
// holds it.
func (b *PartBlob) LookupChunk(chunkIdx int) (text string, kind types.SplitKind, ok bool) {
	for i := range b.Entries {
		if b.Entries[i].ChunkIdx == chunkIdx {
			return b.ChunkText(i), b.Entries[i].Kind, true
		}
	}
	return "", 0, false
}

// DecodeIndex parses and validates the index container blob.
func DecodeIndex(data []byte) ([]types.IndexEntry, error) {
	if len(data) < IndexHeaderSize {
		return nil, &types.ContainerError{Container: "index", Reason: "blob smaller than header"}
	}
	if !bytes.Equal(data[0:4], []byte(IndexMagic)) {
		return nil, &types.ContainerError{Container: "index", Reason: "bad magic"}
	}

	version := getU16(data, 4)
	headerSize := getU16(data, 6)
	if version != FormatVersion || headerSize != IndexHeaderSize {
		return nil, &types.ContainerError{Container: "index",
			Reason: fmt.Sprintf("version mismatch (version=%d, header_size=%d)", version, headerSize)}
	}

	noteCount := getU16(data, 8)
	entries := make([]types.IndexEntry, 0, noteCount)

	pos := headerSize
	for i := 0; i < noteCount; i++ {
		if pos+IndexEntryFixedSize > len(data) {
			return nil, &types.ContainerError{Container: "index", Reason: "truncated entry"}
		}
		titleLen := int(data[pos+12])
		entry := types.IndexEntry{
			NoteID:            getU16(data, pos+0),
			FirstPartID:       getU16(data, pos+2),
			PartCount:         getU16(data, pos+4),
			ChunkCount:        getU16(data, pos+6),
			TotalPayloadBytes: int(binary.LittleEndian.Uint32(data[pos+8:])),
		}
		pos += IndexEntryFixedSize
		if pos+titleLen > len(data) {
			return nil, &types.ContainerError{Container: "index", Reason: "truncated title"}
		}
		entry.Title = string(data[pos : pos+titleLen])
		pos += titleLen
		entries = append(entries, entry)
	}

	return entries, nil
}

func getU16(buf []byte, off int) int {
	return int(binary.LittleEndian.Uint16(buf[off:]))
}
