package container

import (
	"encoding/binary"
	"fmt"

	"github.com/dshills/notepack/pkg/types"
)

// EncodePart serializes a part into its container blob: fixed header,
// per-chunk entry table, then the concatenated raw chunk bytes.
func EncodePart(p *types.Part) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("part %s: %w", p.Name(), err)
	}
	if err := checkU16("note_id", p.NoteID); err != nil {
		return nil, err
	}
	if err := checkU16("part_index", p.Index); err != nil {
		return nil, err
	}
	if err := checkU16("part_count", p.Count); err != nil {
		return nil, err
	}
	if err := checkU16("entry_count", len(p.Chunks)); err != nil {
		return nil, err
	}

	payloadSize := p.PayloadBytes()
	size := PartHeaderSize + len(p.Chunks)*PartEntrySize + payloadSize
	if size > MaxContainerBytes {
		return nil, &types.EncodeError{Container: p.Name(), Size: size, Limit: MaxContainerBytes}
	}
	if err := checkU16("payload_size", payloadSize); err != nil {
		return nil, err
	}

	buf := make([]byte, size)
	copy(buf[0:4], PartMagic)
	putU16(buf, 4, FormatVersion)
	putU16(buf, 6, PartHeaderSize)
	putU16(buf, 8, p.NoteID)
	putU16(buf, 10, p.Index)
	putU16(buf, 12, p.Count)
	putU16(buf, 14, len(p.Chunks))
	putU16(buf, 16, PartHeaderSize) // chunk table immediately follows the header
	payloadOff := PartHeaderSize + len(p.Chunks)*PartEntrySize
	putU16(buf, 18, payloadOff)
	putU16(buf, 20, payloadSize)
	putU16(buf, 22, 0) // reserved

	rel := 0
	for i := range p.Chunks {
		c := &p.Chunks[i]
		if err := checkU16("chunk_idx", c.Idx); err != nil {
			return nil, err
		}
		if err := checkU16("chunk length", c.ByteLen()); err != nil {
			return nil, err
		}
		ent := PartHeaderSize + i*PartEntrySize
		putU16(buf, ent+0, rel)
		putU16(buf, ent+2, c.ByteLen())
		buf[ent+4] = byte(c.Kind)
		buf[ent+5] = 0 // flags, reserved
		putU16(buf, ent+6, c.Idx)

		copy(buf[payloadOff+rel:], c.Text)
		rel += c.ByteLen()
	}

	return buf, nil
}

// EncodeIndex serializes the cross-note index container: fixed header, then
// one variable-length entry per note. Titles longer than MaxTitleBytes are
// truncated.
func EncodeIndex(entries []types.IndexEntry) ([]byte, error) {
	if err := checkU16("note_count", len(entries)); err != nil {
		return nil, err
	}

	size := IndexHeaderSize
	for i := range entries {
		size += IndexEntryFixedSize + len(truncateTitle(entries[i].Title))
	}
	if size > MaxContainerBytes {
		return nil, &types.EncodeError{Container: types.IndexName, Size: size, Limit: MaxContainerBytes}
	}

	buf := make([]byte, size)
	copy(buf[0:4], IndexMagic)
	putU16(buf, 4, FormatVersion)
	putU16(buf, 6, IndexHeaderSize)
	putU16(buf, 8, len(entries))
	// bytes 10..15 reserved (uint16 + uint32), already zero

	pos := IndexHeaderSize
	for i := range entries {
		e := &entries[i]
		if err := checkU16("note_id", e.NoteID); err != nil {
			return nil, err
		}
		if err := checkU16("first_part_id", e.FirstPartID); err != nil {
			return nil, err
		}
		if err := checkU16("part_count", e.PartCount); err != nil {
			return nil, err
		}
		if err := checkU16("chunk_count", e.ChunkCount); err != nil {
			return nil, err
		}
		if e.TotalPayloadBytes < 0 || int64(e.TotalPayloadBytes) > int64(^uint32(0)) {
			return nil, fmt.Errorf("total_payload_bytes out of range: %d", e.TotalPayloadBytes)
		}

		title := truncateTitle(e.Title)
		putU16(buf, pos+0, e.NoteID)
		putU16(buf, pos+2, e.FirstPartID)
		putU16(buf, pos+4, e.PartCount)
		putU16(buf, pos+6, e.ChunkCount)
		binary.LittleEndian.PutUint32(buf[pos+8:], uint32(e.TotalPayloadBytes))
		buf[pos+12] = byte(len(title))
		buf[pos+13] = 0 // reserved
		pos += IndexEntryFixedSize
		copy(buf[pos:], title)
		pos += len(title)
	}

	return buf, nil
}

func truncateTitle(title string) []byte {
	b := []byte(title)
	if len(b) > MaxTitleBytes {
		b = b[:MaxTitleBytes]
	}
	return b
}

func putU16(buf []byte, off, v int) {
	binary.LittleEndian.PutUint16(buf[off:], uint16(v))
}

func checkU16(field string, v int) error {
	if v < 0 || v > int(^uint16(0)) {
		return fmt.Errorf("%s out of uint16 range: %d", field, v)
	}
	return nil
}
