package container

// Wire format constants. All multi-byte integers are little-endian and all
// offsets and lengths refer to UTF-8 encoded payload bytes. The layout is
// shared with the on-calculator viewer and must not change without a
// version bump.
const (
	// MaxContainerBytes is the TI-OS AppVar data cap. No serialized part
	// or index blob may exceed it.
	MaxContainerBytes = 65512

	// FormatVersion is the current container format version.
	FormatVersion = 1

	// PartMagic tags a part container blob.
	PartMagic = "NTXP"
	// IndexMagic tags the index container blob.
	IndexMagic = "NTXI"

	// PartHeaderSize is the fixed part header size: magic[4] plus ten
	// uint16 fields.
	PartHeaderSize = 24

	// PartEntrySize is the fixed per-chunk entry size: rel_offset u16,
	// length u16, kind u8, flags u8, chunk_idx u16.
	PartEntrySize = 8

	// IndexHeaderSize is the fixed index header size: magic[4], version
	// u16, header_size u16, note_count u16, reserved u16, reserved u32.
	IndexHeaderSize = 16

	// IndexEntryFixedSize is the fixed portion of an index entry, before
	// the variable-length title bytes.
	IndexEntryFixedSize = 14

	// MaxTitleBytes caps the stored title length (uint8 length prefix).
	MaxTitleBytes = 255
)
