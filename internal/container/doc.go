// Package container implements the binary wire formats for notepack blobs.
//
// Two container layouts exist, both little-endian and both capped at
// MaxContainerBytes (the TI-OS AppVar limit):
//
// Part container ("NTXP"): a 24-byte fixed header, an 8-byte entry per
// chunk, then the concatenated raw chunk bytes. The entry table gives the
// viewer O(1) random access to any chunk: each entry carries the chunk's
// relative payload offset, byte length, split kind and note-wide index.
//
// Index container ("NTXI"): a 16-byte fixed header followed by one
// variable-length entry per note (note id, first global part id, part
// count, chunk count, total payload bytes, length-prefixed title).
//
// EncodePart and EncodeIndex are pure functions of the domain types;
// persistence belongs to the caller. Both re-check the capacity bound as a
// final invariant guard even though the packer already enforces it.
// DecodePart and DecodeIndex perform the same validation the on-device
// viewer does, and back `notepack inspect` and the round-trip tests.
package container
