package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for the packing pipeline
var (
	// ErrInvalidSplitConfig indicates bad target/hard split parameters
	ErrInvalidSplitConfig = errors.New("invalid split configuration")
	// ErrChunkTooLarge indicates a single chunk cannot fit one container
	ErrChunkTooLarge = errors.New("chunk too large for container")
	// ErrBlobTooLarge indicates an assembled blob exceeds the container capacity
	ErrBlobTooLarge = errors.New("blob exceeds container capacity")
	// ErrBadContainer indicates a container blob failed decoding validation
	ErrBadContainer = errors.New("malformed container")
	// ErrNotFound indicates a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// SplitConfigError reports invalid splitter parameters. These are fatal
// pre-flight errors: the build must not start with a bad configuration.
type SplitConfigError struct {
	Target int
	Hard   int
	Reason string
}

func (e *SplitConfigError) Error() string {
	return fmt.Sprintf("invalid split configuration (target=%d, hard=%d): %s", e.Target, e.Hard, e.Reason)
}

func (e *SplitConfigError) Unwrap() error {
	return ErrInvalidSplitConfig
}

// PackError reports a packing infeasibility: a single chunk that cannot fit
// in one container even alone. It carries the offending size and the limit
// so the operator can lower the hard-split cap.
type PackError struct {
	NoteID   int
	ChunkIdx int
	Size     int // serialized size with header and one entry
	Limit    int
}

func (e *PackError) Error() string {
	return fmt.Sprintf("note %d chunk %d: single chunk too large for container (%d > %d); lower the hard split limit",
		e.NoteID, e.ChunkIdx, e.Size, e.Limit)
}

func (e *PackError) Unwrap() error {
	return ErrChunkTooLarge
}

// EncodeError reports a serialized blob exceeding the container capacity.
// Packing already guarantees this cannot happen; the encoder keeps the
// check as a final invariant guard, so seeing this error means a header or
// entry size miscalculation.
type EncodeError struct {
	Container string // container name, e.g. "NTX0001" or "NTXIDX"
	Size      int
	Limit     int
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("%s: encoded blob is %d bytes (capacity %d)", e.Container, e.Size, e.Limit)
}

func (e *EncodeError) Unwrap() error {
	return ErrBlobTooLarge
}

// ContainerError reports a validation failure while decoding a container.
type ContainerError struct {
	Container string // "part" or "index", plus name when known
	Reason    string
}

func (e *ContainerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Container, e.Reason)
}

func (e *ContainerError) Unwrap() error {
	return ErrBadContainer
}
