package types

import "errors"

// SplitKind records the structural reason a chunk ends where it does.
// The numeric values are part of the wire format and must not change.
type SplitKind uint8

const (
	SplitNone       SplitKind = 0 // final chunk, no boundary needed
	SplitSentence   SplitKind = 1
	SplitParagraph  SplitKind = 2
	SplitWhitespace SplitKind = 3
	SplitHard       SplitKind = 4 // forced at the hard byte cap
)

// String returns the human-readable name of the split kind.
func (k SplitKind) String() string {
	switch k {
	case SplitNone:
		return "none"
	case SplitSentence:
		return "sentence"
	case SplitParagraph:
		return "paragraph"
	case SplitWhitespace:
		return "whitespace"
	case SplitHard:
		return "hard"
	default:
		return "unknown"
	}
}

// Valid reports whether the kind is one of the defined values.
func (k SplitKind) Valid() bool {
	return k <= SplitHard
}

// Chunk is a contiguous substring of a note's text, the unit of splitting.
// Chunks partition the note exactly: concatenating a note's chunks in Idx
// order reproduces the original text byte for byte.
type Chunk struct {
	// Text is the raw chunk content (UTF-8 substring of the note).
	Text string

	// Kind records why the chunk ends where it does.
	Kind SplitKind

	// Idx is the chunk's zero-based index within its note. It is unique
	// and strictly increasing across the note's chunk sequence.
	Idx int
}

// ByteLen returns the UTF-8 encoded length of the chunk text.
func (c *Chunk) ByteLen() int {
	return len(c.Text)
}

// Validate checks the chunk invariants: non-empty text, a defined split
// kind, and a non-negative index.
func (c *Chunk) Validate() error {
	if c.Text == "" {
		return errors.New("chunk text cannot be empty")
	}
	if !c.Kind.Valid() {
		return errors.New("invalid split kind")
	}
	if c.Idx < 0 {
		return errors.New("chunk index must be non-negative")
	}
	return nil
}
