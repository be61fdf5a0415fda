package splitter

import (
	"sort"

	"github.com/dshills/notepack/internal/boundary"
	"github.com/dshills/notepack/pkg/types"
)

// Sink receives non-fatal quality diagnostics from the splitter. Warnings
// never alter the output; they are collected and reported after the build.
type Sink interface {
	Warnf(format string, args ...interface{})
}

// Splitter cuts note text into chunks no larger than the target byte size,
// preferring sentence ends, then paragraph ends, then whitespace. When no
// boundary exists within the target window the whitespace search widens to
// the hard cap, and as a last resort the text is cut exactly at the cap.
//
// Splitting is fully deterministic: identical text and parameters always
// yield a byte-identical chunk sequence.
type Splitter struct {
	target int
	hard   int
}

// New validates the size parameters and returns a Splitter. Both sizes are
// in encoded bytes; target must be positive and no larger than hard.
func New(targetBytes, hardBytes int) (*Splitter, error) {
	if targetBytes <= 0 || hardBytes <= 0 {
		return nil, &types.SplitConfigError{Target: targetBytes, Hard: hardBytes,
			Reason: "sizes must be positive"}
	}
	if targetBytes > hardBytes {
		return nil, &types.SplitConfigError{Target: targetBytes, Hard: hardBytes,
			Reason: "target must be <= hard"}
	}
	return &Splitter{target: targetBytes, hard: hardBytes}, nil
}

// finder is one boundary search strategy. The strategies are tried in
// priority order; each finds the latest eligible boundary in its set.
type finder struct {
	kind    types.SplitKind
	offsets []int
}

// Split produces the ordered chunk sequence covering text exactly. The
// source label is used in diagnostics only.
func (s *Splitter) Split(text string, bounds boundary.Set, source string, diag Sink) []types.Chunk {
	if diag == nil {
		diag = nopSink{}
	}

	finders := []finder{
		{types.SplitSentence, bounds.Sentence},
		{types.SplitParagraph, bounds.Paragraph},
		{types.SplitWhitespace, bounds.Whitespace},
	}

	var chunks []types.Chunk
	n := len(text)
	start := 0
	idx := 0

	for start < n {
		if n-start <= s.target {
			chunks = append(chunks, types.Chunk{Text: text[start:], Kind: types.SplitNone, Idx: idx})
			idx++
			break
		}

		preferredEnd := min(start+s.target, n)
		hardEnd := min(start+s.hard, n)

		end, kind, ok := 0, types.SplitHard, false
		for _, f := range finders {
			if off, found := findLatest(f.offsets, preferredEnd, start); found {
				end, kind, ok = off, f.kind, true
				break
			}
		}
		if !ok {
			// No boundary within the target window; retry whitespace with
			// the window widened to the hard cap.
			if off, found := findLatest(bounds.Whitespace, hardEnd, start); found {
				end, kind, ok = off, types.SplitWhitespace, true
			}
		}
		if !ok {
			end, kind = hardEnd, types.SplitHard
			diag.Warnf("%s: hard split at byte %d; consider inserting separators to improve chunking",
				source, end)
		}

		chunks = append(chunks, types.Chunk{Text: text[start:end], Kind: kind, Idx: idx})
		idx++
		start = end
	}

	// A chunk over the hard cap can only happen via the hard fallback when
	// a single boundary-free span exceeds the cap. Advisory: the caller
	// must judge whether the cap or the text is at fault.
	for i := range chunks {
		if chunks[i].ByteLen() > s.hard {
			diag.Warnf("%s: chunk %d is %d bytes (> hard cap %d); runtime may fail",
				source, chunks[i].Idx, chunks[i].ByteLen(), s.hard)
		}
	}

	return chunks
}

// findLatest returns the greatest boundary offset <= upper and strictly
// greater than lower. Offsets must be sorted ascending.
func findLatest(offsets []int, upper, lower int) (int, bool) {
	i := sort.SearchInts(offsets, upper+1) - 1
	if i < 0 || offsets[i] <= lower {
		return 0, false
	}
	return offsets[i], true
}

type nopSink struct{}

func (nopSink) Warnf(string, ...interface{}) {}
