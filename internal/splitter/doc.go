// Package splitter cuts note text into byte-bounded chunks at the least
// harmful positions.
//
// For each chunk the splitter searches for the latest eligible boundary
// within the target window, trying boundary kinds in priority order:
// sentence end, paragraph end, whitespace. If none exists the whitespace
// search is retried with the window widened to the hard cap, and only when
// that fails too is the text cut exactly at the cap (a "hard split",
// reported as a diagnostic since it may land mid-word).
//
// The output partitions the input exactly and is deterministic for a given
// text and parameter pair.
package splitter
