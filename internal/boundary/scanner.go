package boundary

import (
	"regexp"
	"sort"
	"unicode"
	"unicode/utf8"
)

// mathState tracks TeX math mode during the scan. Modeling it as a single
// enum keeps the invariant that inline and display math are never active
// at the same time.
type mathState uint8

const (
	mathNone mathState = iota
	mathInline
	mathDisplay
)

// Set holds the candidate split points of one note: strictly increasing,
// deduplicated byte offsets into the UTF-8 text. Each offset marks a
// position after which a split is permitted.
type Set struct {
	Sentence   []int
	Paragraph  []int
	Whitespace []int
}

// paragraphRe matches a maximal run of two or more line breaks, each
// optionally followed by horizontal whitespace. The end offset of every
// match is a paragraph boundary.
var paragraphRe = regexp.MustCompile(`(?:\r?\n[ \t]*){2,}`)

// Scan walks the text once and classifies candidate split points into the
// three boundary sets. Boundaries inside $...$ or $$...$$ spans are
// suppressed so formulas are never split; paragraph boundaries are computed
// over the whole text, math-insensitive.
func Scan(text string) Set {
	var sentence, whitespace []int

	state := mathNone
	n := len(text)

	for i := 0; i < n; {
		if text[i] == '$' && (i == 0 || text[i-1] != '\\') {
			if i+1 < n && text[i+1] == '$' {
				// $$ toggles display math; inside inline math it is inert,
				// mirroring how a single $ is inert inside display math.
				switch state {
				case mathNone:
					state = mathDisplay
				case mathDisplay:
					state = mathNone
				}
				i += 2
				continue
			}
			if state != mathDisplay {
				if state == mathInline {
					state = mathNone
				} else {
					state = mathInline
				}
				i++
				continue
			}
		}

		r, size := utf8.DecodeRuneInString(text[i:])

		if state == mathNone {
			if unicode.IsSpace(r) {
				whitespace = append(whitespace, i+size)
			}
			if r == '.' || r == '?' || r == '!' {
				if j := i + 1; sentenceEndsAt(text, j) {
					sentence = append(sentence, j)
				}
			}
		}

		i += size
	}

	var paragraph []int
	for _, m := range paragraphRe.FindAllStringIndex(text, -1) {
		paragraph = append(paragraph, m[1])
	}

	return Set{
		Sentence:   sortDedup(sentence),
		Paragraph:  sortDedup(paragraph),
		Whitespace: sortDedup(whitespace),
	}
}

// sentenceEndsAt applies the sentence heuristic for terminal punctuation
// ending at byte offset j: the next character must be end-of-text or
// whitespace, and the first non-whitespace character after it must be
// end-of-text or not a lowercase letter. The lowercase rule suppresses
// splits before lowercase continuations such as abbreviations; it is a
// deliberate heuristic and part of the deterministic contract.
func sentenceEndsAt(text string, j int) bool {
	if j >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[j:])
	if !unicode.IsSpace(r) {
		return false
	}
	k := j
	for k < len(text) {
		r, size := utf8.DecodeRuneInString(text[k:])
		if !unicode.IsSpace(r) {
			return !unicode.IsLower(r)
		}
		k += size
	}
	return true
}

func sortDedup(offsets []int) []int {
	if len(offsets) == 0 {
		return nil
	}
	sort.Ints(offsets)
	out := offsets[:1]
	for _, v := range offsets[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
