// Package boundary detects candidate split points in note text.
//
// A single left-to-right scan classifies positions into three independent
// ordered sets: sentence ends, paragraph ends and whitespace. All offsets
// are byte offsets into the UTF-8 text, marking positions after which a
// split is permitted. A small math-mode state machine suppresses sentence
// and whitespace boundaries inside $...$ and $$...$$ spans so the splitter
// never cuts a formula.
package boundary
