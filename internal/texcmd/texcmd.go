// Package texcmd validates the LaTeX-style commands used in notes against
// the whitelist the on-calculator renderer supports. Unknown commands are
// reported as build diagnostics, never errors: the pack still builds, the
// renderer just shows those commands as raw text.
package texcmd

import (
	"bufio"
	"os"
	"regexp"
	"sort"
)

var (
	// bulletRe matches one whitelist line: a markdown bullet naming a
	// backslash command, e.g. "- \frac".
	bulletRe = regexp.MustCompile(`^\s*-\s+\\+([A-Za-z]+)\s*$`)

	// commandRe matches a command use in note text.
	commandRe = regexp.MustCompile(`\\([A-Za-z]+)`)
)

// LoadSupported parses the supported-command list from a markdown file.
// Lines that are not command bullets are ignored. A missing file surfaces
// as the underlying *PathError so callers can degrade to a diagnostic.
func LoadSupported(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	supported := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if m := bulletRe.FindStringSubmatch(scanner.Text()); m != nil {
			supported[m[1]] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return supported, nil
}

// Used collects the set of backslash commands appearing in the text.
func Used(text string) map[string]bool {
	used := make(map[string]bool)
	for _, m := range commandRe.FindAllStringSubmatch(text, -1) {
		used[m[1]] = true
	}
	return used
}

// Unknown returns the used commands missing from the whitelist, sorted for
// stable diagnostics.
func Unknown(used, supported map[string]bool) []string {
	var unknown []string
	for cmd := range used {
		if !supported[cmd] {
			unknown = append(unknown, cmd)
		}
	}
	sort.Strings(unknown)
	return unknown
}
