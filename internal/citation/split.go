package citation

import (
	"regexp"
	"strings"
)

// entryStartPattern matches the "YYYY -" prefix that begins a citation entry.
var entryStartPattern = regexp.MustCompile(`^\d{4}\s*-\s`)

// SplitLines returns the non-blank lines of text, trimmed.
func SplitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// SplitEntries groups lines into citation entries. A line starting with
// "YYYY -" begins a new entry; other lines continue the previous entry.
// Lines before the first dated line each form their own entry.
func SplitEntries(text string) []string {
	var entries []string
	continuing := false
	for _, line := range SplitLines(text) {
		if entryStartPattern.MatchString(line) {
			entries = append(entries, line)
			continuing = true
			continue
		}
		if continuing {
			entries[len(entries)-1] += " " + line
			continue
		}
		entries = append(entries, line)
	}
	return entries
}
