// Package textx provides small text utilities for OCR output.
package textx

import (
	"strings"
)

// SanitizeText removes control characters except tab, newline and carriage
// return, then trims surrounding space.
func SanitizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// CompactLines normalizes line endings, trims trailing spaces on each line
// and collapses runs of blank lines into one.
func CompactLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimRight(l, " \t")
		if l == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// Clean applies SanitizeText then CompactLines.
func Clean(s string) string {
	return CompactLines(SanitizeText(s))
}
