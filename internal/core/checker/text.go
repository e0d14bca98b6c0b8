package checker

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText folds extraction artifacts (ligatures, full-width forms,
// CRLF line endings) so that the line patterns see plain text.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return norm.NFKC.String(text)
}

// SplitLines returns the trimmed, non-empty lines of text in order.
func SplitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func wordCount(line string) int {
	return len(strings.Fields(line))
}

// snippet returns the text surrounding [start,end) widened by radius runes on
// each side, flattened onto one line.
func snippet(text string, start, end, radius int) string {
	from := start
	for i := 0; i < radius && from > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}
	to := end
	for i := 0; i < radius && to < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}
	return strings.TrimSpace(strings.ReplaceAll(text[from:to], "\n", " "))
}
