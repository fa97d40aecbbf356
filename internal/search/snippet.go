package search

import (
	"strings"
	"unicode/utf8"
)

// sentenceEnds holds the terminators the truncation backs up to: the full
// stop and the Devanagari danda used in Marathi prose.
var sentenceEnds = []string{".", "।"}

// TruncateSnippet cuts text down to at most maxLen characters, preferring to
// end at the last sentence boundary inside the budget. The cut never splits
// a multi-byte rune.
func TruncateSnippet(text string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(text) <= maxLen {
		return text
	}

	// Find the byte offset of the maxLen-th rune.
	end := 0
	for i := 0; i < maxLen; i++ {
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}
	snippet := text[:end]

	lastEnd := -1
	for _, mark := range sentenceEnds {
		if idx := strings.LastIndex(snippet, mark); idx != -1 && idx+len(mark) > lastEnd {
			lastEnd = idx + len(mark)
		}
	}
	if lastEnd != -1 {
		snippet = snippet[:lastEnd]
	}
	return snippet
}
