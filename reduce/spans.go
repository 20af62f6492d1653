package reduce

import "unicode/utf8"

// span is a half-open [Start, End) rune interval in the shared character
// stream formed by concatenating tokens (or words) without separators.
type span struct {
	Start int
	End   int
}

// runeSpans computes each item's span in the concatenated stream once, so
// the merge never re-derives positions by string search.
func runeSpans(items []string) []span {
	spans := make([]span, len(items))
	cursor := 0
	for i, it := range items {
		n := utf8.RuneCountInString(it)
		spans[i] = span{Start: cursor, End: cursor + n}
		cursor += n
	}
	return spans
}

// overlaps reports whether two spans share at least one rune.
func (s span) overlaps(o span) bool {
	return s.Start < o.End && o.Start < s.End
}

// length returns the span's rune count.
func (s span) length() int {
	return s.End - s.Start
}
