package layout

import "strings"

// Wrap breaks text into lines no wider than width using greedy word
// wrapping. Words are separated by whitespace; a word wider than width is
// placed alone on its own line rather than hyphenated. Empty input yields an
// empty slice.
func Wrap(text string, width float64, measure func(string) float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{}
	}

	lines := make([]string, 0, 1)
	current := words[0]
	for _, w := range words[1:] {
		candidate := current + " " + w
		if measure(candidate) > width {
			lines = append(lines, current)
			current = w
			continue
		}
		current = candidate
	}
	return append(lines, current)
}

// WrapFont wraps text with the metrics of f as reported by m.
func WrapFont(m Measurer, text string, width float64, f Font) []string {
	return Wrap(text, width, func(s string) float64 { return m.TextWidth(s, f) })
}
