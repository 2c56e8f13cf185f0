package search

import "strings"

const maxQueryLength = 100

// SanitizeQuery trims free text and caps its length. Match queries don't parse
// operators, so nothing needs escaping.
func SanitizeQuery(input string) string {
	input = strings.TrimSpace(input)
	if r := []rune(input); len(r) > maxQueryLength {
		input = strings.TrimSpace(string(r[:maxQueryLength]))
	}
	return input
}
