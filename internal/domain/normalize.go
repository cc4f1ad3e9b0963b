package domain

import "strings"

// NormalizeText prepares free-text search input for requests and cache keys:
//   - trims leading/trailing whitespace
//   - converts to lowercase
//   - compresses any run of whitespace into one space
//
// Diacritics, hyphens, and apostrophes are preserved.
func NormalizeText(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.Join(fields, " "))
}
