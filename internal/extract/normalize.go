package extract

import "strings"

// Normalize lower-cases recognized text for keyword matching. Field capture
// always runs against the original-case text so names and addresses keep
// their casing.
func Normalize(s string) string {
	return strings.ToLower(s)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// trimValue cleans a captured value before storage.
func trimValue(s string) string {
	return strings.TrimSpace(s)
}
