package common

import (
	"strings"
	"unicode"
)

// UnsafeNameChars are stripped from externally supplied names before they
// are used as a path segment.
const UnsafeNameChars = `[]/\:*?"<>|`

// SanitizeName removes filesystem-unsafe characters and control characters
// from name. Whitespace is collapsed to a single underscore. An empty
// result becomes "camera".
func SanitizeName(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsSpace(r):
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
			continue
		case strings.ContainsRune(UnsafeNameChars, r), unicode.IsControl(r):
			continue
		}
		b.WriteRune(r)
		lastUnderscore = false
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "camera"
	}
	return out
}
