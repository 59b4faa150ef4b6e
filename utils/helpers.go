package utils

import "strings"

// SanitizeFilenameToken replaces characters that are unsafe inside a
// Content-Disposition filename with hyphens.
func SanitizeFilenameToken(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			return r
		default:
			return '-'
		}
	}, s)
}
