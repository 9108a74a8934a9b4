package utils

import (
	"strings"
	"unicode"
)

// NormalizeString trims whitespace and collapses inner runs of spaces.
func NormalizeString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeEmail normalizes email addresses (lowercase and trim)
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SameEmail compares two addresses the way customers type them.
func SameEmail(a, b string) bool {
	a, b = NormalizeEmail(a), NormalizeEmail(b)
	return a != "" && a == b
}

// NormalizePhone keeps digits and a leading +.
func NormalizePhone(phone string) string {
	cleaned := strings.TrimSpace(phone)
	if cleaned == "" {
		return ""
	}

	var result strings.Builder
	for i, r := range cleaned {
		if i == 0 && r == '+' {
			result.WriteRune(r)
		} else if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
