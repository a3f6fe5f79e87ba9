// Package sanitizer normalizes client-supplied contact fields before
// validation and storage. All functions are idempotent and never error;
// invalid input comes back trimmed or empty rather than rejected. Rejection
// is the validator's job.
package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims leading/trailing whitespace and collapses inner
// whitespace runs to a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone keeps digits and a single leading plus, dropping the
// spaces, dashes and parentheses people type into phone fields.
func NormalizePhone(phone string) string {
	var result strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		if r == '+' && i == 0 {
			result.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

func NormalizeNotes(notes string) string {
	return TrimAndNormalize(notes)
}
