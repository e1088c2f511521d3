// Package validation holds the pure field validators run before any write.
package validation

import (
	"regexp"
	"strings"
)

// Conservative local@domain.tld shape; full RFC compliance is not the goal.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var nonDigits = regexp.MustCompile(`\D`)

// StripNationalID removes every non-digit character from a raw national
// identifier. Identifiers are stored digits-only.
func StripNationalID(raw string) string {
	return nonDigits.ReplaceAllString(raw, "")
}

// NationalID reports whether raw contains exactly 11 digits once all
// punctuation is stripped. The check digit is not verified.
func NationalID(raw string) bool {
	return len(StripNationalID(raw)) == 11
}

// Email reports whether raw looks like a plausible email address.
func Email(raw string) bool {
	return emailPattern.MatchString(strings.TrimSpace(raw))
}
