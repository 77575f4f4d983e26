// utils/validator.go - Input validation
package utils

import (
	"strings"
)

// MaxJustificationLength bounds the free-text unlock justification.
const MaxJustificationLength = 1000

// ValidateJustification checks the human-entered unlock justification.
func ValidateJustification(reason string) (bool, string) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return false, "Justification must not be empty"
	}
	if len(reason) > MaxJustificationLength {
		return false, "Justification is too long"
	}
	return true, ""
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove leading/trailing spaces
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}
