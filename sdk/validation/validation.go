// Package validation holds small helpers for request validation and
// nullable field handling.
package validation

import "strings"

func StringPtr(s string) *string {
	return &s
}

// Blank reports whether s is empty after trimming whitespace.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
