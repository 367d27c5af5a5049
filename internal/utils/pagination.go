// Package utils provides small, generic helpers shared across layers.
package utils

import "strconv"

// AtoiDefault converts a string to an int, returning def when the string is
// empty or unparsable. Used for pagination query parameters, where a bad
// value should fall back to the default page rather than error.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
