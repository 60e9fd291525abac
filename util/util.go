// Package util contains misc internal utilities.
package util

import (
	"time"
	"unicode"
)

// AllElementsNumbers returns true if every rune in the string is a digit
// or decimal point.  It is used to detect bare numbers in duration query
// parameters so a unit can be appended.
func AllElementsNumbers(s string) bool {
	for _, r := range s {
		if !(unicode.IsDigit(r) || r == '.') {
			return false
		}
	}
	return len(s) > 0
}

// SecsToDuration converts a floating point number of seconds to a Duration
func SecsToDuration(s float64) time.Duration {
	return time.Duration(int(s*1e9)) * time.Nanosecond
}
