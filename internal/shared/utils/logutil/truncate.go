package logutil

import "unicode/utf8"

// TruncateForLog truncates a string to maxLen characters for safe logging.
// If the string is longer than maxLen, it appends "..." to indicate truncation.
func TruncateForLog(s string, maxLen int) string {
	if maxLen <= 0 {
		return "..."
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:runeBoundary(s, maxLen)] + "..."
}

// TruncateToColumn fits s into a column of maxLen bytes. Overlong values keep as many whole
// runes as fit in maxLen-3 bytes followed by "...", so the result is valid UTF-8 whenever s is
// and never longer than maxLen.
func TruncateToColumn(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:runeBoundary(s, max(maxLen, 0))]
	}
	return s[:runeBoundary(s, maxLen-3)] + "..."
}

// runeBoundary returns the largest index <= n that does not split a rune of s.
func runeBoundary(s string, n int) int {
	for n > 0 && n < len(s) && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}
