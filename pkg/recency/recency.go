// Package recency holds the shared "latest N" and truncation helpers used
// by both the frame view and the application API.
package recency

// Latest returns up to n of the newest items in s, newest first. The input
// is ordered by arrival, oldest first, and is not modified.
func Latest[T any](s []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if n > len(s) {
		n = len(s)
	}
	out := make([]T, 0, n)
	for i := len(s) - 1; i >= len(s)-n; i-- {
		out = append(out, s[i])
	}
	return out
}

// Truncate caps s at max runes, appending a marker when anything was cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
