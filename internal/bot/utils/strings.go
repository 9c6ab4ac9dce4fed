package utils

import (
	"fmt"
	"strings"
	"time"
)

// TruncateString shortens s to at most maxLength runes, ending with "...".
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if maxLength <= 3 || len(runes) <= maxLength {
		return s
	}

	return string(runes[:maxLength-3]) + "..."
}

// NormalizeString replaces newlines with spaces and removes backticks
// to prevent Discord markdown formatting issues.
func NormalizeString(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "`", "")
}

// JoinOrDefault joins values with ", " or returns fallback when empty.
func JoinOrDefault(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}

	return strings.Join(values, ", ")
}

// RelativeTimestamp formats a Discord relative timestamp ("in 2 hours").
func RelativeTimestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}
