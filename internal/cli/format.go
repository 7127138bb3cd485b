package cli

import (
	"os"
	"strings"
	"time"
)

// Truncate cuts s to at most width characters, appending "..." when
// something was removed and the width allows it.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

// CompressMiddle shortens s to width by replacing its middle with "...",
// keeping both ends visible. Useful for long file paths.
func CompressMiddle(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 5 {
		return Truncate(s, width)
	}
	head := (width - 3) / 2
	tail := width - 3 - head
	return string(runes[:head]) + "..." + string(runes[len(runes)-tail:])
}

// EscapeNewlines replaces newlines with their escape sequence so a
// multi-line preview fits on one table row.
func EscapeNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", "\\n")
}

// FormatMtime renders a file modification time, or "-" when unknown.
func FormatMtime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// PathMtime stats path and returns its modification time, zero on error.
func PathMtime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
