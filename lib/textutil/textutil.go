package textutil

import (
	"strings"
	"unicode/utf8"
)

// SplitKeyValue splits a `key：value` / `key:value` line on its first
// separator, full-width or ASCII. Returns ok=false when no separator exists
// or either side is empty after trimming.
func SplitKeyValue(line string) (key, value string, ok bool) {
	idx := strings.IndexAny(line, "：:")
	if idx < 0 {
		return "", "", false
	}
	_, width := utf8.DecodeRuneInString(line[idx:])
	key = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+width:])
	if key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}

// ContainsAny reports whether s contains any of the given substrings.
func ContainsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// TruncateBefore cuts s at the first occurrence of marker, returning the
// prefix. s is returned unchanged when the marker is absent.
func TruncateBefore(s, marker string) string {
	if idx := strings.Index(s, marker); idx >= 0 {
		return s[:idx]
	}
	return s
}
