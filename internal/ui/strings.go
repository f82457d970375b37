package ui

import (
	"path"
	"strings"
)

// truncate shortens a string to the given limit, adding an ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}

// truncateMiddle shortens a source path or URL by cutting its middle, keeping
// the file name when it fits.
func truncateMiddle(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}

	if base := []rune(path.Base(value)); len(base)+2 <= limit && len(base) < len(runes) {
		head := limit - len(base) - 2
		return string(runes[:head]) + "…/" + string(base)
	}

	keep := limit - 1
	prefix := keep / 2
	suffix := keep - prefix
	return string(runes[:prefix]) + "…" + string(runes[len(runes)-suffix:])
}
