package text

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 200

	// Windows whose trimmed length does not exceed this are dropped;
	// fragments that short carry no retrievable signal.
	minChunkLen = 50
)

// Chunk splits text into overlapping fixed-size windows. Window start
// offsets advance by size-overlap, each window takes up to size runes and
// is trimmed before the length check. Tail fragments at or under the
// minimum length are dropped, not merged into the previous chunk.
//
// Pure function: identical inputs always yield identical output.
func Chunk(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	step := size - overlap
	if step <= 0 {
		step = size
	}

	runes := []rune(text)

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		window := strings.TrimSpace(string(runes[start:end]))
		if utf8.RuneCountInString(window) > minChunkLen {
			chunks = append(chunks, window)
		}
	}
	return chunks
}
