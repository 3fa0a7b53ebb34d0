// Package format renders passwords for the terminal.
package format

import "strings"

// ChunkSize is the default group length for displayed passwords.
const ChunkSize = 4

// Chunk splits s into groups of size runes separated by single spaces.
// Strings that fit into one group are returned unchanged.
func Chunk(s string, size int) string {
	runes := []rune(s)
	if size <= 0 || len(runes) <= size {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + len(runes)/size)
	for i, r := range runes {
		if i > 0 && i%size == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
