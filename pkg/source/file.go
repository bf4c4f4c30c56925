package source

import (
	"sort"
	"strings"
)

// File wraps a source buffer with a precomputed line index so byte offsets
// can be converted to line/column positions in O(log n).
type File struct {
	// Name is the display path of the file ("<stdin>" for stdin input).
	Name string

	// Content is the newline-normalized source text.
	Content string

	// lineStarts[i] is the byte offset of the first byte of line i+1.
	lineStarts []int
}

// NewFile builds a File and its line index. Content must already be
// newline-normalized (LF only); see Normalize.
func NewFile(name, content string) *File {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &File{Name: name, Content: content, lineStarts: starts}
}

// Normalize converts CRLF and lone CR line endings to LF.
// Spans are always computed against the normalized text.
func Normalize(content string) string {
	if !strings.ContainsRune(content, '\r') {
		return content
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}

// Position converts a byte offset into a 1-based line/column position.
// Offsets past the end of the buffer map to the final position.
func (f *File) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(f.Content) {
		offset = len(f.Content)
	}
	// Find the last line start <= offset.
	idx := sort.Search(len(f.lineStarts), func(i int) bool {
		return f.lineStarts[i] > offset
	}) - 1
	return Position{Line: idx + 1, Column: offset - f.lineStarts[idx] + 1}
}

// LineCount returns the number of lines in the file.
func (f *File) LineCount() int {
	return len(f.lineStarts)
}

// Line returns the 1-based line's text without its trailing newline.
func (f *File) Line(n int) string {
	if n < 1 || n > len(f.lineStarts) {
		return ""
	}
	start := f.lineStarts[n-1]
	end := len(f.Content)
	if n < len(f.lineStarts) {
		end = f.lineStarts[n] - 1
	}
	if start > end {
		return ""
	}
	return f.Content[start:end]
}
