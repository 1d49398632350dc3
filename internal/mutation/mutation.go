// Package mutation holds the Mutation data model, the operator catalog, and
// the discovery walk that finds mutation sites in a parsed source tree.
package mutation

import (
	"bytes"

	"github.com/polymute/polymute/internal/language"
)

// Mutation is a single proposed perturbation of a source file, as described
// in the catalog entry that produced it.
type Mutation struct {
	File        string
	Language    language.Tag
	Line        int
	Column      int
	StartByte   uint32
	EndByte     uint32
	Operator    Tag
	Original    []byte
	Replacement []byte

	ContextBefore []string
	ContextAfter  []string

	// RefID is assigned post-discovery, in emission order: "m1", "m2", ...
	RefID string
}

// contextLines is N in "up to N lines of surrounding source" (spec'd ≈3).
const contextLines = 3

// lineColumn converts a byte offset into 1-indexed line/column coordinates.
func lineColumn(source []byte, offset uint32) (line, column int) {
	line = 1
	lastNewline := -1

	for i := 0; i < int(offset) && i < len(source); i++ {
		if source[i] == '\n' {
			line++
			lastNewline = i
		}
	}

	column = int(offset) - lastNewline

	return line, column
}

// surroundingLines returns up to contextLines lines before/after the line
// containing offset, for display purposes only.
func surroundingLines(source []byte, offset uint32) (before, after []string) {
	lines := bytes.Split(source, []byte("\n"))
	lineNum, _ := lineColumn(source, offset)
	idx := lineNum - 1

	start := idx - contextLines
	if start < 0 {
		start = 0
	}
	for i := start; i < idx && i < len(lines); i++ {
		before = append(before, string(lines[i]))
	}

	end := idx + 1 + contextLines
	if end > len(lines) {
		end = len(lines)
	}
	for i := idx + 1; i < end; i++ {
		after = append(after, string(lines[i]))
	}

	return before, after
}
