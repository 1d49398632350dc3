// Package scope narrows mutation discovery to the lines touched by a unified
// diff, so a run can be pointed at "only what changed" without caching any
// result across invocations.
package scope

import (
	"bytes"
	"fmt"
	"os"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// FileName is a path as it appears in a diff's "+++" header.
type FileName string

// Change is a contiguous range of added lines in a file.
type Change struct {
	StartLine int
	EndLine   int
}

// Diff maps file names to their list of changed line ranges.
type Diff map[FileName][]Change

// New parses the unified diff at path. An empty path is not an error: it
// means no scoping was requested, and the returned Diff is nil.
func New(path string) (Diff, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read diff file %q: %w", path, err)
	}

	files, _, err := gitdiff.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not parse diff file %q: %w", path, err)
	}

	return newDiff(files), nil
}

func newDiff(files []*gitdiff.File) Diff {
	result := Diff{}

	for _, file := range files {
		name, changes := newChanges(file)
		result[name] = changes
	}

	return result
}

func newChanges(file *gitdiff.File) (FileName, []Change) {
	var changes []Change

	for _, fragment := range file.TextFragments {
		if fragment.LinesAdded == 0 {
			continue
		}

		startLine := int(fragment.NewPosition + fragment.LeadingContext)

		changes = append(changes, Change{
			StartLine: startLine,
			EndLine:   startLine + int(fragment.LinesAdded-1),
		})
	}

	return FileName(file.NewName), changes
}

// IsChanged reports whether line, in file, falls inside a changed region.
// A nil or empty Diff means no scoping is in effect, so every position is
// considered changed.
func (d Diff) IsChanged(file string, line int) bool {
	if len(d) == 0 {
		return true
	}

	for _, change := range d[FileName(file)] {
		if line >= change.StartLine && line <= change.EndLine {
			return true
		}
	}

	return false
}
