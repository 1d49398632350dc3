// Package language maps a target file's extension to the language tag that
// selects its grammar and operator subset.
package language

import (
	"path/filepath"
	"strings"

	"github.com/polymute/polymute/internal/execution"
)

// Tag identifies one of the languages this tool understands.
type Tag string

// The supported language tags.
const (
	Python     Tag = "python"
	JavaScript Tag = "javascript"
	TypeScript Tag = "typescript"
	Rust       Tag = "rust"
)

var byExtension = map[string]Tag{
	".py":  Python,
	".js":  JavaScript,
	".jsx": JavaScript,
	".mjs": JavaScript,
	".cjs": JavaScript,
	".ts":  TypeScript,
	".tsx": TypeScript,
	".rs":  Rust,
}

// Detect maps path's extension to a Tag. An unrecognized extension fails
// with execution.UnsupportedLanguage.
func Detect(path string) (Tag, error) {
	ext := strings.ToLower(filepath.Ext(path))

	tag, ok := byExtension[ext]
	if !ok {
		return "", execution.NewExitErr(execution.UnsupportedLanguage, ext)
	}

	return tag, nil
}
