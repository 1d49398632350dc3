package runner

import (
	"os/exec"
	"path/filepath"
	"strings"
)

// ResolveCommand implements the test-command resolution rule of §4.6: an
// absolute path is used verbatim; a relative path containing a separator is
// resolved against projectRoot (never the snapshot, so a project-local
// script is found regardless of which mutant's snapshot is running); a bare
// token is looked up on PATH.
func ResolveCommand(cmd, projectRoot string) string {
	if filepath.IsAbs(cmd) {
		return cmd
	}

	if strings.ContainsRune(cmd, '/') || strings.ContainsRune(cmd, filepath.Separator) {
		return filepath.Join(projectRoot, cmd)
	}

	if resolved, err := exec.LookPath(cmd); err == nil {
		return resolved
	}

	return cmd
}
