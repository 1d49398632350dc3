package runner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/polymute/polymute/internal/mutation"
)

// Apply splices m's replacement into [start_byte, end_byte) of m.File as it
// exists under snapshotRoot, and writes the result back in place. It
// verifies the bytes it is about to replace still equal m.Original, since a
// mismatch means the computed range no longer matches the source (should be
// impossible given the Mutation invariants, but the spec treats it as
// MutationApplyFailed rather than trusting silently).
func Apply(snapshotRoot string, m mutation.Mutation) error {
	path := filepath.Join(snapshotRoot, m.File)

	content, err := os.ReadFile(path) //nolint:gosec // path is internally computed from a snapshot root
	if err != nil {
		return fmt.Errorf("could not read %s: %w", path, err)
	}

	if int(m.EndByte) > len(content) {
		return fmt.Errorf("mutation range out of bounds for %s", path)
	}

	if string(content[m.StartByte:m.EndByte]) != string(m.Original) {
		return fmt.Errorf("mutation range no longer matches original bytes in %s", path)
	}

	mutated := make([]byte, 0, len(content)-int(m.EndByte-m.StartByte)+len(m.Replacement))
	mutated = append(mutated, content[:m.StartByte]...)
	mutated = append(mutated, m.Replacement...)
	mutated = append(mutated, content[m.EndByte:]...)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("could not stat %s: %w", path, err)
	}

	if err := os.WriteFile(path, mutated, info.Mode()); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}

	readBack, err := os.ReadFile(path) //nolint:gosec // path is internally computed from a snapshot root
	if err != nil || string(readBack) != string(mutated) {
		return fmt.Errorf("could not read back mutated %s", path)
	}

	return nil
}
