package snapshot_test

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polymute/polymute/internal/exclusion"
	"github.com/polymute/polymute/internal/snapshot"
)

func TestDealer_Take_copiesTreeAndSkipsIgnored(t *testing.T) {
	root := t.TempDir()
	workDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(root, "main.py"), []byte("print(1)\n"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "__pycache__"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "__pycache__", "x.pyc"), []byte("x"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.py"), []byte("print(2)\n"), 0o600))

	dealer := snapshot.NewDealer(root, workDir, "agent-1", nil)
	dst, err := dealer.Take()
	require.NoError(t, err)
	defer dealer.Clean()

	_, err = os.Stat(filepath.Join(dst, "main.py"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dst, "sub", "b.py"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dst, "__pycache__"))
	require.True(t, os.IsNotExist(err))
}

func TestDealer_Take_honorsExclusionRules(t *testing.T) {
	root := t.TempDir()
	workDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.py"), []byte("1"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "skip.generated.py"), []byte("1"), 0o600))

	rules := exclusion.Rules{regexp.MustCompile("generated")}

	dealer := snapshot.NewDealer(root, workDir, "", rules)
	dst, err := dealer.Take()
	require.NoError(t, err)
	defer dealer.Clean()

	_, statErr := os.Stat(filepath.Join(dst, "keep.py"))
	require.NoError(t, statErr)

	_, statErr = os.Stat(filepath.Join(dst, "skip.generated.py"))
	require.True(t, os.IsNotExist(statErr))
}

func TestDealer_Take_multipleSnapshotsAreDistinct(t *testing.T) {
	root := t.TempDir()
	workDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.py"), []byte("1"), 0o600))

	dealer := snapshot.NewDealer(root, workDir, "s", nil)
	defer dealer.Clean()

	d1, err := dealer.Take()
	require.NoError(t, err)
	d2, err := dealer.Take()
	require.NoError(t, err)

	require.NotEqual(t, d1, d2)
}
