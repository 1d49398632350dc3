package cmd

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polymute/polymute/internal/configuration"
	"github.com/polymute/polymute/internal/mutation"
	"github.com/polymute/polymute/internal/report"
	"github.com/polymute/polymute/internal/runner"
	"github.com/polymute/polymute/internal/scope"
	"github.com/polymute/polymute/internal/session"
)

// TestRunHelperSuccess is a subprocess test double, re-exec'd by
// fakeSuccessExec: it exits 0 immediately, standing in for a passing test
// command without actually running one.
func TestRunHelperSuccess(_ *testing.T) {
	if os.Getenv("GO_TEST_PROCESS") != "1" {
		return
	}
	os.Exit(0)
}

func fakeSuccessExec(ctx context.Context, _ string, _ ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestRunHelperSuccess", "--")
	cmd.Env = []string{"GO_TEST_PROCESS=1"}

	return cmd
}

func TestResolveTestCommand_empty(t *testing.T) {
	defer configuration.Reset()
	configuration.Set(configuration.RunTestCmdKey, "")

	got := resolveTestCommand("/tmp/project")

	assert.Equal(t, resolvedCommand{}, got)
}

func TestResolveTestCommand_splitsArgs(t *testing.T) {
	defer configuration.Reset()
	configuration.Set(configuration.RunTestCmdKey, "pytest -k smoke")

	got := resolveTestCommand("/tmp/project")

	assert.Equal(t, []string{"-k", "smoke"}, got.args)
}

func TestFilterByDiff_noDiffKeepsAll(t *testing.T) {
	mutations := []mutation.Mutation{{File: "a.py", Line: 3}, {File: "a.py", Line: 40}}

	got := filterByDiff(mutations, nil)

	assert.Equal(t, mutations, got)
}

func TestFilterByDiff_restrictsToChangedLines(t *testing.T) {
	mutations := []mutation.Mutation{
		{File: "a.py", Line: 3, RefID: "m1"},
		{File: "a.py", Line: 40, RefID: "m2"},
	}
	diff := scope.Diff{"a.py": {{StartLine: 1, EndLine: 5}}}

	got := filterByDiff(mutations, diff)

	require.Len(t, got, 1)
	assert.Equal(t, "m1", got[0].RefID)
}

func TestApplyAndRunInPlace_usesProjectRootNotTargetDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))

	target := filepath.Join(root, "pkg", "mod.py")
	original := "def f(x):\n    return x > 0\n"
	require.NoError(t, os.WriteFile(target, []byte(original), 0o644))

	idx := strings.Index(original, ">")
	m := mutation.Mutation{
		File:        filepath.Join("pkg", "mod.py"),
		StartByte:   uint32(idx),
		EndByte:     uint32(idx + 1),
		Original:    []byte(">"),
		Replacement: []byte(">="),
	}

	r := runner.New("test", nil, root, runner.WithExecContext(fakeSuccessExec))

	// projectRoot is root, the project root Mutation.File is relative to,
	// not filepath.Dir(target) (root/pkg), which would double-join the
	// relative file path and make the apply fail.
	result := applyAndRunInPlace(context.Background(), target, root, []byte(original), m, r, time.Second)

	assert.Equal(t, mutation.Survived, result.Outcome)

	restored, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, original, string(restored))
}

func TestRunInPlace_passesProjectRootThrough(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))

	target := filepath.Join(root, "pkg", "mod.py")
	original := "def f(x):\n    return x > 0\n"
	require.NoError(t, os.WriteFile(target, []byte(original), 0o644))

	idx := strings.Index(original, ">")
	mutations := []mutation.Mutation{{
		File:        filepath.Join("pkg", "mod.py"),
		StartByte:   uint32(idx),
		EndByte:     uint32(idx + 1),
		Original:    []byte(">"),
		Replacement: []byte(">="),
		RefID:       "m1",
	}}

	r := runner.New("test", nil, root, runner.WithExecContext(fakeSuccessExec))

	results := runInPlace(context.Background(), root, target, mutations, r, time.Second, report.NewLogger(nil))

	require.Len(t, results, 1)
	assert.Equal(t, mutation.Survived, results[0].Outcome)
}

func TestRenderRun_quietModeExitCode(t *testing.T) {
	defer configuration.Reset()
	configuration.Set(configuration.GlobalQuietKey, true)
	configuration.Set(configuration.GlobalJSONKey, false)

	run := session.NewRun("run-1", []mutation.Result{
		{Mutation: mutation.Mutation{RefID: "m1"}, Outcome: mutation.Survived},
	}, 10)

	err := renderRun(run)

	require.Error(t, err)
	var coder interface{ ExitCode() int }
	require.ErrorAs(t, err, &coder)
	assert.Equal(t, 1, coder.ExitCode())
}

func TestRenderRun_noSurvivorsIsClean(t *testing.T) {
	defer configuration.Reset()
	configuration.Set(configuration.GlobalQuietKey, true)
	configuration.Set(configuration.GlobalJSONKey, false)

	run := session.NewRun("run-2", []mutation.Result{
		{Mutation: mutation.Mutation{RefID: "m1"}, Outcome: mutation.Killed},
	}, 10)

	err := renderRun(run)

	require.NoError(t, err)
}
