package runner

import (
	"context"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/polymute/polymute/internal/execution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperSuccess, when re-exec'd as the fake test command, exits 0.
func TestHelperSuccess(_ *testing.T) {
	if os.Getenv("GO_TEST_PROCESS") != "1" {
		return
	}
	os.Exit(0) // skipcq: RVV-A0003
}

// TestHelperFailure, when re-exec'd as the fake test command, exits 1.
func TestHelperFailure(_ *testing.T) {
	if os.Getenv("GO_TEST_PROCESS") != "1" {
		return
	}
	os.Exit(1) // skipcq: RVV-A0003
}

// TestHelperHangs, when re-exec'd as the fake test command, sleeps well past
// any timeout used in these tests, so it is always killed rather than
// exiting on its own.
func TestHelperHangs(_ *testing.T) {
	if os.Getenv("GO_TEST_PROCESS") != "1" {
		return
	}
	time.Sleep(10 * time.Second)
	os.Exit(0) // skipcq: RVV-A0003
}

func fakeExecCommand(helper string) execContext {
	return func(ctx context.Context, command string, args ...string) *exec.Cmd {
		cs := []string{"-test.run=" + helper, "--", command}
		cs = append(cs, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = []string{"GO_TEST_PROCESS=1"}

		return cmd
	}
}

func fakeExecCommandMissingBinary(_ context.Context, _ string, _ ...string) *exec.Cmd {
	return exec.Command("polymute-does-not-exist-on-this-machine")
}

func TestRunner_Baseline_success(t *testing.T) {
	r := New("go", []string{"test"}, ".", WithExecContext(fakeExecCommand("TestHelperSuccess")))

	result, err := r.Baseline(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitStatus)
}

func TestRunner_Baseline_failure(t *testing.T) {
	r := New("go", []string{"test"}, ".", WithExecContext(fakeExecCommand("TestHelperFailure")))

	_, err := r.Baseline(context.Background())

	require.Error(t, err)
	var exitErr *execution.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, execution.BaselineFailed, exitErr.Type())
}

func TestRunner_Baseline_spawnError(t *testing.T) {
	r := New("go", []string{"test"}, ".", WithExecContext(fakeExecCommandMissingBinary))

	_, err := r.Baseline(context.Background())

	require.Error(t, err)
	var exitErr *execution.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, execution.BaselineFailed, exitErr.Type())
}

func TestTimeoutFor(t *testing.T) {
	t.Run("applies the multiplier", func(t *testing.T) {
		got := TimeoutFor(2*time.Second, 4)
		assert.Equal(t, 8*time.Second, got)
	})

	t.Run("defaults the multiplier when not positive", func(t *testing.T) {
		got := TimeoutFor(2*time.Second, 0)
		assert.Equal(t, 2*time.Second*DefaultTimeoutMultiplier, got)
	})

	t.Run("floors at MinTimeout", func(t *testing.T) {
		got := TimeoutFor(10*time.Millisecond, 1)
		assert.Equal(t, MinTimeout, got)
	})
}

func TestRunner_RunAgainst_survived(t *testing.T) {
	r := New("go", []string{"test"}, ".", WithExecContext(fakeExecCommand("TestHelperSuccess")))

	outcome := r.RunAgainst(context.Background(), t.TempDir(), time.Second)

	assert.False(t, outcome.TimedOut)
	assert.False(t, outcome.SpawnFailed)
	assert.Equal(t, 0, outcome.ExitCode)
	assert.Equal(t, "survived", Classify(outcome).String())
}

func TestRunner_RunAgainst_killed(t *testing.T) {
	r := New("go", []string{"test"}, ".", WithExecContext(fakeExecCommand("TestHelperFailure")))

	outcome := r.RunAgainst(context.Background(), t.TempDir(), time.Second)

	assert.False(t, outcome.TimedOut)
	assert.Equal(t, 1, outcome.ExitCode)
	assert.Equal(t, "killed", Classify(outcome).String())
}

func TestRunner_RunAgainst_timeout(t *testing.T) {
	r := New("go", []string{"test"}, ".", WithExecContext(fakeExecCommand("TestHelperHangs")))

	outcome := r.RunAgainst(context.Background(), t.TempDir(), 200*time.Millisecond)

	assert.True(t, outcome.TimedOut)
	assert.Equal(t, "timeout", Classify(outcome).String())
}

func TestRunner_RunAgainst_spawnFailed(t *testing.T) {
	r := New("go", []string{"test"}, ".", WithExecContext(fakeExecCommandMissingBinary))

	outcome := r.RunAgainst(context.Background(), t.TempDir(), time.Second)

	assert.True(t, outcome.SpawnFailed)
	assert.Equal(t, "unviable", Classify(outcome).String())
}
