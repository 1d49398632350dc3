// Package runner drives the external test command: once to establish a
// baseline, then once per mutant against its snapshot, classifying each
// spawn into a mutation.Outcome.
package runner

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/polymute/polymute/internal/execution"
)

// DefaultTimeoutMultiplier is the default multiplier applied to the
// baseline duration to derive each mutant's wall-clock budget.
const DefaultTimeoutMultiplier = 3

// MinTimeout is the floor below which a computed per-mutant timeout never
// falls, so a very fast baseline cannot produce an unreasonably tight
// budget.
const MinTimeout = 5 * time.Second

// forkSafetyEnv is injected into every spawned test command to tolerate
// fork-based test runners on macOS.
const forkSafetyEnv = "OBJC_DISABLE_INITIALIZE_FORK_SAFETY=YES"

type execContext = func(ctx context.Context, name string, args ...string) *exec.Cmd

// BaselineResult is the outcome of running the test command once, unmutated.
type BaselineResult struct {
	DurationMs int64
	ExitStatus int
}

// Runner spawns the resolved test command against the original project
// (for the baseline) and against per-mutant snapshots.
type Runner struct {
	execContext execContext
	command     string
	args        []string
	projectRoot string
}

// Option configures a Runner at construction time.
type Option func(r Runner) Runner

// WithExecContext overrides the default exec.CommandContext, for testing.
func WithExecContext(ec execContext) Option {
	return func(r Runner) Runner {
		r.execContext = ec

		return r
	}
}

// New builds a Runner for the given resolved command and its arguments.
func New(command string, args []string, projectRoot string, opts ...Option) *Runner {
	r := Runner{
		execContext: exec.CommandContext,
		command:     command,
		args:        args,
		projectRoot: projectRoot,
	}
	for _, opt := range opts {
		r = opt(r)
	}

	return &r
}

// Baseline runs the test command once, in the original project root, with
// no enforced timeout. A non-zero exit is BaselineFailed, fatal to the Run.
func (r *Runner) Baseline(ctx context.Context) (BaselineResult, error) {
	start := time.Now()

	cmd := r.execContext(ctx, r.command, r.args...)
	cmd.Dir = r.projectRoot
	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}
	cmd.Env = append(cmd.Env, forkSafetyEnv)

	err := cmd.Run()
	elapsed := time.Since(start)

	exitStatus := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitStatus = exitErr.ExitCode()
	} else if err != nil {
		return BaselineResult{}, execution.NewExitErr(execution.BaselineFailed, err.Error())
	}

	result := BaselineResult{DurationMs: elapsed.Milliseconds(), ExitStatus: exitStatus}
	if exitStatus != 0 {
		return result, execution.NewExitErr(execution.BaselineFailed, "")
	}

	return result, nil
}

// TimeoutFor derives the per-mutant wall-clock budget from the baseline
// duration, per §4.6: timeout_mult × T0, floored at MinTimeout.
func TimeoutFor(baseline time.Duration, mult int) time.Duration {
	if mult <= 0 {
		mult = DefaultTimeoutMultiplier
	}

	t := baseline * time.Duration(mult)
	if t < MinTimeout {
		return MinTimeout
	}

	return t
}

// SpawnOutcome classifies a single mutant's test spawn. SpawnFailed is true
// when the process could not even start.
type SpawnOutcome struct {
	TimedOut    bool
	ExitCode    int
	SpawnFailed bool
	DurationMs  int64
}

// RunAgainst spawns the test command with cwd = snapshotRoot and the
// process-group timeout discipline described in §5: on timeout, the whole
// process group is killed so forked test workers do not outlive the parent.
func (r *Runner) RunAgainst(ctx context.Context, snapshotRoot string, timeout time.Duration) SpawnOutcome {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := r.execContext(runCtx, r.command, r.args...)
	cmd.Dir = snapshotRoot
	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}
	cmd.Env = append(cmd.Env, forkSafetyEnv)
	setupProcessGroup(cmd)

	start := time.Now()
	err := cmd.Start()
	if err != nil {
		return SpawnOutcome{SpawnFailed: true}
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()

	select {
	case <-runCtx.Done():
		_ = killProcessGroup(cmd)
		<-waitErr

		return SpawnOutcome{TimedOut: true, DurationMs: time.Since(start).Milliseconds()}
	case err := <-waitErr:
		elapsed := time.Since(start).Milliseconds()

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return SpawnOutcome{ExitCode: exitErr.ExitCode(), DurationMs: elapsed}
		}
		if err != nil {
			return SpawnOutcome{SpawnFailed: true, DurationMs: elapsed}
		}

		return SpawnOutcome{ExitCode: 0, DurationMs: elapsed}
	}
}
