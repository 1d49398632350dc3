package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/polymute/polymute/cmd/internal/flags"
	"github.com/polymute/polymute/internal/configuration"
	"github.com/polymute/polymute/internal/exclusion"
	"github.com/polymute/polymute/internal/execution"
	"github.com/polymute/polymute/internal/language"
	"github.com/polymute/polymute/internal/log"
	"github.com/polymute/polymute/internal/mutation"
	"github.com/polymute/polymute/internal/project"
	"github.com/polymute/polymute/internal/report"
	"github.com/polymute/polymute/internal/runner"
	"github.com/polymute/polymute/internal/scope"
	"github.com/polymute/polymute/internal/session"
	"github.com/polymute/polymute/internal/snapshot"
	"github.com/polymute/polymute/internal/syntax"
)

type runCmd struct {
	cmd *cobra.Command
}

const (
	paramTestFile     = "test-file"
	paramFunction     = "function"
	paramTestCmd      = "test-cmd"
	paramTimeoutMult  = "timeout-mult"
	paramInPlace      = "in-place"
	paramDiff         = "diff"
	paramExcludeFiles = "exclude-files"
	paramShowStatus   = "show-status"
)

// resultError carries a non-zero exit status for a Run that completed
// without a fatal error but still warrants exit 1 (survivors present, or
// the whole Run was unviable), per spec.md §6.
type resultError struct {
	code int
}

func (e *resultError) Error() string { return "mutation testing found issues" }
func (e *resultError) ExitCode() int { return e.code }

func newRunCmd(ctx context.Context) (*runCmd, error) {
	cmd := &cobra.Command{
		Use:     "run <file>",
		Aliases: []string{"r"},
		Args:    cobra.ExactArgs(1),
		Short:   "Run mutation testing on a single file",
		Long:    runLongExplainer(),
		RunE:    runRun(ctx),
	}

	if err := setRunFlags(cmd); err != nil {
		return nil, err
	}

	return &runCmd{cmd: cmd}, nil
}

func runLongExplainer() string {
	return heredoc.Doc(`
		Discovers mutation sites in a single source file, establishes a test
		baseline, then spawns the test command once per mutant against an
		isolated snapshot of the project, classifying each as killed, survived,
		timeout or unviable.
	`)
}

func setRunFlags(cmd *cobra.Command) error {
	cmd.Flags().SortFlags = false
	cmd.Flags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fls := []*flags.Flag{
		{Name: paramTestFile, CfgKey: configuration.RunTestFileKey, Shorthand: "t", DefaultV: "", Usage: "the test file exercising the target"},
		{Name: paramFunction, CfgKey: configuration.RunFunctionKey, Shorthand: "f", DefaultV: "", Usage: "restrict mutation to a single function's definition"},
		{Name: paramTestCmd, CfgKey: configuration.RunTestCmdKey, DefaultV: "", Usage: "the test command to run (no default: it is not derived from the language or from --test-file)"},
		{Name: paramTimeoutMult, CfgKey: configuration.RunTimeoutMultKey, DefaultV: runner.DefaultTimeoutMultiplier, Usage: "multiplier applied to the baseline duration for each mutant's timeout"},
		{Name: paramInPlace, CfgKey: configuration.RunInPlaceKey, DefaultV: false, Usage: "mutate the project tree in place instead of an isolated snapshot (legacy, not concurrency-safe)"},
		{Name: paramDiff, CfgKey: configuration.RunDiffRefKey, DefaultV: "", Usage: "restrict mutation to the lines changed in this unified diff file"},
		{Name: paramExcludeFiles, CfgKey: configuration.RunExcludeFilesKey, DefaultV: []string{}, Usage: "regex patterns of paths to exclude from snapshots (repeatable)"},
		{Name: paramShowStatus, CfgKey: configuration.RunShowStatusKey, DefaultV: "", Usage: "filter progress lines to these outcome letters (l,k,t,v)"},
	}

	for _, f := range fls {
		if err := flags.Set(cmd, f); err != nil {
			return err
		}
	}

	return nil
}

func runRun(ctx context.Context) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, args []string) error {
		target := args[0]

		run, err := executeRun(ctx, target)
		if err != nil {
			return err
		}

		return renderRun(run)
	}
}

func executeRun(ctx context.Context, target string) (session.Run, error) {
	start := time.Now()

	lang, err := language.Detect(target)
	if err != nil {
		return session.Run{}, err
	}

	proj, err := project.Init(target)
	if err != nil {
		return session.Run{}, fmt.Errorf("could not locate project root: %w", err)
	}

	absTarget, err := filepath.Abs(target)
	if err != nil {
		return session.Run{}, fmt.Errorf("could not resolve %s: %w", target, err)
	}
	relTarget, err := filepath.Rel(proj.Root, absTarget)
	if err != nil {
		return session.Run{}, fmt.Errorf("could not relativize %s against %s: %w", target, proj.Root, err)
	}

	source, err := os.ReadFile(absTarget) //nolint:gosec // target is a user-supplied CLI argument
	if err != nil {
		return session.Run{}, fmt.Errorf("could not read %s: %w", target, err)
	}

	tree, err := syntax.Parse(lang, source)
	if err != nil {
		return session.Run{}, fmt.Errorf("could not parse %s: %w", target, err)
	}
	defer tree.Close()

	var fnScope *syntax.Node
	if fn := configuration.Get[string](configuration.RunFunctionKey); fn != "" {
		node, ok := syntax.FindFunction(tree.Root(), lang, fn)
		if !ok {
			return session.Run{}, execution.NewExitErr(execution.FunctionNotFound, fn)
		}
		fnScope = &node
	}

	mutations := mutation.Discover(relTarget, lang, tree, fnScope)

	diff, err := scope.New(configuration.Get[string](configuration.RunDiffRefKey))
	if err != nil {
		return session.Run{}, err
	}
	mutations = filterByDiff(mutations, diff)

	rules, err := exclusion.New()
	if err != nil {
		return session.Run{}, err
	}

	testCmd := resolveTestCommand(proj.Root)

	r := runner.New(testCmd.name, testCmd.args, proj.Root)

	log.Infoln("Establishing baseline...")
	baseline, err := r.Baseline(ctx)
	if err != nil {
		return session.Run{}, err
	}

	mult := configuration.Get[int](configuration.RunTimeoutMultKey)
	timeout := runner.TimeoutFor(time.Duration(baseline.DurationMs)*time.Millisecond, mult)

	sessionID := configuration.Get[string](configuration.GlobalSessionKey)
	runID := sessionID
	if runID == "" {
		runID = session.NewRunID()
	}

	filter, err := report.ParseFilter(configuration.Get[string](configuration.RunShowStatusKey))
	if err != nil {
		return session.Run{}, err
	}
	logger := report.NewLogger(filter)

	inPlace := configuration.Get[bool](configuration.RunInPlaceKey)

	var results []mutation.Result
	if inPlace {
		results = runInPlace(ctx, proj.Root, absTarget, mutations, r, timeout, logger)
	} else {
		results = runSnapshotted(ctx, proj.Root, runID, rules, mutations, r, timeout, logger)
	}

	run := session.NewRun(runID, results, session.Elapsed(start))

	if store, err := session.Open(sessionID); err == nil {
		if err := store.Save(run); err != nil {
			log.Errorf("could not persist session state: %s\n", err)
		}
	} else {
		log.Errorf("could not open session store: %s\n", err)
	}

	return run, nil
}

func filterByDiff(mutations []mutation.Mutation, diff scope.Diff) []mutation.Mutation {
	if len(diff) == 0 {
		return mutations
	}

	filtered := mutations[:0]
	for _, m := range mutations {
		if diff.IsChanged(m.File, m.Line) {
			filtered = append(filtered, m)
		}
	}

	return filtered
}

func runSnapshotted(ctx context.Context, root, sessionID string, rules exclusion.Rules, mutations []mutation.Mutation, r *runner.Runner, timeout time.Duration, logger report.Logger) []mutation.Result {
	dealer := snapshot.NewDealer(root, os.TempDir(), sessionID, rules)
	defer dealer.Clean()

	results := make([]mutation.Result, 0, len(mutations))

	for _, m := range mutations {
		if ctx.Err() != nil {
			break
		}

		result := evaluateMutation(ctx, dealer, m, r, timeout)
		logger.Mutant(result)
		results = append(results, result)
	}

	return results
}

func evaluateMutation(ctx context.Context, dealer *snapshot.Dealer, m mutation.Mutation, r *runner.Runner, timeout time.Duration) mutation.Result {
	snapshotDir, err := dealer.Take()
	if err != nil {
		log.Errorf("could not snapshot for %s: %s\n", m.RefID, err)

		return mutation.Result{Mutation: m, Outcome: mutation.Unviable}
	}
	defer dealer.Release(snapshotDir)

	if err := runner.Apply(snapshotDir, m); err != nil {
		log.Errorf("could not apply %s: %s\n", m.RefID, err)

		return mutation.Result{Mutation: m, Outcome: mutation.Unviable}
	}

	outcome := r.RunAgainst(ctx, snapshotDir, timeout)

	return mutation.Result{Mutation: m, Outcome: runner.Classify(outcome), DurationMs: outcome.DurationMs}
}

// runInPlace is the legacy mode of §5: mutate the original tree directly,
// backing up and restoring the target file around each mutant, never to be
// used concurrently within one working tree. projectRoot is the same
// project root mutation discovery used to make each Mutation.File relative,
// not necessarily the target file's own parent directory.
func runInPlace(ctx context.Context, projectRoot, absTarget string, mutations []mutation.Mutation, r *runner.Runner, timeout time.Duration, logger report.Logger) []mutation.Result {
	results := make([]mutation.Result, 0, len(mutations))

	for _, m := range mutations {
		if ctx.Err() != nil {
			break
		}

		backup, err := os.ReadFile(absTarget) //nolint:gosec // absTarget is derived from a validated CLI argument
		if err != nil {
			log.Errorf("could not back up %s: %s\n", absTarget, err)

			results = append(results, mutation.Result{Mutation: m, Outcome: mutation.Unviable})

			continue
		}

		outcome := applyAndRunInPlace(ctx, absTarget, projectRoot, backup, m, r, timeout)
		logger.Mutant(outcome)
		results = append(results, outcome)
	}

	return results
}

func applyAndRunInPlace(ctx context.Context, absTarget, projectRoot string, backup []byte, m mutation.Mutation, r *runner.Runner, timeout time.Duration) mutation.Result {
	defer func() {
		if err := os.WriteFile(absTarget, backup, 0o644); err != nil { //nolint:gosec // restoring the original file's own prior contents
			log.Errorf("could not restore %s: %s\n", absTarget, err)
		}
	}()

	if err := runner.Apply(projectRoot, m); err != nil {
		log.Errorf("could not apply %s: %s\n", m.RefID, err)

		return mutation.Result{Mutation: m, Outcome: mutation.Unviable}
	}

	spawn := r.RunAgainst(ctx, projectRoot, timeout)

	return mutation.Result{Mutation: m, Outcome: runner.Classify(spawn), DurationMs: spawn.DurationMs}
}

type resolvedCommand struct {
	name string
	args []string
}

func resolveTestCommand(projectRoot string) resolvedCommand {
	raw := configuration.Get[string](configuration.RunTestCmdKey)
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return resolvedCommand{}
	}

	return resolvedCommand{
		name: runner.ResolveCommand(fields[0], projectRoot),
		args: fields[1:],
	}
}

func renderRun(run session.Run) error {
	quiet := configuration.Get[bool](configuration.GlobalQuietKey)
	asJSON := configuration.Get[bool](configuration.GlobalJSONKey)

	switch {
	case asJSON:
		if err := report.JSON(os.Stdout, run); err != nil {
			return err
		}
	case quiet:
		// no output, the caller learns the result only via the exit code.
	default:
		report.Summary(run)
	}

	if code := report.ExitCode(run); code != 0 {
		return &resultError{code: code}
	}

	return nil
}
