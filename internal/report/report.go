// Package report renders a Run as the structured JSON schema of spec.md §6,
// as a quiet pass/fail exit decision, or as one human-readable progress line
// per mutant while a run is in flight.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/hako/durafmt"

	"github.com/polymute/polymute/internal/log"
	"github.com/polymute/polymute/internal/mutation"
	"github.com/polymute/polymute/internal/session"
)

var (
	fgRed     = color.New(color.FgRed).SprintFunc()
	fgGreen   = color.New(color.FgGreen).SprintFunc()
	fgHiGreen = color.New(color.FgHiGreen).SprintFunc()
	fgHiBlack = color.New(color.FgHiBlack).SprintFunc()
)

// Logger prints one progress line per mutant result as a Run executes,
// filtered by an optional --show-status Filter.
type Logger struct {
	Filter Filter
}

// NewLogger builds a Logger from a parsed --show-status filter.
func NewLogger(filter Filter) Logger {
	return Logger{Filter: filter}
}

// Mutant logs one mutation.Result if it passes the Logger's Filter.
func (l Logger) Mutant(r mutation.Result) {
	if !l.Filter.Allows(r.Outcome) {
		return
	}

	Mutant(r)
}

// Mutant logs a single mutation.Result unconditionally: its outcome, tag
// and position.
func Mutant(r mutation.Result) {
	status := colorize(r.Outcome)
	log.Infof("%s%s %s at %s:%d:%d\n", padding(r.Outcome), status, r.Mutation.Operator, r.Mutation.File, r.Mutation.Line, r.Mutation.Column)
}

func colorize(o mutation.Outcome) string {
	switch o {
	case mutation.Killed:
		return fgHiGreen(o)
	case mutation.Survived:
		return fgRed(o)
	case mutation.Timeout:
		return fgGreen(o)
	case mutation.Unviable:
		return fgHiBlack(o)
	default:
		return o.String()
	}
}

func padding(o mutation.Outcome) string {
	var pad string
	for i := 0; i < 10-len(o.String()); i++ {
		pad += " "
	}

	return pad
}

// Summary logs the human-readable one-paragraph summary of a completed Run.
func Summary(run session.Run) {
	elapsed := durafmt.Parse(time.Duration(run.DurationMs) * time.Millisecond).LimitFirstN(2)

	killed := fgHiGreen(run.Killed)
	survived := fgRed(run.Survived)
	timeouts := fgGreen(run.Timeout)
	unviable := fgHiBlack(run.Unviable)

	log.Infoln("")
	log.Infof("Mutation testing completed in %s\n", elapsed.String())
	log.Infof("Killed: %s, Survived: %s, Timeout: %s, Unviable: %s\n", killed, survived, timeouts, unviable)
	log.Infof("Score: %.2f\n", run.Score)
}

// JSON writes run to w in the exact structured schema of spec.md §6.
func JSON(w io.Writer, run session.Run) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(structuredOutput(run)); err != nil {
		return fmt.Errorf("could not encode run: %w", err)
	}

	return nil
}

// output is the wire shape of spec.md §6, independent of session.Run's own
// field ordering/tags so the two can evolve separately.
type output struct {
	Score           float64                  `json:"score"`
	Total           int                      `json:"total"`
	Killed          int                      `json:"killed"`
	Survived        int                      `json:"survived"`
	Timeout         int                      `json:"timeout"`
	Unviable        int                      `json:"unviable"`
	DurationMs      int64                    `json:"duration_ms"`
	SurvivedMutants []session.SurvivedMutant `json:"survived_mutants"`
}

func structuredOutput(run session.Run) output {
	survivors := run.SurvivedMutants
	if survivors == nil {
		survivors = []session.SurvivedMutant{}
	}

	return output{
		Score:           run.Score,
		Total:           run.Total,
		Killed:          run.Killed,
		Survived:        run.Survived,
		Timeout:         run.Timeout,
		Unviable:        run.Unviable,
		DurationMs:      run.DurationMs,
		SurvivedMutants: survivors,
	}
}

// ExitCode decides the quiet-mode exit status for run, per spec.md §6 and
// the Open Question resolution in SPEC_FULL.md §9: 0 when there are no
// survivors and the run wasn't entirely unviable, 1 otherwise (survivors
// present, or every mutant was unviable, which almost always means the
// test command itself is broken).
func ExitCode(run session.Run) int {
	if run.Survived > 0 {
		return 1
	}
	if run.Unviable > 0 && run.Unviable == run.Total {
		return 1
	}

	return 0
}
