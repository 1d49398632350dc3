// Package session persists the last Run under a per-user state directory,
// namespaced by session id, and reloads it for the status/show verbs. It is
// the only process-wide persistent state (see spec §9 "Global state").
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/polymute/polymute/internal/mutation"
)

// DefaultSession is the namespace used when the caller supplies none.
const DefaultSession = "default"

const (
	stateDirName = "polymute"
	runFileName  = "last_run.json"
	sidecarName  = "last_run.yaml"

	xdgStateHomeKey = "XDG_STATE_HOME"
)

// SurvivedMutant is one entry of Run.SurvivedMutants, matching the
// structured output schema of §6 verbatim.
type SurvivedMutant struct {
	RefID         string   `json:"ref_id" yaml:"ref_id"`
	File          string   `json:"file" yaml:"file"`
	Line          int      `json:"line" yaml:"line"`
	Column        int      `json:"column" yaml:"column"`
	Operator      string   `json:"operator" yaml:"operator"`
	Original      string   `json:"original" yaml:"original"`
	Replacement   string   `json:"replacement" yaml:"replacement"`
	Diff          string   `json:"diff" yaml:"diff"`
	ContextBefore []string `json:"context_before" yaml:"context_before"`
	ContextAfter  []string `json:"context_after" yaml:"context_after"`
}

// Run is the persisted document for one completed (or in-progress, as it
// accumulates) mutation run.
type Run struct {
	ID              string           `json:"id" yaml:"id"`
	Score           float64          `json:"score" yaml:"score"`
	Total           int              `json:"total" yaml:"total"`
	Killed          int              `json:"killed" yaml:"killed"`
	Survived        int              `json:"survived" yaml:"survived"`
	Timeout         int              `json:"timeout" yaml:"timeout"`
	Unviable        int              `json:"unviable" yaml:"unviable"`
	DurationMs      int64            `json:"duration_ms" yaml:"duration_ms"`
	SurvivedMutants []SurvivedMutant `json:"survived_mutants" yaml:"survived_mutants"`
}

// NewRunID generates a v4 UUID for a Run started without an explicit
// --session, so status/show still namespace correctly against concurrent
// anonymous runs sharing the "default" session.
func NewRunID() string {
	return uuid.NewString()
}

// Score computes killed / (killed+survived), per spec §8 property 6. When
// that denominator is zero (no killed or survived mutants at all), a Run
// with no discovered mutations at all reports a perfect 1.0; a Run that did
// discover mutations but classified none of them killed or survived (e.g.
// every one timed out or was unviable) reports 0.0.
func Score(killed, survived, total int) float64 {
	denom := killed + survived
	if denom == 0 {
		if total == 0 {
			return 1.0
		}

		return 0.0
	}

	return float64(killed) / float64(denom)
}

// NewRun assembles a Run document from an id, the accumulated results and
// the elapsed wall clock, applying the score formula and the survivor
// projection.
func NewRun(id string, results []mutation.Result, durationMs int64) Run {
	run := Run{ID: id, DurationMs: durationMs}

	var killed, survived, timeouts, unviable int
	for _, r := range results {
		switch r.Outcome {
		case mutation.Killed:
			killed++
		case mutation.Survived:
			survived++
		case mutation.Timeout:
			timeouts++
		case mutation.Unviable:
			unviable++
		}
	}

	run.Total = len(results)
	run.Killed = killed
	run.Survived = survived
	run.Timeout = timeouts
	run.Unviable = unviable
	run.Score = Score(killed, survived, run.Total)

	for _, r := range results {
		if r.Outcome != mutation.Survived {
			continue
		}
		run.SurvivedMutants = append(run.SurvivedMutants, toSurvivedMutant(r.Mutation))
	}

	return run
}

func toSurvivedMutant(m mutation.Mutation) SurvivedMutant {
	original := string(m.Original)
	replacement := string(m.Replacement)

	return SurvivedMutant{
		RefID:         m.RefID,
		File:          m.File,
		Line:          m.Line,
		Column:        m.Column,
		Operator:      string(m.Operator),
		Original:      original,
		Replacement:   replacement,
		Diff:          "- " + original + "\n+ " + replacement + "\n",
		ContextBefore: m.ContextBefore,
		ContextAfter:  m.ContextAfter,
	}
}

// StateDir resolves $XDG_STATE_HOME/polymute/<session>, falling back to
// ~/.local/state/polymute/<session> when XDG_STATE_HOME is unset, mirroring
// the configuration package's home-dir resolution idiom.
func StateDir(session string) (string, error) {
	if session == "" {
		session = DefaultSession
	}

	base := os.Getenv(xdgStateHomeKey)
	if base == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", fmt.Errorf("could not resolve home directory: %w", err)
		}
		base = filepath.Join(home, ".local", "state")
	}

	return filepath.Join(base, stateDirName, session), nil
}

// Store persists and loads Run documents for one session namespace.
type Store struct {
	dir string
}

// Open resolves the state directory for session and returns a Store bound
// to it. The directory is created on first Save, not here.
func Open(session string) (*Store, error) {
	dir, err := StateDir(session)
	if err != nil {
		return nil, err
	}

	return &Store{dir: dir}, nil
}

// Save writes last_run.json and its last_run.yaml sidecar atomically
// (tempfile + rename), per spec §4.7's "store writes must be atomic at the
// file level" to tolerate concurrent readers.
func (s *Store) Save(run Run) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("could not create state dir %s: %w", s.dir, err)
	}

	jsonBytes, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal run: %w", err)
	}

	if err := atomicWrite(filepath.Join(s.dir, runFileName), jsonBytes); err != nil {
		return err
	}

	yamlBytes, err := yaml.Marshal(run)
	if err != nil {
		return fmt.Errorf("could not marshal run sidecar: %w", err)
	}

	return atomicWrite(filepath.Join(s.dir, sidecarName), yamlBytes)
}

func atomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("could not create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("could not write %s: %w", tmpName, err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("could not close %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("could not rename %s to %s: %w", tmpName, path, err)
	}

	return nil
}

// Load reads back the last persisted Run for this session. It returns
// os.ErrNotExist (wrapped) when no run has ever been saved.
func (s *Store) Load() (Run, error) {
	var run Run

	path := filepath.Join(s.dir, runFileName)

	content, err := os.ReadFile(path) //nolint:gosec // path is derived from the resolved state dir
	if err != nil {
		return run, fmt.Errorf("could not read %s: %w", path, err)
	}

	if err := json.Unmarshal(content, &run); err != nil {
		return run, fmt.Errorf("could not parse %s: %w", path, err)
	}

	return run, nil
}

// DecodeRefID normalizes a ref_id argument of the form "@m<N>" or "m<N>",
// as accepted by the show verb, into its canonical "m<N>" form. It returns
// an error if the argument does not parse as one of those forms.
func DecodeRefID(arg string) (string, error) {
	trimmed := strings.TrimPrefix(arg, "@")
	if !strings.HasPrefix(trimmed, "m") {
		return "", fmt.Errorf("invalid ref_id %q: expected form m<N> or @m<N>", arg)
	}

	if _, err := strconv.Atoi(strings.TrimPrefix(trimmed, "m")); err != nil {
		return "", fmt.Errorf("invalid ref_id %q: expected form m<N> or @m<N>", arg)
	}

	return trimmed, nil
}

// Find returns the SurvivedMutant in run whose RefID matches refID (already
// decoded via DecodeRefID), or false if no survivor carries that id.
func (run Run) Find(refID string) (SurvivedMutant, bool) {
	for _, sm := range run.SurvivedMutants {
		if sm.RefID == refID {
			return sm, true
		}
	}

	return SurvivedMutant{}, false
}

// Elapsed is a convenience for callers that measure duration with
// time.Since and want an int64 millisecond count for NewRun.
func Elapsed(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
