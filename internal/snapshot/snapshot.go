/*
 * Copyright 2022 The Gremlins Authors
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

// Package snapshot copies a project tree into a fresh temp directory per
// mutant, so each test run is isolated from the original source and from
// every other mutant's run.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/polymute/polymute/internal/exclusion"
	"github.com/polymute/polymute/internal/log"
)

// defaultIgnore is the fixed set of paths never copied into a snapshot,
// regardless of user exclusion rules.
var defaultIgnore = map[string]struct{}{
	".git":          {},
	"node_modules":  {},
	"__pycache__":   {},
	"target":        {},
	"dist":          {},
	"build":         {},
	".venv":         {},
	"venv":          {},
	".pytest_cache": {},
	".mypy_cache":   {},
}

// maxDepth caps how deep the walk descends from the project root, so a
// pathological tree (or a symlink cycle that evaded detection) cannot make
// a snapshot unbounded.
const maxDepth = 32

// ErrSymlinkEscape is returned when a symbolic link inside the project
// points outside the project root.
var ErrSymlinkEscape = errors.New("snapshot: symlink escapes project root")

// Dealer creates and tracks the temp directories handed out for mutant
// runs, so Clean can remove them all at once.
type Dealer struct {
	root      string
	session   string
	workDir   string
	exclusion exclusion.Rules
	counter   atomic.Int64
	created   []string
}

// NewDealer creates a Dealer that snapshots root (the project root) into
// fresh directories under workDir, named with session to disambiguate
// concurrent agents.
func NewDealer(root, workDir, session string, rules exclusion.Rules) *Dealer {
	return &Dealer{root: root, workDir: workDir, session: session, exclusion: rules}
}

// Take copies the project root into a new temp directory and returns its
// path. Each call produces a distinct directory.
func (d *Dealer) Take() (string, error) {
	n := d.counter.Add(1)
	prefix := fmt.Sprintf("polymute-%s-%d-*", sanitizeSession(d.session), n)

	dst, err := os.MkdirTemp(d.workDir, prefix)
	if err != nil {
		return "", fmt.Errorf("snapshot: could not create temp dir: %w", err)
	}

	if err := d.copyTree(dst); err != nil {
		_ = os.RemoveAll(dst)

		return "", err
	}

	d.created = append(d.created, dst)

	return dst, nil
}

// Release removes one snapshot directory immediately. Best-effort: errors
// are logged, never returned, since a leaked temp dir is tolerable but a
// mutant outcome should not depend on cleanup succeeding.
func (d *Dealer) Release(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.Errorf("could not remove snapshot %s: %s\n", dir, err)
	}
}

// Clean removes every snapshot directory created by this Dealer so far.
func (d *Dealer) Clean() {
	for _, dir := range d.created {
		d.Release(dir)
	}
	d.created = nil
}

func sanitizeSession(session string) string {
	if session == "" {
		return "default"
	}

	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, session)
}

func (d *Dealer) copyTree(dst string) error {
	return filepath.WalkDir(d.root, func(srcPath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if srcPath == d.root {
			return nil
		}

		relPath, relErr := filepath.Rel(d.root, srcPath)
		if relErr != nil {
			return relErr
		}

		if d.isIgnored(relPath, entry) {
			if entry.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if depth(relPath) > maxDepth {
			if entry.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			if escapes, escErr := symlinkEscapes(srcPath, d.root); escErr != nil {
				return escErr
			} else if escapes {
				return ErrSymlinkEscape
			}
		}

		dstPath := filepath.Join(dst, relPath)
		info, infoErr := entry.Info()
		if infoErr != nil {
			return infoErr
		}

		return copyEntry(srcPath, dstPath, info)
	})
}

func (d *Dealer) isIgnored(relPath string, entry fs.DirEntry) bool {
	name := entry.Name()
	if _, ok := defaultIgnore[name]; ok {
		return true
	}

	return d.exclusion.IsFileExcluded(filepath.ToSlash(relPath))
}

func depth(relPath string) int {
	return strings.Count(filepath.ToSlash(relPath), "/") + 1
}

func symlinkEscapes(linkPath, root string) (bool, error) {
	target, err := filepath.EvalSymlinks(linkPath)
	if err != nil {
		// A dangling symlink does not escape; it simply won't resolve.
		return false, nil //nolint:nilerr
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false, err
	}

	rel, err := filepath.Rel(absRoot, target)
	if err != nil {
		return false, err
	}

	return strings.HasPrefix(rel, ".."), nil
}

func copyEntry(srcPath, dstPath string, info fs.FileInfo) error {
	switch mode := info.Mode(); {
	case mode&fs.ModeSymlink != 0:
		return nil
	case mode.IsDir():
		if err := os.Mkdir(dstPath, mode.Perm()|0o700); err != nil && !os.IsExist(err) {
			return err
		}
	case mode.IsRegular():
		return copyFile(srcPath, dstPath, mode.Perm())
	}

	return nil
}

func copyFile(srcPath, dstPath string, perm fs.FileMode) error {
	//nolint:gosec // srcPath is internally controlled, not user input
	s, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	//nolint:gosec // dstPath is internally controlled, not user input
	d, err := os.OpenFile(dstPath, os.O_CREATE|os.O_RDWR|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()

	_, err = io.Copy(d, s)

	return err
}
