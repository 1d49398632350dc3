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

// Package project locates the root of the project a target file belongs to,
// so the snapshotter knows how much of the tree to copy.
package project

import (
	"os"
	"path/filepath"
)

// markers are checked in order; the first one found in a directory wins.
// They cover the ecosystems this tool targets: git repos generally, plus
// the per-language manifest files for Rust, JS/TS and Python.
var markers = []string{
	".git",
	"Cargo.toml",
	"package.json",
	"pyproject.toml",
}

// Project represents the tree a mutation run operates on.
//
//	Root is the directory containing the first marker found walking up from
//	the starting path, or the starting path itself if none is found.
//	CallingDir is the starting path's directory relative to Root, kept for
//	diagnostics (display purposes only).
type Project struct {
	Root       string
	CallingDir string
}

// Init locates the project root for the file or directory at path. path must
// be non-empty. When no marker is found anywhere up to the filesystem root,
// Root falls back to path's own directory, since a bare file (no VCS, no
// manifest) is still a valid target to mutate.
func Init(path string) (Project, error) {
	if path == "" {
		return Project{}, errEmptyPath
	}

	start, err := startDir(path)
	if err != nil {
		return Project{}, err
	}

	root := findRoot(start)
	rel, err := filepath.Rel(root, start)
	if err != nil {
		rel = "."
	}

	return Project{Root: root, CallingDir: rel}, nil
}

func startDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	fi, err := os.Stat(abs)
	if err != nil {
		return filepath.Dir(abs), nil //nolint:nilerr // a not-yet-existing path still has a usable parent dir
	}
	if fi.IsDir() {
		return abs, nil
	}

	return filepath.Dir(abs), nil
}

func findRoot(start string) string {
	dir := filepath.Clean(start)
	for {
		if hasMarker(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

func hasMarker(dir string) bool {
	for _, m := range markers {
		if _, err := os.Stat(filepath.Join(dir, m)); err == nil {
			return true
		}
	}

	return false
}

type emptyPathError struct{}

func (emptyPathError) Error() string { return "path is not set" }

var errEmptyPath = emptyPathError{}
