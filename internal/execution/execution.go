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

// Package execution holds the exit-code error kinds that are fatal to a
// whole Run, as opposed to errors that are isolated into a single mutant's
// outcome.
package execution

// ErrorType is the type of error that generates a specific exit status.
type ErrorType int

// The fatal error kinds that can end a Run early. Each is a misuse of the
// tool rather than a mutant-level failure.
const (
	// UnsupportedLanguage is raised when the target file's extension maps
	// to no known language.
	UnsupportedLanguage ErrorType = iota

	// FunctionNotFound is raised when a -f scope names a function absent
	// from the target file.
	FunctionNotFound

	// BaselineFailed is raised when the unmutated project does not pass
	// the test command.
	BaselineFailed
)

// String produces the human readable sentence for the ErrorType.
func (e ErrorType) String() string {
	switch e {
	case UnsupportedLanguage:
		return "unsupported language"
	case FunctionNotFound:
		return "function not found"
	case BaselineFailed:
		return "baseline run failed"
	}
	panic("this should not happen")
}

// misuseExitCode is the exit code shared by every fatal ErrorType, per the
// external interface contract: 2 means misuse.
const misuseExitCode = 2

// ExitError is a special Error raised when a condition requires the process
// to exit with a specific code. If it reaches main (possibly wrapped), its
// ExitCode becomes the process exit status.
type ExitError struct {
	errorType ErrorType
	detail    string
}

// NewExitErr instantiates a new ExitError. detail, if non-empty, is appended
// to the ErrorType's message for additional context.
func NewExitErr(et ErrorType, detail string) *ExitError {
	return &ExitError{errorType: et, detail: detail}
}

// Error is the implementation of the error interface.
func (e *ExitError) Error() string {
	if e.detail == "" {
		return e.errorType.String()
	}

	return e.errorType.String() + ": " + e.detail
}

// ExitCode returns the exit code associated with this error.
func (*ExitError) ExitCode() int {
	return misuseExitCode
}

// Type returns the underlying ErrorType.
func (e *ExitError) Type() ErrorType {
	return e.errorType
}
