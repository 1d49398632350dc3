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

// Package log is a minimal singleton logger used for progress and warning
// output. It is a no-op until Init is called, so packages can log freely
// without worrying about test setup.
package log

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

var fgRed = color.New(color.FgRed).SprintFunc()

type logger struct {
	out io.Writer
	err io.Writer
}

var (
	mutex    sync.Mutex
	instance *logger
)

// Init initializes the singleton logger with an output and an error writer.
// A nil writer leaves the corresponding stream as a no-op.
func Init(out, errOut io.Writer) {
	mutex.Lock()
	defer mutex.Unlock()
	instance = &logger{out: out, err: errOut}
}

// Reset removes the current logger instance, restoring no-op behaviour.
// Mainly used by tests.
func Reset() {
	mutex.Lock()
	defer mutex.Unlock()
	instance = nil
}

// Infof logs an informational message using a format string.
func Infof(f string, args ...any) {
	mutex.Lock()
	defer mutex.Unlock()
	if instance == nil || instance.out == nil {
		return
	}
	_, _ = fmt.Fprintf(instance.out, f, args...)
}

// Infoln logs an informational line.
func Infoln(a any) {
	mutex.Lock()
	defer mutex.Unlock()
	if instance == nil || instance.out == nil {
		return
	}
	_, _ = fmt.Fprintln(instance.out, a)
}

// Errorf logs an error using a format string, prefixed with a highlighted
// "ERROR" tag.
func Errorf(f string, args ...any) {
	mutex.Lock()
	defer mutex.Unlock()
	if instance == nil || instance.err == nil {
		return
	}
	msg := fmt.Sprintf(f, args...)
	_, _ = fmt.Fprintf(instance.err, "%s: %s", fgRed("ERROR"), msg)
}

// Errorln logs an error line, prefixed with a highlighted "ERROR" tag.
func Errorln(a any) {
	mutex.Lock()
	defer mutex.Unlock()
	if instance == nil || instance.err == nil {
		return
	}
	_, _ = fmt.Fprintf(instance.err, "%s: %v\n", fgRed("ERROR"), a)
}
