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

package execution_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polymute/polymute/internal/execution"
)

func TestExitErr(t *testing.T) {
	testCases := []struct {
		name        string
		errorType   execution.ErrorType
		detail      string
		wantExitMsg string
	}{
		{
			name:        "unsupported language",
			errorType:   execution.UnsupportedLanguage,
			wantExitMsg: "unsupported language",
		},
		{
			name:        "function not found with detail",
			errorType:   execution.FunctionNotFound,
			detail:      `"doStuff"`,
			wantExitMsg: `function not found: "doStuff"`,
		},
		{
			name:        "baseline failed",
			errorType:   execution.BaselineFailed,
			wantExitMsg: "baseline run failed",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := execution.NewExitErr(tc.errorType, tc.detail)

			assert.Equal(t, 2, err.ExitCode())
			assert.Equal(t, tc.wantExitMsg, err.Error())
			assert.Equal(t, tc.errorType, err.Type())
		})
	}
}
