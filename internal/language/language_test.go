package language_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polymute/polymute/internal/execution"
	"github.com/polymute/polymute/internal/language"
)

func TestDetect(t *testing.T) {
	testCases := []struct {
		path string
		want language.Tag
	}{
		{"main.py", language.Python},
		{"SCRIPT.PY", language.Python},
		{"app.js", language.JavaScript},
		{"app.jsx", language.JavaScript},
		{"app.mjs", language.JavaScript},
		{"app.ts", language.TypeScript},
		{"component.tsx", language.TypeScript},
		{"lib.rs", language.Rust},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			got, err := language.Detect(tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDetect_unsupported(t *testing.T) {
	_, err := language.Detect("binary.exe")

	require.Error(t, err)

	var exitErr *execution.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, execution.UnsupportedLanguage, exitErr.Type())
}
