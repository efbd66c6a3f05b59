package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidate_Valid(t *testing.T) {
	out, _, err := execute(t, "validate", testFrames)
	require.NoError(t, err)
	assert.Equal(t, "✓ Frames valid\n", out)
}

func TestValidate_ValidJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "validate", testFrames)
	require.NoError(t, err)

	var result ValidationResult
	resp := decodeData(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.Valid)
	assert.Equal(t, 3, result.Classes)
	assert.Empty(t, result.Errors)
}

func TestValidate_Verbose(t *testing.T) {
	_, stderr, err := execute(t, "--verbose", "validate", testFrames)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Compiled 3 definition(s)")
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	broken := filepath.Join("testdata", "broken.json")

	out, _, err := execute(t, "validate", broken)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "E124 Book.@inherits")
	assert.Contains(t, out, "E121 Book.author")
	assert.Contains(t, out, "E123 Book.tags")

	out, _, err = execute(t, "--format", "json", "validate", broken)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result ValidationResult
	resp := decodeData(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.False(t, result.Valid)

	codes := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		codes = append(codes, e.Code)
	}
	assert.ElementsMatch(t, []string{"E124", "E121", "E123"}, codes)
	assert.Contains(t, codes, resp.Error.Code)
}

func TestValidate_LoadFailures(t *testing.T) {
	tests := []struct {
		name     string
		path     func(t *testing.T) string
		wantCode string
	}{
		{
			name:     "missing file",
			path:     func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.cue") },
			wantCode: ErrCodeNotFound,
		},
		{
			name:     "empty directory",
			path:     func(t *testing.T) string { return t.TempDir() },
			wantCode: ErrCodeNoFiles,
		},
		{
			name:     "cue syntax error",
			path:     func(t *testing.T) string { return writeFile(t, "frames.cue", "\"Book\": {\n") },
			wantCode: ErrCodeBuildFailed,
		},
		{
			name: "no context",
			path: func(t *testing.T) string {
				return writeFile(t, "frames.json", `{"Book": {"@type": "Class", "title": "xsd:string"}}`)
			},
			wantCode: ErrCodeInvalidFrame,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "--format", "json", "validate", tt.path(t))
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			resp := decodeData(t, out, nil)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestValidate_NeedsOneArgument(t *testing.T) {
	_, _, err := execute(t, "validate")
	require.Error(t, err)
}
