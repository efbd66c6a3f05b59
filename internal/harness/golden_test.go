package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Queries(t *testing.T) {
	s, err := LoadScenario(filepath.Join(scenariosDir, "queries.scenario.yaml"))
	require.NoError(t, err)

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestAssertGolden_FromResult(t *testing.T) {
	s, err := LoadScenario(filepath.Join(scenariosDir, "queries.scenario.yaml"))
	require.NoError(t, err)

	result, err := Run(t.Context(), s)
	require.NoError(t, err)
	require.NoError(t, AssertGolden(t, "queries", result))
}

func TestSnapshot_Shape(t *testing.T) {
	result := NewResult()
	result.addOutput(StepOutput{Kind: KindDocument, Name: "Book/gone"})
	result.addOutput(StepOutput{Kind: KindQuery, Name: "empty", IDs: []string{}})
	result.addOutput(StepOutput{Kind: KindQuery, Name: "bad", Error: "E204: unknown class"})
	result.addOutput(StepOutput{Kind: KindExport, Name: "all", IDs: []string{"a"}, Digest: "d"})

	data, err := Snapshot("shape", result)
	require.NoError(t, err)

	want := `{"scenario":"shape","steps":[` +
		`{"document":null,"kind":"document","name":"Book/gone"},` +
		`{"ids":[],"kind":"query","name":"empty"},` +
		`{"error":"E204: unknown class","kind":"query","name":"bad"},` +
		`{"digest":"d","ids":["a"],"kind":"export","name":"all"}]}`
	assert.Equal(t, want, string(data))
}

func TestSnapshot_Deterministic(t *testing.T) {
	s := loadLibrary(t)

	var snapshots []string
	for range 3 {
		result, err := Run(t.Context(), s)
		require.NoError(t, err)
		data, err := Snapshot(s.Name, result)
		require.NoError(t, err)
		snapshots = append(snapshots, string(data))
	}
	assert.Equal(t, snapshots[0], snapshots[1])
	assert.Equal(t, snapshots[1], snapshots[2])
	assert.True(t, strings.HasPrefix(snapshots[0], `{"scenario":"library","steps":[`))
}
