package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// copySuite copies the example scenarios into a temp directory so golden
// files can be written.
func copySuite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	entries, err := os.ReadDir(scenariosDir)
	require.NoError(t, err)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(scenariosDir, e.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, e.Name()), data, 0o644))
	}
	return dir
}

func TestFindScenarios(t *testing.T) {
	files, err := FindScenarios(scenariosDir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(scenariosDir, "library.scenario.yaml"),
		filepath.Join(scenariosDir, "queries.scenario.yaml"),
	}, files)

	files, err = FindScenarios(scenariosDir, "lib*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(scenariosDir, "library.scenario.yaml")}, files)

	_, err = FindScenarios(scenariosDir, "[")
	require.Error(t, err)
}

func TestGoldenPath(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "golden", "x.golden"), GoldenPath(filepath.Join("a", "x.scenario.yaml")))
	assert.Equal(t, filepath.Join("a", "golden", "y.golden"), GoldenPath(filepath.Join("a", "y.yaml")))
}

func TestRunSuite_ExampleScenarios(t *testing.T) {
	result, err := RunSuite(t.Context(), scenariosDir, SuiteOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Passed)
	assert.Zero(t, result.Failed)
	for _, sr := range result.Scenarios {
		assert.True(t, sr.Pass, "%s: %v", sr.Name, sr.Errors)
		assert.False(t, sr.GoldenUpdated)
	}
}

func TestRunSuite_UpdateThenCompare(t *testing.T) {
	dir := copySuite(t)

	result, err := RunSuite(t.Context(), dir, SuiteOptions{Update: true})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Passed)
	for _, sr := range result.Scenarios {
		assert.True(t, sr.GoldenUpdated)
		assert.FileExists(t, GoldenPath(sr.Path))
	}

	result, err = RunSuite(t.Context(), dir, SuiteOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Passed)

	golden := GoldenPath(filepath.Join(dir, "queries.scenario.yaml"))
	require.NoError(t, os.WriteFile(golden, []byte("{}"), 0o644))

	result, err = RunSuite(t.Context(), dir, SuiteOptions{Filter: "queries"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, result.Scenarios[0].Errors[0], "does not match golden file")
}

func TestRunSuite_LoadFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.scenario.yaml"), []byte("name: broken\n"), 0o644))

	result, err := RunSuite(t.Context(), dir, SuiteOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, result.Failed)
	assert.Equal(t, "broken.scenario.yaml", result.Scenarios[0].Name)
	assert.Contains(t, result.Scenarios[0].Errors[0], "failed to load scenario")
}

func TestRunSuite_MissingDirectory(t *testing.T) {
	_, err := RunSuite(t.Context(), filepath.Join(t.TempDir(), "absent"), SuiteOptions{})
	require.Error(t, err)
}
