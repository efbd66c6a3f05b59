package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/regulumdb/regulumdb/internal/ir"
)

// Snapshot renders a result as canonical JSON: the scenario name and, per
// step, the materialized document, the query ids or the export ids and
// digest.
func Snapshot(name string, result *Result) ([]byte, error) {
	return ir.MarshalCanonical(result.snapshot(name))
}

// RunWithGolden executes a scenario and compares its outputs against a golden
// file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass. Test failure (via goldie)
// occurs if the outputs don't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
