package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: a frame document, a dataset,
// and the documents, queries and exports expected from them.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Frames is the frame document (file or CUE directory).
	// Relative paths resolve against the scenario file's directory.
	Frames string `yaml:"frames"`

	// Dataset is a YAML triple file in the store.Dataset format.
	Dataset string `yaml:"dataset"`

	Documents []DocumentStep `yaml:"documents,omitempty"`
	Queries   []QueryStep    `yaml:"queries,omitempty"`
	Exports   []ExportStep   `yaml:"exports,omitempty"`
}

// DocumentStep materializes one document by id.
type DocumentStep struct {
	// ID is the document id, expanded against @base.
	ID string `yaml:"id"`

	// Unfold and Compress override the materializer defaults (both true).
	Unfold   *bool `yaml:"unfold,omitempty"`
	Compress *bool `yaml:"compress,omitempty"`

	// Expect is matched against the document. Object keys are a subset
	// match; arrays must match element for element.
	Expect any `yaml:"expect,omitempty"`

	// Missing asserts that no document exists under ID.
	Missing bool `yaml:"missing,omitempty"`
}

// QueryStep runs one query through the filter compiler and executor.
type QueryStep struct {
	Name  string `yaml:"name"`
	Class string `yaml:"class"`

	// Filter and OrderBy are GraphQL input literals, as a client writes them.
	Filter  string `yaml:"filter,omitempty"`
	OrderBy string `yaml:"order_by,omitempty"`

	ID     string   `yaml:"id,omitempty"`
	IDs    []string `yaml:"ids,omitempty"`
	Path   string   `yaml:"path,omitempty"`
	Offset int      `yaml:"offset,omitempty"`
	Limit  *int     `yaml:"limit,omitempty"`

	// Expect lists the result ids in order, contracted against @base.
	Expect []string `yaml:"expect,omitempty"`

	// Error is the expected failure: a query error code such as E204,
	// or "compile" for a filter that must not compile.
	Error string `yaml:"error,omitempty"`
}

// ExportStep streams every document of the selected types.
type ExportStep struct {
	Name     string   `yaml:"name"`
	Types    []string `yaml:"types,omitempty"`
	Skip     int      `yaml:"skip,omitempty"`
	Count    *int     `yaml:"count,omitempty"`
	Parallel bool     `yaml:"parallel,omitempty"`
	Workers  int      `yaml:"workers,omitempty"`

	// Expect lists the @id of each emitted document in order.
	Expect []string `yaml:"expect"`
}

// ErrorCompile is the QueryStep.Error value for a filter that must fail to
// compile.
const ErrorCompile = "compile"

// LoadScenario reads and parses a scenario YAML file. Frames and Dataset
// resolve relative to the file's directory.
//
// Unknown fields are rejected so a typo like "querys:" fails loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for _, p := range []*string{&scenario.Frames, &scenario.Dataset} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario decodes YAML without resolving or validating paths.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Frames == "" {
		return fmt.Errorf("frames is required")
	}
	if s.Dataset == "" {
		return fmt.Errorf("dataset is required")
	}
	for _, p := range []string{s.Frames, s.Dataset} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", p)
		}
	}
	if len(s.Documents)+len(s.Queries)+len(s.Exports) == 0 {
		return fmt.Errorf("at least one of documents, queries or exports is required")
	}

	for i, d := range s.Documents {
		if d.ID == "" {
			return fmt.Errorf("documents[%d]: id is required", i)
		}
		if d.Missing && d.Expect != nil {
			return fmt.Errorf("documents[%d]: missing and expect are exclusive", i)
		}
	}

	for i, q := range s.Queries {
		if q.Name == "" {
			return fmt.Errorf("queries[%d]: name is required", i)
		}
		if q.Class == "" {
			return fmt.Errorf("queries[%d]: class is required", i)
		}
		if q.Error != "" && q.Expect != nil {
			return fmt.Errorf("queries[%d]: error and expect are exclusive", i)
		}
	}

	for i, e := range s.Exports {
		if e.Name == "" {
			return fmt.Errorf("exports[%d]: name is required", i)
		}
		if e.Expect == nil {
			return fmt.Errorf("exports[%d]: expect is required (use [] for none)", i)
		}
	}
	return nil
}
