package harness

import "github.com/regulumdb/regulumdb/internal/ir"

// Step kinds recorded in a Result.
const (
	KindDocument = "document"
	KindQuery    = "query"
	KindExport   = "export"
)

// StepOutput is what one scenario step produced.
type StepOutput struct {
	Kind string `json:"kind"`
	Name string `json:"name"`

	// Document is the materialized document of a document step, or nil
	// when none exists.
	Document ir.IRValue `json:"document,omitempty"`

	// IDs are query results or exported document ids, contracted.
	IDs []string `json:"ids,omitempty"`

	// Digest folds the exported documents with ir.ExportDigest.
	Digest string `json:"digest,omitempty"`

	// Error is the failure a query step reported, if any.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation matched.
	Pass bool `json:"pass"`

	// Outputs holds one entry per step in scenario order: documents, then
	// queries, then exports.
	Outputs []StepOutput `json:"outputs"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Outputs: []StepOutput{},
		Errors:  []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) addOutput(out StepOutput) {
	r.Outputs = append(r.Outputs, out)
}

// snapshot renders the outputs as an ordered document tree for golden
// comparison.
func (r *Result) snapshot(name string) *ir.IRObject {
	steps := make(ir.IRArray, 0, len(r.Outputs))
	for _, out := range r.Outputs {
		step := ir.NewIRObjectFromPairs(
			ir.O("kind", ir.IRString(out.Kind)),
			ir.O("name", ir.IRString(out.Name)),
		)
		if out.Kind == KindDocument {
			if out.Document == nil {
				step.Set("document", ir.IRNull{})
			} else {
				step.Set("document", out.Document)
			}
		}
		if out.Error != "" {
			step.Set("error", ir.IRString(out.Error))
		} else if out.Kind != KindDocument {
			ids := make(ir.IRArray, 0, len(out.IDs))
			for _, id := range out.IDs {
				ids = append(ids, ir.IRString(id))
			}
			step.Set("ids", ids)
		}
		if out.Digest != "" {
			step.Set("digest", ir.IRString(out.Digest))
		}
		steps = append(steps, step)
	}
	return ir.NewIRObjectFromPairs(
		ir.O("scenario", ir.IRString(name)),
		ir.O("steps", steps),
	)
}
