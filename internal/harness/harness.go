package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/regulumdb/regulumdb/internal/compiler"
	"github.com/regulumdb/regulumdb/internal/document"
	"github.com/regulumdb/regulumdb/internal/frame"
	"github.com/regulumdb/regulumdb/internal/gqlinput"
	"github.com/regulumdb/regulumdb/internal/graph"
	"github.com/regulumdb/regulumdb/internal/ir"
	"github.com/regulumdb/regulumdb/internal/querycompile"
	"github.com/regulumdb/regulumdb/internal/queryexec"
	"github.com/regulumdb/regulumdb/internal/store"
)

// Harness runs scenarios against one frame document and layer.
type Harness struct {
	frames *frame.AllFrames
	layer  *graph.MemoryLayer
	exec   *queryexec.Executor
	logger *slog.Logger
}

// Option configures Run.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger routes harness and executor logs to l. Logs are discarded by
// default.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// The dataset is imported into a fresh in-memory store and read back as a
// snapshot, so every scenario also exercises the import path.
//
// Execution flow:
// 1. Compile and validate the frames
// 2. Import the dataset and take a snapshot
// 3. Materialize each document step
// 4. Run each query step
// 5. Stream each export step
//
// The returned error covers setup failures only; expectation failures are
// reported in Result.Errors.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	frames, err := compiler.LoadFrames(scenario.Frames)
	if err != nil {
		return nil, fmt.Errorf("failed to load frames: %w", err)
	}
	if err := compiler.ValidateFrames(frames); err != nil {
		return nil, fmt.Errorf("invalid frames: %w", err)
	}

	layer, err := loadLayer(ctx, scenario.Dataset, frames.Context)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		frames: frames,
		layer:  layer,
		exec:   queryexec.New(layer, frames, queryexec.WithLogger(cfg.logger)),
		logger: cfg.logger,
	}

	result := NewResult()
	for i, step := range scenario.Documents {
		h.runDocument(i, step, result)
	}
	for i, step := range scenario.Queries {
		h.runQuery(ctx, i, step, result)
	}
	for i, step := range scenario.Exports {
		if err := h.runExport(ctx, i, step, result); err != nil {
			return nil, err
		}
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name, "pass", result.Pass, "errors", len(result.Errors))
	return result, nil
}

func loadLayer(ctx context.Context, path string, prefixes frame.Prefixes) (*graph.MemoryLayer, error) {
	ds, err := store.LoadDataset(path)
	if err != nil {
		return nil, err
	}
	triples, err := ds.Resolve(prefixes)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}

	st, err := store.OpenMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if _, err := st.Import(ctx, path, triples); err != nil {
		return nil, fmt.Errorf("failed to import dataset: %w", err)
	}
	return st.Snapshot(ctx)
}

func (h *Harness) runDocument(i int, step DocumentStep, result *Result) {
	opts := document.DefaultOptions()
	if step.Unfold != nil {
		opts.Unfold = *step.Unfold
	}
	if step.Compress != nil {
		opts.Compress = *step.Compress
	}
	m := document.NewMaterializer(h.layer, h.frames, opts)

	out := StepOutput{Kind: KindDocument, Name: step.ID}
	doc, ok := m.GetDocument(h.frames.Context.ExpandInstance(step.ID))
	if ok {
		out.Document = doc
	}
	result.addOutput(out)

	where := fmt.Sprintf("documents[%d] %s", i, step.ID)
	switch {
	case step.Missing && ok:
		result.AddError(fmt.Sprintf("%s: expected no document, got one", where))
	case !step.Missing && !ok:
		result.AddError(fmt.Sprintf("%s: document not found", where))
	case ok && step.Expect != nil:
		expected, err := convertToIRValue(step.Expect)
		if err != nil {
			result.AddError(fmt.Sprintf("%s: bad expect: %v", where, err))
			return
		}
		if err := matchValue("", expected, doc); err != nil {
			result.AddError(fmt.Sprintf("%s: %v", where, err))
		}
	}
}

func (h *Harness) runQuery(ctx context.Context, i int, step QueryStep, result *Result) {
	where := fmt.Sprintf("queries[%d] %s", i, step.Name)
	out := StepOutput{Kind: KindQuery, Name: step.Name}

	ids, err := h.query(ctx, step)
	if err != nil {
		out.Error = err.Error()
		result.addOutput(out)
		if step.Error == "" || step.Error != errorKind(err) {
			result.AddError(fmt.Sprintf("%s: unexpected error: %v", where, err))
		}
		return
	}

	out.IDs = ids
	result.addOutput(out)
	if step.Error != "" {
		result.AddError(fmt.Sprintf("%s: expected error %s, got %v", where, step.Error, ids))
		return
	}
	if step.Expect != nil && !slices.Equal(step.Expect, ids) {
		result.AddError((&AssertionError{
			Step:     where,
			Expected: fmt.Sprintf("%v", step.Expect),
			Actual:   fmt.Sprintf("%v", ids),
		}).Error())
	}
}

func (h *Harness) query(ctx context.Context, step QueryStep) ([]string, error) {
	req := queryexec.Request{
		Class:  step.Class,
		ID:     step.ID,
		IDs:    step.IDs,
		Path:   step.Path,
		Offset: step.Offset,
		Limit:  step.Limit,
	}

	if step.Filter != "" {
		input, err := gqlinput.Parse(step.Filter)
		if err != nil {
			return nil, err
		}
		if req.Filter, err = querycompile.CompileFilter(h.frames, step.Class, input); err != nil {
			return nil, err
		}
	}
	if step.OrderBy != "" {
		input, err := gqlinput.Parse(step.OrderBy)
		if err != nil {
			return nil, err
		}
		if req.OrderBy, err = querycompile.CompileOrderBy(input); err != nil {
			return nil, err
		}
	}

	ids, err := h.exec.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return h.names(ids), nil
}

// errorKind classifies err the way QueryStep.Error spells it. A filter
// literal that does not parse counts as a compile failure.
func errorKind(err error) string {
	var (
		ge *gqlinput.Error
		qe *queryexec.QueryError
	)
	switch {
	case querycompile.IsCompileError(err), errors.As(err, &ge):
		return ErrorCompile
	case errors.As(err, &qe):
		return string(qe.Code)
	default:
		return ""
	}
}

func (h *Harness) names(ids []graph.ID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		name, ok := h.layer.IDSubject(id)
		if !ok {
			panic(fmt.Sprintf("harness: query returned id %d with no subject", id))
		}
		out = append(out, h.frames.Context.ContractInstance(name))
	}
	return out
}

func (h *Harness) runExport(ctx context.Context, i int, step ExportStep, result *Result) error {
	where := fmt.Sprintf("exports[%d] %s", i, step.Name)

	var streamOpts []document.StreamerOption
	streamOpts = append(streamOpts, document.WithLogger(h.logger))
	if step.Workers > 0 {
		streamOpts = append(streamOpts, document.WithWorkers(step.Workers))
	}
	m := document.NewMaterializer(h.layer, h.frames, document.DefaultOptions())
	s := document.NewStreamer(m, h.frames, streamOpts...)

	var (
		ids     []string
		digests []string
	)
	emit := func(doc *ir.IRObject) error {
		id, _ := doc.Get("@id")
		name, ok := id.(ir.IRString)
		if !ok {
			return fmt.Errorf("document without @id")
		}
		d, err := ir.DocumentDigest(doc)
		if err != nil {
			return err
		}
		ids = append(ids, string(name))
		digests = append(digests, d)
		return nil
	}

	sel := document.Selection{Types: step.Types, Skip: step.Skip, Count: step.Count}
	var err error
	if step.Parallel {
		err = s.StreamAllParallel(ctx, sel, emit)
	} else {
		err = s.StreamAll(ctx, sel, emit)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", where, err)
	}

	if ids == nil {
		ids = []string{}
	}
	result.addOutput(StepOutput{
		Kind:   KindExport,
		Name:   step.Name,
		IDs:    ids,
		Digest: ir.ExportDigest(digests),
	})
	if !slices.Equal(step.Expect, ids) {
		result.AddError((&AssertionError{
			Step:     where,
			Expected: fmt.Sprintf("%v", step.Expect),
			Actual:   fmt.Sprintf("%v", ids),
		}).Error())
	}
	return nil
}
