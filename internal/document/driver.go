package document

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/regulumdb/regulumdb/internal/frame"
	"github.com/regulumdb/regulumdb/internal/graph"
	"github.com/regulumdb/regulumdb/internal/ir"
	"github.com/regulumdb/regulumdb/internal/metric"
)

const tracerName = "github.com/regulumdb/regulumdb/internal/document"

// Selection picks the documents StreamAll emits.
type Selection struct {
	// Types names the classes to enumerate. Empty means every document
	// type when unfolding, every class otherwise.
	Types []string
	// Skip drops that many entities from the front of the work list.
	Skip int
	// Count caps the work list when non-nil.
	Count *int
}

// EmitFunc receives documents in work-list order. Returning an error stops
// emission; work already dispatched still runs to completion.
type EmitFunc func(doc *ir.IRObject) error

// Streamer enumerates and materializes every document of a layer.
type Streamer struct {
	m       *Materializer
	frames  *frame.AllFrames
	workers int
	tracer  trace.Tracer
	metrics *metric.Metrics
	logger  *slog.Logger
}

// StreamerOption configures a Streamer.
type StreamerOption func(*Streamer)

// WithWorkers sets the parallel worker count. Values below one are ignored.
func WithWorkers(n int) StreamerOption {
	return func(s *Streamer) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithTracer replaces the global tracer.
func WithTracer(t trace.Tracer) StreamerOption {
	return func(s *Streamer) {
		s.tracer = t
	}
}

// WithMetrics records emitted documents and reorder buffer usage.
func WithMetrics(m *metric.Metrics) StreamerOption {
	return func(s *Streamer) {
		s.metrics = m
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) StreamerOption {
	return func(s *Streamer) {
		s.logger = l
	}
}

// NewStreamer creates a Streamer. frames resolves the class names in a
// Selection and must be the frames m was built from.
func NewStreamer(m *Materializer, frames *frame.AllFrames, opts ...StreamerOption) *Streamer {
	s := &Streamer{
		m:       m,
		frames:  frames,
		workers: runtime.GOMAXPROCS(0),
		tracer:  otel.Tracer(tracerName),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Entities returns the work list for sel: for each type in id order, every
// subject typed with it, bounded by Skip and Count.
func (s *Streamer) Entities(sel Selection) ([]graph.ID, error) {
	types, err := s.workTypes(sel.Types)
	if err != nil {
		return nil, err
	}

	var ids []graph.ID
	rdfType := s.m.idx.RDFType
	for _, typ := range types {
		for _, t := range s.m.g.TriplesO(typ) {
			if t.Predicate == rdfType {
				ids = append(ids, t.Subject)
			}
		}
	}

	skip := min(max(sel.Skip, 0), len(ids))
	ids = ids[skip:]
	if sel.Count != nil && *sel.Count >= 0 && *sel.Count < len(ids) {
		ids = ids[:*sel.Count]
	}
	return ids, nil
}

func (s *Streamer) workTypes(names []string) ([]graph.ID, error) {
	if s.m.idx.RDFType == 0 {
		return nil, nil
	}
	if len(names) == 0 {
		set := s.m.idx.Types
		if s.m.opts.Unfold {
			set = s.m.idx.DocumentTypes
		}
		types := make([]graph.ID, 0, len(set))
		for id := range set {
			types = append(types, id)
		}
		slices.Sort(types)
		return types, nil
	}

	types := make([]graph.ID, 0, len(names))
	for _, name := range names {
		if _, ok := s.frames.Class(name); !ok {
			return nil, fmt.Errorf("unknown class %q", name)
		}
		if id, ok := s.m.g.ObjectNodeID(s.frames.ClassIRI(name)); ok {
			types = append(types, id)
		}
	}
	slices.Sort(types)
	return slices.Compact(types), nil
}

func (s *Streamer) document(id graph.ID) *ir.IRObject {
	v, ok := s.m.Materialize(id)
	if !ok {
		return nil
	}
	return v.(*ir.IRObject)
}

// StreamAll materializes the selection one document at a time on the
// calling goroutine.
func (s *Streamer) StreamAll(ctx context.Context, sel Selection, emit EmitFunc) (err error) {
	ctx, span := s.tracer.Start(ctx, "document.StreamAll")
	defer func() { endSpan(span, err) }()

	ids, err := s.Entities(sel)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("document.count", len(ids)))

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := s.document(id)
		if doc == nil {
			continue
		}
		if err := emit(doc); err != nil {
			return err
		}
		s.metrics.DocumentMaterialized(metric.ModeSequential)
	}
	s.logger.Debug("documents streamed", "count", len(ids), "mode", metric.ModeSequential)
	return nil
}

// StreamAllParallel materializes the selection on a worker pool and emits
// documents in the same order as StreamAll.
//
// Workers send (index, document) pairs to a single collector, which holds
// early arrivals in a min-heap until the next expected index shows up.
func (s *Streamer) StreamAllParallel(ctx context.Context, sel Selection, emit EmitFunc) (err error) {
	ctx, span := s.tracer.Start(ctx, "document.StreamAllParallel")
	defer func() { endSpan(span, err) }()

	ids, err := s.Entities(sel)
	if err != nil {
		return err
	}
	workers := min(s.workers, max(len(ids), 1))
	span.SetAttributes(
		attribute.Int("document.count", len(ids)),
		attribute.Int("document.workers", workers),
	)

	jobs := make(chan int)
	results := make(chan indexed, workers)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := range ids {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range jobs {
				results <- indexed{index: i, doc: s.document(ids[i])}
			}
			return nil
		})
	}

	var dispatchErr error
	go func() {
		dispatchErr = g.Wait()
		close(results)
	}()

	var (
		buf     reorderBuffer
		emitErr error
	)
	for r := range results {
		if emitErr != nil {
			continue
		}
		for _, ready := range buf.add(r) {
			if ready.doc == nil {
				continue
			}
			if emitErr = emit(ready.doc); emitErr != nil {
				break
			}
			s.metrics.DocumentMaterialized(metric.ModeParallel)
		}
	}
	s.metrics.SetReorderPeak(buf.peak)

	if emitErr != nil {
		return emitErr
	}
	if dispatchErr != nil {
		return dispatchErr
	}
	buf.finish()

	s.logger.Debug("documents streamed",
		"count", len(ids), "mode", metric.ModeParallel,
		"workers", workers, "reorder_peak", buf.peak)
	return nil
}

// MaterializeAll collects the selection into a slice, in parallel when more
// than one worker is configured.
func (s *Streamer) MaterializeAll(ctx context.Context, sel Selection) ([]*ir.IRObject, error) {
	var docs []*ir.IRObject
	collect := func(doc *ir.IRObject) error {
		docs = append(docs, doc)
		return nil
	}

	var err error
	if s.workers > 1 {
		err = s.StreamAllParallel(ctx, sel, collect)
	} else {
		err = s.StreamAll(ctx, sel, collect)
	}
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
