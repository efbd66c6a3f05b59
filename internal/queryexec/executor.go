package queryexec

import (
	"context"
	"iter"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/regulumdb/regulumdb/internal/frame"
	"github.com/regulumdb/regulumdb/internal/graph"
	"github.com/regulumdb/regulumdb/internal/metric"
	"github.com/regulumdb/regulumdb/internal/path"
	"github.com/regulumdb/regulumdb/internal/queryir"
)

const tracerName = "github.com/regulumdb/regulumdb/internal/queryexec"

// Request is one query against a class.
type Request struct {
	// Class is the queried class name.
	Class string

	// Filter narrows the candidates. Nil keeps them all.
	Filter *queryir.FilterObject

	// ID and IDs seed the query with known instances, given as instance
	// names (prefixed or absolute). At most one may be set. Unknown names
	// are dropped, and so are ids that are not instances of Class unless a
	// Path starts from them.
	ID  string
	IDs []string

	// Seed replaces the initial scan when non-nil. ID and IDs then narrow
	// the seed instead of looking ids up.
	Seed iter.Seq[graph.ID]

	// Path, when set, replaces the seed by the instances of Class it
	// reaches from the seed.
	Path string

	// OrderBy sorts the results. Candidates missing a field sort after
	// those that have it, in either direction.
	OrderBy []queryir.OrderField

	// Offset drops that many results. Limit caps the rest when non-nil.
	Offset int
	Limit  *int
}

// Executor runs queries over one layer.
type Executor struct {
	g            graph.Layer
	frames       *frame.AllFrames
	restrictions Restrictions
	tracer       trace.Tracer
	metrics      *metric.Metrics
	logger       *slog.Logger

	rdfType graph.ID
	hasType bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithRestrictions sets the gates _restriction names resolve against.
func WithRestrictions(r Restrictions) Option {
	return func(e *Executor) {
		e.restrictions = r
	}
}

// WithTracer replaces the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(e *Executor) {
		e.tracer = t
	}
}

// WithMetrics records query outcomes and excluded candidates.
func WithMetrics(m *metric.Metrics) Option {
	return func(e *Executor) {
		e.metrics = m
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// New creates an Executor over g. frames must describe g's schema.
func New(g graph.Layer, frames *frame.AllFrames, opts ...Option) *Executor {
	e := &Executor{
		g:            g,
		frames:       frames,
		restrictions: RestrictionMap{},
		tracer:       otel.Tracer(tracerName),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rdfType, e.hasType = g.PredicateID(graph.RDFType)
	return e
}

// Run validates req, evaluates it and returns the matching ids.
//
// Every QueryError is returned before the graph is scanned.
func (e *Executor) Run(ctx context.Context, req Request) (ids []graph.ID, err error) {
	start := time.Now()
	_, span := e.tracer.Start(ctx, "queryexec.Run", trace.WithAttributes(
		attribute.String("query.class", req.Class),
		attribute.Bool("query.ordered", len(req.OrderBy) > 0),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			e.metrics.ObserveQuery(metric.OutcomeInvalid, time.Since(start), 0)
		} else {
			span.SetAttributes(attribute.Int("query.results", len(ids)))
			e.metrics.ObserveQuery(metric.OutcomeOK, time.Since(start), len(ids))
		}
		span.End()
	}()

	it, err := e.Plan(req)
	if err != nil {
		return nil, err
	}
	ids = slices.Collect(it)
	if ids == nil {
		ids = []graph.ID{}
	}
	e.logger.Debug("query finished", "class", req.Class, "results", len(ids))
	return ids, nil
}

// Plan validates req and returns its lazy result stream. Without an
// ordering, consuming a prefix of the stream reads only as much of the
// graph as that prefix needs.
func (e *Executor) Plan(req Request) (iter.Seq[graph.ID], error) {
	if err := e.check(req); err != nil {
		return nil, err
	}

	var transform path.Transformer
	if req.Path != "" {
		p, err := path.Parse(req.Path)
		if err != nil {
			return nil, &QueryError{Code: ErrCodePathSyntax, Message: "bad path", Err: err}
		}
		transform = path.Compile(p, e.g, e.frames.Context)
	}

	seed, hasSeed := e.seed(req, transform == nil)
	if transform != nil {
		if !hasSeed {
			return nil, queryErrorf(ErrCodePathWithoutSeed, "a path needs id, ids or a seed to start from")
		}
		seed = filter(transform(seed), e.instanceTest(req.Class))
	} else if !hasSeed {
		seed = e.Instances(req.Class)
	}

	it := seed
	if req.Filter != nil {
		it = e.CompileQuery(req.Filter, it)
	}

	if len(req.OrderBy) > 0 {
		it = e.sorted(unique(it), req.OrderBy)
	}
	it = skip(it, req.Offset)
	if req.Limit != nil {
		it = take(it, *req.Limit)
	}
	return it, nil
}

func (e *Executor) check(req Request) error {
	if _, ok := e.frames.Class(req.Class); !ok {
		return queryErrorf(ErrCodeUnknownClass, "unknown class %q", req.Class)
	}
	if req.ID != "" && req.IDs != nil {
		return queryErrorf(ErrCodeIDConflict, "id and ids must not both be given")
	}
	for _, o := range req.OrderBy {
		if _, ok := e.frames.ResolveField(req.Class, o.Property); !ok {
			return queryErrorf(ErrCodeUnknownOrderField, "class %s has no field %q to order by", req.Class, o.Property)
		}
	}
	if req.Filter != nil {
		if res := queryir.Validate(req.Filter); !res.Valid {
			return &QueryError{Code: ErrCodeInvalidFilter, Message: "malformed filter", Err: res}
		}
		for name := range restrictionNames(req.Filter) {
			if _, ok := e.restrictions.Restriction(name); !ok {
				return queryErrorf(ErrCodeInvalidFilter, "unknown restriction %q", name)
			}
		}
	}
	return nil
}

// seed builds the starting stream from Seed, ID and IDs. Looked-up ids are
// narrowed to instances of the class when typed is set. The boolean is
// false when none of them is set.
func (e *Executor) seed(req Request, typed bool) (iter.Seq[graph.ID], bool) {
	var names []string
	switch {
	case req.ID != "":
		names = []string{req.ID}
	case req.IDs != nil:
		names = req.IDs
	default:
		return req.Seed, req.Seed != nil
	}

	known := make([]graph.ID, 0, len(names))
	for _, name := range names {
		if id, ok := e.g.SubjectID(e.frames.Context.ExpandInstance(name)); ok {
			known = append(known, id)
		}
	}

	if req.Seed != nil {
		return filter(req.Seed, func(id graph.ID) bool {
			return slices.Contains(known, id)
		}), true
	}
	if !typed {
		return slices.Values(known), true
	}
	return filter(slices.Values(known), e.instanceTest(req.Class)), true
}

// Instances streams every subject typed with class or one of its
// subclasses, class by class.
func (e *Executor) Instances(class string) iter.Seq[graph.ID] {
	types := e.classIDs(class)
	return func(yield func(graph.ID) bool) {
		if !e.hasType {
			return
		}
		for _, typ := range types {
			for _, t := range e.g.TriplesO(typ) {
				if t.Predicate == e.rdfType && !yield(t.Subject) {
					return
				}
			}
		}
	}
}

func (e *Executor) classIDs(class string) []graph.ID {
	var out []graph.ID
	for _, name := range e.frames.Subsumed(class) {
		if id, ok := e.g.ObjectNodeID(e.frames.ClassIRI(name)); ok {
			out = append(out, id)
		}
	}
	return out
}

// instanceTest reports whether an id is typed with class or a subclass.
func (e *Executor) instanceTest(class string) func(graph.ID) bool {
	types := e.classIDs(class)
	return func(id graph.ID) bool {
		if !e.hasType {
			return false
		}
		for _, typ := range types {
			if e.g.TripleExists(id, e.rdfType, typ) {
				return true
			}
		}
		return false
	}
}
