package queryexec

import (
	"iter"
	"slices"

	"github.com/regulumdb/regulumdb/internal/graph"
	"github.com/regulumdb/regulumdb/internal/queryir"
)

// CompileQuery narrows candidates by f. The result is lazy; candidates is
// consumed as the result is, except under _or and _not, which collect it
// when iteration starts.
func (e *Executor) CompileQuery(f *queryir.FilterObject, candidates iter.Seq[graph.ID]) iter.Seq[graph.ID] {
	it := candidates
	if f.Restriction != "" {
		r, ok := e.restrictions.Restriction(f.Restriction)
		if !ok {
			return empty
		}
		it = filter(it, r)
	}

	for _, edge := range f.Edges {
		switch v := edge.Value.(type) {
		case *queryir.And:
			for _, sub := range v.Filters {
				it = e.CompileQuery(sub, it)
			}
		case *queryir.Or:
			it = e.or(v.Filters, it)
		case *queryir.Not:
			it = e.not(v.Filter, it)
		case *queryir.Required:
			p, ok := e.g.PredicateID(edge.Property)
			if !ok {
				return empty
			}
			test := e.objectTest(v.Object)
			it = filter(it, func(s graph.ID) bool {
				t, ok := e.g.SingleTripleSP(s, p)
				return ok && test(t.Object)
			})
		case *queryir.Collection:
			p, ok := e.g.PredicateID(edge.Property)
			if !ok {
				// No candidate has a value: every one passes allHave
				// and none passes someHave.
				if v.Op == queryir.AllHave {
					continue
				}
				return empty
			}
			it = filter(it, e.collectionTest(v, p))
		}
	}
	return it
}

func (e *Executor) or(filters []*queryir.FilterObject, in iter.Seq[graph.ID]) iter.Seq[graph.ID] {
	return func(yield func(graph.ID) bool) {
		snapshot := slices.Collect(in)
		for _, sub := range filters {
			for id := range e.CompileQuery(sub, slices.Values(snapshot)) {
				if !yield(id) {
					return
				}
			}
		}
	}
}

// not yields the distinct candidates that do not pass f, in first-seen
// order.
func (e *Executor) not(f *queryir.FilterObject, in iter.Seq[graph.ID]) iter.Seq[graph.ID] {
	return func(yield func(graph.ID) bool) {
		candidates := slices.Collect(unique(in))
		excluded := make(map[graph.ID]struct{})
		for id := range e.CompileQuery(f, slices.Values(candidates)) {
			excluded[id] = struct{}{}
		}
		for _, id := range candidates {
			if _, ok := excluded[id]; ok {
				continue
			}
			if !yield(id) {
				return
			}
		}
	}
}

func (e *Executor) collectionTest(c *queryir.Collection, p graph.ID) func(graph.ID) bool {
	test := e.objectTest(c.Object)
	if c.Op == queryir.AllHave {
		return func(s graph.ID) bool {
			for _, t := range e.g.TriplesSP(s, p) {
				if !test(t.Object) {
					return false
				}
			}
			return true
		}
	}
	return func(s graph.ID) bool {
		return slices.ContainsFunc(e.g.TriplesSP(s, p), func(t graph.Triple) bool {
			return test(t.Object)
		})
	}
}

// objectTest builds the test applied to the object id of an edge.
func (e *Executor) objectTest(of queryir.ObjectFilter) func(graph.ID) bool {
	switch of := of.(type) {
	case *queryir.NodeFilter:
		return func(obj graph.ID) bool {
			return nonEmpty(e.CompileQuery(of.Filter, single(obj)))
		}
	case *queryir.ValueFilter:
		return e.valueTest(of.Type)
	default:
		return func(graph.ID) bool { return false }
	}
}

// restrictionNames yields every restriction name used anywhere in f.
func restrictionNames(f *queryir.FilterObject) iter.Seq[string] {
	return func(yield func(string) bool) {
		walkRestrictions(f, yield)
	}
}

func walkRestrictions(f *queryir.FilterObject, yield func(string) bool) bool {
	if f == nil {
		return true
	}
	if f.Restriction != "" && !yield(f.Restriction) {
		return false
	}
	for _, edge := range f.Edges {
		var subs []*queryir.FilterObject
		switch v := edge.Value.(type) {
		case *queryir.And:
			subs = v.Filters
		case *queryir.Or:
			subs = v.Filters
		case *queryir.Not:
			subs = []*queryir.FilterObject{v.Filter}
		case *queryir.Required:
			if nf, ok := v.Object.(*queryir.NodeFilter); ok {
				subs = []*queryir.FilterObject{nf.Filter}
			}
		case *queryir.Collection:
			if nf, ok := v.Object.(*queryir.NodeFilter); ok {
				subs = []*queryir.FilterObject{nf.Filter}
			}
		}
		for _, sub := range subs {
			if !walkRestrictions(sub, yield) {
				return false
			}
		}
	}
	return true
}
