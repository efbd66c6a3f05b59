package path

import (
	"iter"
	"slices"

	"github.com/regulumdb/regulumdb/internal/frame"
	"github.com/regulumdb/regulumdb/internal/graph"
)

// Transformer maps a set of starting nodes to the nodes a path reaches
// from them.
type Transformer func(iter.Seq[graph.ID]) iter.Seq[graph.ID]

// Compile turns p into a Transformer over g. Predicate names are expanded
// against the schema namespace of prefixes; a name g does not know matches
// nothing. The result yields each reachable node once, in first-reached
// order.
func Compile(p Path, g graph.Layer, prefixes frame.Prefixes) Transformer {
	c := &compiler{g: g, prefixes: prefixes}
	step := c.compile(p)
	return func(in iter.Seq[graph.ID]) iter.Seq[graph.ID] {
		return unique(step(in))
	}
}

type compiler struct {
	g        graph.Layer
	prefixes frame.Prefixes
}

func (c *compiler) compile(p Path) Transformer {
	switch p := p.(type) {
	case Seq:
		steps := make([]Transformer, len(p))
		for i, sub := range p {
			steps[i] = c.compile(sub)
		}
		return func(in iter.Seq[graph.ID]) iter.Seq[graph.ID] {
			for _, step := range steps {
				in = step(in)
			}
			return in
		}
	case Choice:
		branches := make([]Transformer, len(p))
		for i, sub := range p {
			branches[i] = c.compile(sub)
		}
		return func(in iter.Seq[graph.ID]) iter.Seq[graph.ID] {
			return func(yield func(graph.ID) bool) {
				start := slices.Collect(in)
				for _, branch := range branches {
					for id := range branch(slices.Values(start)) {
						if !yield(id) {
							return
						}
					}
				}
			}
		}
	case Positive:
		return c.forward(Pred(p))
	case Negative:
		return c.backward(Pred(p))
	case Plus:
		return closure(c.compile(p.Path), false)
	case Star:
		return closure(c.compile(p.Path), true)
	case Times:
		return repeat(c.compile(p.Path), p.Min, p.Max)
	default:
		panic("path: unknown path node")
	}
}

// predicate resolves a named predicate. ok is false when the layer has no
// such predicate, so the step can match nothing.
func (c *compiler) predicate(p Pred) (id graph.ID, ok bool) {
	if p.Any {
		return 0, true
	}
	return c.g.PredicateID(c.prefixes.ExpandSchema(p.Name))
}

func (c *compiler) forward(p Pred) Transformer {
	pred, ok := c.predicate(p)
	return func(in iter.Seq[graph.ID]) iter.Seq[graph.ID] {
		return func(yield func(graph.ID) bool) {
			if !ok {
				return
			}
			for id := range in {
				var triples []graph.Triple
				if pred == 0 {
					triples = c.g.TriplesS(id)
				} else {
					triples = c.g.TriplesSP(id, pred)
				}
				for _, t := range triples {
					obj, found := c.g.IDObject(t.Object)
					if !found || obj.IsValue {
						continue
					}
					if !yield(t.Object) {
						return
					}
				}
			}
		}
	}
}

func (c *compiler) backward(p Pred) Transformer {
	pred, ok := c.predicate(p)
	return func(in iter.Seq[graph.ID]) iter.Seq[graph.ID] {
		return func(yield func(graph.ID) bool) {
			if !ok {
				return
			}
			for id := range in {
				for _, t := range c.g.TriplesO(id) {
					if pred != 0 && t.Predicate != pred {
						continue
					}
					if !yield(t.Subject) {
						return
					}
				}
			}
		}
	}
}

// closure applies step until no new node appears. A reflexive closure also
// yields the starting nodes.
func closure(step Transformer, reflexive bool) Transformer {
	return func(in iter.Seq[graph.ID]) iter.Seq[graph.ID] {
		return func(yield func(graph.ID) bool) {
			seen := make(map[graph.ID]bool)
			var frontier []graph.ID
			if reflexive {
				for id := range in {
					if seen[id] {
						continue
					}
					seen[id] = true
					if !yield(id) {
						return
					}
					frontier = append(frontier, id)
				}
			} else {
				frontier = slices.Collect(in)
			}

			for len(frontier) > 0 {
				var next []graph.ID
				for id := range step(slices.Values(frontier)) {
					if seen[id] {
						continue
					}
					seen[id] = true
					if !yield(id) {
						return
					}
					next = append(next, id)
				}
				frontier = next
			}
		}
	}
}

// repeat yields what step reaches after between lo and hi applications.
func repeat(step Transformer, lo, hi int) Transformer {
	return func(in iter.Seq[graph.ID]) iter.Seq[graph.ID] {
		return func(yield func(graph.ID) bool) {
			current := slices.Collect(unique(in))
			seen := make(map[graph.ID]bool)
			emit := func(ids []graph.ID) bool {
				for _, id := range ids {
					if seen[id] {
						continue
					}
					seen[id] = true
					if !yield(id) {
						return false
					}
				}
				return true
			}

			if lo == 0 && !emit(current) {
				return
			}
			for i := 1; i <= hi && len(current) > 0; i++ {
				current = slices.Collect(unique(step(slices.Values(current))))
				if i >= lo && !emit(current) {
					return
				}
			}
		}
	}
}

func unique(in iter.Seq[graph.ID]) iter.Seq[graph.ID] {
	return func(yield func(graph.ID) bool) {
		seen := make(map[graph.ID]bool)
		for id := range in {
			if seen[id] {
				continue
			}
			seen[id] = true
			if !yield(id) {
				return
			}
		}
	}
}
