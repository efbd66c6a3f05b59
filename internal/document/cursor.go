package document

import "github.com/regulumdb/regulumdb/internal/graph"

// tripleCursor is a peekable position over a subject's outgoing triples,
// skipping one predicate (rdf:type).
type tripleCursor struct {
	triples []graph.Triple
	pos     int
	skip    graph.ID
}

func newTripleCursor(triples []graph.Triple, skip graph.ID) *tripleCursor {
	c := &tripleCursor{triples: triples, skip: skip}
	c.settle()
	return c
}

func (c *tripleCursor) settle() {
	for c.pos < len(c.triples) && c.skip != 0 && c.triples[c.pos].Predicate == c.skip {
		c.pos++
	}
}

func (c *tripleCursor) peek() (graph.Triple, bool) {
	if c.pos >= len(c.triples) {
		return graph.Triple{}, false
	}
	return c.triples[c.pos], true
}

func (c *tripleCursor) next() (graph.Triple, bool) {
	t, ok := c.peek()
	if ok {
		c.pos++
		c.settle()
	}
	return t, ok
}

// listCursor walks an rdf:first/rdf:rest chain. A cell without rdf:first
// ends the list, as does rdf:nil or a missing rdf:rest.
type listCursor struct {
	g    graph.Layer
	idx  *SchemaIndex
	cell graph.ID
}

func (c *listCursor) peek() (graph.ID, bool) {
	if c.cell == 0 || c.cell == c.idx.RDFNil || c.idx.RDFFirst == 0 {
		return 0, false
	}
	first, ok := c.g.SingleTripleSP(c.cell, c.idx.RDFFirst)
	if !ok {
		return 0, false
	}
	return first.Object, true
}

func (c *listCursor) advance() {
	if c.idx.RDFRest == 0 {
		c.cell = 0
		return
	}
	rest, ok := c.g.SingleTripleSP(c.cell, c.idx.RDFRest)
	if !ok {
		c.cell = 0
		return
	}
	c.cell = rest.Object
}
