package graph

import (
	"cmp"
	"slices"
	"sort"
)

// MemoryLayer is an immutable Layer backed by two sorted triple indexes.
// Build one with a Builder or from a store snapshot.
type MemoryLayer struct {
	nodes    []string
	nodeIDs  map[string]ID
	values   []Literal
	valueIDs map[Literal]ID
	preds    []string
	predIDs  map[string]ID

	spo []Triple
	ops []Triple
}

var _ Layer = (*MemoryLayer)(nil)

func (m *MemoryLayer) SubjectID(name string) (ID, bool) {
	id, ok := m.nodeIDs[name]
	return id, ok
}

func (m *MemoryLayer) PredicateID(name string) (ID, bool) {
	id, ok := m.predIDs[name]
	return id, ok
}

func (m *MemoryLayer) ObjectNodeID(name string) (ID, bool) {
	id, ok := m.nodeIDs[name]
	return id, ok
}

func (m *MemoryLayer) ObjectValueID(v Literal) (ID, bool) {
	id, ok := m.valueIDs[v]
	return id, ok
}

func (m *MemoryLayer) IDSubject(id ID) (string, bool) {
	if id == 0 || int(id) > len(m.nodes) {
		return "", false
	}
	return m.nodes[id-1], true
}

func (m *MemoryLayer) IDPredicate(id ID) (string, bool) {
	if id == 0 || int(id) > len(m.preds) {
		return "", false
	}
	return m.preds[id-1], true
}

func (m *MemoryLayer) IDObject(id ID) (Object, bool) {
	if name, ok := m.IDSubject(id); ok {
		return NodeObject(name), true
	}
	idx := int(id) - len(m.nodes) - 1
	if idx < 0 || idx >= len(m.values) {
		return Object{}, false
	}
	return ValueObject(m.values[idx]), true
}

// IsValue reports whether id lies in the literal part of the object id space.
func (m *MemoryLayer) IsValue(id ID) bool {
	return int(id) > len(m.nodes)
}

func (m *MemoryLayer) TriplesS(s ID) []Triple {
	lo := sort.Search(len(m.spo), func(i int) bool { return m.spo[i].Subject >= s })
	hi := sort.Search(len(m.spo), func(i int) bool { return m.spo[i].Subject > s })
	return m.spo[lo:hi:hi]
}

func (m *MemoryLayer) TriplesSP(s, p ID) []Triple {
	lo := sort.Search(len(m.spo), func(i int) bool {
		t := m.spo[i]
		return t.Subject > s || (t.Subject == s && t.Predicate >= p)
	})
	hi := sort.Search(len(m.spo), func(i int) bool {
		t := m.spo[i]
		return t.Subject > s || (t.Subject == s && t.Predicate > p)
	})
	return m.spo[lo:hi:hi]
}

func (m *MemoryLayer) TriplesO(o ID) []Triple {
	lo := sort.Search(len(m.ops), func(i int) bool { return m.ops[i].Object >= o })
	hi := sort.Search(len(m.ops), func(i int) bool { return m.ops[i].Object > o })
	return m.ops[lo:hi:hi]
}

func (m *MemoryLayer) SingleTripleSP(s, p ID) (Triple, bool) {
	ts := m.TriplesSP(s, p)
	if len(ts) == 0 {
		return Triple{}, false
	}
	return ts[0], true
}

func (m *MemoryLayer) TripleExists(s, p, o ID) bool {
	_, found := slices.BinarySearchFunc(m.spo, Triple{s, p, o}, compareSPO)
	return found
}

// Triples returns every triple in subject, predicate, object order.
func (m *MemoryLayer) Triples() []Triple {
	return m.spo[:len(m.spo):len(m.spo)]
}

// Stats summarises the layer's dictionaries.
type Stats struct {
	Nodes      int
	Values     int
	Predicates int
	Triples    int
}

func (m *MemoryLayer) Stats() Stats {
	return Stats{
		Nodes:      len(m.nodes),
		Values:     len(m.values),
		Predicates: len(m.preds),
		Triples:    len(m.spo),
	}
}

func compareSPO(a, b Triple) int {
	return cmp.Or(
		cmp.Compare(a.Subject, b.Subject),
		cmp.Compare(a.Predicate, b.Predicate),
		cmp.Compare(a.Object, b.Object),
	)
}

func compareOPS(a, b Triple) int {
	return cmp.Or(
		cmp.Compare(a.Object, b.Object),
		cmp.Compare(a.Predicate, b.Predicate),
		cmp.Compare(a.Subject, b.Subject),
	)
}
