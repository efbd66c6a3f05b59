package graph

import (
	"cmp"
	"slices"
)

type nameTriple struct {
	subject   string
	predicate string
	node      string
	value     Literal
	isValue   bool
}

// Builder accumulates named triples and assigns ids on Build.
// Ids are assigned in sorted name order, so two builders fed the same triples
// in any order produce identical layers.
type Builder struct {
	triples []nameTriple
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddNode adds a triple whose object is a node.
func (b *Builder) AddNode(subject, predicate, object string) *Builder {
	b.triples = append(b.triples, nameTriple{subject: subject, predicate: predicate, node: object})
	return b
}

// AddValue adds a triple whose object is a literal.
func (b *Builder) AddValue(subject, predicate string, object Literal) *Builder {
	b.triples = append(b.triples, nameTriple{subject: subject, predicate: predicate, value: object, isValue: true})
	return b
}

// Len returns the number of triples added so far, duplicates included.
func (b *Builder) Len() int {
	return len(b.triples)
}

// Build freezes the triples into a MemoryLayer. Duplicate triples collapse.
func (b *Builder) Build() *MemoryLayer {
	nodeSet := make(map[string]struct{})
	valueSet := make(map[Literal]struct{})
	predSet := make(map[string]struct{})
	for _, t := range b.triples {
		nodeSet[t.subject] = struct{}{}
		predSet[t.predicate] = struct{}{}
		if t.isValue {
			valueSet[t.value] = struct{}{}
		} else {
			nodeSet[t.node] = struct{}{}
		}
	}

	m := &MemoryLayer{
		nodes:    sortedKeys(nodeSet, cmp.Compare[string]),
		values:   sortedKeys(valueSet, compareLiteral),
		preds:    sortedKeys(predSet, cmp.Compare[string]),
		nodeIDs:  make(map[string]ID, len(nodeSet)),
		valueIDs: make(map[Literal]ID, len(valueSet)),
		predIDs:  make(map[string]ID, len(predSet)),
	}
	for i, n := range m.nodes {
		m.nodeIDs[n] = ID(i + 1)
	}
	for i, v := range m.values {
		m.valueIDs[v] = ID(len(m.nodes) + i + 1)
	}
	for i, p := range m.preds {
		m.predIDs[p] = ID(i + 1)
	}

	spo := make([]Triple, 0, len(b.triples))
	for _, t := range b.triples {
		var o ID
		if t.isValue {
			o = m.valueIDs[t.value]
		} else {
			o = m.nodeIDs[t.node]
		}
		spo = append(spo, Triple{m.nodeIDs[t.subject], m.predIDs[t.predicate], o})
	}
	slices.SortFunc(spo, compareSPO)
	spo = slices.Compact(spo)

	ops := slices.Clone(spo)
	slices.SortFunc(ops, compareOPS)

	m.spo = spo
	m.ops = ops
	return m
}

func compareLiteral(a, b Literal) int {
	return cmp.Or(cmp.Compare(a.Datatype, b.Datatype), cmp.Compare(a.Lexical, b.Lexical))
}

func sortedKeys[K comparable](set map[K]struct{}, compare func(a, b K) int) []K {
	keys := make([]K, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compare)
	return keys
}
