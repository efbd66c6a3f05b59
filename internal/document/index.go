package document

import (
	"github.com/regulumdb/regulumdb/internal/frame"
	"github.com/regulumdb/regulumdb/internal/graph"
)

type setPair struct {
	typ, pred graph.ID
}

// SchemaIndex holds the ids of well-known predicates and types resolved
// against one instance layer. A zero id means the layer does not contain
// that name. It is immutable once built and safe to share between
// goroutines.
type SchemaIndex struct {
	RDFType  graph.ID
	RDFFirst graph.ID
	RDFRest  graph.ID
	RDFNil   graph.ID
	RDFList  graph.ID

	SysArray        graph.ID
	SysValue        graph.ID
	SysJSON         graph.ID
	SysJSONDocument graph.ID
	// SysIndexes lists sys:index, sys:index2, ... up to the first one the
	// layer does not know.
	SysIndexes []graph.ID

	Types         map[graph.ID]bool
	DocumentTypes map[graph.ID]bool
	Unfoldables   map[graph.ID]bool
	Enums         map[graph.ID]string

	setPairs map[setPair]bool
}

// NewSchemaIndex resolves frames against g. Classes, enum values and
// properties that never occur in g are left out.
func NewSchemaIndex(frames *frame.AllFrames, g graph.Layer) *SchemaIndex {
	idx := &SchemaIndex{
		Types:         map[graph.ID]bool{},
		DocumentTypes: map[graph.ID]bool{},
		Unfoldables:   map[graph.ID]bool{},
		Enums:         map[graph.ID]string{},
		setPairs:      map[setPair]bool{},
	}

	idx.RDFType, _ = g.PredicateID(graph.RDFType)
	idx.RDFFirst, _ = g.PredicateID(graph.RDFFirst)
	idx.RDFRest, _ = g.PredicateID(graph.RDFRest)
	idx.RDFNil, _ = g.ObjectNodeID(graph.RDFNil)
	idx.RDFList, _ = g.ObjectNodeID(graph.RDFList)
	idx.SysArray, _ = g.ObjectNodeID(graph.SysArray)
	idx.SysValue, _ = g.PredicateID(graph.SysValue)
	idx.SysJSON, _ = g.ObjectNodeID(graph.SysJSON)
	idx.SysJSONDocument, _ = g.ObjectNodeID(graph.SysJSONDocument)

	for n := 1; ; n++ {
		id, ok := g.PredicateID(graph.SysIndexN(n))
		if !ok {
			break
		}
		idx.SysIndexes = append(idx.SysIndexes, id)
	}

	if idx.SysJSONDocument != 0 {
		idx.DocumentTypes[idx.SysJSONDocument] = true
	}

	for _, name := range frames.Names() {
		def, _ := frames.Lookup(name)
		switch d := def.(type) {
		case *frame.ClassDefinition:
			typeID, ok := g.ObjectNodeID(frames.ClassIRI(name))
			if !ok {
				continue
			}
			idx.Types[typeID] = true
			if !d.Subdocument {
				idx.DocumentTypes[typeID] = true
			}
			if d.Unfoldable {
				idx.Unfoldables[typeID] = true
			}
			for _, f := range frames.Fields(name) {
				if f.Def.Kind != frame.Set && f.Def.Kind != frame.Cardinality {
					continue
				}
				if predID, ok := g.PredicateID(frames.PropertyIRI(f.Name)); ok {
					idx.setPairs[setPair{typeID, predID}] = true
				}
			}
		case *frame.EnumDefinition:
			for _, v := range d.Values {
				if id, ok := g.ObjectNodeID(frames.EnumValueIRI(name, v)); ok {
					idx.Enums[id] = v
				}
			}
		}
	}

	return idx
}

// IsSet reports whether predicate pred on instances of typ always renders
// as a sequence.
func (idx *SchemaIndex) IsSet(typ, pred graph.ID) bool {
	return idx.setPairs[setPair{typ, pred}]
}

// terminates reports whether a reference to an instance of typ renders as
// an id string instead of unfolding.
func (idx *SchemaIndex) terminates(typ graph.ID, unfold bool) bool {
	return !unfold || (idx.DocumentTypes[typ] && !idx.Unfoldables[typ])
}
