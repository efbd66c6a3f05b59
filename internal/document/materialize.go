package document

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/regulumdb/regulumdb/internal/frame"
	"github.com/regulumdb/regulumdb/internal/graph"
	"github.com/regulumdb/regulumdb/internal/ir"
)

// Options control how documents render.
type Options struct {
	// Unfold expands referenced subdocuments and unfoldable documents
	// inline. When false every typed reference renders as an id string.
	Unfold bool
	// Compress contracts ids and predicate names with the frame prefixes.
	Compress bool
}

// DefaultOptions unfolds and compresses.
func DefaultOptions() Options {
	return Options{Unfold: true, Compress: true}
}

// Materializer builds documents from one layer. It holds no per-call state
// and may be shared between goroutines.
type Materializer struct {
	g        graph.Layer
	idx      *SchemaIndex
	prefixes frame.Prefixes
	opts     Options
}

// NewMaterializer indexes frames against g.
func NewMaterializer(g graph.Layer, frames *frame.AllFrames, opts Options) *Materializer {
	return NewMaterializerWithIndex(g, NewSchemaIndex(frames, g), frames.Context, opts)
}

// NewMaterializerWithIndex reuses an existing index.
func NewMaterializerWithIndex(g graph.Layer, idx *SchemaIndex, prefixes frame.Prefixes, opts Options) *Materializer {
	return &Materializer{g: g, idx: idx, prefixes: prefixes, opts: opts}
}

// Index returns the schema index in use.
func (m *Materializer) Index() *SchemaIndex {
	return m.idx
}

// Layer returns the layer documents are read from.
func (m *Materializer) Layer() graph.Layer {
	return m.g
}

type stackEntry interface {
	stackEntry()
}

type documentEntry struct {
	doc    *ir.IRObject
	typ    graph.ID
	fields *tripleCursor
	json   bool
}

type listEntry struct {
	items   ir.IRArray
	entries *listCursor
	json    bool
}

// arrayEntry borrows the parent document's cursor and consumes the run of
// triples that share subject and predicate with the first cell.
type arrayEntry struct {
	collect   []ArrayElement
	fields    *tripleCursor
	subject   graph.ID
	predicate graph.ID
	lastIndex []int
}

func (*documentEntry) stackEntry() {}
func (*listEntry) stackEntry()     {}
func (*arrayEntry) stackEntry()    {}

// GetDocument materializes the document named by a full IRI.
func (m *Materializer) GetDocument(iri string) (*ir.IRObject, bool) {
	id, ok := m.g.SubjectID(iri)
	if !ok {
		return nil, false
	}
	v, ok := m.Materialize(id)
	if !ok {
		return nil, false
	}
	return v.(*ir.IRObject), true
}

// Materialize returns the document rooted at id. When id is a literal, or a
// node with neither type nor fields, ok is false and v is the scalar it
// renders as.
func (m *Materializer) Materialize(id graph.ID) (v ir.IRValue, ok bool) {
	root, leaf := m.stub(id, false)
	if root == nil {
		return leaf, false
	}

	stack := []stackEntry{root}
	for {
		top := stack[len(stack)-1]
		next, more := m.peek(top)
		if !more {
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return root.doc, true
			}
			m.integrate(stack[len(stack)-1], top)
			continue
		}

		if container := m.container(top, next); container != nil {
			stack = append(stack, container)
			continue
		}

		value, child := m.field(next)
		if child != nil {
			stack = append(stack, child)
			continue
		}
		m.integrateValue(top, value)
	}
}

// peek returns the object the top entry wants resolved next. Document and
// list entries leave their cursor in place until the value is integrated;
// array entries advance immediately and remember the cell's index.
func (m *Materializer) peek(e stackEntry) (graph.ID, bool) {
	switch e := e.(type) {
	case *documentEntry:
		t, ok := e.fields.peek()
		return t.Object, ok
	case *listEntry:
		return e.entries.peek()
	case *arrayEntry:
		return m.nextArrayCell(e)
	default:
		panic(fmt.Sprintf("document: unknown stack entry %T", e))
	}
}

func (m *Materializer) nextArrayCell(a *arrayEntry) (graph.ID, bool) {
	t, ok := a.fields.peek()
	if !ok || t.Subject != a.subject || t.Predicate != a.predicate {
		return 0, false
	}

	index := make([]int, 0, len(m.idx.SysIndexes))
	for _, p := range m.idx.SysIndexes {
		it, ok := m.g.SingleTripleSP(t.Object, p)
		if !ok {
			break
		}
		index = append(index, m.indexValue(it.Object))
	}
	slices.Reverse(index)

	if m.idx.SysValue == 0 {
		panic("document: array cell found but layer has no sys:value predicate")
	}
	value, ok := m.g.SingleTripleSP(t.Object, m.idx.SysValue)
	if !ok {
		panic(fmt.Sprintf("document: array cell %d has no sys:value", t.Object))
	}

	a.fields.next()
	a.lastIndex = index
	return value.Object, true
}

func (m *Materializer) indexValue(id graph.ID) int {
	obj, ok := m.g.IDObject(id)
	if !ok || !obj.IsValue {
		panic(fmt.Sprintf("document: array index %d is not a literal", id))
	}
	n, err := strconv.Atoi(strings.TrimSpace(obj.Value.Lexical))
	if err != nil || n < 0 {
		panic(fmt.Sprintf("document: array index %q is not a non-negative integer", obj.Value.Lexical))
	}
	return n
}

// container returns a new array or list entry when next is the head of one.
// Arrays are only recognised as document fields; lists also nest inside
// JSON lists.
func (m *Materializer) container(top stackEntry, next graph.ID) stackEntry {
	if m.idx.RDFType == 0 {
		return nil
	}
	var inDocument, json bool
	switch e := top.(type) {
	case *documentEntry:
		inDocument, json = true, e.json
	case *listEntry:
		json = e.json
	}
	if !inDocument && !json {
		return nil
	}

	t, ok := m.g.SingleTripleSP(next, m.idx.RDFType)
	if !ok {
		return nil
	}
	switch {
	case inDocument && m.idx.SysArray != 0 && t.Object == m.idx.SysArray:
		d := top.(*documentEntry)
		head, _ := d.fields.peek()
		return &arrayEntry{fields: d.fields, subject: head.Subject, predicate: head.Predicate}
	case m.idx.RDFList != 0 && t.Object == m.idx.RDFList:
		return &listEntry{
			items:   ir.IRArray{},
			entries: &listCursor{g: m.g, idx: m.idx, cell: next},
			json:    json,
		}
	}
	return nil
}

// field resolves an object to a finished value, or to a document entry
// that still needs unfolding.
func (m *Materializer) field(object graph.ID) (ir.IRValue, stackEntry) {
	if v, ok := m.idx.Enums[object]; ok {
		return ir.IRString(v), nil
	}
	if m.idx.RDFNil != 0 && object == m.idx.RDFNil {
		return ir.IRArray{}, nil
	}
	doc, leaf := m.stub(object, true)
	if doc != nil {
		return nil, doc
	}
	return leaf, nil
}

// stub starts a document for id, or returns the scalar id renders as.
// With terminate set, a typed node stops here when the termination policy
// says so.
func (m *Materializer) stub(id graph.ID, terminate bool) (*documentEntry, ir.IRValue) {
	obj, ok := m.g.IDObject(id)
	if !ok {
		panic(fmt.Sprintf("document: id %d is not in the layer", id))
	}
	if obj.IsValue {
		return nil, obj.Value.Native()
	}
	name := m.contractInstance(obj.Node)

	fields := newTripleCursor(m.g.TriplesS(id), m.idx.RDFType)

	var typ graph.ID
	if m.idx.RDFType != 0 {
		if t, ok := m.g.SingleTripleSP(id, m.idx.RDFType); ok {
			if terminate && m.idx.terminates(t.Object, m.opts.Unfold) {
				return nil, ir.IRString(name)
			}
			typ = t.Object
		}
	}

	if typ == 0 {
		if _, more := fields.peek(); !more {
			return nil, ir.IRString(name)
		}
	}

	json := typ != 0 && (typ == m.idx.SysJSON || typ == m.idx.SysJSONDocument)
	doc := ir.NewIRObject()
	if typ == 0 || typ != m.idx.SysJSON {
		doc.Set("@id", ir.IRString(name))
	}
	if typ != 0 && !json {
		typeObj, ok := m.g.IDObject(typ)
		if !ok {
			panic(fmt.Sprintf("document: type id %d is not in the layer", typ))
		}
		doc.Set("@type", ir.IRString(m.contractSchema(typeObj.Node)))
	}

	return &documentEntry{doc: doc, typ: typ, fields: fields, json: json}, nil
}

func (m *Materializer) integrate(parent, child stackEntry) {
	switch c := child.(type) {
	case *arrayEntry:
		d, ok := parent.(*documentEntry)
		if !ok {
			panic(fmt.Sprintf("document: array nested in %T", parent))
		}
		addField(d.doc, m.predicateName(c.predicate), CollectArray(c.collect), false)
	case *documentEntry:
		m.integrateValue(parent, c.doc)
	case *listEntry:
		m.integrateValue(parent, c.items)
	}
}

func (m *Materializer) integrateValue(parent stackEntry, value ir.IRValue) {
	switch p := parent.(type) {
	case *documentEntry:
		t, _ := p.fields.next()
		isSet := p.typ != 0 && m.idx.IsSet(p.typ, t.Predicate)
		addField(p.doc, m.predicateName(t.Predicate), value, isSet)
	case *listEntry:
		p.entries.advance()
		p.items = append(p.items, value)
	case *arrayEntry:
		p.collect = append(p.collect, ArrayElement{Index: p.lastIndex, Value: value})
		p.lastIndex = nil
	}
}

// addField stores value under key. A set field starts as a one-element
// array; any other field starts as a scalar and turns into an array on its
// second value.
func addField(doc *ir.IRObject, key string, value ir.IRValue, isSet bool) {
	existing, ok := doc.Get(key)
	if !ok {
		if isSet {
			doc.Set(key, ir.IRArray{value})
		} else {
			doc.Set(key, value)
		}
		return
	}
	if arr, ok := existing.(ir.IRArray); ok {
		doc.Set(key, append(arr, value))
		return
	}
	doc.Set(key, ir.IRArray{existing, value})
}

func (m *Materializer) predicateName(p graph.ID) string {
	name, ok := m.g.IDPredicate(p)
	if !ok {
		panic(fmt.Sprintf("document: predicate id %d is not in the layer", p))
	}
	return m.contractSchema(name)
}

func (m *Materializer) contractInstance(iri string) string {
	if !m.opts.Compress {
		return iri
	}
	return m.prefixes.ContractInstance(iri)
}

func (m *Materializer) contractSchema(iri string) string {
	if !m.opts.Compress {
		return iri
	}
	return m.prefixes.ContractSchema(iri)
}
