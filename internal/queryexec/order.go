package queryexec

import (
	"cmp"
	"iter"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/regulumdb/regulumdb/internal/graph"
	"github.com/regulumdb/regulumdb/internal/queryir"
)

// OrderKey holds one candidate's value for each ordering field. A nil
// entry means the candidate has no value for that field.
type OrderKey []*graph.Object

// orderKey looks up id's value for each ordering predicate. A predicate
// the layer does not know leaves every key entry missing.
func (e *Executor) orderKey(id graph.ID, preds []graph.ID, known []bool) OrderKey {
	key := make(OrderKey, len(preds))
	for i, p := range preds {
		if !known[i] {
			continue
		}
		t, ok := e.g.SingleTripleSP(id, p)
		if !ok {
			continue
		}
		if o, ok := e.g.IDObject(t.Object); ok {
			key[i] = &o
		}
	}
	return key
}

// CompareOrderKeys compares two keys field by field. Missing values sort
// after present ones whatever the direction.
func CompareOrderKeys(a, b OrderKey, fields []queryir.OrderField) int {
	for i, f := range fields {
		x, y := a[i], b[i]
		var c int
		switch {
		case x == nil && y == nil:
			continue
		case x == nil:
			return 1
		case y == nil:
			return -1
		default:
			c = CompareObjects(*x, *y)
		}
		if f.Direction == queryir.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// sorted collects in and sorts it stably by the ordering fields.
func (e *Executor) sorted(in iter.Seq[graph.ID], fields []queryir.OrderField) iter.Seq[graph.ID] {
	return func(yield func(graph.ID) bool) {
		preds := make([]graph.ID, len(fields))
		known := make([]bool, len(fields))
		for i, f := range fields {
			preds[i], known[i] = e.g.PredicateID(e.frames.PropertyIRI(f.Property))
		}

		type keyed struct {
			id  graph.ID
			key OrderKey
		}
		var rows []keyed
		for id := range in {
			rows = append(rows, keyed{id: id, key: e.orderKey(id, preds, known)})
		}
		slices.SortStableFunc(rows, func(a, b keyed) int {
			return CompareOrderKeys(a.key, b.key, fields)
		})
		for _, r := range rows {
			if !yield(r.id) {
				return
			}
		}
	}
}

// CompareObjects orders resolved objects: literals before nodes, nodes by
// name, literals by CompareLiterals.
func CompareObjects(a, b graph.Object) int {
	switch {
	case a.IsValue && b.IsValue:
		return CompareLiterals(a.Value, b.Value)
	case a.IsValue:
		return -1
	case b.IsValue:
		return 1
	default:
		return strings.Compare(a.Node, b.Node)
	}
}

// CompareLiterals orders two literals by value when their datatypes are
// comparable, and by datatype then lexical form otherwise. Literals that do
// not parse under their datatype compare lexically.
func CompareLiterals(a, b graph.Literal) int {
	switch {
	case graph.IsIntegerType(a.Datatype) && graph.IsIntegerType(b.Datatype):
		x, okx := new(big.Int).SetString(strings.TrimPrefix(strings.TrimSpace(a.Lexical), "+"), 10)
		y, oky := new(big.Int).SetString(strings.TrimPrefix(strings.TrimSpace(b.Lexical), "+"), 10)
		if okx && oky {
			return x.Cmp(y)
		}
	case a.Datatype != b.Datatype:
		if c := strings.Compare(a.Datatype, b.Datatype); c != 0 {
			return c
		}
	case a.Datatype == graph.XSD+"decimal":
		x, _, errx := apd.NewFromString(strings.TrimSpace(a.Lexical))
		y, _, erry := apd.NewFromString(strings.TrimSpace(b.Lexical))
		if errx == nil && erry == nil {
			return x.Cmp(y)
		}
	case a.Datatype == graph.XSD+"float" || a.Datatype == graph.XSD+"double":
		x, errx := strconv.ParseFloat(strings.TrimSpace(a.Lexical), 64)
		y, erry := strconv.ParseFloat(strings.TrimSpace(b.Lexical), 64)
		if errx == nil && erry == nil {
			return cmp.Compare(x, y)
		}
	case a.Datatype == graph.XSD+"boolean":
		x, okx := parseBool(a.Lexical)
		y, oky := parseBool(b.Lexical)
		if okx && oky {
			return compareBool(x, y)
		}
	}
	return strings.Compare(a.Lexical, b.Lexical)
}
