package queryir

// FilterObject is a restriction gate plus ordered edge filters. A candidate
// passes when it passes the restriction and then every edge in order.
type FilterObject struct {
	// Restriction names an externally evaluated gate. Empty means none.
	Restriction string
	Edges       []Edge
}

// Edge pairs a property with the filter applied along it. Property is a
// fully qualified predicate IRI; combinator edges carry the input key
// ("_and", "_or", "_not") instead.
type Edge struct {
	Property string
	Value    FilterValue
}

// FilterValue is a sealed interface over edge filters.
type FilterValue interface {
	filterValue()
}

// Required tests the single object of a single-valued edge. A candidate
// without the edge fails.
type Required struct {
	Object ObjectFilter
}

// Collection quantifies over every object of a multi-valued edge.
type Collection struct {
	Op     CollectionOp
	Object ObjectFilter
}

// And threads candidates through each filter in turn.
type And struct {
	Filters []*FilterObject
}

// Or evaluates each filter against the same candidates and concatenates
// the results. Ids passing more than one branch appear more than once.
type Or struct {
	Filters []*FilterObject
}

// Not keeps the candidates that do not pass Filter.
type Not struct {
	Filter *FilterObject
}

func (*Required) filterValue()   {}
func (*Collection) filterValue() {}
func (*And) filterValue()        {}
func (*Or) filterValue()         {}
func (*Not) filterValue()        {}

// CollectionOp is the quantifier of a Collection edge.
type CollectionOp int

const (
	// SomeHave passes when at least one object passes.
	SomeHave CollectionOp = iota
	// AllHave passes when every object passes, including when there are none.
	AllHave
)

func (op CollectionOp) String() string {
	switch op {
	case SomeHave:
		return "someHave"
	case AllHave:
		return "allHave"
	default:
		return "unknown"
	}
}

// ParseCollectionOp maps an input key to its quantifier.
func ParseCollectionOp(s string) (CollectionOp, bool) {
	switch s {
	case "someHave":
		return SomeHave, true
	case "allHave":
		return AllHave, true
	default:
		return 0, false
	}
}

// ObjectFilter is a sealed interface over tests applied to an edge's object.
type ObjectFilter interface {
	objectFilter()
}

// NodeFilter recurses into the node at the end of an edge. Class is the
// edge's declared range.
type NodeFilter struct {
	Filter *FilterObject
	Class  string
}

// ValueFilter tests the literal at the end of an edge.
type ValueFilter struct {
	Type FilterType
}

func (*NodeFilter) objectFilter()  {}
func (*ValueFilter) objectFilter() {}
