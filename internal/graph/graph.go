package graph

import "fmt"

// ID is a dense integer handle for a node, a literal value or a predicate.
// Zero is never assigned.
type ID uint64

// Triple is an id triple. Object is either a node id or a value id.
type Triple struct {
	Subject   ID
	Predicate ID
	Object    ID
}

// Literal is a typed literal. Datatype is a full IRI, usually in the XSD
// namespace.
type Literal struct {
	Datatype string
	Lexical  string
}

func (l Literal) String() string {
	return fmt.Sprintf("%q^^<%s>", l.Lexical, l.Datatype)
}

// Object is the resolved form of an object id: a node name or a literal.
type Object struct {
	Node    string
	Value   Literal
	IsValue bool
}

// NodeObject wraps a node name.
func NodeObject(name string) Object {
	return Object{Node: name}
}

// ValueObject wraps a literal.
func ValueObject(l Literal) Object {
	return Object{Value: l, IsValue: true}
}

// Layer is an immutable triple layer. Implementations must be safe for
// concurrent readers.
type Layer interface {
	SubjectID(name string) (ID, bool)
	PredicateID(name string) (ID, bool)
	ObjectNodeID(name string) (ID, bool)
	ObjectValueID(v Literal) (ID, bool)

	IDSubject(id ID) (string, bool)
	IDPredicate(id ID) (string, bool)
	IDObject(id ID) (Object, bool)

	// TriplesS returns the triples of subject s ordered by predicate, then object.
	TriplesS(s ID) []Triple
	// TriplesSP returns the triples of s with predicate p ordered by object.
	TriplesSP(s, p ID) []Triple
	// TriplesO returns the triples pointing at o ordered by predicate, then subject.
	TriplesO(o ID) []Triple
	SingleTripleSP(s, p ID) (Triple, bool)
	TripleExists(s, p, o ID) bool
}

// XSDType returns the full IRI of an XSD datatype given its local name.
func XSDType(local string) string {
	return XSD + local
}

// StringLiteral returns an xsd:string literal.
func StringLiteral(s string) Literal {
	return Literal{Datatype: XSD + "string", Lexical: s}
}

// IntegerLiteral returns an xsd:integer literal.
func IntegerLiteral(n int64) Literal {
	return Literal{Datatype: XSD + "integer", Lexical: fmt.Sprintf("%d", n)}
}

// BoolLiteral returns an xsd:boolean literal.
func BoolLiteral(b bool) Literal {
	return Literal{Datatype: XSD + "boolean", Lexical: fmt.Sprintf("%t", b)}
}

// TypedLiteral returns a literal of the XSD datatype named by local.
func TypedLiteral(local, lexical string) Literal {
	return Literal{Datatype: XSD + local, Lexical: lexical}
}
