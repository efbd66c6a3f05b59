// Package queryir defines the FilterObject AST that filter compilation
// produces and the query executor consumes.
//
// A FilterObject is an optional restriction gate followed by ordered edges.
// Each edge pairs a fully qualified property with a FilterValue:
//
//	Required    single-valued edge, tested with an ObjectFilter
//	Collection  multi-valued edge, quantified with SomeHave or AllHave
//	And/Or/Not  combinators over sibling FilterObjects
//
// An ObjectFilter either recurses into the node at the end of the edge
// (NodeFilter) or tests the literal there (ValueFilter with a FilterType).
//
// SEALED INTERFACES:
//
// FilterValue, ObjectFilter and FilterType use the marker method pattern, so
// the executor can switch over them exhaustively:
//
//	switch v := edge.Value.(type) {
//	case *Required:
//	case *Collection:
//	case *And:
//	case *Or:
//	case *Not:
//	}
//
// The AST is immutable once compiled. Or and Not branches share
// sub-filters by pointer and replay them against different candidate sets.
package queryir
