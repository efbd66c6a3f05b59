// Package document turns graph regions into nested JSON-like documents.
//
// A Materializer walks a root entity with an explicit stack instead of
// recursion, so graph depth never turns into Go stack depth. Three kinds of
// entries live on the stack:
//
//   - documentEntry: an object being filled from its outgoing triples
//   - listEntry: an rdf:first/rdf:rest chain being collected in order
//   - arrayEntry: index-tagged sys:Array cells, folded by CollectArray
//
// An entry is popped only when its cursor is exhausted, and popping
// integrates its value into the entry below it.
//
// Referenced entities whose type is a document type render as contracted id
// strings unless the type is unfoldable. The root of a call always unfolds.
//
// StreamAll and StreamAllParallel enumerate every document of the schema's
// types and emit them in the same order.
package document
