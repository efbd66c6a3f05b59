// Package queryexec evaluates filters against a graph layer.
//
// A query is a pipeline of lazy iter.Seq[graph.ID] stages. The initial
// stage is every instance of the class and its subclasses, or a seed built
// from id, ids and a path expression. Each filter edge narrows the stream in
// order. Nothing is read past what the caller consumes unless an ordering is
// requested: then every candidate is collected, deduplicated and sorted
// before offset and limit apply.
//
// Combinator semantics:
//   - _and threads the stream through each operand in turn
//   - _or collects the stream once and concatenates each operand's result
//     over that snapshot, so an id passing two branches appears twice
//   - _not removes the ids that pass its operand
package queryexec
