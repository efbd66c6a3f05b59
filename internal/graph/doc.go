// Package graph defines the read-only triple layer that materialization and
// query evaluation run against.
//
// Nodes, literal values and predicates are identified by dense integer ids.
// Node ids and value ids share one object id space: nodes come first, so any
// id above the node count refers to a literal. Predicates have their own id
// space. Scans return slices into immutable indexes; callers must not modify
// them, and may iterate them any number of times.
package graph
