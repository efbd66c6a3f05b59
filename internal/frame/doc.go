// Package frame describes type frames: the class, field and enum
// definitions a database schema is made of, plus the prefix context used to
// expand and contract identifiers.
//
// Frames are read-only once built. The filter compiler resolves field kinds
// against them, the materializer derives its schema index from them and the
// query executor uses their subsumption closure to seed scans.
package frame
