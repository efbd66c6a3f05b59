// Package ir defines the document tree value model shared by the
// materializer, the filter compiler and the CLI.
//
// ir imports nothing internal. Every other package that produces or consumes
// JSON-like values goes through it.
//
// Key design constraints:
//   - IRValue is sealed; type switches over it are exhaustive
//   - IRObject keeps insertion order (documents list fields in first-seen
//     predicate order)
//   - MarshalCanonical ignores insertion order and is the only form used
//     for digests and golden files
package ir
