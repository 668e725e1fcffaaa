// Package match provides identifier normalization and name similarity helpers
// used by the schema graph and the mapping registry.
//
// Key functions:
//   - StripPrefix: removes a namespace prefix ("bts:Sample" -> "Sample")
//   - NormalizeFieldName: whitespace/case-insensitive lookup key for field names
//   - Levenshtein: computes edit distance between strings
//   - RankNames: ranks known names by similarity to an unknown one
package match
