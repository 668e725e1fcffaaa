// Package diagnostic provides structured warnings, errors and informational
// notes collected by batch operations (template application, mapping loads,
// record transformation) that must not abort on a single bad entry.
//
// Key capabilities:
//   - Skipped template entries and malformed mappings
//   - Unmapped record fields with "did you mean" suggestions
//   - Per-resource validation failures
//   - Summary counts for the end of a run
package diagnostic
