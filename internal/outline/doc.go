// Package outline implements structural compression of accessibility-tree
// snapshots. It parses an indented outline (one element per line, each line
// carrying a stable [ref=...] token), fingerprints sibling subtrees with a
// 32-bit simhash, detects runs of structurally similar siblings, and folds
// each run into a single representative line plus an aggregate reference
// list, subject to a total line budget.
//
// The engine is synchronous and allocation-scoped: every call to
// Generator.Generate builds a fresh PageStructure and discards it when the
// compressed text has been produced. Fingerprint memoization lives in an
// explicit Fingerprinter instance, never in package-level state.
package outline
