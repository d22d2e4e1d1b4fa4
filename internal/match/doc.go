// Package match implements the matching and confidence scoring engine: it
// fetches catalog candidates per source entry, scores each pair on weighted
// signals (title similarity dominant, format agreement, progress
// plausibility, metadata corroboration), and resolves a ranked result with a
// matched/ambiguous/unmatched classification.
//
// Scoring is deterministic: the same entry, candidate, and weights always
// produce the same MatchScore, and a serialized Fixture replays to the
// identical value. Filters are pure, order-preserving views over resolved
// results; user overrides are explicit state transitions that keep the
// one-selected-candidate invariant.
package match
