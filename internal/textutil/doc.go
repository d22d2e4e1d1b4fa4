// Package textutil provides text processing utilities for title
// normalization, token fingerprinting, and string similarity.
//
// The primary use cases are:
//   - Canonicalizing free-text manga titles for comparison
//   - Creating token-based fingerprints from titles for overlap scoring
//   - Computing cosine and edit-distance similarity between titles
//
// Normalization is Unicode-aware: width and compatibility forms are folded
// before lowercasing so CJK and full-width text survives intact.
package textutil
