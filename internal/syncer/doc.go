// Package syncer pushes resolved library matches to the target catalog in
// batches with per-entry retry.
package syncer
