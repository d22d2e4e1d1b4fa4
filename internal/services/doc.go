// Package services provides the cross-cutting error taxonomy, retry
// classification, and context annotations shared by the catalog client, the
// match engine, and the synchronization engine.
//
// Errors produced by remote operations are tagged with one of the exported
// sentinel markers so callers can classify failures without string matching:
// lookup failures degrade to empty candidate sets, transient sync failures
// are retried with backoff, and permanent failures are recorded once.
package services
