// Package session persists match runs in SQLite so review, manual overrides,
// and synchronization can happen across separate CLI invocations.
package session
