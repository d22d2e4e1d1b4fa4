// Package library models the exported source library: one SourceEntry per
// tracked manga with the user's reading status, progress, and score. The
// import format here is a JSON export produced by an external parsing stage.
package library
