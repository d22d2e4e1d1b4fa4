// Package catalog models target-catalog items and provides the HTTP client
// for the two remote capabilities the core needs: title search and library
// entry updates. Search errors are tagged as lookup failures so a bad entry
// never aborts a matching run; update errors carry retryability markers for
// the synchronization engine.
package catalog
