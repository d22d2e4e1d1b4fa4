// Package stats persists cumulative synchronization counters across runs.
package stats
