// Package query answers rider-facing questions from the station table and a
// train snapshot. Every function is pure; snapshots are never modified.
package query
