// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Poll attempts by result (ok, transport, status, parse)
//   - Fetch latency
//   - Trains in the latest snapshot and its fetch time
//   - HTTP API requests served
package metrics
