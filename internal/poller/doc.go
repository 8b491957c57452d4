// Package poller implements the Snapshot Poller component.
//
// The Snapshot Poller:
//   - Fetches the Everline train list once per interval (default: 1s)
//   - Keeps only the latest successful snapshot, swapped atomically
//   - Logs and absorbs failed fetches; the previous snapshot stays current
//   - Notifies handlers after every successful swap
package poller
