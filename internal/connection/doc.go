// Package connection implements the live snapshot subscriber.
//
// A Client holds one WebSocket connection to the tracker's /v1/ws endpoint
// and decodes each pushed frame into a model.Snapshot. A Watcher keeps a
// Client connected, reconnecting with exponential backoff when the
// connection drops.
package connection
