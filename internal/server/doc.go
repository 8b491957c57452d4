// Package server exposes the latest snapshot over HTTP.
//
// Routes:
//
//	GET /health                          liveness and snapshot freshness
//	GET /v1/stations                     station table in down order
//	GET /v1/stations/{code}              one station with trains at and approaching it
//	GET /v1/trains?direction=up|down     latest train records
//	GET /v1/interval?time=HHMM&weekend=  scheduled headway
//	GET /v1/ws                           live snapshot push (WebSocket)
//	GET /gtfs-rt/vehicle-positions.pb    GTFS-realtime vehicle positions
//	GET /metrics                         Prometheus metrics (when enabled)
//
// The server only reads snapshots. Hub implements poller.SnapshotHandler and
// must be registered with the poller to receive new snapshots.
package server
