// Package api provides the client for the Everline realtime train endpoint.
//
// Endpoint:
//   - https://everlinecu.com/api/api009.json
//
// One unauthenticated GET returns every train on the line:
//
//	{"data": [{"TrainNo": "...", "updownCode": "1", "StCode": "Y114", "StatusCode": "2", "time": "35", ...}]}
package api
