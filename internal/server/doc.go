// Package server provides the live event feed server.
//
// When a monitor session runs with --serve, this server exposes the session
// to the network:
//
//   - GET /ws          WebSocket feed of session events (stops, hits,
//     rounds, counters, verdict) as JSON
//   - GET /api/status  current session status snapshot
//   - GET /api/report  most recent trace decode report
//   - GET /healthz     liveness probe
//
// Events are fanned out to every connected WebSocket client. A slow client
// is dropped rather than allowed to stall the session: the hub never blocks
// on a send.
package server
