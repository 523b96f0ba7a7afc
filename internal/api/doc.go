// Package api provides the HTTP REST API and WebSocket server for
// CrowdSense Core.
//
// It serves the live campus snapshot, per-zone detail and history,
// trend and forecast queries, alert history, event registrations, and
// account endpoints to the dashboard. A WebSocket hub pushes each
// tick's snapshot and every alert firing to connected clients.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use.
package api
