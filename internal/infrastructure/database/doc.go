// Package database provides SQLite access for CrowdSense Core.
//
// This package manages:
//   - Connection lifecycle (open, ping, close)
//   - WAL mode and busy-timeout pragmas
//   - Embedded SQL migrations applied at startup
//   - Health checks for the API health endpoint
//
// SQLite is run with a single-connection pool because it supports one
// writer at a time; WAL mode allows reads to proceed during writes.
package database
