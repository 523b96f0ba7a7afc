// Package logging provides structured logging for CrowdSense Core.
//
// Built on log/slog with:
//   - JSON output for production, text for development
//   - Level filtering (debug, info, warn, error)
//   - Default service and version fields on every record
//   - Component-scoped child loggers via With
package logging
