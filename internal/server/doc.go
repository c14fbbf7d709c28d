// Package server implements a local stand-in for the processing backend.
//
// It speaks the same wire protocol as the real service so both workflows can be exercised end to end without it:
//
//   - GET / reports health
//   - POST {upload_path} accepts a multipart spreadsheet in the "file" field and echoes it back as
//     processed_<name> through Content-Disposition
//   - POST {project_path} accepts {"url": "..."}, waits for the configured delay, and returns a zip archive
//
// Error bodies use the JSON shapes the client understands: {"error": "..."} for rejected URLs and
// {"detail": "..."} for everything else.
//
// The router is [echo.Echo] with panic recovery and request logging through [log.Logger].
package server
