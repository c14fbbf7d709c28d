// Package services implements the HTTP side of both workflows.
//
// [APIService] is a thin client that always reads the full body into an [APIResponse], leaving status interpretation to callers.
// [Backend] binds it to the two configured endpoints:
//   - [Backend.ProcessSheet] : multipart POST of a spreadsheet, body is the processed file
//   - [Backend.ArchiveProject] : JSON POST of {"url": ...}, body is a zip archive
//
// # Response Metadata
//
// [APIResponse.Filename] reads the Content-Disposition suggestion and [APIResponse.ErrorMessage] the
// structured error of a failed request. Both return "" when the server did not supply them so callers can fall back.
package services
