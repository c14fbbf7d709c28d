// Package workflow implements the two file-producing state machines behind propdesk.
//
// [UploadController] sends a spreadsheet to the processing endpoint and saves the result.
// [ProjectController] asks the archival endpoint for a project archive while animating a synthetic [Estimate].
//
// Both controllers move through the same lifecycle:
//
//	Idle → Busy → Succeeded | Failed → (reset or new attempt)
//
// Each controller owns its state behind a mutex and exposes it as an immutable snapshot.
// Renderers call Subscribe and redraw from the snapshots they receive; nothing outside a controller mutates its state.
// A second action while Busy is ignored and reported as [shared.ErrBusy].
package workflow
