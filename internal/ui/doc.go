// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI mirrors three mutually exclusive views, tracked by a [Router]:
//  1. [HomeView] : Pick a tool
//  2. [UploadView] : Drop, paste, or browse for a spreadsheet and let the server process it
//  3. [ProjectView] : Submit a listing URL and download the generated archive
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// It never mutates workflow state directly: user actions are forwarded to the workflow controllers, and every state change
// comes back as a snapshot delivered through a subscription channel.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
