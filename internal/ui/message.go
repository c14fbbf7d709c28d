package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/propdesk/internal/workflow"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgUploadChanged MsgKind = iota
	MsgProjectChanged
	MsgActionDone
)

// uploadChangedMsg is the constructor for [MsgUploadChanged]
func uploadChangedMsg(snap workflow.UploadSnapshot) Msg {
	return Msg{kind: MsgUploadChanged, data: snap}
}

// projectChangedMsg is the constructor for [MsgProjectChanged]
func projectChangedMsg(snap workflow.ProjectSnapshot) Msg {
	return Msg{kind: MsgProjectChanged, data: snap}
}

// actionDoneMsg is the constructor for [MsgActionDone]
func actionDoneMsg(view ViewState, err error) Msg {
	return Msg{
		kind: MsgActionDone,
		data: struct {
			view ViewState
			err  error
		}{view, err},
	}
}
