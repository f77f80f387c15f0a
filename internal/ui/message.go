package ui

import (
	tea "github.com/charmbracelet/bubbletea"
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
	MsgStateChanged MsgKind = iota
	MsgOpDone
)

// opResult is the payload of [MsgOpDone].
type opResult struct {
	label string
	err   error
}

// stateChangedMsg is the constructor for [MsgStateChanged]
func stateChangedMsg() Msg {
	return Msg{kind: MsgStateChanged}
}

// opDoneMsg is the constructor for [MsgOpDone]
func opDoneMsg(label string, err error) Msg {
	return Msg{kind: MsgOpDone, data: opResult{label: label, err: err}}
}
