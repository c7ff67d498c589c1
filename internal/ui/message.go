package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/hlsx/internal/models"
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
	MsgHistoryLoaded MsgKind = iota
)

type historyLoaded struct {
	runs []*models.CheckRun
	err  error
}

// historyLoadedMsg is the constructor for [MsgHistoryLoaded]
func historyLoadedMsg(runs []*models.CheckRun, err error) Msg {
	return Msg{kind: MsgHistoryLoaded, data: historyLoaded{runs, err}}
}
