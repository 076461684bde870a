package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/marquee/internal/controller"
	"github.com/desertthunder/marquee/internal/paging"
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
	MsgState MsgKind = iota
	MsgEffect
	MsgPageLoaded
	MsgSubscriptionClosed
)

type pageLoaded struct {
	stream *paging.Stream
	err    error
}

// stateMsg is the constructor for [MsgState]
func stateMsg(s controller.State) Msg {
	return Msg{kind: MsgState, data: s}
}

// effectMsg is the constructor for [MsgEffect]
func effectMsg(e controller.Effect) Msg {
	return Msg{kind: MsgEffect, data: e}
}

// pageLoadedMsg is the constructor for [MsgPageLoaded]
func pageLoadedMsg(stream *paging.Stream, err error) Msg {
	return Msg{kind: MsgPageLoaded, data: pageLoaded{stream: stream, err: err}}
}

// subscriptionClosedMsg is the constructor for [MsgSubscriptionClosed]
func subscriptionClosedMsg() Msg {
	return Msg{kind: MsgSubscriptionClosed}
}
