package ui

import (
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"LocalBoard/internal/board"
	"LocalBoard/internal/net"
	"LocalBoard/internal/state"
)

// sidePanel lists who is connected and carries the chat.
type sidePanel struct {
	win   fyne.Window
	board *board.Board

	users []state.User
	lines []board.ChatLine

	userList *widget.List
	chatList *widget.List
	entry    *widget.Entry
}

func newSidePanel(win fyne.Window, b *board.Board) *sidePanel {
	p := &sidePanel{win: win, board: b}
	p.userList = widget.NewList(
		func() int { return len(p.users) + 1 },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			label := o.(*widget.Label)
			if id == 0 {
				label.SetText(p.board.Self().UserName + " (you)")
				return
			}
			label.SetText(p.users[id-1].UserName)
		},
	)
	p.chatList = widget.NewList(
		func() int { return len(p.lines) },
		func() fyne.CanvasObject {
			l := widget.NewLabel("")
			l.Wrapping = fyne.TextWrapWord
			return l
		},
		func(id widget.ListItemID, o fyne.CanvasObject) {
			line := p.lines[id]
			o.(*widget.Label).SetText(fmt.Sprintf("%s %s: %s", line.At.Format("15:04"), line.From.UserName, line.Text))
		},
	)
	p.entry = widget.NewEntry()
	p.entry.SetPlaceHolder("Message")
	p.entry.OnSubmitted = func(string) { p.send() }
	return p
}

func (p *sidePanel) send() {
	text := p.entry.Text
	p.entry.SetText("")
	err := p.board.SendChat(text)
	if errors.Is(err, net.ErrNotConnected) {
		dialog.ShowInformation("Offline", "Not connected to a board; the message stays local.", p.win)
	} else if err != nil {
		dialog.ShowError(err, p.win)
	}
}

func (p *sidePanel) sync() {
	p.users = p.board.Users()
	lines := p.board.Chat()
	grew := len(lines) != len(p.lines)
	p.lines = lines
	p.userList.Refresh()
	p.chatList.Refresh()
	if grew && len(lines) > 0 {
		p.chatList.ScrollToBottom()
	}
}

func (p *sidePanel) Object() fyne.CanvasObject {
	send := widget.NewButton("Send", p.send)
	chat := container.NewBorder(widget.NewLabel("Chat"), container.NewBorder(nil, nil, nil, send, p.entry), nil, nil, p.chatList)
	users := container.NewBorder(widget.NewLabel("Users"), nil, nil, nil, p.userList)
	split := container.NewVSplit(users, chat)
	split.Offset = 0.3
	return split
}
