package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/zpay/internal/signup"
)

// navigateMsg tells the root model to switch screens.
type navigateMsg struct {
	route signup.Route
}

// notifyMsg shows a toast.
type notifyMsg struct {
	kind signup.Kind
	text string
}

// outbox implements the wizard's navigator and notifier by queueing
// messages, which the owning model flushes as a command after each update.
type outbox struct {
	cmds []tea.Cmd
}

func (o *outbox) GoTo(route signup.Route) {
	o.cmds = append(o.cmds, func() tea.Msg { return navigateMsg{route: route} })
}

func (o *outbox) Notify(kind signup.Kind, text string) {
	o.cmds = append(o.cmds, func() tea.Msg { return notifyMsg{kind: kind, text: text} })
}

func (o *outbox) flush() tea.Cmd {
	cmds := o.cmds
	o.cmds = nil
	return tea.Batch(cmds...)
}
