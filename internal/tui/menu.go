package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zpay/internal/signup"
)

type menuChoice int

const (
	menuSignup menuChoice = iota
	menuLogin
	menuQuit
)

var menuItems = []string{
	"Create account",
	"Sign in",
	"Quit",
}

var features = []string{
	"multi-currency support",
	"instant settlements",
	"lower fees than card processors",
}

// menuModel is the landing screen.
type menuModel struct {
	cursor       int
	version      string
	accountCount int
}

func newMenuModel(version string, accountCount int) menuModel {
	return menuModel{version: version, accountCount: accountCount}
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

func (m menuModel) Update(msg tea.Msg) (menuModel, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(kmsg, zstyle.KeyQuit):
		return m, tea.Quit

	case key.Matches(kmsg, zstyle.KeyUp):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(kmsg, zstyle.KeyDown):
		if m.cursor < len(menuItems)-1 {
			m.cursor++
		}

	case key.Matches(kmsg, zstyle.KeyEnter):
		return m, m.selectItem()

	case kmsg.String() == "s":
		return m, goTo(signup.RouteSignup)

	case kmsg.String() == "l":
		return m, goTo(signup.RouteLogin)
	}

	return m, nil
}

func (m menuModel) selectItem() tea.Cmd {
	switch menuChoice(m.cursor) {
	case menuSignup:
		return goTo(signup.RouteSignup)
	case menuLogin:
		return goTo(signup.RouteLogin)
	case menuQuit:
		return tea.Quit
	}
	return nil
}

func (m menuModel) View() string {
	s := fmt.Sprintf("\n  %s %s\n", zstyle.Title.Render("zpay"), zstyle.MutedText.Render(m.version))
	s += "  " + zstyle.MutedText.Render("send and accept crypto payments") + "\n\n"

	for _, f := range features {
		s += "  " + zstyle.StatusOK.Render("✓") + " " + f + "\n"
	}
	s += "\n"

	for i, item := range menuItems {
		if m.cursor == i {
			s += zstyle.Highlight.Render("  > "+item) + "\n"
		} else {
			s += "    " + item + "\n"
		}
	}

	if m.accountCount > 0 {
		s += "\n  " + zstyle.MutedText.Render(fmt.Sprintf("%d account(s) on this device", m.accountCount)) + "\n"
	}

	s += "\n  " + zstyle.MutedText.Render("j/k navigate  enter select  s sign up  l sign in  q quit") + "\n\n"
	return s
}

func goTo(route signup.Route) tea.Cmd {
	return func() tea.Msg { return navigateMsg{route: route} }
}
