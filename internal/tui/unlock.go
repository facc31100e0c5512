package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
)

const (
	unlockFieldPassword = iota
	unlockFieldConfirm
)

// unlockModel asks for the master password that encrypts the account store.
// On first run it also asks for confirmation.
type unlockModel struct {
	password textinput.Model
	confirm  textinput.Model
	focused  int
	firstRun bool
	errMsg   string
}

// unlockSubmitMsg carries the master password to the root model.
type unlockSubmitMsg struct {
	password string
}

// unlockErrMsg reports a failure to open the store.
type unlockErrMsg struct {
	err error
}

func newSecretInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '*'
	ti.CharLimit = 128
	ti.Width = 40
	return ti
}

func newUnlockModel(firstRun bool) unlockModel {
	m := unlockModel{
		password: newSecretInput(),
		confirm:  newSecretInput(),
		firstRun: firstRun,
	}
	m.password.Focus()
	return m
}

func (m unlockModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m unlockModel) Update(msg tea.Msg) (unlockModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		if m.firstRun && msg.Type == tea.KeyTab {
			return m.toggleFocus(), textinput.Blink
		}

		if key.Matches(msg, zstyle.KeyEnter) {
			return m.handleEnter()
		}

		m.errMsg = ""

	case unlockErrMsg:
		m.errMsg = msg.err.Error()
		m.password.SetValue("")
		m.confirm.SetValue("")
		m.focused = unlockFieldPassword
		m.confirm.Blur()
		m.password.Focus()
		return m, nil
	}

	var cmd tea.Cmd
	if m.focused == unlockFieldConfirm {
		m.confirm, cmd = m.confirm.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m unlockModel) toggleFocus() unlockModel {
	if m.focused == unlockFieldPassword {
		m.focused = unlockFieldConfirm
		m.password.Blur()
		m.confirm.Focus()
		return m
	}
	m.focused = unlockFieldPassword
	m.confirm.Blur()
	m.password.Focus()
	return m
}

func (m unlockModel) handleEnter() (unlockModel, tea.Cmd) {
	pass := m.password.Value()
	if pass == "" {
		m.errMsg = "password cannot be empty"
		return m, nil
	}

	if m.firstRun {
		if m.focused == unlockFieldPassword {
			return m.toggleFocus(), textinput.Blink
		}
		if m.confirm.Value() != pass {
			m.errMsg = "passwords do not match"
			m.confirm.SetValue("")
			return m, nil
		}
	}

	m.errMsg = ""
	return m, func() tea.Msg { return unlockSubmitMsg{password: pass} }
}

func (m unlockModel) View() string {
	title := "unlock store"
	desc := "enter your master password"
	if m.firstRun {
		title = "create new store"
		desc = "choose a master password to encrypt your accounts"
	}

	s := fmt.Sprintf("\n  %s %s\n\n", zstyle.Title.Render("zpay"), zstyle.Subtitle.Render(title))
	s += "  " + zstyle.MutedText.Render(desc) + "\n\n"

	s += fmt.Sprintf("  %s %s\n", fieldCursor(m.focused == unlockFieldPassword), zstyle.MutedText.Render(fmt.Sprintf("%-10s", "password")))
	s += "    " + m.password.View() + "\n"

	if m.firstRun {
		s += fmt.Sprintf("  %s %s\n", fieldCursor(m.focused == unlockFieldConfirm), zstyle.MutedText.Render(fmt.Sprintf("%-10s", "confirm")))
		s += "    " + m.confirm.View() + "\n"
	}

	s += "\n"
	if m.errMsg != "" {
		s += "  " + zstyle.StatusErr.Render(m.errMsg) + "\n"
	} else {
		s += "\n"
	}
	return s
}

func fieldCursor(active bool) string {
	if active {
		return ">"
	}
	return " "
}
