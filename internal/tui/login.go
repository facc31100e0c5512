package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zpay/internal/signin"
	"github.com/zarlcorp/zpay/internal/signup"
)

const (
	loginEmail = iota
	loginPassword
	loginCount
)

// loginResultMsg carries the authentication outcome back to the loop.
type loginResultMsg struct {
	ref signup.AccountRef
	err error
}

// loginModel is the sign-in form.
type loginModel struct {
	auth    signin.Authenticator
	out     *outbox
	inputs  [loginCount]textinput.Model
	focus   int
	errs    signup.FieldErrors
	busy    bool
	spinner spinner.Model
}

func newLoginModel(auth signin.Authenticator, email string) loginModel {
	var inputs [loginCount]textinput.Model
	for i := range loginCount {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 128
		ti.Width = 40
		inputs[i] = ti
	}
	inputs[loginEmail].Placeholder = "you@example.com"
	inputs[loginEmail].SetValue(email)
	inputs[loginPassword].EchoMode = textinput.EchoPassword
	inputs[loginPassword].EchoCharacter = '*'

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := loginModel{
		auth:    auth,
		out:     &outbox{},
		inputs:  inputs,
		spinner: sp,
	}

	// skip straight to the password when the email is remembered
	if email != "" {
		m.focus = loginPassword
	}
	m.inputs[m.focus].Focus()
	return m
}

func (m loginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case loginResultMsg:
		m.busy = false
		signin.Settle(msg.err, m.out, m.out)
		if msg.err != nil {
			m.inputs[loginPassword].SetValue("")
			m.setFocus(loginPassword)
		}
		return m, m.out.flush()

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m loginModel) handleKey(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.busy {
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, goTo(signup.RouteLanding)
	}

	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.setFocus((m.focus + 1) % loginCount)
		return m, textinput.Blink

	case "ctrl+r":
		if m.inputs[loginPassword].EchoMode == textinput.EchoPassword {
			m.inputs[loginPassword].EchoMode = textinput.EchoNormal
		} else {
			m.inputs[loginPassword].EchoMode = textinput.EchoPassword
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyEnter) {
		if m.focus == loginEmail {
			m.setFocus(loginPassword)
			return m, textinput.Blink
		}
		return m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *loginModel) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	in := signin.Input{
		Email:    m.inputs[loginEmail].Value(),
		Password: m.inputs[loginPassword].Value(),
	}

	v := signin.Validate(in)
	m.errs = v.Errors
	if !v.Valid {
		if m.errs[signup.FieldEmail] != "" {
			m.setFocus(loginEmail)
		}
		return m, nil
	}

	m.busy = true
	auth := m.auth
	check := func() tea.Msg {
		ref, err := auth.Authenticate(context.Background(), in.Email, in.Password)
		return loginResultMsg{ref: ref, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, check)
}

func (m loginModel) View() string {
	s := "\n  " + zstyle.Title.Render("welcome back") + "\n"
	s += "  " + zstyle.MutedText.Render("sign in to your zpay account") + "\n\n"

	labels := [loginCount]signup.Field{signup.FieldEmail, signup.FieldPassword}
	for i := range loginCount {
		label := zstyle.MutedText.Render(fmt.Sprintf("%-10s", labels[i].Label()))
		s += fmt.Sprintf("  %s %s %s\n", fieldCursor(i == m.focus), label, m.inputs[i].View())
		s += errLine(m.errs[labels[i]])
	}

	s += "\n"
	if m.busy {
		s += "  " + m.spinner.View() + " signing in...\n"
	} else {
		s += "\n"
	}
	return s
}
