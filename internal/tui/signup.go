package tui

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zcrypto"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zpay/internal/signup"
)

// text inputs owned by the signup form
const (
	inFirstName = iota
	inLastName
	inEmail
	inPassword
	inConfirm
	inCount
)

// step 3 controls
const (
	ctlAccountType = iota
	ctlTerms
)

const (
	progressWidth     = 30
	suggestedPWLength = 20
)

var inputFields = [inCount]signup.Field{
	signup.FieldFirstName,
	signup.FieldLastName,
	signup.FieldEmail,
	signup.FieldPassword,
	signup.FieldConfirmPassword,
}

var inputPlaceholders = [inCount]string{
	"John",
	"Doe",
	"john@example.com",
	"at least 8 characters",
	"repeat your password",
}

var accountTypeBlurbs = map[signup.AccountType]string{
	signup.Personal: "send and receive payments, scan QR codes, manage your wallet",
	signup.Merchant: "accept payments, create invoices, analytics and settlement options",
}

// signupResultMsg carries the account-creation outcome back to the loop.
type signupResultMsg struct {
	ref signup.AccountRef
	err error
}

// signupModel renders the registration wizard and feeds it key events.
type signupModel struct {
	wizard  *signup.Wizard
	out     *outbox
	inputs  [inCount]textinput.Model
	focus   int
	reveal  bool
	spinner spinner.Model
}

func newSignupModel(accounts signup.AccountCreator) signupModel {
	out := &outbox{}

	var inputs [inCount]textinput.Model
	for i := range inCount {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 128
		ti.Width = 40
		ti.Placeholder = inputPlaceholders[i]
		inputs[i] = ti
	}
	inputs[inPassword].EchoMode = textinput.EchoPassword
	inputs[inPassword].EchoCharacter = '*'
	inputs[inConfirm].EchoMode = textinput.EchoPassword
	inputs[inConfirm].EchoCharacter = '*'

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := signupModel{
		wizard:  signup.New(accounts, out, out),
		out:     out,
		inputs:  inputs,
		spinner: sp,
	}
	m.focusControl(0)
	return m
}

func (m signupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m signupModel) Update(msg tea.Msg) (signupModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case signupResultMsg:
		// Settle only fails without a matching Begin; the error is already
		// reported through the outbox otherwise.
		_ = m.wizard.Settle(msg.ref, msg.err)
		return m, m.out.flush()

	case spinner.TickMsg:
		if !m.wizard.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateInput(msg)
}

func (m signupModel) handleKey(msg tea.KeyMsg) (signupModel, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	// the form is frozen while the account is being created
	if m.wizard.Busy() {
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyBack) || msg.Type == tea.KeyCtrlB {
		if m.wizard.Back() {
			m.focusControl(0)
			return m, textinput.Blink
		}
		return m, goTo(signup.RouteLanding)
	}

	switch msg.String() {
	case "tab", "down":
		m.focusControl((m.focus + 1) % m.controlCount())
		return m, textinput.Blink

	case "shift+tab", "up":
		n := m.controlCount()
		m.focusControl((m.focus - 1 + n) % n)
		return m, textinput.Blink

	case "ctrl+n":
		return m.advance()

	case "ctrl+r":
		return m.toggleReveal(), nil

	case "ctrl+g":
		if m.wizard.State() == signup.StepCredentials {
			return m.suggestPassword(), nil
		}
		return m, nil

	case "ctrl+y":
		pw := m.inputs[inPassword].Value()
		if m.wizard.State() == signup.StepCredentials && pw != "" {
			return m, copyCmd(pw, "password")
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyEnter) {
		if m.wizard.State() == signup.StepAccountType {
			return m.submit()
		}
		if m.focus < m.controlCount()-1 {
			m.focusControl(m.focus + 1)
			return m, textinput.Blink
		}
		return m.advance()
	}

	if m.wizard.State() == signup.StepAccountType {
		return m.handleChoiceKey(msg), nil
	}

	return m.updateInput(msg)
}

// handleChoiceKey drives the non-text controls on the last step.
func (m signupModel) handleChoiceKey(msg tea.KeyMsg) signupModel {
	s := msg.String()
	switch m.focus {
	case ctlAccountType:
		if s == " " || s == "left" || s == "right" || s == "h" || s == "l" {
			m.wizard.Edit(func(in *signup.Input) {
				in.AccountType = nextAccountType(in.AccountType)
			})
		}
	case ctlTerms:
		if s == " " || s == "x" {
			m.wizard.Edit(func(in *signup.Input) { in.AgreeToTerms = !in.AgreeToTerms })
		}
	}
	return m
}

func nextAccountType(t signup.AccountType) signup.AccountType {
	for i, at := range signup.AccountTypes {
		if at == t {
			return signup.AccountTypes[(i+1)%len(signup.AccountTypes)]
		}
	}
	return signup.AccountTypes[0]
}

func (m signupModel) updateInput(msg tea.Msg) (signupModel, tea.Cmd) {
	idx, ok := m.focusedInput()
	if !ok {
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[idx], cmd = m.inputs[idx].Update(msg)
	m.sync()
	return m, cmd
}

// sync copies the text inputs into the wizard's record.
func (m signupModel) sync() {
	m.wizard.Edit(func(in *signup.Input) {
		in.FirstName = m.inputs[inFirstName].Value()
		in.LastName = m.inputs[inLastName].Value()
		in.Email = m.inputs[inEmail].Value()
		in.Password = m.inputs[inPassword].Value()
		in.ConfirmPassword = m.inputs[inConfirm].Value()
	})
}

func (m signupModel) advance() (signupModel, tea.Cmd) {
	m.sync()
	if m.wizard.State() == signup.StepAccountType {
		return m.submit()
	}

	before := m.wizard.State()
	v := m.wizard.Next()
	if m.wizard.State() != before {
		m.focusControl(0)
		return m, textinput.Blink
	}

	m.focusFirstError(v.Errors)
	return m, textinput.Blink
}

func (m signupModel) submit() (signupModel, tea.Cmd) {
	m.sync()
	in, err := m.wizard.Begin()
	if err != nil {
		// field errors are read back from the wizard by View
		return m, nil
	}

	w := m.wizard
	create := func() tea.Msg {
		ref, err := w.CreateAccount(context.Background(), in)
		return signupResultMsg{ref: ref, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, create)
}

func (m signupModel) toggleReveal() signupModel {
	m.reveal = !m.reveal
	mode := textinput.EchoPassword
	if m.reveal {
		mode = textinput.EchoNormal
	}
	m.inputs[inPassword].EchoMode = mode
	m.inputs[inConfirm].EchoMode = mode
	return m
}

func (m signupModel) suggestPassword() signupModel {
	pw := zcrypto.GeneratePassword(suggestedPWLength)
	m.inputs[inPassword].SetValue(pw)
	m.inputs[inConfirm].SetValue(pw)
	m.sync()
	if !m.reveal {
		m = m.toggleReveal()
	}
	return m
}

// stepInputs returns the text inputs shown on the current step.
func (m signupModel) stepInputs() []int {
	switch m.wizard.State() {
	case signup.StepIdentity:
		return []int{inFirstName, inLastName, inEmail}
	case signup.StepCredentials:
		return []int{inPassword, inConfirm}
	}
	return nil
}

func (m signupModel) controlCount() int {
	if n := len(m.stepInputs()); n > 0 {
		return n
	}
	return 2
}

func (m signupModel) focusedInput() (int, bool) {
	ids := m.stepInputs()
	if m.focus < 0 || m.focus >= len(ids) {
		return 0, false
	}
	return ids[m.focus], true
}

// focusControl moves focus within the current step. It mutates the input
// array in place, so callers hold the model by value.
func (m *signupModel) focusControl(i int) {
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	m.focus = i
	if idx, ok := m.focusedInput(); ok {
		m.inputs[idx].Focus()
	}
}

func (m *signupModel) focusFirstError(errs signup.FieldErrors) {
	for i, idx := range m.stepInputs() {
		if errs[inputFields[idx]] != "" {
			m.focusControl(i)
			return
		}
	}
}

func stepHeading(s signup.State) (string, string) {
	switch s {
	case signup.StepIdentity:
		return "create your account", "let's start with your basic information"
	case signup.StepCredentials:
		return "secure your account", "set up a secure password for your account"
	}
	return "choose account type", "select the account type that best fits your needs"
}

func progressBar(p float64) string {
	filled := int(math.Round(p * progressWidth))
	bar := lipgloss.NewStyle().Foreground(accent).Render(strings.Repeat("█", filled))
	return bar + zstyle.MutedText.Render(strings.Repeat("░", progressWidth-filled))
}

func (m signupModel) View() string {
	state := m.wizard.State()
	errs := m.wizard.Errors()
	in := m.wizard.Input()

	pct := int(math.Round(m.wizard.Progress() * 100))
	s := fmt.Sprintf("\n  step %d of %d  %s\n", state.Step(), signup.TotalSteps, zstyle.MutedText.Render(fmt.Sprintf("%d%%", pct)))
	s += "  " + progressBar(m.wizard.Progress()) + "\n\n"

	title, desc := stepHeading(state)
	s += "  " + zstyle.Title.Render(title) + "\n"
	s += "  " + zstyle.MutedText.Render(desc) + "\n\n"

	if ids := m.stepInputs(); len(ids) > 0 {
		for i, idx := range ids {
			f := inputFields[idx]
			label := zstyle.MutedText.Render(fmt.Sprintf("%-18s", f.Label()))
			s += fmt.Sprintf("  %s %s %s\n", fieldCursor(i == m.focus), label, m.inputs[idx].View())
			s += errLine(errs[f])
		}
	} else {
		s += m.choicesView(in, errs)
	}

	s += "\n"
	if m.wizard.Busy() {
		s += "  " + m.spinner.View() + " creating account...\n"
	} else {
		s += "\n"
	}
	return s
}

func (m signupModel) choicesView(in signup.Input, errs signup.FieldErrors) string {
	s := fmt.Sprintf("  %s %s\n", fieldCursor(m.focus == ctlAccountType), zstyle.MutedText.Render(signup.FieldAccountType.Label()))
	for _, at := range signup.AccountTypes {
		radio := "( )"
		if in.AccountType == at {
			radio = "(•)"
		}
		line := fmt.Sprintf("%s %s account", radio, at.Title())
		if in.AccountType == at {
			line = zstyle.Highlight.Render(line)
		}
		s += "      " + line + "\n"
		s += "          " + zstyle.MutedText.Render(accountTypeBlurbs[at]) + "\n"
	}
	s += errLine(errs[signup.FieldAccountType])

	box := "[ ]"
	if in.AgreeToTerms {
		box = "[x]"
	}
	s += fmt.Sprintf("\n  %s %s I agree to the terms of service and privacy policy\n", fieldCursor(m.focus == ctlTerms), box)
	s += errLine(errs[signup.FieldAgreeToTerms])
	return s
}

func errLine(msg string) string {
	if msg == "" {
		return ""
	}
	return "      " + zstyle.StatusErr.Render(msg) + "\n"
}
