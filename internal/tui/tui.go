// Package tui implements the root Bubble Tea model for zpay.
package tui

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstore"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zpay/internal/account"
	"github.com/zarlcorp/zpay/internal/signup"
)

// accent is the brand colour shared with the other zarlcorp tools.
var accent = zstyle.ZburnAccent

const toastDuration = 3 * time.Second

type viewID int

const (
	viewUnlock viewID = iota
	viewMenu
	viewSignup
	viewLogin
	viewDashboard
)

// toastClearMsg clears the toast if it is still the one with seq.
type toastClearMsg struct {
	seq int
}

type toast struct {
	kind signup.Kind
	text string
	seq  int
}

// Model is the root TUI model.
type Model struct {
	version  string
	dataDir  string
	firstRun bool

	store    *zstore.Store
	accounts *account.Store
	configs  *zstore.Collection[configEnvelope]
	prefs    Preferences
	session  *account.Account

	active    viewID
	unlock    unlockModel
	menu      menuModel
	signup    signupModel
	login     loginModel
	dashboard dashboardModel

	toast toast

	// terminal dimensions
	width  int
	height int
}

// New creates the root TUI model.
func New(version, dataDir string, firstRun bool) Model {
	return Model{
		version:  version,
		dataDir:  dataDir,
		firstRun: firstRun,
		active:   viewUnlock,
		unlock:   newUnlockModel(firstRun),
		menu:     newMenuModel(version, 0),
	}
}

func (m Model) Init() tea.Cmd {
	return m.unlock.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case unlockSubmitMsg:
		return m.openStore(msg.password)

	case navigateMsg:
		return m.navigate(msg.route)

	case notifyMsg:
		m.toast = toast{kind: msg.kind, text: msg.text, seq: m.toast.seq + 1}
		seq := m.toast.seq
		return m, tea.Tick(toastDuration, func(time.Time) tea.Msg {
			return toastClearMsg{seq: seq}
		})

	case toastClearMsg:
		if msg.seq == m.toast.seq {
			m.toast.text = ""
		}
		return m, nil

	case signupResultMsg:
		var cmd tea.Cmd
		m.signup, cmd = m.signup.Update(msg)
		if ref, ok := m.signup.wizard.Account(); ok {
			m = m.startSession(ref)
		}
		return m, cmd

	case loginResultMsg:
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		if msg.err == nil {
			m = m.startSession(msg.ref)
		}
		return m, cmd

	case toggleAmountsMsg:
		m.prefs.HideAmount = msg.hidden
		m.savePrefs()
		return m, nil

	case signOutMsg:
		m.session = nil
		return m.navigate(signup.RouteLanding)
	}

	return m.updateActive(msg)
}

func (m Model) View() string {
	// unlock and menu render their own title
	switch m.active {
	case viewUnlock:
		return m.unlock.View()
	case viewMenu:
		return m.menu.View() + m.toastView()
	}

	var content string
	switch m.active {
	case viewSignup:
		content = m.signup.View()
	case viewLogin:
		content = m.login.View()
	case viewDashboard:
		content = m.dashboard.View()
	}

	header := zstyle.RenderHeader("zpay", viewTitle(m.active), accent)
	sep := zstyle.RenderSeparator(m.width)
	footer := zstyle.RenderFooter(m.helpFor(m.active))

	return "\n" + header + "\n" + sep + "\n" + content + m.toastView() + "\n" + footer + "\n"
}

// toastView always reserves a line so the layout does not shift.
func (m Model) toastView() string {
	if m.toast.text == "" {
		return "\n"
	}
	style := zstyle.StatusOK
	if m.toast.kind == signup.KindError {
		style = zstyle.StatusErr
	}
	return "  " + style.Render(m.toast.text) + "\n"
}

// viewTitle returns the display title for each view.
func viewTitle(id viewID) string {
	switch id {
	case viewSignup:
		return "Create Account"
	case viewLogin:
		return "Sign In"
	case viewDashboard:
		return "Dashboard"
	}
	return ""
}

// helpFor returns keybinding pairs for each view's footer.
func (m Model) helpFor(id viewID) []zstyle.HelpPair {
	switch id {
	case viewSignup:
		switch m.signup.wizard.State() {
		case signup.StepIdentity:
			return []zstyle.HelpPair{
				{Key: "tab", Desc: "next field"},
				{Key: "enter", Desc: "continue"},
				{Key: "esc", Desc: "cancel"},
			}
		case signup.StepCredentials:
			return []zstyle.HelpPair{
				{Key: "tab", Desc: "next field"},
				{Key: "ctrl+g", Desc: "suggest"},
				{Key: "ctrl+y", Desc: "copy"},
				{Key: "ctrl+r", Desc: "reveal"},
				{Key: "enter", Desc: "continue"},
				{Key: "esc", Desc: "back"},
			}
		}
		return []zstyle.HelpPair{
			{Key: "tab", Desc: "next"},
			{Key: "space", Desc: "toggle"},
			{Key: "enter", Desc: "create account"},
			{Key: "esc", Desc: "back"},
		}
	case viewLogin:
		return []zstyle.HelpPair{
			{Key: "tab", Desc: "next field"},
			{Key: "ctrl+r", Desc: "reveal"},
			{Key: "enter", Desc: "sign in"},
			{Key: "esc", Desc: "back"},
		}
	case viewDashboard:
		return []zstyle.HelpPair{
			{Key: "b", Desc: "hide balance"},
			{Key: "o", Desc: "sign out"},
			{Key: "q", Desc: "quit"},
		}
	}
	return nil
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.active {
	case viewUnlock:
		m.unlock, cmd = m.unlock.Update(msg)
	case viewMenu:
		m.menu, cmd = m.menu.Update(msg)
	case viewSignup:
		m.signup, cmd = m.signup.Update(msg)
	case viewLogin:
		m.login, cmd = m.login.Update(msg)
	case viewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	}

	return m, cmd
}

func (m Model) openStore(password string) (tea.Model, tea.Cmd) {
	if err := os.MkdirAll(m.dataDir, 0o700); err != nil {
		m.unlock, _ = m.unlock.Update(unlockErrMsg{
			err: fmt.Errorf("create data dir: %w", err),
		})
		return m, nil
	}

	fsys := zfilesystem.NewOSFileSystem(m.dataDir)
	s, err := zstore.Open(fsys, []byte(password))
	if err != nil {
		m.unlock, _ = m.unlock.Update(unlockErrMsg{err: err})
		return m, nil
	}

	accounts, err := account.Open(s)
	if err != nil {
		s.Close()
		m.unlock, _ = m.unlock.Update(unlockErrMsg{err: err})
		return m, nil
	}

	cfgCol, err := zstore.NewCollection[configEnvelope](s, "config")
	if err != nil {
		s.Close()
		m.unlock, _ = m.unlock.Update(unlockErrMsg{err: err})
		return m, nil
	}

	m.store = s
	m.accounts = accounts
	m.configs = cfgCol
	m.prefs = loadConfig[Preferences](cfgCol, preferencesKey)
	return m.navigate(signup.RouteLanding)
}

func (m Model) navigate(route signup.Route) (tea.Model, tea.Cmd) {
	switch route {
	case signup.RouteLanding:
		count := 0
		if m.accounts != nil {
			if all, err := m.accounts.List(); err == nil {
				count = len(all)
			}
		}
		m.menu = newMenuModel(m.version, count)
		m.active = viewMenu
		return m, tea.ClearScreen

	case signup.RouteSignup:
		m.signup = newSignupModel(m.accounts)
		m.active = viewSignup
		return m, tea.Batch(m.signup.Init(), tea.ClearScreen)

	case signup.RouteLogin:
		m.login = newLoginModel(m.accounts, m.prefs.LastEmail)
		m.active = viewLogin
		return m, tea.Batch(m.login.Init(), tea.ClearScreen)

	case signup.RouteDashboard:
		if m.session == nil {
			return m.navigate(signup.RouteLogin)
		}
		m.dashboard = newDashboardModel(*m.session, m.prefs.HideAmount)
		m.active = viewDashboard
		return m, tea.ClearScreen
	}

	return m, nil
}

// startSession loads the account behind ref and remembers its email.
func (m Model) startSession(ref signup.AccountRef) Model {
	a, err := m.accounts.Get(ref.ID)
	if err != nil {
		m.toast = toast{kind: signup.KindError, text: "load account: " + err.Error(), seq: m.toast.seq + 1}
		return m
	}

	m.session = &a
	m.prefs.LastEmail = a.Email
	m.savePrefs()
	return m
}

func (m Model) savePrefs() {
	// best effort: a lost preference is not worth interrupting the user
	_ = saveConfig(m.configs, preferencesKey, m.prefs)
}

// SignedIn reports whether an account session is active.
func (m Model) SignedIn() bool { return m.session != nil }

// Close cleans up resources. Call after the program exits.
func (m Model) Close() {
	if m.store != nil {
		m.store.Close()
	}
}
