package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zpay/internal/account"
	"github.com/zarlcorp/zpay/internal/demo"
)

// signOutMsg ends the session.
type signOutMsg struct{}

// toggleAmountsMsg asks the root to persist the hide-amounts preference.
type toggleAmountsMsg struct {
	hidden bool
}

// dashboardModel shows the signed-in account with demo wallet data.
type dashboardModel struct {
	account      account.Account
	hidden       bool
	transactions []demo.Transaction
}

func newDashboardModel(a account.Account, hidden bool) dashboardModel {
	return dashboardModel{
		account:      a,
		hidden:       hidden,
		transactions: demo.Transactions(),
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return nil
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if key.Matches(kmsg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	switch kmsg.String() {
	case "b":
		m.hidden = !m.hidden
		hidden := m.hidden
		return m, func() tea.Msg { return toggleAmountsMsg{hidden: hidden} }
	case "o":
		return m, func() tea.Msg { return signOutMsg{} }
	}

	return m, nil
}

func (m dashboardModel) amount(s string) string {
	if m.hidden {
		return demo.Hidden
	}
	return s
}

func (m dashboardModel) View() string {
	a := m.account
	s := fmt.Sprintf("\n  %s  %s\n", zstyle.Title.Render(a.Name()), zstyle.MutedText.Render(a.Type.Title()+" account"))
	s += "  " + zstyle.MutedText.Render(a.Email) + "\n\n"

	bal := demo.CurrentBalance()
	s += "  " + zstyle.Subtitle.Render("total balance") + "\n"
	s += "  " + m.amount(demo.FormatBTC(bal.BTC)+" BTC") + "\n"
	s += "  " + zstyle.MutedText.Render(m.amount(demo.FormatUSD(bal.USD)+" USD")) + "\n\n"

	st := demo.CurrentStats()
	s += fmt.Sprintf("  %s  %s  %s\n",
		zstyle.Subtitle.Render("today's change"),
		zstyle.StatusOK.Render(m.amount(demo.FormatChange(st.ChangeUSD))),
		zstyle.MutedText.Render(fmt.Sprintf("+%.1f%% today", st.ChangePercent)),
	)
	s += fmt.Sprintf("  %s  %d  %s\n\n",
		zstyle.Subtitle.Render("recent activity"),
		st.WeeklyTxCount,
		zstyle.MutedText.Render("transactions this week"),
	)

	s += "  " + zstyle.Subtitle.Render("recent transactions") + "\n"
	for _, tx := range m.transactions {
		verb := "received from"
		if tx.Direction == demo.Sent {
			verb = "sent to"
		}
		status := zstyle.StatusOK.Render(tx.Status)
		if tx.Status != "confirmed" {
			status = zstyle.StatusWarn.Render(tx.Status)
		}
		s += fmt.Sprintf("  %s  %-14s %-15s %s  %s  %s\n",
			tx.Time.Format("2006-01-02"),
			verb,
			demo.ShortAddress(tx.Counterparty),
			m.amount(tx.Signed()),
			zstyle.MutedText.Render(m.amount(demo.FormatUSD(tx.AmountUSD))),
			status,
		)
	}

	s += "\n  " + zstyle.MutedText.Render("demo data, no funds are moved") + "\n"
	return s
}
