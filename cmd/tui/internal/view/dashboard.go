package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/servimas/cortineros/internal/account"
	"github.com/servimas/cortineros/internal/format"
	"github.com/servimas/cortineros/internal/ledger"
)

type DashboardModel struct {
	CommonModel
	accounts *account.Service

	summary *account.Summary
	loading bool
	err     error
}

func NewDashboardModel(accounts *account.Service) DashboardModel {
	return DashboardModel{accounts: accounts, loading: true}
}

func (m DashboardModel) Title() string { return "Resumen" }

func (m DashboardModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryMsg:
		m.loading = false
		m.summary, m.err = msg.summary, msg.err

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Cargando resumen...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	s := m.summary

	totals := fmt.Sprintf("Deuda total: %s\nCuentas activas: %d | Deben: %d | Sobre el límite: %d",
		debtStyle.Render(format.Amount(s.TotalDebt)), s.Accounts, s.Owing, s.OverLimit)

	debtors := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("Mayores deudores", "Zona", "Saldo")
	for _, a := range s.TopDebtors {
		debtors.Row(a.Name, a.Zone, format.Amount(a.Balance))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		totals,
		"",
		debtors.Render(),
		"",
		recentBlock("Últimos pagos", s.RecentEntries.Payments),
		"",
		recentBlock("Últimas entregas", s.RecentEntries.Deliveries),
	)

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func recentBlock(title string, movs []ledger.Movement) string {
	var sb strings.Builder

	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(title))

	if len(movs) == 0 {
		sb.WriteString("\n" + faintStyle.Render("Sin movimientos."))
	}

	for _, m := range movs {
		fmt.Fprintf(&sb, "\n%s  %-28s %s", format.Date(m.Date), m.Description, format.Movement(m))
	}

	return sb.String()
}

type summaryMsg struct {
	summary *account.Summary
	err     error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		s, err := m.accounts.Summary(ctx)

		return summaryMsg{summary: s, err: err}
	}
}
