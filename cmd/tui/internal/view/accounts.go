package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/servimas/cortineros/internal/account"
	"github.com/servimas/cortineros/internal/format"
)

type accountsState int

const (
	accountsStateBrowse accountsState = iota
	accountsStateSearch
	accountsStateCreate
)

var (
	accountFilters = []account.Filter{
		account.FilterAll,
		account.FilterOwing,
		account.FilterSettled,
		account.FilterHighDebt,
		account.FilterRecentActivity,
	}
	filterLabels = map[account.Filter]string{
		account.FilterAll:            "Todos",
		account.FilterOwing:          "Deben",
		account.FilterSettled:        "Al día",
		account.FilterHighDebt:       "Deuda alta",
		account.FilterRecentActivity: "Actividad reciente",
	}
)

// OpenLedgerMsg asks the program to show the ledger of an account.
type OpenLedgerMsg struct {
	AccountID uuid.UUID
}

type accountForm struct {
	name        string
	zone        string
	phone       string
	creditLimit string
}

type AccountsModel struct {
	CommonModel
	accounts *account.Service

	state     accountsState
	table     table.Model
	search    textinput.Model
	form      *huh.Form
	values    *accountForm
	filterIdx int

	rows    []*account.Account
	loading bool
	err     error
	status  string
}

func NewAccountsModel(accounts *account.Service) AccountsModel {
	columns := []table.Column{
		{Title: "Nombre", Width: 28},
		{Title: "Zona", Width: 16},
		{Title: "Saldo", Width: 14},
		{Title: "Límite", Width: 12},
		{Title: "Último mov.", Width: 12},
	}

	ti := textinput.New()
	ti.Placeholder = "nombre o zona"
	ti.CharLimit = 60
	ti.Width = 30

	return AccountsModel{
		accounts: accounts,
		table:    newTable(columns),
		search:   ti,
		loading:  true,
	}
}

func (m AccountsModel) Title() string { return "Cortineros" }

func (m AccountsModel) ShortHelp() string {
	switch m.state {
	case accountsStateSearch:
		return "Enter: apply | Esc: clear"
	case accountsStateCreate:
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | Enter: ledger | f: filter | /: search | n: new | r: refresh"
}

func (m AccountsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m AccountsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadAccountsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.rows = msg.accounts
		m.refreshTable()

		return m, nil

	case accountCreatedMsg:
		m.state = accountsStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Cuenta creada: %s", msg.account.Name)

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-10, 5))

		return m, nil
	}

	switch m.state {
	case accountsStateSearch:
		return m.updateSearch(msg)
	case accountsStateCreate:
		return m.updateCreate(msg)
	}

	return m.updateBrowse(msg)
}

func (m AccountsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "f":
			m.filterIdx = (m.filterIdx + 1) % len(accountFilters)
			return m, m.loadCmd()
		case "/":
			m.state = accountsStateSearch
			m.table.Blur()

			return m, m.search.Focus()
		case "n":
			return m.enterCreate()
		case "enter":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.rows) {
				return m, nil
			}

			id := m.rows[idx].ID

			return m, func() tea.Msg { return OpenLedgerMsg{AccountID: id} }
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m AccountsModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.search.SetValue("")
			fallthrough
		case tea.KeyEnter:
			m.search.Blur()
			m.table.Focus()
			m.state = accountsStateBrowse

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)

	return m, cmd
}

func (m AccountsModel) enterCreate() (tea.Model, tea.Cmd) {
	m.values = &accountForm{creditLimit: "0"}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Nombre").
				Value(&m.values.name).
				Validate(minLength(2)),

			huh.NewInput().
				Key("zone").
				Title("Zona").
				Value(&m.values.zone).
				Validate(minLength(2)),

			huh.NewInput().
				Key("phone").
				Title("Teléfono").
				Value(&m.values.phone),

			huh.NewInput().
				Key("credit_limit").
				Title("Límite de crédito").
				Value(&m.values.creditLimit).
				Validate(func(s string) error {
					v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
					if err != nil || v < 0 {
						return fmt.Errorf("ingresá un monto entero no negativo")
					}

					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = accountsStateCreate
	m.table.Blur()

	return m, m.form.Init()
}

func (m AccountsModel) updateCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = accountsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.createCmd()
}

func (m AccountsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Cargando cuentas...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	search := m.search.Value()
	if m.state == accountsStateSearch {
		search = m.search.View()
	} else if search == "" {
		search = "-"
	}

	header := fmt.Sprintf(
		"[f] Filtro: %s | [/] Buscar: %s | %d cuentas",
		activeStyle(filterLabels[accountFilters[m.filterIdx]]),
		search,
		len(m.rows),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxStyle.Render(m.table.View()),
	)

	if m.state == accountsStateCreate && m.form != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content,
			panelStyle.Render("Nueva cuenta\n\n"+m.form.View()))
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *AccountsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.rows))
	for _, a := range m.rows {
		balance := format.Amount(a.Balance)
		if a.OverLimit() {
			balance += " !"
		}

		rows = append(rows, table.Row{
			a.Name,
			a.Zone,
			balance,
			format.Amount(a.CreditLimit),
			format.Date(a.LastMovementDate),
		})
	}

	m.table.SetRows(rows)
}

func minLength(n int) func(string) error {
	return func(s string) error {
		if len([]rune(strings.TrimSpace(s))) < n {
			return fmt.Errorf("mínimo %d caracteres", n)
		}

		return nil
	}
}

// Messages

type loadAccountsMsg struct {
	accounts []*account.Account
	err      error
}

func (m AccountsModel) loadCmd() tea.Cmd {
	filter := account.ListFilter{
		Filter: accountFilters[m.filterIdx],
		Query:  strings.TrimSpace(m.search.Value()),
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accs, err := m.accounts.List(ctx, filter)

		return loadAccountsMsg{accounts: accs, err: err}
	}
}

type accountCreatedMsg struct {
	account *account.Account
	err     error
}

func (m AccountsModel) createCmd() tea.Cmd {
	v := *m.values

	return func() tea.Msg {
		limit, _ := strconv.ParseInt(strings.TrimSpace(v.creditLimit), 10, 64)

		ctx, cancel := DbCtx()
		defer cancel()

		a, err := m.accounts.Create(ctx, account.CreateParams{
			Name:        strings.TrimSpace(v.name),
			Zone:        strings.TrimSpace(v.zone),
			Phone:       strings.TrimSpace(v.phone),
			CreditLimit: limit,
		})

		return accountCreatedMsg{account: a, err: err}
	}
}

func lastMovementAge(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "sin movimientos"
	}

	days := int(now.Sub(t).Hours() / 24)
	if days <= 0 {
		return "hoy"
	}

	return fmt.Sprintf("hace %d días", days)
}
