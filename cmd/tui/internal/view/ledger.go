package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/servimas/cortineros/internal/account"
	"github.com/servimas/cortineros/internal/format"
	"github.com/servimas/cortineros/internal/ledger"
	"github.com/servimas/cortineros/internal/movement"
)

type ledgerState int

const (
	ledgerStateBrowse ledgerState = iota
	ledgerStateRecord
	ledgerStateVoid
)

// OpenStatementMsg asks the program to show the printable statement of an account.
type OpenStatementMsg struct {
	AccountID uuid.UUID
}

// OpenImportMsg asks the program to import a spreadsheet into an account.
type OpenImportMsg struct {
	AccountID uuid.UUID
}

type LedgerModel struct {
	CommonModel
	accounts  *account.Service
	movements *movement.Service
	accountID uuid.UUID
	operator  string

	state   ledgerState
	table   table.Model
	record  *recordForm
	confirm *huh.Form
	voidOK  *bool

	statement *account.Statement
	drift     *account.Reconciliation
	loading   bool
	err       error
	status    string
}

func NewLedgerModel(accounts *account.Service, movements *movement.Service, accountID uuid.UUID, operator string) LedgerModel {
	columns := []table.Column{
		{Title: "Fecha", Width: 10},
		{Title: "Tipo", Width: 8},
		{Title: "Detalle", Width: 30},
		{Title: "Importe", Width: 14},
		{Title: "Saldo", Width: 14},
		{Title: "Medio", Width: 13},
	}

	return LedgerModel{
		accounts:  accounts,
		movements: movements,
		accountID: accountID,
		operator:  operator,
		table:     newTable(columns),
		loading:   true,
	}
}

func (m LedgerModel) Title() string { return "Cuenta corriente" }

func (m LedgerModel) ShortHelp() string {
	switch m.state {
	case ledgerStateRecord, ledgerStateVoid:
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | p: pago | d: entrega | a: ajuste | x: anular | c: conciliar | s: estado | i: importar"
}

func (m LedgerModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m LedgerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadLedgerMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.statement = msg.statement
		m.refreshTable()

		return m, nil

	case ledgerWriteMsg:
		m.state = ledgerStateBrowse
		m.record = nil
		m.confirm = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = msg.status
		m.drift = nil

		return m, m.loadCmd()

	case reconcileMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.drift = msg.rec

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-12, 5))

		return m, nil
	}

	switch m.state {
	case ledgerStateRecord:
		return m.updateRecord(msg)
	case ledgerStateVoid:
		return m.updateVoid(msg)
	}

	return m.updateBrowse(msg)
}

func (m LedgerModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "p":
			return m.enterRecord(ledger.KindPayment)
		case "d":
			return m.enterRecord(ledger.KindDelivery)
		case "a":
			return m.enterRecord(ledger.KindAdjustment)
		case "x":
			return m.enterVoid()
		case "c":
			return m, m.reconcileCmd()
		case "s":
			id := m.accountID
			return m, func() tea.Msg { return OpenStatementMsg{AccountID: id} }
		case "i":
			id := m.accountID
			return m, func() tea.Msg { return OpenImportMsg{AccountID: id} }
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m LedgerModel) enterRecord(kind ledger.Kind) (tea.Model, tea.Cmd) {
	m.record = newRecordForm(kind, time.Now())
	m.state = ledgerStateRecord
	m.table.Blur()

	return m, m.record.form.Init()
}

func (m LedgerModel) updateRecord(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = ledgerStateBrowse
		m.record = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.record.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.record.form = f
	}

	if m.record.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.recordCmd()
}

func (m LedgerModel) selected() (ledger.Entry, bool) {
	idx := m.table.Cursor()
	if m.statement == nil || idx < 0 || idx >= len(m.statement.Entries) {
		return ledger.Entry{}, false
	}

	return m.statement.Entries[idx], true
}

func (m LedgerModel) enterVoid() (tea.Model, tea.Cmd) {
	e, ok := m.selected()
	if !ok {
		return m, nil
	}

	m.voidOK = new(false)
	m.confirm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("void").
				Title(fmt.Sprintf("¿Anular %s del %s por %s?", e.Description, format.Date(e.Date), format.Amount(e.Amount))).
				Affirmative("Anular").
				Negative("Cancelar").
				Value(m.voidOK),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = ledgerStateVoid
	m.table.Blur()

	return m, m.confirm.Init()
}

func (m LedgerModel) updateVoid(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = ledgerStateBrowse
		m.confirm = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.confirm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.confirm = f
	}

	if m.confirm.State != huh.StateCompleted {
		return m, cmd
	}

	if !*m.voidOK {
		m.state = ledgerStateBrowse
		m.confirm = nil
		m.table.Focus()

		return m, nil
	}

	return m, m.voidCmd()
}

func (m LedgerModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Cargando movimientos...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	a := m.statement.Account

	balance := format.Amount(a.Balance)
	if a.Owes() {
		balance = debtStyle.Render(balance)
	}

	header := fmt.Sprintf("%s (%s) | Saldo: %s | Límite: %s | Último movimiento: %s",
		lipgloss.NewStyle().Bold(true).Render(a.Name),
		a.Zone,
		balance,
		format.Amount(a.CreditLimit),
		lastMovementAge(a.LastMovementDate, time.Now()),
	)

	lines := []string{header}

	if !m.statement.Complete {
		lines = append(lines, faintStyle.Render(fmt.Sprintf(
			"Se muestran los últimos %d movimientos; el saldo acumulado parte del inicio de la ventana.",
			len(m.statement.Entries))))
	}

	if m.drift != nil {
		lines = append(lines, driftLine(m.drift))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(lipgloss.JoinVertical(lipgloss.Left, lines...)),
		boxStyle.Render(m.table.View()),
	)

	switch {
	case m.state == ledgerStateRecord && m.record != nil:
		content = lipgloss.JoinHorizontal(lipgloss.Top, content,
			panelStyle.Render(m.record.title()+"\n\n"+m.record.form.View()))
	case m.state == ledgerStateVoid && m.confirm != nil:
		content = lipgloss.JoinHorizontal(lipgloss.Top, content,
			panelStyle.Render(m.confirm.View()))
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func driftLine(rec *account.Reconciliation) string {
	if rec.Drift == nil {
		return okStyle.Render("Saldo conciliado con los movimientos.")
	}

	return errorStyle.Render(fmt.Sprintf("Diferencia: guardado %s, calculado %s (%s)",
		format.Amount(rec.Drift.Stored),
		format.Amount(rec.Drift.Computed),
		format.Amount(rec.Drift.Mismatch()),
	))
}

func (m *LedgerModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.statement.Entries))
	for _, e := range m.statement.Entries {
		rows = append(rows, table.Row{
			format.Date(e.Date),
			kindLabels[e.Kind],
			e.Description,
			format.Movement(e.Movement),
			format.Amount(e.RunningBalance),
			e.PaymentMethod,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadLedgerMsg struct {
	statement *account.Statement
	err       error
}

func (m LedgerModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		st, err := m.accounts.Ledger(ctx, m.accountID)

		return loadLedgerMsg{statement: st, err: err}
	}
}

type ledgerWriteMsg struct {
	status string
	err    error
}

func (m LedgerModel) recordCmd() tea.Cmd {
	params, err := m.record.params(m.operator)
	if err != nil {
		return func() tea.Msg { return ledgerWriteMsg{err: err} }
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		mov, err := m.movements.Record(ctx, m.accountID, params)
		if err != nil {
			return ledgerWriteMsg{err: err}
		}

		return ledgerWriteMsg{status: fmt.Sprintf("%s registrado: %s", kindLabels[mov.Kind], format.Movement(*mov))}
	}
}

func (m LedgerModel) voidCmd() tea.Cmd {
	e, ok := m.selected()
	if !ok {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.movements.Void(ctx, e.ID); err != nil {
			return ledgerWriteMsg{err: err}
		}

		return ledgerWriteMsg{status: "Movimiento anulado."}
	}
}

type reconcileMsg struct {
	rec *account.Reconciliation
	err error
}

func (m LedgerModel) reconcileCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		rec, err := m.accounts.Reconcile(ctx, m.accountID)

		return reconcileMsg{rec: rec, err: err}
	}
}
