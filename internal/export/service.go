package export

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"

	"github.com/servimas/cortineros/internal/account"
	"github.com/servimas/cortineros/internal/format"
	"github.com/servimas/cortineros/internal/ledger"
)

// Ledgers projects an account's movements.
type Ledgers interface {
	Ledger(ctx context.Context, id uuid.UUID) (*account.Statement, error)
}

// Service renders account statements as plain text.
type Service struct {
	ledgers Ledgers
	now     func() time.Time
}

func NewService(ledgers Ledgers) *Service {
	return &Service{ledgers: ledgers, now: time.Now}
}

// Statement writes the statement of one account to w.
func (s *Service) Statement(ctx context.Context, w io.Writer, accountID uuid.UUID) error {
	st, err := s.ledgers.Ledger(ctx, accountID)
	if err != nil {
		return fmt.Errorf("loading ledger: %w", err)
	}

	_, err = io.WriteString(w, Render(st, s.now()))

	return err
}

// Render formats a statement: a header with the account, then one row per
// movement, newest first, with the balance after it.
func Render(st *account.Statement, at time.Time) string {
	var sb strings.Builder

	a := st.Account

	fmt.Fprintf(&sb, "Estado de cuenta: %s (%s)\n", a.Name, a.Zone)
	fmt.Fprintf(&sb, "Emitido: %s\n", format.Date(at))
	fmt.Fprintf(&sb, "Saldo: %s\n", format.Amount(a.Balance))

	if a.CreditLimit > 0 {
		fmt.Fprintf(&sb, "Límite de crédito: %s\n", format.Amount(a.CreditLimit))
	}

	if !st.Complete {
		sb.WriteString("Atención: se muestran solo los movimientos más recientes; los saldos parciales no incluyen los anteriores.\n")
	}

	sb.WriteString("\n")

	if len(st.Entries) == 0 {
		sb.WriteString("Sin movimientos.\n")
		return sb.String()
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Fecha", "Detalle", "Importe", "Saldo")

	for _, e := range st.Entries {
		t.Row(format.Date(e.Date), describe(e.Movement), format.Movement(e.Movement), format.Amount(e.RunningBalance))
	}

	sb.WriteString(t.String())
	sb.WriteString("\n")

	return sb.String()
}

func describe(m ledger.Movement) string {
	if m.Kind == ledger.KindPayment && m.PaymentMethod != "" {
		return fmt.Sprintf("%s (%s)", m.Description, m.PaymentMethod)
	}

	return m.Description
}
