package account

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/servimas/cortineros/internal/ledger"
)

var (
	ErrNotFound           = errors.New("account not found")
	ErrInvalidName        = errors.New("name must have at least 2 characters")
	ErrInvalidZone        = errors.New("zone must have at least 2 characters")
	ErrInvalidCreditLimit = errors.New("credit limit cannot be negative")
)

// Account is a cortinero: a field agent who takes goods on credit.
//
// Balance is the stored value kept by the write path. Negative means the agent
// owes money, positive means credit in their favour.
type Account struct {
	ID          uuid.UUID
	Name        string
	Zone        string
	Phone       string
	CreditLimit int64
	Balance     int64
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// LastMovementDate is derived, never stored.
	LastMovementDate time.Time
}

func (a *Account) Owes() bool { return a.Balance < 0 }

// OverLimit reports whether the debt exceeds the advisory credit limit.
func (a *Account) OverLimit() bool {
	return a.CreditLimit > 0 && -a.Balance > a.CreditLimit
}

// LastMovementDate returns the latest date among the active movements of acc,
// or the account's last update when it has none.
func LastMovementDate(acc *Account, movs []ledger.Movement) time.Time {
	var last time.Time

	for _, m := range movs {
		if m.AccountID != acc.ID || m.State() == ledger.StateVoided {
			continue
		}

		if m.Date.After(last) {
			last = m.Date
		}
	}

	if last.IsZero() {
		return acc.UpdatedAt
	}

	return last
}

type CreateParams struct {
	Name        string
	Zone        string
	Phone       string
	CreditLimit int64
}

type UpdateParams struct {
	Name        *string
	Zone        *string
	Phone       *string
	CreditLimit *int64
}
