package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Kind is the economic nature of a movement and decides the sign of its amount.
type Kind string

const (
	KindDelivery   Kind = "delivery"
	KindPayment    Kind = "payment"
	KindAdjustment Kind = "adjustment"
)

func (k Kind) Valid() bool {
	switch k {
	case KindDelivery, KindPayment, KindAdjustment:
		return true
	}

	return false
}

// State tells whether a movement still counts towards the balance.
type State int

const (
	StateActive State = iota
	StateVoided
)

// Movement is a single dated financial event against an account.
//
// Amount is a magnitude in whole pesos for deliveries and payments. Adjustments
// carry a signed amount: positive credits the account, negative debits it.
type Movement struct {
	ID            uuid.UUID
	AccountID     uuid.UUID
	Date          time.Time
	Kind          Kind
	Amount        int64
	Description   string
	PaymentMethod string
	Note          string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	VoidedAt      *time.Time
}

func (m Movement) State() State {
	if m.VoidedAt != nil {
		return StateVoided
	}

	return StateActive
}

// Delta is the signed effect of the movement on the account balance.
func (m Movement) Delta() int64 {
	switch m.Kind {
	case KindDelivery:
		return -m.Amount
	case KindPayment, KindAdjustment:
		return m.Amount
	}

	return 0
}

// Entry is a movement annotated with the account balance right after it.
type Entry struct {
	Movement
	RunningBalance int64
}

// Active returns the movements that are not voided, keeping their order.
func Active(movs []Movement) []Movement {
	active := make([]Movement, 0, len(movs))

	for _, m := range movs {
		if m.State() == StateVoided {
			continue
		}

		active = append(active, m)
	}

	return active
}

// DateOnly truncates t to a calendar date at midnight UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
