package movement

import (
	"time"

	"github.com/servimas/cortineros/internal/ledger"
)

// PaymentMethod is how a cortinero paid.
type PaymentMethod string

const (
	MethodCash        PaymentMethod = "efectivo"
	MethodTransfer    PaymentMethod = "transferencia"
	MethodCheque      PaymentMethod = "cheque"
	MethodMercadoPago PaymentMethod = "mercadopago"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case MethodCash, MethodTransfer, MethodCheque, MethodMercadoPago:
		return true
	}

	return false
}

// CreateParams describes a new movement. Amount follows ledger.Movement: a
// positive magnitude for deliveries and payments, a signed delta for adjustments.
type CreateParams struct {
	Kind          ledger.Kind
	Amount        int64
	Description   string
	PaymentMethod PaymentMethod
	Note          string
	Date          time.Time
	CreatedBy     string
}

// UpdateParams holds the editable fields of a movement. Nil fields are left as they are.
type UpdateParams struct {
	Amount        *int64
	Description   *string
	PaymentMethod *PaymentMethod
	Note          *string
	Date          *time.Time
}

func defaultDescription(kind ledger.Kind) string {
	switch kind {
	case ledger.KindPayment:
		return "Pago"
	case ledger.KindDelivery:
		return "Entrega"
	case ledger.KindAdjustment:
		return "Ajuste"
	}

	return ""
}

func checkAmount(kind ledger.Kind, amount int64) error {
	if kind == ledger.KindAdjustment {
		if amount == 0 {
			return ErrInvalidAmount
		}

		return nil
	}

	if amount <= 0 {
		return ErrInvalidAmount
	}

	return nil
}
