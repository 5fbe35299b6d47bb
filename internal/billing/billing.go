// Package billing derives the invoice breakdown of a gross total.
package billing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNegativeTotal = errors.New("invoice total cannot be negative")

// VATRate is the fixed Argentine IVA rate applied to invoices.
var VATRate = decimal.RequireFromString("0.21")

// Breakdown splits a gross invoice total into net and tax. Net + Tax == Total.
type Breakdown struct {
	Total int64 `json:"total"`
	Net   int64 `json:"net"`
	Tax   int64 `json:"tax"`
}

// Split derives net as total / 1.21 rounded half up to a whole peso, and tax as
// the remainder.
func Split(total int64) (Breakdown, error) {
	if total < 0 {
		return Breakdown{}, ErrNegativeTotal
	}

	net := decimal.NewFromInt(total).
		Div(decimal.NewFromInt(1).Add(VATRate)).
		Round(0).
		IntPart()

	return Breakdown{Total: total, Net: net, Tax: total - net}, nil
}
