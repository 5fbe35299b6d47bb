// Package format renders amounts and dates the way the office reads them.
package format

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/servimas/cortineros/internal/ledger"
)

const DateLayout = "02/01/2006"

var printer = message.NewPrinter(language.MustParse("es-AR"))

// Amount formats whole pesos with es-AR grouping, e.g. "$ 35.000" or "-$ 35.000".
func Amount(v int64) string {
	if v < 0 {
		return "-$ " + printer.Sprintf("%d", -v)
	}

	return "$ " + printer.Sprintf("%d", v)
}

// Movement formats the amount of m with the sign of its effect on the balance.
func Movement(m ledger.Movement) string {
	d := m.Delta()
	if d > 0 {
		return "+" + Amount(d)
	}

	return Amount(d)
}

func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.Format(DateLayout)
}
