package sheet

import (
	"strings"

	"github.com/servimas/cortineros/internal/ledger"
)

// amountMode determines how the movement kind and amount are read from a row.
type amountMode int

const (
	// amountByKind means a "Tipo" column names the kind and one column holds the amount.
	amountByKind amountMode = iota
	// amountSplit means separate debit (delivery) and credit (payment) columns.
	amountSplit
)

// Profile describes the column layout of a ledger spreadsheet.
type Profile struct {
	Name       string
	DateCol    string
	DescCol    string
	AmountMode amountMode
	KindCol    string // amountByKind
	AmountCol  string // amountByKind
	DebitCol   string // amountSplit
	CreditCol  string // amountSplit
	MethodCol  string // optional
	NoteCol    string // optional
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol}

	switch p.AmountMode {
	case amountByKind:
		cols = append(cols, p.KindCol, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles is tried in order during detection.
var profiles = []Profile{
	{
		Name:       "libreta",
		DateCol:    "fecha",
		DescCol:    "detalle",
		AmountMode: amountByKind,
		KindCol:    "tipo",
		AmountCol:  "importe",
		MethodCol:  "medio de pago",
		NoteCol:    "comentarios",
	},
	{
		Name:       "planilla",
		DateCol:    "fecha",
		DescCol:    "detalle",
		AmountMode: amountSplit,
		DebitCol:   "debe",
		CreditCol:  "haber",
		MethodCol:  "medio de pago",
		NoteCol:    "comentarios",
	},
}

var kinds = map[string]ledger.Kind{
	"entrega": ledger.KindDelivery,
	"pago":    ledger.KindPayment,
	"ajuste":  ledger.KindAdjustment,
}

func parseKind(s string) (ledger.Kind, bool) {
	k, ok := kinds[strings.ToLower(strings.TrimSpace(s))]
	return k, ok
}
