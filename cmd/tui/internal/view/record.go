package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/servimas/cortineros/internal/format"
	"github.com/servimas/cortineros/internal/importer/sheet"
	"github.com/servimas/cortineros/internal/ledger"
	"github.com/servimas/cortineros/internal/movement"
)

var kindLabels = map[ledger.Kind]string{
	ledger.KindDelivery:   "Entrega",
	ledger.KindPayment:    "Pago",
	ledger.KindAdjustment: "Ajuste",
}

// recordForm binds a huh form to the fields of a new movement. It lives on the
// heap so the bound pointers survive model copies.
type recordForm struct {
	kind        ledger.Kind
	amount      string
	description string
	method      string
	note        string
	date        string

	form *huh.Form
}

func newRecordForm(kind ledger.Kind, today time.Time) *recordForm {
	rf := &recordForm{
		kind: kind,
		date: today.Format(format.DateLayout),
	}

	if kind == ledger.KindPayment {
		rf.method = string(movement.MethodCash)
	}

	fields := []huh.Field{
		huh.NewInput().
			Key("amount").
			Title(amountTitle(kind)).
			Value(&rf.amount).
			Validate(func(s string) error {
				_, err := rf.parseAmount(s)
				return err
			}),

		huh.NewInput().
			Key("date").
			Title("Fecha (dd/mm/aaaa)").
			Value(&rf.date).
			Validate(func(s string) error {
				_, err := time.Parse(format.DateLayout, strings.TrimSpace(s))
				if err != nil {
					return fmt.Errorf("fecha inválida")
				}

				return nil
			}),

		huh.NewInput().
			Key("description").
			Title("Detalle").
			Placeholder(kindLabels[kind]).
			Value(&rf.description),
	}

	if kind == ledger.KindPayment {
		fields = append(fields, huh.NewSelect[string]().
			Key("method").
			Title("Medio de pago").
			Options(
				huh.NewOption("Efectivo", string(movement.MethodCash)),
				huh.NewOption("Transferencia", string(movement.MethodTransfer)),
				huh.NewOption("Cheque", string(movement.MethodCheque)),
				huh.NewOption("Mercado Pago", string(movement.MethodMercadoPago)),
			).
			Value(&rf.method))
	}

	fields = append(fields, huh.NewText().
		Key("note").
		Title("Comentarios").
		CharLimit(500).
		Value(&rf.note))

	rf.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(45).WithShowHelp(false)

	return rf
}

func amountTitle(kind ledger.Kind) string {
	if kind == ledger.KindAdjustment {
		return "Importe (positivo acredita, negativo debita)"
	}

	return "Importe"
}

func (rf *recordForm) title() string {
	return "Nuevo " + strings.ToLower(kindLabels[rf.kind])
}

func (rf *recordForm) parseAmount(s string) (int64, error) {
	v, err := sheet.ParseAmount(s)
	if err != nil {
		return 0, fmt.Errorf("importe inválido")
	}

	switch {
	case v == 0:
		return 0, fmt.Errorf("el importe no puede ser cero")
	case v < 0 && rf.kind != ledger.KindAdjustment:
		return 0, fmt.Errorf("el importe debe ser positivo")
	}

	return v, nil
}

func (rf *recordForm) params(createdBy string) (movement.CreateParams, error) {
	amount, err := rf.parseAmount(rf.amount)
	if err != nil {
		return movement.CreateParams{}, err
	}

	date, err := time.Parse(format.DateLayout, strings.TrimSpace(rf.date))
	if err != nil {
		return movement.CreateParams{}, fmt.Errorf("fecha inválida: %w", err)
	}

	return movement.CreateParams{
		Kind:          rf.kind,
		Amount:        amount,
		Description:   strings.TrimSpace(rf.description),
		PaymentMethod: movement.PaymentMethod(rf.method),
		Note:          strings.TrimSpace(rf.note),
		Date:          ledger.DateOnly(date),
		CreatedBy:     createdBy,
	}, nil
}
