// Package sheet reads spreadsheet exports of a cortinero's paper ledger.
//
// Two layouts are recognised by their header: "libreta" (Fecha, Tipo, Importe,
// Detalle) and "planilla" (Fecha, Debe, Haber, Detalle). Headers are matched
// case-insensitively, the separator may be ';' or ','.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	enc "github.com/servimas/cortineros/internal/encoding"
	"github.com/servimas/cortineros/internal/ledger"
	"github.com/servimas/cortineros/internal/movement"
)

var (
	ErrNoProfile   = errors.New("no matching ledger layout: expected Fecha;Tipo;Importe;Detalle or Fecha;Debe;Haber;Detalle")
	ErrInvalidDate = errors.New("invalid date")
)

// summaryLabels mark footer rows such as "Total;;62.500". They carry no movement.
var summaryLabels = map[string]bool{
	"total":    true,
	"totales":  true,
	"subtotal": true,
	"saldo":    true,
}

var dateLayouts = []string{"02/01/2006", "2/1/2006", "2006-01-02", "02-01-2006"}

// RowError points at the spreadsheet row that could not be read.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Result is a parsed spreadsheet.
type Result struct {
	Profile   string
	Charset   enc.Charset
	Movements []movement.CreateParams
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse reads every data row. Blank rows, rows with nothing but a description
// and "Total" footers are skipped. Any other row that cannot be read fails the
// whole file, since dropping it would silently change the balance.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	utf8r, charset, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectSeparator(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, ErrNoProfile
	}

	movs, err := parseRows(profile, cols, rows[headerIdx+1:], headerIdx)
	if err != nil {
		return nil, err
	}

	return &Result{Profile: profile.Name, Charset: charset, Movements: movs}, nil
}

// detectSeparator picks ';' unless the first non-empty line only splits on ','.
func detectSeparator(data []byte) rune {
	for line := range bytes.Lines(data) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		if bytes.Count(line, []byte{','}) > bytes.Count(line, []byte{';'}) {
			return ','
		}

		return ';'
	}

	return ';'
}

type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// headerRowNum is the 0-based index of the header row, for error messages.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]movement.CreateParams, error) {
	movs := []movement.CreateParams{}

	for i, row := range rows {
		rowNum := headerRowNum + i + 2 // 1-based, skipping header

		dateCell := cellValue(row, cols, p.DateCol)

		if skipRow(p, cols, row, dateCell) {
			continue
		}

		date, ok := parseDate(dateCell)
		if !ok {
			return nil, &RowError{Row: rowNum, Err: fmt.Errorf("%w: %q", ErrInvalidDate, dateCell)}
		}

		kind, amount, err := parseKindAmount(p, cols, row)
		if err != nil {
			return nil, &RowError{Row: rowNum, Err: err}
		}

		params := movement.CreateParams{
			Kind:        kind,
			Amount:      amount,
			Description: cellValue(row, cols, p.DescCol),
			Note:        cellValue(row, cols, p.NoteCol),
			Date:        date,
		}

		if m := cellValue(row, cols, p.MethodCol); m != "" && kind == ledger.KindPayment {
			method := movement.PaymentMethod(strings.ToLower(m))
			if !method.Valid() {
				return nil, &RowError{Row: rowNum, Err: fmt.Errorf("%w: %q", movement.ErrUnknownPaymentMethod, m)}
			}

			params.PaymentMethod = method
		}

		movs = append(movs, params)
	}

	return movs, nil
}

// skipRow reports rows that hold no movement: no date and no type or amount,
// or a summary label in the date column.
func skipRow(p *Profile, cols colIndex, row []string, dateCell string) bool {
	if summaryLabels[strings.ToLower(strings.TrimSuffix(dateCell, ":"))] {
		return true
	}

	if dateCell != "" {
		return false
	}

	for _, name := range p.requiredCols()[1:] {
		if cellValue(row, cols, name) != "" {
			return false
		}
	}

	return true
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return ledger.DateOnly(t), true
		}
	}

	return time.Time{}, false
}

func parseKindAmount(p *Profile, cols colIndex, row []string) (ledger.Kind, int64, error) {
	switch p.AmountMode {
	case amountByKind:
		return parseByKind(cellValue(row, cols, p.KindCol), cellValue(row, cols, p.AmountCol))
	case amountSplit:
		return parseSplit(cellValue(row, cols, p.DebitCol), cellValue(row, cols, p.CreditCol))
	}

	return "", 0, fmt.Errorf("unsupported layout %q", p.Name)
}

func parseByKind(kindCell, amountCell string) (ledger.Kind, int64, error) {
	kind, ok := parseKind(kindCell)
	if !ok {
		return "", 0, fmt.Errorf("unknown movement type %q", kindCell)
	}

	amount, err := ParseAmount(amountCell)
	if err != nil {
		return "", 0, fmt.Errorf("amount %q: %w", amountCell, err)
	}

	switch {
	case kind == ledger.KindAdjustment && amount == 0:
		return "", 0, movement.ErrInvalidAmount
	case kind != ledger.KindAdjustment && amount <= 0:
		return "", 0, fmt.Errorf("%w: %s of %d", movement.ErrInvalidAmount, kindCell, amount)
	}

	return kind, amount, nil
}

func parseSplit(debit, credit string) (ledger.Kind, int64, error) {
	switch {
	case debit != "" && credit != "":
		return "", 0, errors.New("both debe and haber are filled")
	case debit == "" && credit == "":
		return "", 0, errors.New("neither debe nor haber is filled")
	}

	kind, cell := ledger.KindDelivery, debit
	if credit != "" {
		kind, cell = ledger.KindPayment, credit
	}

	amount, err := ParseAmount(cell)
	if err != nil {
		return "", 0, fmt.Errorf("amount %q: %w", cell, err)
	}

	if amount <= 0 {
		return "", 0, fmt.Errorf("%w: %d", movement.ErrInvalidAmount, amount)
	}

	return kind, amount, nil
}

func cellValue(row []string, cols colIndex, name string) string {
	idx, ok := cols[name]
	if !ok || name == "" || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
