package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/servimas/cortineros/internal/ledger"
	"github.com/servimas/cortineros/internal/movement"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// The schema stores movement kinds in Spanish.
var (
	kindToDB = map[ledger.Kind]string{
		ledger.KindDelivery:   "entrega",
		ledger.KindPayment:    "pago",
		ledger.KindAdjustment: "ajuste",
	}
	kindFromDB = map[string]ledger.Kind{
		"entrega": ledger.KindDelivery,
		"pago":    ledger.KindPayment,
		"ajuste":  ledger.KindAdjustment,
	}
)

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const selectMovementColumns = `
	id, cortinero_id, tipo, importe, descripcion, metodo_pago, comentarios,
	fecha, created_by, created_at, updated_at, voided_at
`

// scanMovement reads a row in selectMovementColumns order.
func scanMovement(s scanner) (*ledger.Movement, error) {
	var m ledger.Movement

	var tipo string

	var desc, method, note, createdBy sql.NullString

	if err := s.Scan(
		&m.ID, &m.AccountID, &tipo, &m.Amount, &desc, &method, &note,
		&m.Date, &createdBy, &m.CreatedAt, &m.UpdatedAt, &m.VoidedAt,
	); err != nil {
		return nil, err
	}

	kind, ok := kindFromDB[tipo]
	if !ok {
		// Left for ledger.Validate to reject with the movement id attached.
		kind = ledger.Kind(tipo)
	}

	m.Kind = kind
	m.Description = desc.String
	m.PaymentMethod = method.String
	m.Note = note.String
	m.CreatedBy = createdBy.String
	m.Date = ledger.DateOnly(m.Date)

	return &m, nil
}

func scanMovements(rows *sql.Rows) ([]ledger.Movement, error) {
	defer rows.Close()

	movs := []ledger.Movement{}

	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}

		movs = append(movs, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating movement rows: %w", err)
	}

	return movs, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) GetMovement(ctx context.Context, id uuid.UUID) (*ledger.Movement, error) {
	query := `SELECT ` + selectMovementColumns + ` FROM movimientos WHERE id = $1`

	m, err := scanMovement(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, movement.ErrNotFound
		}

		return nil, fmt.Errorf("getting movement: %w", err)
	}

	return m, nil
}

func (s *Store) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]ledger.Movement, error) {
	return listByAccount(ctx, s.db, accountID, limit)
}

func listByAccount(ctx context.Context, q queryer, accountID uuid.UUID, limit int) ([]ledger.Movement, error) {
	query := `SELECT ` + selectMovementColumns + `
		FROM movimientos
		WHERE cortinero_id = $1 AND voided_at IS NULL
		ORDER BY fecha DESC, created_at DESC, id DESC`

	args := []any{accountID}

	if limit > 0 {
		query += " LIMIT $2"

		args = append(args, limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}

	return scanMovements(rows)
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]ledger.Movement, error) {
	query := `SELECT ` + selectMovementColumns + `
		FROM movimientos
		WHERE voided_at IS NULL
		ORDER BY fecha DESC, created_at DESC, id DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent movements: %w", err)
	}

	return scanMovements(rows)
}

type writeTx struct {
	tx        *sql.Tx
	accountID uuid.UUID
}

// BeginWrite opens a transaction and locks the account row so concurrent
// writers on the same account rebalance one after the other.
func (s *Store) BeginWrite(ctx context.Context, accountID uuid.UUID) (movement.WriteTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning write tx: %w", err)
	}

	var locked uuid.UUID

	err = dbTx.QueryRowContext(ctx, `SELECT id FROM cortineros WHERE id = $1 FOR UPDATE`, accountID).Scan(&locked)
	if err != nil {
		dbTx.Rollback()

		if errors.Is(err, sql.ErrNoRows) {
			return nil, movement.ErrAccountNotFound
		}

		return nil, fmt.Errorf("locking account: %w", err)
	}

	return &writeTx{tx: dbTx, accountID: accountID}, nil
}

func (w *writeTx) Commit() error   { return w.tx.Commit() }
func (w *writeTx) Rollback() error { return w.tx.Rollback() }

func (w *writeTx) CreateMovements(ctx context.Context, movs []*ledger.Movement) error {
	// clock_timestamp keeps created_at increasing inside one transaction, which
	// preserves batch order for same-day movements.
	query := `
		INSERT INTO movimientos (cortinero_id, tipo, importe, descripcion, metodo_pago, comentarios, fecha, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, clock_timestamp())
		RETURNING id, created_at
	`

	for _, m := range movs {
		err := w.tx.QueryRowContext(ctx, query,
			w.accountID,
			kindToDB[m.Kind],
			m.Amount,
			nullString(m.Description),
			nullString(m.PaymentMethod),
			nullString(m.Note),
			m.Date,
			nullString(m.CreatedBy),
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			return fmt.Errorf("creating movement: %w", err)
		}

		m.AccountID = w.accountID
	}

	return nil
}

func (w *writeTx) UpdateMovement(ctx context.Context, m *ledger.Movement) error {
	query := `
		UPDATE movimientos
		SET importe = $1, descripcion = $2, metodo_pago = $3, comentarios = $4, fecha = $5, updated_at = NOW()
		WHERE id = $6 AND cortinero_id = $7 AND voided_at IS NULL
		RETURNING updated_at
	`

	err := w.tx.QueryRowContext(ctx, query,
		m.Amount,
		nullString(m.Description),
		nullString(m.PaymentMethod),
		nullString(m.Note),
		m.Date,
		m.ID,
		w.accountID,
	).Scan(&m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return movement.ErrNotFound
		}

		return fmt.Errorf("updating movement: %w", err)
	}

	return nil
}

func (w *writeTx) VoidMovement(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE movimientos
		SET voided_at = NOW()
		WHERE id = $1 AND cortinero_id = $2 AND voided_at IS NULL
	`

	res, err := w.tx.ExecContext(ctx, query, id, w.accountID)
	if err != nil {
		return fmt.Errorf("voiding movement: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("voiding movement: %w", err)
	}

	if n == 0 {
		return movement.ErrNotFound
	}

	return nil
}

func (w *writeTx) ActiveMovements(ctx context.Context) ([]ledger.Movement, error) {
	return listByAccount(ctx, w.tx, w.accountID, 0)
}

func (w *writeTx) SetBalance(ctx context.Context, balance int64) error {
	query := `UPDATE cortineros SET saldo = $1, updated_at = NOW() WHERE id = $2`

	if _, err := w.tx.ExecContext(ctx, query, balance, w.accountID); err != nil {
		return fmt.Errorf("updating balance: %w", err)
	}

	return nil
}
