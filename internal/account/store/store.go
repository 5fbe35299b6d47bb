package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/servimas/cortineros/internal/account"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectAccountColumns = `
	c.id, c.nombre, c.zona, c.telefono, c.limite_credito, c.saldo, c.activo,
	c.created_at, c.updated_at
`

// lastMovementColumn falls back to the account's last update when it has no
// active movements.
const lastMovementColumn = `
	COALESCE(
		(SELECT MAX(m.fecha) FROM movimientos m
		 WHERE m.cortinero_id = c.id AND m.voided_at IS NULL),
		c.updated_at
	)
`

func scanAccount(s scanner, extra ...any) (*account.Account, error) {
	var a account.Account

	var phone sql.NullString

	dest := []any{
		&a.ID, &a.Name, &a.Zone, &phone, &a.CreditLimit, &a.Balance, &a.Active,
		&a.CreatedAt, &a.UpdatedAt,
	}

	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	a.Phone = phone.String

	return &a, nil
}

func (s *Store) CreateAccount(ctx context.Context, a *account.Account) error {
	query := `
		INSERT INTO cortineros (id, nombre, zona, telefono, limite_credito, saldo, activo)
		VALUES ($1, $2, $3, $4, $5, 0, TRUE)
		RETURNING created_at, updated_at
	`

	phone := sql.NullString{String: a.Phone, Valid: a.Phone != ""}

	err := s.db.QueryRowContext(ctx, query, a.ID, a.Name, a.Zone, phone, a.CreditLimit).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting account: %w", err)
	}

	return nil
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + ` FROM cortineros c WHERE c.id = $1`

	a, err := scanAccount(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + `, ` + lastMovementColumn + `
		FROM cortineros c
		WHERE c.activo
		ORDER BY c.nombre`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	accs := []*account.Account{}

	for rows.Next() {
		var last sql.NullTime

		a, err := scanAccount(rows, &last)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		a.LastMovementDate = last.Time
		accs = append(accs, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating account rows: %w", err)
	}

	return accs, nil
}

// UpdateAccount writes the descriptive fields. The balance belongs to the
// movement write path and is never touched here.
func (s *Store) UpdateAccount(ctx context.Context, a *account.Account) error {
	query := `
		UPDATE cortineros
		SET nombre = $1, zona = $2, telefono = $3, limite_credito = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`

	phone := sql.NullString{String: a.Phone, Valid: a.Phone != ""}

	err := s.db.QueryRowContext(ctx, query, a.Name, a.Zone, phone, a.CreditLimit, a.ID).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return account.ErrNotFound
		}

		return fmt.Errorf("updating account: %w", err)
	}

	return nil
}

func (s *Store) DeactivateAccount(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE cortineros SET activo = FALSE, updated_at = NOW() WHERE id = $1 AND activo`, id)
	if err != nil {
		return fmt.Errorf("deactivating account: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deactivated rows: %w", err)
	}

	if n == 0 {
		return account.ErrNotFound
	}

	return nil
}
