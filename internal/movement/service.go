package movement

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/servimas/cortineros/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=movement
type Repository interface {
	GetMovement(ctx context.Context, id uuid.UUID) (*ledger.Movement, error)
	// ListByAccount returns active movements of an account, newest first.
	// A limit <= 0 returns the whole history.
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]ledger.Movement, error)
	ListRecent(ctx context.Context, limit int) ([]ledger.Movement, error)

	BeginWrite(ctx context.Context, accountID uuid.UUID) (WriteTx, error)
}

// WriteTx holds the account row lock for the duration of a mutation.
type WriteTx interface {
	CreateMovements(ctx context.Context, movs []*ledger.Movement) error
	UpdateMovement(ctx context.Context, m *ledger.Movement) error
	VoidMovement(ctx context.Context, id uuid.UUID) error
	ActiveMovements(ctx context.Context) ([]ledger.Movement, error)
	SetBalance(ctx context.Context, balance int64) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) RecordPayment(ctx context.Context, accountID uuid.UUID, params CreateParams) (*ledger.Movement, error) {
	params.Kind = ledger.KindPayment
	return s.Record(ctx, accountID, params)
}

func (s *Service) RecordDelivery(ctx context.Context, accountID uuid.UUID, params CreateParams) (*ledger.Movement, error) {
	params.Kind = ledger.KindDelivery
	return s.Record(ctx, accountID, params)
}

func (s *Service) RecordAdjustment(ctx context.Context, accountID uuid.UUID, params CreateParams) (*ledger.Movement, error) {
	params.Kind = ledger.KindAdjustment
	return s.Record(ctx, accountID, params)
}

func (s *Service) Record(ctx context.Context, accountID uuid.UUID, params CreateParams) (*ledger.Movement, error) {
	movs, err := s.CreateBatch(ctx, accountID, []CreateParams{params})
	if err != nil {
		return nil, err
	}

	return movs[0], nil
}

// CreateBatch stores all params for one account in a single write and
// rebalances the account once.
func (s *Service) CreateBatch(ctx context.Context, accountID uuid.UUID, params []CreateParams) ([]*ledger.Movement, error) {
	if len(params) == 0 {
		return nil, nil
	}

	movs := make([]*ledger.Movement, len(params))

	for i, p := range params {
		m, err := newMovement(accountID, p)
		if err != nil {
			return nil, fmt.Errorf("movement %d: %w", i+1, err)
		}

		movs[i] = m
	}

	wtx, err := s.repo.BeginWrite(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("begin write: %w", err)
	}
	defer wtx.Rollback()

	if err := wtx.CreateMovements(ctx, movs); err != nil {
		return nil, fmt.Errorf("create movements: %w", err)
	}

	if err := rebalance(ctx, wtx); err != nil {
		return nil, err
	}

	if err := wtx.Commit(); err != nil {
		return nil, fmt.Errorf("commit write: %w", err)
	}

	return movs, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*ledger.Movement, error) {
	m, err := s.repo.GetMovement(ctx, id)
	if err != nil {
		return nil, err
	}

	if m.State() == ledger.StateVoided {
		return nil, ErrVoided
	}

	if err := applyUpdate(m, params); err != nil {
		return nil, err
	}

	wtx, err := s.repo.BeginWrite(ctx, m.AccountID)
	if err != nil {
		return nil, fmt.Errorf("begin write: %w", err)
	}
	defer wtx.Rollback()

	if err := wtx.UpdateMovement(ctx, m); err != nil {
		return nil, fmt.Errorf("update movement: %w", err)
	}

	if err := rebalance(ctx, wtx); err != nil {
		return nil, err
	}

	if err := wtx.Commit(); err != nil {
		return nil, fmt.Errorf("commit write: %w", err)
	}

	return m, nil
}

// Void soft-deletes a movement. It stays in storage but no longer counts.
func (s *Service) Void(ctx context.Context, id uuid.UUID) error {
	m, err := s.repo.GetMovement(ctx, id)
	if err != nil {
		return err
	}

	if m.State() == ledger.StateVoided {
		return ErrVoided
	}

	wtx, err := s.repo.BeginWrite(ctx, m.AccountID)
	if err != nil {
		return fmt.Errorf("begin write: %w", err)
	}
	defer wtx.Rollback()

	if err := wtx.VoidMovement(ctx, id); err != nil {
		return fmt.Errorf("void movement: %w", err)
	}

	if err := rebalance(ctx, wtx); err != nil {
		return err
	}

	if err := wtx.Commit(); err != nil {
		return fmt.Errorf("commit write: %w", err)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ledger.Movement, error) {
	return s.repo.GetMovement(ctx, id)
}

// History returns up to limit active movements of an account, newest first.
func (s *Service) History(ctx context.Context, accountID uuid.UUID, limit int) ([]ledger.Movement, error) {
	return s.repo.ListByAccount(ctx, accountID, limit)
}

// All returns the complete active history of an account.
func (s *Service) All(ctx context.Context, accountID uuid.UUID) ([]ledger.Movement, error) {
	return s.repo.ListByAccount(ctx, accountID, 0)
}

// Recent lists the latest movements across every account. They carry no
// running balance since they do not belong to a single ledger.
func (s *Service) Recent(ctx context.Context, limit int) ([]ledger.Movement, error) {
	return s.repo.ListRecent(ctx, limit)
}

// rebalance recomputes the stored account balance from the movement log.
func rebalance(ctx context.Context, wtx WriteTx) error {
	active, err := wtx.ActiveMovements(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	balance, err := ledger.Total(active)
	if err != nil {
		return fmt.Errorf("fold history: %w", err)
	}

	if err := wtx.SetBalance(ctx, balance); err != nil {
		return fmt.Errorf("set balance: %w", err)
	}

	return nil
}

func newMovement(accountID uuid.UUID, p CreateParams) (*ledger.Movement, error) {
	if err := checkAmount(p.Kind, p.Amount); err != nil {
		return nil, err
	}

	if p.Date.IsZero() {
		return nil, ErrMissingDate
	}

	if p.PaymentMethod != "" && !p.PaymentMethod.Valid() {
		return nil, ErrUnknownPaymentMethod
	}

	desc := strings.TrimSpace(p.Description)
	if desc == "" {
		desc = defaultDescription(p.Kind)
	}

	m := &ledger.Movement{
		AccountID:     accountID,
		Date:          ledger.DateOnly(p.Date),
		Kind:          p.Kind,
		Amount:        p.Amount,
		Description:   desc,
		PaymentMethod: string(p.PaymentMethod),
		Note:          strings.TrimSpace(p.Note),
		CreatedBy:     p.CreatedBy,
	}

	if err := ledger.Validate(*m); err != nil {
		return nil, err
	}

	return m, nil
}

func applyUpdate(m *ledger.Movement, p UpdateParams) error {
	if p.Amount != nil {
		if err := checkAmount(m.Kind, *p.Amount); err != nil {
			return err
		}

		m.Amount = *p.Amount
	}

	if p.Description != nil {
		m.Description = strings.TrimSpace(*p.Description)
		if m.Description == "" {
			m.Description = defaultDescription(m.Kind)
		}
	}

	if p.PaymentMethod != nil {
		if *p.PaymentMethod != "" && !p.PaymentMethod.Valid() {
			return ErrUnknownPaymentMethod
		}

		m.PaymentMethod = string(*p.PaymentMethod)
	}

	if p.Note != nil {
		m.Note = strings.TrimSpace(*p.Note)
	}

	if p.Date != nil {
		if p.Date.IsZero() {
			return ErrMissingDate
		}

		m.Date = ledger.DateOnly(*p.Date)
	}

	return nil
}
