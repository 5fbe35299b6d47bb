package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/servimas/cortineros/internal/ledger"
)

const (
	DefaultWindow       = 200
	defaultRecentLimit  = 50
	recentPerKindInView = 5
	minNameLength       = 2
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=account
type Repository interface {
	CreateAccount(ctx context.Context, a *Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	// ListAccounts returns active accounts with LastMovementDate filled in.
	ListAccounts(ctx context.Context) ([]*Account, error)
	UpdateAccount(ctx context.Context, a *Account) error
	DeactivateAccount(ctx context.Context, id uuid.UUID) error
}

// MovementSource is the read side of the movement log.
type MovementSource interface {
	History(ctx context.Context, accountID uuid.UUID, limit int) ([]ledger.Movement, error)
	All(ctx context.Context, accountID uuid.UUID) ([]ledger.Movement, error)
	Recent(ctx context.Context, limit int) ([]ledger.Movement, error)
}

// ProjectionCache stores projected ledgers keyed by the movements they came from.
type ProjectionCache interface {
	Get(ctx context.Context, accountID uuid.UUID, movs []ledger.Movement) ([]ledger.Entry, bool)
	Set(ctx context.Context, accountID uuid.UUID, movs []ledger.Movement, entries []ledger.Entry)
}

type Options struct {
	// Window is the number of recent movements shown in a ledger.
	Window int
	// RecentLimit bounds the cross-account feed used by the dashboard.
	RecentLimit int
	Cache       ProjectionCache
	Logger      zerolog.Logger
	Now         func() time.Time
}

type Service struct {
	repo      Repository
	movements MovementSource
	cache     ProjectionCache
	log       zerolog.Logger
	window    int
	recent    int
	now       func() time.Time
}

func NewService(repo Repository, movements MovementSource, opts Options) *Service {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}

	if opts.RecentLimit <= 0 {
		opts.RecentLimit = defaultRecentLimit
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		repo:      repo,
		movements: movements,
		cache:     opts.Cache,
		log:       opts.Logger,
		window:    opts.Window,
		recent:    opts.RecentLimit,
		now:       opts.Now,
	}
}

// Statement is the projected ledger of one account.
type Statement struct {
	Account *Account
	// Entries are newest first, each with the balance right after it.
	Entries []ledger.Entry
	// Complete is false when older movements fell outside the window. Running
	// balances are then relative to the start of the window.
	Complete bool
}

// RecentActivity lists the latest movements across accounts, newest first.
type RecentActivity struct {
	Payments   []ledger.Movement
	Deliveries []ledger.Movement
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Account, error) {
	a := &Account{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(params.Name),
		Zone:        strings.TrimSpace(params.Zone),
		Phone:       strings.TrimSpace(params.Phone),
		CreditLimit: params.CreditLimit,
		Active:      true,
	}

	if err := validate(a); err != nil {
		return nil, err
	}

	if err := s.repo.CreateAccount(ctx, a); err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	a.LastMovementDate = a.UpdatedAt

	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	a, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	latest, err := s.movements.History(ctx, id, 1)
	if err != nil {
		return nil, fmt.Errorf("loading latest movement: %w", err)
	}

	a.LastMovementDate = LastMovementDate(a, latest)

	return a, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Account, error) {
	accs, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	return filter.Apply(accs, s.now()), nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Account, error) {
	a, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		a.Name = strings.TrimSpace(*params.Name)
	}

	if params.Zone != nil {
		a.Zone = strings.TrimSpace(*params.Zone)
	}

	if params.Phone != nil {
		a.Phone = strings.TrimSpace(*params.Phone)
	}

	if params.CreditLimit != nil {
		a.CreditLimit = *params.CreditLimit
	}

	if err := validate(a); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateAccount(ctx, a); err != nil {
		return nil, fmt.Errorf("updating account: %w", err)
	}

	return a, nil
}

// Deactivate hides an account from lists. Its movements are kept.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeactivateAccount(ctx, id); err != nil {
		return fmt.Errorf("deactivating account: %w", err)
	}

	return nil
}

// Ledger projects the most recent window of an account's movements. When the
// window covers the whole history the result is also checked for drift.
func (s *Service) Ledger(ctx context.Context, id uuid.UUID) (*Statement, error) {
	a, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	movs, err := s.movements.History(ctx, id, s.window+1)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	complete := len(movs) <= s.window
	if !complete {
		movs = movs[:s.window]
	}

	entries, err := s.project(ctx, id, movs)
	if err != nil {
		return nil, err
	}

	a.LastMovementDate = LastMovementDate(a, movs)

	if complete {
		var computed int64
		if len(entries) > 0 {
			computed = entries[0].RunningBalance
		}

		if computed != a.Balance {
			s.warnDrift(DriftWarning{AccountID: id, Stored: a.Balance, Computed: computed})
		}
	}

	return &Statement{Account: a, Entries: entries, Complete: complete}, nil
}

// Reconciliation compares an account's stored balance with its movement log.
type Reconciliation struct {
	Account  *Account
	Computed int64
	// Drift is nil when both agree.
	Drift *DriftWarning
}

// Reconcile folds the full history of an account and reports drift against the
// stored balance. The stored balance is left untouched.
func (s *Service) Reconcile(ctx context.Context, id uuid.UUID) (*Reconciliation, error) {
	a, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	movs, err := s.movements.All(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	warn, err := CheckBalance(a, movs)
	if err != nil {
		return nil, err
	}

	a.LastMovementDate = LastMovementDate(a, movs)

	rec := &Reconciliation{Account: a, Computed: a.Balance, Drift: warn}

	if warn != nil {
		rec.Computed = warn.Computed
		s.warnDrift(*warn)
	}

	return rec, nil
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	accs, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	sum := summarize(accs)

	recent, err := s.movements.Recent(ctx, s.recent)
	if err != nil {
		return nil, fmt.Errorf("loading recent movements: %w", err)
	}

	for _, m := range recent {
		switch m.Kind {
		case ledger.KindPayment:
			if len(sum.RecentEntries.Payments) < recentPerKindInView {
				sum.RecentEntries.Payments = append(sum.RecentEntries.Payments, m)
			}
		case ledger.KindDelivery:
			if len(sum.RecentEntries.Deliveries) < recentPerKindInView {
				sum.RecentEntries.Deliveries = append(sum.RecentEntries.Deliveries, m)
			}
		}
	}

	return &sum, nil
}

func (s *Service) project(ctx context.Context, id uuid.UUID, movs []ledger.Movement) ([]ledger.Entry, error) {
	if s.cache != nil {
		if entries, ok := s.cache.Get(ctx, id, movs); ok {
			return entries, nil
		}
	}

	entries, err := ledger.Project(movs)
	if err != nil {
		var invalid *ledger.InvalidMovementError
		if errors.As(err, &invalid) {
			s.log.Error().Err(err).Stringer("account_id", id).Msg("ledger contains an invalid movement")
		}

		return nil, fmt.Errorf("projecting ledger: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, id, movs, entries)
	}

	return entries, nil
}

func (s *Service) warnDrift(d DriftWarning) {
	s.log.Warn().
		Stringer("account_id", d.AccountID).
		Int64("stored", d.Stored).
		Int64("computed", d.Computed).
		Int64("mismatch", d.Mismatch()).
		Msg("stored balance disagrees with movement log")
}

func validate(a *Account) error {
	if len([]rune(a.Name)) < minNameLength {
		return ErrInvalidName
	}

	if len([]rune(a.Zone)) < minNameLength {
		return ErrInvalidZone
	}

	if a.CreditLimit < 0 {
		return ErrInvalidCreditLimit
	}

	return nil
}
