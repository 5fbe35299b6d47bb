package account_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/servimas/cortineros/internal/account"
	"github.com/servimas/cortineros/internal/ledger"
)

type mocks struct {
	repo      *account.MockRepository
	movements *account.MockMovementSource
	cache     *account.MockProjectionCache
}

func newService(t *testing.T, opts account.Options) (*account.Service, mocks, *bytes.Buffer) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := mocks{
		repo:      account.NewMockRepository(ctrl),
		movements: account.NewMockMovementSource(ctrl),
		cache:     account.NewMockProjectionCache(ctrl),
	}

	var buf bytes.Buffer

	opts.Logger = zerolog.New(&buf)
	opts.Now = func() time.Time { return day }

	return account.NewService(m.repo, m.movements, opts), m, &buf
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    account.CreateParams
		setupMock func(m mocks)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "Success",
			params: account.CreateParams{Name: " Juan Pérez ", Zone: "Norte", CreditLimit: 100000},
			setupMock: func(m mocks) {
				m.repo.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, a *account.Account) error {
						assert.Equal(t, "Juan Pérez", a.Name)
						assert.True(t, a.Active)
						assert.Zero(t, a.Balance)
						return nil
					})
			},
		},
		{
			name:      "ShortName",
			params:    account.CreateParams{Name: "J", Zone: "Norte"},
			setupMock: func(m mocks) {},
			wantErr:   account.ErrInvalidName,
		},
		{
			name:      "MissingZone",
			params:    account.CreateParams{Name: "Juan", Zone: " "},
			setupMock: func(m mocks) {},
			wantErr:   account.ErrInvalidZone,
		},
		{
			name:      "NegativeLimit",
			params:    account.CreateParams{Name: "Juan", Zone: "Norte", CreditLimit: -1},
			setupMock: func(m mocks) {},
			wantErr:   account.ErrInvalidCreditLimit,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, m, _ := newService(t, account.Options{})
			tc.setupMock(m)

			a, err := svc.Create(context.Background(), tc.params)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, a.ID)
		})
	}
}

func TestService_Ledger(t *testing.T) {
	delivery := mov(ledger.KindDelivery, 35000, day)
	payment := mov(ledger.KindPayment, 20000, day.AddDate(0, 0, 1))
	newest := []ledger.Movement{payment, delivery}

	t.Run("CompleteHistory", func(t *testing.T) {
		svc, m, logs := newService(t, account.Options{Window: 5})

		m.repo.EXPECT().GetAccount(gomock.Any(), accountID).Return(&account.Account{ID: accountID, Balance: -15000}, nil)
		m.movements.EXPECT().History(gomock.Any(), accountID, 6).Return(newest, nil)

		st, err := svc.Ledger(context.Background(), accountID)
		require.NoError(t, err)

		assert.True(t, st.Complete)
		require.Len(t, st.Entries, 2)
		assert.Equal(t, payment.ID, st.Entries[0].ID)
		assert.Equal(t, int64(-15000), st.Entries[0].RunningBalance)
		assert.Equal(t, int64(-35000), st.Entries[1].RunningBalance)
		assert.Equal(t, payment.Date, st.Account.LastMovementDate)
		assert.Empty(t, logs.String())
	})

	t.Run("TruncatedWindow", func(t *testing.T) {
		svc, m, logs := newService(t, account.Options{Window: 1})

		m.repo.EXPECT().GetAccount(gomock.Any(), accountID).Return(&account.Account{ID: accountID, Balance: -15000}, nil)
		m.movements.EXPECT().History(gomock.Any(), accountID, 2).Return(newest, nil)

		st, err := svc.Ledger(context.Background(), accountID)
		require.NoError(t, err)

		assert.False(t, st.Complete)
		require.Len(t, st.Entries, 1)
		assert.Equal(t, int64(20000), st.Entries[0].RunningBalance)
		assert.Empty(t, logs.String())
	})

	t.Run("DriftIsLoggedNotFixed", func(t *testing.T) {
		svc, m, logs := newService(t, account.Options{})

		m.repo.EXPECT().GetAccount(gomock.Any(), accountID).Return(&account.Account{ID: accountID, Balance: -20000}, nil)
		m.movements.EXPECT().History(gomock.Any(), accountID, account.DefaultWindow+1).Return(newest, nil)

		st, err := svc.Ledger(context.Background(), accountID)
		require.NoError(t, err)

		assert.Equal(t, int64(-20000), st.Account.Balance)
		assert.Contains(t, logs.String(), `"level":"warn"`)
		assert.Contains(t, logs.String(), `"mismatch":5000`)
	})

	t.Run("CachedProjection", func(t *testing.T) {
		svc, m, _ := newService(t, account.Options{})
		svc = account.NewService(m.repo, m.movements, account.Options{Cache: m.cache, Now: func() time.Time { return day }})

		cached := []ledger.Entry{{Movement: payment, RunningBalance: -15000}, {Movement: delivery, RunningBalance: -35000}}

		m.repo.EXPECT().GetAccount(gomock.Any(), accountID).Return(&account.Account{ID: accountID, Balance: -15000}, nil)
		m.movements.EXPECT().History(gomock.Any(), accountID, gomock.Any()).Return(newest, nil)
		m.cache.EXPECT().Get(gomock.Any(), accountID, newest).Return(cached, true)

		st, err := svc.Ledger(context.Background(), accountID)
		require.NoError(t, err)
		assert.Equal(t, cached, st.Entries)
	})

	t.Run("CacheMissStoresProjection", func(t *testing.T) {
		svc, m, _ := newService(t, account.Options{})
		svc = account.NewService(m.repo, m.movements, account.Options{Cache: m.cache})

		m.repo.EXPECT().GetAccount(gomock.Any(), accountID).Return(&account.Account{ID: accountID, Balance: -15000}, nil)
		m.movements.EXPECT().History(gomock.Any(), accountID, gomock.Any()).Return(newest, nil)
		m.cache.EXPECT().Get(gomock.Any(), accountID, newest).Return(nil, false)
		m.cache.EXPECT().Set(gomock.Any(), accountID, newest, gomock.Len(2))

		_, err := svc.Ledger(context.Background(), accountID)
		require.NoError(t, err)
	})

	t.Run("InvalidMovement", func(t *testing.T) {
		svc, m, logs := newService(t, account.Options{})

		bad := mov(ledger.KindDelivery, -1, day)

		m.repo.EXPECT().GetAccount(gomock.Any(), accountID).Return(&account.Account{ID: accountID}, nil)
		m.movements.EXPECT().History(gomock.Any(), accountID, gomock.Any()).Return([]ledger.Movement{bad}, nil)

		_, err := svc.Ledger(context.Background(), accountID)

		var invalid *ledger.InvalidMovementError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, bad.ID, invalid.ID)
		assert.Contains(t, logs.String(), `"level":"error"`)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, m, _ := newService(t, account.Options{})

		m.repo.EXPECT().GetAccount(gomock.Any(), accountID).Return(nil, account.ErrNotFound)

		_, err := svc.Ledger(context.Background(), accountID)
		require.ErrorIs(t, err, account.ErrNotFound)
	})
}

func TestService_Reconcile(t *testing.T) {
	svc, m, logs := newService(t, account.Options{})

	m.repo.EXPECT().GetAccount(gomock.Any(), accountID).Return(&account.Account{ID: accountID, Balance: -45000}, nil)
	m.movements.EXPECT().All(gomock.Any(), accountID).Return([]ledger.Movement{
		mov(ledger.KindDelivery, 50000, day),
		mov(ledger.KindPayment, 10000, day.AddDate(0, 0, 1)),
	}, nil)

	rec, err := svc.Reconcile(context.Background(), accountID)
	require.NoError(t, err)
	require.NotNil(t, rec.Drift)

	assert.Equal(t, int64(-40000), rec.Computed)
	assert.Equal(t, int64(-45000), rec.Account.Balance)
	assert.Equal(t, int64(5000), rec.Drift.Mismatch())
	assert.Contains(t, logs.String(), `"stored":-45000`)
}

func TestService_Reconcile_HistoryError(t *testing.T) {
	svc, m, _ := newService(t, account.Options{})

	m.repo.EXPECT().GetAccount(gomock.Any(), accountID).Return(&account.Account{ID: accountID}, nil)
	m.movements.EXPECT().All(gomock.Any(), accountID).Return(nil, errors.New("connection reset"))

	_, err := svc.Reconcile(context.Background(), accountID)
	require.ErrorContains(t, err, "loading history")
}

func TestService_Summary(t *testing.T) {
	svc, m, _ := newService(t, account.Options{RecentLimit: 10})

	m.repo.EXPECT().ListAccounts(gomock.Any()).Return([]*account.Account{
		{Name: "A", Balance: -10000},
		{Name: "B", Balance: -60000, CreditLimit: 50000},
		{Name: "C", Balance: 3000},
		{Name: "D", Balance: -1000},
		{Name: "E", Balance: -2000},
		{Name: "F", Balance: -3000},
		{Name: "G", Balance: -4000},
	}, nil)
	m.movements.EXPECT().Recent(gomock.Any(), 10).Return([]ledger.Movement{
		mov(ledger.KindPayment, 100, day),
		mov(ledger.KindDelivery, 200, day),
		mov(ledger.KindAdjustment, -50, day),
	}, nil)

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(80000), sum.TotalDebt)
	assert.Equal(t, 7, sum.Accounts)
	assert.Equal(t, 6, sum.Owing)
	assert.Equal(t, 1, sum.OverLimit)
	assert.Equal(t, []string{"B", "A", "G", "F", "E"}, names(sum.TopDebtors))
	assert.Len(t, sum.RecentEntries.Payments, 1)
	assert.Len(t, sum.RecentEntries.Deliveries, 1)
}

func TestService_Update(t *testing.T) {
	svc, m, _ := newService(t, account.Options{})

	m.repo.EXPECT().GetAccount(gomock.Any(), accountID).Return(&account.Account{ID: accountID, Name: "Juan", Zone: "Norte"}, nil)
	m.repo.EXPECT().UpdateAccount(gomock.Any(), gomock.Any()).Return(nil)

	a, err := svc.Update(context.Background(), accountID, account.UpdateParams{Zone: new("Sur"), CreditLimit: new(int64(90000))})
	require.NoError(t, err)

	assert.Equal(t, "Sur", a.Zone)
	assert.Equal(t, int64(90000), a.CreditLimit)
}
