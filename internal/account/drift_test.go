package account_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servimas/cortineros/internal/account"
	"github.com/servimas/cortineros/internal/ledger"
)

var (
	accountID = uuid.MustParse("0f8c7d3a-91b2-4c55-a1d4-7e2b9c6f3a10")
	day       = time.Date(2024, 11, 25, 0, 0, 0, 0, time.UTC)
)

func mov(kind ledger.Kind, amount int64, date time.Time) ledger.Movement {
	return ledger.Movement{
		ID:        uuid.New(),
		AccountID: accountID,
		Kind:      kind,
		Amount:    amount,
		Date:      date,
		CreatedAt: date,
	}
}

func TestCheckBalance(t *testing.T) {
	type testCase struct {
		name         string
		stored       int64
		history      []ledger.Movement
		wantWarning  bool
		wantComputed int64
		wantMismatch int64
	}

	voided := mov(ledger.KindDelivery, 5000, day)
	voided.VoidedAt = new(day)

	other := mov(ledger.KindDelivery, 99000, day)
	other.AccountID = uuid.New()

	tests := []testCase{
		{
			name:   "StoredBalanceDrifted",
			stored: -45000,
			history: []ledger.Movement{
				mov(ledger.KindDelivery, 50000, day),
				mov(ledger.KindPayment, 10000, day.AddDate(0, 0, 1)),
			},
			wantWarning:  true,
			wantComputed: -40000,
			wantMismatch: 5000,
		},
		{
			name:   "InSync",
			stored: -40000,
			history: []ledger.Movement{
				mov(ledger.KindDelivery, 50000, day),
				mov(ledger.KindPayment, 10000, day.AddDate(0, 0, 1)),
			},
		},
		{
			name:   "IgnoresVoidedAndForeignMovements",
			stored: -50000,
			history: []ledger.Movement{
				mov(ledger.KindDelivery, 50000, day),
				voided,
				other,
			},
		},
		{
			name:   "EmptyHistoryMustBeZero",
			stored: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			acc := &account.Account{ID: accountID, Balance: tc.stored}

			warn, err := account.CheckBalance(acc, tc.history)
			require.NoError(t, err)

			if !tc.wantWarning {
				assert.Nil(t, warn)
				return
			}

			require.NotNil(t, warn)
			assert.Equal(t, tc.stored, warn.Stored)
			assert.Equal(t, tc.wantComputed, warn.Computed)
			assert.Equal(t, tc.wantMismatch, warn.Mismatch())
			assert.Equal(t, tc.stored-tc.wantComputed, warn.Difference())
		})
	}
}

func TestCheckBalance_InvalidHistory(t *testing.T) {
	acc := &account.Account{ID: accountID}

	_, err := account.CheckBalance(acc, []ledger.Movement{mov(ledger.Kind("refund"), 100, day)})
	require.ErrorIs(t, err, ledger.ErrInvalidMovement)
}

func TestLastMovementDate(t *testing.T) {
	updated := time.Date(2024, 10, 1, 15, 30, 0, 0, time.UTC)
	acc := &account.Account{ID: accountID, UpdatedAt: updated}

	assert.Equal(t, updated, account.LastMovementDate(acc, nil))

	late := mov(ledger.KindPayment, 100, day.AddDate(0, 0, 9))
	late.VoidedAt = new(day)

	got := account.LastMovementDate(acc, []ledger.Movement{
		mov(ledger.KindDelivery, 100, day),
		mov(ledger.KindPayment, 100, day.AddDate(0, 0, 2)),
		late,
	})
	assert.Equal(t, day.AddDate(0, 0, 2), got)
}
