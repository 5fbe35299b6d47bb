package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servimas/cortineros/internal/account"
	"github.com/servimas/cortineros/internal/account/store"
)

var columns = []string{
	"id", "nombre", "zona", "telefono", "limite_credito", "saldo", "activo", "created_at", "updated_at",
}

func TestStore_GetAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	ts := time.Date(2024, 11, 25, 14, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT .+ FROM cortineros c WHERE c.id = \\$1").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				id.String(), "Juan Pérez", "Norte", nil, int64(100000), int64(-15000), true, ts, ts,
			))

		a, err := store.New(db).GetAccount(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "Juan Pérez", a.Name)
		assert.Equal(t, int64(-15000), a.Balance)
		assert.Empty(t, a.Phone)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT .+ FROM cortineros c WHERE c.id = \\$1").
			WithArgs(id).
			WillReturnError(sql.ErrNoRows)

		_, err := store.New(db).GetAccount(context.Background(), id)
		assert.ErrorIs(t, err, account.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListAccounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2024, 11, 25, 14, 0, 0, 0, time.UTC)
	last := time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .+ COALESCE\\(.+MAX\\(m.fecha\\).+ FROM cortineros c WHERE c.activo ORDER BY c.nombre").
		WillReturnRows(sqlmock.NewRows(append(columns, "ultimo_movimiento")).
			AddRow(uuid.NewString(), "Ana", "Sur", "11-5555-0000", int64(0), int64(-5000), true, ts, ts, last).
			AddRow(uuid.NewString(), "Beto", "Norte", nil, int64(0), int64(0), true, ts, ts, ts))

	accs, err := store.New(db).ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accs, 2)
	assert.Equal(t, last, accs[0].LastMovementDate)
	assert.Equal(t, "11-5555-0000", accs[0].Phone)
	assert.Equal(t, ts, accs[1].LastMovementDate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2024, 11, 25, 14, 0, 0, 0, time.UTC)
	a := &account.Account{ID: uuid.New(), Name: "Juan", Zone: "Norte", CreditLimit: 50000}

	mock.ExpectQuery("INSERT INTO cortineros").
		WithArgs(a.ID, "Juan", "Norte", nil, int64(50000)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(ts, ts))

	require.NoError(t, store.New(db).CreateAccount(context.Background(), a))
	assert.Equal(t, ts, a.CreatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_DeactivateAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()

	mock.ExpectExec("UPDATE cortineros SET activo = FALSE").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE cortineros SET activo = FALSE").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	s := store.New(db)
	require.NoError(t, s.DeactivateAccount(context.Background(), id))
	assert.ErrorIs(t, s.DeactivateAccount(context.Background(), id), account.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
